// Package scheduler runs the periodic commerce order import.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apporder "github.com/stockroom/backend/internal/application/order"
)

const maxRetryDelay = 30 * time.Minute

// OrderImporter pulls new commerce orders into the local store
type OrderImporter interface {
	Import(ctx context.Context, req apporder.ImportOrdersRequest) (*apporder.ImportResult, error)
}

// ImportJobStatus represents the outcome of one import run
type ImportJobStatus string

const (
	ImportJobStatusRunning ImportJobStatus = "RUNNING"
	ImportJobStatusSuccess ImportJobStatus = "SUCCESS"
	ImportJobStatusPartial ImportJobStatus = "PARTIAL"
	ImportJobStatusFailed  ImportJobStatus = "FAILED"
)

// ImportJob records one import run
type ImportJob struct {
	ID          uuid.UUID
	Since       time.Time
	Status      ImportJobStatus
	Error       string
	Attempts    int
	StartedAt   time.Time
	CompletedAt *time.Time

	Imported int
	Skipped  int
	Failed   int
}

func newImportJob(since, now time.Time) *ImportJob {
	return &ImportJob{
		ID:        uuid.New(),
		Since:     since,
		Status:    ImportJobStatusRunning,
		StartedAt: now,
	}
}

func (j *ImportJob) complete(result *apporder.ImportResult, now time.Time) {
	j.CompletedAt = &now
	j.Imported = result.Imported
	j.Skipped = result.Skipped
	j.Failed = result.Failed
	j.Error = ""

	switch {
	case result.Failed == 0:
		j.Status = ImportJobStatusSuccess
	case result.Imported > 0:
		j.Status = ImportJobStatusPartial
	default:
		j.Status = ImportJobStatusFailed
	}
}

func (j *ImportJob) fail(err error, now time.Time) {
	j.CompletedAt = &now
	j.Status = ImportJobStatusFailed
	j.Error = err.Error()
}

// retryDelay doubles the base delay per attempt, capped at 30 minutes
func retryDelay(base time.Duration, attempt int) time.Duration {
	delay := base * time.Duration(1<<(attempt-1))
	if delay > maxRetryDelay || delay <= 0 {
		return maxRetryDelay
	}
	return delay
}

// Config holds the import schedule
type Config struct {
	// Interval between runs
	Interval time.Duration
	// JobTimeout bounds a single attempt
	JobTimeout time.Duration
	// RetryAttempts is the number of retries after a failed attempt
	RetryAttempts int
	// RetryDelay is the base delay between retries (with exponential backoff)
	RetryDelay time.Duration
	// Lookback is how far back the first run reaches
	Lookback    time.Duration
	HistorySize int
}

// DefaultConfig returns the default import schedule
func DefaultConfig() Config {
	return Config{
		Interval:      15 * time.Minute,
		JobTimeout:    5 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    30 * time.Second,
		Lookback:      24 * time.Hour,
		HistorySize:   50,
	}
}

// Validate validates the configuration
func (c Config) Validate() error {
	if c.Interval <= 0 || c.JobTimeout <= 0 || c.Lookback <= 0 {
		return ErrInvalidConfig
	}
	if c.RetryAttempts < 0 || (c.RetryAttempts > 0 && c.RetryDelay <= 0) {
		return ErrInvalidConfig
	}
	if c.HistorySize <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// OrderImportScheduler imports commerce orders on a fixed interval. Each run asks
// for orders updated since the start of the last successful run.
type OrderImportScheduler struct {
	config   Config
	importer OrderImporter
	logger   *zap.Logger
	now      func() time.Time

	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	isRunning  bool
	inProgress bool
	watermark  time.Time

	historyMu sync.RWMutex
	history   []*ImportJob
}

// NewOrderImportScheduler creates a new order import scheduler
func NewOrderImportScheduler(config Config, importer OrderImporter, logger *zap.Logger) (*OrderImportScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &OrderImportScheduler{
		config:   config,
		importer: importer,
		logger:   logger,
		now:      time.Now,
		history:  make([]*ImportJob, 0, config.HistorySize),
	}, nil
}

// Start starts the periodic import loop
func (s *OrderImportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Order import scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("lookback", s.config.Lookback),
	)
	return nil
}

// Stop cancels the loop and waits for an active run to return
func (s *OrderImportScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Order import scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Order import scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *OrderImportScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunNow(ctx); err != nil && !errors.Is(err, ErrImportInProgress) {
				s.logger.Warn("Scheduled order import failed", zap.Error(err))
			}
		}
	}
}

// RunNow performs one import run synchronously, retrying failed attempts with
// backoff. It returns the recorded job and the last importer error.
func (s *OrderImportScheduler) RunNow(ctx context.Context) (*ImportJob, error) {
	s.mu.Lock()
	if s.inProgress {
		s.mu.Unlock()
		return nil, ErrImportInProgress
	}
	s.inProgress = true
	since := s.watermark
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inProgress = false
		s.mu.Unlock()
	}()

	started := s.now()
	if since.IsZero() {
		since = started.Add(-s.config.Lookback)
	}
	job := newImportJob(since, started)

	var lastErr error
	for attempt := 1; ; attempt++ {
		job.Attempts = attempt
		result, err := s.attempt(ctx, since)
		if err == nil {
			lastErr = nil
			job.complete(result, s.now())
			s.mu.Lock()
			s.watermark = started
			s.mu.Unlock()
			break
		}
		lastErr = err
		if attempt > s.config.RetryAttempts || ctx.Err() != nil {
			job.fail(err, s.now())
			break
		}

		delay := retryDelay(s.config.RetryDelay, attempt)
		s.logger.Info("Order import attempt failed, retrying",
			zap.String("job_id", job.ID.String()),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)
		if err := wait(ctx, delay); err != nil {
			lastErr = err
			job.fail(err, s.now())
			break
		}
	}

	s.addToHistory(job)
	s.logger.Info("Order import finished",
		zap.String("job_id", job.ID.String()),
		zap.String("status", string(job.Status)),
		zap.Time("since", job.Since),
		zap.Int("attempts", job.Attempts),
		zap.Int("imported", job.Imported),
		zap.Int("skipped", job.Skipped),
		zap.Int("failed", job.Failed),
	)
	return job, lastErr
}

func (s *OrderImportScheduler) attempt(ctx context.Context, since time.Time) (*apporder.ImportResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()
	return s.importer.Import(ctx, apporder.ImportOrdersRequest{Since: &since})
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *OrderImportScheduler) addToHistory(job *ImportJob) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*ImportJob{job}, s.history...)
	if len(s.history) > s.config.HistorySize {
		s.history = s.history[:s.config.HistorySize]
	}
}

// History returns recent runs, newest first
func (s *OrderImportScheduler) History(limit int) []*ImportJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	result := make([]*ImportJob, limit)
	copy(result, s.history[:limit])
	return result
}
