package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSlowQueryThreshold marks queries slower than this on their span
const DefaultSlowQueryThreshold = 200 * time.Millisecond

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin plus callbacks that tag
// spans with the table, affected rows and slow-query flag. The tagging runs
// before otelgorm ends the span. Query variables are never recorded.
func RegisterDBTracing(db *gorm.DB, enabled bool, slowThreshold time.Duration, logger *zap.Logger) error {
	if !enabled {
		return nil
	}
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowQueryThreshold
	}

	if err := db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateSpan(tx, slowThreshold) }

	cb := db.Callback()
	registrations := []struct {
		name     string
		register func(name string, fn func(*gorm.DB)) error
	}{
		{"create:before", cb.Create().Before("gorm:create").Register},
		{"query:before", cb.Query().Before("gorm:query").Register},
		{"update:before", cb.Update().Before("gorm:update").Register},
		{"delete:before", cb.Delete().Before("gorm:delete").Register},
		{"row:before", cb.Row().Before("gorm:row").Register},
		{"raw:before", cb.Raw().Before("gorm:raw").Register},
	}
	for _, r := range registrations {
		if err := r.register("stockroom_trace:"+r.name, before); err != nil {
			return err
		}
	}

	registrations = []struct {
		name     string
		register func(name string, fn func(*gorm.DB)) error
	}{
		{"create:after", cb.Create().After("gorm:create").Before("otel:after:create").Register},
		{"query:after", cb.Query().After("gorm:query").Before("otel:after:query").Register},
		{"update:after", cb.Update().After("gorm:update").Before("otel:after:update").Register},
		{"delete:after", cb.Delete().After("gorm:delete").Before("otel:after:delete").Register},
		{"row:after", cb.Row().After("gorm:row").Before("otel:after:row").Register},
		{"raw:after", cb.Raw().After("gorm:raw").Before("otel:after:raw").Register},
	}
	for _, r := range registrations {
		if err := r.register("stockroom_trace:"+r.name, after); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled", zap.Duration("slow_query_threshold", slowThreshold))
	return nil
}

func annotateSpan(tx *gorm.DB, slowThreshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		RecordError(span, tx.Error)
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > slowThreshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
