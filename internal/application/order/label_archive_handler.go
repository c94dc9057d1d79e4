package order

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/order"
	"github.com/stockroom/backend/internal/domain/shared"
)

const defaultLabelContentType = "application/pdf"

// LabelStore keeps archived label documents
type LabelStore interface {
	ObjectExists(ctx context.Context, key string) (bool, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// LabelFetcher downloads the document behind a carrier label URL
type LabelFetcher interface {
	FetchLabel(ctx context.Context, labelURL string) (data []byte, contentType string, err error)
}

// LabelKey is the storage key of an order's label
func LabelKey(orderNumber string) string {
	return fmt.Sprintf("labels/%s.pdf", orderNumber)
}

// LabelArchiveHandler copies the carrier label of every fulfilled order into
// object storage so it survives the carrier's retention window.
type LabelArchiveHandler struct {
	fetcher LabelFetcher
	store   LabelStore
	logger  *zap.Logger
}

// NewLabelArchiveHandler creates a new LabelArchiveHandler
func NewLabelArchiveHandler(fetcher LabelFetcher, store LabelStore, logger *zap.Logger) *LabelArchiveHandler {
	return &LabelArchiveHandler{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LabelArchiveHandler) EventTypes() []string {
	return []string{order.EventTypeOrderFulfilled}
}

// Handle processes an OrderFulfilledEvent
func (h *LabelArchiveHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fulfilled, ok := event.(*order.OrderFulfilledEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			order.EventTypeOrderFulfilled, event.EventType())
	}
	if fulfilled.LabelURL == "" {
		h.logger.Debug("Order has no label to archive", zap.String("order_id", fulfilled.OrderID.String()))
		return nil
	}

	key := LabelKey(fulfilled.OrderNumber)
	exists, err := h.store.ObjectExists(ctx, key)
	if err != nil {
		return fmt.Errorf("check archived label: %w", err)
	}
	if exists {
		return nil
	}

	data, contentType, err := h.fetcher.FetchLabel(ctx, fulfilled.LabelURL)
	if err != nil {
		return fmt.Errorf("fetch label for order %s: %w", fulfilled.OrderNumber, err)
	}
	if contentType == "" {
		contentType = defaultLabelContentType
	}
	if err := h.store.Upload(ctx, key, data, contentType); err != nil {
		return fmt.Errorf("archive label for order %s: %w", fulfilled.OrderNumber, err)
	}

	h.logger.Info("Shipping label archived",
		zap.String("order_id", fulfilled.OrderID.String()),
		zap.String("key", key),
		zap.Int("bytes", len(data)))
	return nil
}
