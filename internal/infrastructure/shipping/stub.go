package shipping

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apporder "github.com/stockroom/backend/internal/application/order"
	"github.com/stockroom/backend/internal/domain/integration"
	"github.com/stockroom/backend/internal/domain/order"
)

// stubLabelPDF is a minimal one-page PDF served for stub labels
var stubLabelPDF = []byte("%PDF-1.4\n1 0 obj<</Type/Catalog/Pages 2 0 R>>endobj\n" +
	"2 0 obj<</Type/Pages/Kids[3 0 R]/Count 1>>endobj\n" +
	"3 0 obj<</Type/Page/Parent 2 0 R/MediaBox[0 0 288 432]>>endobj\n" +
	"trailer<</Root 1 0 R>>\n%%EOF\n")

// StubCarrier is used when no carrier is configured. Tracking numbers are
// derived from the request reference so repeated calls agree.
type StubCarrier struct {
	labelBaseURL string
	logger       *zap.Logger
	now          func() time.Time
}

// NewStubCarrier creates a StubCarrier issuing label urls under labelBaseURL
func NewStubCarrier(labelBaseURL string, logger *zap.Logger) *StubCarrier {
	if labelBaseURL == "" {
		labelBaseURL = "https://labels.invalid"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubCarrier{
		labelBaseURL: strings.TrimRight(labelBaseURL, "/"),
		logger:       logger,
		now:          time.Now,
	}
}

// StubTrackingNumber derives the tracking number for a reference
func StubTrackingNumber(reference string) string {
	sum := sha1.Sum([]byte(reference))
	return "STUB" + strings.ToUpper(hex.EncodeToString(sum[:])[:10])
}

func (s *StubCarrier) CreateLabel(_ context.Context, req integration.LabelRequest) (*order.ShippingLabel, error) {
	tracking := StubTrackingNumber(req.Reference + req.Description)
	s.logger.Info("Stub shipping label issued",
		zap.String("reference", req.Reference),
		zap.String("tracking_number", tracking))
	return &order.ShippingLabel{
		TrackingNumber: tracking,
		LabelURL:       s.labelBaseURL + "/" + tracking + ".pdf",
	}, nil
}

// Quote prices a single standard plan at 9.95 plus 2.00 per started kg
func (s *StubCarrier) Quote(_ context.Context, req integration.QuoteRequest) ([]integration.Quote, error) {
	kg := req.Package.Weight.Ceil()
	if kg.IsNegative() {
		kg = decimal.Zero
	}
	amount := decimal.RequireFromString("9.95").Add(kg.Mul(decimal.NewFromInt(2)))
	return []integration.Quote{{
		PlanName:    "Standard",
		Amount:      amount,
		Currency:    "AUD",
		MinETADays:  2,
		MaxETADays:  5,
		Description: "Stub carrier quote",
	}}, nil
}

func (s *StubCarrier) Track(_ context.Context, trackingNumber string) (*integration.TrackingInfo, error) {
	return &integration.TrackingInfo{
		TrackingNumber: trackingNumber,
		State:          "Booked",
		Events: []integration.TrackingEvent{{
			Type:        "Info",
			Description: "Label created",
			OccurredAt:  s.now().UTC(),
		}},
	}, nil
}

func (s *StubCarrier) FetchLabel(context.Context, string) ([]byte, string, error) {
	return append([]byte(nil), stubLabelPDF...), "application/pdf", nil
}

var (
	_ integration.Carrier   = (*StubCarrier)(nil)
	_ apporder.LabelFetcher = (*StubCarrier)(nil)
)
