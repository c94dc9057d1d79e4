package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	apporder "github.com/stockroom/backend/internal/application/order"
	"github.com/stockroom/backend/internal/domain/integration"
	"github.com/stockroom/backend/internal/domain/order"
)

// maxResponseSize bounds JSON responses and downloaded labels (10MB)
const maxResponseSize = 10 * 1024 * 1024

// SendleClient implements integration.Carrier against a Sendle-style REST API
type SendleClient struct {
	config     *SendleConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSendleClient creates a new carrier client
func NewSendleClient(config *SendleConfig, logger *zap.Logger) (*SendleClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendleClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

// CreateLabel books a parcel and returns its tracking number and label url
func (c *SendleClient) CreateLabel(ctx context.Context, req integration.LabelRequest) (*order.ShippingLabel, error) {
	body := sendleOrderRequest{
		PickupAddress:   toSendleContact(req.Pickup.Name, req.Pickup.Email, req.Pickup.Phone, req.Pickup.Address),
		DeliveryAddress: toSendleContact(req.Delivery.Name, req.Delivery.Email, req.Delivery.Phone, req.Delivery.Address),
		PackageSize:     req.PackageSize,
		Weight:          sendleWeight{Value: req.Weight, Units: "kg"},
		Description:     req.Description,
		CustomerRef:     req.Reference,
	}

	respBody, err := c.doJSON(ctx, http.MethodPost, "/orders", body)
	if err != nil {
		return nil, err
	}

	var resp sendleOrderResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse order: %v", integration.ErrInvalidResponse, err)
	}
	if resp.TrackingNumber == "" {
		return nil, fmt.Errorf("%w: tracking number missing", integration.ErrInvalidResponse)
	}

	c.logger.Info("Shipping label created",
		zap.String("reference", req.Reference),
		zap.String("tracking_number", resp.TrackingNumber))

	return &order.ShippingLabel{TrackingNumber: resp.TrackingNumber, LabelURL: resp.LabelURL}, nil
}

// Quote returns the carrier's offers for a package
func (c *SendleClient) Quote(ctx context.Context, req integration.QuoteRequest) ([]integration.Quote, error) {
	var body sendleQuoteRequest
	body.Package.Weight = sendleWeight{Value: req.Package.Weight, Units: "kg"}
	body.Package.Dimensions = sendleDimensions{
		Length: req.Package.Length,
		Width:  req.Package.Width,
		Height: req.Package.Height,
		Units:  "cm",
	}
	body.Destination = toSendleContact("", "", "", req.Destination)

	respBody, err := c.doJSON(ctx, http.MethodPost, "/quote", body)
	if err != nil {
		return nil, err
	}

	var resp sendleQuoteResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse quotes: %v", integration.ErrInvalidResponse, err)
	}

	quotes := make([]integration.Quote, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		quote := integration.Quote{
			PlanName:    q.PlanName,
			Amount:      q.Quote.Gross.Amount,
			Currency:    q.Quote.Gross.Currency,
			Description: q.Description,
		}
		if len(q.ETA.DaysRange) > 0 {
			quote.MinETADays = q.ETA.DaysRange[0]
			quote.MaxETADays = q.ETA.DaysRange[len(q.ETA.DaysRange)-1]
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// Track returns the scan history of a parcel
func (c *SendleClient) Track(ctx context.Context, trackingNumber string) (*integration.TrackingInfo, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, fmt.Errorf("%w: tracking number is required", integration.ErrRequestFailed)
	}

	respBody, err := c.doJSON(ctx, http.MethodGet, "/tracking/"+url.PathEscape(trackingNumber), nil)
	if err != nil {
		return nil, err
	}

	var resp sendleTrackingResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse tracking: %v", integration.ErrInvalidResponse, err)
	}

	info := &integration.TrackingInfo{
		TrackingNumber: trackingNumber,
		State:          resp.State,
		Events:         make([]integration.TrackingEvent, 0, len(resp.TrackingEvents)),
	}
	for _, e := range resp.TrackingEvents {
		info.Events = append(info.Events, integration.TrackingEvent{
			Type:        e.EventType,
			Description: e.Description,
			Location:    e.Location,
			OccurredAt:  e.ScanTime,
		})
	}
	return info, nil
}

// FetchLabel downloads a label document. Label urls on the carrier host are
// authenticated with the API key.
func (c *SendleClient) FetchLabel(ctx context.Context, labelURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, labelURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("sendle: failed to create label request: %w", err)
	}
	if strings.HasPrefix(labelURL, c.config.BaseURL) {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	body, contentType, err := c.do(req)
	if err != nil {
		return nil, "", err
	}
	return body, contentType, nil
}

func (c *SendleClient) doJSON(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("sendle: failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("sendle: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	respBody, _, err := c.do(req)
	return respBody, err
}

func (c *SendleClient) do(req *http.Request) ([]byte, string, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", integration.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, "", fmt.Errorf("sendle: failed to read response: %w", err)
	}

	c.logger.Debug("sendle request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode >= 400 {
		return nil, "", statusError(resp.StatusCode, body)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// statusError maps an HTTP failure to the integration sentinel errors
func statusError(status int, body []byte) error {
	detail := ""
	var errResp sendleErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		detail = ": " + errResp.Error
		if errResp.ErrorDescription != "" {
			detail += " (" + errResp.ErrorDescription + ")"
		}
	}

	var sentinel error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		sentinel = integration.ErrAuthFailed
	case status == http.StatusTooManyRequests:
		sentinel = integration.ErrRateLimited
	case status >= 500:
		sentinel = integration.ErrUnavailable
	default:
		sentinel = integration.ErrRequestFailed
	}
	return fmt.Errorf("%w: HTTP %d%s", sentinel, status, detail)
}

func toSendleContact(name, email, phone string, a order.Address) sendleContact {
	return sendleContact{
		Name:         name,
		Email:        email,
		Phone:        phone,
		AddressLine1: a.Street,
		Suburb:       a.City,
		StateName:    a.State,
		Postcode:     a.ZipCode,
		Country:      a.Country,
	}
}

var (
	_ integration.Carrier   = (*SendleClient)(nil)
	_ apporder.LabelFetcher = (*SendleClient)(nil)
)
