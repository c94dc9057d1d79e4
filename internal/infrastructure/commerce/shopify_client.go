package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/integration"
	"github.com/stockroom/backend/internal/domain/order"
)

// maxResponseSize is the maximum allowed response size from the Admin API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// accessTokenHeader carries the Admin API token
const accessTokenHeader = "X-Shopify-Access-Token"

// ShopifyClient implements integration.CommercePlatform against the Shopify Admin REST API
type ShopifyClient struct {
	config     *ShopifyConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewShopifyClient creates a new client with the given configuration
func NewShopifyClient(config *ShopifyConfig, logger *zap.Logger) (*ShopifyClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShopifyClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

// SyncOrderStatus pushes the fulfillment status of o. Cancelled orders are
// additionally cancelled on the platform.
func (c *ShopifyClient) SyncOrderStatus(ctx context.Context, o *order.Order) error {
	externalID := o.ExternalID()
	if externalID == "" {
		return nil
	}

	body := shopifyOrderUpdate{Order: shopifyOrderStatus{
		ID:                externalID,
		FulfillmentStatus: integration.FulfillmentStatusFor(o.Status),
	}}
	path := "/orders/" + url.PathEscape(externalID) + ".json"
	if _, err := c.doRequest(ctx, http.MethodPut, path, body); err != nil {
		return err
	}

	if o.Status == order.StatusCancelled {
		if _, err := c.doRequest(ctx, http.MethodPost, "/orders/"+url.PathEscape(externalID)+"/cancel.json", struct{}{}); err != nil {
			return err
		}
	}
	return nil
}

// SyncInventoryLevel sets the available quantity at the configured location
func (c *ShopifyClient) SyncInventoryLevel(ctx context.Context, externalItemID string, available int) error {
	if externalItemID == "" {
		return nil
	}
	if c.config.LocationID == "" {
		return fmt.Errorf("%w: location id is required for inventory sync", integration.ErrNotConfigured)
	}
	_, err := c.doRequest(ctx, http.MethodPost, "/inventory_levels/set.json", shopifyInventoryLevel{
		LocationID:      c.config.LocationID,
		InventoryItemID: externalItemID,
		Available:       available,
	})
	return err
}

// orderPageSize is the largest page the Admin API serves
const orderPageSize = 250

// FetchOrders lists orders of any status created at or after since. It follows
// the cursor in the Link header until the last page.
func (c *ShopifyClient) FetchOrders(ctx context.Context, since time.Time) ([]integration.PlatformOrder, error) {
	query := url.Values{}
	query.Set("status", "any")
	query.Set("limit", strconv.Itoa(orderPageSize))
	if !since.IsZero() {
		query.Set("created_at_min", since.UTC().Format(time.RFC3339))
	}

	var orders []integration.PlatformOrder
	seen := make(map[string]bool)
	for page := 1; ; page++ {
		respBody, header, err := c.send(ctx, http.MethodGet, "/orders.json?"+query.Encode(), nil)
		if err != nil {
			return nil, err
		}

		var resp shopifyOrderList
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return nil, fmt.Errorf("%w: failed to parse orders: %v", integration.ErrInvalidResponse, err)
		}
		for i := range resp.Orders {
			orders = append(orders, convertShopifyOrder(&resp.Orders[i]))
		}

		cursor := nextPageInfo(header.Get("Link"))
		if cursor == "" {
			break
		}
		if seen[cursor] {
			return nil, fmt.Errorf("%w: order page cursor repeated", integration.ErrInvalidResponse)
		}
		seen[cursor] = true

		// A cursor carries the original filters; only limit may accompany it
		query = url.Values{}
		query.Set("limit", strconv.Itoa(orderPageSize))
		query.Set("page_info", cursor)
		c.logger.Debug("Fetching next order page", zap.Int("page", page+1))
	}
	return orders, nil
}

// nextPageInfo extracts the page_info cursor of the rel="next" entry of a Link
// header, or "" on the last page.
func nextPageInfo(link string) string {
	for _, part := range strings.Split(link, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		isNext := false
		for _, param := range segments[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				isNext = true
			}
		}
		if !isNext {
			continue
		}
		target := strings.Trim(strings.TrimSpace(segments[0]), "<>")
		u, err := url.Parse(target)
		if err != nil {
			return ""
		}
		return u.Query().Get("page_info")
	}
	return ""
}

// CreateWebhook subscribes address to topic with JSON payloads
func (c *ShopifyClient) CreateWebhook(ctx context.Context, topic, address string) (*integration.Webhook, error) {
	respBody, err := c.doRequest(ctx, http.MethodPost, "/webhooks.json", shopifyWebhookRequest{
		Webhook: shopifyWebhookCreate{Topic: topic, Address: address, Format: "json"},
	})
	if err != nil {
		return nil, err
	}

	var resp shopifyWebhookResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse webhook: %v", integration.ErrInvalidResponse, err)
	}
	if resp.Webhook.ID == 0 {
		return nil, fmt.Errorf("%w: webhook id missing", integration.ErrInvalidResponse)
	}
	return &integration.Webhook{
		ID:        strconv.FormatInt(resp.Webhook.ID, 10),
		Topic:     resp.Webhook.Topic,
		Address:   resp.Webhook.Address,
		CreatedAt: resp.Webhook.CreatedAt,
	}, nil
}

// doRequest sends a JSON request to the Admin API and returns the raw response body
func (c *ShopifyClient) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	body, _, err := c.send(ctx, method, path, payload)
	return body, err
}

// send is doRequest that also returns the response headers
func (c *ShopifyClient) send(ctx context.Context, method, path string, payload any) ([]byte, http.Header, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("shopify: failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.endpoint(path), body)
	if err != nil {
		return nil, nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set(accessTokenHeader, c.config.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", integration.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, fmt.Errorf("shopify: failed to read response: %w", err)
	}

	c.logger.Debug("shopify request",
		zap.String("method", method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode >= 400 {
		return nil, nil, statusError(resp.StatusCode, respBody)
	}
	return respBody, resp.Header, nil
}

// statusError maps an HTTP failure to the integration sentinel errors
func statusError(status int, body []byte) error {
	detail := ""
	var errResp shopifyErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Errors != nil {
		detail = fmt.Sprintf(": %v", errResp.Errors)
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

func convertShopifyOrder(so *shopifyOrder) integration.PlatformOrder {
	po := integration.PlatformOrder{
		ID:            strconv.FormatInt(so.ID, 10),
		Name:          so.Name,
		CustomerEmail: so.Email,
		CustomerPhone: so.Phone,
		Note:          so.Note,
		CreatedAt:     so.CreatedAt,
		Items:         make([]integration.PlatformOrderItem, 0, len(so.LineItems)),
	}

	if so.Customer != nil {
		po.CustomerName = strings.TrimSpace(so.Customer.FirstName + " " + so.Customer.LastName)
		if po.CustomerEmail == "" {
			po.CustomerEmail = so.Customer.Email
		}
		if po.CustomerPhone == "" {
			po.CustomerPhone = so.Customer.Phone
		}
	}
	if addr := so.ShippingAddress; addr != nil {
		po.Address = order.Address{
			Street:  strings.TrimSpace(addr.Address1 + " " + addr.Address2),
			City:    addr.City,
			State:   addr.Province,
			ZipCode: addr.Zip,
			Country: addr.Country,
		}
		if po.CustomerName == "" {
			po.CustomerName = addr.Name
		}
	}

	for _, li := range so.LineItems {
		item := integration.PlatformOrderItem{
			SKU:      li.SKU,
			Name:     li.Title,
			Quantity: li.Quantity,
			Price:    parseDecimal(li.Price),
		}
		if item.Name == "" {
			item.Name = li.Name
		}
		if li.ProductID != nil {
			item.ProductID = strconv.FormatInt(*li.ProductID, 10)
		}
		po.Items = append(po.Items, item)
	}
	return po
}

// parseDecimal parses a price string, returning zero on failure
func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var _ integration.CommercePlatform = (*ShopifyClient)(nil)
