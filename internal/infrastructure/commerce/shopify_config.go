package commerce

import (
	"errors"
	"strings"
	"time"

	"github.com/stockroom/backend/internal/infrastructure/config"
)

// DefaultShopifyAPIVersion is used when the configuration leaves it empty
const DefaultShopifyAPIVersion = "2024-01"

// Errors for Shopify configuration
var (
	ErrShopifyConfigMissingShop  = errors.New("shopify: shop domain is required")
	ErrShopifyConfigMissingToken = errors.New("shopify: access token is required")
)

// ShopifyConfig holds the Admin API connection settings
type ShopifyConfig struct {
	// BaseURL is the shop origin, e.g. https://my-shop.myshopify.com
	BaseURL string
	// AccessToken is the Admin API access token
	AccessToken string
	// APIVersion is the dated Admin API version
	APIVersion string
	// LocationID is the location whose inventory levels are set
	LocationID string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
}

// NewShopifyConfig builds a ShopifyConfig from application configuration
func NewShopifyConfig(cfg config.CommerceConfig) *ShopifyConfig {
	return &ShopifyConfig{
		BaseURL:     cfg.ShopDomain,
		AccessToken: cfg.AccessToken,
		APIVersion:  cfg.APIVersion,
		LocationID:  cfg.LocationID,
		Timeout:     cfg.Timeout,
	}
}

// Validate validates the configuration and fills defaults
func (c *ShopifyConfig) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return ErrShopifyConfigMissingShop
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		c.BaseURL = "https://" + c.BaseURL
	}
	if c.AccessToken == "" {
		return ErrShopifyConfigMissingToken
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultShopifyAPIVersion
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}

// endpoint returns the Admin API URL of path, e.g. "/orders.json"
func (c *ShopifyConfig) endpoint(path string) string {
	return c.BaseURL + "/admin/api/" + c.APIVersion + path
}
