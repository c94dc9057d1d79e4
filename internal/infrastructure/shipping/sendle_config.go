package shipping

import (
	"errors"
	"strings"
	"time"

	"github.com/stockroom/backend/internal/infrastructure/config"
)

// Errors for Sendle configuration
var (
	ErrSendleConfigMissingBaseURL = errors.New("sendle: base url is required")
	ErrSendleConfigMissingAPIKey  = errors.New("sendle: api key is required")
)

// SendleConfig holds the carrier API connection settings
type SendleConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Validate validates the configuration and fills defaults
func (c *SendleConfig) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return ErrSendleConfigMissingBaseURL
	}
	if c.APIKey == "" {
		return ErrSendleConfigMissingAPIKey
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}

// NewSendleConfig builds a SendleConfig from application configuration
func NewSendleConfig(cfg config.CarrierConfig) *SendleConfig {
	return &SendleConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	}
}
