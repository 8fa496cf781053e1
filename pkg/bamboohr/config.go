package bamboohr

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultHost is the BambooHR API gateway.
const DefaultHost = "https://api.bamboohr.com/api/gateway.php"

// Config contains configuration for the BambooHR API client.
//
// Example configuration (HCL):
//
//	subdomain  = "acme"
//	auth_token = env("BAMBOOHR_AUTH_TOKEN")
//
//	http {
//	  timeout     = "30s"
//	  max_retries = 5
//	}
type Config struct {
	// Subdomain is the company domain, as in https://acme.bamboohr.com
	Subdomain string

	// AuthToken is the API key; it is sent as the basic auth username
	AuthToken string

	// UserAgent is sent when set
	UserAgent string

	// BaseURL overrides the API root, mostly for tests.
	// Default: https://api.bamboohr.com/api/gateway.php/{subdomain}/v1
	BaseURL string

	// TLSVerify controls TLS certificate verification
	TLSVerify *bool

	// Timeout for API requests
	// Default: 30 seconds
	Timeout time.Duration

	// MaxRetries for failed requests; zero disables retries
	// Default: 5
	MaxRetries *int

	// InitialInterval is the first retry delay; later delays grow
	// exponentially up to MaxInterval.
	// Default: 1 second
	InitialInterval time.Duration

	// MaxInterval caps the retry delay
	// Default: 1 minute
	MaxInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	tlsVerify := true
	maxRetries := 5
	return &Config{
		TLSVerify:       &tlsVerify,
		Timeout:         30 * time.Second,
		MaxRetries:      &maxRetries,
		InitialInterval: 1 * time.Second,
		MaxInterval:     1 * time.Minute,
	}
}

// SetDefaults fills unset optional fields
func (c *Config) SetDefaults() {
	defaults := DefaultConfig()
	if c.TLSVerify == nil {
		c.TLSVerify = defaults.TLSVerify
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if c.MaxRetries == nil {
		c.MaxRetries = defaults.MaxRetries
	}
	if c.InitialInterval == 0 {
		c.InitialInterval = defaults.InitialInterval
	}
	if c.MaxInterval == 0 {
		c.MaxInterval = defaults.MaxInterval
	}
	if c.BaseURL == "" && c.Subdomain != "" {
		c.BaseURL = fmt.Sprintf("%s/%s/v1", DefaultHost, url.PathEscape(c.Subdomain))
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Subdomain, validation.Required),
		validation.Field(&c.AuthToken, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(1))),
		validation.Field(&c.MaxRetries, validation.Min(0)),
		validation.Field(&c.InitialInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxInterval, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}

	if c.BaseURL != "" {
		parsedURL, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base_url: %w", err)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("base_url must use http or https scheme, got: %s", parsedURL.Scheme)
		}
	}

	return nil
}

// NewHTTPClient creates a configured HTTP client
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}
