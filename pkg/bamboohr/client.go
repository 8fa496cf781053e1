package bamboohr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/mapstructure"
)

// basicAuthPassword is sent with the API key; BambooHR ignores it.
const basicAuthPassword = "x"

// Client is a BambooHR REST API client.
type Client struct {
	config *Config
	client *http.Client
	logger hclog.Logger
}

// NewClient creates a new BambooHR API client
func NewClient(cfg *Config, logger hclog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid BambooHR client config: %w", err)
	}

	return &Client{
		config: cfg,
		client: cfg.NewHTTPClient(),
		logger: logger.Named("bamboohr"),
	}, nil
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// request describes one API call.
type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	accept string
}

// response is a successful API response.
type response struct {
	body        []byte
	contentType string
}

// do executes an HTTP request, retrying network errors and retryable
// statuses with exponential backoff.
func (c *Client) do(ctx context.Context, r request) (*response, error) {
	endpoint := c.buildURL(r.path, r.query)

	var bodyBytes []byte
	if r.body != nil {
		var err error
		bodyBytes, err = json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	accept := r.accept
	if accept == "" {
		accept = "application/json"
	}

	var result *response
	operation := func() error {
		var bodyReader io.Reader
		if bodyBytes != nil {
			bodyReader = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequestWithContext(ctx, r.method, endpoint, bodyReader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.SetBasicAuth(c.config.AuthToken, basicAuthPassword)
		req.Header.Set("Accept", accept)
		if bodyBytes != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.config.UserAgent != "" {
			req.Header.Set("User-Agent", c.config.UserAgent)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("%s %s: request failed: %w", r.method, r.path, err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%s %s: failed to read response: %w", r.method, r.path, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{
				Method:     r.method,
				Path:       r.path,
				StatusCode: resp.StatusCode,
				Message:    resp.Header.Get("X-BambooHR-Error-Message"),
			}
			if apiErr.Message == "" {
				apiErr.Message = strings.TrimSpace(string(respBody))
			}
			if apiErr.Retryable() {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}

		result = &response{
			body:        respBody,
			contentType: resp.Header.Get("Content-Type"),
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("request failed, retrying",
			"method", r.method,
			"path", r.path,
			"wait", wait,
			"error", err,
		)
	}

	if err := backoff.RetryNotify(operation, c.newBackOff(ctx), notify); err != nil {
		return nil, err
	}

	c.logger.Trace("request completed", "method", r.method, "path", r.path, "bytes", len(result.body))
	return result, nil
}

// doJSON executes a request and decodes the JSON response into result.
// Numbers are kept as json.Number so integer field IDs survive decoding.
func (c *Client) doJSON(ctx context.Context, r request, result interface{}) error {
	resp, err := c.do(ctx, r)
	if err != nil {
		return err
	}

	if result == nil || len(resp.body) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(resp.body))
	dec.UseNumber()
	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", r.method, r.path, err)
	}

	return nil
}

// doDecode executes a request and decodes the loosely typed JSON response
// into result using mapstructure tags.
func (c *Client) doDecode(ctx context.Context, r request, result interface{}) error {
	var raw interface{}
	if err := c.doJSON(ctx, r, &raw); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "mapstructure",
		Result:     result,
		DecodeHook: emptyArrayAsMap,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", r.method, r.path, err)
	}

	return nil
}

// emptyArrayAsMap lets an empty JSON array decode into a map field. BambooHR
// renders an empty object as [].
func emptyArrayAsMap(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() == reflect.Slice && to.Kind() == reflect.Map && reflect.ValueOf(data).Len() == 0 {
		return reflect.MakeMap(to).Interface(), nil
	}
	return data, nil
}

// newBackOff returns the retry policy for one request.
func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.InitialInterval
	b.MaxInterval = c.config.MaxInterval
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(*c.config.MaxRetries)), ctx)
}

// buildURL constructs a URL with query parameters
func (c *Client) buildURL(path string, params url.Values) string {
	u, _ := url.Parse(strings.TrimRight(c.config.BaseURL, "/") + path)

	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String()
}
