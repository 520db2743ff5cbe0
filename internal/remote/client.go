package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"shipdesk/senderterm/internal/addressbook"
	"shipdesk/senderterm/internal/models"
)

// Client talks to the address service over HTTP. It implements addressbook.Store.
type Client struct {
	http   *http.Client
	config Config
	base   *url.URL
	log    zerolog.Logger
	mu     sync.RWMutex
	status Status
}

var _ addressbook.Store = (*Client)(nil)

func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("store url is required")
	}

	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid store url %q: %w", config.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("store url must be http or https, got %q", base.Scheme)
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.RetryCount == 0 {
		config.RetryCount = DefaultRetryCount
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = DefaultRetryDelay
	}

	return &Client{
		http:   &http.Client{Timeout: config.Timeout},
		config: config,
		base:   base,
		log:    zerolog.Nop(),
		status: Status{BaseURL: base.String(), LastChecked: time.Now()},
	}, nil
}

func (c *Client) SetLogger(logger zerolog.Logger) {
	c.log = logger.With().Str("component", "remote").Logger()
}

func (c *Client) GetStatus() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.status
}

func (c *Client) updateStatus(reachable bool, code int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status.Reachable = reachable
	c.status.LastStatus = code
	c.status.LastChecked = time.Now()
}

// FetchOwnAddresses reads the account's profile. Retryable failures are retried
// with a linearly growing delay.
func (c *Client) FetchOwnAddresses(ctx context.Context) (*models.Profile, error) {
	var lastErr error

	for attempt := 0; attempt < c.config.RetryCount; attempt++ {
		if attempt > 0 {
			delay := c.config.RetryDelay * time.Duration(attempt)
			c.log.Debug().Int("attempt", attempt+1).Dur("delay", delay).Err(lastErr).Msg("retrying fetch")

			select {
			case <-ctx.Done():
				return nil, addressbook.ClassifyError(ctx.Err())
			case <-time.After(delay):
			}
		}

		profile, err := c.doFetch(ctx)
		if err == nil {
			return profile, nil
		}

		lastErr = err
		if storeErr := addressbook.ClassifyError(err); storeErr != nil && !storeErr.IsRetryable() {
			break
		}
	}

	return nil, addressbook.ClassifyError(lastErr)
}

func (c *Client) doFetch(ctx context.Context) (*models.Profile, error) {
	var envelope profileEnvelope
	if err := c.do(ctx, http.MethodGet, "/customers/me", nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return &models.Profile{}, nil
	}
	return envelope.Data, nil
}

func (c *Client) CreateAddress(ctx context.Context, draft models.AddressDraft) error {
	return c.do(ctx, http.MethodPost, "/addresses", draft, nil)
}

func (c *Client) UpdateAddress(ctx context.Context, id string, fields models.AddressFields) error {
	if err := requireID(id); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, "/addresses/"+url.PathEscape(id), fields, nil)
}

func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/addresses/"+url.PathEscape(id), nil, nil)
}

func requireID(id string) error {
	if id == "" {
		return addressbook.NewStoreError(addressbook.ErrValidation, "address id is required", nil)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.updateStatus(false, 0)
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return addressbook.ClassifyError(err)
	}
	defer resp.Body.Close()

	c.updateStatus(true, resp.StatusCode)
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return addressbook.NewTransportError("failed to decode response", err)
	}
	return nil
}

// statusError maps a non-2xx response onto the store error taxonomy.
func statusError(resp *http.Response) error {
	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &eb)
	}

	message := eb.Message
	if message == "" {
		message = eb.Error
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	var errType addressbook.ErrorType
	switch {
	case resp.StatusCode == http.StatusNotFound:
		errType = addressbook.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		errType = addressbook.ErrUnauthorized
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		errType = addressbook.ErrValidation
	case resp.StatusCode == http.StatusTooManyRequests:
		errType = addressbook.ErrRateLimited
	case resp.StatusCode >= 500:
		errType = addressbook.ErrUnavailable
	default:
		errType = addressbook.ErrTransport
	}

	storeErr := addressbook.NewStoreError(errType, message, nil)
	storeErr.Code = resp.StatusCode
	return storeErr
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
