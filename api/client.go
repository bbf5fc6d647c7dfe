// Package api is the HTTP client for the capacitaciones backend. Every
// call is routed through a per-client coalescing group so identical
// concurrent requests collapse into one network call.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"capacitaciones/coalesce"
)

// Config configures a Client.
type Config struct {
	BaseURL string
	// Timeout is the transport timeout; zero means none.
	Timeout time.Duration
	Store   *TokenStore
	Logger  *zap.Logger
}

// Client talks to the backend.
type Client struct {
	http    *resty.Client
	calls   *coalesce.Group[interface{}]
	store   *TokenStore
	log     *zap.Logger
	baseURL string
}

// NewClient builds a client. A nil Store keeps the session in memory.
func NewClient(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Store == nil {
		cfg.Store = NewTokenStore("")
	}

	c := &Client{
		calls:   coalesce.New[interface{}](cfg.Logger),
		store:   cfg.Store,
		log:     cfg.Logger,
		baseURL: cfg.BaseURL,
	}

	c.http = resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json").
		SetError(&ErrorBody{})
	if cfg.Timeout > 0 {
		c.http.SetTimeout(cfg.Timeout)
	}

	c.http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if tok := c.store.Token(); tok != "" {
			r.SetAuthToken(tok)
		}
		return nil
	})
	c.http.OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
		c.log.Debug("backend call",
			zap.String("method", r.Request.Method),
			zap.String("url", r.Request.URL),
			zap.Int("status", r.StatusCode()),
			zap.Duration("elapsed", r.Time()))
		return nil
	})
	return c
}

// Store exposes the client's token store.
func (c *Client) Store() *TokenStore { return c.store }

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Pending reports how many coalesced calls are in flight.
func (c *Client) Pending() int { return c.calls.Pending() }

// RequireAdmin fails unless the stored session belongs to an admin.
func (c *Client) RequireAdmin() error {
	sess, ok := c.store.Session()
	if !ok {
		return ErrUnauthorized
	}
	if !sess.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func coalesced[T any](ctx context.Context, c *Client, key string, op func(context.Context) (T, error)) (T, error) {
	v, err := c.calls.Do(ctx, key, func(ctx context.Context) (interface{}, error) {
		return op(ctx)
	})
	res, _ := v.(T)
	return res, err
}

// check turns transport failures and non-2xx responses into errors. A 401
// also clears the local session.
func (c *Client) check(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !resp.IsError() {
		return nil
	}

	var msg string
	if body, ok := resp.Error().(*ErrorBody); ok {
		msg = body.text()
	}
	if msg == "" {
		msg = strings.TrimSpace(resp.String())
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		c.log.Warn("token rejected, clearing session", zap.String("op", op))
		if cerr := c.store.Clear(); cerr != nil {
			c.log.Warn("clear session", zap.Error(cerr))
		}
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, errors.Join(ErrNotFound, &HTTPError{Op: op, Status: resp.StatusCode(), Message: msg}))
	}
	return &HTTPError{Op: op, Status: resp.StatusCode(), Message: msg}
}

// NormalizeMediaURL resolves relative /media and /uploads paths returned by
// the backend against base. Absolute and data URLs pass through.
func NormalizeMediaURL(base, raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"'`)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "data:") {
		return s
	}
	lower := strings.ToLower(s)
	for _, scheme := range []string{"http:", "https:", "blob:", "file:"} {
		if strings.HasPrefix(lower, scheme) {
			return s
		}
	}
	relative := false
	for _, p := range []string{"/media", "/uploads", "media/", "uploads/"} {
		if strings.HasPrefix(lower, p) {
			relative = true
			break
		}
	}
	if !relative || base == "" {
		return s
	}
	b, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return s
	}
	ref, err := url.Parse(s)
	if err != nil {
		return s
	}
	return b.ResolveReference(ref).String()
}
