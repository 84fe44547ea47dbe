// Package hostapi is the remote delegate: a thin HTTP client for a host
// process exposing the storage operations by name. Each operation is a POST
// to <base>[/<domain>]/<method> with a JSON body {"args":[...]} and a JSON
// result.
package hostapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"vetlab/internal/model"
)

var (
	// ErrUnavailable means the host does not implement the method.
	ErrUnavailable = errors.New("hostapi: method unavailable")
	// ErrNullResult means the host answered with null or an empty body.
	ErrNullResult = errors.New("hostapi: null result")
)

// Client calls a host API. It is safe for concurrent use.
type Client struct {
	baseURL string
	prefix  string
	http    *http.Client
	logger  *slog.Logger

	mu      sync.RWMutex
	methods map[string]struct{} // nil means every method is attempted
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDomain scopes every call under /<domain>, so the lab and vet facades
// never share user or notification collections on the host.
func WithDomain(d model.Domain) Option {
	return func(c *Client) { c.prefix = "/" + string(d) }
}

// WithMethods restricts the client to a fixed method set; other calls fail
// fast with ErrUnavailable.
func WithMethods(names ...string) Option {
	return func(c *Client) { c.setMethods(names) }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return "host:" + c.baseURL + c.prefix }

func (c *Client) url(method string) string { return c.baseURL + c.prefix + "/" + method }

func (c *Client) setMethods(names []string) {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	c.mu.Lock()
	c.methods = set
	c.mu.Unlock()
}

// Supports reports whether method may be delegated.
func (c *Client) Supports(method string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.methods == nil {
		return true
	}
	_, ok := c.methods[method]
	return ok
}

// Discover loads the method list from GET <base>/methods. A host without a
// manifest leaves the client attempting every method.
func (c *Client) Discover(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("methods"), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("discover host methods: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discover host methods: status %d", resp.StatusCode)
	}
	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return fmt.Errorf("decode host methods: %w", err)
	}
	c.setMethods(names)
	c.logger.Info("host api methods discovered", "count", len(names))
	return nil
}

type request struct {
	Args []any `json:"args"`
}

// Invoke calls method with args and decodes the result into out. A JSON null
// or empty result leaves out untouched and returns ErrNullResult.
func (c *Client) Invoke(ctx context.Context, method string, args []any, out any) error {
	if !c.Supports(method) {
		return ErrUnavailable
	}
	if args == nil {
		args = []any{}
	}
	body, err := json.Marshal(request{Args: args})
	if err != nil {
		return fmt.Errorf("encode %s args: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(method), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNotImplemented:
		return ErrUnavailable
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("call %s: status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s result: %w", method, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ErrNullResult
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

func invoke[T any](ctx context.Context, c *Client, method string, args ...any) (T, error) {
	var out T
	err := c.Invoke(ctx, method, args, &out)
	return out, err
}
