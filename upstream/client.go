package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"waitlist-edge/fault"

	"golang.org/x/time/rate"
)

// maxBody limita o quanto lemos de um provedor não confiável.
const maxBody = 1 << 20

// Client faz GET/JSON com timeout e pacing por host.
type Client struct {
	http    *http.Client
	logger  *slog.Logger
	timeout time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHostRate define o ritmo máximo de chamadas por host.
// rps <= 0 desliga o pacing.
func WithHostRate(rps float64, burst int) Option {
	return func(c *Client) {
		c.rps = rate.Limit(rps)
		c.burst = burst
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{},
		logger:   slog.Default(),
		timeout:  5 * time.Second,
		limiters: make(map[string]*rate.Limiter),
		rps:      2,
		burst:    5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) limiter(host string) *rate.Limiter {
	if c.rps <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if lim, ok := c.limiters[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(c.rps, c.burst)
	c.limiters[host] = lim
	return lim
}

// GetJSON busca rawURL e decodifica o corpo em out.
// op é o nome usado nos erros (ex.: "ip-lookup").
func (c *Client) GetJSON(ctx context.Context, op, rawURL string, out any) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fault.New(fault.MalformedResponse, op, fmt.Errorf("invalid url: %w", err))
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if lim := c.limiter(u.Host); lim != nil {
		// Wait falha na hora se o próximo token só sairia depois do deadline.
		if err := lim.Wait(ctx); err != nil {
			return fault.New(fault.RateLimited, op, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fault.New(fault.MalformedResponse, op, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fault.New(fault.Classify(err), op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("upstream call", "op", op, "host", u.Host, "status", resp.StatusCode, "elapsed", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fault.New(fault.RateLimited, op, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fault.New(fault.PermissionDenied, op, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fault.New(fault.NetworkUnavailable, op, fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fault.New(fault.Classify(err), op, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fault.New(fault.MalformedResponse, op, err)
	}
	return nil
}
