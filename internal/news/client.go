package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:8081"

const (
	listPath    = "/api/news"
	refreshPath = "/api/refresh-news"
)

// Options tunes a Client. Zero values select the defaults.
type Options struct {
	Timeout         time.Duration // per request, default 30s
	RefreshEvery    time.Duration // minimum spacing of refresh triggers, default 2s
	BreakerFailures uint32        // consecutive trigger failures before the breaker opens, default 3
	BreakerCooldown time.Duration // how long the breaker stays open, default 30s
	OnBreakerChange func(from, to string)
}

// Client reads the news list and triggers backend refreshes.
// Safe for concurrent use. There are no retries: one attempt per call.
// The circuit breaker guards only the POST trigger; reads always reach
// the backend so a manual reload is never refused.
type Client struct {
	baseURL    string
	client     *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	refreshing atomic.Bool
}

// NewClient creates a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts Options) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RefreshEvery <= 0 {
		opts.RefreshEvery = 2 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 3
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 30 * time.Second
	}

	failures := opts.BreakerFailures
	onChange := opts.OnBreakerChange
	settings := gobreaker.Settings{
		Name:        "refresh-trigger",
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if onChange != nil {
				onChange(from.String(), to.String())
			}
		},
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Every(opts.RefreshEvery), 1),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches the news collection in the order the server delivers it.
func (c *Client) List(ctx context.Context) ([]Item, error) {
	if ctx.Err() != nil {
		return nil, &Error{Op: "list", Kind: KindNetwork, Err: ctx.Err()}
	}

	return c.list(ctx)
}

// News fetches the news collection newest-first.
// The backend returns rows in insertion order (oldest first); the dashboard
// shows the most recent articles at the top.
func (c *Client) News(ctx context.Context) ([]Item, error) {
	items, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return Reversed(items), nil
}

// Refresh asks the backend to pull fresh news. The response body is ignored.
// Returns ErrRefreshInFlight without contacting the backend if another
// Refresh has not returned yet. Triggers are spaced by Options.RefreshEvery,
// and after repeated trigger failures the breaker refuses them for a while
// with KindUnavailable.
func (c *Client) Refresh(ctx context.Context) error {
	if !c.refreshing.CompareAndSwap(false, true) {
		return ErrRefreshInFlight
	}
	defer c.refreshing.Store(false)

	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Op: "refresh", Kind: KindNetwork, Err: err}
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.trigger(ctx)
	})
	if err != nil {
		return breakerError("refresh", err)
	}
	return nil
}

// RefreshAndFetch triggers a refresh and then re-reads the list newest-first.
func (c *Client) RefreshAndFetch(ctx context.Context) ([]Item, error) {
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c.News(ctx)
}

// Refreshing reports whether a refresh trigger is in flight.
func (c *Client) Refreshing() bool {
	return c.refreshing.Load()
}

func (c *Client) list(ctx context.Context) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+listPath, nil)
	if err != nil {
		return nil, &Error{Op: "list", Kind: KindNetwork, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Op: "list", Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Op: "list", Kind: KindStatus, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &Error{Op: "list", Kind: KindDecode, Err: err}
	}
	if body.News == nil {
		return nil, &Error{Op: "list", Kind: KindDecode, Err: errors.New(`missing "news" field`)}
	}
	return *body.News, nil
}

func (c *Client) trigger(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, nil)
	if err != nil {
		return &Error{Op: "refresh", Kind: KindNetwork, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Op: "refresh", Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused; the body carries nothing we use.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: "refresh", Kind: KindStatus, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	return nil
}

// breakerError maps gobreaker's own errors onto KindUnavailable and passes
// request errors through.
func breakerError(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &Error{Op: op, Kind: KindUnavailable, Err: err}
	}
	return err
}
