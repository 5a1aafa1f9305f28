// fetcher/fetcher.go

// Package fetcher retrieves schedule detail pages from the crew portal.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/gewnthar/crewsched/config"
	"github.com/gewnthar/crewsched/logger"
	"github.com/gewnthar/crewsched/metrics"
	"github.com/gewnthar/crewsched/models"
)

// SessionCookie carries the portal session token on every request.
const SessionCookie = "SESSION"

const maxPageBytes = 8 << 20

var (
	// ErrStillBuilding means the portal kept answering that the schedule is
	// being built until the attempts ran out.
	ErrStillBuilding = errors.New("schedule is still being built")
	// ErrUnauthorized means the portal rejected the session token.
	ErrUnauthorized = errors.New("portal session rejected")
)

// FetchError reports a failed fetch together with how many requests were made.
type FetchError struct {
	BlockDate models.BlockDate
	Attempts  int
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch schedule %s after %d attempt(s): %v", e.BlockDate, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StatusError is an unexpected HTTP status from the portal.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}

// Page is one schedule document as served by the portal.
type Page struct {
	BlockDate models.BlockDate
	Body      string
	Attempts  int
	FetchedAt time.Time
}

type Client struct {
	cfg     config.PortalConfig
	http    *http.Client
	limiter *rate.Limiter
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(f *Client) { f.http = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Client) { f.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(f *Client) { f.now = now }
}

// NewLimiter spaces requests evenly at requestsPerMinute. Zero or less disables limiting.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// New builds a portal client. A nil limiter is built from cfg.RequestsPerMinute.
func New(cfg config.PortalConfig, limiter *rate.Limiter, log logger.Logger, opts ...Option) *Client {
	if limiter == nil {
		limiter = NewLimiter(cfg.RequestsPerMinute)
	}
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		log:     log.With("component", "fetcher"),
		metrics: metrics.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads the schedule page for bd. While the page reports that the
// schedule is still being built it waits RetryDelay and tries again, up to
// MaxAttempts requests in total.
func (c *Client) Fetch(ctx context.Context, bd models.BlockDate) (*Page, error) {
	if err := bd.Validate(); err != nil {
		return nil, &FetchError{BlockDate: bd, Err: err}
	}
	target, err := c.pageURL(bd)
	if err != nil {
		return nil, &FetchError{BlockDate: bd, Err: err}
	}

	for attempt := 1; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{BlockDate: bd, Attempts: attempt - 1, Err: err}
		}

		body, err := c.get(ctx, target)
		if err != nil {
			c.observe(OutcomeOf(err))
			c.log.Warn("portal request failed", "blockDate", bd.String(), "attempt", attempt, "error", err)
			return nil, &FetchError{BlockDate: bd, Attempts: attempt, Err: err}
		}

		if !c.stillBuilding(body) {
			c.observe(models.FetchOK)
			c.log.Info("fetched schedule page", "blockDate", bd.String(), "attempt", attempt, "bytes", len(body))
			return &Page{BlockDate: bd, Body: body, Attempts: attempt, FetchedAt: c.now()}, nil
		}

		c.observe(models.FetchStillBuilding)
		if attempt >= c.cfg.MaxAttempts {
			c.log.Warn("schedule still being built, giving up", "blockDate", bd.String(), "attempts", attempt)
			return nil, &FetchError{BlockDate: bd, Attempts: attempt, Err: ErrStillBuilding}
		}
		c.log.Info("schedule still being built, retrying", "blockDate", bd.String(),
			"attempt", attempt, "delay", c.cfg.RetryDelay.String())

		select {
		case <-ctx.Done():
			return nil, &FetchError{BlockDate: bd, Attempts: attempt, Err: ctx.Err()}
		case <-time.After(c.cfg.RetryDelay):
		}
	}
}

func (c *Client) pageURL(bd models.BlockDate) (string, error) {
	if c.cfg.ScheduleURL == "" {
		return "", fmt.Errorf("portal schedule_url is not configured")
	}
	u, err := url.Parse(c.cfg.ScheduleURL)
	if err != nil {
		return "", fmt.Errorf("invalid portal schedule_url: %w", err)
	}
	q := u.Query()
	q.Set("month", strconv.Itoa(bd.Month))
	q.Set("year", strconv.Itoa(bd.Year))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	if c.cfg.SessionToken != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: c.cfg.SessionToken})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make GET request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(b), nil
}

func (c *Client) stillBuilding(body string) bool {
	marker := c.cfg.StillBuildingMarker
	return marker != "" && strings.Contains(strings.ToLower(body), strings.ToLower(marker))
}

func (c *Client) observe(outcome models.FetchOutcome) {
	c.metrics.FetchAttempts.WithLabelValues(string(outcome)).Inc()
}

// OutcomeOf maps a Fetch error to the outcome recorded in the fetch log.
func OutcomeOf(err error) models.FetchOutcome {
	switch {
	case err == nil:
		return models.FetchOK
	case errors.Is(err, ErrStillBuilding):
		return models.FetchStillBuilding
	case errors.Is(err, ErrUnauthorized):
		return models.FetchUnauthorized
	}
	return models.FetchFailed
}

// AttemptsOf returns how many requests a failed Fetch made, or 0.
func AttemptsOf(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Attempts
	}
	return 0
}
