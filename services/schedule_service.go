// services/schedule_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gewnthar/crewsched/fetcher"
	"github.com/gewnthar/crewsched/logger"
	"github.com/gewnthar/crewsched/metrics"
	"github.com/gewnthar/crewsched/models"
	"github.com/gewnthar/crewsched/rules"
)

var (
	ErrInvalidBlockDate = errors.New("invalid block date")
	// ErrNotFound means the schedule is not cached and cannot be fetched.
	ErrNotFound = errors.New("schedule not found")
	// ErrNoFetcher means a portal fetch was requested but no portal is configured.
	ErrNoFetcher = errors.New("portal fetcher is not configured")
)

// Extractor turns a schedule document into a record.
type Extractor interface {
	Name() string
	Extract(r io.Reader) (*models.MonthlySchedule, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, bd models.BlockDate) (*fetcher.Page, error)
}

// Cache stores extracted records by block date. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, month, year int) (*models.CachedSchedule, error)
	Save(ctx context.Context, c models.CachedSchedule) error
	List(ctx context.Context) ([]models.BlockDate, error)
	Delete(ctx context.Context, month, year int) error
}

type FetchLog interface {
	LogFetch(ctx context.Context, r models.FetchRecord) error
	FetchHistory(ctx context.Context, month, year, limit int) ([]models.FetchRecord, error)
}

var (
	nopLogger  = logger.NewNop()
	nopMetrics = metrics.NewNop()
)

// ScheduleService ties the extractor to the portal and the cache. Only
// Extractor is required; Fetcher, Cache and FetchLog may be nil.
type ScheduleService struct {
	Extractor Extractor
	Fetcher   Fetcher
	Cache     Cache
	FetchLog  FetchLog
	MaxAge    time.Duration // 0 keeps cached records forever
	Now       func() time.Time
	Logger    logger.Logger
	Metrics   *metrics.Metrics
}

func (s *ScheduleService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *ScheduleService) log() logger.Logger {
	if s.Logger == nil {
		return nopLogger
	}
	return s.Logger
}

func (s *ScheduleService) metrics() *metrics.Metrics {
	if s.Metrics == nil {
		return nopMetrics
	}
	return s.Metrics
}

// Parse extracts a record without touching the cache.
func (s *ScheduleService) Parse(html string) (*models.MonthlySchedule, error) {
	start := time.Now()
	schedule, err := s.Extractor.Extract(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to extract schedule: %w", err)
	}

	m := s.metrics()
	m.ParseDuration.Observe(time.Since(start).Seconds())
	m.DocumentsParsed.WithLabelValues(s.Extractor.Name()).Inc()
	m.ItemsExtracted.WithLabelValues(string(models.ItemTrip)).Add(float64(len(schedule.Trips())))
	m.ItemsExtracted.WithLabelValues(string(models.ItemActivity)).Add(float64(len(schedule.Activities())))

	s.log().Debug("parsed schedule document", "engine", s.Extractor.Name(),
		"month", schedule.Month, "year", schedule.Year, "items", len(schedule.Items))
	return schedule, nil
}

// Get returns the cached record for bd when it is fresh, otherwise fetches it.
// If the fetch fails and a stale record exists, the stale record is returned.
func (s *ScheduleService) Get(ctx context.Context, bd models.BlockDate) (*models.CachedSchedule, error) {
	if err := bd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBlockDate, err)
	}

	var cached *models.CachedSchedule
	if s.Cache != nil {
		c, err := s.Cache.Get(ctx, bd.Month, bd.Year)
		if err != nil {
			return nil, fmt.Errorf("failed to read schedule cache: %w", err)
		}
		cached = c
	}

	switch {
	case cached == nil:
		s.metrics().CacheLookups.WithLabelValues("miss").Inc()
	case !cached.Stale(s.now(), s.MaxAge):
		s.metrics().CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		s.metrics().CacheLookups.WithLabelValues("stale").Inc()
	}

	if s.Fetcher == nil {
		if cached != nil {
			return cached, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, bd)
	}

	fresh, err := s.Refresh(ctx, bd)
	if err != nil {
		if cached != nil {
			s.log().Warn("refresh failed, serving stale schedule", "blockDate", bd.String(),
				"fetchedAt", cached.FetchedAt, "error", err)
			return cached, nil
		}
		return nil, err
	}
	return fresh, nil
}

// Refresh fetches bd from the portal, extracts it and replaces the cached record.
func (s *ScheduleService) Refresh(ctx context.Context, bd models.BlockDate) (*models.CachedSchedule, error) {
	if err := bd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBlockDate, err)
	}
	if s.Fetcher == nil {
		return nil, ErrNoFetcher
	}

	page, err := s.Fetcher.Fetch(ctx, bd)
	s.logFetch(ctx, bd, page, err)
	if err != nil {
		return nil, err
	}

	fetchedAt := page.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = s.now()
	}
	return s.store(ctx, bd, page.Body, fetchedAt)
}

// Import stores a document obtained elsewhere, such as an interactive browser session.
func (s *ScheduleService) Import(ctx context.Context, bd models.BlockDate, html string) (*models.CachedSchedule, error) {
	if err := bd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBlockDate, err)
	}
	return s.store(ctx, bd, html, s.now())
}

func (s *ScheduleService) store(ctx context.Context, bd models.BlockDate, html string, fetchedAt time.Time) (*models.CachedSchedule, error) {
	schedule, err := s.Parse(html)
	if err != nil {
		return nil, err
	}
	if n := rules.MonthNumber(schedule.Month); n != 0 && (n != bd.Month || schedule.Year != bd.Year) {
		s.log().Warn("document is for a different block date", "requested", bd.String(),
			"documentMonth", schedule.Month, "documentYear", schedule.Year)
	}

	c := models.CachedSchedule{Month: bd.Month, Year: bd.Year, Schedule: schedule, FetchedAt: fetchedAt}
	if s.Cache != nil {
		if err := s.Cache.Save(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to cache schedule: %w", err)
		}
	}
	s.log().Info("stored schedule", "blockDate", bd.String(), "items", len(schedule.Items))
	return &c, nil
}

func (s *ScheduleService) logFetch(ctx context.Context, bd models.BlockDate, page *fetcher.Page, fetchErr error) {
	if s.FetchLog == nil {
		return
	}
	r := models.FetchRecord{
		Month:     bd.Month,
		Year:      bd.Year,
		Outcome:   fetcher.OutcomeOf(fetchErr),
		Attempts:  fetcher.AttemptsOf(fetchErr),
		FetchedAt: s.now(),
	}
	if fetchErr != nil {
		r.Message = fetchErr.Error()
	}
	if page != nil {
		r.Attempts = page.Attempts
		r.Bytes = len(page.Body)
	}
	if err := s.FetchLog.LogFetch(ctx, r); err != nil {
		s.log().Error("failed to record fetch", "blockDate", bd.String(), "error", err)
	}
}

// List returns the cached block dates, newest first.
func (s *ScheduleService) List(ctx context.Context) ([]models.BlockDate, error) {
	if s.Cache == nil {
		return []models.BlockDate{}, nil
	}
	return s.Cache.List(ctx)
}

func (s *ScheduleService) Delete(ctx context.Context, bd models.BlockDate) error {
	if err := bd.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlockDate, err)
	}
	if s.Cache == nil {
		return nil
	}
	return s.Cache.Delete(ctx, bd.Month, bd.Year)
}

// History returns recent portal fetches for bd, newest first.
func (s *ScheduleService) History(ctx context.Context, bd models.BlockDate, limit int) ([]models.FetchRecord, error) {
	if err := bd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBlockDate, err)
	}
	if s.FetchLog == nil {
		return []models.FetchRecord{}, nil
	}
	return s.FetchLog.FetchHistory(ctx, bd.Month, bd.Year, limit)
}
