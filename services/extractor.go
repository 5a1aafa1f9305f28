// services/extractor.go
package services

import (
	"fmt"
	"time"

	"github.com/gewnthar/crewsched/logger"
	"github.com/gewnthar/crewsched/sandbox"
	"github.com/gewnthar/crewsched/scraper"
)

// NewExtractor returns the extractor for a parser engine name.
func NewExtractor(engine string, log logger.Logger, now func() time.Time) (Extractor, error) {
	if now == nil {
		now = time.Now
	}
	switch engine {
	case "", scraper.EngineName:
		opts := []scraper.Option{scraper.WithClock(now)}
		if log != nil {
			opts = append(opts, scraper.WithLogger(log.With("component", "extractor")))
		}
		return scraper.New(opts...), nil
	case sandbox.EngineName:
		return sandbox.New(now), nil
	}
	return nil, fmt.Errorf("unknown parser engine %q", engine)
}
