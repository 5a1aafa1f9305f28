// scraper/extractor.go
package scraper

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gewnthar/crewsched/logger"
	"github.com/gewnthar/crewsched/models"
	"github.com/gewnthar/crewsched/rules"
)

// EngineName identifies this extractor in logs and metrics.
const EngineName = "goquery"

// Extractor turns a schedule detail page into a MonthlySchedule using goquery.
// It holds no per-document state and is safe for concurrent use.
type Extractor struct {
	now func() time.Time
	log logger.Logger
}

type Option func(*Extractor)

// WithClock sets the clock used when the page carries no last-updated year.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

func WithLogger(l logger.Logger) Option {
	return func(e *Extractor) { e.log = l }
}

func New(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now, log: logger.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) Name() string { return EngineName }

// Extract parses the document and extracts the schedule. The only error is a
// failure to build the document tree; missing fields degrade to empty values.
func (e *Extractor) Extract(r io.Reader) (*models.MonthlySchedule, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule document: %w", err)
	}

	heading := doc.Find(strings.Join(rules.HeadingTags, ", ")).First()
	if heading.Length() == 0 {
		e.log.Debug("schedule page has no heading")
	}
	h := rules.ParseHeading(heading.Text(), e.now())

	sidebar := findByNameOrID(doc.Selection, "table", rules.CalendarTableName, rules.CalendarTableID)
	calendar := extractCalendar(sidebar)
	summary := extractSummary(sidebar)

	panel := findByNameOrID(doc.Selection, "", rules.ContentPanelName, rules.ContentPanelID)
	items := e.extractItems(panel, h)

	e.log.Debug("extracted schedule",
		"month", h.Month, "year", h.Year, "calendarDays", len(calendar), "items", len(items))
	return rules.Assemble(h, calendar, items, summary), nil
}

// ExtractString is Extract over an in-memory document.
func (e *Extractor) ExtractString(html string) (*models.MonthlySchedule, error) {
	return e.Extract(strings.NewReader(html))
}

// Extract runs a default Extractor over html.
func Extract(html string) (*models.MonthlySchedule, error) {
	return New().ExtractString(html)
}
