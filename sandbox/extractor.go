// sandbox/extractor.go

// Package sandbox is a second schedule extractor that needs nothing beyond a bare
// HTML tree: no CSS selector engine, no goroutines, no I/O besides reading the
// document. It must produce the same record as the goquery extractor.
package sandbox

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gewnthar/crewsched/models"
	"github.com/gewnthar/crewsched/rules"
	"github.com/gewnthar/crewsched/utils"
)

const EngineName = "sandbox"

type Extractor struct {
	now func() time.Time
}

// New returns an extractor; now may be nil to use the system clock.
func New(now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{now: now}
}

func (e *Extractor) Name() string { return EngineName }

func (e *Extractor) Extract(r io.Reader) (*models.MonthlySchedule, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule document: %w", err)
	}

	var headingText string
	if headings := doc.All(rules.HeadingTags...); len(headings) > 0 {
		headingText = headings[0].Text()
	}
	h := rules.ParseHeading(headingText, e.now())

	sidebar := byNameOrID(doc, "table", rules.CalendarTableName, rules.CalendarTableID)
	var calendar []models.CalendarDay
	var summary models.ScheduleSummary
	for _, tr := range rowsOf(sidebar) {
		cells := cellsOf(tr)
		if day, ok := rules.CalendarDayFromRow(cells, rules.RowBackground(tr.Attr("bgcolor"), tr.Attr("style"))); ok {
			calendar = append(calendar, day)
		}
		rules.ApplySummaryRow(&summary, cells)
	}

	var items []models.ScheduleItem
	panel := byNameOrID(doc, "", rules.ContentPanelName, rules.ContentPanelID)
	for _, table := range panel.Children("table") {
		if item, ok := extractBlock(table, h); ok {
			items = append(items, item)
		}
	}
	return rules.Assemble(h, calendar, items, summary), nil
}

func (e *Extractor) ExtractString(html string) (*models.MonthlySchedule, error) {
	return e.Extract(strings.NewReader(html))
}

// Extract runs a sandboxed extractor over html with the system clock.
func Extract(html string) (*models.MonthlySchedule, error) {
	return New(nil).ExtractString(html)
}

func byNameOrID(root *Element, tag, name, id string) *Element {
	if el := root.SelectFirst(tag, "name", name); el != nil {
		return el
	}
	return root.SelectFirst(tag, "id", id)
}

func rowsOf(table *Element) []*Element {
	var rows []*Element
	for _, child := range table.Children("tr", "thead", "tbody", "tfoot") {
		if child.Tag() == "tr" {
			rows = append(rows, child)
			continue
		}
		rows = append(rows, child.Children("tr")...)
	}
	return rows
}

func cellsOf(tr *Element) rules.Cells {
	var raw []string
	for _, td := range tr.Children("td", "th") {
		raw = append(raw, td.Text())
	}
	return rules.NewCells(raw)
}

func extractBlock(table *Element, h rules.Heading) (models.ScheduleItem, bool) {
	if table.Attr("name") == rules.SeparatorName || len(table.All("hr")) > 0 {
		return models.ScheduleItem{}, false
	}
	for _, td := range table.All("td", "th") {
		color := utils.StyleValue(td.Attr("style"), "color")
		if rules.IsTripMarker(utils.CleanText(td.Text()), color) {
			trip, ok := rules.BuildTrip(tripParts(table), h.Year, h.MonthNumber)
			if !ok {
				return models.ScheduleItem{}, false
			}
			return models.TripItem(trip), true
		}
	}
	for _, span := range table.All("span") {
		if !span.hasAttr("style") {
			continue
		}
		typ, dateStr, ok := rules.ParseActivityMarker(utils.CleanText(span.Text()))
		if !ok {
			continue
		}
		var rows []rules.Cells
		for _, tr := range table.All("tr") {
			rows = append(rows, cellsOf(tr))
		}
		return models.ActivityItem(rules.BuildActivity(typ, dateStr, rows)), true
	}
	return models.ScheduleItem{}, false
}

func tripParts(table *Element) rules.TripParts {
	var p rules.TripParts
	rows := rowsOf(table)
	if len(rows) > 0 {
		p.HeaderRow = cellsOf(rows[0])
	}
	if len(rows) > 1 {
		p.DetailRow = cellsOf(rows[1])
	}

	nested := table.All("table")
	for _, t := range nested {
		if !hasHeaderRow(t) {
			continue
		}
		for _, tr := range rowsOf(t) {
			p.FlightRows = append(p.FlightRows, rules.Row{
				Kind:  rules.KindOf(tr.Attr("class")),
				Cells: cellsOf(tr),
				Text:  tr.Text(),
			})
		}
		break
	}

	for _, b := range table.All(rules.EmphasisTags...) {
		p.Emphasized = append(p.Emphasized, utils.CleanText(b.Text()))
	}

	for _, tr := range table.All("tr") {
		if utils.HasClassToken(tr.Attr("class"), rules.RowClassTotals) {
			p.TotalsRow = cellsOf(tr)
		}
	}

	for _, t := range nested {
		if !hasCrewLabel(t) {
			continue
		}
		for _, tr := range rowsOf(t) {
			p.CrewRows = append(p.CrewRows, cellsOf(tr))
		}
		break
	}
	return p
}

func hasHeaderRow(table *Element) bool {
	for _, tr := range rowsOf(table) {
		if rules.KindOf(tr.Attr("class")) == rules.RowHeader {
			return true
		}
	}
	return false
}

func hasCrewLabel(table *Element) bool {
	for _, b := range table.All(rules.EmphasisTags...) {
		if strings.Contains(b.Text(), rules.CrewLabel) {
			return true
		}
	}
	return false
}
