// scraper/items.go
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gewnthar/crewsched/models"
	"github.com/gewnthar/crewsched/rules"
	"github.com/gewnthar/crewsched/utils"
)

type blockKind int

const (
	blockOther blockKind = iota
	blockSeparator
	blockTrip
	blockActivity
)

// extractItems walks the content panel's own tables once, in order, and emits a
// trip or activity for each block that parses.
func (e *Extractor) extractItems(panel *goquery.Selection, h rules.Heading) []models.ScheduleItem {
	var items []models.ScheduleItem
	panel.ChildrenFiltered("table").Each(func(i int, table *goquery.Selection) {
		switch classifyBlock(table) {
		case blockTrip:
			trip, ok := rules.BuildTrip(tripParts(table), h.Year, h.MonthNumber)
			if !ok {
				e.log.Debug("skipping trip block without a usable header", "table", i)
				return
			}
			items = append(items, models.TripItem(trip))
		case blockActivity:
			if a := extractActivity(table); a != nil {
				items = append(items, models.ActivityItem(a))
			}
		case blockSeparator:
		default:
			e.log.Debug("skipping unrecognised table", "table", i)
		}
	})
	return items
}

func classifyBlock(table *goquery.Selection) blockKind {
	if attr(table, "name") == rules.SeparatorName || table.Find("hr").Length() > 0 {
		return blockSeparator
	}
	isTrip := false
	table.Find("td, th").EachWithBreak(func(_ int, td *goquery.Selection) bool {
		color := utils.StyleValue(attr(td, "style"), "color")
		isTrip = rules.IsTripMarker(utils.CleanText(td.Text()), color)
		return !isTrip
	})
	if isTrip {
		return blockTrip
	}
	if activityMarker(table).Length() > 0 {
		return blockActivity
	}
	return blockOther
}

// activityMarker finds the styled span carrying "CODE : DDMON".
func activityMarker(table *goquery.Selection) *goquery.Selection {
	return table.Find("span[style]").FilterFunction(func(_ int, span *goquery.Selection) bool {
		_, _, ok := rules.ParseActivityMarker(utils.CleanText(span.Text()))
		return ok
	}).First()
}

func tripParts(table *goquery.Selection) rules.TripParts {
	var p rules.TripParts

	rows := tableRows(table)
	if len(rows) > 0 {
		p.HeaderRow = rowCells(rows[0])
	}
	if len(rows) > 1 {
		p.DetailRow = rowCells(rows[1])
	}

	if flights := flightTable(table); flights.Length() > 0 {
		for _, tr := range tableRows(flights) {
			p.FlightRows = append(p.FlightRows, toRow(tr))
		}
	}

	table.Find(strings.Join(rules.EmphasisTags, ", ")).Each(func(_ int, b *goquery.Selection) {
		p.Emphasized = append(p.Emphasized, utils.CleanText(b.Text()))
	})

	totals := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return utils.HasClassToken(attr(tr, "class"), rules.RowClassTotals)
	}).Last()
	if totals.Length() > 0 {
		p.TotalsRow = rowCells(totals)
	}

	if crew := crewTable(table); crew.Length() > 0 {
		for _, tr := range tableRows(crew) {
			p.CrewRows = append(p.CrewRows, rowCells(tr))
		}
	}
	return p
}

// flightTable is the first nested table whose own rows include the "main" header row.
func flightTable(table *goquery.Selection) *goquery.Selection {
	return table.Find("table").FilterFunction(func(_ int, t *goquery.Selection) bool {
		for _, tr := range tableRows(t) {
			if rules.KindOf(attr(tr, "class")) == rules.RowHeader {
				return true
			}
		}
		return false
	}).First()
}

// crewTable is the first nested table with an emphasized "Crew:" label.
func crewTable(table *goquery.Selection) *goquery.Selection {
	return table.Find("table").FilterFunction(func(_ int, t *goquery.Selection) bool {
		found := false
		t.Find(strings.Join(rules.EmphasisTags, ", ")).EachWithBreak(func(_ int, b *goquery.Selection) bool {
			found = strings.Contains(b.Text(), rules.CrewLabel)
			return !found
		})
		return found
	}).First()
}

func extractActivity(table *goquery.Selection) *models.Activity {
	typ, dateStr, ok := rules.ParseActivityMarker(utils.CleanText(activityMarker(table).Text()))
	if !ok {
		return nil
	}
	var rows []rules.Cells
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		rows = append(rows, rowCells(tr))
	})
	return rules.BuildActivity(typ, dateStr, rows)
}
