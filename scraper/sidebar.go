// scraper/sidebar.go
package scraper

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/gewnthar/crewsched/models"
	"github.com/gewnthar/crewsched/rules"
)

// extractCalendar reads one CalendarDay per day row of the sidebar, in document order.
func extractCalendar(sidebar *goquery.Selection) []models.CalendarDay {
	var days []models.CalendarDay
	for _, tr := range tableRows(sidebar) {
		bg := rules.RowBackground(attr(tr, "bgcolor"), attr(tr, "style"))
		if day, ok := rules.CalendarDayFromRow(rowCells(tr), bg); ok {
			days = append(days, day)
		}
	}
	return days
}

// extractSummary reads the labelled monthly totals mixed into the same sidebar table.
func extractSummary(sidebar *goquery.Selection) models.ScheduleSummary {
	var summary models.ScheduleSummary
	for _, tr := range tableRows(sidebar) {
		rules.ApplySummaryRow(&summary, rowCells(tr))
	}
	return summary
}
