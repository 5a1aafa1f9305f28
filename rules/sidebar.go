// rules/sidebar.go
package rules

import (
	"strconv"
	"strings"

	"github.com/gewnthar/crewsched/models"
	"github.com/gewnthar/crewsched/utils"
)

// CalendarDayFromRow reads one calendar sidebar row. ok is false for rows that
// are not day rows (fewer than 4 cells, blank day columns, or a non-numeric day).
// bgcolor is the row's background colour; only lightsteelblue marks a weekend.
func CalendarDayFromRow(c Cells, bgcolor string) (day models.CalendarDay, ok bool) {
	if len(c) < 4 {
		return day, false
	}
	dow, dom := c.At(0), c.At(1)
	if dow == "" || dom == "" {
		return day, false
	}
	n, err := strconv.Atoi(dom)
	if err != nil {
		return day, false
	}
	return models.CalendarDay{
		DayOfWeek:      dow,
		DayOfMonth:     n,
		Activity:       c.At(2),
		LayoverAirport: c.At(3),
		IsWeekend:      strings.EqualFold(strings.TrimSpace(bgcolor), WeekendColor),
	}, true
}

// ApplySummaryRow folds one sidebar row into the summary. The last matching row
// wins; an unparseable number leaves the field untouched.
func ApplySummaryRow(s *models.ScheduleSummary, c Cells) {
	if len(c) < 2 {
		return
	}
	label := strings.ToLower(c.At(0))
	var field *float64
	switch {
	case label == "block":
		field = &s.Block
	case label == "credit":
		field = &s.Credit
	case label == "ytd":
		field = &s.YTD
	case strings.Contains(label, "days off"):
		field = &s.DaysOff
	default:
		return
	}
	if v, err := strconv.ParseFloat(c.At(1), 64); err == nil {
		*field = v
	}
}

// RowBackground picks a row's background colour from its bgcolor attribute,
// falling back to an inline background-color style.
func RowBackground(bgcolorAttr, styleAttr string) string {
	if bg := strings.TrimSpace(bgcolorAttr); bg != "" {
		return bg
	}
	return utils.StyleValue(styleAttr, "background-color")
}
