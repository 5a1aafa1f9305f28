// rules/activity.go
package rules

import "github.com/gewnthar/crewsched/models"

// ParseActivityMarker reads "SIC : 06FEB" style text.
func ParseActivityMarker(text string) (typ, dateStr string, ok bool) {
	m := ActivityMarker.Find(text)
	if m == nil {
		return "", "", false
	}
	return m[0], m[1], true
}

// BuildActivity fills an activity from the first row whose first cell is the
// type code. Without such a row the times stay empty.
func BuildActivity(typ, dateStr string, rows []Cells) *models.Activity {
	a := &models.Activity{Type: typ, DateStr: dateStr}
	for _, c := range rows {
		if c.At(0) != typ {
			continue
		}
		a.StartDate = c.At(1)
		a.StartTime = c.At(2)
		a.EndDate = c.At(3)
		a.EndTime = c.At(4)
		a.Credit = c.At(5)
		break
	}
	return a
}
