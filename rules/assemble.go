// rules/assemble.go
package rules

import "github.com/gewnthar/crewsched/models"

// Assemble builds the final record. Slices are never nil so the JSON form is
// stable whichever extractor produced the parts.
func Assemble(h Heading, calendar []models.CalendarDay, items []models.ScheduleItem, summary models.ScheduleSummary) *models.MonthlySchedule {
	if calendar == nil {
		calendar = []models.CalendarDay{}
	}
	if items == nil {
		items = []models.ScheduleItem{}
	}
	return &models.MonthlySchedule{
		Month:          h.Month,
		Year:           h.Year,
		CrewMemberName: h.CrewMemberName,
		EmployeeNumber: h.EmployeeNumber,
		LastUpdated:    h.LastUpdated,
		Calendar:       calendar,
		Items:          items,
		Summary:        summary,
	}
}
