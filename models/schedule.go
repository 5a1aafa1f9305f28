// models/schedule.go
package models

// FlightLeg is one flight segment inside a duty period. Time-like fields are the
// portal's 4-digit HHMM text, passed through as-is (airline local, no conversion).
type FlightLeg struct {
	DayOfWeek     string `json:"dayOfWeek"`
	DayOfMonth    string `json:"dayOfMonth"`
	IsDeadhead    bool   `json:"isDeadhead"`
	Position      string `json:"position"`
	FlightNumber  string `json:"flightNumber"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
	BlockTime     string `json:"blockTime"`
	GroundTime    string `json:"groundTime"`
}

// Layover is the rest period that follows a duty period away from base.
type Layover struct {
	Airport     string `json:"airport"`
	RestTime    string `json:"restTime"`
	HotelName   string `json:"hotelName"`
	HotelPhone  string `json:"hotelPhone"`
	DutyEndTime string `json:"dutyEndTime"`
	ReportTime  string `json:"reportTime"`
}

// Totals are the block/deadhead/credit/duty-FDP columns of a "Total:" row.
type Totals struct {
	Block    string `json:"block"`
	Deadhead string `json:"deadhead"`
	Credit   string `json:"credit"`
	DutyFDP  string `json:"dutyFdp"`
}

// DutyPeriod groups the legs flown between two rest periods. Layover is nil for
// the last duty period of a trip.
type DutyPeriod struct {
	Legs    []FlightLeg `json:"legs"`
	Totals  Totals      `json:"totals"`
	Layover *Layover    `json:"layover"`
}

type CrewMember struct {
	Position       string `json:"position"` // CA or FO
	EmployeeNumber string `json:"employeeNumber"`
	Name           string `json:"name"`
}

// Trip is a pairing: one trip number operated over one or more duty periods.
type Trip struct {
	TripNumber      string       `json:"tripNumber"`
	DateStr         string       `json:"dateStr"` // e.g. "01FEB"
	Date            string       `json:"date"`    // YYYY-MM-DD
	Frequency       string       `json:"frequency"`
	BaseReportTime  string       `json:"baseReportTime"`
	OperatingDates  string       `json:"operatingDates"`
	Base            string       `json:"base"`
	Equipment       string       `json:"equipment"`
	CrewComposition string       `json:"crewComposition"`
	Exceptions      string       `json:"exceptions"`
	DutyPeriods     []DutyPeriod `json:"dutyPeriods"`
	TAFB            string       `json:"tafb"`
	TripRig         string       `json:"tripRig"`
	Totals          Totals       `json:"totals"`
	Crew            []CrewMember `json:"crew"`
}

// Legs returns every leg of the trip in duty period order.
func (t *Trip) Legs() []FlightLeg {
	var legs []FlightLeg
	for _, dp := range t.DutyPeriods {
		legs = append(legs, dp.Legs...)
	}
	return legs
}

// Activity is a non-flying event (sick, simulator, ground school, reserve...).
type Activity struct {
	Type      string `json:"type"`
	DateStr   string `json:"dateStr"`
	StartDate string `json:"startDate"`
	StartTime string `json:"startTime"`
	EndDate   string `json:"endDate"`
	EndTime   string `json:"endTime"`
	Credit    string `json:"credit"`
}

type ItemKind string

const (
	ItemTrip     ItemKind = "trip"
	ItemActivity ItemKind = "activity"
)

// ScheduleItem holds exactly one of Trip or Activity, selected by Kind.
type ScheduleItem struct {
	Kind     ItemKind  `json:"kind"`
	Trip     *Trip     `json:"trip,omitempty"`
	Activity *Activity `json:"activity,omitempty"`
}

func TripItem(t *Trip) ScheduleItem { return ScheduleItem{Kind: ItemTrip, Trip: t} }

func ActivityItem(a *Activity) ScheduleItem { return ScheduleItem{Kind: ItemActivity, Activity: a} }

// CalendarDay is one row of the calendar sidebar. Activity is empty on a day off,
// starts with "O" for a trip, otherwise holds an activity code.
type CalendarDay struct {
	DayOfWeek      string `json:"dayOfWeek"`
	DayOfMonth     int    `json:"dayOfMonth"`
	Activity       string `json:"activity"`
	LayoverAirport string `json:"layoverAirport"`
	IsWeekend      bool   `json:"isWeekend"`
}

func (d CalendarDay) IsOff() bool { return d.Activity == "" }

type ScheduleSummary struct {
	Block   float64 `json:"block"`
	Credit  float64 `json:"credit"`
	YTD     float64 `json:"ytd"`
	DaysOff float64 `json:"daysOff"`
}

// MonthlySchedule is the complete record extracted from one schedule detail page.
type MonthlySchedule struct {
	Month          string          `json:"month"`
	Year           int             `json:"year"`
	CrewMemberName string          `json:"crewMemberName"`
	EmployeeNumber string          `json:"employeeNumber"`
	LastUpdated    string          `json:"lastUpdated"`
	Calendar       []CalendarDay   `json:"calendar"`
	Items          []ScheduleItem  `json:"items"`
	Summary        ScheduleSummary `json:"summary"`
}

// Trips returns the trip items in schedule order.
func (s *MonthlySchedule) Trips() []*Trip {
	var trips []*Trip
	for _, item := range s.Items {
		if item.Kind == ItemTrip && item.Trip != nil {
			trips = append(trips, item.Trip)
		}
	}
	return trips
}

// Activities returns the activity items in schedule order.
func (s *MonthlySchedule) Activities() []*Activity {
	var activities []*Activity
	for _, item := range s.Items {
		if item.Kind == ItemActivity && item.Activity != nil {
			activities = append(activities, item.Activity)
		}
	}
	return activities
}

// FindTrip returns the first trip with the given number and date token, or nil.
func (s *MonthlySchedule) FindTrip(tripNumber, dateStr string) *Trip {
	for _, t := range s.Trips() {
		if t.TripNumber == tripNumber && (dateStr == "" || t.DateStr == dateStr) {
			return t
		}
	}
	return nil
}
