// export/csv.go
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jszwec/csvutil"

	"github.com/gewnthar/crewsched/models"
)

// LegRow is one flight leg flattened with its trip and duty period.
type LegRow struct {
	TripNumber     string `csv:"trip"`
	TripDate       string `csv:"trip_date"`
	DutyPeriod     int    `csv:"duty_period"`
	DayOfWeek      string `csv:"dow"`
	DayOfMonth     string `csv:"dom"`
	Deadhead       bool   `csv:"deadhead"`
	Position       string `csv:"position"`
	FlightNumber   string `csv:"flight"`
	Origin         string `csv:"origin"`
	Destination    string `csv:"destination"`
	DepartureTime  string `csv:"departure"`
	ArrivalTime    string `csv:"arrival"`
	BlockTime      string `csv:"block"`
	GroundTime     string `csv:"ground"`
	LayoverAirport string `csv:"layover,omitempty"`
	HotelName      string `csv:"hotel,omitempty"`
}

type CalendarRow struct {
	DayOfWeek      string `csv:"dow"`
	DayOfMonth     int    `csv:"dom"`
	Activity       string `csv:"activity"`
	LayoverAirport string `csv:"layover"`
	Weekend        bool   `csv:"weekend"`
}

// LegRows flattens every trip leg in schedule order. The layover columns are
// filled on the last leg of a duty period that ends in a layover.
func LegRows(s *models.MonthlySchedule) []LegRow {
	rows := []LegRow{}
	for _, trip := range s.Trips() {
		for i, dp := range trip.DutyPeriods {
			for j, leg := range dp.Legs {
				row := LegRow{
					TripNumber:    trip.TripNumber,
					TripDate:      trip.Date,
					DutyPeriod:    i + 1,
					DayOfWeek:     leg.DayOfWeek,
					DayOfMonth:    leg.DayOfMonth,
					Deadhead:      leg.IsDeadhead,
					Position:      leg.Position,
					FlightNumber:  leg.FlightNumber,
					Origin:        leg.Origin,
					Destination:   leg.Destination,
					DepartureTime: leg.DepartureTime,
					ArrivalTime:   leg.ArrivalTime,
					BlockTime:     leg.BlockTime,
					GroundTime:    leg.GroundTime,
				}
				if dp.Layover != nil && j == len(dp.Legs)-1 {
					row.LayoverAirport = dp.Layover.Airport
					row.HotelName = dp.Layover.HotelName
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func CalendarRows(s *models.MonthlySchedule) []CalendarRow {
	rows := make([]CalendarRow, 0, len(s.Calendar))
	for _, d := range s.Calendar {
		rows = append(rows, CalendarRow{
			DayOfWeek:      d.DayOfWeek,
			DayOfMonth:     d.DayOfMonth,
			Activity:       d.Activity,
			LayoverAirport: d.LayoverAirport,
			Weekend:        d.IsWeekend,
		})
	}
	return rows
}

// WriteLegs writes the leg table, header included even when there are no legs.
func WriteLegs(w io.Writer, s *models.MonthlySchedule) error {
	rows := LegRows(s)
	return write(w, LegRow{}, rows, len(rows))
}

func WriteCalendar(w io.Writer, s *models.MonthlySchedule) error {
	rows := CalendarRows(s)
	return write(w, CalendarRow{}, rows, len(rows))
}

func write(w io.Writer, header interface{}, rows interface{}, n int) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if n > 0 {
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("failed to encode CSV rows: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// ReadLegs decodes a leg table written by WriteLegs. A header-only table
// yields no rows.
func ReadLegs(r io.Reader) ([]LegRow, error) {
	return read[LegRow](r, "leg")
}

// ReadCalendar decodes a calendar table written by WriteCalendar.
func ReadCalendar(r io.Reader) ([]CalendarRow, error) {
	return read[CalendarRow](r, "calendar")
}

func read[T any](r io.Reader, table string) ([]T, error) {
	rows := []T{}
	decoder, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		return nil, fmt.Errorf("failed to create CSV decoder for %s table: %w", table, err)
	}
	if err := decoder.Decode(&rows); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode %s CSV data: %w", table, err)
	}
	return rows, nil
}

// VerifyLegs reads a leg table back and checks it against the schedule it was written from.
func VerifyLegs(r io.Reader, s *models.MonthlySchedule) error {
	got, err := ReadLegs(r)
	if err != nil {
		return err
	}
	return verify("leg", LegRows(s), got)
}

func VerifyCalendar(r io.Reader, s *models.MonthlySchedule) error {
	got, err := ReadCalendar(r)
	if err != nil {
		return err
	}
	return verify("calendar", CalendarRows(s), got)
}

func verify[T any](table string, want, got []T) error {
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		return fmt.Errorf("%s CSV does not read back (-want +got):\n%s", table, diff)
	}
	return nil
}
