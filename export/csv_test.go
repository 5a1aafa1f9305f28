package export

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/crewsched/models"
	"github.com/gewnthar/crewsched/scraper"
)

func fixtureSchedule(t *testing.T) *models.MonthlySchedule {
	t.Helper()
	b, err := os.ReadFile("../scraper/testdata/february_2026.html")
	require.NoError(t, err)
	s, err := scraper.Extract(string(b))
	require.NoError(t, err)
	return s
}

func TestLegRows(t *testing.T) {
	rows := LegRows(fixtureSchedule(t))
	// O4031 has 3 legs, O4107 4, O4220 3.
	require.Len(t, rows, 10)

	assert.Equal(t, LegRow{
		TripNumber: "O4031", TripDate: "2026-02-01", DutyPeriod: 1,
		DayOfWeek: "SU", DayOfMonth: "01", Position: "CA", FlightNumber: "1285",
		Origin: "MCO", Destination: "SJU", DepartureTime: "0700", ArrivalTime: "1004",
		BlockTime: "0304", GroundTime: "0056",
	}, rows[0])
	assert.Equal(t, "BOS", rows[1].LayoverAirport)
	assert.Equal(t, "Hilton Boston Logan Airport", rows[1].HotelName)
	assert.Equal(t, 2, rows[2].DutyPeriod)
	assert.Equal(t, "", rows[2].LayoverAirport)

	var deadheads int
	for _, r := range rows {
		if r.Deadhead {
			deadheads++
		}
	}
	assert.Equal(t, 1, deadheads)
}

func TestWriteLegs(t *testing.T) {
	s := fixtureSchedule(t)
	var buf bytes.Buffer
	require.NoError(t, WriteLegs(&buf, s))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "trip,trip_date,duty_period,dow,dom,deadhead,position,flight,origin,destination,departure,arrival,block,ground,layover,hotel", lines[0])

	back, err := ReadLegs(&buf)
	require.NoError(t, err)
	assert.Equal(t, LegRows(s), back)
}

func TestWriteCalendar(t *testing.T) {
	s := fixtureSchedule(t)
	var buf bytes.Buffer
	require.NoError(t, WriteCalendar(&buf, s))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 29)
	assert.Equal(t, "dow,dom,activity,layover,weekend", lines[0])
	assert.Equal(t, "SU,1,O4031,BOS,true", lines[1])
	assert.Equal(t, "MO,2,O4031,,false", lines[2])

	back, err := ReadCalendar(&buf)
	require.NoError(t, err)
	assert.Equal(t, CalendarRows(s), back)
}

func TestWrite_EmptySchedule(t *testing.T) {
	empty := &models.MonthlySchedule{}

	var legs bytes.Buffer
	require.NoError(t, WriteLegs(&legs, empty))
	assert.Equal(t, 1, strings.Count(legs.String(), "\n"))

	var cal bytes.Buffer
	require.NoError(t, WriteCalendar(&cal, empty))
	assert.Equal(t, "dow,dom,activity,layover,weekend\n", cal.String())

	rows, err := ReadCalendar(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRead_HeaderOnly(t *testing.T) {
	empty := &models.MonthlySchedule{}

	var legs bytes.Buffer
	require.NoError(t, WriteLegs(&legs, empty))
	rows, err := ReadLegs(bytes.NewReader(legs.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, VerifyLegs(&legs, empty))

	var cal bytes.Buffer
	require.NoError(t, WriteCalendar(&cal, empty))
	days, err := ReadCalendar(bytes.NewReader(cal.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, days)
	assert.NoError(t, VerifyCalendar(&cal, empty))
}

func TestVerify(t *testing.T) {
	s := fixtureSchedule(t)

	var legs bytes.Buffer
	require.NoError(t, WriteLegs(&legs, s))
	assert.NoError(t, VerifyLegs(bytes.NewReader(legs.Bytes()), s))

	var cal bytes.Buffer
	require.NoError(t, WriteCalendar(&cal, s))
	assert.NoError(t, VerifyCalendar(bytes.NewReader(cal.Bytes()), s))

	truncated := strings.Join(strings.Split(cal.String(), "\n")[:5], "\n") + "\n"
	err := VerifyCalendar(strings.NewReader(truncated), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calendar CSV does not read back")
}
