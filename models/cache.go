// models/cache.go
package models

import (
	"fmt"
	"time"
)

// BlockDate identifies one month's schedule on the portal.
type BlockDate struct {
	Month int `json:"month"` // 1-12
	Year  int `json:"year"`
}

func (b BlockDate) Validate() error {
	if b.Month < 1 || b.Month > 12 {
		return fmt.Errorf("month %d out of range 1-12", b.Month)
	}
	if b.Year < 1900 || b.Year > 9999 {
		return fmt.Errorf("year %d out of range", b.Year)
	}
	return nil
}

func (b BlockDate) String() string {
	return fmt.Sprintf("%04d-%02d", b.Year, b.Month)
}

// CachedSchedule is a stored schedule record together with the time it was fetched.
type CachedSchedule struct {
	Month     int              `json:"month"`
	Year      int              `json:"year"`
	Schedule  *MonthlySchedule `json:"schedule"`
	FetchedAt time.Time        `json:"fetchedAt"`
}

func (c *CachedSchedule) BlockDate() BlockDate {
	return BlockDate{Month: c.Month, Year: c.Year}
}

// Stale reports whether the record is older than maxAge at now. A zero maxAge never expires.
func (c *CachedSchedule) Stale(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return now.Sub(c.FetchedAt) > maxAge
}

// FetchOutcome classifies one portal fetch.
type FetchOutcome string

const (
	FetchOK            FetchOutcome = "ok"
	FetchStillBuilding FetchOutcome = "still_building"
	FetchUnauthorized  FetchOutcome = "unauthorized"
	FetchFailed        FetchOutcome = "failed"
)

// FetchRecord is one entry of the portal fetch log.
type FetchRecord struct {
	Month     int          `json:"month"`
	Year      int          `json:"year"`
	Outcome   FetchOutcome `json:"outcome"`
	Attempts  int          `json:"attempts"`
	Bytes     int          `json:"bytes"`
	Message   string       `json:"message,omitempty"`
	FetchedAt time.Time    `json:"fetchedAt"`
}
