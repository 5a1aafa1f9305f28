// database/schedule_store.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gewnthar/crewsched/models"
)

// ScheduleStore caches extracted schedules keyed by (month, year). The record is
// stored verbatim as JSON; fetched_at is unix milliseconds so both drivers agree.
type ScheduleStore struct {
	db     *sql.DB
	driver string
}

func NewScheduleStore(db *sql.DB, driver string) *ScheduleStore {
	return &ScheduleStore{db: db, driver: driver}
}

// EnsureSchema creates the cache tables when missing.
func (s *ScheduleStore) EnsureSchema(ctx context.Context) error {
	payloadType := "TEXT"
	if s.driver == DriverMySQL {
		payloadType = "LONGTEXT"
	}
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS schedule_cache (
			month      INT NOT NULL,
			year       INT NOT NULL,
			payload    %s NOT NULL,
			fetched_at BIGINT NOT NULL,
			PRIMARY KEY (year, month)
		)`, payloadType),
		`CREATE TABLE IF NOT EXISTS fetch_log (
			month      INT NOT NULL,
			year       INT NOT NULL,
			outcome    VARCHAR(32) NOT NULL,
			attempts   INT NOT NULL,
			bytes      INT NOT NULL,
			message    VARCHAR(512) NOT NULL,
			fetched_at BIGINT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create cache schema: %w", err)
		}
	}
	return nil
}

// Save inserts or replaces the record for the schedule's block date.
func (s *ScheduleStore) Save(ctx context.Context, c models.CachedSchedule) error {
	if err := c.BlockDate().Validate(); err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	payload, err := json.Marshal(c.Schedule)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule %s: %w", c.BlockDate(), err)
	}
	_, err = s.db.ExecContext(ctx,
		`REPLACE INTO schedule_cache (month, year, payload, fetched_at) VALUES (?, ?, ?, ?)`,
		c.Month, c.Year, string(payload), c.FetchedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save schedule %s: %w", c.BlockDate(), err)
	}
	return nil
}

// Get returns the cached record, or nil, nil when there is none.
func (s *ScheduleStore) Get(ctx context.Context, month, year int) (*models.CachedSchedule, error) {
	var (
		payload   string
		fetchedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM schedule_cache WHERE month = ? AND year = ?`,
		month, year,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule %04d-%02d: %w", year, month, err)
	}

	var schedule models.MonthlySchedule
	if err := json.Unmarshal([]byte(payload), &schedule); err != nil {
		return nil, fmt.Errorf("failed to decode cached schedule %04d-%02d: %w", year, month, err)
	}
	return &models.CachedSchedule{
		Month:     month,
		Year:      year,
		Schedule:  &schedule,
		FetchedAt: time.UnixMilli(fetchedAt).UTC(),
	}, nil
}

// List returns every cached block date, newest first.
func (s *ScheduleStore) List(ctx context.Context) ([]models.BlockDate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT month, year FROM schedule_cache ORDER BY year DESC, month DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached schedules: %w", err)
	}
	defer rows.Close()

	dates := []models.BlockDate{}
	for rows.Next() {
		var bd models.BlockDate
		if err := rows.Scan(&bd.Month, &bd.Year); err != nil {
			return nil, fmt.Errorf("failed to scan cached schedule row: %w", err)
		}
		dates = append(dates, bd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached schedule rows: %w", err)
	}
	return dates, nil
}

// Delete removes the record for a block date. Deleting a missing record is not an error.
func (s *ScheduleStore) Delete(ctx context.Context, month, year int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM schedule_cache WHERE month = ? AND year = ?`, month, year); err != nil {
		return fmt.Errorf("failed to delete schedule %04d-%02d: %w", year, month, err)
	}
	return nil
}
