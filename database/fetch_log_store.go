// database/fetch_log_store.go
package database

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/gewnthar/crewsched/models"
)

const maxFetchMessage = 512

// LogFetch appends one portal fetch to the fetch log.
func (s *ScheduleStore) LogFetch(ctx context.Context, r models.FetchRecord) error {
	msg := truncateMessage(r.Message, maxFetchMessage)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fetch_log (month, year, outcome, attempts, bytes, message, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Month, r.Year, string(r.Outcome), r.Attempts, r.Bytes, msg, r.FetchedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to log fetch for %04d-%02d: %w", r.Year, r.Month, err)
	}
	return nil
}

// truncateMessage cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateMessage(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// FetchHistory returns the most recent fetches for a block date, newest first.
// limit <= 0 means no limit.
func (s *ScheduleStore) FetchHistory(ctx context.Context, month, year, limit int) ([]models.FetchRecord, error) {
	query := `SELECT month, year, outcome, attempts, bytes, message, fetched_at
		FROM fetch_log WHERE month = ? AND year = ? ORDER BY fetched_at DESC`
	args := []interface{}{month, year}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch log for %04d-%02d: %w", year, month, err)
	}
	defer rows.Close()

	records := []models.FetchRecord{}
	for rows.Next() {
		var (
			r         models.FetchRecord
			outcome   string
			fetchedAt int64
		)
		if err := rows.Scan(&r.Month, &r.Year, &outcome, &r.Attempts, &r.Bytes, &r.Message, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fetch log row: %w", err)
		}
		r.Outcome = models.FetchOutcome(outcome)
		r.FetchedAt = time.UnixMilli(fetchedAt).UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fetch log rows: %w", err)
	}
	return records, nil
}
