package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
)

// LastStartTime returns the newest stored start_time for the user, or nil
// when no timestamped rows exist.
func (s *PostgresStore) LastStartTime(ctx context.Context, userID int64) (*time.Time, error) {
	var last sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(start_time) FROM events WHERE user_id = $1`, userID,
	).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("last start_time: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

// ReconcileEvents upserts the batch and prunes expired rows in one
// transaction. Re-fetched items already present are skipped by the
// conflict clause and show up as Fetched minus Inserted.
func (s *PostgresStore) ReconcileEvents(ctx context.Context, userID int64, items []domain.CalendarItem) (*domain.SyncResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var inserted int64
	if len(items) > 0 {
		args := make([]interface{}, 0, len(items)*8)
		for _, ev := range items {
			args = append(args,
				userID,
				ev.EventID,
				nullString(ev.Title),
				nullString(ev.Description),
				nullString(ev.Location),
				nullTime(ev.StartTime),
				nullTime(ev.EndTime),
				ev.AllDay,
			)
		}

		query := `INSERT INTO events (user_id, event_id, title, description, location, start_time, end_time, all_day)
		          VALUES ` + valuesPlaceholders(1, len(items), 8) + `
		          ON CONFLICT (user_id, event_id) DO NOTHING`

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("insert events: %w", err)
		}
		inserted, _ = res.RowsAffected()
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM events
		 WHERE user_id = $1
		   AND (start_time IS NULL OR start_time < NOW() - INTERVAL '1 month')`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("prune events: %w", err)
	}
	deleted, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &domain.SyncResult{Fetched: len(items), Inserted: int(inserted), Deleted: int(deleted)}, nil
}

// UncategorizedEvents returns all rows still awaiting classification.
func (s *PostgresStore) UncategorizedEvents(ctx context.Context, userID int64) ([]domain.CalendarItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(title, ''), COALESCE(description, ''), COALESCE(location, ''),
		        start_time, end_time, all_day
		 FROM events
		 WHERE user_id = $1 AND category IS NULL
		 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("uncategorized events: %w", err)
	}
	defer rows.Close()

	var items []domain.CalendarItem
	for rows.Next() {
		var ev domain.CalendarItem
		var start, end sql.NullTime
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Description, &ev.Location, &start, &end, &ev.AllDay); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if start.Valid {
			ev.StartTime = &start.Time
		}
		if end.Valid {
			ev.EndTime = &end.Time
		}
		ev.UserID = userID
		items = append(items, ev)
	}
	return items, rows.Err()
}

// ApplyEventCategories writes the classifier's verdicts in one statement.
func (s *PostgresStore) ApplyEventCategories(ctx context.Context, userID int64, results []domain.CategoryResult) (int64, error) {
	if len(results) == 0 {
		return 0, nil
	}

	query, args := buildCategoryUpdate("events", userID, results)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("apply event categories: %w", err)
	}
	return res.RowsAffected()
}

// EventCategoryStats counts classified rows per category.
func (s *PostgresStore) EventCategoryStats(ctx context.Context, userID int64) ([]domain.CategoryStat, error) {
	return s.categoryStats(ctx, "events", userID)
}
