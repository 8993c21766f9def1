package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
)

// LastReceivedAt returns the newest stored received_at for the user, or
// nil when no timestamped rows exist.
func (s *PostgresStore) LastReceivedAt(ctx context.Context, userID int64) (*time.Time, error) {
	var last sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(received_at) FROM mails WHERE user_id = $1`, userID,
	).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("last received_at: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

// ReconcileMail upserts the batch and prunes expired rows in one
// transaction. Re-fetched items already present are skipped by the
// conflict clause and show up as Fetched minus Inserted.
func (s *PostgresStore) ReconcileMail(ctx context.Context, userID int64, items []domain.MailItem) (*domain.SyncResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var inserted int64
	if len(items) > 0 {
		args := make([]interface{}, 0, len(items)*7)
		for _, m := range items {
			args = append(args,
				userID,
				m.MessageID,
				nullString(m.ThreadID),
				nullString(m.Sender),
				nullString(m.Subject),
				nullString(m.Snippet),
				nullTime(m.ReceivedAt),
			)
		}

		query := `INSERT INTO mails (user_id, message_id, thread_id, sender, subject, snippet, received_at)
		          VALUES ` + valuesPlaceholders(1, len(items), 7) + `
		          ON CONFLICT (user_id, message_id) DO NOTHING`

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("insert mails: %w", err)
		}
		inserted, _ = res.RowsAffected()
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM mails
		 WHERE user_id = $1
		   AND (received_at IS NULL OR received_at < NOW() - INTERVAL '7 days')`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("prune mails: %w", err)
	}
	deleted, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &domain.SyncResult{Fetched: len(items), Inserted: int(inserted), Deleted: int(deleted)}, nil
}

// UncategorizedMail returns all rows still awaiting classification.
func (s *PostgresStore) UncategorizedMail(ctx context.Context, userID int64) ([]domain.MailItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(subject, ''), COALESCE(sender, ''), COALESCE(snippet, ''), received_at
		 FROM mails
		 WHERE user_id = $1 AND category IS NULL
		 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("uncategorized mails: %w", err)
	}
	defer rows.Close()

	var items []domain.MailItem
	for rows.Next() {
		var m domain.MailItem
		var received sql.NullTime
		if err := rows.Scan(&m.ID, &m.Subject, &m.Sender, &m.Snippet, &received); err != nil {
			return nil, fmt.Errorf("scan mail: %w", err)
		}
		if received.Valid {
			m.ReceivedAt = &received.Time
		}
		m.UserID = userID
		items = append(items, m)
	}
	return items, rows.Err()
}

// ApplyMailCategories writes the classifier's verdicts in one statement,
// joining a literal VALUES table against the mail table. Ownership is
// enforced by the user_id predicate.
func (s *PostgresStore) ApplyMailCategories(ctx context.Context, userID int64, results []domain.CategoryResult) (int64, error) {
	if len(results) == 0 {
		return 0, nil
	}

	query, args := buildCategoryUpdate("mails", userID, results)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("apply mail categories: %w", err)
	}
	return res.RowsAffected()
}

// MailCategoryStats counts classified rows per category.
func (s *PostgresStore) MailCategoryStats(ctx context.Context, userID int64) ([]domain.CategoryStat, error) {
	return s.categoryStats(ctx, "mails", userID)
}

// categoryStats runs the shared GROUP BY aggregation for a table.
func (s *PostgresStore) categoryStats(ctx context.Context, table string, userID int64) ([]domain.CategoryStat, error) {
	query := fmt.Sprintf(
		`SELECT category, COUNT(*) AS count
		 FROM %s
		 WHERE user_id = $1 AND category IS NOT NULL
		 GROUP BY category`, table)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.CategoryStat
	for rows.Next() {
		var st domain.CategoryStat
		if err := rows.Scan(&st.Category, &st.Count); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// buildCategoryUpdate assembles the single-statement bulk category write:
//
//	UPDATE <table> AS m SET ... FROM (VALUES ...) AS v(id, category, confidence)
//	WHERE m.id = v.id AND m.user_id = $n
//
// The VALUES rows carry explicit casts so Postgres can type the literal table.
func buildCategoryUpdate(table string, userID int64, results []domain.CategoryResult) (string, []interface{}) {
	placeholders := make([]string, 0, len(results))
	args := make([]interface{}, 0, len(results)*3+1)

	for i, r := range results {
		base := i * 3
		placeholders = append(placeholders,
			fmt.Sprintf("($%d::bigint, $%d::text, $%d::real)", base+1, base+2, base+3))
		args = append(args, r.ID, r.Category, r.Confidence)
	}
	args = append(args, userID)

	query := fmt.Sprintf(
		`UPDATE %s AS m
		 SET category = v.category,
		     category_confidence = v.confidence
		 FROM (VALUES %s) AS v(id, category, confidence)
		 WHERE m.id = v.id
		   AND m.user_id = $%d`,
		table, strings.Join(placeholders, ", "), len(args))

	return query, args
}

// nullString maps "" to SQL NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullTime maps a nil time pointer to SQL NULL.
func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
