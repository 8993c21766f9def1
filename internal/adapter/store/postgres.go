package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/port"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection, applies the schema, and returns a
// store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// --- Users ---

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT id, email, COALESCE(full_name, ''), COALESCE(picture_url, ''), created_at
	          FROM users WHERE id = $1`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.FullName, &user.PictureURL, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, COALESCE(full_name, ''), COALESCE(picture_url, ''), created_at
	          FROM users WHERE email = $1`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.FullName, &user.PictureURL, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

// CreateUserWithCredential inserts the user row and their encrypted
// refresh token atomically, so a half-created account can never exist.
func (s *PostgresStore) CreateUserWithCredential(ctx context.Context, u *domain.User, provider, encryptedToken string) (*domain.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var user domain.User
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (email, full_name, picture_url)
		 VALUES ($1, $2, $3)
		 RETURNING id, email, COALESCE(full_name, ''), COALESCE(picture_url, ''), created_at`,
		u.Email, u.FullName, u.PictureURL,
	).Scan(&user.ID, &user.Email, &user.FullName, &user.PictureURL, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO oauth_tokens (user_id, provider, encrypted_token)
		 VALUES ($1, $2, $3)`,
		user.ID, provider, encryptedToken,
	)
	if err != nil {
		return nil, fmt.Errorf("insert credential: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &user, nil
}

// --- Credentials ---

// GetEncryptedToken returns the stored refresh-token blob for (user, provider).
func (s *PostgresStore) GetEncryptedToken(ctx context.Context, userID int64, provider string) (string, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT encrypted_token FROM oauth_tokens WHERE user_id = $1 AND provider = $2`,
		userID, provider,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return "", port.ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("get credential: %w", err)
	}
	return blob, nil
}

// UpsertEncryptedToken overwrites the stored blob, keeping at most one row
// per (user, provider).
func (s *PostgresStore) UpsertEncryptedToken(ctx context.Context, userID int64, provider, encryptedToken string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO oauth_tokens (user_id, provider, encrypted_token)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, provider) DO UPDATE SET encrypted_token = EXCLUDED.encrypted_token`,
		userID, provider, encryptedToken,
	)
	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

// --- Audit Logs ---

// WriteAudit implements middleware.AuditWriter.
func (s *PostgresStore) WriteAudit(userID, action, resource, resourceID, details, ip, userAgent string) error {
	query := `INSERT INTO audit_logs (user_id, action, resource, resource_id, details, ip, user_agent)
	          VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)`
	_, err := s.db.ExecContext(context.Background(), query,
		userID, action, resource, resourceID, details, ip, userAgent,
	)
	return err
}

// ListAuditLogs returns recent audit logs with optional filters.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error) {
	query := `SELECT id, user_id, action, resource, resource_id, details, ip, user_agent, created_at
	          FROM audit_logs`
	args := []interface{}{}
	argIdx := 1

	if action != "" {
		query += fmt.Sprintf(" WHERE action = $%d", argIdx)
		args = append(args, action)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.Action, &l.Resource, &l.ResourceID,
			&l.Details, &l.IP, &l.UserAgent, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// --- Helpers ---

// valuesPlaceholders builds "($1, $2, ...), ($n+1, ...)" groups for
// multi-row VALUES clauses: rows groups of width columns each, starting
// at parameter number start.
func valuesPlaceholders(start, rows, width int) string {
	out := ""
	idx := start
	for r := 0; r < rows; r++ {
		if r > 0 {
			out += ", "
		}
		out += "("
		for c := 0; c < width; c++ {
			if c > 0 {
				out += ", "
			}
			out += fmt.Sprintf("$%d", idx)
			idx++
		}
		out += ")"
	}
	return out
}
