// Package store keeps the client's local state: the admin token, the
// language preference and the history of submitted audits.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/xteampro/funnel/internal/models"
	"github.com/xteampro/funnel/pkg/database"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Well-known client state keys
const (
	KeyAdminToken = "admin_token"
	KeyLanguage   = "language"
)

// Store is the sqlite-backed client state repository
type Store struct {
	db     *database.DB
	logger *zap.Logger
}

// Open opens the database at path (or database.MemoryPath) and migrates it
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	db, err := database.New(database.Config{Path: path}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).Run(ctx, migrationsFS, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate client state: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key. ok is false when the key is unset.
func (s *Store) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT value FROM client_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Error("Failed to read client state", zap.String("key", key), zap.Error(err))
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		s.logger.Error("Failed to write client state", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an unset key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM client_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// SaveAudit records or refreshes a submitted audit
func (s *Store) SaveAudit(ctx context.Context, rec *models.AuditRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_history (audit_id, company_name, email, status, submitted_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(audit_id) DO UPDATE SET
			company_name = excluded.company_name,
			email = excluded.email,
			status = excluded.status,
			updated_at = excluded.updated_at
	`, rec.AuditID, rec.CompanyName, rec.Email, rec.Status, rec.SubmittedAt.UTC(), time.Now().UTC())
	if err != nil {
		s.logger.Error("Failed to save audit record", zap.String("audit_id", rec.AuditID), zap.Error(err))
		return fmt.Errorf("failed to save audit record: %w", err)
	}
	return nil
}

// UpdateAuditStatus sets the last known status of a remembered audit
func (s *Store) UpdateAuditStatus(ctx context.Context, auditID, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE audit_history SET status = ?, updated_at = ? WHERE audit_id = ?`,
		status, time.Now().UTC(), auditID)
	if err != nil {
		return fmt.Errorf("failed to update audit status: %w", err)
	}
	return nil
}

// GetAudit returns a remembered audit, or nil when unknown
func (s *Store) GetAudit(ctx context.Context, auditID string) (*models.AuditRecord, error) {
	var rec models.AuditRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT audit_id, company_name, email, status, submitted_at
		FROM audit_history WHERE audit_id = ?
	`, auditID).Scan(&rec.AuditID, &rec.CompanyName, &rec.Email, &rec.Status, &rec.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit record: %w", err)
	}
	return &rec, nil
}

// ListAudits returns remembered audits, newest first
func (s *Store) ListAudits(ctx context.Context, limit int) ([]models.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT audit_id, company_name, email, status, submitted_at
		FROM audit_history
		ORDER BY submitted_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer rows.Close()

	var out []models.AuditRecord
	for rows.Next() {
		var rec models.AuditRecord
		if err := rows.Scan(&rec.AuditID, &rec.CompanyName, &rec.Email, &rec.Status, &rec.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
