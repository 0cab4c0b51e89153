package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/isaacyap/stretchlad/internal/platform/storage/sqlitemigrate"
	"github.com/isaacyap/stretchlad/internal/services/auth/storage"
	"github.com/isaacyap/stretchlad/internal/services/auth/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for account state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens an auth SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutAccount persists one account row. A duplicate email maps to ErrConflict.
func (s *Store) PutAccount(ctx context.Context, record storage.AccountRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	record.Email = strings.TrimSpace(record.Email)
	record.Name = strings.TrimSpace(record.Name)
	record.Role = strings.TrimSpace(record.Role)
	if record.ID == "" {
		return fmt.Errorf("account id is required")
	}
	if record.Email == "" {
		return fmt.Errorf("account email is required")
	}
	if record.PasswordHash == "" {
		return fmt.Errorf("account password hash is required")
	}
	if record.Role == "" {
		record.Role = storage.RoleClient
	}
	if record.CreatedAt.IsZero() {
		return fmt.Errorf("account created at is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO accounts (id, email, name, password_hash, role, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.Email,
		record.Name,
		record.PasswordHash,
		record.Role,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetAccount loads one account by id.
func (s *Store) GetAccount(ctx context.Context, id string) (storage.AccountRecord, error) {
	return s.getAccount(ctx, "id", id)
}

// GetAccountByEmail loads one account by email.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (storage.AccountRecord, error) {
	return s.getAccount(ctx, "email", email)
}

func (s *Store) getAccount(ctx context.Context, column string, value string) (storage.AccountRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.AccountRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AccountRecord{}, fmt.Errorf("storage is not configured")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return storage.AccountRecord{}, fmt.Errorf("account %s is required", column)
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, email, name, password_hash, role, created_at
FROM accounts
WHERE `+column+` = ?
`, value)
	var record storage.AccountRecord
	var createdAt int64
	if err := row.Scan(
		&record.ID,
		&record.Email,
		&record.Name,
		&record.PasswordHash,
		&record.Role,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.AccountRecord{}, storage.ErrNotFound
		}
		return storage.AccountRecord{}, fmt.Errorf("get account by %s: %w", column, err)
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

// ListAccountsByRole lists accounts with one role, newest first.
func (s *Store) ListAccountsByRole(ctx context.Context, role string) ([]storage.AccountRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, fmt.Errorf("account role is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, email, name, password_hash, role, created_at
FROM accounts
WHERE role = ?
ORDER BY created_at DESC, id DESC
`, role)
	if err != nil {
		return nil, fmt.Errorf("list accounts by role: %w", err)
	}
	defer rows.Close()

	var records []storage.AccountRecord
	for rows.Next() {
		var record storage.AccountRecord
		var createdAt int64
		if err := rows.Scan(
			&record.ID,
			&record.Email,
			&record.Name,
			&record.PasswordHash,
			&record.Role,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		record.CreatedAt = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts by role: %w", err)
	}
	return records, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint failed")
}

var _ storage.Store = (*Store)(nil)
