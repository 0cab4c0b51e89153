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
	"github.com/isaacyap/stretchlad/internal/services/gamification/storage"
	"github.com/isaacyap/stretchlad/internal/services/gamification/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for client progress state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a gamification SQLite store at the provided path.
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

// GetProfile loads one client progress profile.
func (s *Store) GetProfile(ctx context.Context, clientID string) (storage.ProfileRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ProfileRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ProfileRecord{}, fmt.Errorf("storage is not configured")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return storage.ProfileRecord{}, fmt.Errorf("client id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT client_id, total_sessions, current_streak_weeks, best_streak_weeks, last_session_date, updated_at
FROM progress_profiles
WHERE client_id = ?
`, clientID)
	var record storage.ProfileRecord
	var updatedAt int64
	if err := row.Scan(
		&record.ClientID,
		&record.TotalSessions,
		&record.CurrentStreakWeeks,
		&record.BestStreakWeeks,
		&record.LastSessionDate,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ProfileRecord{}, storage.ErrNotFound
		}
		return storage.ProfileRecord{}, fmt.Errorf("get progress profile: %w", err)
	}
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// PutProfileWithMilestones atomically upserts one profile and its newly
// crossed milestones.
func (s *Store) PutProfileWithMilestones(ctx context.Context, profile storage.ProfileRecord, milestones []storage.MilestoneRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	profile.ClientID = strings.TrimSpace(profile.ClientID)
	if profile.ClientID == "" {
		return fmt.Errorf("client id is required")
	}
	if profile.TotalSessions < 0 {
		return fmt.Errorf("total sessions must not be negative")
	}
	if profile.UpdatedAt.IsZero() {
		return fmt.Errorf("updated at is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin progress write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback progress write: %v", cause, rollbackErr)
		}
		return cause
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO progress_profiles (client_id, total_sessions, current_streak_weeks, best_streak_weeks, last_session_date, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (client_id) DO UPDATE SET
    total_sessions = excluded.total_sessions,
    current_streak_weeks = excluded.current_streak_weeks,
    best_streak_weeks = excluded.best_streak_weeks,
    last_session_date = excluded.last_session_date,
    updated_at = excluded.updated_at
`,
		profile.ClientID,
		profile.TotalSessions,
		profile.CurrentStreakWeeks,
		profile.BestStreakWeeks,
		profile.LastSessionDate,
		toMillis(profile.UpdatedAt),
	); err != nil {
		return rollbackWith(fmt.Errorf("upsert progress profile: %w", err))
	}

	for _, milestone := range milestones {
		if strings.TrimSpace(milestone.ClientID) == "" {
			return rollbackWith(fmt.Errorf("milestone client id is required"))
		}
		if milestone.Threshold <= 0 {
			return rollbackWith(fmt.Errorf("milestone threshold must be positive"))
		}
		// Replaying the same session must not move an achievement time.
		if _, err := tx.ExecContext(ctx, `
INSERT INTO progress_milestones (client_id, threshold, achieved_at)
VALUES (?, ?, ?)
ON CONFLICT (client_id, threshold) DO NOTHING
`,
			strings.TrimSpace(milestone.ClientID),
			milestone.Threshold,
			toMillis(milestone.AchievedAt),
		); err != nil {
			return rollbackWith(fmt.Errorf("insert progress milestone: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit progress write: %w", err)
	}
	return nil
}

// ListMilestones lists one client's crossed milestones by ascending threshold.
func (s *Store) ListMilestones(ctx context.Context, clientID string) ([]storage.MilestoneRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, fmt.Errorf("client id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT client_id, threshold, achieved_at
FROM progress_milestones
WHERE client_id = ?
ORDER BY threshold ASC
`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list progress milestones: %w", err)
	}
	defer rows.Close()

	var records []storage.MilestoneRecord
	for rows.Next() {
		var record storage.MilestoneRecord
		var achievedAt int64
		if err := rows.Scan(&record.ClientID, &record.Threshold, &achievedAt); err != nil {
			return nil, fmt.Errorf("scan progress milestone: %w", err)
		}
		record.AchievedAt = fromMillis(achievedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list progress milestones: %w", err)
	}
	return records, nil
}

var _ storage.Store = (*Store)(nil)
