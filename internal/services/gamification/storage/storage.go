// Package storage defines persistence contracts for client progress state.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested progress record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a write collided with a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
)

// ProfileRecord stores one client's accumulated session counters.
type ProfileRecord struct {
	ClientID           string
	TotalSessions      int
	CurrentStreakWeeks int
	BestStreakWeeks    int
	LastSessionDate    string // YYYY-MM-DD, empty before first session
	UpdatedAt          time.Time
}

// MilestoneRecord stores one crossed session-count milestone.
type MilestoneRecord struct {
	ClientID   string
	Threshold  int
	AchievedAt time.Time
}

// Store persists gamification records.
type Store interface {
	GetProfile(ctx context.Context, clientID string) (ProfileRecord, error)
	// PutProfileWithMilestones atomically upserts the counters and records
	// any milestones crossed by the same session.
	PutProfileWithMilestones(ctx context.Context, profile ProfileRecord, milestones []MilestoneRecord) error
	ListMilestones(ctx context.Context, clientID string) ([]MilestoneRecord, error)
}
