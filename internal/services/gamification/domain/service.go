// Package domain implements client progress tracking: session counters,
// weekly streaks, level progression, and milestone achievements.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isaacyap/stretchlad/internal/progression"
	"github.com/isaacyap/stretchlad/internal/services/gamification/storage"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("gamification store is not configured")
	// ErrClientIDRequired indicates a progress operation is missing client identity.
	ErrClientIDRequired = errors.New("client id is required")
	// ErrInvalidSessionDate indicates a completed session carries no usable date.
	ErrInvalidSessionDate = errors.New("invalid session date")
)

const dateFormat = "2006-01-02"

// Service orchestrates progress tracking over the storage boundary.
type Service struct {
	store storage.Store
	clock func() time.Time
}

// NewService constructs gamification domain use-cases.
func NewService(store storage.Store, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{store: store, clock: clock}
}

// ProgressView is the full progress picture rendered in the client portal.
type ProgressView struct {
	ClientID      string
	TotalSessions int
	Streak        progression.Streak
	Level         progression.Progress
	Milestones    []progression.MilestoneStatus
}

// Progress assembles one client's progress view. Clients with no recorded
// sessions get a zero-session view rather than an error.
func (s *Service) Progress(ctx context.Context, clientID string) (ProgressView, error) {
	if s == nil || s.store == nil {
		return ProgressView{}, ErrStoreNotConfigured
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return ProgressView{}, ErrClientIDRequired
	}

	profile, err := s.store.GetProfile(ctx, clientID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return ProgressView{}, fmt.Errorf("load progress profile: %w", err)
		}
		profile = storage.ProfileRecord{ClientID: clientID}
	}

	records, err := s.store.ListMilestones(ctx, clientID)
	if err != nil {
		return ProgressView{}, fmt.Errorf("load milestones: %w", err)
	}
	achieved := make([]progression.AchievedRecord, 0, len(records))
	for _, record := range records {
		achieved = append(achieved, progression.AchievedRecord{
			Threshold:  record.Threshold,
			AchievedAt: record.AchievedAt,
		})
	}

	return ProgressView{
		ClientID:      clientID,
		TotalSessions: profile.TotalSessions,
		Streak: progression.Streak{
			CurrentWeeks: profile.CurrentStreakWeeks,
			BestWeeks:    profile.BestStreakWeeks,
		},
		Level:      progression.LevelProgress(profile.TotalSessions),
		Milestones: progression.Milestones(profile.TotalSessions, achieved),
	}, nil
}

// RecordCompletedSession increments one client's counters for a session held
// on sessionDate and records any milestone the new total crosses. Streaks
// count consecutive ISO weeks with at least one session.
func (s *Service) RecordCompletedSession(ctx context.Context, clientID string, sessionDate time.Time) (ProgressView, error) {
	if s == nil || s.store == nil {
		return ProgressView{}, ErrStoreNotConfigured
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return ProgressView{}, ErrClientIDRequired
	}
	if sessionDate.IsZero() {
		return ProgressView{}, ErrInvalidSessionDate
	}
	sessionDate = sessionDate.UTC()

	profile, err := s.store.GetProfile(ctx, clientID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return ProgressView{}, fmt.Errorf("load progress profile: %w", err)
		}
		profile = storage.ProfileRecord{ClientID: clientID}
	}

	profile.TotalSessions++
	profile.CurrentStreakWeeks = nextStreak(profile, sessionDate)
	if profile.CurrentStreakWeeks > profile.BestStreakWeeks {
		profile.BestStreakWeeks = profile.CurrentStreakWeeks
	}
	profile.LastSessionDate = sessionDate.Format(dateFormat)
	profile.UpdatedAt = s.clock().UTC()

	var crossed []storage.MilestoneRecord
	for _, milestone := range progression.MilestoneDefinitions() {
		if milestone.Threshold == profile.TotalSessions {
			crossed = append(crossed, storage.MilestoneRecord{
				ClientID:   clientID,
				Threshold:  milestone.Threshold,
				AchievedAt: profile.UpdatedAt,
			})
		}
	}

	if err := s.store.PutProfileWithMilestones(ctx, profile, crossed); err != nil {
		return ProgressView{}, fmt.Errorf("store progress: %w", err)
	}
	return s.Progress(ctx, clientID)
}

// nextStreak computes the current weekly streak after a session on
// sessionDate. Same ISO week keeps the streak, the immediately following
// week extends it, anything else restarts at one.
func nextStreak(profile storage.ProfileRecord, sessionDate time.Time) int {
	if profile.LastSessionDate == "" {
		return 1
	}
	last, err := time.Parse(dateFormat, profile.LastSessionDate)
	if err != nil {
		return 1
	}
	switch weeksBetween(last, sessionDate) {
	case 0:
		if profile.CurrentStreakWeeks == 0 {
			return 1
		}
		return profile.CurrentStreakWeeks
	case 1:
		return profile.CurrentStreakWeeks + 1
	default:
		return 1
	}
}

// weeksBetween counts calendar weeks from a to b, anchored on Mondays.
func weeksBetween(a, b time.Time) int {
	return int(mondayOf(b).Sub(mondayOf(a)).Hours() / (24 * 7))
}

func mondayOf(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
