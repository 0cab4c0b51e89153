// Package progression maps a client's lifetime completed-session count to
// level, progress, and milestone view state. Every function is a pure,
// total computation over its arguments so callers can invoke them from any
// goroutine without coordination.
package progression

import (
	"math"
	"time"
)

// Level is one named band over cumulative completed sessions.
type Level struct {
	// Number orders levels from 1 (lowest) to 5.
	Number int
	// Name is the display name of the band.
	Name string
	// Badge is the symbol shown next to the name.
	Badge string
	// Color is the display color token used by templates.
	Color string
	// MinSessions is the inclusive lower bound of the band.
	MinSessions int
	// MaxSessions is the inclusive upper bound; math.MaxInt for the top band.
	MaxSessions int
}

// levels partitions the non-negative integers: each band's max is the next
// band's min minus one, and the top band is unbounded.
var levels = [...]Level{
	{Number: 1, Name: "Beginner", Badge: "🌱", Color: "green", MinSessions: 1, MaxSessions: 5},
	{Number: 2, Name: "Regular", Badge: "⭐", Color: "blue", MinSessions: 6, MaxSessions: 15},
	{Number: 3, Name: "Committed", Badge: "🔥", Color: "orange", MinSessions: 16, MaxSessions: 30},
	{Number: 4, Name: "Athlete", Badge: "💪", Color: "red", MinSessions: 31, MaxSessions: 50},
	{Number: 5, Name: "Legend", Badge: "🏆", Color: "yellow", MinSessions: 51, MaxSessions: math.MaxInt},
}

// Levels returns the ordered level bands for display.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels[:])
	return out
}

// LevelFor resolves the level band for a session count. A count of zero
// still resolves to the lowest band; negative counts clamp to zero.
func LevelFor(totalSessions int) Level {
	if totalSessions < 0 {
		totalSessions = 0
	}
	for i := len(levels) - 1; i > 0; i-- {
		if totalSessions >= levels[i].MinSessions {
			return levels[i]
		}
	}
	return levels[0]
}

// Progress describes how far a count sits inside its level band.
type Progress struct {
	Current Level
	// Next is nil at the top band.
	Next *Level
	// Percent is the rounded share of the way from Current.MinSessions to
	// Next.MinSessions, clamped to [0, 100]. 100 at the top band.
	Percent int
	// Remaining is the number of sessions until the next band; 0 at the top.
	Remaining int
}

// LevelProgress computes progress toward the next level band.
func LevelProgress(totalSessions int) Progress {
	if totalSessions < 0 {
		totalSessions = 0
	}
	current := LevelFor(totalSessions)
	if current.Number == len(levels) {
		return Progress{Current: current, Percent: 100}
	}
	next := levels[current.Number]
	span := next.MinSessions - current.MinSessions
	percent := int(math.Round(float64(totalSessions-current.MinSessions) / float64(span) * 100))
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return Progress{
		Current:   current,
		Next:      &next,
		Percent:   percent,
		Remaining: next.MinSessions - totalSessions,
	}
}

// Streak holds externally maintained streak counters. The continuation rule
// lives with the collaborator that records sessions; this package only
// carries the values through to display.
type Streak struct {
	CurrentWeeks int
	BestWeeks    int
}

// Milestone is a one-time achievement unlocked at a fixed session count.
type Milestone struct {
	Label     string
	Threshold int
}

var milestones = [...]Milestone{
	{Label: "First Session! 🎉", Threshold: 1},
	{Label: "Getting Started 🌟", Threshold: 5},
	{Label: "Double Digits 💪", Threshold: 10},
	{Label: "Quarter Century 🔥", Threshold: 25},
	{Label: "Half Century 🏆", Threshold: 50},
	{Label: "Century Club 💎", Threshold: 100},
}

// MilestoneDefinitions returns the ordered milestone thresholds.
func MilestoneDefinitions() []Milestone {
	out := make([]Milestone, len(milestones))
	copy(out, milestones[:])
	return out
}

// AchievedRecord pairs a milestone threshold with the timestamp supplied by
// the collaborator that first observed the crossing. Records join on the
// integer threshold; label text is presentation-only.
type AchievedRecord struct {
	Threshold  int
	AchievedAt time.Time
}

// MilestoneStatus is the per-milestone view state.
type MilestoneStatus struct {
	Label     string
	Threshold int
	Achieved  bool
	// AchievedAt is nil when the milestone is achieved by count alone but no
	// stored record exists for it.
	AchievedAt *time.Time
	// SessionsRemaining is zero once achieved.
	SessionsRemaining int
}

// Milestones reports achievement state for every milestone in definition
// order. Achievement is monotonic in the session count: once a threshold is
// crossed it stays achieved.
func Milestones(totalSessions int, records []AchievedRecord) []MilestoneStatus {
	if totalSessions < 0 {
		totalSessions = 0
	}
	byThreshold := make(map[int]time.Time, len(records))
	for _, record := range records {
		byThreshold[record.Threshold] = record.AchievedAt
	}

	out := make([]MilestoneStatus, 0, len(milestones))
	for _, m := range milestones {
		status := MilestoneStatus{Label: m.Label, Threshold: m.Threshold}
		if totalSessions >= m.Threshold {
			status.Achieved = true
			if at, ok := byThreshold[m.Threshold]; ok {
				achievedAt := at
				status.AchievedAt = &achievedAt
			}
		} else {
			status.SessionsRemaining = m.Threshold - totalSessions
		}
		out = append(out, status)
	}
	return out
}
