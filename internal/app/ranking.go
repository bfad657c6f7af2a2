package app

import (
	"context"
	"sort"
	"time"

	"n5-drill-service/internal/domain"
)

const (
	// DefaultRankingSize is the leaderboard length when none is configured.
	DefaultRankingSize = 10
	// anonymousName is shown for users without a display name.
	anonymousName = "Usuario"
)

// RankingAggregator computes the weekly leaderboard from raw attempts.
type RankingAggregator struct {
	attempts AttemptRepository
	users    UserRepository
	location *time.Location
	size     int
	now      func() time.Time
}

func NewRankingAggregator(attempts AttemptRepository, users UserRepository, location *time.Location, size int) *RankingAggregator {
	return NewRankingAggregatorWithClock(attempts, users, location, size, time.Now)
}

// NewRankingAggregatorWithClock allows deterministic week boundaries in tests.
func NewRankingAggregatorWithClock(attempts AttemptRepository, users UserRepository, location *time.Location, size int, now func() time.Time) *RankingAggregator {
	if location == nil {
		location = time.Local
	}
	if size <= 0 {
		size = DefaultRankingSize
	}
	return &RankingAggregator{
		attempts: attempts,
		users:    users,
		location: location,
		size:     size,
		now:      now,
	}
}

// WeekStart returns midnight of the most recent Sunday on or before t in loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	year, month, day := t.Date()
	return time.Date(year, month, day-int(t.Weekday()), 0, 0, 0, 0, loc)
}

// Weekly returns the top users by points earned since the start of the current week.
// An empty week yields an empty slice; storage failures yield *domain.AggregationError.
func (r *RankingAggregator) Weekly(ctx context.Context) ([]domain.RankingEntry, error) {
	since := WeekStart(r.now(), r.location)

	rows, err := r.attempts.AttemptsSince(ctx, since)
	if err != nil {
		return nil, &domain.AggregationError{Err: err}
	}
	if len(rows) == 0 {
		return []domain.RankingEntry{}, nil
	}

	totals := aggregateAttempts(rows)
	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	users, err := r.users.GetUsers(ctx, ids)
	if err != nil {
		return nil, &domain.AggregationError{Err: err}
	}

	return rankEntries(totals, users, r.size), nil
}

func aggregateAttempts(rows []domain.AttemptRow) map[string]*domain.RankingEntry {
	totals := make(map[string]*domain.RankingEntry)
	for _, row := range rows {
		entry, ok := totals[row.UserID]
		if !ok {
			entry = &domain.RankingEntry{UserID: row.UserID}
			totals[row.UserID] = entry
		}
		entry.TotalPoints += row.Points
		entry.TotalAttempts++
		if row.Correct {
			entry.TotalCorrect++
		}
	}
	return totals
}

func rankEntries(totals map[string]*domain.RankingEntry, users map[string]domain.User, size int) []domain.RankingEntry {
	entries := make([]domain.RankingEntry, 0, len(totals))
	for id, entry := range totals {
		e := *entry
		e.Name = anonymousName
		if user, ok := users[id]; ok {
			if user.Name != nil && *user.Name != "" {
				e.Name = *user.Name
			}
			if user.AvatarURL != nil && *user.AvatarURL != "" {
				avatar := *user.AvatarURL
				e.AvatarURL = &avatar
			}
		}
		entries = append(entries, e)
	}

	// Points descending, then user id so equal scores have a stable order.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].UserID < entries[j].UserID
	})

	if len(entries) > size {
		entries = entries[:size]
	}
	return entries
}
