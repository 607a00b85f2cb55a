package progress

import (
	"context"
	"sort"

	"github.com/kollektive-hackathon/flog-progression/internal/level"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/reject"
)

const leaderboardSize = 10

type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	Username       string `json:"username"`
	AvatarUrl      string `json:"avatarUrl"`
	Level          int64  `json:"level"`
	Experience     int64  `json:"experience"`
	TotalHeroPower int64  `json:"totalHeroPower"`
	HeroCount      int    `json:"heroCount"`
}

// GetLeaderboard ranks users by hero power, then level, then username.
func (s *ProgressService) GetLeaderboard(ctx context.Context) ([]LeaderboardEntry, *reject.ProblemWithTrace) {
	profiles, _, err := s.updater.Store().List(ctx, 0, 0)
	if err != nil {
		return nil, problemFrom(err, "")
	}

	entries := make([]LeaderboardEntry, 0, len(profiles))
	for _, p := range profiles {
		level.Refresh(p)
		entries = append(entries, LeaderboardEntry{
			Username:       p.Username,
			AvatarUrl:      p.AvatarURL,
			Level:          p.Level,
			Experience:     p.Experience,
			TotalHeroPower: level.ComputeHeroPower(p.OwnedHeroes),
			HeroCount:      len(p.OwnedHeroes),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalHeroPower != b.TotalHeroPower {
			return a.TotalHeroPower > b.TotalHeroPower
		}
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		return a.Username < b.Username
	})

	if len(entries) > leaderboardSize {
		entries = entries[:leaderboardSize]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
