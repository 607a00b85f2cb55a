// Package level derives experience and level from the heroes a profile owns.
package level

import "github.com/kollektive-hackathon/flog-progression/internal/pkg/model"

// Divisor is the amount of experience each level spans.
const Divisor int64 = 120

// ComputeHeroPower sums the four stats of every owned hero.
func ComputeHeroPower(heroes []model.OwnedHero) int64 {
	var total int64
	for _, h := range heroes {
		total += int64(h.Power())
	}
	return total
}

// ForExperience maps experience to a level, never below 1.
func ForExperience(experience int64) int64 {
	return max(1, experience/Divisor+1)
}

// NextLevelAt is the experience at which the level after the given one starts.
func NextLevelAt(level int64) int64 {
	return level * Divisor
}

// Refresh recomputes the derived experience and level fields. It must run after every
// mutation of the profile and before it is persisted.
func Refresh(p *model.Profile) {
	p.Experience = max(0, ComputeHeroPower(p.OwnedHeroes)+p.ExperienceAdjustment)
	p.Level = ForExperience(p.Experience)
}
