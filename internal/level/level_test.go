package level_test

import (
	"testing"

	"github.com/kollektive-hackathon/flog-progression/internal/level"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
)

func heroWithStats(s int) model.OwnedHero {
	return model.OwnedHero{Strength: s, Intellect: s, Vitality: s, Agility: s}
}

func TestComputeHeroPower(t *testing.T) {
	if got := level.ComputeHeroPower(nil); got != 0 {
		t.Errorf("nil heroes: got %d, want 0", got)
	}
	if got := level.ComputeHeroPower([]model.OwnedHero{}); got != 0 {
		t.Errorf("empty heroes: got %d, want 0", got)
	}

	heroes := []model.OwnedHero{heroWithStats(10), heroWithStats(20)}
	if got := level.ComputeHeroPower(heroes); got != 120 {
		t.Errorf("got %d, want 120", got)
	}
}

func TestComputeHeroPower_MixedStats(t *testing.T) {
	heroes := []model.OwnedHero{
		{Strength: 10, Intellect: 10, Vitality: 10, Agility: 10},
		{Strength: 20, Intellect: 0, Vitality: 0, Agility: 20},
	}
	if got := level.ComputeHeroPower(heroes); got != 80 {
		t.Errorf("got %d, want 80", got)
	}
}

func TestForExperience(t *testing.T) {
	tests := []struct {
		experience int64
		want       int64
	}{
		{0, 1},
		{119, 1},
		{120, 2},
		{239, 2},
		{240, 3},
		{-50, 1},
	}
	for _, tt := range tests {
		if got := level.ForExperience(tt.experience); got != tt.want {
			t.Errorf("ForExperience(%d): got %d, want %d", tt.experience, got, tt.want)
		}
	}
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name       string
		heroes     []model.OwnedHero
		adjustment int64
		wantXP     int64
		wantLevel  int64
	}{
		{"no heroes", nil, 0, 0, 1},
		{"power 119", []model.OwnedHero{{Strength: 119}}, 0, 119, 1},
		{"power 120", []model.OwnedHero{heroWithStats(30)}, 0, 120, 2},
		{"power 240", []model.OwnedHero{heroWithStats(30), heroWithStats(30)}, 0, 240, 3},
		{"admin adjustment", []model.OwnedHero{heroWithStats(30)}, 120, 240, 3},
		{"negative adjustment floors at zero", []model.OwnedHero{heroWithStats(10)}, -500, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &model.Profile{OwnedHeroes: tt.heroes, ExperienceAdjustment: tt.adjustment, Level: 99}
			level.Refresh(p)
			if p.Experience != tt.wantXP {
				t.Errorf("experience: got %d, want %d", p.Experience, tt.wantXP)
			}
			if p.Level != tt.wantLevel {
				t.Errorf("level: got %d, want %d", p.Level, tt.wantLevel)
			}
		})
	}
}

func TestNextLevelAt(t *testing.T) {
	if got := level.NextLevelAt(1); got != 120 {
		t.Errorf("got %d, want 120", got)
	}
	if got := level.NextLevelAt(3); got != 360 {
		t.Errorf("got %d, want 360", got)
	}
}
