// Package loot rolls rarity tiers and runs the mystery-box draw.
package loot

import (
	"errors"
	"fmt"
	"time"

	"github.com/kollektive-hackathon/flog-progression/internal/hero"
	"github.com/kollektive-hackathon/flog-progression/internal/level"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
)

const DefaultCooldown = 24 * time.Hour

type weight struct {
	rarity model.Rarity
	weight int
}

var rarityWeights = []weight{
	{model.RarityCommon, 65},
	{model.RarityRare, 22},
	{model.RarityEpic, 10},
	{model.RarityLegendary, 3},
}

var goldByRarity = map[model.Rarity]int64{
	model.RarityCommon:    120,
	model.RarityRare:      280,
	model.RarityEpic:      520,
	model.RarityLegendary: 900,
}

var ErrNoVariant = errors.New("loot: no hero variant for rarity")

// Weight returns the draw weight of a tier out of TotalWeight.
func Weight(rarity model.Rarity) int {
	for _, w := range rarityWeights {
		if w.rarity == rarity {
			return w.weight
		}
	}
	return 0
}

func TotalWeight() int {
	total := 0
	for _, w := range rarityWeights {
		total += w.weight
	}
	return total
}

// Gold is the FLOG credited for drawing a hero of the given tier.
func Gold(rarity model.Rarity) int64 {
	return goldByRarity[rarity]
}

// RollRarity draws a tier with probability proportional to its weight.
func RollRarity(rng hero.Source) model.Rarity {
	roll := rng.Intn(TotalWeight())
	cumulative := 0
	for _, w := range rarityWeights {
		cumulative += w.weight
		if roll < cumulative {
			return w.rarity
		}
	}
	return rarityWeights[0].rarity
}

// Reward is the outcome of opening a mystery box. On cooldown it repeats the previous
// reward and nothing on the profile has changed.
type Reward struct {
	Hero       *model.OwnedHero
	Gold       int64
	Experience int64
	Rarity     model.Rarity
	OnCooldown bool
}

type Engine struct {
	cooldown time.Duration
	sources  SourceFactory
}

type Option func(*Engine)

func WithCooldown(cooldown time.Duration) Option {
	return func(e *Engine) {
		e.cooldown = cooldown
	}
}

func WithSources(sources SourceFactory) Option {
	return func(e *Engine) {
		e.sources = sources
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{cooldown: DefaultCooldown, sources: CryptoSeeded()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Cooldown() time.Duration {
	return e.cooldown
}

// CooldownEndsAt reports when the next box may be opened, or nil when it can be opened now.
func (e *Engine) CooldownEndsAt(p *model.Profile, now time.Time) *time.Time {
	if p.LastMysteryRewardAt == nil {
		return nil
	}
	ends := p.LastMysteryRewardAt.Add(e.cooldown)
	if !now.Before(ends) {
		return nil
	}
	return &ends
}

// OpenMysteryBox draws a hero for the profile and credits the tier's gold, unless the
// previous box is still cooling down.
func (e *Engine) OpenMysteryBox(p *model.Profile, now time.Time) (Reward, error) {
	if e.CooldownEndsAt(p, now) != nil {
		return previousReward(p), nil
	}

	rng, err := e.sources()
	if err != nil {
		return Reward{}, err
	}

	now = model.Timestamp(now)
	owned, err := e.Draw(rng, now)
	if err != nil {
		return Reward{}, err
	}

	gold := Gold(owned.Rarity)
	xp := int64(owned.Power())

	p.FlogBalance += gold
	p.OwnedHeroes = append(p.OwnedHeroes, owned)
	p.PushRecentPurchase(owned.VariantId)

	at := now
	p.LastMysteryRewardAt = &at
	p.LastMysteryRewardXp = &xp
	p.LastMysteryRewardCoins = &gold
	level.Refresh(p)

	return Reward{Hero: &owned, Gold: gold, Experience: xp, Rarity: owned.Rarity}, nil
}

// Draw rolls a tier and picks a hero of that tier without touching any profile.
func (e *Engine) Draw(rng hero.Source, acquiredAt time.Time) (model.OwnedHero, error) {
	rarity := RollRarity(rng)
	variant, ok := hero.GetRandomVariant(rng, rarity)
	if !ok {
		return model.OwnedHero{}, fmt.Errorf("%w: %s", ErrNoVariant, rarity)
	}
	return variant.Owned(acquiredAt), nil
}

// previousReward rebuilds the last reward from the audit fields. Stores keep timestamps at
// different precisions, so the hero is matched at millisecond precision and falls back to
// the most recent purchase.
func previousReward(p *model.Profile) Reward {
	reward := Reward{OnCooldown: true}
	if p.LastMysteryRewardCoins != nil {
		reward.Gold = *p.LastMysteryRewardCoins
	}
	if p.LastMysteryRewardXp != nil {
		reward.Experience = *p.LastMysteryRewardXp
	}

	at := p.LastMysteryRewardAt.Truncate(time.Millisecond)
	for i := len(p.OwnedHeroes) - 1; i >= 0; i-- {
		h := p.OwnedHeroes[i]
		if h.AcquiredAt.Truncate(time.Millisecond).Equal(at) {
			reward.Hero = &h
			break
		}
	}
	if reward.Hero == nil && len(p.RecentPurchases) > 0 {
		for i := len(p.OwnedHeroes) - 1; i >= 0; i-- {
			h := p.OwnedHeroes[i]
			if h.VariantId == p.RecentPurchases[0] {
				reward.Hero = &h
				break
			}
		}
	}
	if reward.Hero != nil {
		reward.Rarity = reward.Hero.Rarity
	}
	return reward
}
