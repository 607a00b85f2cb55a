// Package hero holds the fixed roster of collectible heroes and scales their stats by
// rarity tier. Everything in it is pure and safe for concurrent use.
package hero

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
)

// Definition is a hero archetype with its Rare-tier base stats.
type Definition struct {
	HeroId     string
	Name       string
	Discipline string
	Strength   int
	Intellect  int
	Vitality   int
	Agility    int
}

// Variant is a hero archetype scaled to one rarity tier.
type Variant struct {
	HeroId     string       `json:"heroId"`
	VariantId  string       `json:"variantId"`
	Name       string       `json:"name"`
	Discipline string       `json:"discipline"`
	Rarity     model.Rarity `json:"rarity"`
	Strength   int          `json:"strength"`
	Intellect  int          `json:"intellect"`
	Vitality   int          `json:"vitality"`
	Agility    int          `json:"agility"`
	CardImage  string       `json:"cardImage"`
}

// Source is the subset of *rand.Rand the catalog needs.
type Source interface {
	Intn(n int) int
}

var rarityMultipliers = map[model.Rarity]float64{
	model.RarityCommon:    0.70,
	model.RarityRare:      1.00,
	model.RarityEpic:      1.25,
	model.RarityLegendary: 1.50,
}

var roster = []Definition{
	{HeroId: "veyla", Name: "Veyla the Shadow Lich", Discipline: "Necromancer", Strength: 42, Intellect: 95, Vitality: 68, Agility: 54},
	{HeroId: "elyra", Name: "Elyra Nocturne", Discipline: "Oracle", Strength: 38, Intellect: 92, Vitality: 60, Agility: 66},
	{HeroId: "morr", Name: "Morr Wispblade", Discipline: "Reaper", Strength: 70, Intellect: 48, Vitality: 55, Agility: 88},
	{HeroId: "sigrun", Name: "Sigrun Dawnbreak", Discipline: "Valkyrie", Strength: 78, Intellect: 52, Vitality: 74, Agility: 70},
	{HeroId: "caelys", Name: "Caelys Ember-Crusader", Discipline: "Warrior", Strength: 86, Intellect: 40, Vitality: 80, Agility: 58},
	{HeroId: "torhild", Name: "Torhild Embercore", Discipline: "Guardian", Strength: 72, Intellect: 45, Vitality: 96, Agility: 38},
	{HeroId: "grum", Name: "Grum Ironhorn", Discipline: "Berserker", Strength: 98, Intellect: 30, Vitality: 84, Agility: 50},
	{HeroId: "dresh", Name: "Dresh Wildarrow", Discipline: "Ranger", Strength: 56, Intellect: 50, Vitality: 58, Agility: 92},
	{HeroId: "nyx", Name: "Nyx Veilrunner", Discipline: "Duelist", Strength: 64, Intellect: 58, Vitality: 50, Agility: 90},
	{HeroId: "orin", Name: "Orin Mossbeard", Discipline: "Shaman", Strength: 50, Intellect: 80, Vitality: 70, Agility: 44},
}

// Heroes returns a copy of the roster.
func Heroes() []Definition {
	return append([]Definition{}, roster...)
}

// Multiplier returns the stat multiplier for a tier.
func Multiplier(rarity model.Rarity) (float64, bool) {
	m, ok := rarityMultipliers[rarity]
	return m, ok
}

// GetVariant looks up a hero by id and rarity, both matched case-insensitively.
// The second return value is false for an unknown hero or rarity.
func GetVariant(heroId string, rarity string) (Variant, bool) {
	r, ok := model.ParseRarity(rarity)
	if !ok {
		return Variant{}, false
	}
	for _, def := range roster {
		if strings.EqualFold(def.HeroId, strings.TrimSpace(heroId)) {
			return scale(def, r), true
		}
	}
	return Variant{}, false
}

// GetRandomVariant picks one archetype uniformly for the given tier.
func GetRandomVariant(rng Source, rarity model.Rarity) (Variant, bool) {
	if _, ok := rarityMultipliers[rarity]; !ok {
		return Variant{}, false
	}
	def := roster[rng.Intn(len(roster))]
	return scale(def, rarity), true
}

// AllVariants returns every archetype at every tier, grouped by hero.
func AllVariants() []Variant {
	variants := make([]Variant, 0, len(roster)*len(rarityMultipliers))
	for _, def := range roster {
		for _, r := range model.Rarities() {
			variants = append(variants, scale(def, r))
		}
	}
	return variants
}

func (v Variant) Power() int {
	return v.Strength + v.Intellect + v.Vitality + v.Agility
}

// Owned turns the variant into an inventory entry.
func (v Variant) Owned(acquiredAt time.Time) model.OwnedHero {
	return model.OwnedHero{
		HeroId:     v.HeroId,
		VariantId:  v.VariantId,
		Name:       v.Name,
		Discipline: v.Discipline,
		Rarity:     v.Rarity,
		Strength:   v.Strength,
		Intellect:  v.Intellect,
		Vitality:   v.Vitality,
		Agility:    v.Agility,
		CardImage:  v.CardImage,
		AcquiredAt: acquiredAt,
	}
}

func scale(def Definition, rarity model.Rarity) Variant {
	m := rarityMultipliers[rarity]
	return Variant{
		HeroId:     def.HeroId,
		VariantId:  fmt.Sprintf("%s-%s", def.HeroId, rarity.Lower()),
		Name:       def.Name,
		Discipline: def.Discipline,
		Rarity:     rarity,
		Strength:   scaleStat(def.Strength, m),
		Intellect:  scaleStat(def.Intellect, m),
		Vitality:   scaleStat(def.Vitality, m),
		Agility:    scaleStat(def.Agility, m),
		CardImage:  fmt.Sprintf("/pets/%s/card/frame_0.png", strings.ToLower(def.Discipline)),
	}
}

// math.Round rounds half away from zero.
func scaleStat(base int, multiplier float64) int {
	return int(math.Round(float64(base) * multiplier))
}
