package progress

import (
	"strings"
	"time"

	"github.com/kollektive-hackathon/flog-progression/internal/hero"
	"github.com/kollektive-hackathon/flog-progression/internal/level"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"github.com/rs/zerolog/log"
)

type starterHero struct {
	heroId string
	rarity model.Rarity
}

var starterHeroes = []starterHero{
	{"elyra", model.RarityEpic},
	{"grum", model.RarityLegendary},
	{"dresh", model.RarityCommon},
	{"sigrun", model.RarityRare},
}

// StarterPack grants a fixed set of heroes to allow-listed demo accounts that own none.
type StarterPack struct {
	users map[string]struct{}
	now   func() time.Time
}

func NewStarterPack(usernames []string, now func() time.Time) *StarterPack {
	users := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		users[strings.ToLower(strings.TrimSpace(u))] = struct{}{}
	}
	if now == nil {
		now = model.Now
	}
	return &StarterPack{users: users, now: now}
}

func (sp *StarterPack) Eligible(username string) bool {
	_, ok := sp.users[strings.ToLower(username)]
	return ok
}

// Ensure seeds the starter heroes. It is a no-op for other users and for anyone who
// already owns a hero.
func (sp *StarterPack) Ensure(p *model.Profile) (bool, error) {
	if !sp.Eligible(p.Username) || len(p.OwnedHeroes) > 0 {
		return false, nil
	}

	now := sp.now()
	for _, sh := range starterHeroes {
		variant, ok := hero.GetVariant(sh.heroId, string(sh.rarity))
		if !ok {
			log.Warn().Str("heroId", sh.heroId).Str("rarity", string(sh.rarity)).Msg("Starter hero missing from catalog, skipping")
			continue
		}
		p.OwnedHeroes = append(p.OwnedHeroes, variant.Owned(now))
		p.PushRecentPurchase(variant.VariantId)
	}
	level.Refresh(p)

	return len(p.OwnedHeroes) > 0, nil
}
