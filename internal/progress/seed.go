package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kollektive-hackathon/flog-progression/internal/level"
	"github.com/kollektive-hackathon/flog-progression/internal/loot"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"github.com/kollektive-hackathon/flog-progression/internal/store"
	"github.com/rs/zerolog/log"
)

const demoSeed int64 = 1234

var demoUsernames = []string{
	"nova", "echo", "pixel", "blade", "ember",
	"orbit", "zenith", "drift", "glyph", "frost",
	"helix", "lumen", "atlas", "pulse", "quark",
}

var demoItems = []string{
	"Lumos Nebula Pro Keyboard",
	"Pulseview Aurora 27 QHD",
	"Glacier Atlas X Mouse",
	"Helix RTX GPU",
	"Forge Mini ITX PC",
	"Velar Nova Pro Headset",
	"Aether Sentinel Chair",
	"Lumen Studio Streaming Kit",
	"Stride XL Desk Mat",
	"Pulse 34 Ultrawide",
}

// SeedDemoProfiles fills an empty store with deterministic demo users. It returns the
// number of profiles written; a store that already has profiles is left alone.
func (s *ProgressService) SeedDemoProfiles(ctx context.Context) (int, error) {
	st := s.updater.Store()
	_, total, err := st.List(ctx, 0, 1)
	if err != nil {
		return 0, err
	}
	if total > 0 {
		return 0, nil
	}

	rng := loot.NewLockedSource(demoSeed)
	now := s.now()
	seeded := 0

	for _, username := range demoUsernames {
		p, err := demoProfile(s.loot, rng, username, now)
		if err != nil {
			return seeded, err
		}

		if _, err := st.Upsert(ctx, p, 0); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			return seeded, fmt.Errorf("seed %s: %w", username, err)
		}
		seeded++
	}

	log.Info().Int("profiles", seeded).Msg("Seeded demo progress profiles")
	return seeded, nil
}

func demoProfile(engine *loot.Engine, rng *loot.LockedSource, username string, now time.Time) (*model.Profile, error) {
	p := model.NewProfile(username, now)
	p.FlogBalance = between(rng, 250, 9000)
	p.AuctionsCreated = between(rng, 2, 40)
	p.AuctionsSold = between(rng, 1, 30)
	p.AuctionsWon = between(rng, 0, 20)
	p.BidsPlaced = between(rng, 10, 120)

	lastDaily := now.AddDate(0, 0, -int(between(rng, 0, 5)))
	p.LastDailyRewardAt = &lastDaily

	heroes := int(between(rng, 1, 5))
	for i := 0; i < heroes; i++ {
		owned, err := engine.Draw(rng, now.AddDate(0, 0, -int(between(rng, 1, 30))))
		if err != nil {
			return nil, err
		}
		p.OwnedHeroes = append(p.OwnedHeroes, owned)
	}

	p.RecentPurchases = pickItems(rng, 3)
	p.RecentSales = pickItems(rng, 3)
	level.Refresh(p)
	return p, nil
}

// between draws from [lo, hi).
func between(rng *loot.LockedSource, lo, hi int) int64 {
	return int64(lo + rng.Intn(hi-lo))
}

func pickItems(rng *loot.LockedSource, n int) []string {
	items := append([]string{}, demoItems...)
	for i := len(items) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
	return items[:n]
}
