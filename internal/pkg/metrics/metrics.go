// Package metrics registers the Prometheus collectors for the progression service.
// Collectors are package globals so they are registered exactly once per process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MysteryDraws = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flog_mystery_draws_total",
		Help: "Mystery boxes opened, by rarity drawn",
	}, []string{"rarity"})

	MysteryCooldownHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flog_mystery_cooldown_hits_total",
		Help: "Mystery box requests answered from the cooldown replay",
	})

	HoldsPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flog_holds_placed_total",
		Help: "Bid holds placed or raised",
	})

	HoldsClamped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flog_holds_clamped_total",
		Help: "Bid holds whose deduction was floored at a zero balance",
	})

	SettlementReleases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flog_settlement_releases_total",
		Help: "Holds released at settlement (refunded/forfeited)",
	}, []string{"outcome"})

	SettlementsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flog_settlements_processed_total",
		Help: "Auction settlements handled (ok/error)",
	}, []string{"result"})

	AwardsGranted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flog_awards_granted_total",
		Help: "Progression awards applied, by kind",
	}, []string{"kind"})

	WriteConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flog_profile_write_conflicts_total",
		Help: "Profile writes retried after a version conflict",
	})

	WriteConflictsExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flog_profile_write_conflicts_exhausted_total",
		Help: "Profile updates abandoned after every attempt conflicted",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flog_events_published_total",
		Help: "Events handed to a publisher, by event name and sink",
	}, []string{"event", "sink"})

	EventPublishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flog_event_publish_errors_total",
		Help: "Events a publisher failed to deliver, by event name and sink",
	}, []string{"event", "sink"})
)
