package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/flog-progression/internal/config"
	"github.com/kollektive-hackathon/flog-progression/internal/loot"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/events"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/middleware"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/natsbus"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/pubsub"
	wshub "github.com/kollektive-hackathon/flog-progression/internal/pkg/ws"
	"github.com/kollektive-hackathon/flog-progression/internal/progress"
	"github.com/kollektive-hackathon/flog-progression/internal/settlement"
	"github.com/kollektive-hackathon/flog-progression/internal/store"
	"github.com/kollektive-hackathon/flog-progression/internal/store/memory"
	mongostore "github.com/kollektive-hackathon/flog-progression/internal/store/mongo"
	pgstore "github.com/kollektive-hackathon/flog-progression/internal/store/postgres"
	"github.com/kollektive-hackathon/flog-progression/internal/ws"
	"github.com/kollektive-hackathon/flog-progression/pkg/firebase"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setupZerolog(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profileStore, closeStore := setupStore(ctx, cfg)
	defer closeStore()

	hub := wshub.NewNotificationHub()
	publisher := events.NewFanout(events.LogSink{}, hub)

	now := model.Now
	starter := progress.NewStarterPack(cfg.StarterPackUsers, now)
	updater := store.NewUpdater(profileStore,
		store.WithMaxAttempts(cfg.MaxWriteAttempts),
		store.WithPrepare(starter.Ensure),
		store.WithClock(now),
	)
	engine := loot.NewEngine(loot.WithCooldown(cfg.MysteryBoxCooldown))
	service := progress.NewProgressService(updater, engine, publisher, starter, now)
	coordinator := settlement.NewCoordinator(updater, cfg.SettlementParallel)
	bridge := settlement.NewBridge(coordinator)

	closeBus := setupBus(ctx, cfg, publisher, bridge)
	defer closeBus()

	if cfg.SeedDemoProfiles {
		seeded, err := service.SeedDemoProfiles(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo profiles")
		}
		log.Info().Int("profiles", seeded).Msg("Seeded demo profiles")
	}

	if err := firebase.InitFirebaseSdk(ctx); err != nil {
		log.Warn().Err(err).Msg("Firebase auth unavailable, authenticated routes will reject every token")
	}

	apiRouter := setupApiRouter(cfg, service, coordinator, hub)
	server := &http.Server{
		Addr:         cfg.Port,
		Handler:      apiRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.Port).Msg("Listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func setupStore(ctx context.Context, cfg config.Config) (store.ProfileStore, func()) {
	switch cfg.StoreDriver {
	case "postgres":
		db := setupDb(cfg.DbUrl)
		s := pgstore.New(db)
		if err := s.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
		return s, func() {
			if sqlDb, err := db.DB(); err == nil {
				sqlDb.Close()
			}
		}
	case "mongo":
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoUri))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to mongo")
		}
		s := mongostore.New(client.Database(cfg.MongoDatabase))
		if err := s.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to create mongo indexes")
		}
		return s, func() { client.Disconnect(context.Background()) }
	default:
		log.Warn().Msg("Using the in-memory profile store, progress is lost on restart")
		return memory.New(), func() {}
	}
}

func setupDb(dbUrl string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dbUrl), &gorm.Config{})

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	sqlDb, _ := db.DB()

	sqlDb.SetMaxOpenConns(50)
	sqlDb.SetConnMaxLifetime(time.Minute * 10)

	return db
}

func setupBus(ctx context.Context, cfg config.Config, publisher *events.Fanout, bridge *settlement.Bridge) func() {
	switch cfg.BusDriver {
	case "pubsub":
		if err := pubsub.InitPubSub(cfg.GoogleProjectId); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize pubsub")
		}
		publisher.Add(pubsub.Sink{})
		go pubsub.Subscribe(pubsub.SubscriptionHandler{
			SubscriptionId: cfg.AuctionFinishedSubscription,
			Handler:        bridge.HandlePubSub,
		})
		return pubsub.CloseClient
	case "nats":
		bus, err := natsbus.Connect(cfg.NatsUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to NATS")
		}
		if err := bus.EnsureStreams(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure JetStream streams")
		}
		publisher.Add(bus)
		err = bus.Consume(ctx, natsbus.AuctionsStream, natsbus.AuctionFinishedSubject, natsbus.SettlementConsumer,
			settlement.ErrMalformedEvent, bridge.HandleAuctionFinished)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to subscribe to auction results")
		}
		return bus.Close
	default:
		return func() {}
	}
}

func setupApiRouter(cfg config.Config, service *progress.ProgressService, coordinator *settlement.Coordinator, hub *wshub.WebSocketNotificationHub) *gin.Engine {
	apiRouter := gin.Default()
	routerGroup := apiRouter.Group("/flog-api")

	middleware.RegisterGlobalMiddleware(apiRouter, cfg.CorsAllowedOrigins)

	apiRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))
	ws.RegisterRoutes(routerGroup, hub)
	progress.RegisterRoutes(routerGroup, service)
	progress.RegisterAdminRoutes(routerGroup, service)
	settlement.RegisterRoutes(routerGroup, coordinator, cfg.InternalApiKey)

	return apiRouter
}

func setupZerolog(level string) {
	zerolog.LevelFieldName = "severity"
	zerolog.TimestampFieldName = "time"
	zerolog.TimeFieldFormat = time.RFC3339Nano

	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Str("level", level).Msg("Unknown LOG_LEVEL, using info")
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
