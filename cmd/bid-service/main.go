package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"freight-bid-service/internal/adapters/broadcaster"
	"freight-bid-service/internal/adapters/db"
	"freight-bid-service/internal/adapters/dynamo"
	"freight-bid-service/internal/adapters/memory"
	"freight-bid-service/internal/adapters/notifier"
	"freight-bid-service/internal/adapters/redis"
	"freight-bid-service/internal/adapters/rest"
	"freight-bid-service/internal/adapters/scheduler"
	"freight-bid-service/internal/adapters/ws"
	"freight-bid-service/internal/app"
	"freight-bid-service/internal/config"
	"freight-bid-service/internal/domain/scoring"
	"freight-bid-service/internal/domain/shared"
	"freight-bid-service/internal/ports/outbound"
)

// repositories is what every store driver provides
type repositories struct {
	auctions     outbound.AuctionRepository
	offers       outbound.OfferRepository
	participants outbound.ParticipantRepository
	closeFn      func() error
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	initLogging(cfg)

	log.Info().Str("store", cfg.Store).Msg("Starting Freight Bid Service...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auditLocation, err := cfg.Bidding.AuditLocation()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load audit timezone")
	}

	weights, err := scoring.NewWeights(cfg.Bidding.DefaultPriceWeight)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid default price weight")
	}

	repos, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("Failed to open store")
	}
	defer repos.closeFn()
	log.Info().Str("store", cfg.Store).Msg("Repositories initialized")

	// Create Redis client
	redisClient := redis.NewClient(cfg.Redis)
	if err := redis.Ping(ctx, redisClient, 5*time.Second); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	log.Info().Msg("Redis connection established")

	redisBroadcaster := broadcaster.NewBroadcaster(broadcaster.RedisBroadcasterParams{
		RedisClient: redisClient,
		Logger:      log.Logger,
	})
	defer redisBroadcaster.Close()

	dispatcher := notifier.NewAsyncNotifier(notifier.AsyncNotifierParams{
		Next: notifier.NewBroadcastNotifier(notifier.BroadcastNotifierParams{
			Broadcaster: redisBroadcaster,
			Logger:      log.Logger,
		}),
		Workers: cfg.Bidding.NotifyWorkers,
		Queue:   cfg.Bidding.NotifyQueue,
		Logger:  log.Logger,
	})

	// Create business services
	identityService := app.NewIdentityService(app.IdentityServiceParams{
		ParticipantRepo: repos.participants,
		Logger:          log.Logger,
	})
	auctionService := app.NewAuctionService(app.AuctionServiceParams{
		AuctionRepo:    repos.auctions,
		OfferRepo:      repos.offers,
		Notifier:       dispatcher,
		DefaultWeights: weights,
		AuditLocation:  auditLocation,
		Logger:         log.Logger,
	})
	offerService := app.NewOfferService(app.OfferServiceParams{
		OfferRepo:   repos.offers,
		AuctionRepo: repos.auctions,
		Notifier:    dispatcher,
		Logger:      log.Logger,
	})
	log.Info().Msg("Business services initialized")

	if cfg.Store == config.DriverMemory {
		seedDemoParticipants(ctx, identityService)
	}

	auctionScheduler := scheduler.NewAuctionScheduler(scheduler.AuctionSchedulerParams{
		RedisClient: redisClient,
		Closer:      auctionService,
		Interval:    cfg.Bidding.SchedulerInterval,
		Logger:      log.Logger,
	})
	auctionService.SetScheduler(auctionScheduler)

	if err := auctionScheduler.Resync(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to resync deadline schedule")
	}
	auctionScheduler.Start()
	log.Info().Msg("Auction scheduler started")

	wsHandler := ws.NewHandler(ws.WsHandlerParams{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		AuctionService: auctionService,
		OfferService:   offerService,
		Identity:       identityService,
		Broadcaster:    redisBroadcaster,
		Logger:         log.Logger,
	})

	router := rest.NewRouter(rest.RouterParams{
		Handler: rest.NewHandler(rest.HandlerParams{
			AuctionService:  auctionService,
			OfferService:    offerService,
			IdentityService: identityService,
			Logger:          log.Logger,
		}),
		WebSocket: wsHandler.HandleWebSocket,
		Logger:    log.Logger,
	})

	server := rest.NewServer(rest.ServerParams{
		Address: cfg.Server.Address(),
		Handler: router,
		Logger:  log.Logger,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Failed to start HTTP server")
			cancel()
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	log.Info().Int("ws_clients", wsHandler.GetConnectedClients()).Msg("Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping HTTP server")
	}

	auctionScheduler.Stop()
	log.Info().Msg("Auction scheduler stopped")

	// deliver what is already queued before Redis goes away
	dispatcher.Stop()

	log.Info().Msg("Graceful shutdown completed")
}

// openStore builds the repositories of the configured driver
func openStore(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.Store {
	case config.DriverPostgres:
		if cfg.Database.RunMigrations {
			if err := db.RunMigrations(cfg.Database.URL); err != nil {
				return nil, err
			}
			log.Info().Msg("Database migrations applied")
		}

		conn, err := db.NewConnection(cfg)
		if err != nil {
			return nil, err
		}
		all := db.NewRepositoryFactory(conn).GetAllRepositories()
		return &repositories{
			auctions:     all.Auctions,
			offers:       all.Offers,
			participants: all.Participants,
			closeFn:      conn.Close,
		}, nil

	case config.DriverDynamo:
		client, err := dynamo.NewClient(ctx, cfg.Dynamo)
		if err != nil {
			return nil, err
		}
		if cfg.Dynamo.CreateTables {
			if err := dynamo.EnsureTables(ctx, client, cfg.Dynamo); err != nil {
				return nil, err
			}
		}
		return &repositories{
			auctions:     dynamo.NewAuctionRepository(client, cfg.Dynamo.AuctionsTable),
			offers:       dynamo.NewOfferRepository(client, cfg.Dynamo.OffersTable),
			participants: dynamo.NewParticipantRepository(client, cfg.Dynamo.ParticipantsTable),
			closeFn:      func() error { return nil },
		}, nil

	default:
		return &repositories{
			auctions:     memory.NewAuctionRepo(),
			offers:       memory.NewOfferRepo(),
			participants: memory.NewParticipantRepo(),
			closeFn:      func() error { return nil },
		}, nil
	}
}

// seedDemoParticipants registers one participant of each kind so a memory
// store can be exercised right away
func seedDemoParticipants(ctx context.Context, identity *app.IdentityService) {
	demo := []*shared.Participant{
		{ID: uuid.New(), Name: "Demo Master", Kind: shared.KindStaff, Role: shared.RoleMaster, NotifyToken: uuid.NewString()},
		{ID: uuid.New(), Name: "Demo Analyst", Kind: shared.KindStaff, Role: shared.RoleStandard, NotifyToken: uuid.NewString()},
		{ID: uuid.New(), Name: "Demo Carrier", Kind: shared.KindCarrier, NotifyToken: uuid.NewString()},
	}
	for _, p := range demo {
		if err := identity.Register(ctx, p); err != nil {
			log.Error().Err(err).Str("name", p.Name).Msg("Failed to seed participant")
			continue
		}
		log.Info().Str("participant_id", p.ID.String()).Str("name", p.Name).Str("kind", string(p.Kind)).Msg("Seeded demo participant")
	}
}

func initLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Logging.Format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		// Console format for development
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.DefaultContextLogger = &log.Logger
}
