package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/phillip/nft-ticketing-go/broadcast"
	"github.com/phillip/nft-ticketing-go/cache"
	"github.com/phillip/nft-ticketing-go/clock"
	"github.com/phillip/nft-ticketing-go/config"
	"github.com/phillip/nft-ticketing-go/controllers"
	"github.com/phillip/nft-ticketing-go/monitoring"
	"github.com/phillip/nft-ticketing-go/routes"
	"github.com/phillip/nft-ticketing-go/services"
	"github.com/phillip/nft-ticketing-go/store"
	"github.com/phillip/nft-ticketing-go/store/memory"
	"github.com/phillip/nft-ticketing-go/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	flags := pflag.NewFlagSet("nft-ticketing", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "path to a dotenv file")
	reconcile := flags.Bool("reconcile", false, "recompute tickets_sold counters and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	config.LoadEnvFile(*envFile)
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]controllers.HealthCheck{}

	// --- Storage ---
	var repos services.Repositories
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		st := memory.New()
		repos = services.Repositories{Events: st.Events(), Tickets: st.Tickets(), Users: st.Users(), Tx: st.Tx()}
	case config.StoreMongo:
		if err := cfg.ConnectMongo(ctx); err != nil {
			return err
		}
		defer cfg.MongoClient.Disconnect(context.Background())

		db := cfg.Database()
		if err := store.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		repos = services.Repositories{
			Events:  store.NewEventStore(db),
			Tickets: store.NewTicketStore(db),
			Users:   store.NewUserStore(db),
			Tx:      store.NewTransactor(cfg.MongoClient, cfg.UseTransactions),
		}
		checks["mongo"] = func(ctx context.Context) error {
			return cfg.MongoClient.Ping(ctx, readpref.Primary())
		}
		logger.Info("connected to mongo", "db", cfg.DBName, "transactions", cfg.UseTransactions)
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	// --- Metrics cache ---
	var metricsCache services.MetricsCache
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		metricsCache = cache.NewMetricsCache(rdb, cfg.MetricsCacheTTL)
		checks["redis"] = func(ctx context.Context) error { return cache.HealthCheck(ctx, rdb) }
	}

	reconciler := services.NewReconciler(repos, metricsCache)
	if *reconcile {
		n, err := reconciler.Run(ctx)
		if err != nil {
			return err
		}
		logger.Info("reconciliation finished", "updated", n)
		return nil
	}

	clk := clock.NewSystem()
	monitor := monitoring.NewMonitor()

	ticketOpts := []services.TicketOption{services.WithRecorder(monitor), services.WithLogger(logger)}
	if metricsCache != nil {
		ticketOpts = append(ticketOpts, services.WithMetricsCache(metricsCache))
	}

	// --- Purchase broadcasts ---
	var fanout broadcast.Fanout
	if cfg.RabbitMQURL != "" {
		mq, err := broadcast.DialRabbitMQ(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		if err != nil {
			return err
		}
		defer mq.Close()
		fanout = append(fanout, mq)
	}
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		fanout = append(fanout, broadcast.NewPubNub(cfg.PubNubPublishKey, cfg.PubNubSubscribeKey, cfg.PubNubUserID))
	}
	if len(fanout) > 0 {
		ticketOpts = append(ticketOpts, services.WithBroadcaster(fanout))
	}

	// --- Confirmation mail ---
	if mailer, err := utils.NewZeptoMailer(cfg.ZeptoAPIURL, cfg.ZeptoAPIKey, cfg.EmailFrom); err == nil {
		ticketOpts = append(ticketOpts, services.WithMailer(mailer))
	} else {
		logger.Info("confirmation mail disabled", "reason", err)
	}

	// --- Image uploads ---
	var images controllers.ImageStore
	if cfg.CloudinaryCloudName != "" {
		uploader, err := utils.NewImageUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			return err
		}
		images = uploader
	}

	// --- Identity provider ---
	var identity *utils.IdentityVerifier
	if cfg.IdentityPublicKey != "" {
		v, err := utils.NewIdentityVerifier(cfg.IdentityPublicKey, cfg.IdentityIssuer, cfg.IdentityAudience)
		if err != nil {
			return err
		}
		identity = v
	} else {
		logger.Warn("IDP_PUBLIC_KEY not set, auth callback registers users without issuing sessions")
	}

	gateway := services.NewSimulatedGateway(cfg.PaymentFailureRate, cfg.PaymentSeed)
	tickets := services.NewTicketService(repos, gateway, services.NewSimulatedMinter(clk), clk, ticketOpts...)
	deps := routes.Deps{
		Events:     services.NewEventService(repos, clk, monitor, services.WithEventMetricsCache(metricsCache)),
		Tickets:    tickets,
		Auth:       services.NewAuthService(repos.Users, clk),
		Metrics:    services.NewMetricsService(repos, metricsCache),
		Reconciler: reconciler,
		Images:     images,
		Identity:   identity,
		Checks:     checks,
		Logger:     logger,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, cfg, deps)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("api listening", "port", cfg.Port, "store", cfg.StoreDriver, "auth_required", cfg.AuthRequired)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server shutdown: %w", err)
	}
	tickets.Wait()
	logger.Info("server stopped")
	return nil
}
