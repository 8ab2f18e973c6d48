package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pawsit/internal/api"
	"pawsit/internal/cache"
	"pawsit/internal/config"
	"pawsit/internal/database"
	"pawsit/internal/domain"
	"pawsit/internal/events"
	"pawsit/internal/export"
	"pawsit/internal/google"
	"pawsit/internal/logging"
	"pawsit/internal/metrics"
	"pawsit/internal/models"
	"pawsit/internal/notify"
	"pawsit/internal/service"
	"pawsit/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	if err := loadSeeds(cfg, db, &logger); err != nil {
		return err
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	ratingCache := buildRatingCache(redisClient, &logger)

	eventBus := events.NewEventBus()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker := initSheetsWorker(ctx, cfg, db, redisClient, &logger)

	initTelegramNotifier(cfg, eventBus, &logger)

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backup.Start(ctx)
	}

	bookingService := service.NewBookingService(db, eventBus, syncWorker, &logger)
	availabilityService := service.NewAvailabilityService(db, &logger)
	reviewService := service.NewReviewService(db, ratingCache, eventBus, &logger)
	searchService := service.NewSearchService(db, reviewService, &logger)
	messageService := service.NewMessageService(db, eventBus, ratingCache, &logger)
	sitterService := service.NewSitterService(db, &logger)
	ownerService := service.NewOwnerService(db, &logger)

	httpServer := api.NewHTTPServer(cfg.API, api.Services{
		Bookings:     bookingService,
		Availability: availabilityService,
		Search:       searchService,
		Messages:     messageService,
		Reviews:      reviewService,
		Sitters:      sitterService,
		Owners:       ownerService,
		Exporter:     initExporter(cfg, db, &logger),
	}, &logger)

	startMetrics(ctx, cfg, &logger)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// seedData is the optional bootstrap file: demo sitters with their
// services, loaded once into an empty database.
type seedData struct {
	Sitters []struct {
		models.PetSitter `yaml:",inline"`
		Services         []models.Service `yaml:"services"`
	} `yaml:"sitters"`
}

func loadSeeds(cfg *config.Config, db *database.DB, logger *zerolog.Logger) error {
	if cfg.Seeds.Path == "" {
		return nil
	}

	data, err := os.ReadFile(cfg.Seeds.Path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("seeds_path", cfg.Seeds.Path).Msg("seeds file missing, skipping")
			return nil
		}
		return fmt.Errorf("read seeds: %w", err)
	}

	var seeds seedData
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("parse seeds: %w", err)
	}

	ctx := context.Background()
	existing, err := db.GetAllPetSitters(ctx)
	if err != nil {
		return fmt.Errorf("check existing sitters: %w", err)
	}
	if len(existing) > 0 {
		logger.Info().Int("sitters", len(existing)).Msg("database already seeded")
		return nil
	}

	for i := range seeds.Sitters {
		sitter := seeds.Sitters[i].PetSitter
		if err := db.CreatePetSitter(ctx, &sitter); err != nil {
			return fmt.Errorf("seed sitter %q: %w", sitter.Name, err)
		}
		for j := range seeds.Sitters[i].Services {
			svc := seeds.Sitters[i].Services[j]
			svc.SitterID = sitter.ID
			if err := db.CreateService(ctx, &svc); err != nil {
				return fmt.Errorf("seed service %q: %w", svc.Name, err)
			}
		}
	}

	logger.Info().Int("sitters", len(seeds.Sitters)).Msg("seed data loaded")
	return nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if !cfg.Redis.Enabled || cfg.Redis.Address == "" {
		return nil
	}

	redisClient := cache.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// buildRatingCache wires the failover pair: redis primary with an
// in-memory fallback, or memory-only when redis is off.
func buildRatingCache(redisClient *redis.Client, logger *zerolog.Logger) domain.RatingCache {
	memCache := cache.NewMemoryRatingCache()
	if redisClient == nil {
		return memCache
	}
	return cache.NewFailoverRatingCache(cache.NewRedisRatingCache(redisClient), memCache, logger)
}

func initSheetsWorker(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) domain.SyncWorker {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(
		cfg.Google.GoogleCredentialsFile,
		cfg.Google.BookingSpreadSheetID,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}
	logger.Info().Msg("google sheets connected")

	w := worker.NewSheetsWorker(db, google.NewQueueClient(sheetsService), redisClient, worker.RetryPolicy{}, log.Default())
	go w.Start(ctx)
	return w
}

func initExporter(cfg *config.Config, db *database.DB, logger *zerolog.Logger) domain.BookingExporter {
	if cfg.Exports.Path == "" {
		return nil
	}
	return export.NewExporter(db, cfg.Exports.Path, logger)
}

func initTelegramNotifier(cfg *config.Config, eventBus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == 0 {
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}
	bot.Debug = cfg.Telegram.Debug

	notifier := notify.NewTelegramNotifier(bot, cfg.Telegram.ChatID, logger)
	notifier.Subscribe(eventBus)
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifier connected")
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
