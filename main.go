package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"homznspace/backend/internal/api"
	"homznspace/backend/internal/api/middleware"
	"homznspace/backend/internal/auth"
	"homznspace/backend/internal/cache"
	"homznspace/backend/internal/config"
	"homznspace/backend/internal/db"
	"homznspace/backend/internal/email"
	"homznspace/backend/internal/logging"
	"homznspace/backend/internal/metrics"
	"homznspace/backend/internal/services"
	"homznspace/backend/internal/storage"
	"homznspace/backend/internal/store"
	"homznspace/backend/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (notification worker), 'all' (default)")

func main() {
	flag.Parse()

	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.AppName, cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if cfg.GeneratedJwtSecret {
		log.Warn().Msg("JWT_SECRET not set; using a random secret, sessions will not survive a restart")
	}

	switch cfg.RunMode {
	case "api", "bg", "all":
	default:
		log.Fatal().Str("mode", cfg.RunMode).Msg("invalid run mode")
	}

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(context.Background(), cfg.MongoURI, cfg.MongoDbName, cfg.AppName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Error().Err(err).Msg("error disconnecting from MongoDB")
		}
	}()
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(indexCtx, mongoDb); err != nil {
		cancelIndex()
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}
	cancelIndex()

	// Initialize Redis. It is optional for the API, required for the worker.
	var redisClient *redis.Client
	if cfg.HasRedis() {
		redisClient, err = cache.ConnectRedis(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer func() {
			if err := cache.DisconnectRedis(redisClient); err != nil {
				log.Error().Err(err).Msg("error disconnecting from Redis")
			}
		}()
	} else if cfg.RunMode == "bg" {
		log.Fatal().Msg("REDIS_ADDR is required in 'bg' mode")
	}

	// Initialize Email Sender
	var primaryEmailSender email.Sender
	if cfg.MockServices && redisClient != nil {
		log.Info().Msg("MOCK_SERVICES enabled: using Redis email sender")
		primaryEmailSender = email.NewRedisSender(redisClient, cfg.SmtpFromAddress)
	} else {
		primaryEmailSender = email.NewSMTPSender(cfg)
	}
	compositeSender := email.NewCompositeEmailSender(primaryEmailSender)
	if cfg.LogEmailsPath != "" {
		fileSender, err := email.NewFileEmailSender(cfg.LogEmailsPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.LogEmailsPath).Msg("failed to initialize file email sender, continuing without it")
		} else {
			compositeSender.AddMirror(fileSender)
		}
	}

	appMetrics := metrics.New()

	// Stores
	adminStore := store.NewAdminStore(mongoDb)
	agentStore := store.NewAgentStore(mongoDb)
	userStore := store.NewUserStore(mongoDb)
	propertyStore := store.NewPropertyStore(mongoDb)
	inquiryStore := store.NewInquiryStore(mongoDb)
	contactStore := store.NewContactStore(mongoDb)
	templateStore := store.NewTemplateStore(mongoDb)

	emailTemplateService := services.NewEmailTemplateService(templateStore)
	taskProcessor := tasks.NewTaskProcessor(cfg, compositeSender, emailTemplateService)

	// Notifications are queued when a worker can pick them up, otherwise delivered inline.
	var dispatcher services.Dispatcher = tasks.NewDirectDispatcher(taskProcessor)
	var taskClient *asynq.Client
	if cfg.QueueNotifications && redisClient != nil {
		taskClient = tasks.NewClient(redisClient)
		defer taskClient.Close()
		dispatcher = tasks.NewQueueDispatcher(taskClient)
		log.Info().Msg("notifications are queued for the background worker")
	}
	notifier := services.NewNotifier(dispatcher, cfg.AdminEmail, appMetrics)

	var wg sync.WaitGroup
	shutdownChan := make(chan struct{}, 1)

	health := map[string]api.HealthChecker{
		"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
	}
	if redisClient != nil {
		health["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	// Start Service API (always runs)
	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: api.SetupServiceRouter(redisClient, appMetrics, health, shutdownChan),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Str("port", cfg.ServiceApiPort).Msg("service API listening")
		if err := serviceSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("service API ListenAndServe error")
		}
	}()

	var mainApiSrv *http.Server
	var backgroundTaskSrv *asynq.Server
	stopLimiter := make(chan struct{})

	log.Info().Str("mode", cfg.RunMode).Msg("starting application")

	if cfg.RunMode == "api" || cfg.RunMode == "all" {
		blobs, uploadDir := setupBlobStore(cfg)
		var areaCache cache.IAreaCache
		if redisClient != nil {
			areaCache = cache.NewAreaCache(redisClient, cfg.GetCacheTTL)
		}

		tokens := auth.NewTokenIssuer(cfg.JwtSecret, cfg.JwtTTL)
		rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
		go rateLimiter.Run(time.Minute, stopLimiter)

		router := api.SetupRouter(api.Dependencies{
			Config:       cfg,
			Tokens:       tokens,
			RateLimiter:  rateLimiter,
			Metrics:      appMetrics,
			AuthService:  services.NewAuthService(adminStore, agentStore, userStore, tokens, notifier),
			AgentService: services.NewAgentService(agentStore, notifier),
			PropertyService: services.NewPropertyService(propertyStore, agentStore, inquiryStore, blobs, areaCache, services.PropertyServiceOptions{
				DefaultCity:       cfg.DefaultCity,
				ImageMaxDimension: cfg.ImageMaxDimension,
			}),
			InquiryService: services.NewInquiryService(inquiryStore, propertyStore, agentStore, userStore, notifier),
			ContactService: services.NewContactService(contactStore, notifier),
			UploadDir:      uploadDir,
		})
		mainApiSrv = &http.Server{
			Addr:              ":" + cfg.ApiPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info().Str("port", cfg.ApiPort).Msg("main API listening")
			if err := mainApiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("main API ListenAndServe error")
			}
		}()
	}

	if cfg.RunMode == "all" && redisClient == nil {
		log.Info().Msg("no Redis configured; notifications are delivered inline and no worker is started")
	}
	if (cfg.RunMode == "bg" || cfg.RunMode == "all") && redisClient != nil {
		var mux *asynq.ServeMux
		backgroundTaskSrv, mux = tasks.SetupServer(redisClient, taskProcessor)
		// Run would block on its own signal handling; shutdown is driven below.
		if err := backgroundTaskSrv.Start(mux); err != nil {
			log.Fatal().Err(err).Msg("background task server error")
		}
		log.Info().Msg("background task server started")
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down gracefully")
	case <-shutdownChan:
		log.Info().Msg("shutdown requested via service API")
	}
	close(stopLimiter)

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("service API server shutdown error")
	}
	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("main API server shutdown error")
		}
	}
	if backgroundTaskSrv != nil {
		backgroundTaskSrv.Shutdown()
	}

	wg.Wait()
	log.Info().Msg("server gracefully stopped")
}

// setupBlobStore picks S3 when a bucket is configured, local disk otherwise.
// The returned directory is non-empty only for local storage.
func setupBlobStore(cfg *config.Config) (storage.IBlobStore, string) {
	if cfg.UsesS3() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s3Store, err := storage.NewS3Storage(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize S3 storage")
		}
		log.Info().Str("bucket", cfg.AwsS3Bucket).Msg("storing uploads in S3")
		return s3Store, ""
	}
	local, err := storage.NewLocalStorage(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize upload directory")
	}
	log.Info().Str("dir", local.Dir()).Msg("storing uploads on local disk")
	return local, local.Dir()
}
