package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/haulbridge/docpipe/internal/adapters/driven/auth"
	"github.com/haulbridge/docpipe/internal/adapters/driven/connectors"
	"github.com/haulbridge/docpipe/internal/adapters/driven/connectors/gmail"
	"github.com/haulbridge/docpipe/internal/adapters/driven/connectors/office365"
	"github.com/haulbridge/docpipe/internal/adapters/driven/detect"
	"github.com/haulbridge/docpipe/internal/adapters/driven/objectstore"
	"github.com/haulbridge/docpipe/internal/adapters/driven/postgres"
	postgresqueue "github.com/haulbridge/docpipe/internal/adapters/driven/queue/postgres"
	redisqueue "github.com/haulbridge/docpipe/internal/adapters/driven/queue/redis"
	redisadapter "github.com/haulbridge/docpipe/internal/adapters/driven/redis"
	"github.com/haulbridge/docpipe/internal/adapters/driving/http"
	"github.com/haulbridge/docpipe/internal/config"
	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
	"github.com/haulbridge/docpipe/internal/core/services"
	"github.com/haulbridge/docpipe/internal/worker"
	"github.com/redis/go-redis/v9"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mode := cfg.Mode
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	log.Printf("docpipe %s starting in %s mode", version, mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== PostgreSQL =====
	log.Println("Connecting to PostgreSQL...")
	db, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("PostgreSQL connected and schema initialized")

	// ===== Redis (optional) =====
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Object store =====
	if cfg.Minio.Endpoint == "" {
		log.Fatal("MINIO_ENDPOINT is required: documents are filed into the object store")
	}
	contentStore, err := objectstore.NewMinioStore(objectstore.MinioConfig{
		Endpoint:  cfg.Minio.Endpoint,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		UseSSL:    cfg.Minio.UseSSL,
		Region:    cfg.Minio.Region,
	})
	if err != nil {
		log.Fatalf("Failed to create object store client: %v", err)
	}
	if err := contentStore.Ping(ctx); err != nil {
		log.Printf("Warning: object store health check failed: %v", err)
	}

	// ===== Barcode detector =====
	if cfg.DetectorURL == "" {
		log.Fatal("DETECTOR_URL is required: classification needs the barcode detection service")
	}
	detector, err := detect.NewClient(cfg.DetectorURL, cfg.DetectorAPIKey)
	if err != nil {
		log.Fatalf("Failed to create detector client: %v", err)
	}
	defer detector.Close()
	if err := detector.HealthCheck(ctx); err != nil {
		log.Printf("Warning: detector health check failed: %v", err)
	}

	// ===== Credential encryption =====
	encryptor, err := postgres.NewSecretEncryptor(cfg.EncryptionKey())
	if err != nil {
		log.Fatalf("Failed to create secret encryptor: %v", err)
	}

	// ===== PostgreSQL stores =====
	userStore := postgres.NewUserStore(db)
	bucketStore := postgres.NewBucketStore(db)
	typeStore := postgres.NewDocumentTypeStore(db)
	patternStore := postgres.NewPatternStore(db)
	documentStore := postgres.NewDocumentStore(db)
	unindexedStore := postgres.NewUnindexedStore(db)
	runLogStore := postgres.NewRunLogStore(db)
	monitorStore := postgres.NewMonitorStore(db, encryptor)

	// ===== Session store (Redis if available, otherwise PostgreSQL) =====
	var sessionStore driven.SessionStore
	if redisClient != nil {
		sessionStore = redisadapter.NewSessionStore(redisClient)
		log.Println("Using Redis session store")
	} else {
		sessionStore = postgres.NewSessionStore(db)
		log.Println("Using PostgreSQL session store")
	}

	// ===== Task queue (Redis if available, otherwise PostgreSQL) =====
	var taskQueue driven.TaskQueue
	if redisClient != nil {
		taskQueue, err = redisqueue.NewQueue(redisClient, fmt.Sprintf("worker-%d", os.Getpid()))
		if err != nil {
			log.Fatalf("Failed to create task queue: %v", err)
		}
		log.Println("Using Redis task queue")
	} else {
		taskQueue = postgresqueue.NewQueue(db.DB)
		log.Println("Using PostgreSQL task queue")
	}

	// ===== Distributed lock (Redis if available, otherwise advisory locks) =====
	var distributedLock driven.DistributedLock
	if redisClient != nil {
		distributedLock = redisadapter.NewLock(redisClient)
		log.Println("Using Redis distributed lock")
	} else {
		distributedLock = postgres.NewAdvisoryLock(db)
		log.Println("Using PostgreSQL advisory lock")
	}

	// ===== Mail connectors =====
	connectorFactory := connectors.NewFactory()
	connectorFactory.Register(office365.NewConnector(logger))
	connectorFactory.Register(gmail.NewConnector(logger))

	// ===== Services =====
	authAdapter := auth.NewAdapter(cfg.JWTSecret, cfg.SessionTTL)
	authService := services.NewAuthService(userStore, sessionStore, authAdapter, logger)
	classifier := services.NewClassifier(patternStore, typeStore, logger)
	filer := services.NewFiler(contentStore, documentStore, unindexedStore, logger)
	catalogService := services.NewCatalogService(services.CatalogServiceConfig{
		BucketStore:   bucketStore,
		TypeStore:     typeStore,
		PatternStore:  patternStore,
		DocumentStore: documentStore,
		Logger:        logger,
	})
	monitorService := services.NewMonitorService(monitorStore, bucketStore, connectorFactory, logger)
	reviewService := services.NewReviewService(unindexedStore, documentStore, typeStore, logger)

	orchestrator := services.NewPollOrchestrator(services.PollOrchestratorConfig{
		MonitorStore:     monitorStore,
		BucketStore:      bucketStore,
		RunLogStore:      runLogStore,
		ConnectorFactory: connectorFactory,
		Detector:         detector,
		Classifier:       classifier,
		Filer:            filer,
		Lock:             distributedLock,
		TaskQueue:        taskQueue,
		Logger:           logger,
	})

	var scheduler *services.Scheduler
	if cfg.SchedulerEnabled {
		scheduler = services.NewScheduler(services.SchedulerConfig{
			MonitorStore: monitorStore,
			TaskQueue:    taskQueue,
			Lock:         distributedLock,
			Logger:       logger,
			ScanInterval: cfg.SchedulerInterval,
		})
		log.Printf("Scheduler enabled (scan_interval=%s)", cfg.SchedulerInterval)
	} else {
		log.Println("Scheduler disabled")
	}

	bootstrapAdmin(ctx, authService)

	serverDeps := http.ServerDeps{
		AuthService:    authService,
		PollService:    orchestrator,
		MonitorService: monitorService,
		ReviewService:  reviewService,
		CatalogService: catalogService,
		TaskQueue:      taskQueue,
		DB:             db,
		Logger:         logger,
	}
	if redisClient != nil {
		serverDeps.Redis = redisPinger{redisClient}
	}

	switch mode {
	case "api":
		runAPI(cfg, serverDeps)
	case "worker":
		runWorkerMode(ctx, cfg, taskQueue, orchestrator, scheduler, logger)
	case "all":
		go runWorkerMode(ctx, cfg, taskQueue, orchestrator, scheduler, logger)
		runAPI(cfg, serverDeps)
	default:
		log.Fatalf("Unknown mode: %s (use: api, worker, or all)", mode)
	}
}

// bootstrapAdmin creates the initial admin account when the user table is
// empty and ADMIN_EMAIL / ADMIN_PASSWORD are set.
func bootstrapAdmin(ctx context.Context, authService *services.AuthService) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	users, err := authService.ListUsers(ctx)
	if err != nil {
		log.Printf("Warning: could not check for existing users: %v", err)
		return
	}
	if len(users) > 0 {
		return
	}

	if _, err := authService.CreateUser(ctx, email, "Administrator", password, domain.RoleAdmin); err != nil {
		log.Printf("Warning: failed to bootstrap admin user: %v", err)
		return
	}
	log.Printf("Bootstrapped admin user %s", email)
}

func runAPI(cfg *config.Config, deps http.ServerDeps) {
	server := http.NewServer(http.Config{
		Host:    cfg.Host,
		Port:    cfg.Port,
		Version: version,
	}, deps)

	log.Printf("API server starting on :%d", cfg.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func runWorkerMode(
	ctx context.Context,
	cfg *config.Config,
	taskQueue driven.TaskQueue,
	orchestrator *services.PollOrchestrator,
	scheduler *services.Scheduler,
	logger *slog.Logger,
) {
	log.Println("Starting worker mode...")

	w := worker.NewWorker(worker.WorkerConfig{
		TaskQueue:      taskQueue,
		Orchestrator:   orchestrator,
		Scheduler:      scheduler,
		Logger:         logger,
		Concurrency:    cfg.WorkerConcurrency,
		DequeueTimeout: cfg.DequeueTimeout,
	})

	if err := w.Start(ctx); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}
	log.Println("Worker started, processing tasks...")

	<-ctx.Done()

	log.Println("Stopping worker...")
	w.Stop()
	log.Println("Worker stopped")
}

// redisPinger adapts a redis client to the server's health check interface.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
