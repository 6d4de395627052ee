package di

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskhub/application/serviceimpl"
	"taskhub/domain/ports"
	"taskhub/domain/repositories"
	"taskhub/domain/services"
	"taskhub/infrastructure/memory"
	"taskhub/infrastructure/messaging"
	"taskhub/infrastructure/mongodb"
	natspkg "taskhub/infrastructure/nats"
	"taskhub/infrastructure/postgres"
	redispkg "taskhub/infrastructure/redis"
	"taskhub/infrastructure/storage"
	wsmanager "taskhub/infrastructure/websocket"
	"taskhub/interfaces/api/handlers"
	"taskhub/pkg/config"
	"taskhub/pkg/logger"
	"taskhub/pkg/scheduler"
)

const reconcileJobID = "reconcile"

type Container struct {
	// Configuration
	Config  *config.Config
	Version string

	// Infrastructure
	DB          *gorm.DB
	MongoClient *mongodb.Client
	RedisClient *redispkg.Client // optional, nil disables the read cache
	NATSClient  *natspkg.Client  // optional, nil keeps events in process
	Storage     ports.ObjectStorage
	Scheduler   scheduler.Scheduler

	// Repositories
	UserRepository repositories.UserRepository
	TaskRepository repositories.TaskRepository
	TxManager      repositories.TxManager

	// Cross-cutting ports
	ReadCache ports.ReadCache
	Events    ports.EventPublisher

	// Services
	UserService      services.UserService
	TaskService      services.TaskService
	ReconcileService services.ReconcileService
	ExportService    services.ExportService

	// WebSocket
	Hub            *wsmanager.Manager
	NATSSubscriber *natspkg.Subscriber

	storeName string
	ping      func(ctx context.Context) error
	stopHub   context.CancelFunc
}

func NewContainer() *Container {
	return &Container{}
}

// Initialize wires everything the API server needs
func (c *Container) Initialize() error {
	if err := c.InitializeCore(); err != nil {
		return err
	}

	c.initRealtime()

	if err := c.initServices(); err != nil {
		return err
	}

	if err := c.initScheduler(); err != nil {
		return err
	}

	return nil
}

// InitializeCore wires config, logging, storage backends and repositories.
// The admin CLI stops here and builds the services it needs itself.
func (c *Container) InitializeCore() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initLogger(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	if err := c.initRepositories(); err != nil {
		return err
	}

	return nil
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

func (c *Container) initLogger() error {
	logConfig := logger.Config{
		Level:      c.Config.Log.Level,
		Format:     c.Config.Log.Format,
		Output:     c.Config.Log.Output,
		FilePath:   c.Config.Log.FilePath,
		MaxSize:    c.Config.Log.MaxSize,
		MaxBackups: c.Config.Log.MaxBackups,
		MaxAge:     c.Config.Log.MaxAge,
		Compress:   c.Config.Log.Compress,
	}

	if err := logger.Init(logConfig); err != nil {
		return err
	}

	logger.Info("Logger initialized",
		"level", c.Config.Log.Level,
		"format", c.Config.Log.Format,
		"output", c.Config.Log.Output,
	)
	return nil
}

func (c *Container) initInfrastructure() error {
	if err := c.initStore(); err != nil {
		return err
	}

	// Redis is optional: without it reads go straight to the store
	if c.Config.Redis.URL != "" {
		redisClient, err := redispkg.NewClient(&c.Config.Redis)
		if err != nil {
			logger.Warn("Redis client initialization failed (cache disabled)", "error", err)
		} else {
			c.RedisClient = redisClient
		}
	}

	// NATS is optional too: without it events stay in this process
	if c.Config.NATS.URL != "" {
		natsClient, err := natspkg.NewClient(natspkg.ClientConfig{URL: c.Config.NATS.URL})
		if err != nil {
			logger.Warn("NATS client initialization failed (events stay local)", "error", err)
		} else {
			c.NATSClient = natsClient
		}
	}

	if err := c.initStorage(); err != nil {
		return err
	}

	return nil
}

// initStore connects the configured backing store
func (c *Container) initStore() error {
	dbCfg := c.Config.Database
	c.storeName = dbCfg.Driver

	switch dbCfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.NewDatabase(dbCfg, c.Config.Log.Level == "debug")
		if err != nil {
			return err
		}
		c.DB = db
		logger.Info("Database connected", "host", dbCfg.Host, "db", dbCfg.DBName)

		if dbCfg.AutoMigrate {
			if err := postgres.Migrate(db); err != nil {
				return err
			}
			logger.Info("Database migrated")
		}
		c.ping = func(context.Context) error { return postgres.Ping(db) }

	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := mongodb.NewClient(ctx, mongodb.ClientConfig{
			URI:      c.Config.Mongo.URI,
			Database: c.Config.Mongo.Database,
		})
		if err != nil {
			return err
		}
		c.MongoClient = client

		if dbCfg.AutoMigrate {
			if err := client.EnsureIndexes(ctx); err != nil {
				return err
			}
			logger.Info("MongoDB indexes ensured")
		}
		c.ping = client.Ping

	case config.DriverMemory:
		logger.Warn("Using in-memory store, data is lost on restart")

	default:
		return fmt.Errorf("unsupported store driver %q", dbCfg.Driver)
	}
	return nil
}

func (c *Container) initStorage() error {
	switch c.Config.Storage.Type {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s3Storage, err := storage.NewS3Storage(ctx, storage.S3StorageConfig{
			Endpoint:  c.Config.Storage.S3.Endpoint,
			AccessKey: c.Config.Storage.S3.AccessKey,
			SecretKey: c.Config.Storage.S3.SecretKey,
			Bucket:    c.Config.Storage.S3.Bucket,
			UseSSL:    c.Config.Storage.S3.UseSSL,
			Region:    c.Config.Storage.S3.Region,
			PublicURL: c.Config.Storage.S3.PublicURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		c.Storage = s3Storage
		logger.Info("S3 storage initialized",
			"endpoint", c.Config.Storage.S3.Endpoint,
			"bucket", c.Config.Storage.S3.Bucket,
		)

	default:
		localStorage, err := storage.NewLocalStorage(storage.LocalStorageConfig{
			BasePath: c.Config.Storage.BasePath,
			BaseURL:  c.Config.Storage.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize local storage: %w", err)
		}
		c.Storage = localStorage
		logger.Info("Local storage initialized", "path", c.Config.Storage.BasePath)
	}
	return nil
}

func (c *Container) initRepositories() error {
	switch c.Config.Database.Driver {
	case config.DriverPostgres:
		c.UserRepository = postgres.NewUserRepository(c.DB)
		c.TaskRepository = postgres.NewTaskRepository(c.DB)
		c.TxManager = postgres.NewTxManager(c.DB)

	case config.DriverMongo:
		db := c.MongoClient.Database()
		c.UserRepository = mongodb.NewUserRepository(db)
		c.TaskRepository = mongodb.NewTaskRepository(db)
		c.TxManager = mongodb.NewTxManager(c.MongoClient.Mongo(), c.Config.Mongo.Transactions)
		if !c.Config.Mongo.Transactions {
			logger.Warn("MongoDB transactions disabled, relationship writes are not atomic")
		}

	case config.DriverMemory:
		store := memory.NewStore()
		c.UserRepository = store.Users()
		c.TaskRepository = store.Tasks()
		c.TxManager = store.TxManager()
	}

	if c.RedisClient != nil {
		c.ReadCache = redispkg.NewReadCache(c.RedisClient, c.Config.Redis.TTL)
		logger.Info("Read cache enabled", "ttl", c.Config.Redis.TTL)
	} else {
		c.ReadCache = redispkg.NewNopReadCache()
	}

	logger.Info("Repositories initialized", "store", c.storeName)
	return nil
}

// initRealtime starts the websocket hub. With NATS the services publish to
// the stream and every instance relays the stream to its own clients;
// without it the services publish to the hub directly.
func (c *Container) initRealtime() {
	c.Hub = wsmanager.NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	c.stopHub = cancel
	go c.Hub.Run(ctx)

	if c.NATSClient == nil {
		c.Events = messaging.NewFanoutPublisher(c.Hub)
		logger.Info("Events delivered in process")
		return
	}

	c.Events = messaging.NewFanoutPublisher(natspkg.NewPublisher(c.NATSClient))

	c.NATSSubscriber = natspkg.NewSubscriber(c.NATSClient.Conn())
	c.NATSSubscriber.OnEvent(func(event ports.Event) {
		if err := c.Hub.Publish(context.Background(), event); err != nil {
			logger.Warn("Failed to relay event", "type", event.Type, "error", err)
		}
	})
	if err := c.NATSSubscriber.Start(); err != nil {
		// still publish, other instances may be listening
		logger.Warn("NATS subscriber failed to start", "error", err)
		c.NATSSubscriber = nil
	}
	logger.Info("Events delivered through NATS", "url", c.Config.NATS.URL)
}

func (c *Container) initServices() error {
	events := c.Events
	if events == nil {
		events = messaging.NopPublisher{}
	}

	c.UserService = serviceimpl.NewUserService(c.UserRepository, c.TaskRepository, c.TxManager, events, c.ReadCache)
	c.TaskService = serviceimpl.NewTaskService(c.TaskRepository, c.UserRepository, c.TxManager, events, c.ReadCache)
	c.ReconcileService = c.NewReconcileService()
	c.ExportService = c.NewExportService()

	logger.Info("Services initialized")
	return nil
}

// NewReconcileService builds the drift repair service over the wired store
func (c *Container) NewReconcileService() services.ReconcileService {
	return serviceimpl.NewReconcileService(c.UserRepository, c.TaskRepository, c.TxManager, c.ReadCache)
}

// NewExportService builds the snapshot service over the wired store
func (c *Container) NewExportService() services.ExportService {
	return serviceimpl.NewExportService(c.UserRepository, c.TaskRepository, c.Storage, c.Config.Storage.Prefix)
}

func (c *Container) initScheduler() error {
	cronExpr := c.Config.Reconcile.Cron
	if cronExpr == "" {
		logger.Info("Reconcile schedule disabled")
		return nil
	}

	sched := scheduler.NewScheduler()
	err := sched.AddJob(reconcileJobID, cronExpr, 5*time.Minute, func(ctx context.Context) error {
		_, err := c.ReconcileService.Reconcile(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reconcile: %w", err)
	}

	sched.Start()
	c.Scheduler = sched
	logger.Info("Reconcile scheduled", "cron", cronExpr)
	return nil
}

func (c *Container) Cleanup() error {
	logger.Info("Starting cleanup...")

	// Stop scheduler
	if c.Scheduler != nil && c.Scheduler.IsRunning() {
		c.Scheduler.Stop()
		logger.Info("Scheduler stopped")
	}

	// Stop NATS subscriber
	if c.NATSSubscriber != nil {
		if err := c.NATSSubscriber.Stop(); err != nil {
			logger.Warn("Failed to stop NATS subscriber", "error", err)
		}
	}

	// Stop websocket hub, this closes client connections
	if c.stopHub != nil {
		c.stopHub()
	}

	// Close NATS connection
	if c.NATSClient != nil {
		if err := c.NATSClient.Close(); err != nil {
			logger.Warn("Failed to close NATS connection", "error", err)
		} else {
			logger.Info("NATS connection closed")
		}
	}

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis connection", "error", err)
		} else {
			logger.Info("Redis connection closed")
		}
	}

	// Close MongoDB connection
	if c.MongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.MongoClient.Close(ctx); err != nil {
			logger.Warn("Failed to close MongoDB connection", "error", err)
		} else {
			logger.Info("MongoDB connection closed")
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := postgres.Close(c.DB); err != nil {
			logger.Warn("Failed to close database connection", "error", err)
		} else {
			logger.Info("Database connection closed")
		}
	}

	logger.Info("Cleanup completed")
	return logger.Close()
}

// Migrate creates the schema of the configured store. It is idempotent.
func (c *Container) Migrate(ctx context.Context) error {
	switch {
	case c.DB != nil:
		return postgres.Migrate(c.DB)
	case c.MongoClient != nil:
		return c.MongoClient.EnsureIndexes(ctx)
	default:
		logger.Info("Nothing to migrate", "store", c.storeName)
		return nil
	}
}

func (c *Container) eventsStatus() func(ctx context.Context) (any, error) {
	if c.NATSClient == nil {
		return nil
	}
	return func(ctx context.Context) (any, error) {
		return c.NATSClient.GetStatus(ctx)
	}
}

func (c *Container) cacheStatus() func(ctx context.Context) error {
	if c.RedisClient == nil {
		return nil
	}
	return c.RedisClient.Ping
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

func (c *Container) GetHandlerServices() *handlers.Services {
	return &handlers.Services{
		UserService: c.UserService,
		TaskService: c.TaskService,
		Health: handlers.HealthCheck{
			Store:   c.storeName,
			Version: c.Version,
			Ping:    c.ping,
			Events:  c.eventsStatus(),
			Cache:   c.cacheStatus(),
		},
		Hub: c.Hub,
	}
}
