package container

import (
	"context"
	"fmt"
	"time"

	"warehouse-picking-backend/internal/config"
	catalogrepo "warehouse-picking-backend/internal/domains/catalog/repository"
	importerhandler "warehouse-picking-backend/internal/domains/importer/handler"
	importerrepo "warehouse-picking-backend/internal/domains/importer/repository"
	importerservice "warehouse-picking-backend/internal/domains/importer/service"
	notificationhandler "warehouse-picking-backend/internal/domains/notification/handler"
	notificationservice "warehouse-picking-backend/internal/domains/notification/service"
	orderhandler "warehouse-picking-backend/internal/domains/order/handler"
	orderrepo "warehouse-picking-backend/internal/domains/order/repository"
	orderservice "warehouse-picking-backend/internal/domains/order/service"
	pickinghandler "warehouse-picking-backend/internal/domains/picking/handler"
	pickingrepo "warehouse-picking-backend/internal/domains/picking/repository"
	pickingservice "warehouse-picking-backend/internal/domains/picking/service"
	settingshandler "warehouse-picking-backend/internal/domains/settings/handler"
	settingsrepo "warehouse-picking-backend/internal/domains/settings/repository"
	settingsservice "warehouse-picking-backend/internal/domains/settings/service"
	sxhandler "warehouse-picking-backend/internal/domains/stockexception/handler"
	sxrepo "warehouse-picking-backend/internal/domains/stockexception/repository"
	sxservice "warehouse-picking-backend/internal/domains/stockexception/service"
	userhandler "warehouse-picking-backend/internal/domains/user/handler"
	userrepo "warehouse-picking-backend/internal/domains/user/repository"
	userservice "warehouse-picking-backend/internal/domains/user/service"
	"warehouse-picking-backend/internal/infrastructure/cache"
	"warehouse-picking-backend/internal/infrastructure/database"
	"warehouse-picking-backend/internal/infrastructure/email"
	"warehouse-picking-backend/internal/infrastructure/sms"
	"warehouse-picking-backend/internal/infrastructure/upstream"
	"warehouse-picking-backend/pkg/jwt"
	"warehouse-picking-backend/pkg/logger"
)

// Container wires configuration, infrastructure, repositories, services and
// handlers in dependency order. Both the API and the worker build one.
type Container struct {
	Config *config.Config

	Postgres *database.PostgresDB
	Redis    *cache.RedisClient

	JWTManager *jwt.Manager

	// Repositories
	ProductRepo   catalogrepo.ProductRepository
	OrderRepo     orderrepo.OrderRepository
	PickingRepo   pickingrepo.PickingRepository
	ExceptionRepo sxrepo.StockExceptionRepository
	SettingsRepo  settingsrepo.SettingsRepository
	ImporterRepo  importerrepo.ImporterRepository
	UserRepo      userrepo.UserRepository

	// Services
	OrderService        orderservice.OrderService
	PickingService      pickingservice.PickingService
	ExceptionService    sxservice.StockExceptionService
	SettingsService     settingsservice.SettingsService
	ImporterService     importerservice.ImporterService
	NotificationService notificationservice.NotificationService
	UserService         userservice.UserService

	// Handlers
	OrderHandler        *orderhandler.OrderHandler
	PickingHandler      *pickinghandler.PickingHandler
	ExceptionHandler    *sxhandler.StockExceptionHandler
	SettingsHandler     *settingshandler.SettingsHandler
	ImporterHandler     *importerhandler.ImporterHandler
	NotificationHandler *notificationhandler.NotificationHandler
	UserHandler         *userhandler.UserHandler
}

// New builds the full dependency graph: config, database (with migrations),
// redis, then repositories, services and handlers.
func New(ctx context.Context, migrationsPath string) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}

	dbConfig := &database.DBConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Username: cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,

		MaxConns:          int32(cfg.Database.MaxConns),
		MinConns:          int32(cfg.Database.MinConns),
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: time.Minute,

		MaxRetries:     5,
		RetryDelay:     time.Second,
		ConnectTimeout: 10 * time.Second,
	}

	c.Postgres = database.NewPostgresDB(dbConfig)
	if err := c.Postgres.Connect(ctx); err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if migrationsPath != "" {
		if err := database.RunMigrations(dbConfig, migrationsPath); err != nil {
			c.Postgres.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}

	c.Redis = cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		c.Postgres.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Hour,
	)

	pool := c.Postgres.Pool

	// Repositories
	c.ProductRepo = catalogrepo.NewPostgresProductRepository(pool)
	c.OrderRepo = orderrepo.NewPostgresOrderRepository(pool)
	c.PickingRepo = pickingrepo.NewPostgresPickingRepository(pool)
	c.ExceptionRepo = sxrepo.NewPostgresStockExceptionRepository(pool)
	c.SettingsRepo = settingsrepo.NewPostgresSettingsRepository(pool)
	c.ImporterRepo = importerrepo.NewPostgresImporterRepository(pool)
	c.UserRepo = userrepo.NewPostgresUserRepository(pool)

	// Services
	c.SettingsService = settingsservice.NewSettingsService(c.SettingsRepo, c.Redis)
	if err := c.SettingsService.EnsureDefaults(ctx); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("settings bootstrap failed: %w", err)
	}

	c.OrderService = orderservice.NewOrderService(c.OrderRepo)
	c.ExceptionService = sxservice.NewStockExceptionService(c.ExceptionRepo, c.OrderRepo)
	c.PickingService = pickingservice.NewPickingService(c.PickingRepo, c.ProductRepo, c.ExceptionService)
	c.ImporterService = importerservice.NewImporterService(
		c.ImporterRepo, c.ProductRepo, c.OrderRepo, c.SettingsService, upstream.NewClient())

	var smsSender sms.Sender
	if cfg.App.Environment == "development" {
		smsSender = sms.NewMockSender()
	} else {
		smsSender = sms.NewTwilioSender()
	}
	c.NotificationService = notificationservice.NewNotificationService(
		c.ExceptionRepo, c.SettingsService, email.NewSMTPSender(), smsSender)

	c.UserService = userservice.NewUserService(c.UserRepo, c.JWTManager)

	// Handlers
	c.OrderHandler = orderhandler.NewOrderHandler(c.OrderService)
	c.PickingHandler = pickinghandler.NewPickingHandler(c.PickingService)
	c.ExceptionHandler = sxhandler.NewStockExceptionHandler(c.ExceptionService)
	c.SettingsHandler = settingshandler.NewSettingsHandler(c.SettingsService)
	c.ImporterHandler = importerhandler.NewImporterHandler(c.ImporterService)
	c.NotificationHandler = notificationhandler.NewNotificationHandler(c.NotificationService)
	c.UserHandler = userhandler.NewUserHandler(c.UserService)

	logger.Info("container initialized", map[string]interface{}{
		"environment": cfg.App.Environment,
	})
	return c, nil
}

// Cleanup closes the infrastructure connections.
func (c *Container) Cleanup() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Error("failed to close redis", err)
		}
	}
	if c.Postgres != nil {
		c.Postgres.Close()
	}
}
