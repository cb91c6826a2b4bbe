package container

import (
	"context"
	"fmt"
	"time"

	"book-catalog-api/internal/config"
	infraCache "book-catalog-api/internal/infrastructure/cache"
	"book-catalog-api/internal/infrastructure/database"
	"book-catalog-api/internal/shared/middleware"
	"book-catalog-api/pkg/cache"
	"book-catalog-api/pkg/jwt"
	"book-catalog-api/pkg/logger"

	// User domain imports
	"book-catalog-api/internal/domains/user"
	userHandler "book-catalog-api/internal/domains/user/handler"
	userRepo "book-catalog-api/internal/domains/user/repository"
	userService "book-catalog-api/internal/domains/user/service"

	// Book domain imports
	bookHandler "book-catalog-api/internal/domains/book/handler"
	bookRepo "book-catalog-api/internal/domains/book/repository"
	bookService "book-catalog-api/internal/domains/book/service"
)

const rateLimiterIdleTTL = 3 * time.Minute

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application
// Pattern: Service Locator + Dependency Injection
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	// Lifecycle: Singleton (1 instance duy nhất trong app lifetime)

	Config      *config.Config       // Application config
	DB          *database.PostgresDB // Database connection pool
	Cache       cache.Cache          // Redis hoặc in-memory cache
	JWTManager  *jwt.Manager
	RateLimiter *middleware.IPRateLimiter

	// ========================================
	// REPOSITORY LAYER (DATA ACCESS)
	// ========================================

	UserRepo user.Repository
	BookRepo bookRepo.RepositoryInterface

	// ========================================
	// SERVICE LAYER (BUSINESS LOGIC)
	// ========================================

	UserService user.Service
	BookService bookService.ServiceInterface

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================

	UserHandler *userHandler.UserHandler
	BookHandler *bookHandler.Handler

	redis  *infraCache.RedisCache
	memory *cache.MemoryCache
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer tạo và initialize toàn bộ dependency graph
//
// QUAN TRỌNG: Thứ tự initialization:
// 1. Config (không phụ thuộc gì)
// 2. Infrastructure (DB + migrations, Cache, JWT) - phụ thuộc Config
// 3. Repositories - phụ thuộc Infrastructure
// 4. Seed roles + admin mặc định - phụ thuộc UserRepo
// 5. Services - phụ thuộc Repositories
// 6. Handlers - phụ thuộc Services
func NewContainer(ctx context.Context) (*Container, error) {
	logger.Info("initializing DI container", nil)

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Info("config loaded", map[string]interface{}{"environment": cfg.App.Environment})

	// ========================================
	// STEP 2: INFRASTRUCTURE
	// ========================================
	if err := c.initDatabase(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.initCache(ctx)

	c.JWTManager, err = jwt.NewManager(jwt.Config{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Expiry:   cfg.JWT.Expiry(),
	})
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init jwt manager: %w", err)
	}

	c.RateLimiter = middleware.NewIPRateLimiter(
		cfg.Security.RateLimitRPS,
		cfg.Security.RateLimitBurst,
		rateLimiterIdleTTL,
	)

	// ========================================
	// STEP 3: REPOSITORIES
	// ========================================
	c.initRepositories()

	// ========================================
	// STEP 4: SEED
	// ========================================
	seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := userService.Seed(seedCtx, c.UserRepo, userService.SeedConfig{
		AdminEmail:    cfg.Admin.Email,
		AdminPassword: cfg.Admin.Password,
		BcryptCost:    cfg.Security.BcryptCost,
	}); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	// ========================================
	// STEP 5 + 6: SERVICES, HANDLERS
	// ========================================
	c.initServices()
	c.initHandlers()

	logger.Info("DI container initialized", nil)
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

// initDatabase connect pool, sau đó chạy migrations
func (c *Container) initDatabase(ctx context.Context) error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	// Connect với timeout 30s
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if err := database.Migrate(connectCtx, dbConfig.DSN()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("database connected and migrated", nil)
	return nil
}

// initCache: REDIS_HOST rỗng -> in-memory cache (chỉ đúng với một instance)
func (c *Container) initCache(ctx context.Context) {
	if c.Config.Redis.Host == "" {
		logger.Warn("REDIS_HOST not set, using in-memory cache", nil)
		c.memory = cache.NewMemoryCache()
		c.Cache = c.memory
		return
	}

	rc := infraCache.NewRedisCache(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := rc.Connect(ctx); err != nil {
		// Redis failure không critical: cache lỗi thì request đi thẳng xuống DB
		logger.Warn("redis connection failed (non-critical)", map[string]interface{}{"error": err.Error()})
	}

	c.redis = rc
	c.Cache = rc
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.BookRepo = bookRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	cfg := c.Config

	c.UserService = userService.NewUserService(
		c.UserRepo,
		c.Cache,
		c.JWTManager,
		userService.Options{
			BcryptCost:       cfg.Security.BcryptCost,
			LoginMaxAttempts: cfg.Security.LoginMaxAttempts,
			LoginLockout:     cfg.Security.LoginLockout(),
		},
	)

	c.BookService = bookService.NewService(
		c.BookRepo,
		c.Cache,
		bookService.WithCacheTTL(cfg.Cache.TTL()),
	)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.BookHandler = bookHandler.NewHandler(c.BookService)
}

// ========================================
// HELPER METHODS
// ========================================

// Cleanup dọn dẹp resources khi shutdown
// Gọi trong graceful shutdown của server
func (c *Container) Cleanup() {
	logger.Info("cleaning up container resources", nil)

	if c.RateLimiter != nil {
		c.RateLimiter.Stop()
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logger.Error("failed to close database", err)
		}
	}

	if c.memory != nil {
		_ = c.memory.Close()
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			logger.Error("failed to close redis", err)
		}
	}
}
