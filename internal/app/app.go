package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobboard_backend/database"
	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/config"
	"jobboard_backend/internal/email"
	"jobboard_backend/internal/handlers"
	"jobboard_backend/internal/imageprocessor"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/notifications"
	"jobboard_backend/internal/redisstore"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/routes"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/storage"
	"jobboard_backend/internal/throttle"
	"jobboard_backend/internal/validator"
	"jobboard_backend/internal/workers"
	"jobboard_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// App owns every long-lived resource of the server process.
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Router   *gin.Engine
	Services *services.ServiceContainer

	redis       *redis.Client
	broker      notifications.Broker
	provider    email.Provider
	emailWorker *workers.EmailWorker
	cleanup     *workers.CleanupWorker
}

func Run() {
	cfg := config.LoadConfig()
	logger.InitWithWriter(cfg.Server.Env, cfg.Log.Level, os.Stdout)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize application", "error", err)
	}
	defer a.Close()

	if err := a.Serve(ctx); err != nil {
		logger.Fatal("Server error", "error", err)
	}
}

// New connects to the database, the broker and storage and builds the
// router. Background workers are not started.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	auth.Configure(cfg.JWT.Secret, cfg.JWT.AccessTTL)
	apperrors.SetDebug(cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	a := &App{Config: cfg}

	dbOpts := database.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	}
	logger.Info("Connecting to database...", "driver", dbOpts.Driver)
	db, err := database.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	a.DB = db
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, dbOpts); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	if err := a.initServices(ctx); err != nil {
		a.Close()
		return nil, err
	}

	if err := a.Services.UserService.EnsureAdmin(db.WithContext(ctx), cfg.Admin.Email, cfg.Admin.Password); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to seed first admin user: %w", err)
	}

	return a, nil
}

func (a *App) initServices(ctx context.Context) error {
	cfg := a.Config

	needRedis := cfg.Notifications.Broker == "redis" ||
		(cfg.Throttle.Enabled && cfg.Throttle.Store == "redis")
	if needRedis {
		client, err := redisstore.New(ctx, redisstore.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return err
		}
		a.redis = client
	}

	if cfg.Notifications.Broker == "redis" {
		a.broker = notifications.NewRedisBroker(a.redis, cfg.Notifications.Queue)
	} else {
		a.broker = notifications.NewMemoryBroker(1024)
	}
	logger.Info("Notification broker initialized", "broker", cfg.Notifications.Broker)

	store, err := storage.NewStorage(ctx, storage.Config{
		Type:         cfg.Storage.Type,
		BasePath:     cfg.Storage.BasePath,
		BaseURL:      cfg.Storage.BaseURL,
		Bucket:       cfg.Storage.Bucket,
		Region:       cfg.Storage.Region,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		Endpoint:     cfg.Storage.Endpoint,
		UsePathStyle: cfg.Storage.UsePathStyle,
		SignedURLTTL: cfg.Storage.SignedURLTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	a.Services = services.NewServiceContainer(services.Dependencies{
		Broker:  a.broker,
		Storage: store,
		Images:  imageprocessor.NewProcessor(cfg.Upload.ImageJPEGQuality, cfg.Upload.LogoMaxDimension),
		Uploads: services.UploadPolicy{
			MaxSize:     cfg.Upload.MaxSize,
			ResumeTypes: cfg.Upload.ResumeTypes,
			ImageTypes:  cfg.Upload.ImageTypes,
		},
		RefreshTTL: cfg.JWT.RefreshTTL,
		PageSize:   cfg.Pagination.PageSize,
	})

	var limiter *throttle.Limiter
	if cfg.Throttle.Enabled {
		if cfg.Throttle.Store == "redis" {
			limiter = throttle.NewLimiter(throttle.NewRedisStore(a.redis))
		} else {
			limiter = throttle.NewLimiter(throttle.NewMemoryStore())
		}
	}

	router, err := SetupRouter(RouterDeps{
		Config:   cfg,
		DB:       a.DB,
		Services: a.Services,
		Storage:  store,
		Limiter:  limiter,
	})
	if err != nil {
		return err
	}
	a.Router = router

	return a.initWorkers()
}

func (a *App) initWorkers() error {
	cfg := a.Config

	provider, err := newEmailProvider(cfg)
	if err != nil {
		return err
	}
	a.provider = provider

	templates, err := email.NewDefaultTemplateManager()
	if err != nil {
		return fmt.Errorf("failed to load email templates: %w", err)
	}
	composer := notifications.NewComposer(templates, cfg.Email.FromEmail)

	a.emailWorker = workers.NewEmailWorker(a.DB, a.broker, composer, provider, workers.EmailWorkerConfig{
		Workers:       cfg.Notifications.Workers,
		MaxRetries:    cfg.Notifications.MaxRetries,
		RetryDelay:    cfg.Notifications.RetryDelay,
		SoftTimeLimit: cfg.Notifications.SoftTimeLimit,
		HardTimeLimit: cfg.Notifications.HardTimeLimit,
	})
	a.cleanup = workers.NewCleanupWorker(a.DB, cfg.Notifications.CleanupInterval, cfg.Notifications.ResultTTL)
	return nil
}

func newEmailProvider(cfg *config.Config) (email.Provider, error) {
	switch cfg.Email.Backend {
	case "smtp":
		smtpCfg := email.DefaultConfig()
		smtpCfg.Host = cfg.Email.SMTPHost
		smtpCfg.Port = cfg.Email.SMTPPort
		smtpCfg.Username = cfg.Email.SMTPUsername
		smtpCfg.Password = cfg.Email.SMTPPassword
		smtpCfg.FromEmail = cfg.Email.FromEmail
		smtpCfg.FromName = cfg.Email.FromName
		smtpCfg.UseTLS = cfg.Email.UseTLS
		if err := smtpCfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid smtp config: %w", err)
		}
		return email.NewSMTPProvider(smtpCfg), nil
	case "console", "":
		return email.NewConsoleProvider(cfg.Email.FromEmail, os.Stdout), nil
	case "none":
		logger.Warn("Email delivery is disabled")
		return &nopEmailProvider{}, nil
	default:
		return nil, fmt.Errorf("unsupported email backend %q", cfg.Email.Backend)
	}
}

// RouterDeps are the inputs of SetupRouter. A nil Limiter disables
// throttling.
type RouterDeps struct {
	Config   *config.Config
	DB       *gorm.DB
	Services *services.ServiceContainer
	Storage  storage.Storage
	Limiter  *throttle.Limiter
}

func SetupRouter(deps RouterDeps) (*gin.Engine, error) {
	cfg := deps.Config

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.DBMiddleware(deps.DB))
	router.Use(middleware.AuthMiddleware(deps.Services.AuthService))

	var deleteThrottle gin.HandlerFunc
	if deps.Limiter != nil {
		rates, err := throttleRates(cfg)
		if err != nil {
			return nil, err
		}
		router.Use(middleware.ThrottleMiddleware(deps.Limiter, rates))
		deleteThrottle = middleware.ScopedThrottle(deps.Limiter, "user_delete", rates.Delete)
	}

	if local, ok := deps.Storage.(*storage.LocalStorage); ok {
		router.Static("/media", local.BasePath())
	}

	base := handlers.NewBaseHandler(validator.New(), cfg.Server.BaseURL)
	svc := deps.Services
	appHandlers := &handlers.AppHandlers{
		AuthHandler:        handlers.NewAuthHandler(base, svc.AuthService),
		UserHandler:        handlers.NewUserHandler(base, svc.UserService, cfg.Upload.MaxSize, deleteThrottle),
		CompanyHandler:     handlers.NewCompanyHandler(base, svc.CompanyService, cfg.Upload.MaxSize),
		JobHandler:         handlers.NewJobHandler(base, svc.JobService),
		ApplicationHandler: handlers.NewApplicationHandler(base, svc.ApplicationService, svc.NotificationService),
		HealthHandler:      handlers.NewHealthHandler(),
	}

	routes.RegisterRoutes(router, appHandlers)
	return router, nil
}

func throttleRates(cfg *config.Config) (middleware.ThrottleRates, error) {
	var rates middleware.ThrottleRates
	var err error
	if rates.Anon, err = throttle.ParseRate(cfg.Throttle.AnonRate); err != nil {
		return rates, fmt.Errorf("throttle.anon_rate: %w", err)
	}
	if rates.User, err = throttle.ParseRate(cfg.Throttle.UserRate); err != nil {
		return rates, fmt.Errorf("throttle.user_rate: %w", err)
	}
	if rates.Delete, err = throttle.ParseRate(cfg.Throttle.DeleteRate); err != nil {
		return rates, fmt.Errorf("throttle.delete_rate: %w", err)
	}
	return rates, nil
}

// Serve starts the workers and the HTTP server and blocks until ctx is
// cancelled, then shuts both down.
func (a *App) Serve(ctx context.Context) error {
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	a.emailWorker.Start(workerCtx)
	a.cleanup.Start(workerCtx)

	srv := &http.Server{
		Addr:         a.Config.Addr(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server starting on %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Workers stop before Close shuts the broker, so a task interrupted
	// mid-send is requeued onto a live broker.
	cancelWorkers()
	a.emailWorker.Wait()
	logger.Info("Server exited")
	return nil
}

// Close releases the broker, redis, the email provider and the database.
// Call it after Serve has returned.
func (a *App) Close() {
	if mb, ok := a.broker.(*notifications.MemoryBroker); ok && a.DB != nil {
		a.failUndelivered(mb.Drain())
	}
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			logger.Warn("Failed to close broker", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warn("Failed to close redis", "error", err)
		}
	}
	if a.provider != nil {
		_ = a.provider.Close()
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			logger.Warn("Failed to close database", "error", err)
		}
	}
}

// failUndelivered records tasks that an in-memory broker still held at
// shutdown. They do not survive the process.
func (a *App) failUndelivered(tasks []notifications.Task) {
	if len(tasks) == 0 {
		return
	}
	repo := repositories.NewEmailTaskRepository()
	now := time.Now().UTC()
	for _, task := range tasks {
		if err := repo.MarkFailed(a.DB, task.ID, task.Attempt, "undelivered at shutdown", now); err != nil {
			logger.Warn("Failed to record undelivered email", "task_id", task.ID, "error", err)
		}
	}
	logger.Error("Email tasks undelivered at shutdown", "count", len(tasks))
}
