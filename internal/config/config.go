package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		Env             string        `yaml:"env"`
		BaseURL         string        `yaml:"base_url"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Database struct {
		Driver       string `yaml:"driver"` // postgres, mysql, sqlite
		DSN          string `yaml:"url"`
		AutoMigrate  bool   `yaml:"auto_migrate"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"database"`

	JWT struct {
		Secret     string        `yaml:"secret"`
		AccessTTL  time.Duration `yaml:"access_ttl"`
		RefreshTTL time.Duration `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Email struct {
		Backend      string `yaml:"backend"` // smtp, console
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
	} `yaml:"email"`

	Notifications struct {
		Broker          string        `yaml:"broker"` // redis, memory
		Queue           string        `yaml:"queue"`
		Workers         int           `yaml:"workers"`
		MaxRetries      int           `yaml:"max_retries"`
		RetryDelay      time.Duration `yaml:"retry_delay"`
		SoftTimeLimit   time.Duration `yaml:"soft_time_limit"`
		HardTimeLimit   time.Duration `yaml:"hard_time_limit"`
		ResultTTL       time.Duration `yaml:"result_ttl"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
	} `yaml:"notifications"`

	Redis struct {
		Addr         string        `yaml:"addr"`
		Password     string        `yaml:"password"`
		DB           int           `yaml:"db"`
		PoolSize     int           `yaml:"pool_size"`
		MinIdleConns int           `yaml:"min_idle_conns"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"redis"`

	Throttle struct {
		Enabled    bool   `yaml:"enabled"`
		Store      string `yaml:"store"` // redis, memory
		AnonRate   string `yaml:"anon_rate"`
		UserRate   string `yaml:"user_rate"`
		DeleteRate string `yaml:"delete_rate"`
	} `yaml:"throttle"`

	Storage struct {
		Type         string        `yaml:"type"`      // local, s3
		BasePath     string        `yaml:"base_path"` // local
		BaseURL      string        `yaml:"base_url"`
		Bucket       string        `yaml:"bucket"`
		Region       string        `yaml:"region"`
		AccessKey    string        `yaml:"access_key"`
		SecretKey    string        `yaml:"secret_key"`
		Endpoint     string        `yaml:"endpoint"` // custom S3-compatible endpoint
		UsePathStyle bool          `yaml:"use_path_style"`
		SignedURLTTL time.Duration `yaml:"signed_url_ttl"`
	} `yaml:"storage"`

	Upload struct {
		MaxSize          int64    `yaml:"max_size"`
		ResumeTypes      []string `yaml:"resume_types"`
		ImageTypes       []string `yaml:"image_types"`
		LogoMaxDimension int      `yaml:"logo_max_dimension"`
		ImageJPEGQuality int      `yaml:"image_quality"`
	} `yaml:"upload"`

	Pagination struct {
		PageSize int `yaml:"page_size"`
	} `yaml:"pagination"`

	Admin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

var AppConfig *Config

// Default returns a configuration usable for local development.
func Default() *Config {
	var cfg Config

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8000
	cfg.Server.Env = "development"
	cfg.Server.ReadTimeout = 15 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 10 * time.Second

	cfg.Database.Driver = "postgres"
	cfg.Database.MaxOpenConns = 25
	cfg.Database.MaxIdleConns = 5

	cfg.JWT.AccessTTL = 60 * time.Minute
	cfg.JWT.RefreshTTL = 24 * time.Hour

	cfg.Email.Backend = "console"
	cfg.Email.SMTPHost = "smtp.gmail.com"
	cfg.Email.SMTPPort = 587
	cfg.Email.UseTLS = true
	cfg.Email.FromEmail = "noreply@jobboard.com"
	cfg.Email.FromName = "Job Board"

	cfg.Notifications.Broker = "memory"
	cfg.Notifications.Queue = "emails"
	cfg.Notifications.Workers = 4
	cfg.Notifications.MaxRetries = 3
	cfg.Notifications.RetryDelay = 60 * time.Second
	cfg.Notifications.SoftTimeLimit = 5 * time.Minute
	cfg.Notifications.HardTimeLimit = 10 * time.Minute
	cfg.Notifications.ResultTTL = 7 * 24 * time.Hour
	cfg.Notifications.CleanupInterval = 24 * time.Hour

	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.PoolSize = 50
	cfg.Redis.MinIdleConns = 5
	cfg.Redis.DialTimeout = 5 * time.Second
	cfg.Redis.ReadTimeout = 3 * time.Second
	cfg.Redis.WriteTimeout = 3 * time.Second

	cfg.Throttle.Enabled = true
	cfg.Throttle.Store = "memory"
	cfg.Throttle.AnonRate = "100/day"
	cfg.Throttle.UserRate = "1000/day"
	cfg.Throttle.DeleteRate = "5/hour"

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./media"
	cfg.Storage.BaseURL = "/media"
	cfg.Storage.SignedURLTTL = 15 * time.Minute

	cfg.Upload.MaxSize = 5 * 1024 * 1024
	cfg.Upload.ResumeTypes = []string{"application/pdf", "application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
	cfg.Upload.ImageTypes = []string{"image/jpeg", "image/png"}
	cfg.Upload.LogoMaxDimension = 400
	cfg.Upload.ImageJPEGQuality = 85

	cfg.Pagination.PageSize = 50

	return &cfg
}

// Load builds the configuration from defaults, the yaml file at path (if it
// exists) and environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads .env, then the config file, and stores the result in AppConfig.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	AppConfig = cfg
	return cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var problems []string

	if c.JWT.Secret == "" {
		if c.IsDevelopment() {
			c.JWT.Secret = "development-insecure-secret"
		} else {
			problems = append(problems, "jwt.secret is required outside development")
		}
	}
	if c.Database.DSN == "" {
		problems = append(problems, "database.url is required")
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("unsupported database.driver %q", c.Database.Driver))
	}
	switch c.Notifications.Broker {
	case "redis", "memory":
	default:
		problems = append(problems, fmt.Sprintf("unsupported notifications.broker %q", c.Notifications.Broker))
	}
	if c.Notifications.Workers < 1 {
		problems = append(problems, "notifications.workers must be at least 1")
	}
	if c.Notifications.HardTimeLimit < c.Notifications.SoftTimeLimit {
		problems = append(problems, "notifications.hard_time_limit must not be shorter than soft_time_limit")
	}
	if c.Pagination.PageSize < 1 {
		problems = append(problems, "pagination.page_size must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var errs []string
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	envString("SERVER_HOST", &cfg.Server.Host)
	collect(envInt("SERVER_PORT", &cfg.Server.Port))
	envString("SERVER_ENV", &cfg.Server.Env)
	envString("SERVER_BASE_URL", &cfg.Server.BaseURL)
	envString("LOG_LEVEL", &cfg.Log.Level)

	envString("DATABASE_DRIVER", &cfg.Database.Driver)
	envString("DATABASE_URL", &cfg.Database.DSN)
	collect(envBool("DATABASE_AUTO_MIGRATE", &cfg.Database.AutoMigrate))

	envString("JWT_SECRET", &cfg.JWT.Secret)
	collect(envDuration("JWT_ACCESS_TTL", &cfg.JWT.AccessTTL))
	collect(envDuration("JWT_REFRESH_TTL", &cfg.JWT.RefreshTTL))

	envString("EMAIL_BACKEND", &cfg.Email.Backend)
	envString("EMAIL_HOST", &cfg.Email.SMTPHost)
	collect(envInt("EMAIL_PORT", &cfg.Email.SMTPPort))
	envString("EMAIL_HOST_USER", &cfg.Email.SMTPUsername)
	envString("EMAIL_HOST_PASSWORD", &cfg.Email.SMTPPassword)
	collect(envBool("EMAIL_USE_TLS", &cfg.Email.UseTLS))
	envString("DEFAULT_FROM_EMAIL", &cfg.Email.FromEmail)

	envString("NOTIFICATIONS_BROKER", &cfg.Notifications.Broker)
	collect(envInt("NOTIFICATIONS_WORKERS", &cfg.Notifications.Workers))
	collect(envInt("EMAIL_TASK_MAX_RETRIES", &cfg.Notifications.MaxRetries))
	collect(envDuration("EMAIL_TASK_RETRY_DELAY", &cfg.Notifications.RetryDelay))

	envString("REDIS_ADDR", &cfg.Redis.Addr)
	envString("REDIS_PASSWORD", &cfg.Redis.Password)
	collect(envInt("REDIS_DB", &cfg.Redis.DB))

	collect(envBool("THROTTLE_ENABLED", &cfg.Throttle.Enabled))
	envString("THROTTLE_STORE", &cfg.Throttle.Store)

	envString("STORAGE_TYPE", &cfg.Storage.Type)
	envString("STORAGE_BUCKET", &cfg.Storage.Bucket)
	envString("STORAGE_REGION", &cfg.Storage.Region)
	envString("STORAGE_ACCESS_KEY", &cfg.Storage.AccessKey)
	envString("STORAGE_SECRET_KEY", &cfg.Storage.SecretKey)
	envString("STORAGE_ENDPOINT", &cfg.Storage.Endpoint)

	envString("ADMIN_EMAIL", &cfg.Admin.Email)
	envString("ADMIN_PASSWORD", &cfg.Admin.Password)

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = strings.Split(origins, ",")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	*dst = b
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s must be a duration, got %q", key, v)
	}
	*dst = d
	return nil
}
