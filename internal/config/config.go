package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      *AppConfig      `yaml:"app"`
	Database *DatabaseConfig `yaml:"database"`
	Redis    *RedisConfig    `yaml:"redis"`
	SMTP     *SMTPConfig     `yaml:"smtp"`
	SMS      *SMSConfig      `yaml:"sms"`
	Storage  *StorageConfig  `yaml:"storage"`
	Security *SecurityConfig `yaml:"security"`
}

type AppConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Environment     string        `yaml:"environment"`
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	BaseURL         string        `yaml:"base_url"`
	Debug           bool          `yaml:"debug"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	SeedOnStart     bool          `yaml:"seed_on_start"`
	SeedUserPass    string        `yaml:"seed_user_password"`
	SeedAdminPass   string        `yaml:"seed_admin_password"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"`
	MetricsEnabled  bool          `yaml:"metrics_enabled"`
	ActivityLog     bool          `yaml:"activity_log"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type SecurityConfig struct {
	JWTAdminSecret      string        `yaml:"jwt_admin_secret"`
	JWTExpiry           time.Duration `yaml:"jwt_expiry"`
	BcryptCost          int           `yaml:"bcrypt_cost"`
	MaxLoginAttempts    int           `yaml:"max_login_attempts"`
	LoginLockoutTime    time.Duration `yaml:"login_lockout_time"`
	ResetCodeExpiry     time.Duration `yaml:"reset_code_expiry"`
	ResetCodeLength     int           `yaml:"reset_code_length"`
	RBACStrict          bool          `yaml:"rbac_strict"`
	PermissionCacheTTL  time.Duration `yaml:"permission_cache_ttl"`
	TokenCacheTTL       time.Duration `yaml:"token_cache_ttl"`
	CascadeTransactions bool          `yaml:"cascade_transactions"`
	CORSAllowedOrigins  []string      `yaml:"cors_allowed_origins"`
	TrustedProxies      []string      `yaml:"trusted_proxies"`
}

// Load reads the environment, after merging an optional .env file (or the
// file named by ENV_FILE), into a Config.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	config := &Config{
		App:      loadAppConfig(),
		Database: loadDatabaseConfig(),
		Redis:    loadRedisConfig(),
		SMTP:     loadSMTPConfig(),
		SMS:      loadSMSConfig(),
		Storage:  loadStorageConfig(),
		Security: loadSecurityConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Security.JWTAdminSecret == "" {
		return errors.New("JWT_ADMIN_SECRET must be set")
	}
	if c.IsProduction() && c.Security.JWTAdminSecret == defaultJWTSecret {
		return errors.New("JWT_ADMIN_SECRET must be changed in production")
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST out of range: %d", c.Security.BcryptCost)
	}

	switch c.Storage.Provider {
	case "local", "s3", "gcs":
	default:
		return fmt.Errorf("unknown STORAGE_PROVIDER %q", c.Storage.Provider)
	}

	switch c.SMS.Provider {
	case "", "none", "twilio", "sns":
	default:
		return fmt.Errorf("unknown SMS_PROVIDER %q", c.SMS.Provider)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

const defaultJWTSecret = "myjwtadminsecret"

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:            getEnv("APP_NAME", "asset-admin"),
		Version:         getEnv("APP_VERSION", "1.0.0"),
		Environment:     getEnv("APP_ENV", "development"),
		Port:            getEnvAsInt("APP_PORT", 5000),
		Host:            getEnv("APP_HOST", "0.0.0.0"),
		BaseURL:         getEnv("APP_BASE_URL", "http://localhost:5000"),
		Debug:           getEnvAsBool("APP_DEBUG", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		SeedOnStart:     getEnvAsBool("SEED_ON_START", true),
		SeedUserPass:    getEnv("SEED_USER_PASSWORD", "QpPCXqEiR8eGjOj"),
		SeedAdminPass:   getEnv("SEED_ADMIN_PASSWORD", "H97DmukSybXgJTz"),
		MigrateOnStart:  getEnvAsBool("MIGRATE_ON_START", true),
		MetricsEnabled:  getEnvAsBool("METRICS_ENABLED", true),
		ActivityLog:     getEnvAsBool("ACTIVITY_LOG_ENABLED", true),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func loadSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		JWTAdminSecret:      getEnv("JWT_ADMIN_SECRET", defaultJWTSecret),
		JWTExpiry:           getEnvAsDuration("JWT_EXPIRY", 10000*time.Second),
		BcryptCost:          getEnvAsInt("BCRYPT_COST", 8),
		MaxLoginAttempts:    getEnvAsInt("MAX_LOGIN_RETRY_LIMIT", 3),
		LoginLockoutTime:    getEnvAsDuration("LOGIN_REACTIVE_TIME", 20*time.Minute),
		ResetCodeExpiry:     getEnvAsDuration("RESET_CODE_EXPIRY", 20*time.Minute),
		ResetCodeLength:     getEnvAsInt("RESET_CODE_LENGTH", 6),
		RBACStrict:          getEnvAsBool("RBAC_STRICT", false),
		PermissionCacheTTL:  getEnvAsDuration("PERMISSION_CACHE_TTL", 5*time.Minute),
		TokenCacheTTL:       getEnvAsDuration("TOKEN_CACHE_TTL", 2*time.Minute),
		CascadeTransactions: getEnvAsBool("CASCADE_TRANSACTIONS", false),
		CORSAllowedOrigins:  getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:      getEnvAsSlice("TRUSTED_PROXIES", nil),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
