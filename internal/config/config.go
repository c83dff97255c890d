package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "time/tzdata"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Config конфигурация сервиса
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	UserService UserServiceConfig `toml:"user_service"`
	Redis       RedisConfig       `toml:"redis"`
	Scheduling  SchedulingConfig  `toml:"scheduling"`
	RateLimit   RateLimitConfig   `toml:"rate_limit"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"` // пусто = только stdout
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type UserServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

type RedisConfig struct {
	Enabled      bool   `toml:"enabled"`
	Addr         string `toml:"addr"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	RoleCacheTTL int    `toml:"role_cache_ttl"` // секунды
	KeyPrefix    string `toml:"key_prefix"`
}

type SchedulingConfig struct {
	LeadTimeHours        int    `toml:"lead_time_hours"`
	NoShowGraceMinutes   int    `toml:"no_show_grace_minutes"`
	SweepIntervalSeconds int    `toml:"sweep_interval_seconds"` // 0 = фоновая отметка неявок выключена
	Timezone             string `toml:"timezone"`
}

// LeadTime минимальное время между созданием записи и началом приема
func (c SchedulingConfig) LeadTime() time.Duration {
	return time.Duration(c.LeadTimeHours) * time.Hour
}

// NoShowGrace задержка после окончания приема перед отметкой неявки
func (c SchedulingConfig) NoShowGrace() time.Duration {
	return time.Duration(c.NoShowGraceMinutes) * time.Minute
}

// SweepInterval период фоновой отметки неявок
func (c SchedulingConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// Location часовой пояс клиники
func (c SchedulingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	IdleTTL           int     `toml:"idle_ttl"` // секунды
}

// Load читает конфигурацию из TOML файла, применяет значения по умолчанию
// и переопределения из переменных окружения
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default конфигурация по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "appointments",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "appointment_service",
		},
		UserService: UserServiceConfig{
			URL:     "http://localhost:8081",
			Timeout: 5,
		},
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			RoleCacheTTL: 300,
			KeyPrefix:    "appointments:user_role",
		},
		Scheduling: SchedulingConfig{
			LeadTimeHours:        int(domain.DefaultLeadTime / time.Hour),
			NoShowGraceMinutes:   int(domain.DefaultNoShowGrace / time.Minute),
			SweepIntervalSeconds: 300,
			Timezone:             "UTC",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 20,
			Burst:             40,
			IdleTTL:           600,
		},
	}
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []error

	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("server.http_port must be a valid TCP port (got %d)", c.Server.HTTPPort))
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		errs = append(errs, errors.New("database.host and database.dbname are required"))
	}
	if c.UserService.URL == "" {
		errs = append(errs, errors.New("user_service.url is required"))
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when redis is enabled"))
	}
	if c.Scheduling.LeadTimeHours < 0 {
		errs = append(errs, errors.New("scheduling.lead_time_hours must not be negative"))
	}
	if c.Scheduling.NoShowGraceMinutes < 0 || c.Scheduling.SweepIntervalSeconds < 0 {
		errs = append(errs, errors.New("scheduling.no_show_grace_minutes and sweep_interval_seconds must not be negative"))
	}
	if _, err := c.Scheduling.Location(); err != nil {
		errs = append(errs, fmt.Errorf("scheduling.timezone: %w", err))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate_limit.requests_per_second and burst must be positive"))
	}

	return errors.Join(errs...)
}

// applyEnv переопределяет секреты и адреса из переменных окружения
func (c *Config) applyEnv() error {
	c.Database.Host = envString("DB_HOST", c.Database.Host)
	c.Database.User = envString("DB_USER", c.Database.User)
	c.Database.Password = envString("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = envString("DB_NAME", c.Database.DBName)
	c.UserService.URL = envString("USER_SERVICE_URL", c.UserService.URL)
	c.Redis.Addr = envString("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = envString("REDIS_PASSWORD", c.Redis.Password)
	c.Logs.Level = envString("LOG_LEVEL", c.Logs.Level)
	c.Scheduling.Timezone = envString("CLINIC_TIMEZONE", c.Scheduling.Timezone)

	var err error
	if c.Server.HTTPPort, err = envInt("HTTP_PORT", c.Server.HTTPPort); err != nil {
		return err
	}
	if c.Database.Port, err = envInt("DB_PORT", c.Database.Port); err != nil {
		return err
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got %q)", key, v)
	}
	return n, nil
}
