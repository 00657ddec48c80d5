package config

import (
	"fmt"
	"time"

	"github.com/drivehub/service-rental/internal/common/config"
)

// Lock backends for the per-car lock.
const (
	LockBackendLocal = "local"
	LockBackendRedis = "redis"
)

// CronConfig holds the job schedules (cron expressions with seconds).
type CronConfig struct {
	SweepSchedule string
	StatsSchedule string
	JobTimeout    time.Duration
}

// ServiceConfig holds all configuration for the rental service.
type ServiceConfig struct {
	Port         string
	AppEnv       string
	DBConfig     config.DatabaseConfig
	JWTConfig    config.JWTConfig
	KafkaConfig  config.KafkaConfig
	RedisConfig  config.RedisConfig
	CronConfig   CronConfig
	LockBackend  string
	LockTTL      time.Duration
	TxMaxRetries int
}

// Load reads configuration from RENTAL_* environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("RENTAL")
	if err != nil {
		return nil, err
	}

	v.SetDefault("DB_NAME", "rental")
	v.SetDefault("LOCK_BACKEND", LockBackendLocal)
	v.SetDefault("TX_MAX_RETRIES", 3)
	v.SetDefault("CRON_SWEEP_SCHEDULE", "0 */15 * * * *")
	v.SetDefault("CRON_STATS_SCHEDULE", "0 0 * * * *")

	cfg := &ServiceConfig{
		Port:        config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:      config.GetAppEnv(v),
		DBConfig:    config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:   config.LoadJWTConfig(v),
		KafkaConfig: config.LoadKafkaConfig(v),
		RedisConfig: config.LoadRedisConfig(v),
		CronConfig: CronConfig{
			SweepSchedule: v.GetString("CRON_SWEEP_SCHEDULE"),
			StatsSchedule: v.GetString("CRON_STATS_SCHEDULE"),
			JobTimeout:    config.GetDuration(v, "CRON_JOB_TIMEOUT", 5*time.Minute),
		},
		LockBackend:  v.GetString("LOCK_BACKEND"),
		LockTTL:      config.GetDuration(v, "LOCK_TTL", 10*time.Second),
		TxMaxRetries: v.GetInt("TX_MAX_RETRIES"),
	}

	switch cfg.LockBackend {
	case LockBackendLocal, LockBackendRedis:
	default:
		return nil, fmt.Errorf("unsupported lock backend %q", cfg.LockBackend)
	}
	return cfg, nil
}
