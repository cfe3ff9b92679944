package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App     AppConfig
	Service ServiceConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Rewards RewardsConfig
	Payouts PayoutsConfig
	Cron    CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TIPPLY_APP_ENV" required:"true"`
	Port         string `envconfig:"TIPPLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TIPPLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TIPPLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TIPPLY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TIPPLY_DB_DSN"`
	Driver string `envconfig:"TIPPLY_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"TIPPLY_DB_HOST"`
	Port     int    `envconfig:"TIPPLY_DB_PORT" default:"5432"`
	User     string `envconfig:"TIPPLY_DB_USER"`
	Password string `envconfig:"TIPPLY_DB_PASSWORD"`
	Name     string `envconfig:"TIPPLY_DB_NAME"`
	SSLMode  string `envconfig:"TIPPLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TIPPLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TIPPLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TIPPLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TIPPLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database DSN or host/user/name parts are required")
	}
	d.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"TIPPLY_REDIS_URL"`
	Address      string        `envconfig:"TIPPLY_REDIS_ADDR"`
	Password     string        `envconfig:"TIPPLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"TIPPLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TIPPLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TIPPLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TIPPLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TIPPLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TIPPLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TIPPLY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TIPPLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TIPPLY_JWT_EXPIRATION_MINUTES" default:"60"`
}

// RewardsConfig carries the referral reward knobs. Threshold and reward are
// raw currency strings resolved through ParseCurrencyAmount so deployments
// can supply either major units ("500.00") or minor units ("50000").
type RewardsConfig struct {
	MilestoneThreshold string  `envconfig:"TIPPLY_REFERRAL_MILESTONE_THRESHOLD"`
	RewardAmount       string  `envconfig:"TIPPLY_REFERRAL_REWARD_AMOUNT"`
	ReversalWindowDays int     `envconfig:"TIPPLY_REFERRAL_REVERSAL_WINDOW_DAYS" default:"30"`
	RetentionRatio     float64 `envconfig:"TIPPLY_REFERRAL_RETENTION_RATIO" default:"0.8"`
	CheckAbuseFlags    bool    `envconfig:"TIPPLY_REFERRAL_CHECK_ABUSE_FLAGS" default:"true"`
	CheckActivity      bool    `envconfig:"TIPPLY_REFERRAL_CHECK_ACTIVITY" default:"true"`
}

const (
	// DefaultMilestoneThresholdCents applies when the threshold env value is
	// unset or unparseable.
	DefaultMilestoneThresholdCents int64 = 50000
	// DefaultRewardCents applies when the reward env value is unset or
	// unparseable.
	DefaultRewardCents int64 = 2500
)

// ThresholdCents resolves the milestone threshold in minor units.
func (r RewardsConfig) ThresholdCents() int64 {
	return ResolveCurrencyAmount(r.MilestoneThreshold, DefaultMilestoneThresholdCents)
}

// RewardCents resolves the per-milestone reward in minor units.
func (r RewardsConfig) RewardCents() int64 {
	return ResolveCurrencyAmount(r.RewardAmount, DefaultRewardCents)
}

// ReversalWindow returns the configured reversal window as a duration.
func (r RewardsConfig) ReversalWindow() time.Duration {
	days := r.ReversalWindowDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

// Retention returns the configured retention ratio, falling back to 0.8.
func (r RewardsConfig) Retention() float64 {
	if r.RetentionRatio <= 0 || r.RetentionRatio > 1 {
		return 0.8
	}
	return r.RetentionRatio
}

type PayoutsConfig struct {
	MinimumEligibilityCents int64   `envconfig:"TIPPLY_PAYOUT_MINIMUM_ELIGIBILITY_CENTS" default:"1000"`
	TransferFeeCents        int64   `envconfig:"TIPPLY_PAYOUT_TRANSFER_FEE_CENTS" default:"900"`
	ProcessorFeePct         float64 `envconfig:"TIPPLY_FEE_PROCESSOR_PCT" default:"2.5"`
	PlatformFeePct          float64 `envconfig:"TIPPLY_FEE_PLATFORM_PCT" default:"10"`
	VATOnPlatformPct        float64 `envconfig:"TIPPLY_FEE_VAT_ON_PLATFORM_PCT" default:"15"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"TIPPLY_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"TIPPLY_CRON_LOCK_TTL" default:"25h"`
}
