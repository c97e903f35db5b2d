package structures

import (
	"net/http"
	"time"
)

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type MongoConfig struct {
	URI            string        `yaml:"uri" validate:"required"`
	Database       string        `yaml:"database" validate:"required"`
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

// EntityCacheConfig configures the TTL cache fronting document reads.
type EntityCacheConfig struct {
	TTL           time.Duration `yaml:"ttl" validate:"required|min:1"`
	SweepInterval time.Duration `yaml:"sweepInterval" validate:"required|min:1"`
	MirrorPath    string        `yaml:"mirrorPath"`
}

// ResponseCacheConfig configures the freecache-backed HTTP response cache.
type ResponseCacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	TTL     int  `yaml:"ttl"`
}

type AnalyticsConfig struct {
	RollingWindowDays int `yaml:"rollingWindowDays" validate:"required|min:1"`
}

type ModerationConfig struct {
	FlagThreshold   int `yaml:"flagThreshold" validate:"required|min:1"`
	EventBufferSize int `yaml:"eventBufferSize"`
	MaxEventRetries int `yaml:"maxEventRetries"`
}

type AuthConfig struct {
	IdentityURL     string        `yaml:"identityUrl" validate:"required"`
	JWTSecret       string        `yaml:"jwtSecret" validate:"required"`
	MaxAttempts     int           `yaml:"maxAttempts" validate:"required|min:1"`
	LockoutDuration time.Duration `yaml:"lockoutDuration" validate:"required|min:1"`
	SessionTTL      time.Duration `yaml:"sessionTTL" validate:"required|min:1"`
	SweepInterval   time.Duration `yaml:"sweepInterval" validate:"required|min:1"`
	RetryAttempts   int           `yaml:"retryAttempts"`
	RetryBaseDelay  time.Duration `yaml:"retryBaseDelay"`
}

type NotificationsConfig struct {
	RetentionDays   int           `yaml:"retentionDays" validate:"required|min:1"`
	CleanupInterval time.Duration `yaml:"cleanupInterval" validate:"required|min:1"`
}

type ChatConfig struct {
	PageSize int `yaml:"pageSize"`
}

type JobsConfig struct {
	MirrorFlushInterval time.Duration `yaml:"mirrorFlushInterval" validate:"required|min:1"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName       string
	Debug         bool
	Path          string
	WebServer     Server              `yaml:"webServer"`
	Mongo         MongoConfig         `yaml:"mongo"`
	Logger        LoggerConfig        `yaml:"logger"`
	EntityCache   EntityCacheConfig   `yaml:"entityCache"`
	ResponseCache ResponseCacheConfig `yaml:"responseCache"`
	Analytics     AnalyticsConfig     `yaml:"analytics"`
	Moderation    ModerationConfig    `yaml:"moderation"`
	Auth          AuthConfig          `yaml:"auth"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Chat          ChatConfig          `yaml:"chat"`
	Jobs          JobsConfig          `yaml:"jobs"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}
