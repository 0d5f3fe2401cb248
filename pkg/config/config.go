package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DeploymentTrusted     = "trusted"
	DeploymentConstrained = "constrained"
)

type Config struct {
	APIBaseURL     string
	DeploymentMode string
	ServerPort     string
	Environment    string
	LogLevel       string
	LogEncoding    string
	DataPath       string

	Timeouts Timeouts
	Images   ImageConfig
	Live     LiveConfig
}

// Timeouts are the per-operation time budgets used against the backend.
type Timeouts struct {
	Default    time.Duration
	Register   time.Duration
	Login      time.Duration
	Create     time.Duration
	Upload     time.Duration
	Messaging  time.Duration
	Favorites  time.Duration
	Enrichment time.Duration
	Warmup     time.Duration
}

type ImageConfig struct {
	Budget       int64
	Threshold    int64
	HardCap      int64
	MaxDimension int
	MaxPixels    int64
	PollAttempts int
	PollBackoff  time.Duration
}

type LiveConfig struct {
	PollInterval      time.Duration
	HeartBeat         time.Duration
	ReconnectMin      time.Duration
	ReconnectMax      time.Duration
	WarmupMinInterval time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	baseURL := strings.TrimRight(getEnv("WEBSHOP_API_BASE_URL", "http://localhost:8080"), "/")

	config := &Config{
		APIBaseURL:     baseURL,
		DeploymentMode: getEnv("DEPLOYMENT_MODE", DefaultDeploymentMode(baseURL)),
		ServerPort:     getEnv("SERVER_PORT", "8090"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogEncoding:    getEnv("LOG_ENCODING", "console"),
		DataPath:       getEnv("DATA_PATH", "webshop.db"),
		Timeouts: Timeouts{
			Default:    getEnvAsDuration("DEFAULT_TIMEOUT", 30*time.Second),
			Register:   getEnvAsDuration("REGISTER_TIMEOUT", 90*time.Second),
			Login:      getEnvAsDuration("LOGIN_TIMEOUT", 30*time.Second),
			Create:     getEnvAsDuration("CREATE_TIMEOUT", 90*time.Second),
			Upload:     getEnvAsDuration("UPLOAD_TIMEOUT", 90*time.Second),
			Messaging:  getEnvAsDuration("MESSAGING_TIMEOUT", 90*time.Second),
			Favorites:  getEnvAsDuration("FAVORITES_TIMEOUT", 8*time.Second),
			Enrichment: getEnvAsDuration("ENRICHMENT_TIMEOUT", 15*time.Second),
			Warmup:     getEnvAsDuration("WARMUP_TIMEOUT", 10*time.Second),
		},
		Images: ImageConfig{
			Budget:       getEnvAsInt64("IMAGE_BUDGET_BYTES", 300*1024),
			Threshold:    getEnvAsInt64("IMAGE_COMPRESS_THRESHOLD_BYTES", 300*1024),
			HardCap:      getEnvAsInt64("IMAGE_HARD_CAP_BYTES", 10*1024*1024),
			MaxDimension: int(getEnvAsInt64("IMAGE_MAX_DIMENSION", 1280)),
			MaxPixels:    getEnvAsInt64("IMAGE_MAX_PIXELS", 50_000_000),
			PollAttempts: int(getEnvAsInt64("IMAGE_POLL_ATTEMPTS", 3)),
			PollBackoff:  getEnvAsDuration("IMAGE_POLL_BACKOFF", 600*time.Millisecond),
		},
		Live: LiveConfig{
			PollInterval:      getEnvAsDuration("MESSAGES_POLL_INTERVAL", 10*time.Second),
			HeartBeat:         getEnvAsDuration("STOMP_HEARTBEAT", 4*time.Second),
			ReconnectMin:      getEnvAsDuration("STOMP_RECONNECT_MIN", 5*time.Second),
			ReconnectMax:      getEnvAsDuration("STOMP_RECONNECT_MAX", 60*time.Second),
			WarmupMinInterval: getEnvAsDuration("WARMUP_MIN_INTERVAL", 30*time.Second),
		},
	}

	return config, nil
}

// DefaultDeploymentMode treats loopback backends as trusted and everything
// else as constrained.
func DefaultDeploymentMode(baseURL string) string {
	if strings.Contains(baseURL, "localhost") || strings.Contains(baseURL, "127.0.0.1") {
		return DeploymentTrusted
	}
	return DeploymentConstrained
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
