package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Consul    ConsulConfig    `json:"consul"`
	Jaeger    JaegerConfig    `json:"jaeger"`
	Log       LogConfig       `json:"log"`
	Auth      AuthConfig      `json:"auth"`
	Parking   ParkingConfig   `json:"parking"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

type ServerConfig struct {
	Name string `json:"name"` // service name, also used for Consul registration
	Host string `json:"host"`
	Port int    `json:"port"` // HTTP port
}

type DatabaseConfig struct {
	Driver   string `json:"driver"` // mysql or sqlite
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	Path     string `json:"path"` // sqlite file path (":memory:" allowed)
	MaxIdle  int    `json:"max_idle"`
	MaxOpen  int    `json:"max_open"`
}

type ConsulConfig struct {
	Enabled   bool   `json:"enabled"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	ConfigKey string `json:"config_key"` // KV key overriding the file config when set
}

type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // sampling rate 0.0-1.0
}

type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`
}

// AuthConfig drives JWT issuing and the bearer-token middleware.
type AuthConfig struct {
	Enabled     bool     `json:"enabled"`
	JWTSecret   string   `json:"jwt_secret"`
	Issuer      string   `json:"issuer"`
	Audience    string   `json:"audience"`
	TokenTTLMin int      `json:"token_ttl_min"` // access token lifetime in minutes
	PublicPaths []string `json:"public_paths"`  // paths served without a token
}

// ParkingConfig holds the allocation-domain knobs.
type ParkingConfig struct {
	RatePerHour float64 `json:"rate_per_hour"` // hourly rate, one hour minimum billed
	Selection   string  `json:"selection"`     // slot picker: random, nearest
	SeedSlots   bool    `json:"seed_slots"`    // create the fixed slot set on boot
}

type RateLimitConfig struct {
	Enabled    bool  `json:"enabled"`
	Capacity   int64 `json:"capacity"`
	RefillRate int64 `json:"refill_rate"` // tokens per second
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig reads a JSON config file; a missing file falls back to defaults.
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		globalConfig = &Config{}
		if _, err = os.Stat(configPath); os.IsNotExist(err) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
			globalConfig = defaultConfig()
			err = nil
			return
		}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file: %w", readErr)
			return
		}

		if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
			err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
			return
		}
		applyFallbacks(globalConfig)
	})

	if err != nil {
		return nil, err
	}

	return globalConfig, nil
}

// GetConfig returns the loaded config, or defaults before LoadConfig ran.
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

func applyFallbacks(c *Config) {
	if c.Parking.RatePerHour <= 0 {
		c.Parking.RatePerHour = 2.0
	}
	if c.Parking.Selection == "" {
		c.Parking.Selection = "random"
	}
	if c.Auth.TokenTTLMin <= 0 {
		c.Auth.TokenTTLMin = 24 * 60
	}
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "parking-service",
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "parksmart",
			Path:     "data/parksmart.db",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Consul: ConsulConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
		Auth: AuthConfig{
			Enabled:     true,
			JWTSecret:   "dev-secret-change-me",
			Issuer:      "parksmart",
			Audience:    "parksmart-web",
			TokenTTLMin: 24 * 60,
			PublicPaths: []string{"/healthz", "/api/register", "/api/login"},
		},
		Parking: ParkingConfig{
			RatePerHour: 2.0,
			Selection:   "random",
			SeedSlots:   true,
		},
		RateLimit: RateLimitConfig{
			Enabled:    false,
			Capacity:   100,
			RefillRate: 50,
		},
	}
}
