package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// StorageMemory as storage_path selects the in-process store.
const StorageMemory = "memory"

type Config struct {
	Env         string    `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath string    `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	// SeedPath, when set, is loaded into the store at startup.
	SeedPath    string    `yaml:"seed_path" env:"SEED_PATH"`
	Store       Store     `yaml:"store"`
	Redis       Redis     `yaml:"redis"`
	Kafka       Kafka     `yaml:"kafka"`
	Notify      Notify    `yaml:"notify"`
	Booking     Booking   `yaml:"booking"`
	RateLimit   RateLimit `yaml:"rate_limit"`
	HTTPServer  `yaml:"http_server"`
}

// Boolean switches must default to false. cleanenv applies env-default to
// zero fields, so a file value of false would be overridden.
type Store struct {
	Timeout     time.Duration `yaml:"timeout" env:"STORE_TIMEOUT" env-default:"3s"`
	SkipMigrate bool          `yaml:"skip_migrate" env:"STORE_SKIP_MIGRATE"`
}

type Redis struct {
	// Addr empty disables the slot lock.
	Addr    string        `yaml:"addr" env:"REDIS_ADDR"`
	LockTTL time.Duration `yaml:"lock_ttl" env:"REDIS_LOCK_TTL" env-default:"10s"`
}

type Kafka struct {
	// Brokers is a comma separated list; empty disables publishing.
	Brokers string `yaml:"brokers" env:"KAFKA_BROKERS"`
	Topic   string `yaml:"topic" env:"KAFKA_TOPIC" env-default:"appointment-events"`
}

type Notify struct {
	QueueSize int `yaml:"queue_size" env:"NOTIFY_QUEUE_SIZE" env-default:"256"`
}

type Booking struct {
	RejectPastDates bool `yaml:"reject_past_dates" env:"BOOKING_REJECT_PAST_DATES"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"0"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"20"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

// MustLoad reads the file named by -config, then CONFIG_PATH, then
// config/config.yaml. Environment variables override file values.
func MustLoad() *Config {
	cfg, err := Load(fetchConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	if res == "" {
		res = filepath.Join("config", "config.yaml")
	}

	return res
}
