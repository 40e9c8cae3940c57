package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

var ErrUnknownStorage = errors.New("unknown storage")

type Config struct {
	LogLevel       string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort       string   `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort     string   `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Storage        string   `yaml:"storage" env:"STORAGE" env-default:"memory"`
	Redis          Redis    `yaml:"redis"`
	Postgres       Postgres `yaml:"postgres"`
	BoardImageSize int      `yaml:"board-image-size" env:"BOARD_IMAGE_SIZE" env-default:"300"`
	MessagesDir    string   `yaml:"messages-dir" env:"MESSAGES_DIR" env-default:""`
}

type Redis struct {
	Host string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	TTL  time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"24h"`
}

// Postgres keeps finished game results. An empty DSN keeps them in memory.
type Postgres struct {
	DSN string `yaml:"dsn" env:"POSTGRES_DSN" env-default:""`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if config.Storage != StorageRedis && config.Storage != StorageMemory {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorage, config.Storage)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
