package config

import (
	"github.com/ilyakaznacheev/cleanenv"
	"time"
)

const (
	StorageBackendMemory = "memory"
	StorageBackendRedis  = "redis"
)

type Backend struct {
	BaseURL        string        `yaml:"base_url" env:"CHAT_BACKEND_URL" env-default:"http://localhost:5005"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"CHAT_BACKEND_TIMEOUT" env-default:"2m"`
}

type Chat struct {
	HistoryWindow int    `yaml:"history_window" env:"CHAT_HISTORY_WINDOW" env-default:"10"`
	Language      string `yaml:"language" env:"CHAT_LANGUAGE" env-default:"zh"`
}

type Storage struct {
	Backend  string `yaml:"backend" env:"CHAT_STORAGE_BACKEND" env-default:"memory"`
	ClientID string `yaml:"client_id" env:"CHAT_CLIENT_ID"`
}

type Redis struct {
	Endpoint string `yaml:"endpoint" env:"REDIS_ENDPOINT" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Config struct {
	Backend Backend `yaml:"backend"`
	Chat    Chat    `yaml:"chat"`
	Storage Storage `yaml:"storage"`
	Redis   Redis   `yaml:"redis"`
}

// LoadConfig reads cfgPath when it is set and then overlays the environment.
func LoadConfig(cfgPath string) (*Config, error) {
	var cfg Config
	if cfgPath != "" {
		if err := cleanenv.ReadConfig(cfgPath, &cfg); err != nil {
			return nil, err
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
