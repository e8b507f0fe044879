package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env-default:"local"`
	Telegram TelegramConfig `yaml:"telegram"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Journey  JourneyConfig  `yaml:"journey"`
	Geocode  GeocodeConfig  `yaml:"geocode"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Flood    FloodConfig    `yaml:"flood"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
}

type PostgresConfig struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     string `yaml:"port" env-default:"5432"`
	DBName   string `yaml:"database_name" env-default:"ridenow_bot"`
	Username string `yaml:"username" env-default:"postgres"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"postgres"`
	SSLMode  string `yaml:"ssl_mode" env-default:"disable"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env-default:"0"`
}

type JourneyConfig struct {
	BaseURL string        `yaml:"base_url"`
	Secret  string        `yaml:"secret" env:"JOURNEY_SECRET"`
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
}

type GeocodeConfig struct {
	UserAgent     string `yaml:"user_agent" env-default:"RideNowBot/1.0"`
	LocationIQKey string `yaml:"locationiq_key" env:"LOCATIONIQ_KEY"`
	GoogleKey     string `yaml:"google_key" env:"GOOGLE_MAPS_KEY"`
}

type DeliveryConfig struct {
	QueueSize      int           `yaml:"queue_size" env-default:"3000"`
	WorkerCount    int           `yaml:"worker_count" env-default:"2"`
	EnqueueTimeout time.Duration `yaml:"enqueue_timeout" env-default:"10ms"`
}

type FloodConfig struct {
	Interval time.Duration `yaml:"interval" env-default:"870ms"`
}

// MustLoad загружает конфигурацию из файла
func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

// MustLoadPath загружает конфигурацию из указанного файла
func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

// fetchConfigPath получает путь к конфигурационному файлу из флага или переменной окружения
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
