package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath используется, если переменная окружения CONFIG_PATH не задана
const DefaultPath = "config/config.yaml"

// Config определяет структуру конфигурации всего приложения целиком
type Config struct {
	HTTPServer `yaml:"http_server"`
	Postgres   `yaml:"postgres"`
	Kafka      `yaml:"kafka"`
	Logger     `yaml:"logger"`
	Upstream   `yaml:"upstream"`
	Compare    `yaml:"compare"`
}

// HTTPServer содержит конфигурацию для HTTP-сервера
type HTTPServer struct {
	Port    string        `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

// Postgres содержит конфигурацию для подключения к базе данных
type Postgres struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	DBName   string `yaml:"db_name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// Kafka содержит конфигурацию консьюмера прогрева кэша меню
// если список брокеров пуст, консьюмер не запускается
type Kafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// Logger содержит конфигурацию для логгера
type Logger struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Upstream описывает внешние источники: API сети, сайт сети и Overpass
type Upstream struct {
	ChainName          string        `yaml:"chain_name"`
	UserAgent          string        `yaml:"user_agent"`
	MenuBaseURL        string        `yaml:"menu_base_url"`
	OverpassURL        string        `yaml:"overpass_url"`
	Timeout            time.Duration `yaml:"timeout"`
	ResolveConcurrency int           `yaml:"resolve_concurrency"`
}

// Compare содержит значения по умолчанию для запроса сравнения цен
type Compare struct {
	DefaultRadiusMiles float64       `yaml:"default_radius_mi"`
	DefaultStores      int           `yaml:"default_stores"`
	DefaultRows        int           `yaml:"default_rows"`
	MenuTTL            time.Duration `yaml:"menu_ttl"`
}

// Path возвращает путь к файлу конфигурации с учётом CONFIG_PATH
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// Load читает конфигурацию из файла и дополняет её значениями по умолчанию
func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	if configPath == "" {
		return nil, fmt.Errorf("%s: config path is empty", op)
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read config file: %w", op, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to unmarshal config: %w", op, err)
	}

	// зеркало Overpass можно переопределить без правки файла
	if mirror := os.Getenv("OVERPASS_MIRROR"); mirror != "" {
		cfg.Upstream.OverpassURL = mirror
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// MustLoad загружает конфигурацию из файла по указанному пути
// в случае ошибки программа завершается с фатальной ошибкой
func MustLoad(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}

func (c *Config) applyDefaults() {
	if c.HTTPServer.Port == "" {
		c.HTTPServer.Port = ":8080"
	}
	if c.HTTPServer.Timeout == 0 {
		c.HTTPServer.Timeout = 30 * time.Second
	}
	if c.Upstream.ChainName == "" {
		c.Upstream.ChainName = "Taco Bell"
	}
	if c.Upstream.UserAgent == "" {
		c.Upstream.UserAgent = "Mozilla/5.0 Gecko/2025 TacoBellPriceCompare/1.1"
	}
	if c.Upstream.MenuBaseURL == "" {
		c.Upstream.MenuBaseURL = "https://www.tacobell.com"
	}
	if c.Upstream.OverpassURL == "" {
		c.Upstream.OverpassURL = "https://overpass.kumi.systems/api/interpreter"
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = 20 * time.Second
	}
	if c.Upstream.ResolveConcurrency <= 0 {
		c.Upstream.ResolveConcurrency = 4
	}
	if c.Compare.DefaultRadiusMiles <= 0 {
		c.Compare.DefaultRadiusMiles = 30
	}
	if c.Compare.DefaultStores <= 0 {
		c.Compare.DefaultStores = 3
	}
	if c.Compare.DefaultRows <= 0 {
		c.Compare.DefaultRows = 15
	}
	if c.Compare.MenuTTL == 0 {
		c.Compare.MenuTTL = 15 * time.Minute
	}
}
