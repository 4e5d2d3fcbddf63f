package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // postgres, mysql, sqlite
		DSN    string `yaml:"url"`
	} `yaml:"database"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		TokenTTL  int    `yaml:"token_ttl"` // минуты, только для dev-токенов из CLI
	} `yaml:"auth"`

	Storage struct {
		Type            string `yaml:"type"`             // local, s3, cloudflare_r2, gcs
		BasePath        string `yaml:"base_path"`        // For local storage
		Bucket          string `yaml:"bucket"`           // For S3/R2/GCS
		Region          string `yaml:"region"`           // For S3
		AccessKey       string `yaml:"access_key"`       // For S3/R2
		SecretKey       string `yaml:"secret_key"`       // For S3/R2
		Endpoint        string `yaml:"endpoint"`         // For R2 or custom S3
		UseSSL          bool   `yaml:"use_ssl"`          // For S3/R2
		CredentialsFile string `yaml:"credentials_file"` // For GCS
	} `yaml:"storage"`

	Upload struct {
		MaxPhotoSize int64    `yaml:"max_photo_size"` // байты на одно фото
		AllowedTypes []string `yaml:"allowed_types"`
		ImageQuality int      `yaml:"image_quality"` // JPEG quality (1-100) для PDF
	} `yaml:"upload"`

	Geo struct {
		DefaultLatitude  float64 `yaml:"default_latitude"`
		DefaultLongitude float64 `yaml:"default_longitude"`
	} `yaml:"geo"`

	PDF struct {
		MaxSummarySearches int `yaml:"max_summary_searches"`
		PhotoConcurrency   int `yaml:"photo_concurrency"`
		MaxImageEdge       int `yaml:"max_image_edge"` // px
	} `yaml:"pdf"`

	Sharing struct {
		Concurrency int `yaml:"concurrency"`
	} `yaml:"sharing"`

	Redis struct {
		URL        string `yaml:"url"` // пусто = кэш выключен
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"redis"`
}

var AppConfig *Config

// LoadConfig читает config.yaml (CONFIG_PATH) или, если задан DATABASE_URL,
// собирает конфиг из переменных окружения.
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func Load() (*Config, error) {
	cfg := Defaults()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}
		log.Printf("Loading config from %s", configPath)

		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file at %s: %w", configPath, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file at %s: %w", configPath, err)
		}
		cfg.applyDefaults()
		return cfg, nil
	}

	log.Println("Loading config from environment variables")

	cfg.Database.DSN = dbURL
	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		cfg.Database.Driver = driver
	}
	if env := os.Getenv("SERVER_ENV"); env != "" {
		cfg.Server.Env = env
	}
	if port, err := strconv.Atoi(os.Getenv("SERVER_PORT")); err == nil {
		cfg.Server.Port = port
	}
	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	if storageType := os.Getenv("STORAGE_TYPE"); storageType != "" {
		cfg.Storage.Type = storageType
	}
	if basePath := os.Getenv("STORAGE_BASE_PATH"); basePath != "" {
		cfg.Storage.BasePath = basePath
	}
	cfg.Storage.Bucket = os.Getenv("STORAGE_BUCKET")
	cfg.Redis.URL = os.Getenv("REDIS_URL")

	cfg.applyDefaults()
	return cfg, nil
}

// Defaults возвращает конфиг со значениями по умолчанию
func Defaults() *Config {
	cfg := &Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Server.Env = "development"
	cfg.Database.Driver = "postgres"
	cfg.Auth.TokenTTL = 60
	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Geo.DefaultLatitude = 48.8566
	cfg.Geo.DefaultLongitude = 2.3522
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Upload.MaxPhotoSize <= 0 {
		c.Upload.MaxPhotoSize = 5 * 1024 * 1024 // 5MB
	}
	if len(c.Upload.AllowedTypes) == 0 {
		c.Upload.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}
	}
	if c.Upload.ImageQuality <= 0 || c.Upload.ImageQuality > 100 {
		c.Upload.ImageQuality = 85
	}
	if c.PDF.MaxSummarySearches <= 0 {
		c.PDF.MaxSummarySearches = 50
	}
	if c.PDF.PhotoConcurrency <= 0 {
		c.PDF.PhotoConcurrency = 4
	}
	if c.PDF.MaxImageEdge <= 0 {
		c.PDF.MaxImageEdge = 1600
	}
	if c.Sharing.Concurrency <= 0 {
		c.Sharing.Concurrency = 4
	}
	if c.Redis.TTLSeconds <= 0 {
		c.Redis.TTLSeconds = 300
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
