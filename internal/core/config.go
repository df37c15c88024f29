package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/jo-hoe/gallery/internal/backend/cache"
	"github.com/jo-hoe/gallery/internal/backend/storage"
	"github.com/jo-hoe/gallery/internal/common"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort             = 8080
	DefaultSQLiteFile       = "database.db"
	DefaultUploadRoot       = "public/upload"
	DefaultCORSAllowOrigin  = "http://localhost:3000"
	DefaultCORSMaxAgeSecond = 3600
)

type Database struct {
	Type             string `yaml:"type" validate:"oneof=sqlite postgres"`
	ConnectionString string `yaml:"connectionString" validate:"required"`
}

type Storage struct {
	Type       string           `yaml:"type" validate:"omitempty,oneof=disk s3"`
	UploadRoot string           `yaml:"uploadRoot" validate:"required"`
	S3         storage.S3Config `yaml:"s3"`
}

type CORS struct {
	AllowOrigins     []string `yaml:"allowOrigins"`
	AllowMethods     []string `yaml:"allowMethods"`
	AllowHeaders     []string `yaml:"allowHeaders"`
	ExposeHeaders    []string `yaml:"exposeHeaders"`
	AllowCredentials bool     `yaml:"allowCredentials"`
	MaxAge           int      `yaml:"maxAge" validate:"min=0"`
}

type ServiceConfig struct {
	Port     int          `yaml:"port" validate:"min=1,max=65535"`
	Database Database     `yaml:"database"`
	Storage  Storage      `yaml:"storage"`
	Cache    cache.Config `yaml:"cache"`
	CORS     CORS         `yaml:"cors"`
}

// DefaultConfig mirrors the behaviour of the service without any config file.
func DefaultConfig() *ServiceConfig {
	return &ServiceConfig{
		Port: DefaultPort,
		Database: Database{
			Type:             "sqlite",
			ConnectionString: DefaultSQLiteFile,
		},
		Storage: Storage{
			Type:       storage.TypeDisk,
			UploadRoot: DefaultUploadRoot,
		},
		Cache: cache.Config{
			TTL: cache.DefaultTTL,
		},
		CORS: CORS{
			AllowOrigins:     []string{DefaultCORSAllowOrigin},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           DefaultCORSMaxAgeSecond,
		},
	}
}

// LoadConfig loads configuration from the specified YAML file
func LoadConfig(configPath string) (*ServiceConfig, error) {
	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Parse YAML on top of the defaults
	config := DefaultConfig()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return finalizeConfig(config)
}

// LoadConfigOrDefault behaves like LoadConfig but falls back to DefaultConfig when the file does not exist.
func LoadConfigOrDefault(configPath string) (*ServiceConfig, error) {
	config, err := LoadConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return finalizeConfig(DefaultConfig())
	}
	return config, err
}

// LoadEnvFile loads a dotenv file into the process environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func finalizeConfig(config *ServiceConfig) (*ServiceConfig, error) {
	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	if err := common.ValidateStruct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func applyEnvOverrides(config *ServiceConfig) error {
	if value, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", value, err)
		}
		config.Port = port
	}
	if value, ok := os.LookupEnv("DATABASE_TYPE"); ok {
		config.Database.Type = value
	}
	if value, ok := os.LookupEnv("DATABASE_URL"); ok {
		config.Database.ConnectionString = value
	}
	// SQLITE_DB only applies to the sqlite driver
	if value, ok := os.LookupEnv("SQLITE_DB"); ok && value != "" && config.Database.Type == "sqlite" {
		config.Database.ConnectionString = value
	}
	if value, ok := os.LookupEnv("UPLOAD_ROOT"); ok {
		config.Storage.UploadRoot = value
	}
	if value, ok := os.LookupEnv("REDIS_ADDR"); ok {
		config.Cache.Address = value
	}
	if value, ok := os.LookupEnv("CACHE_TTL"); ok {
		ttl, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid CACHE_TTL %q: %w", value, err)
		}
		config.Cache.TTL = ttl
	}
	return nil
}
