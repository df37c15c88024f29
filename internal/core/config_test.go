package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	return configPath
}

func TestLoadConfig_Success(t *testing.T) {
	configPath := writeConfig(t, `port: 9090
database:
  type: sqlite
  connectionString: "gallery.db"
storage:
  uploadRoot: "/srv/upload"
cache:
  address: "localhost:6379"
  ttl: 30s
cors:
  allowOrigins: ["https://gallery.example.com"]`)

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Port != 9090 {
		t.Errorf("Expected port to be 9090, got %d", config.Port)
	}
	if config.Database.ConnectionString != "gallery.db" {
		t.Errorf("Expected connectionString to be 'gallery.db', got '%s'", config.Database.ConnectionString)
	}
	if config.Storage.UploadRoot != "/srv/upload" {
		t.Errorf("Expected uploadRoot to be '/srv/upload', got '%s'", config.Storage.UploadRoot)
	}
	if config.Cache.TTL != 30*time.Second {
		t.Errorf("Expected cache ttl to be 30s, got %v", config.Cache.TTL)
	}
	if len(config.CORS.AllowOrigins) != 1 || config.CORS.AllowOrigins[0] != "https://gallery.example.com" {
		t.Errorf("Unexpected allowOrigins %v", config.CORS.AllowOrigins)
	}
	// untouched sections keep their defaults
	if config.CORS.MaxAge != DefaultCORSMaxAgeSecond {
		t.Errorf("Expected default maxAge, got %d", config.CORS.MaxAge)
	}
	if config.Storage.Type != "disk" {
		t.Errorf("Expected default storage type 'disk', got '%s'", config.Storage.Type)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	// Test with a non-existent file
	nonExistentPath := "/path/that/does/not/exist/config.yaml"

	config, err := LoadConfig(nonExistentPath)

	// Expect an error
	if err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}

	// Config should be nil
	if config != nil {
		t.Error("Expected config to be nil when file doesn't exist")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "port: [not a number")

	if _, err := LoadConfig(configPath); err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestLoadConfig_ValidationFails(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unsupported database", content: "database:\n  type: oracle\n  connectionString: x"},
		{name: "port out of range", content: "port: 70000"},
		{name: "unsupported storage", content: "storage:\n  type: ftp\n  uploadRoot: x"},
		{name: "empty connection string", content: "database:\n  type: sqlite\n  connectionString: \"\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Fatalf("Expected validation error for %q", tt.content)
			}
		})
	}
}

func TestLoadConfigOrDefault_MissingFile(t *testing.T) {
	config, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfigOrDefault failed: %v", err)
	}
	if config.Port != DefaultPort {
		t.Errorf("Expected default port %d, got %d", DefaultPort, config.Port)
	}
	if config.Database.ConnectionString != DefaultSQLiteFile {
		t.Errorf("Expected default database file, got '%s'", config.Database.ConnectionString)
	}
	if config.Storage.UploadRoot != DefaultUploadRoot {
		t.Errorf("Expected default upload root, got '%s'", config.Storage.UploadRoot)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8181")
	t.Setenv("SQLITE_DB", "from-env.db")
	t.Setenv("UPLOAD_ROOT", "/tmp/uploads")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CACHE_TTL", "2m")

	config, err := LoadConfig(writeConfig(t, "port: 9090"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Port != 8181 {
		t.Errorf("Expected PORT override 8181, got %d", config.Port)
	}
	if config.Database.ConnectionString != "from-env.db" {
		t.Errorf("Expected SQLITE_DB override, got '%s'", config.Database.ConnectionString)
	}
	if config.Storage.UploadRoot != "/tmp/uploads" {
		t.Errorf("Expected UPLOAD_ROOT override, got '%s'", config.Storage.UploadRoot)
	}
	if config.Cache.Address != "redis:6379" {
		t.Errorf("Expected REDIS_ADDR override, got '%s'", config.Cache.Address)
	}
	if config.Cache.TTL != 2*time.Minute {
		t.Errorf("Expected CACHE_TTL override, got %v", config.Cache.TTL)
	}
}

func TestLoadConfig_InvalidPortEnv(t *testing.T) {
	t.Setenv("PORT", "eighty")

	if _, err := LoadConfig(writeConfig(t, "port: 9090")); err == nil {
		t.Fatal("Expected error for non-numeric PORT")
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("Expected missing env file to be ignored, got %v", err)
	}

	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte("GALLERY_TEST_VALUE=loaded\n"), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	t.Setenv("GALLERY_TEST_VALUE", "")
	_ = os.Unsetenv("GALLERY_TEST_VALUE")

	if err := LoadEnvFile(envPath); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}
	if got := os.Getenv("GALLERY_TEST_VALUE"); got != "loaded" {
		t.Errorf("Expected GALLERY_TEST_VALUE=loaded, got %q", got)
	}
}
