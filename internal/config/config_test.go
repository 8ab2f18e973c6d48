package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "pawsit-test"
database:
  path: "test.db"
redis:
  enabled: true
  address: "${TEST_REDIS_ADDR}"
api:
  http:
    port: 9999
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	t.Setenv("TEST_REDIS_ADDR", "localhost:16379")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "pawsit-test" {
		t.Errorf("expected app name pawsit-test, got %s", cfg.App.Name)
	}
	if cfg.Database.Path != "test.db" {
		t.Errorf("expected database path test.db, got %s", cfg.Database.Path)
	}
	if cfg.Redis.Address != "localhost:16379" {
		t.Errorf("expected env-expanded redis address, got %s", cfg.Redis.Address)
	}
	if cfg.API.HTTP.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.API.HTTP.Port)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     Config{Database: DatabaseConfig{Path: "data/app.db"}},
			wantErr: false,
		},
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "auth enabled without keys",
			cfg: Config{
				Database: DatabaseConfig{Path: "data/app.db"},
				API:      APIConfig{Auth: APIAuthConfig{Enabled: true}},
			},
			wantErr: true,
		},
		{
			name: "auth enabled with keys",
			cfg: Config{
				Database: DatabaseConfig{Path: "data/app.db"},
				API: APIConfig{Auth: APIAuthConfig{
					Enabled: true,
					APIKeys: []APIClientKey{{Key: "secret", Name: "admin"}},
				}},
			},
			wantErr: false,
		},
		{
			name: "redis enabled without address",
			cfg: Config{
				Database: DatabaseConfig{Path: "data/app.db"},
				Redis:    RedisConfig{Enabled: true},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{Monitoring: MonitoringConfig{PrometheusEnabled: true}}
	cfg.applyDefaults()

	if cfg.App.Name != "pawsit" {
		t.Errorf("expected default app name pawsit, got %s", cfg.App.Name)
	}
	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default http port 8080, got %d", cfg.API.HTTP.Port)
	}
	if cfg.API.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default api key header, got %s", cfg.API.Auth.HeaderAPIKey)
	}
	if cfg.API.RateLimit.RPS != 20 || cfg.API.RateLimit.Burst != 40 {
		t.Errorf("expected default rate limit 20/40, got %v/%d", cfg.API.RateLimit.RPS, cfg.API.RateLimit.Burst)
	}
	if cfg.Monitoring.PrometheusPort != 9090 {
		t.Errorf("expected default prometheus port 9090, got %d", cfg.Monitoring.PrometheusPort)
	}
	if cfg.Redis.PoolSize != 10 {
		t.Errorf("expected default pool size 10, got %d", cfg.Redis.PoolSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}
