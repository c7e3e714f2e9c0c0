package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.DefaultStockCode != "600519" {
		t.Errorf("DefaultStockCode = %q, want 600519", cfg.DefaultStockCode)
	}
	if cfg.Risk.PBWarningThreshold != 8.0 {
		t.Errorf("PBWarningThreshold = %v, want 8.0", cfg.Risk.PBWarningThreshold)
	}
	if cfg.Risk.HighFrequencyCount != 40 {
		t.Errorf("HighFrequencyCount = %v, want 40", cfg.Risk.HighFrequencyCount)
	}
	if cfg.Risk.AnnouncementLimit != 50 {
		t.Errorf("AnnouncementLimit = %v, want 50", cfg.Risk.AnnouncementLimit)
	}
	if got := cfg.Clients.Eastmoney.GetTimeout(); got != 10*time.Second {
		t.Errorf("eastmoney timeout = %v, want 10s", got)
	}
	if got := cfg.Index.GetTTL(); got != 24*time.Hour {
		t.Errorf("index TTL = %v, want 24h", got)
	}
	if len(cfg.Risk.Keywords.Legal) == 0 || len(cfg.Risk.Keywords.Regulatory) == 0 {
		t.Error("default risk keyword lists must not be empty")
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "risklens.toml")
	content := `
default_stock_code = "000001"

[server]
port = 9090

[clients.eastmoney]
timeout = "3s"

[risk]
pb_warning_threshold = 5.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.DefaultStockCode != "000001" {
		t.Errorf("DefaultStockCode = %q, want 000001", cfg.DefaultStockCode)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if got := cfg.Clients.Eastmoney.GetTimeout(); got != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", got)
	}
	if cfg.Risk.PBWarningThreshold != 5.5 {
		t.Errorf("PBWarningThreshold = %v, want 5.5", cfg.Risk.PBWarningThreshold)
	}
	// Untouched sections keep defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want default", cfg.Server.Host)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("RISKLENS_PORT", "7070")
	t.Setenv("RISKLENS_LOG_LEVEL", "debug")
	t.Setenv("RISKLENS_DEFAULT_STOCK_CODE", "300750")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.DefaultStockCode != "300750" {
		t.Errorf("DefaultStockCode = %q, want 300750", cfg.DefaultStockCode)
	}
}

func TestGetTimeout_InvalidFallsBack(t *testing.T) {
	cfg := EastmoneyConfig{Timeout: "not-a-duration"}
	if got := cfg.GetTimeout(); got != 10*time.Second {
		t.Errorf("GetTimeout = %v, want 10s fallback", got)
	}
}
