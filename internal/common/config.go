// Package common provides shared utilities for risklens
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for risklens
type Config struct {
	Environment      string        `toml:"environment"`
	DefaultStockCode string        `toml:"default_stock_code"`
	SearchLimit      int           `toml:"search_limit"`
	Server           ServerConfig  `toml:"server"`
	Clients          ClientsConfig `toml:"clients"`
	Index            IndexConfig   `toml:"index"`
	Risk             RiskConfig    `toml:"risk"`
	Logging          LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Eastmoney EastmoneyConfig `toml:"eastmoney"`
}

// EastmoneyConfig holds Eastmoney endpoint configuration.
// The vendor spreads its public API across several hosts, so each
// host gets its own base URL override.
type EastmoneyConfig struct {
	QuoteBaseURL      string `toml:"quote_base_url"`
	NoticeBaseURL     string `toml:"notice_base_url"`
	F10BaseURL        string `toml:"f10_base_url"`
	DataCenterBaseURL string `toml:"datacenter_base_url"`
	UserAgent         string `toml:"user_agent"`
	Referer           string `toml:"referer"`
	RateLimit         int    `toml:"rate_limit"`
	Timeout           string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EastmoneyConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// IndexConfig holds stock index cache configuration
type IndexConfig struct {
	TTL     string `toml:"ttl"`
	WarmUp  bool   `toml:"warm_up"`
	MaxSize int    `toml:"max_size"` // vendor page size for the full listing pull
}

// GetTTL parses and returns the index cache TTL
func (c *IndexConfig) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return FreshnessStockIndex
	}
	return d
}

// RiskConfig holds risk assessment thresholds and keyword vocabularies.
// Keywords are configuration so vocabularies can change without a redeploy.
type RiskConfig struct {
	PBWarningThreshold float64      `toml:"pb_warning_threshold"`
	HighFrequencyCount int          `toml:"high_frequency_count"`
	AnnouncementLimit  int          `toml:"announcement_limit"`
	Keywords           RiskKeywords `toml:"keywords"`
	PartnerConnectors  []string     `toml:"partner_connectors"`
	PartnerVerbs       []string     `toml:"partner_verbs"`
	InstitutionMarkers []string     `toml:"institution_markers"`
}

// RiskKeywords holds the per-category announcement keyword lists. The
// detail lists (inquiry through punishment) drive the per-announcement
// regulatory trigger flags.
type RiskKeywords struct {
	Legal         []string `toml:"legal"`
	Regulatory    []string `toml:"regulatory"`
	Financing     []string `toml:"financing"`
	Abnormal      []string `toml:"abnormal"`
	Critical      []string `toml:"critical"`
	High          []string `toml:"high"`
	Medium        []string `toml:"medium"`
	Inquiry       []string `toml:"inquiry"`
	Warning       []string `toml:"warning"`
	Rectification []string `toml:"rectification"`
	Punishment    []string `toml:"punishment"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment:      "development",
		DefaultStockCode: "600519",
		SearchLimit:      200,
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			Eastmoney: EastmoneyConfig{
				QuoteBaseURL:      "https://push2.eastmoney.com",
				NoticeBaseURL:     "https://np-anotice-stock.eastmoney.com",
				F10BaseURL:        "https://emweb.securities.eastmoney.com",
				DataCenterBaseURL: "https://datacenter.eastmoney.com",
				UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
				Referer:           "https://emweb.securities.eastmoney.com/",
				RateLimit:         10,
				Timeout:           "10s",
			},
		},
		Index: IndexConfig{
			TTL:     "24h",
			WarmUp:  false,
			MaxSize: 6000,
		},
		Risk: RiskConfig{
			PBWarningThreshold: 8.0,
			HighFrequencyCount: 40,
			AnnouncementLimit:  50,
			Keywords: RiskKeywords{
				Legal:         []string{"立案", "调查", "违法", "告知书", "处罚"},
				Regulatory:    []string{"监管", "问询函", "警示函", "整改"},
				Financing:     []string{"转融通", "出借", "融券"},
				Abnormal:      []string{"异动"},
				Critical:      []string{"退市", "终止上市"},
				High:          []string{"业绩预亏", "预减", "大幅下滑"},
				Medium:        []string{"质押", "解禁", "减持"},
				Inquiry:       []string{"问询函"},
				Warning:       []string{"警示函"},
				Rectification: []string{"整改"},
				Punishment:    []string{"处罚"},
			},
			PartnerConnectors:  []string{"与", "和", "及"},
			PartnerVerbs:       []string{"合作", "参股", "共同", "投资"},
			InstitutionMarkers: []string{"有限", "公司", "基金", "证券", "资产"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("RISKLENS_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("RISKLENS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("RISKLENS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("RISKLENS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if code := os.Getenv("RISKLENS_DEFAULT_STOCK_CODE"); code != "" {
		config.DefaultStockCode = code
	}

	if ttl := os.Getenv("RISKLENS_INDEX_TTL"); ttl != "" {
		config.Index.TTL = ttl
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
