// Package app wires configuration, clients and services into one
// application core shared by the server binary and tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/risklens/internal/clients/eastmoney"
	"github.com/bobmcallan/risklens/internal/common"
	"github.com/bobmcallan/risklens/internal/interfaces"
	"github.com/bobmcallan/risklens/internal/services/index"
	"github.com/bobmcallan/risklens/internal/services/market"
	"github.com/bobmcallan/risklens/internal/services/report"
	"github.com/bobmcallan/risklens/internal/services/risk"
)

// App holds all initialized services and clients.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	EastmoneyClient interfaces.EastmoneyClient
	IndexService    interfaces.IndexService
	MarketService   interfaces.MarketDataService
	RiskService     interfaces.RiskService
	ReportService   interfaces.ReportService
	StartupTime     time.Time

	warmCacheCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, the vendor client and all services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	// Config resolution: provided path, RISKLENS_CONFIG, binary dir, dev fallback
	if configPath == "" {
		configPath = os.Getenv("RISKLENS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "risklens.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/risklens.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	client := eastmoney.NewClientFromConfig(config.Clients.Eastmoney, logger,
		eastmoney.WithListPageSize(config.Index.MaxSize))

	indexService := index.NewService(client, logger, config.Index.GetTTL())
	marketService := market.NewService(client, logger, config.Risk.AnnouncementLimit)
	riskService := risk.NewAnalyzer(config.Risk)
	reportService := report.NewService(marketService, riskService, indexService, logger)

	return &App{
		Config:          config,
		Logger:          logger,
		EastmoneyClient: client,
		IndexService:    indexService,
		MarketService:   marketService,
		RiskService:     riskService,
		ReportService:   reportService,
		StartupTime:     time.Now(),
	}, nil
}

// StartWarmCache eagerly loads the stock index in the background when
// enabled in config, so the first search doesn't pay the rebuild cost.
func (a *App) StartWarmCache() {
	if !a.Config.Index.WarmUp {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.warmCacheCancel = cancel

	go func() {
		start := time.Now()
		records := a.IndexService.LoadFullIndex(ctx)
		a.Logger.Info().
			Int("symbols", len(records)).
			Dur("duration", time.Since(start)).
			Msg("Stock index warm-up complete")
	}()
}

// Close releases background resources.
func (a *App) Close() {
	if a.warmCacheCancel != nil {
		a.warmCacheCancel()
	}
}
