// Package market fetches per-ticker data products from the vendor with
// per-endpoint failure isolation.
package market

import (
	"context"
	"sync"

	"github.com/bobmcallan/risklens/internal/common"
	"github.com/bobmcallan/risklens/internal/interfaces"
	"github.com/bobmcallan/risklens/internal/models"
)

// Service implements MarketDataService
type Service struct {
	client            interfaces.EastmoneyClient
	logger            *common.Logger
	announcementLimit int
	financialPeriods  int
}

// NewService creates a new market data service
func NewService(client interfaces.EastmoneyClient, logger *common.Logger, announcementLimit int) *Service {
	if announcementLimit <= 0 {
		announcementLimit = 50
	}
	return &Service{
		client:            client,
		logger:            logger,
		announcementLimit: announcementLimit,
		financialPeriods:  6,
	}
}

// FetchRiskData returns the snapshot and recent announcements for a code.
// The two calls are independent: a transport failure on one degrades that
// product to nil without blocking the other. Vendor-side non-200 responses
// are already absorbed inside the client as empty results.
func (s *Service) FetchRiskData(ctx context.Context, code string) (models.Snapshot, []models.Announcement) {
	var (
		wg   sync.WaitGroup
		snap models.Snapshot
		anns []models.Announcement
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		result, err := s.client.GetSnapshot(ctx, code)
		if err != nil {
			s.logger.Warn().Str("code", code).Err(err).Msg("Failed to fetch snapshot")
			return
		}
		snap = result
	}()
	go func() {
		defer wg.Done()
		result, err := s.client.GetAnnouncements(ctx, code, s.announcementLimit)
		if err != nil {
			s.logger.Warn().Str("code", code).Err(err).Msg("Failed to fetch announcements")
			return
		}
		anns = result
	}()
	wg.Wait()

	return snap, anns
}

// FetchExtraDetails returns the three secondary data products. Each call
// runs in its own failure-isolated unit; one endpoint's error or timeout
// never prevents the others from populating.
func (s *Service) FetchExtraDetails(ctx context.Context, code string) *models.ExtraDetails {
	extras := &models.ExtraDetails{}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		company, err := s.client.GetCompanyProfile(ctx, code)
		if err != nil {
			s.logger.Warn().Str("code", code).Err(err).Msg("Failed to fetch company profile")
			return
		}
		extras.Company = company
	}()
	go func() {
		defer wg.Done()
		holders, floatHolders, err := s.client.GetShareholders(ctx, code)
		if err != nil {
			s.logger.Warn().Str("code", code).Err(err).Msg("Failed to fetch shareholders")
			return
		}
		extras.Holders = holders
		extras.FloatHolders = floatHolders
	}()
	go func() {
		defer wg.Done()
		fina, err := s.client.GetMainFinancials(ctx, code, s.financialPeriods)
		if err != nil {
			s.logger.Warn().Str("code", code).Err(err).Msg("Failed to fetch financial indicators")
			return
		}
		extras.Financials = fina
	}()

	wg.Wait()
	return extras
}

// Ensure Service implements MarketDataService
var _ interfaces.MarketDataService = (*Service)(nil)
