// Package report composes single-ticker risk reports from the fetch,
// assessment and enrichment services.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/risklens/internal/common"
	"github.com/bobmcallan/risklens/internal/interfaces"
	"github.com/bobmcallan/risklens/internal/models"
)

// ErrMarketUnavailable signals total failure of the primary snapshot
// fetch, the one consumer-visible failure path in the pipeline.
var ErrMarketUnavailable = errors.New("market data unavailable")

// DefaultPeerLimit bounds the peer recommendation list
const DefaultPeerLimit = 10

// Service implements ReportService
type Service struct {
	market interfaces.MarketDataService
	risk   interfaces.RiskService
	index  interfaces.IndexService
	logger *common.Logger
}

// NewService creates a new report service
func NewService(
	market interfaces.MarketDataService,
	risk interfaces.RiskService,
	index interfaces.IndexService,
	logger *common.Logger,
) *Service {
	return &Service{
		market: market,
		risk:   risk,
		index:  index,
		logger: logger,
	}
}

// BuildReport fetches, analyzes and enriches a risk report for one code.
// Secondary product failures degrade to missing sections; only an absent
// primary snapshot is an error.
func (s *Service) BuildReport(ctx context.Context, code string) (*models.RiskReport, error) {
	snap, anns := s.market.FetchRiskData(ctx, code)
	if snap == nil {
		return nil, fmt.Errorf("%w: %s", ErrMarketUnavailable, code)
	}

	extras := s.market.FetchExtraDetails(ctx, code)

	if anns == nil {
		anns = []models.Announcement{}
	}
	assessment := s.risk.Analyze(snap, anns)

	// Partner extraction falls back through company description sources
	partnerText := ""
	if extras.Company != nil {
		partnerText = extras.Company.MainBusiness
		if partnerText == "" {
			partnerText = extras.Company.Introduction
		}
	}
	if partnerText == "" {
		partnerText = snap.Str(models.FieldProfile)
	}
	partners := s.risk.ExtractPartners(partnerText)

	institutions := s.risk.DetectInstitutionalHolders(extras.Holders)

	peers := s.index.PeersByIndustry(ctx, snap.Str(models.FieldIndustry), code, DefaultPeerLimit)

	report := &models.RiskReport{
		Code:                 code,
		Name:                 snap.Str(models.FieldName),
		Snapshot:             snap,
		Announcements:        anns,
		Assessment:           assessment,
		Extras:               extras,
		Partners:             partners,
		InstitutionalHolders: institutions,
		Peers:                peers,
		GeneratedAt:          time.Now(),
	}

	s.logger.Debug().
		Str("code", code).
		Str("name", report.Name).
		Int("announcements", len(anns)).
		Msg("Risk report built")

	return report, nil
}

// Ensure Service implements ReportService
var _ interfaces.ReportService = (*Service)(nil)
