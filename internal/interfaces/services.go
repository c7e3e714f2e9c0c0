package interfaces

import (
	"context"

	"github.com/bobmcallan/risklens/internal/models"
)

// IndexService maintains the cached symbol universe and serves searches
type IndexService interface {
	// LoadFullIndex returns the cached universe, rebuilding it on expiry.
	// Total vendor failure yields an empty slice, never an error.
	LoadFullIndex(ctx context.Context) []models.SymbolRecord

	// Search returns up to limit records for the query. An empty query
	// browses the head of the index.
	Search(ctx context.Context, query string, limit int) []models.SymbolRecord

	// PeersByIndustry returns up to limit records sharing the industry,
	// excluding the given code.
	PeersByIndustry(ctx context.Context, industry, excludeCode string, limit int) []models.SymbolRecord

	// Invalidate drops the cached index so the next call rebuilds it
	Invalidate()
}

// MarketDataService fetches per-ticker data products with per-endpoint
// failure isolation. Failures degrade to nil/empty products; no error
// crosses the fetch boundary.
type MarketDataService interface {
	// FetchRiskData returns the snapshot and recent announcements.
	// A nil snapshot signals total failure of the primary call and is the
	// one consumer-visible failure path.
	FetchRiskData(ctx context.Context, code string) (models.Snapshot, []models.Announcement)

	// FetchExtraDetails returns company/holder/financial extras; any
	// member may be absent when its endpoint failed.
	FetchExtraDetails(ctx context.Context, code string) *models.ExtraDetails
}

// RiskService derives risk assessments and text enrichments
type RiskService interface {
	// Analyze derives a deterministic assessment from snapshot and
	// announcements. Pure; no I/O.
	Analyze(snap models.Snapshot, anns []models.Announcement) *models.RiskAssessment

	// ExtractPartners scans free text for cooperation partner names
	ExtractPartners(text string) []string

	// DetectInstitutionalHolders filters holder records down to
	// institutional-looking names
	DetectInstitutionalHolders(holders []models.HolderRecord) []models.HolderRecord
}

// ReportService composes the full risk report for one ticker
type ReportService interface {
	// BuildReport fetches, analyzes and enriches a single-ticker report.
	// Returns an error only when the primary snapshot is unavailable.
	BuildReport(ctx context.Context, code string) (*models.RiskReport, error)
}
