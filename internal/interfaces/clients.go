// Package interfaces defines service contracts for risklens
package interfaces

import (
	"context"

	"github.com/bobmcallan/risklens/internal/models"
)

// EastmoneyClient provides access to the Eastmoney public endpoints.
// Methods return an error only on transport-level failure or an
// unexpected vendor response; HTTP status handling is documented per call.
type EastmoneyClient interface {
	// GetStockList retrieves the full tradable symbol universe
	GetStockList(ctx context.Context) ([]models.SymbolRecord, error)

	// GetSnapshot retrieves the valuation/fundamental snapshot for a code.
	// A non-200 vendor status yields an empty snapshot and a nil error.
	GetSnapshot(ctx context.Context, code string) (models.Snapshot, error)

	// GetAnnouncements retrieves recent announcements, most recent first.
	// A non-200 vendor status yields an empty list and a nil error.
	GetAnnouncements(ctx context.Context, code string, pageSize int) ([]models.Announcement, error)

	// GetCompanyProfile retrieves the F10 company survey
	GetCompanyProfile(ctx context.Context, code string) (*models.CompanyProfile, error)

	// GetShareholders retrieves the top-ten holder and float-holder tables
	GetShareholders(ctx context.Context, code string) (holders, floatHolders []models.HolderRecord, err error)

	// GetMainFinancials retrieves the main financial indicators, newest first
	GetMainFinancials(ctx context.Context, code string, periods int) ([]models.FinancialPeriod, error)
}
