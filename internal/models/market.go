// Package models defines data structures for risklens
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SymbolRecord is one entry in the tradable symbol universe.
// Records are immutable once loaded; the collection is rebuilt
// wholesale on cache expiry, never mutated in place.
type SymbolRecord struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Industry  string `json:"industry"`
	Label     string `json:"label"`
	SearchKey string `json:"-"`
}

// NewSymbolRecord builds a record with its derived label and search key.
func NewSymbolRecord(symbol, name, industry string) SymbolRecord {
	symbol = strings.TrimSpace(symbol)
	name = strings.TrimSpace(name)
	return SymbolRecord{
		Symbol:    symbol,
		Name:      name,
		Industry:  industry,
		Label:     fmt.Sprintf("%s | %s (%s)", symbol, name, industry),
		SearchKey: strings.ToLower(symbol) + " " + strings.ToLower(name),
	}
}

// Snapshot is a sparse mapping of vendor field codes to scalar values for
// one ticker's latest valuation and fundamental figures. Every field is
// optional; callers go through the typed accessors rather than indexing
// the map directly.
type Snapshot map[string]any

// Vendor field codes used by the risk pipeline.
const (
	FieldName        = "f58"  // stock name
	FieldPE          = "f43"  // PE proxy
	FieldPBRaw       = "f167" // PB x100
	FieldMarketValue = "f116" // total market value
	FieldIndustry    = "f127" // industry tag
	FieldProfile     = "f186" // free-text business description
	FieldProfitYoY   = "f114" // YoY net profit growth
)

// Str returns the field as a string, or "" when absent or nil.
func (s Snapshot) Str(key string) string {
	v, ok := s[key]
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Float returns the field parsed as a float64. The second return is false
// when the field is absent, nil, an empty string, or unparseable.
func (s Snapshot) Float(key string) (float64, bool) {
	v, ok := s[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		if t == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// FloatOr returns the field parsed as a float64, or def when missing.
func (s Snapshot) FloatOr(key string, def float64) float64 {
	if f, ok := s.Float(key); ok {
		return f
	}
	return def
}

// FloatPtr returns the parsed field or nil when absent, preserving the
// distinction between "no data" and zero.
func (s Snapshot) FloatPtr(key string) *float64 {
	if f, ok := s.Float(key); ok {
		return &f
	}
	return nil
}

// Announcement is one corporate disclosure headline. Announcements arrive
// most-recent-first from the vendor and are only scanned, never persisted.
type Announcement struct {
	Title      string `json:"title"`
	ArtCode    string `json:"art_code,omitempty"`
	NoticeDate string `json:"notice_date,omitempty"`
}

// CompanyProfile holds basic registered-company details from the F10 survey.
type CompanyProfile struct {
	RegName      string `json:"reg_name"`
	Chairman     string `json:"chairman"`
	MainBusiness string `json:"main_business"`
	Introduction string `json:"introduction"`
	Province     string `json:"province"`
	City         string `json:"city"`
}

// HolderRecord is one row of a top-shareholder table.
type HolderRecord struct {
	HolderName string  `json:"holder_name"`
	HoldRatio  float64 `json:"hold_ratio"`
	HoldAmount float64 `json:"hold_amount"`
}

// FinancialPeriod is one reporting period of the main financial indicators.
type FinancialPeriod struct {
	EndDate      string  `json:"end_date"`
	ROE          float64 `json:"roe"`
	NetProfitYoY float64 `json:"netprofit_yoy"`
	RevenueYoY   float64 `json:"business_income_yoy"`
	BasicEPS     float64 `json:"basic_eps"`
	Revenue      float64 `json:"total_oper_rev"`
	NetProfit    float64 `json:"npta"`
}

// ExtraDetails bundles the three independently fetched secondary data
// products. Any member may be nil/empty when its endpoint failed; absence
// of one never blocks the others.
type ExtraDetails struct {
	Company      *CompanyProfile   `json:"company,omitempty"`
	Holders      []HolderRecord    `json:"holders,omitempty"`
	FloatHolders []HolderRecord    `json:"float_holders,omitempty"`
	Financials   []FinancialPeriod `json:"financials,omitempty"`
}

// RiskReport is the full composed output handed to the presentation layer.
type RiskReport struct {
	Code                 string          `json:"code"`
	Name                 string          `json:"name"`
	Snapshot             Snapshot        `json:"snapshot"`
	Announcements        []Announcement  `json:"announcements"`
	Assessment           *RiskAssessment `json:"assessment"`
	Extras               *ExtraDetails   `json:"extras,omitempty"`
	Partners             []string        `json:"partners,omitempty"`
	InstitutionalHolders []HolderRecord  `json:"institutional_holders,omitempty"`
	Peers                []SymbolRecord  `json:"peers,omitempty"`
	GeneratedAt          time.Time       `json:"generated_at"`
}
