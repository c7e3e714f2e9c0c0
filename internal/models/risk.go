package models

// Status is an ordinal severity label for one risk category.
type Status string

// Severity order: green < yellow < red.
const (
	StatusGreen  Status = "green"
	StatusYellow Status = "yellow"
	StatusRed    Status = "red"
)

// RiskTag is one classified risk marker with its bucket.
type RiskTag struct {
	Label  string `json:"label"`
	Bucket string `json:"bucket"` // critical, high, medium, info
	Source string `json:"source"` // name, announcement, snapshot
}

// RiskAssessment is the computed risk output for one ticker. It is created
// fresh per analysis call and immutable once returned. Status labels are a
// pure function of the assessment's own flags and values; the PB threshold
// is captured at analysis time so no external state leaks in.
type RiskAssessment struct {
	HasLegalRisk        bool `json:"has_legal_risk"`
	HasRegulatoryRisk   bool `json:"has_regulatory_risk"`
	HasSTRisk           bool `json:"has_st_risk"`
	HasFinancingRisk    bool `json:"has_financing_risk"`
	HasAbnormalActivity bool `json:"has_abnormal_activity"`
	IsHighFrequency     bool `json:"is_high_frequency"`

	PBValue     float64  `json:"pb_value"`
	PEValue     *float64 `json:"pe_value"`
	MarketValue *float64 `json:"market_value"`

	// Risk board classification
	InRiskBoard    bool     `json:"in_risk_board"`
	RiskType       string   `json:"risk_type,omitempty"`
	ConceptBoards  []string `json:"concept_boards"`
	HasRiskConcept bool     `json:"has_risk_concept"`

	// Detailed risk tags bucketed by severity
	RiskTags      []RiskTag `json:"risk_tags"`
	RiskDetails   []string  `json:"risk_details"`
	CriticalRisks []string  `json:"critical_risks"`
	HighRisks     []string  `json:"high_risks"`
	MediumRisks   []string  `json:"medium_risks"`
	InfoRisks     []string  `json:"info_risks"`

	// Regulatory trigger detail
	RegulatoryCount         int            `json:"regulatory_count"`
	HasInquiry              bool           `json:"has_inquiry"`
	HasWarning              bool           `json:"has_warning"`
	HasPunishment           bool           `json:"has_punishment"`
	HasRectification        bool           `json:"has_rectification"`
	RegulatoryAnnouncements []Announcement `json:"regulatory_announcements"`

	// Valuation threshold captured from config at analysis time
	PBWarningThreshold float64 `json:"pb_warning_threshold"`
}

// NewRiskAssessment returns an assessment with all slices initialized,
// so consumers never see nil collections.
func NewRiskAssessment() *RiskAssessment {
	return &RiskAssessment{
		ConceptBoards:           []string{},
		RiskTags:                []RiskTag{},
		RiskDetails:             []string{},
		CriticalRisks:           []string{},
		HighRisks:               []string{},
		MediumRisks:             []string{},
		InfoRisks:               []string{},
		RegulatoryAnnouncements: []Announcement{},
	}
}

// LegalStatus labels the legal/compliance category.
func (a *RiskAssessment) LegalStatus() Status {
	if a.HasLegalRisk {
		return StatusRed
	}
	if a.HasRegulatoryRisk {
		return StatusYellow
	}
	return StatusGreen
}

// RiskBoardStatus labels the risk-board/delisting category.
func (a *RiskAssessment) RiskBoardStatus() Status {
	if len(a.CriticalRisks) > 0 || a.InRiskBoard {
		return StatusRed
	}
	if len(a.HighRisks) > 0 {
		return StatusRed
	}
	if len(a.MediumRisks) > 0 || a.HasRiskConcept {
		return StatusYellow
	}
	if len(a.InfoRisks) > 0 {
		return StatusYellow
	}
	return StatusGreen
}

// RegulatoryStatus labels the regulatory-trigger category.
func (a *RiskAssessment) RegulatoryStatus() Status {
	if a.HasPunishment {
		return StatusRed
	}
	if a.HasInquiry || a.HasWarning || a.HasRectification {
		return StatusYellow
	}
	if a.RegulatoryCount > 0 {
		return StatusYellow
	}
	return StatusGreen
}

// FrequencyStatus labels the announcement-frequency category.
func (a *RiskAssessment) FrequencyStatus() Status {
	if a.IsHighFrequency {
		return StatusYellow
	}
	return StatusGreen
}

// ValuationStatus labels the valuation category against the PB threshold.
func (a *RiskAssessment) ValuationStatus() Status {
	if a.PBValue > a.PBWarningThreshold {
		return StatusRed
	}
	return StatusGreen
}

// FinancingStatus labels the securities-lending category.
func (a *RiskAssessment) FinancingStatus() Status {
	if a.HasFinancingRisk {
		return StatusRed
	}
	return StatusGreen
}
