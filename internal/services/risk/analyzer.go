// Package risk derives deterministic risk assessments from ticker
// snapshots and announcement streams.
package risk

import (
	"strings"

	"github.com/bobmcallan/risklens/internal/common"
	"github.com/bobmcallan/risklens/internal/interfaces"
	"github.com/bobmcallan/risklens/internal/models"
)

// stMarker flags Special Treatment names, including "*ST"
const stMarker = "ST"

// Analyzer implements RiskService. Analysis is a pure function of its
// inputs and the configured vocabularies; no I/O, no hidden state.
type Analyzer struct {
	cfg   common.RiskConfig
	miner *TextMiner
}

// NewAnalyzer creates a new risk analyzer from the risk config section
func NewAnalyzer(cfg common.RiskConfig) *Analyzer {
	return &Analyzer{
		cfg:   cfg,
		miner: NewTextMiner(cfg),
	}
}

// Analyze derives a risk assessment from a snapshot and its recent
// announcements. Calling twice with identical inputs yields an identical
// assessment.
func (a *Analyzer) Analyze(snap models.Snapshot, anns []models.Announcement) *models.RiskAssessment {
	assessment := models.NewRiskAssessment()
	assessment.PBWarningThreshold = a.cfg.PBWarningThreshold

	// Concatenated titles form one scan buffer for keyword detection
	var buf strings.Builder
	for _, ann := range anns {
		buf.WriteString(ann.Title)
	}
	annText := buf.String()

	keywords := a.cfg.Keywords
	assessment.HasLegalRisk = containsAny(annText, keywords.Legal)
	assessment.HasRegulatoryRisk = containsAny(annText, keywords.Regulatory)
	assessment.HasFinancingRisk = containsAny(annText, keywords.Financing)
	assessment.HasAbnormalActivity = containsAny(annText, keywords.Abnormal)

	assessment.IsHighFrequency = len(anns) > a.cfg.HighFrequencyCount

	// PB arrives scaled by 100; absent or unparseable defaults to zero
	assessment.PBValue = snap.FloatOr(models.FieldPBRaw, 0) / 100.0

	// PE and market value stay nil when absent, distinguishing "no data"
	// from zero
	assessment.PEValue = snap.FloatPtr(models.FieldPE)
	assessment.MarketValue = snap.FloatPtr(models.FieldMarketValue)

	stockName := snap.Str(models.FieldName)
	isSTName := strings.Contains(stockName, stMarker)
	profitYoY, hasProfit := snap.Float(models.FieldProfitYoY)
	isNegativeProfit := hasProfit && profitYoY < 0
	assessment.HasSTRisk = isSTName || isNegativeProfit

	a.classifyTags(assessment, stockName, annText, isSTName, isNegativeProfit)
	a.scanRegulatory(assessment, anns)

	return assessment
}

// classifyTags fills the bucketed risk tags from the name marker, the
// profit trend and the announcement scan buffer.
func (a *Analyzer) classifyTags(assessment *models.RiskAssessment, stockName, annText string, isSTName, isNegativeProfit bool) {
	addTag := func(bucket, label, source string) {
		assessment.RiskTags = append(assessment.RiskTags, models.RiskTag{
			Label:  label,
			Bucket: bucket,
			Source: source,
		})
		assessment.RiskDetails = append(assessment.RiskDetails, label)
		switch bucket {
		case "critical":
			assessment.CriticalRisks = append(assessment.CriticalRisks, label)
		case "high":
			assessment.HighRisks = append(assessment.HighRisks, label)
		case "medium":
			assessment.MediumRisks = append(assessment.MediumRisks, label)
		case "info":
			assessment.InfoRisks = append(assessment.InfoRisks, label)
		}
	}

	if isSTName {
		assessment.RiskType = "ST"
		addTag("critical", stockName+" 带ST标记", "name")
	}
	for _, k := range a.cfg.Keywords.Critical {
		if strings.Contains(annText, k) {
			addTag("critical", "公告提及"+k, "announcement")
		}
	}
	if isNegativeProfit {
		addTag("high", "净利润同比为负", "snapshot")
	}
	for _, k := range a.cfg.Keywords.High {
		if strings.Contains(annText, k) {
			addTag("high", "公告提及"+k, "announcement")
		}
	}
	for _, k := range a.cfg.Keywords.Medium {
		if strings.Contains(annText, k) {
			addTag("medium", "公告提及"+k, "announcement")
		}
	}
	for _, k := range a.cfg.Keywords.Abnormal {
		if strings.Contains(annText, k) {
			addTag("info", "公告提及"+k, "announcement")
		}
	}
}

// scanRegulatory collects regulatory-trigger detail from individual
// announcements, preserving vendor order. The detail vocabularies come
// from config like every other keyword list.
func (a *Analyzer) scanRegulatory(assessment *models.RiskAssessment, anns []models.Announcement) {
	keywords := a.cfg.Keywords
	for _, ann := range anns {
		if !containsAny(ann.Title, keywords.Regulatory) {
			continue
		}
		assessment.RegulatoryCount++
		assessment.RegulatoryAnnouncements = append(assessment.RegulatoryAnnouncements, ann)

		if containsAny(ann.Title, keywords.Inquiry) {
			assessment.HasInquiry = true
		}
		if containsAny(ann.Title, keywords.Warning) {
			assessment.HasWarning = true
		}
		if containsAny(ann.Title, keywords.Rectification) {
			assessment.HasRectification = true
		}
	}

	// Punishment notices carry a legal keyword rather than a regulatory
	// one, so scan all titles for them
	for _, ann := range anns {
		if containsAny(ann.Title, keywords.Punishment) {
			assessment.HasPunishment = true
			break
		}
	}
}

// ExtractPartners scans free text for cooperation partner names
func (a *Analyzer) ExtractPartners(text string) []string {
	return a.miner.ExtractPartners(text)
}

// DetectInstitutionalHolders filters holder records down to
// institutional-looking names
func (a *Analyzer) DetectInstitutionalHolders(holders []models.HolderRecord) []models.HolderRecord {
	return a.miner.DetectInstitutionalHolders(holders)
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Ensure Analyzer implements RiskService
var _ interfaces.RiskService = (*Analyzer)(nil)
