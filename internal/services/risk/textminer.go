package risk

import (
	"regexp"
	"strings"

	"github.com/bobmcallan/risklens/internal/common"
	"github.com/bobmcallan/risklens/internal/models"
)

// Default partner-extraction vocabulary, used when config omits its own
var (
	defaultConnectors = []string{"与", "和", "及"}
	defaultVerbs      = []string{"合作", "参股", "共同", "投资"}
	defaultMarkers    = []string{"有限", "公司", "基金", "证券", "资产"}
)

// TextMiner extracts partner entities from company descriptions and
// detects institutional holders in shareholder tables. Pattern and
// keyword lists come from configuration so vocabularies are data.
type TextMiner struct {
	partnerRe          *regexp.Regexp
	institutionMarkers []string
}

// NewTextMiner builds a miner from the risk config section
func NewTextMiner(cfg common.RiskConfig) *TextMiner {
	connectors := cfg.PartnerConnectors
	if len(connectors) == 0 {
		connectors = defaultConnectors
	}
	verbs := cfg.PartnerVerbs
	if len(verbs) == 0 {
		verbs = defaultVerbs
	}
	markers := cfg.InstitutionMarkers
	if len(markers) == 0 {
		markers = defaultMarkers
	}

	return &TextMiner{
		partnerRe:          compilePartnerPattern(connectors, verbs),
		institutionMarkers: markers,
	}
}

// compilePartnerPattern builds the "(connector)(entity)(verb)" pattern.
// The entity capture is 2 to 40 chars stopping at CJK punctuation.
func compilePartnerPattern(connectors, verbs []string) *regexp.Regexp {
	pattern := "(" + strings.Join(escapeAll(connectors), "|") + ")" +
		"([^，。；]{2,40})" +
		"(" + strings.Join(escapeAll(verbs), "|") + ")"
	re, err := regexp.Compile(pattern)
	if err != nil {
		// Misconfigured vocabulary falls back to the default pattern
		return regexp.MustCompile(`(与|和|及)([^，。；]{2,40})(合作|参股|共同|投资)`)
	}
	return re
}

func escapeAll(tokens []string) []string {
	escaped := make([]string, len(tokens))
	for i, t := range tokens {
		escaped[i] = regexp.QuoteMeta(t)
	}
	return escaped
}

// ExtractPartners returns the entity capture of every pattern match, in
// match order, duplicates preserved. Empty or placeholder text yields an
// empty result.
func (m *TextMiner) ExtractPartners(text string) []string {
	if text == "" || text == "None" {
		return []string{}
	}

	matches := m.partnerRe.FindAllStringSubmatch(text, -1)
	partners := make([]string, 0, len(matches))
	for _, match := range matches {
		partners = append(partners, strings.TrimSpace(match[2]))
	}
	return partners
}

// DetectInstitutionalHolders keeps only holder records whose name carries
// an institutional suffix marker. Empty input yields an empty result.
func (m *TextMiner) DetectInstitutionalHolders(holders []models.HolderRecord) []models.HolderRecord {
	result := make([]models.HolderRecord, 0, len(holders))
	for _, h := range holders {
		if containsAny(h.HolderName, m.institutionMarkers) {
			result = append(result, h)
		}
	}
	return result
}
