// Package index maintains the cached A-share symbol universe and serves
// ticker search and peer lookup.
package index

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/bobmcallan/risklens/internal/common"
	"github.com/bobmcallan/risklens/internal/interfaces"
	"github.com/bobmcallan/risklens/internal/models"
)

// DefaultSearchLimit caps searches that arrive without a usable limit
const DefaultSearchLimit = 50

// fuzzyCutoff is the minimum similarity ratio for the fuzzy tier
const fuzzyCutoff = 0.6

// Service implements IndexService. The universe is rebuilt wholesale on
// expiry and swapped under the write lock; in-flight readers keep seeing
// the previous collection.
type Service struct {
	client interfaces.EastmoneyClient
	logger *common.Logger
	ttl    time.Duration

	mu          sync.RWMutex
	records     []models.SymbolRecord
	loadedAt    time.Time
	searchCache map[string][]models.SymbolRecord
}

// NewService creates a new index service
func NewService(client interfaces.EastmoneyClient, logger *common.Logger, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = common.FreshnessStockIndex
	}
	return &Service{
		client:      client,
		logger:      logger,
		ttl:         ttl,
		searchCache: make(map[string][]models.SymbolRecord),
	}
}

// LoadFullIndex returns the cached universe, rebuilding it on expiry.
// Total vendor failure degrades to an empty slice; the failure is not
// cached, so the next call retries.
func (s *Service) LoadFullIndex(ctx context.Context) []models.SymbolRecord {
	s.mu.RLock()
	if len(s.records) > 0 && common.IsFresh(s.loadedAt, s.ttl) {
		records := s.records
		s.mu.RUnlock()
		return records
	}
	s.mu.RUnlock()

	records, err := s.client.GetStockList(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load stock index")
		return []models.SymbolRecord{}
	}
	if len(records) == 0 {
		return []models.SymbolRecord{}
	}

	s.mu.Lock()
	s.records = records
	s.loadedAt = time.Now()
	s.searchCache = make(map[string][]models.SymbolRecord)
	s.mu.Unlock()

	s.logger.Info().Int("symbols", len(records)).Msg("Stock index rebuilt")
	return records
}

// Invalidate drops the cached index so the next call rebuilds it
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.records = nil
	s.loadedAt = time.Time{}
	s.searchCache = make(map[string][]models.SymbolRecord)
	s.mu.Unlock()
}

// Search returns up to limit records matching the query. Tiers are tried
// in order — prefix, contains, fuzzy — and the first non-empty tier wins;
// tiers are never merged. An empty query browses the head of the index.
func (s *Service) Search(ctx context.Context, query string, limit int) []models.SymbolRecord {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	records := s.LoadFullIndex(ctx)
	q := strings.ToLower(strings.TrimSpace(query))

	if len(records) == 0 {
		return []models.SymbolRecord{}
	}
	if q == "" {
		return head(records, limit)
	}

	// Cache key includes the index size so a rebuild can't serve stale hits
	cacheKey := fmt.Sprintf("%s::%d::%d", q, len(records), limit)
	s.mu.RLock()
	if cached, ok := s.searchCache[cacheKey]; ok {
		s.mu.RUnlock()
		return cached
	}
	s.mu.RUnlock()

	result := s.searchTiers(records, query, q, limit)

	// Misses are not cached
	if len(result) > 0 {
		s.mu.Lock()
		s.searchCache[cacheKey] = result
		s.mu.Unlock()
	}

	return result
}

func (s *Service) searchTiers(records []models.SymbolRecord, raw, q string, limit int) []models.SymbolRecord {
	// Tier 1: symbol or name prefix
	var matches []models.SymbolRecord
	for _, r := range records {
		if strings.HasPrefix(strings.ToLower(r.Symbol), q) || strings.HasPrefix(strings.ToLower(r.Name), q) {
			matches = append(matches, r)
			if len(matches) == limit {
				return matches
			}
		}
	}
	if len(matches) > 0 {
		return matches
	}

	// Tier 2: contains over the precomputed "symbol name" search key
	for _, r := range records {
		if strings.Contains(r.SearchKey, q) {
			matches = append(matches, r)
			if len(matches) == limit {
				return matches
			}
		}
	}
	if len(matches) > 0 {
		return matches
	}

	// Tier 3: similarity against name and symbol independently, unioned
	trimmed := strings.TrimSpace(raw)
	for _, r := range records {
		if similarity(trimmed, r.Name) >= fuzzyCutoff || similarity(trimmed, r.Symbol) >= fuzzyCutoff {
			matches = append(matches, r)
			if len(matches) == limit {
				return matches
			}
		}
	}
	if matches == nil {
		return []models.SymbolRecord{}
	}
	return matches
}

// PeersByIndustry returns up to limit records sharing the industry tag,
// excluding the given code. Empty industry yields no peers.
func (s *Service) PeersByIndustry(ctx context.Context, industry, excludeCode string, limit int) []models.SymbolRecord {
	if industry == "" {
		return []models.SymbolRecord{}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	records := s.LoadFullIndex(ctx)
	peers := make([]models.SymbolRecord, 0, limit)
	for _, r := range records {
		if r.Industry == industry && r.Symbol != excludeCode {
			peers = append(peers, r)
			if len(peers) == limit {
				break
			}
		}
	}
	return peers
}

// similarity is a normalized edit-distance ratio in [0, 1], computed over
// runes so CJK names compare correctly.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

func head(records []models.SymbolRecord, limit int) []models.SymbolRecord {
	if len(records) <= limit {
		return records
	}
	return records[:limit]
}

// Ensure Service implements IndexService
var _ interfaces.IndexService = (*Service)(nil)
