package assets

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	linq "github.com/ahmetb/go-linq"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/broadinstitute/all-by-all-aou-browser/logger"
	"github.com/broadinstitute/all-by-all-aou-browser/models"
	"github.com/broadinstitute/all-by-all-aou-browser/models/dtos"
)

// Filter narrows the cached inventory. Nil fields are not applied; an
// empty SequencingType matches assets with no sequencing type (the
// gene tables).
type Filter struct {
	AncestryGroup  *string
	AssetType      *string
	SequencingType *string
	AnalysisId     *string
}

// Snapshot is the JSON layout of the on-disk inventory file.
type Snapshot struct {
	DiscoveredAt time.Time              `json:"discovered_at"`
	Assets       []models.AnalysisAsset `json:"assets"`
}

// Service holds the discovered inventory behind a read-write lock and
// refreshes it on demand or on a schedule.
type Service struct {
	discoverer *Discoverer
	filePath   string

	mu           sync.RWMutex
	assets       []models.AnalysisAsset
	discoveredAt time.Time

	// recomputed by the caller on each refresh
	validPhenotypes func() map[string]bool

	scheduler *gocron.Scheduler
}

func NewService(discoverer *Discoverer, filePath string, validPhenotypes func() map[string]bool) *Service {
	return &Service{
		discoverer:      discoverer,
		filePath:        filePath,
		validPhenotypes: validPhenotypes,
	}
}

// ValidPhenotypeSet builds the directory-name whitelist from analysis
// ids, accepting both the bare and the "phenotype_"-prefixed spellings.
func ValidPhenotypeSet(analysisIDs []string) map[string]bool {
	valid := make(map[string]bool, 2*len(analysisIDs))
	for _, id := range analysisIDs {
		valid[id] = true
		valid["phenotype_"+id] = true
	}
	return valid
}

// EnsureLoaded fills the cache on first use: from the snapshot file
// when one exists, otherwise by a full discovery scan.
func (s *Service) EnsureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.assets != nil
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	if s.filePath != "" {
		if err := s.loadSnapshot(); err == nil {
			return nil
		} else if !os.IsNotExist(err) {
			logger.Warn("Unreadable assets snapshot, rediscovering",
				zap.String("path", s.filePath), zap.Error(err))
		}
	}
	return s.Refresh(ctx)
}

// Refresh runs a full discovery scan and replaces the cache.
func (s *Service) Refresh(ctx context.Context) error {
	discovered, err := s.discoverer.Discover(ctx, s.validPhenotypes())
	if err != nil {
		return err
	}
	if discovered == nil {
		discovered = []models.AnalysisAsset{}
	}

	s.mu.Lock()
	s.assets = discovered
	s.discoveredAt = time.Now().UTC()
	s.mu.Unlock()

	if s.filePath != "" {
		if err := s.saveSnapshot(); err != nil {
			logger.Warn("Failed to write assets snapshot",
				zap.String("path", s.filePath), zap.Error(err))
		}
	}
	return nil
}

func (s *Service) loadSnapshot() error {
	contents, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(contents, &snapshot); err != nil {
		return err
	}

	s.mu.Lock()
	s.assets = snapshot.Assets
	s.discoveredAt = snapshot.DiscoveredAt
	s.mu.Unlock()

	logger.Info("Loaded assets snapshot",
		zap.String("path", s.filePath),
		zap.Int("assets", len(snapshot.Assets)),
		zap.Time("discovered_at", snapshot.DiscoveredAt))
	return nil
}

func (s *Service) saveSnapshot() error {
	s.mu.RLock()
	snapshot := Snapshot{DiscoveredAt: s.discoveredAt, Assets: s.assets}
	s.mu.RUnlock()

	contents, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, contents, 0644)
}

// All returns a copy of the cached inventory.
func (s *Service) All() []models.AnalysisAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]models.AnalysisAsset, len(s.assets))
	copy(copied, s.assets)
	return copied
}

// Matches applies one filter to one asset.
func Matches(asset models.AnalysisAsset, filter Filter) bool {
	if filter.AncestryGroup != nil &&
		!strings.EqualFold(string(asset.AncestryGroup), *filter.AncestryGroup) {
		return false
	}
	if filter.AssetType != nil &&
		!strings.Contains(strings.ToLower(string(asset.AssetType)), strings.ToLower(*filter.AssetType)) {
		return false
	}
	if filter.SequencingType != nil &&
		!strings.EqualFold(string(asset.SequencingType), *filter.SequencingType) {
		return false
	}
	if filter.AnalysisId != nil &&
		!strings.EqualFold(asset.AnalysisId, *filter.AnalysisId) {
		return false
	}
	return true
}

// Filtered lists the cached assets passing the filter.
func (s *Service) Filtered(filter Filter) []models.AnalysisAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := []models.AnalysisAsset{}
	linq.From(s.assets).
		WhereT(func(asset models.AnalysisAsset) bool { return Matches(asset, filter) }).
		ToSlice(&filtered)
	return filtered
}

// Summary aggregates the cached inventory by ancestry, asset type and
// sequencing type.
func (s *Service) Summary() dtos.AssetsSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := dtos.AssetsSummary{
		TotalAssets:      len(s.assets),
		ByAncestry:       map[string]int{},
		ByAssetType:      map[string]int{},
		BySequencingType: map[string]int{},
	}

	summary.TotalPhenotypes = linq.From(s.assets).
		SelectT(func(asset models.AnalysisAsset) string { return asset.AnalysisId }).
		Distinct().
		Count()

	for _, asset := range s.assets {
		summary.ByAncestry[string(asset.AncestryGroup)]++
		summary.ByAssetType[string(asset.AssetType)]++
		if asset.SequencingType != "" {
			summary.BySequencingType[string(asset.SequencingType)]++
		}
	}
	return summary
}

// StartScheduledRefresh refreshes the inventory every refreshHours
// hours until Stop is called. A zero interval disables scheduling.
func (s *Service) StartScheduledRefresh(refreshHours int) {
	if refreshHours <= 0 {
		return
	}
	s.scheduler = gocron.NewScheduler(time.UTC)
	s.scheduler.Every(refreshHours).Hours().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			logger.Error("Scheduled asset refresh failed", zap.Error(err))
		}
	})
	s.scheduler.StartAsync()
	logger.Info("Scheduled asset refresh", zap.Int("every_hours", refreshHours))
}

// Stop halts the background refresh scheduler.
func (s *Service) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
