package assets

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadinstitute/all-by-all-aou-browser/models"
	"github.com/broadinstitute/all-by-all-aou-browser/models/constants/ancestry"
	assetType "github.com/broadinstitute/all-by-all-aou-browser/models/constants/asset-type"
	sequencingType "github.com/broadinstitute/all-by-all-aou-browser/models/constants/sequencing-type"
)

func stringPtr(value string) *string { return &value }

func sampleAssets() []models.AnalysisAsset {
	return []models.AnalysisAsset{
		{
			Id:             HashID("height", ancestry.EUR, sequencingType.Exome),
			AncestryGroup:  ancestry.EUR,
			AnalysisId:     "height",
			Uri:            "gs://aou_results/414k/ht_results/EUR/phenotype_height/exome_variant_results.ht",
			AssetType:      assetType.Variant,
			SequencingType: sequencingType.Exome,
		},
		{
			Id:            HashID("height", ancestry.EUR, sequencingType.Unknown),
			AncestryGroup: ancestry.EUR,
			AnalysisId:    "height",
			Uri:           "gs://aou_results/414k/ht_results/EUR/phenotype_height/gene_results.ht",
			AssetType:     assetType.Gene,
		},
		{
			Id:             HashID("bmi", ancestry.Meta, sequencingType.Genome),
			AncestryGroup:  ancestry.Meta,
			AnalysisId:     "bmi",
			Uri:            "gs://aou_results/414k/ht_results/META/phenotype_bmi/genome_variant_results.ht",
			AssetType:      assetType.VariantExpectedP,
			SequencingType: sequencingType.Genome,
		},
	}
}

func serviceWithAssets(assets []models.AnalysisAsset) *Service {
	s := NewService(nil, "", func() map[string]bool { return nil })
	s.assets = assets
	s.discoveredAt = time.Now().UTC()
	return s
}

func TestNormalizeAnalysisID(t *testing.T) {
	assert.Equal(t, "height", NormalizeAnalysisID("phenotype_height"))
	assert.Equal(t, "height", NormalizeAnalysisID("height"))
}

func TestHashIDStable(t *testing.T) {
	first := HashID("height", ancestry.EUR, sequencingType.Exome)
	second := HashID("height", ancestry.EUR, sequencingType.Exome)
	assert.Equal(t, first, second)
	assert.Len(t, first, 12)

	other := HashID("height", ancestry.EUR, sequencingType.Genome)
	assert.NotEqual(t, first, other)
}

func TestKnownAssetNames(t *testing.T) {
	name, ok := knownAssetNames["exome_variant_results.ht"]
	require.True(t, ok)
	assert.Equal(t, assetType.Variant, name.AssetType)
	assert.Equal(t, sequencingType.Exome, name.SequencingType)

	name, ok = knownAssetNames["gene_results.ht"]
	require.True(t, ok)
	assert.Equal(t, sequencingType.Unknown, name.SequencingType)

	_, ok = knownAssetNames["something_else.ht"]
	assert.False(t, ok)
}

func TestLastSegment(t *testing.T) {
	assert.Equal(t, "phenotype_height", lastSegment("414k/ht_results/EUR/phenotype_height/"))
	assert.Equal(t, "gene_results.ht", lastSegment("a/b/gene_results.ht"))
}

func TestValidPhenotypeSet(t *testing.T) {
	valid := ValidPhenotypeSet([]string{"height"})
	assert.True(t, valid["height"])
	assert.True(t, valid["phenotype_height"])
	assert.False(t, valid["bmi"])
}

func TestFilteredByAncestryCaseInsensitive(t *testing.T) {
	s := serviceWithAssets(sampleAssets())

	filtered := s.Filtered(Filter{AncestryGroup: stringPtr("EUR")})
	assert.Len(t, filtered, 2)

	filtered = s.Filtered(Filter{AncestryGroup: stringPtr("meta")})
	require.Len(t, filtered, 1)
	assert.Equal(t, "bmi", filtered[0].AnalysisId)
}

func TestFilteredByAssetTypeSubstring(t *testing.T) {
	s := serviceWithAssets(sampleAssets())

	filtered := s.Filtered(Filter{AssetType: stringPtr("variant")})
	assert.Len(t, filtered, 2)

	filtered = s.Filtered(Filter{AssetType: stringPtr("expected")})
	require.Len(t, filtered, 1)
	assert.Equal(t, "bmi", filtered[0].AnalysisId)
}

func TestFilteredBySequencingTypeEmptyMatchesNone(t *testing.T) {
	s := serviceWithAssets(sampleAssets())

	filtered := s.Filtered(Filter{SequencingType: stringPtr("exome")})
	assert.Len(t, filtered, 1)

	filtered = s.Filtered(Filter{SequencingType: stringPtr("")})
	require.Len(t, filtered, 1)
	assert.Equal(t, "gene_results.ht", filepath.Base(filtered[0].Uri))
}

func TestFilteredByAnalysisId(t *testing.T) {
	s := serviceWithAssets(sampleAssets())
	filtered := s.Filtered(Filter{AnalysisId: stringPtr("HEIGHT")})
	assert.Len(t, filtered, 2)
}

func TestSummary(t *testing.T) {
	s := serviceWithAssets(sampleAssets())
	summary := s.Summary()

	assert.Equal(t, 3, summary.TotalAssets)
	assert.Equal(t, 2, summary.TotalPhenotypes)
	assert.Equal(t, 2, summary.ByAncestry["eur"])
	assert.Equal(t, 1, summary.ByAncestry["meta"])
	assert.Equal(t, 1, summary.ByAssetType["gene"])
	assert.Equal(t, 1, summary.BySequencingType["exome"])
	assert.NotContains(t, summary.BySequencingType, "")
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.json")

	source := serviceWithAssets(sampleAssets())
	source.filePath = path
	require.NoError(t, source.saveSnapshot())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(contents, &snapshot))
	assert.Len(t, snapshot.Assets, 3)

	restored := NewService(nil, path, func() map[string]bool { return nil })
	require.NoError(t, restored.loadSnapshot())
	assert.Equal(t, source.All(), restored.All())
}
