package metadata

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadinstitute/all-by-all-aou-browser/models"
	"github.com/broadinstitute/all-by-all-aou-browser/repositories/clickhouse"
)

func stringPtr(value string) *string { return &value }

func TestShapeDefaults(t *testing.T) {
	rows := []clickhouse.AnalysisMetadataRow{
		{AnalysisId: "phenotype_height", AncestryGroup: "eur", NCases: 414000},
	}

	shaped := Shape(rows)
	require.Len(t, shaped, 1)
	entry := shaped[0]
	assert.Equal(t, "height", entry.AnalysisId)
	assert.Equal(t, "AxAoU > Unknown", entry.Category)
	assert.Equal(t, "height", entry.Description)
	assert.Equal(t, "height", entry.DescriptionMore)
	assert.Equal(t, "both_sexes", entry.PhenoSex)
	assert.Equal(t, "unknown", entry.TraitType)
	assert.True(t, entry.KeepPhenoBurden)
	assert.True(t, entry.KeepPhenoSkat)
	assert.True(t, entry.KeepPhenoSkato)
}

func TestShapeKeepsStoredValues(t *testing.T) {
	rows := []clickhouse.AnalysisMetadataRow{
		{
			AnalysisId:    "height",
			AncestryGroup: "meta",
			Category:      stringPtr("Body measurements"),
			Description:   stringPtr("Standing height"),
			PhenoSex:      stringPtr("females"),
			TraitType:     stringPtr("continuous"),
		},
	}

	shaped := Shape(rows)
	require.Len(t, shaped, 1)
	assert.Equal(t, "AxAoU > Body measurements", shaped[0].Category)
	assert.Equal(t, "Standing height", shaped[0].Description)
	assert.Equal(t, "females", shaped[0].PhenoSex)
	assert.Equal(t, "continuous", shaped[0].TraitType)
}

func sampleCatalog() *Catalog {
	return NewCatalog([]models.AnalysisMetadata{
		{AnalysisId: "height", AncestryGroup: "eur", Category: "AxAoU > Body measurements"},
		{AnalysisId: "height", AncestryGroup: "meta", Category: "AxAoU > Body measurements"},
		{AnalysisId: "bmi", AncestryGroup: "meta", Category: "AxAoU > Body measurements"},
		{AnalysisId: "asthma", AncestryGroup: "meta", Category: "AxAoU > Respiratory"},
	})
}

func TestFilterByAncestryCaseInsensitive(t *testing.T) {
	catalog := sampleCatalog()

	filtered := catalog.FilterByAncestry("META")
	assert.Len(t, filtered, 3)
	assert.Equal(t, "meta", filtered[0].AncestryGroup)

	assert.Empty(t, catalog.FilterByAncestry("sas"))
}

func TestFindByAnalysisIdCaseInsensitive(t *testing.T) {
	catalog := sampleCatalog()

	found := catalog.FindByAnalysisId("HEIGHT")
	assert.Len(t, found, 2)

	assert.Empty(t, catalog.FindByAnalysisId("missing"))
}

func TestAnalysisIDsDistinctSorted(t *testing.T) {
	catalog := sampleCatalog()
	assert.Equal(t, []string{"asthma", "bmi", "height"}, catalog.AnalysisIDs())
}

func TestCategoriesGroupedAndSorted(t *testing.T) {
	catalog := sampleCatalog()

	categories := catalog.Categories()
	require.Len(t, categories, 2)

	body := categories[0]
	assert.Equal(t, "AxAoU > Body measurements", body.Category)
	assert.Equal(t, "axaou_category", body.ClassificationGroup)
	assert.Equal(t, []string{"bmi", "height"}, body.Analyses)
	assert.Equal(t, 2, body.AnalysisCount)
	assert.Equal(t, body.Analyses, body.Phenocodes)
	assert.Equal(t, 2, body.PhenoCount)

	assert.Equal(t, "AxAoU > Respiratory", categories[1].Category)
}

func TestCategoryColorDeterministic(t *testing.T) {
	first := CategoryColor("AxAoU > Respiratory")
	second := CategoryColor("AxAoU > Respiratory")
	assert.Equal(t, first, second)
	assert.Regexp(t, regexp.MustCompile(`^#[0-9A-F]{6}$`), first)

	assert.NotEqual(t, CategoryColor("AxAoU > Body measurements"), first)
}
