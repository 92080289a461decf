// Package metadata shapes the analysis_metadata table into the
// in-memory catalog behind the analyses and categories endpoints.
package metadata

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"

	linq "github.com/ahmetb/go-linq"

	"github.com/broadinstitute/all-by-all-aou-browser/models"
	"github.com/broadinstitute/all-by-all-aou-browser/repositories/clickhouse"
)

// categoryPrefix brands every stored category for the client's grouped
// navigation.
const categoryPrefix = "AxAoU > "

// Shape applies the catalog defaults to raw metadata rows: analysis ids
// lose their storage prefix, missing categories become Unknown, and a
// missing description falls back to the analysis id.
func Shape(rows []clickhouse.AnalysisMetadataRow) []models.AnalysisMetadata {
	shaped := make([]models.AnalysisMetadata, 0, len(rows))
	for _, row := range rows {
		analysisID := strings.TrimPrefix(row.AnalysisId, "phenotype_")

		category := "Unknown"
		if row.Category != nil && *row.Category != "" {
			category = *row.Category
		}

		description := analysisID
		if row.Description != nil && *row.Description != "" {
			description = *row.Description
		}

		phenoSex := "both_sexes"
		if row.PhenoSex != nil && *row.PhenoSex != "" {
			phenoSex = *row.PhenoSex
		}

		traitType := "unknown"
		if row.TraitType != nil && *row.TraitType != "" {
			traitType = *row.TraitType
		}

		shaped = append(shaped, models.AnalysisMetadata{
			AnalysisId:         analysisID,
			AncestryGroup:      row.AncestryGroup,
			Category:           categoryPrefix + category,
			Description:        description,
			DescriptionMore:    description,
			KeepPhenoBurden:    true,
			KeepPhenoSkat:      true,
			KeepPhenoSkato:     true,
			LambdaGcAcaf:       row.LambdaGcAcaf,
			LambdaGcExome:      row.LambdaGcExome,
			LambdaGcGeneBurden: row.LambdaGcGeneBurden,
			NCases:             row.NCases,
			NControls:          row.NControls,
			PhenoSex:           phenoSex,
			TraitType:          traitType,
		})
	}
	return shaped
}

// Catalog is the immutable shaped metadata loaded at boot.
type Catalog struct {
	analyses []models.AnalysisMetadata
}

func NewCatalog(analyses []models.AnalysisMetadata) *Catalog {
	return &Catalog{analyses: analyses}
}

// All returns every catalog entry.
func (c *Catalog) All() []models.AnalysisMetadata {
	return c.analyses
}

// FilterByAncestry lists the entries of one ancestry group, matched
// case-insensitively while preserving the stored spelling.
func (c *Catalog) FilterByAncestry(ancestryGroup string) []models.AnalysisMetadata {
	filtered := []models.AnalysisMetadata{}
	linq.From(c.analyses).
		WhereT(func(entry models.AnalysisMetadata) bool {
			return strings.EqualFold(entry.AncestryGroup, ancestryGroup)
		}).
		ToSlice(&filtered)
	return filtered
}

// FindByAnalysisId lists the entries of one analysis across ancestries,
// matched case-insensitively.
func (c *Catalog) FindByAnalysisId(analysisID string) []models.AnalysisMetadata {
	found := []models.AnalysisMetadata{}
	linq.From(c.analyses).
		WhereT(func(entry models.AnalysisMetadata) bool {
			return strings.EqualFold(entry.AnalysisId, analysisID)
		}).
		ToSlice(&found)
	return found
}

// AnalysisIDs lists the distinct analysis ids in the catalog.
func (c *Catalog) AnalysisIDs() []string {
	ids := []string{}
	linq.From(c.analyses).
		SelectT(func(entry models.AnalysisMetadata) string { return entry.AnalysisId }).
		Distinct().
		Sort(func(a, b interface{}) bool { return a.(string) < b.(string) }).
		ToSlice(&ids)
	return ids
}

// Categories groups the catalog by category, each with its sorted,
// deduplicated analysis list and a stable display color.
func (c *Catalog) Categories() []models.AnalysisCategory {
	byCategory := map[string]map[string]bool{}
	for _, entry := range c.analyses {
		if byCategory[entry.Category] == nil {
			byCategory[entry.Category] = map[string]bool{}
		}
		byCategory[entry.Category][entry.AnalysisId] = true
	}

	categories := make([]models.AnalysisCategory, 0, len(byCategory))
	for category, analysisSet := range byCategory {
		analyses := make([]string, 0, len(analysisSet))
		for analysisID := range analysisSet {
			analyses = append(analyses, analysisID)
		}
		sort.Strings(analyses)

		categories = append(categories, models.AnalysisCategory{
			Category:            category,
			ClassificationGroup: "axaou_category",
			Color:               CategoryColor(category),
			Analyses:            analyses,
			AnalysisCount:       len(analyses),
			Phenocodes:          analyses,
			PhenoCount:          len(analyses),
		})
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Category < categories[j].Category
	})
	return categories
}

// CategoryColor derives a stable display color from the category name:
// the name hashes to a hue, which renders at fixed saturation and
// lightness.
func CategoryColor(category string) string {
	hasher := fnv.New64a()
	hasher.Write([]byte(category))
	hue := float64(hasher.Sum64() % 360)
	red, green, blue := hslToRgb(hue, 0.65, 0.55)
	return fmt.Sprintf("#%02X%02X%02X", red, green, blue)
}

func hslToRgb(hue float64, saturation float64, lightness float64) (uint8, uint8, uint8) {
	chroma := (1 - math.Abs(2*lightness-1)) * saturation
	huePrime := hue / 60
	x := chroma * (1 - math.Abs(math.Mod(huePrime, 2)-1))

	var r, g, b float64
	switch {
	case huePrime < 1:
		r, g, b = chroma, x, 0
	case huePrime < 2:
		r, g, b = x, chroma, 0
	case huePrime < 3:
		r, g, b = 0, chroma, x
	case huePrime < 4:
		r, g, b = 0, x, chroma
	case huePrime < 5:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}

	m := lightness - chroma/2
	return uint8(math.Round((r + m) * 255)),
		uint8(math.Round((g + m) * 255)),
		uint8(math.Round((b + m) * 255))
}
