// Package overview folds the genome peaks, exome peaks and significant
// gene burden tests of one analysis into a single list of unified loci
// for the phenotype landing page.
package overview

import (
	"fmt"
	"math"
	"sort"

	"github.com/broadinstitute/all-by-all-aou-browser/models/dtos"
	"github.com/broadinstitute/all-by-all-aou-browser/repositories/clickhouse"
)

// BurdenThreshold is the significance cutoff applied to each of the
// three gene burden test p-values.
const BurdenThreshold = 2.5e-6

// PeakCount is how many peaks per sequencing type feed the overview.
const PeakCount = 10000

// locusBinSize matches the peak binning of the repository layer.
const locusBinSize = 1_000_000

// BurdenResult is one gene burden test attached to a unified gene.
type BurdenResult struct {
	Annotation   string   `json:"annotation"`
	Pvalue       *float64 `json:"pvalue"`
	PvalueBurden *float64 `json:"pvalue_burden"`
	PvalueSkat   *float64 `json:"pvalue_skat"`
}

// UnifiedGene is one candidate gene within a unified locus, carrying
// per-sequencing-type coding hit counts when present.
type UnifiedGene struct {
	GeneSymbol               string         `json:"gene_symbol"`
	GeneId                   string         `json:"gene_id"`
	DistanceKb               float64        `json:"distance_kb"`
	CodingVariantCountGenome *uint64        `json:"coding_variant_count_genome,omitempty"`
	CodingVariantCountExome  *uint64        `json:"coding_variant_count_exome,omitempty"`
	BurdenResults            []BurdenResult `json:"burden_results"`
}

// UnifiedLocus is one 1Mb bin with evidence from any combination of
// genome peaks, exome peaks and gene burden tests. A burden-only locus
// has nil single-variant p-values.
type UnifiedLocus struct {
	Contig       string        `json:"contig"`
	Position     int64         `json:"position"`
	PvalueGenome *float64      `json:"pvalue_genome"`
	PvalueExome  *float64      `json:"pvalue_exome"`
	Genes        []UnifiedGene `json:"genes"`
}

// Response is the overview payload.
type Response struct {
	GenomeImageUrl string         `json:"genome_image_url"`
	ExomeImageUrl  string         `json:"exome_image_url"`
	UnifiedLoci    []UnifiedLocus `json:"unified_loci"`
}

func locusKey(contig string, position int64) string {
	return fmt.Sprintf("%s-%d", contig, position/locusBinSize)
}

func peakGeneToUnified(gene dtos.PeakGene) UnifiedGene {
	unified := UnifiedGene{
		GeneSymbol:    gene.GeneSymbol,
		GeneId:        gene.GeneId,
		DistanceKb:    gene.DistanceKb,
		BurdenResults: []BurdenResult{},
	}
	if gene.BurdenPvalue != nil {
		unified.BurdenResults = append(unified.BurdenResults, BurdenResult{
			Annotation:   "pLoF",
			PvalueBurden: gene.BurdenPvalue,
		})
	}
	return unified
}

func hasAnnotation(results []BurdenResult, annotation string) bool {
	for _, result := range results {
		if result.Annotation == annotation {
			return true
		}
	}
	return false
}

// merger accumulates unified loci keyed by (contig, 1Mb bin) while
// preserving a stable slice for the final sort.
type merger struct {
	loci    []UnifiedLocus
	indexOf map[string]int
}

func newMerger() *merger {
	return &merger{indexOf: map[string]int{}}
}

func (m *merger) locusAt(contig string, position int64) *UnifiedLocus {
	key := locusKey(contig, position)
	if idx, ok := m.indexOf[key]; ok {
		return &m.loci[idx]
	}
	m.loci = append(m.loci, UnifiedLocus{
		Contig:   contig,
		Position: position,
		Genes:    []UnifiedGene{},
	})
	m.indexOf[key] = len(m.loci) - 1
	return &m.loci[len(m.loci)-1]
}

func (m *merger) geneAt(locus *UnifiedLocus, geneID string) *UnifiedGene {
	for i := range locus.Genes {
		if locus.Genes[i].GeneId == geneID {
			return &locus.Genes[i]
		}
	}
	return nil
}

func minPointer(current *float64, candidate float64) *float64 {
	if current == nil || candidate < *current {
		return &candidate
	}
	return current
}

// Merge builds the unified locus list. Genome peaks seed the bins,
// exome peaks merge into them, and significant burden tests attach to
// existing bins or open burden-only ones.
func Merge(genomePeaks []dtos.Peak, exomePeaks []dtos.Peak, burdenRows []clickhouse.SignificantBurdenRow) []UnifiedLocus {
	m := newMerger()

	for _, peak := range genomePeaks {
		pvalue := peak.Pvalue
		locus := m.locusAt(peak.Contig, peak.Position)
		locus.PvalueGenome = minPointer(locus.PvalueGenome, pvalue)
		for _, gene := range peak.Genes {
			unified := peakGeneToUnified(gene)
			if gene.CodingVariantCount > 0 {
				count := gene.CodingVariantCount
				unified.CodingVariantCountGenome = &count
			}
			locus.Genes = append(locus.Genes, unified)
		}
	}

	for _, peak := range exomePeaks {
		locus := m.locusAt(peak.Contig, peak.Position)
		locus.PvalueExome = minPointer(locus.PvalueExome, peak.Pvalue)
		for _, gene := range peak.Genes {
			existing := m.geneAt(locus, gene.GeneId)
			if existing == nil {
				unified := peakGeneToUnified(gene)
				if gene.CodingVariantCount > 0 {
					count := gene.CodingVariantCount
					unified.CodingVariantCountExome = &count
				}
				locus.Genes = append(locus.Genes, unified)
				continue
			}
			if gene.CodingVariantCount > 0 {
				count := gene.CodingVariantCount
				existing.CodingVariantCountExome = &count
			}
			if gene.BurdenPvalue != nil && !hasAnnotation(existing.BurdenResults, "pLoF") {
				existing.BurdenResults = append(existing.BurdenResults, BurdenResult{
					Annotation:   "pLoF",
					PvalueBurden: gene.BurdenPvalue,
				})
			}
		}
	}

	attachBurdenRows(m, burdenRows)

	sort.SliceStable(m.loci, func(i, j int) bool {
		return bestPvalue(m.loci[i]) < bestPvalue(m.loci[j])
	})
	return m.loci
}

// attachBurdenRows groups the burden hits by gene and folds each group
// into the bin of the gene's start position.
func attachBurdenRows(m *merger, rows []clickhouse.SignificantBurdenRow) {
	byGene := map[string][]clickhouse.SignificantBurdenRow{}
	order := []string{}
	for _, row := range rows {
		if _, seen := byGene[row.GeneId]; !seen {
			order = append(order, row.GeneId)
		}
		byGene[row.GeneId] = append(byGene[row.GeneId], row)
	}

	for _, geneID := range order {
		group := byGene[geneID]
		first := group[0]
		locus := m.locusAt(first.Contig, int64(first.GeneStartPosition))

		gene := m.geneAt(locus, geneID)
		if gene == nil {
			locus.Genes = append(locus.Genes, UnifiedGene{
				GeneSymbol:    first.GeneSymbol,
				GeneId:        geneID,
				DistanceKb:    0,
				BurdenResults: []BurdenResult{},
			})
			gene = &locus.Genes[len(locus.Genes)-1]
		}

		for _, row := range group {
			if hasAnnotation(gene.BurdenResults, row.Annotation) {
				continue
			}
			gene.BurdenResults = append(gene.BurdenResults, BurdenResult{
				Annotation:   row.Annotation,
				Pvalue:       row.Pvalue,
				PvalueBurden: row.PvalueBurden,
				PvalueSkat:   row.PvalueSkat,
			})
		}
	}
}

func bestPvalue(locus UnifiedLocus) float64 {
	best := math.MaxFloat64
	if locus.PvalueGenome != nil && *locus.PvalueGenome < best {
		best = *locus.PvalueGenome
	}
	if locus.PvalueExome != nil && *locus.PvalueExome < best {
		best = *locus.PvalueExome
	}
	return best
}
