package clickhouse

import (
	"context"
	"fmt"

	"github.com/broadinstitute/all-by-all-aou-browser/apperrors"
	"github.com/broadinstitute/all-by-all-aou-browser/models/dtos"
)

// peakBinSize groups significant variants into 1Mb Manhattan peaks.
const peakBinSize = 1_000_000

// peakGeneWindow is the half-width of the candidate-gene search window
// around a peak position.
const peakGeneWindow = 200_000

// PeakRow is one (peak, candidate gene) pair from the peaks query.
// ClickHouse fills join misses with type defaults, so a peak with no
// nearby gene arrives as a row with an empty gene_symbol.
type PeakRow struct {
	Contig             string   `db:"contig"`
	PeakPosition       int64    `db:"peak_position"`
	PeakPvalue         float64  `db:"peak_pvalue"`
	GeneSymbol         string   `db:"gene_symbol"`
	GeneId             string   `db:"gene_id"`
	DistanceKb         float64  `db:"distance_kb"`
	CodingVariantCount uint64   `db:"coding_variant_count"`
	BurdenPvalue       *float64 `db:"burden_pvalue"`
	BurdenBeta         *float64 `db:"burden_beta"`
}

// Peaks bins the significant variants of one analysis into 1Mb peaks
// and annotates each peak with nearby genes, per-gene coding hit counts
// and pLoF burden results. The annotation join is prefiltered to the
// phenotype's own xpos set to keep it off the full annotation table.
func (r *Repository) Peaks(ctx context.Context, phenotype string, ancestry string, sequencingType string, nPeaks int) ([]dtos.Peak, error) {
	query := fmt.Sprintf(`
WITH
peak_variants AS (
    SELECT sv.contig AS contig,
           sv.position AS position,
           sv.pvalue AS pvalue,
           ann.gene_symbol AS gene_symbol
    FROM significant_variants sv
    LEFT JOIN (
        SELECT xpos, ref, alt, gene_symbol
        FROM %s
        WHERE xpos IN (SELECT xpos FROM significant_variants WHERE phenotype = ?)
    ) ann ON sv.xpos = ann.xpos AND sv.ref = ann.ref AND sv.alt = ann.alt
    WHERE sv.phenotype = ? AND sv.ancestry = ? AND sv.sequencing_type = ?
),
peaks AS (
    SELECT contig,
           intDiv(position, %d) AS bin,
           min(pvalue) AS peak_pvalue,
           argMin(position, pvalue) AS peak_position
    FROM peak_variants
    GROUP BY contig, bin
    ORDER BY peak_pvalue ASC
    LIMIT ?
),
locus_genes AS (
    SELECT p.contig AS contig,
           p.peak_position AS peak_position,
           gm.symbol AS gene_symbol,
           gm.gene_id AS gene_id,
           abs(((gm.start + gm.stop) / 2) - p.peak_position) / 1000.0 AS distance_kb
    FROM peaks p
    INNER JOIN gene_models gm
        ON gm.chrom = concat('chr', replaceOne(p.contig, 'chr', ''))
    WHERE gm.stop >= p.peak_position - %d
      AND gm.start <= p.peak_position + %d
      AND gm.symbol != ''
      AND NOT startsWith(gm.symbol, 'ENSG')
),
coding_variants AS (
    SELECT contig,
           intDiv(position, %d) AS bin,
           gene_symbol,
           count() AS coding_variant_count
    FROM peak_variants
    WHERE gene_symbol IS NOT NULL AND gene_symbol != ''
    GROUP BY contig, bin, gene_symbol
),
burden AS (
    SELECT gene_id,
           min(pvalue_burden) AS burden_pvalue,
           argMin(beta_burden, pvalue_burden) AS burden_beta
    FROM gene_associations
    WHERE phenotype = ? AND ancestry = ? AND annotation = 'pLoF'
    GROUP BY gene_id
)
SELECT p.contig AS contig,
       p.peak_position AS peak_position,
       p.peak_pvalue AS peak_pvalue,
       lg.gene_symbol AS gene_symbol,
       lg.gene_id AS gene_id,
       lg.distance_kb AS distance_kb,
       cv.coding_variant_count AS coding_variant_count,
       b.burden_pvalue AS burden_pvalue,
       b.burden_beta AS burden_beta
FROM peaks p
LEFT JOIN locus_genes lg
    ON lg.contig = p.contig AND lg.peak_position = p.peak_position
LEFT JOIN coding_variants cv
    ON cv.contig = p.contig
   AND cv.bin = intDiv(p.peak_position, %d)
   AND cv.gene_symbol = lg.gene_symbol
LEFT JOIN burden b ON b.gene_id = lg.gene_id
ORDER BY p.peak_pvalue ASC, lg.distance_kb ASC`,
		annotationTable(sequencingType),
		peakBinSize, peakGeneWindow, peakGeneWindow, peakBinSize, peakBinSize)

	var rows []PeakRow
	if err := r.db.SelectContext(ctx, &rows, query,
		phenotype, phenotype, ancestry, normalizeSequencingType(sequencingType),
		nPeaks, phenotype, ancestry); err != nil {
		return nil, apperrors.DataTransform("peaks query failed: %v", err)
	}

	return foldPeakRows(rows), nil
}

// foldPeakRows collapses the flattened (peak, gene) pairs back into one
// record per peak. Rows arrive grouped by peak, so a single forward
// pass suffices. The peak list is gene-centric: a join-miss row (empty
// gene_symbol) means no gene fell inside the window, and that
// variant-only peak is not surfaced at all.
func foldPeakRows(rows []PeakRow) []dtos.Peak {
	peaks := make([]dtos.Peak, 0)
	for _, row := range rows {
		if row.GeneSymbol == "" {
			continue
		}
		last := len(peaks) - 1
		if last < 0 || peaks[last].Contig != row.Contig || peaks[last].Position != row.PeakPosition {
			peaks = append(peaks, dtos.Peak{
				Contig:   row.Contig,
				Position: row.PeakPosition,
				Pvalue:   row.PeakPvalue,
				Genes:    []dtos.PeakGene{},
			})
			last++
		}
		peaks[last].Genes = append(peaks[last].Genes, dtos.PeakGene{
			GeneSymbol:         row.GeneSymbol,
			GeneId:             row.GeneId,
			DistanceKb:         row.DistanceKb,
			CodingVariantCount: row.CodingVariantCount,
			BurdenPvalue:       nullifyNaN(row.BurdenPvalue),
			BurdenBeta:         nullifyNaN(row.BurdenBeta),
		})
	}
	return peaks
}
