package clickhouse

import (
	"context"

	"github.com/broadinstitute/all-by-all-aou-browser/apperrors"
	"github.com/broadinstitute/all-by-all-aou-browser/models/dtos"
	"github.com/broadinstitute/all-by-all-aou-browser/xpos"
)

// Loci lists the merged significant loci of one analysis.
func (r *Repository) Loci(ctx context.Context, phenotype string, ancestry string) ([]LocusRow, error) {
	var rows []LocusRow
	query := `
SELECT locus_id, phenotype, ancestry, contig, start, stop, xstart, xstop,
       source, lead_variant, lead_pvalue, exome_count, genome_count, plot_gcs_uri
FROM loci
WHERE phenotype = ? AND ancestry = ?`
	if err := r.db.SelectContext(ctx, &rows, query, phenotype, ancestry); err != nil {
		return nil, apperrors.DataTransform("loci query failed: %v", err)
	}
	return rows, nil
}

// LocusVariants lists the rendering points of one locus, in position
// order for the regional plot.
func (r *Repository) LocusVariants(ctx context.Context, phenotype string, locusID string, ancestry string, sequencingType string) ([]LocusVariantRow, error) {
	var rows []LocusVariantRow
	query := `
SELECT xpos, position, pvalue, neg_log10_p, is_significant
FROM loci_variants
WHERE phenotype = ? AND locus_id = ? AND ancestry = ? AND sequencing_type = ?
ORDER BY position`
	if err := r.db.SelectContext(ctx, &rows, query,
		phenotype, locusID, ancestry, normalizeSequencingType(sequencingType)); err != nil {
		return nil, apperrors.DataTransform("locus variants query failed: %v", err)
	}
	return rows, nil
}

// SignificantLocusVariants lists the genome-wide significant points of
// one analysis across all loci.
func (r *Repository) SignificantLocusVariants(ctx context.Context, phenotype string, ancestry string, sequencingType string, limit int) ([]LocusVariantExtendedRow, error) {
	query := `
SELECT locus_id, xpos, position, pvalue, neg_log10_p, is_significant
FROM loci_variants
WHERE phenotype = ? AND ancestry = ?`
	args := []interface{}{phenotype, ancestry}
	if sequencingType != "" {
		query += " AND sequencing_type = ?"
		args = append(args, normalizeSequencingType(sequencingType))
	}
	query += " AND is_significant = true ORDER BY pvalue ASC LIMIT ?"
	args = append(args, limit)

	var rows []LocusVariantExtendedRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.DataTransform("significant variants query failed: %v", err)
	}
	return rows, nil
}

// Plots lists every pre-rendered plot registered for one phenotype.
func (r *Repository) Plots(ctx context.Context, phenotype string) ([]PlotRow, error) {
	var rows []PlotRow
	query := `
SELECT phenotype, ancestry, plot_type, gcs_uri
FROM phenotype_plots
WHERE phenotype = ?`
	if err := r.db.SelectContext(ctx, &rows, query, phenotype); err != nil {
		return nil, apperrors.DataTransform("plots query failed: %v", err)
	}
	return rows, nil
}

// PlotURI resolves the object-store URI of one pre-rendered plot.
func (r *Repository) PlotURI(ctx context.Context, phenotype string, plotType string, ancestry string) (string, error) {
	var rows []PlotRow
	query := `
SELECT phenotype, ancestry, plot_type, gcs_uri
FROM phenotype_plots
WHERE phenotype = ? AND plot_type = ? AND ancestry = ?
LIMIT 1`
	if err := r.db.SelectContext(ctx, &rows, query, phenotype, plotType, ancestry); err != nil {
		return "", apperrors.DataTransform("plot lookup failed: %v", err)
	}
	if len(rows) == 0 {
		return "", apperrors.NotFound(
			"Manhattan plot not found for phenotype '%s' with plot_type '%s' and ancestry '%s'",
			phenotype, plotType, ancestry)
	}
	return rows[0].GcsUri, nil
}

// QQPoints lists the pre-downsampled Q-Q points of one analysis,
// largest expected p first so the client draws the diagonal tail last.
func (r *Repository) QQPoints(ctx context.Context, phenotype string, ancestry string, sequencingType string, contig string) ([]QQRow, error) {
	query := `
SELECT phenotype, ancestry, sequencing_type, contig, position, ref, alt,
       pvalue_log10, pvalue_expected_log10
FROM qq_points
WHERE phenotype = ? AND ancestry = ? AND sequencing_type = ?`
	args := []interface{}{phenotype, ancestry, normalizeSequencingType(sequencingType)}
	if contig != "" {
		query += " AND contig = ?"
		args = append(args, contig)
	}
	query += " ORDER BY pvalue_expected_log10 DESC"

	var rows []QQRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.DataTransform("qq query failed: %v", err)
	}
	return rows, nil
}

// OverlayHits lists the significant single-variant hits drawn over a
// pre-rendered Manhattan image.
func (r *Repository) OverlayHits(ctx context.Context, phenotype string, ancestry string, sequencingType string) ([]dtos.SignificantHit, error) {
	type overlayRow struct {
		Contig   string  `db:"contig"`
		Position int32   `db:"position"`
		Ref      string  `db:"ref"`
		Alt      string  `db:"alt"`
		Pvalue   float64 `db:"pvalue"`
	}

	query := `
SELECT contig, position, ref, alt, pvalue
FROM significant_variants
WHERE phenotype = ? AND ancestry = ? AND sequencing_type = ?
ORDER BY pvalue ASC`
	var rows []overlayRow
	if err := r.db.SelectContext(ctx, &rows, query, phenotype, ancestry, sequencingType); err != nil {
		return nil, apperrors.DataTransform("overlay query failed: %v", err)
	}

	hits := make([]dtos.SignificantHit, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, dtos.SignificantHit{
			VariantId: xpos.FormatVariantID(row.Contig, uint32(row.Position), row.Ref, row.Alt),
			Contig:    row.Contig,
			Position:  row.Position,
			Pvalue:    row.Pvalue,
		})
	}
	return hits, nil
}

// SignificantBurdenRow carries the columns the overview page needs to
// fold burden tests into its unified loci.
type SignificantBurdenRow struct {
	GeneId            string   `db:"gene_id"`
	GeneSymbol        string   `db:"gene_symbol"`
	Contig            string   `db:"contig"`
	GeneStartPosition int32    `db:"gene_start_position"`
	Annotation        string   `db:"annotation"`
	Pvalue            *float64 `db:"pvalue"`
	PvalueBurden      *float64 `db:"pvalue_burden"`
	PvalueSkat        *float64 `db:"pvalue_skat"`
}

// SignificantBurdenHits lists the gene burden results passing a
// significance threshold on any of the three test p-values.
func (r *Repository) SignificantBurdenHits(ctx context.Context, phenotype string, ancestry string, threshold float64) ([]SignificantBurdenRow, error) {
	query := `
SELECT gene_id, gene_symbol, contig, gene_start_position, annotation,
       pvalue, pvalue_burden, pvalue_skat
FROM gene_associations
WHERE phenotype = ? AND ancestry = ?
  AND annotation IN ('pLoF', 'missenseLC', 'synonymous')
  AND (pvalue < ? OR pvalue_burden < ? OR pvalue_skat < ?)
ORDER BY pvalue ASC`
	var rows []SignificantBurdenRow
	if err := r.db.SelectContext(ctx, &rows, query,
		phenotype, ancestry, threshold, threshold, threshold); err != nil {
		return nil, apperrors.DataTransform("burden hits query failed: %v", err)
	}
	return rows, nil
}
