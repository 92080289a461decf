package clickhouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/broadinstitute/all-by-all-aou-browser/apperrors"
	"github.com/broadinstitute/all-by-all-aou-browser/models"
	"github.com/broadinstitute/all-by-all-aou-browser/xpos"
)

func regionXpos(chrom string, position int64) int64 {
	return xpos.Encode(chrom, uint32(position))
}

const variantAnnotationSelect = `
SELECT xpos, contig, position, ref, alt, gene_symbol, consequence, af_all
FROM variant_annotations`

const extendedAnnotationColumns = `xpos, contig, position, ref, alt,
       gene_symbol, consequence, hgvsc, hgvsp, ac, an, af, hom`

const significantVariantSelect = `
SELECT phenotype, ancestry, sequencing_type, xpos, contig, position,
       ref, alt, pvalue, beta, se, af
FROM significant_variants`

// geneRegionBuffer pads gene boundaries by 1kb when collecting the
// variants of a gene region.
const geneRegionBuffer = 1000

// normalizeSequencingType maps the API's plural spellings onto the
// stored singular form ("exomes" -> "exome"). Unknown values pass
// through lowercased and match nothing.
func normalizeSequencingType(sequencingType string) string {
	return strings.TrimSuffix(strings.ToLower(sequencingType), "s")
}

// annotationTable picks the per-sequencing-type annotation table. Any
// value other than exome(s) falls through to the genome table.
func annotationTable(sequencingType string) string {
	if normalizeSequencingType(sequencingType) == "exome" {
		return "exome_annotations"
	}
	return "genome_annotations"
}

func shapeVariantAssociations(rows []SignificantVariantRow) []models.VariantAssociation {
	shaped := make([]models.VariantAssociation, 0, len(rows))
	for i := range rows {
		shaped = append(shaped, rows[i].ToAPI())
	}
	return shaped
}

// VariantAnnotation fetches one variant from the merged legacy
// annotation table.
func (r *Repository) VariantAnnotation(ctx context.Context, xposValue int64, ref string, alt string) (*models.VariantAnnotation, error) {
	var rows []VariantAnnotationRow
	query := variantAnnotationSelect + " WHERE xpos = ? AND ref = ? AND alt = ? LIMIT 1"
	if err := r.db.SelectContext(ctx, &rows, query, xposValue, ref, alt); err != nil {
		return nil, apperrors.DataTransform("variant annotation query failed: %v", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFound("Variant not found")
	}
	shaped := rows[0].ToAPI()
	return &shaped, nil
}

// ExtendedVariantAnnotation fetches one variant from the
// per-sequencing-type annotation tables.
func (r *Repository) ExtendedVariantAnnotation(ctx context.Context, sequencingType string, xposValue int64, ref string, alt string) (*models.VariantAnnotationExtended, error) {
	var rows []ExtendedAnnotationRow
	query := fmt.Sprintf("SELECT %s FROM %s WHERE xpos = ? AND ref = ? AND alt = ? LIMIT 1",
		extendedAnnotationColumns, annotationTable(sequencingType))
	if err := r.db.SelectContext(ctx, &rows, query, xposValue, ref, alt); err != nil {
		return nil, apperrors.DataTransform("variant annotation query failed: %v", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFound("Variant not found")
	}
	shaped := rows[0].ToAPI()
	return &shaped, nil
}

// AnnotationsInInterval lists legacy annotations inside an xpos window.
func (r *Repository) AnnotationsInInterval(ctx context.Context, xposStart int64, xposStop int64, limit int) ([]models.VariantAnnotation, error) {
	var rows []VariantAnnotationRow
	query := variantAnnotationSelect + " WHERE xpos >= ? AND xpos <= ? LIMIT ?"
	if err := r.db.SelectContext(ctx, &rows, query, xposStart, xposStop, limit); err != nil {
		return nil, apperrors.DataTransform("annotation interval query failed: %v", err)
	}
	shaped := make([]models.VariantAnnotation, 0, len(rows))
	for i := range rows {
		shaped = append(shaped, rows[i].ToAPI())
	}
	return shaped, nil
}

// ExtendedAnnotationsInInterval lists per-sequencing-type annotations
// inside an xpos window.
func (r *Repository) ExtendedAnnotationsInInterval(ctx context.Context, sequencingType string, xposStart int64, xposStop int64, limit int) ([]models.VariantAnnotationExtended, error) {
	var rows []ExtendedAnnotationRow
	query := fmt.Sprintf("SELECT %s FROM %s WHERE xpos >= ? AND xpos <= ? LIMIT ?",
		extendedAnnotationColumns, annotationTable(sequencingType))
	if err := r.db.SelectContext(ctx, &rows, query, xposStart, xposStop, limit); err != nil {
		return nil, apperrors.DataTransform("annotation interval query failed: %v", err)
	}
	shaped := make([]models.VariantAnnotationExtended, 0, len(rows))
	for i := range rows {
		shaped = append(shaped, rows[i].ToAPI())
	}
	return shaped, nil
}

// exonDisjunction renders a WHERE clause covering a set of exon xpos
// windows. The bounds are computed integers, never user text.
func exonDisjunction(exons []models.Exon) string {
	clauses := make([]string, 0, len(exons))
	for _, exon := range exons {
		clauses = append(clauses,
			fmt.Sprintf("(xpos >= %d AND xpos <= %d)", exon.Xstart, exon.Xstop))
	}
	return strings.Join(clauses, " OR ")
}

// AnnotationsByGeneExons lists per-sequencing-type annotations falling
// inside any exon of a gene. An exonless gene yields an empty list.
func (r *Repository) AnnotationsByGeneExons(ctx context.Context, sequencingType string, exons []models.Exon) ([]models.VariantAnnotationExtended, error) {
	if len(exons) == 0 {
		return []models.VariantAnnotationExtended{}, nil
	}
	var rows []ExtendedAnnotationRow
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		extendedAnnotationColumns, annotationTable(sequencingType), exonDisjunction(exons))
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, apperrors.DataTransform("gene annotation query failed: %v", err)
	}
	shaped := make([]models.VariantAnnotationExtended, 0, len(rows))
	for i := range rows {
		shaped = append(shaped, rows[i].ToAPI())
	}
	return shaped, nil
}

// AssociationByVariant fetches one association for a (phenotype,
// variant) pair.
func (r *Repository) AssociationByVariant(ctx context.Context, phenotype string, xposValue int64, ref string, alt string) (*models.VariantAssociation, error) {
	var rows []SignificantVariantRow
	query := significantVariantSelect +
		" WHERE phenotype = ? AND xpos = ? AND ref = ? AND alt = ? LIMIT 1"
	if err := r.db.SelectContext(ctx, &rows, query, phenotype, xposValue, ref, alt); err != nil {
		return nil, apperrors.DataTransform("variant association query failed: %v", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFound("Association not found")
	}
	shaped := rows[0].ToAPI()
	return &shaped, nil
}

// AssociationsInInterval lists every association of one phenotype
// inside an xpos window.
func (r *Repository) AssociationsInInterval(ctx context.Context, phenotype string, xposStart int64, xposStop int64) ([]models.VariantAssociation, error) {
	var rows []SignificantVariantRow
	query := significantVariantSelect + " WHERE phenotype = ? AND xpos >= ? AND xpos <= ?"
	if err := r.db.SelectContext(ctx, &rows, query, phenotype, xposStart, xposStop); err != nil {
		return nil, apperrors.DataTransform("association interval query failed: %v", err)
	}
	return shapeVariantAssociations(rows), nil
}

// VariantPhewas lists every phenotype association of one variant, best
// p-value first.
func (r *Repository) VariantPhewas(ctx context.Context, xposValue int64, ref string, alt string) ([]models.VariantAssociation, error) {
	var rows []SignificantVariantRow
	query := significantVariantSelect + " WHERE xpos = ? AND ref = ? AND alt = ? ORDER BY pvalue ASC"
	if err := r.db.SelectContext(ctx, &rows, query, xposValue, ref, alt); err != nil {
		return nil, apperrors.DataTransform("variant phewas query failed: %v", err)
	}
	return shapeVariantAssociations(rows), nil
}

// TopVariants lists the strongest associations within a p-value window
// across all phenotypes for one ancestry.
func (r *Repository) TopVariants(ctx context.Context, ancestry string, minPvalue float64, maxPvalue float64, limit int) ([]models.VariantAssociation, error) {
	var rows []SignificantVariantRow
	query := significantVariantSelect +
		" WHERE ancestry = ? AND pvalue >= ? AND pvalue <= ? ORDER BY pvalue ASC LIMIT ?"
	if err := r.db.SelectContext(ctx, &rows, query, ancestry, minPvalue, maxPvalue, limit); err != nil {
		return nil, apperrors.DataTransform("top variants query failed: %v", err)
	}
	return shapeVariantAssociations(rows), nil
}

// geneRegion is the coordinate triple driving the gene-region variant
// lookup.
type geneRegion struct {
	Chrom string `db:"chrom"`
	Start int64  `db:"start"`
	Stop  int64  `db:"stop"`
}

func (r *Repository) lookupGeneRegion(ctx context.Context, gene string) (*geneRegion, error) {
	var regions []geneRegion
	var err error
	if strings.HasPrefix(gene, "ENSG") {
		err = r.db.SelectContext(ctx, &regions,
			"SELECT chrom, start, stop FROM gene_models WHERE gene_id = ? LIMIT 1", gene)
	} else {
		err = r.db.SelectContext(ctx, &regions,
			"SELECT chrom, start, stop FROM gene_models WHERE symbol = ? OR symbol_upper_case = ? LIMIT 1",
			gene, strings.ToUpper(gene))
	}
	if err != nil {
		return nil, apperrors.DataTransform("gene lookup failed: %v", err)
	}
	if len(regions) == 0 {
		return nil, apperrors.NotFound("Gene %s not found", gene)
	}
	return &regions[0], nil
}

// VariantsByGene lists the tested variants of one analysis inside a
// gene's padded region, joined with the matching annotation table.
func (r *Repository) VariantsByGene(ctx context.Context, gene string, phenotype string, ancestry string, sequencingType string, limit int) ([]models.VariantAssociationExtended, error) {
	region, err := r.lookupGeneRegion(ctx, gene)
	if err != nil {
		return nil, err
	}

	start := region.Start - geneRegionBuffer
	if start < 0 {
		start = 0
	}
	xposStart := regionXpos(region.Chrom, start)
	xposStop := regionXpos(region.Chrom, region.Stop+geneRegionBuffer)

	normalizedSeq := normalizeSequencingType(sequencingType)
	query := fmt.Sprintf(`
SELECT lv.phenotype, lv.ancestry, lv.sequencing_type, lv.xpos, lv.contig,
       toUInt32(lv.position) AS position, lv.ref, lv.alt,
       lv.pvalue, lv.beta, lv.se,
       coalesce(lv.af, ann.af) AS af,
       ann.gene_symbol, ann.consequence, ann.hgvsc, ann.hgvsp,
       ann.ac, ann.an, ann.hom
FROM loci_variants lv
LEFT JOIN %s ann ON lv.xpos = ann.xpos AND lv.ref = ann.ref AND lv.alt = ann.alt
WHERE lv.phenotype = ? AND lv.ancestry = ? AND lv.sequencing_type = ?
  AND lv.xpos >= ? AND lv.xpos <= ?
ORDER BY lv.pvalue ASC
LIMIT ?`, annotationTable(sequencingType))

	var rows []GeneVariantRow
	if err := r.db.SelectContext(ctx, &rows, query,
		phenotype, ancestry, normalizedSeq, xposStart, xposStop, limit); err != nil {
		return nil, apperrors.DataTransform("gene variants query failed: %v", err)
	}

	shaped := make([]models.VariantAssociationExtended, 0, len(rows))
	for i := range rows {
		shaped = append(shaped, rows[i].ToAPI())
	}
	return shaped, nil
}

// ManhattanTop lists the strongest rendering points of one analysis.
func (r *Repository) ManhattanTop(ctx context.Context, phenotype string, ancestry string, sequencingType string, limit int) ([]LocusVariantRow, error) {
	var rows []LocusVariantRow
	query := `
SELECT xpos, position, pvalue, neg_log10_p, is_significant
FROM loci_variants
WHERE phenotype = ? AND ancestry = ? AND sequencing_type = ?
ORDER BY pvalue ASC
LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, query,
		phenotype, ancestry, normalizeSequencingType(sequencingType), limit); err != nil {
		return nil, apperrors.DataTransform("manhattan query failed: %v", err)
	}
	return rows, nil
}
