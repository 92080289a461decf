package clickhouse

import (
	"context"
	"strings"

	"github.com/broadinstitute/all-by-all-aou-browser/apperrors"
	"github.com/broadinstitute/all-by-all-aou-browser/models"
)

const geneAssociationSelect = `
SELECT gene_id, gene_symbol, annotation, max_maf, phenotype, ancestry,
       pvalue, pvalue_burden, pvalue_skat, beta_burden, mac,
       contig, gene_start_position, xpos
FROM gene_associations`

// maxMafTolerance absorbs float drift in the stored max_maf bins.
const maxMafTolerance = 0.0001

// DefaultMaxMaf is the burden-set MAF bin served when the client does
// not ask for one.
const DefaultMaxMaf = 0.001

func shapeGeneAssociations(rows []GeneAssociationRow) []models.GeneAssociation {
	shaped := make([]models.GeneAssociation, 0, len(rows))
	for i := range rows {
		shaped = append(shaped, rows[i].ToAPI())
	}
	return shaped
}

// GenePhewas returns every phenotype association for one gene in one
// ancestry, best p-value first. Ensembl ids hit the gene_id column,
// anything else is treated as a symbol.
func (r *Repository) GenePhewas(ctx context.Context, gene string, ancestry string, annotation string) ([]models.GeneAssociation, error) {
	geneClause := "gene_symbol = ?"
	if strings.HasPrefix(gene, "ENSG") {
		geneClause = "gene_id = ?"
	}

	query := geneAssociationSelect + " WHERE " + geneClause + " AND ancestry = ?"
	args := []interface{}{gene, ancestry}
	if annotation != "" {
		query += " AND annotation = ?"
		args = append(args, annotation)
	}
	query += " ORDER BY pvalue ASC"

	var rows []GeneAssociationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.DataTransform("gene phewas query failed: %v", err)
	}
	return shapeGeneAssociations(rows), nil
}

// TopGeneAssociations returns the strongest gene associations within a
// p-value window across all phenotypes for one ancestry.
func (r *Repository) TopGeneAssociations(ctx context.Context, ancestry string, minPvalue float64, maxPvalue float64, annotation string, limit int) ([]models.GeneAssociation, error) {
	query := geneAssociationSelect +
		" WHERE ancestry = ? AND pvalue IS NOT NULL AND pvalue >= ? AND pvalue <= ?"
	args := []interface{}{ancestry, minPvalue, maxPvalue}
	if annotation != "" {
		query += " AND annotation = ?"
		args = append(args, annotation)
	}
	query += " ORDER BY pvalue ASC LIMIT ?"
	args = append(args, limit)

	var rows []GeneAssociationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.DataTransform("top gene associations query failed: %v", err)
	}
	return shapeGeneAssociations(rows), nil
}

// AllGeneSymbols lists the distinct gene symbols present in the
// association data, for the client's search box.
func (r *Repository) AllGeneSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	query := "SELECT DISTINCT gene_symbol FROM gene_associations WHERE gene_symbol != '' ORDER BY gene_symbol"
	if err := r.db.SelectContext(ctx, &symbols, query); err != nil {
		return nil, apperrors.DataTransform("gene symbols query failed: %v", err)
	}
	return symbols, nil
}

// GeneAssociationsForAnalysis returns the burden results of one gene in
// one analysis run.
func (r *Repository) GeneAssociationsForAnalysis(ctx context.Context, geneID string, analysisID string, ancestry string) ([]models.GeneAssociation, error) {
	query := geneAssociationSelect +
		" WHERE gene_id = ? AND phenotype = ? AND ancestry = ? ORDER BY pvalue ASC"
	var rows []GeneAssociationRow
	if err := r.db.SelectContext(ctx, &rows, query, geneID, analysisID, ancestry); err != nil {
		return nil, apperrors.DataTransform("gene associations query failed: %v", err)
	}
	return shapeGeneAssociations(rows), nil
}

// GeneAssociationsInInterval returns the strongest gene associations
// whose gene start falls inside an xpos window.
func (r *Repository) GeneAssociationsInInterval(ctx context.Context, ancestry string, xposStart int64, xposStop int64, annotation string, limit int) ([]models.GeneAssociation, error) {
	query := geneAssociationSelect + " WHERE ancestry = ? AND xpos >= ? AND xpos <= ?"
	args := []interface{}{ancestry, xposStart, xposStop}
	if annotation != "" {
		query += " AND annotation = ?"
		args = append(args, annotation)
	}
	query += " ORDER BY pvalue ASC LIMIT ?"
	args = append(args, limit)

	var rows []GeneAssociationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.DataTransform("gene interval query failed: %v", err)
	}
	return shapeGeneAssociations(rows), nil
}

// GeneAssociationsForPhenotype lists the burden results of one analysis
// in one MAF bin. Cauchy combined rows store max_maf = -1 and pass the
// bin filter for every requested bin.
func (r *Repository) GeneAssociationsForPhenotype(ctx context.Context, phenotype string, ancestry string, annotation string, maxMaf float64, limit int, offset int) ([]models.GeneAssociation, error) {
	query := geneAssociationSelect +
		" WHERE phenotype = ? AND ancestry = ? AND (abs(max_maf - ?) < ? OR max_maf < 0)"
	args := []interface{}{phenotype, ancestry, maxMaf, maxMafTolerance}
	if annotation != "" {
		query += " AND annotation = ?"
		args = append(args, annotation)
	}
	query += " ORDER BY pvalue ASC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []GeneAssociationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.DataTransform("phenotype gene query failed: %v", err)
	}
	return shapeGeneAssociations(rows), nil
}

// GeneAssociationForPhenotypeGene fetches the burden results of a single
// gene within one analysis and MAF bin.
func (r *Repository) GeneAssociationForPhenotypeGene(ctx context.Context, phenotype string, ancestry string, geneID string, annotation string, maxMaf float64) ([]models.GeneAssociation, error) {
	geneClause := "gene_symbol = ?"
	if strings.HasPrefix(geneID, "ENSG") {
		geneClause = "gene_id = ?"
	}
	query := geneAssociationSelect +
		" WHERE phenotype = ? AND ancestry = ? AND " + geneClause +
		" AND (abs(max_maf - ?) < ? OR max_maf < 0)"
	args := []interface{}{phenotype, ancestry, geneID, maxMaf, maxMafTolerance}
	if annotation != "" {
		query += " AND annotation = ?"
		args = append(args, annotation)
	}
	query += " ORDER BY pvalue ASC"

	var rows []GeneAssociationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.DataTransform("phenotype gene query failed: %v", err)
	}
	return shapeGeneAssociations(rows), nil
}
