package clickhouse

import (
	"context"

	"github.com/broadinstitute/all-by-all-aou-browser/apperrors"
)

// AnalysisMetadataRow mirrors the analysis_metadata table. Descriptions
// and categories are nullable in storage; defaults are applied while
// shaping.
type AnalysisMetadataRow struct {
	AnalysisId         string   `db:"analysis_id"`
	AncestryGroup      string   `db:"ancestry_group"`
	Category           *string  `db:"category"`
	Description        *string  `db:"description"`
	LambdaGcAcaf       *float64 `db:"lambda_gc_acaf"`
	LambdaGcExome      *float64 `db:"lambda_gc_exome"`
	LambdaGcGeneBurden *float64 `db:"lambda_gc_gene_burden_001"`
	NCases             int64    `db:"n_cases"`
	NControls          *int64   `db:"n_controls"`
	PhenoSex           *string  `db:"pheno_sex"`
	TraitType          *string  `db:"trait_type"`
}

const analysisMetadataQuery = `
SELECT analysis_id, ancestry_group, category, description,
       lambda_gc_acaf, lambda_gc_exome, lambda_gc_gene_burden_001,
       n_cases, n_controls, pheno_sex, trait_type
FROM analysis_metadata
ORDER BY analysis_id`

// LoadAnalysisMetadata reads the full metadata table and shapes it for
// the in-memory catalog the analyses endpoints serve from.
func (r *Repository) LoadAnalysisMetadata(ctx context.Context) ([]AnalysisMetadataRow, error) {
	var rows []AnalysisMetadataRow
	if err := r.db.SelectContext(ctx, &rows, analysisMetadataQuery); err != nil {
		return nil, apperrors.DataTransform("failed to load analysis metadata: %v", err)
	}
	return rows, nil
}
