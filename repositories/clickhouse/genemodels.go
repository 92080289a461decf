package clickhouse

import (
	"context"
	"strings"

	"github.com/broadinstitute/all-by-all-aou-browser/apperrors"
	"github.com/broadinstitute/all-by-all-aou-browser/models"
)

// Array columns are exported through toJSONString so the same scan path
// works over both the native and the HTTP protocol.
const geneModelSelect = `
SELECT gene_id, symbol, symbol_upper_case, chrom, start, stop, xstart, xstop,
       strand, gene_version, gencode_symbol, name, hgnc_id, ncbi_id, omim_id,
       reference_genome, canonical_transcript_id,
       preferred_transcript_id, preferred_transcript_source,
       toJSONString(alias_symbols) AS alias_symbols_json,
       toJSONString(previous_symbols) AS previous_symbols_json,
       toJSONString(search_terms) AS search_terms_json,
       toJSONString(flags) AS flags_json,
       toJSONString(` + "`exons.feature_type`" + `) AS exon_feature_types_json,
       toJSONString(` + "`exons.start`" + `) AS exon_starts_json,
       toJSONString(` + "`exons.stop`" + `) AS exon_stops_json,
       toJSONString(` + "`exons.xstart`" + `) AS exon_xstarts_json,
       toJSONString(` + "`exons.xstop`" + `) AS exon_xstops_json,
       gnomad_gene, gnomad_gene_id, gnomad_transcript, gnomad_mane_select,
       toJSONString(gnomad_flags) AS gnomad_flags_json,
       gnomad_pli, gnomad_lof_z, gnomad_mis_z, gnomad_syn_z,
       gnomad_oe_lof, gnomad_oe_lof_lower, gnomad_oe_lof_upper,
       gnomad_oe_mis, gnomad_oe_mis_lower, gnomad_oe_mis_upper,
       gnomad_oe_syn, gnomad_oe_syn_lower, gnomad_oe_syn_upper,
       gnomad_exp_lof, gnomad_exp_mis, gnomad_exp_syn,
       gnomad_obs_lof, gnomad_obs_mis, gnomad_obs_syn,
       mane_ensembl_id, mane_ensembl_version, mane_refseq_id,
       mane_refseq_version, mane_matched_gene_version,
       transcripts_json
FROM gene_models`

func shapeGeneModels(rows []GeneModelRow) []models.GeneModel {
	shaped := make([]models.GeneModel, 0, len(rows))
	for i := range rows {
		shaped = append(shaped, rows[i].ToAPI())
	}
	return shaped
}

// GeneModelById fetches one gene by its Ensembl id.
func (r *Repository) GeneModelById(ctx context.Context, geneID string) (*models.GeneModel, error) {
	var rows []GeneModelRow
	query := geneModelSelect + " WHERE gene_id = ? LIMIT 1"
	if err := r.db.SelectContext(ctx, &rows, query, geneID); err != nil {
		return nil, apperrors.DataTransform("gene model query failed: %v", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFound("Gene %s not found", geneID)
	}
	model := rows[0].ToAPI()
	return &model, nil
}

// GeneModelBySymbol fetches one gene by symbol, matched case-insensitively
// against the stored uppercase column.
func (r *Repository) GeneModelBySymbol(ctx context.Context, symbol string) (*models.GeneModel, error) {
	var rows []GeneModelRow
	query := geneModelSelect + " WHERE symbol_upper_case = ? LIMIT 1"
	if err := r.db.SelectContext(ctx, &rows, query, strings.ToUpper(symbol)); err != nil {
		return nil, apperrors.DataTransform("gene model query failed: %v", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFound("Gene %s not found", symbol)
	}
	model := rows[0].ToAPI()
	return &model, nil
}

// GeneModelsInInterval fetches every gene overlapping [start, stop] on
// the given contig, ordered by start position.
func (r *Repository) GeneModelsInInterval(ctx context.Context, contig string, start int64, stop int64) ([]models.GeneModel, error) {
	if !strings.HasPrefix(contig, "chr") {
		contig = "chr" + contig
	}
	var rows []GeneModelRow
	query := geneModelSelect + " WHERE chrom = ? AND stop >= ? AND start <= ? ORDER BY start"
	if err := r.db.SelectContext(ctx, &rows, query, contig, start, stop); err != nil {
		return nil, apperrors.DataTransform("gene model interval query failed: %v", err)
	}
	return shapeGeneModels(rows), nil
}
