// Package ingestion drives the Hail-table-to-ClickHouse load pipeline
// behind the ingest command: prepare the serving table, land the raw
// rows in a staging table through the decoder, transform, verify, and
// clean up.
package ingestion

import (
	"embed"
	"fmt"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// TableConfig binds one serving table to its staging table, its default
// Hail table input and its embedded DDL and transform scripts.
type TableConfig struct {
	Name          string
	StagingTable  string
	DefaultInput  string
	Description   string
	ddlFile       string
	transformFile string
}

var (
	ExomeAnnotations = TableConfig{
		Name:          "exome_annotations",
		StagingTable:  "staging_exome_raw",
		DefaultInput:  "gs://aou_results/414k/utils/aou_all_exome_variant_info_pruned_414k_annotated_filtered.ht",
		Description:   "Exome variant annotations",
		ddlFile:       "sql/exome_annotations.sql",
		transformFile: "sql/exome_annotations_transform.sql",
	}
	GenomeAnnotations = TableConfig{
		Name:          "genome_annotations",
		StagingTable:  "staging_genome_raw",
		DefaultInput:  "gs://aou_results/414k/utils/aou_all_ACAF_variant_info_pruned_414k_annotated_filtered.ht",
		Description:   "Genome (ACAF) variant annotations",
		ddlFile:       "sql/genome_annotations.sql",
		transformFile: "sql/genome_annotations_transform.sql",
	}
	GeneModels = TableConfig{
		Name:          "gene_models",
		StagingTable:  "staging_gene_models_raw",
		DefaultInput:  "gs://axaou-browser-common/reference-data/genes_grch38_annotated_6.ht",
		Description:   "GENCODE gene models with gnomAD constraint",
		ddlFile:       "sql/gene_models.sql",
		transformFile: "sql/gene_models_transform.sql",
	}
	AnalysisMetadata = TableConfig{
		Name:          "analysis_metadata",
		StagingTable:  "staging_analysis_metadata_raw",
		DefaultInput:  "gs://aou_results/414k/utils/aou_phenotype_meta_info.ht",
		Description:   "Per-analysis phenotype metadata",
		ddlFile:       "sql/analysis_metadata.sql",
		transformFile: "sql/analysis_metadata_transform.sql",
	}
)

// AllTables lists the ingestable tables in load order.
func AllTables() []TableConfig {
	return []TableConfig{ExomeAnnotations, GenomeAnnotations, GeneModels, AnalysisMetadata}
}

// TableByName resolves an ingestable table by its serving name.
func TableByName(name string) (TableConfig, error) {
	for _, table := range AllTables() {
		if table.Name == name {
			return table, nil
		}
	}
	return TableConfig{}, fmt.Errorf("unknown table %q", name)
}

// DDL returns the embedded CREATE TABLE script.
func (t TableConfig) DDL() string {
	contents, err := sqlFiles.ReadFile(t.ddlFile)
	if err != nil {
		panic(fmt.Sprintf("missing embedded DDL %s: %v", t.ddlFile, err))
	}
	return string(contents)
}

// TransformSQL returns the embedded staging-to-serving script.
func (t TableConfig) TransformSQL() string {
	contents, err := sqlFiles.ReadFile(t.transformFile)
	if err != nil {
		panic(fmt.Sprintf("missing embedded transform %s: %v", t.transformFile, err))
	}
	return string(contents)
}
