package models

import "github.com/broadinstitute/all-by-all-aou-browser/models/constants"

// AnalysisMetadata describes one (phenotype, ancestry) analysis run.
// Field names match the client's AnalysisMetadataHds interface.
type AnalysisMetadata struct {
	AnalysisId           string   `json:"analysis_id" db:"analysis_id"`
	AncestryGroup        string   `json:"ancestry_group" db:"ancestry_group"`
	Category             string   `json:"category" db:"category"`
	Description          string   `json:"description" db:"description"`
	DescriptionMore      string   `json:"description_more" db:"description_more"`
	KeepPhenoBurden      bool     `json:"keep_pheno_burden" db:"keep_pheno_burden"`
	KeepPhenoSkat        bool     `json:"keep_pheno_skat" db:"keep_pheno_skat"`
	KeepPhenoSkato       bool     `json:"keep_pheno_skato" db:"keep_pheno_skato"`
	LambdaGcAcaf         *float64 `json:"lambda_gc_acaf" db:"lambda_gc_acaf"`
	LambdaGcExome        *float64 `json:"lambda_gc_exome" db:"lambda_gc_exome"`
	LambdaGcGeneBurden   *float64 `json:"lambda_gc_gene_burden_001" db:"lambda_gc_gene_burden_001"`
	NCases               int64    `json:"n_cases" db:"n_cases"`
	NControls            *int64   `json:"n_controls" db:"n_controls"`
	PhenoSex             string   `json:"pheno_sex" db:"pheno_sex"`
	TraitType            string   `json:"trait_type" db:"trait_type"`
}

// AnalysisCategory is a derived grouping of analyses sharing a category.
type AnalysisCategory struct {
	Category            string   `json:"category"`
	ClassificationGroup string   `json:"classification_group"`
	Color               string   `json:"color"`
	Analyses            []string `json:"analyses"`
	AnalysisCount       int      `json:"analysisCount"`
	Phenocodes          []string `json:"phenocodes"`
	PhenoCount          int      `json:"phenoCount"`
}

// Locus is the nested {contig, position} object attached to shaped
// variant records.
type Locus struct {
	Contig   string `json:"contig"`
	Position uint32 `json:"position"`
}

// AnalysisAsset is one discovered per-phenotype result table in the
// object store.
type AnalysisAsset struct {
	Id             string                   `json:"id"`
	AncestryGroup  constants.AncestryGroup  `json:"ancestry_group"`
	AnalysisId     string                   `json:"analysis_id"`
	Uri            string                   `json:"uri"`
	AssetType      constants.AssetType      `json:"asset_type"`
	SequencingType constants.SequencingType `json:"sequencing_type,omitempty"`
}

// VariantAssociation is the shaped form of a significant-variant row.
type VariantAssociation struct {
	VariantId      string  `json:"variant_id"`
	Locus          Locus   `json:"locus"`
	Ref            string  `json:"ref"`
	Alt            string  `json:"alt"`
	Pvalue         float64 `json:"pvalue"`
	Beta           float64 `json:"beta"`
	Se             float64 `json:"se"`
	Af             float64 `json:"af"`
	Phenotype      string  `json:"phenotype"`
	Ancestry       string  `json:"ancestry"`
	SequencingType string  `json:"sequencing_type"`
}

// VariantAssociationExtended joins association stats with annotation
// fields for the gene-region view.
type VariantAssociationExtended struct {
	VariantId        string   `json:"variant_id"`
	Locus            Locus    `json:"locus"`
	Ref              string   `json:"ref"`
	Alt              string   `json:"alt"`
	Pvalue           float64  `json:"pvalue"`
	Beta             float64  `json:"beta"`
	Se               float64  `json:"se"`
	Af               float64  `json:"af"`
	Phenotype        string   `json:"phenotype"`
	Ancestry         string   `json:"ancestry"`
	SequencingType   string   `json:"sequencing_type"`
	GeneSymbol       *string  `json:"gene_symbol"`
	Consequence      *string  `json:"consequence"`
	Hgvsc            *string  `json:"hgvsc"`
	Hgvsp            *string  `json:"hgvsp"`
	AlleleCount      *uint32  `json:"allele_count"`
	AlleleNumber     *uint32  `json:"allele_number"`
	HomozygoteCount  *uint32  `json:"homozygote_count"`
}

// VariantAnnotation is the shaped form of a legacy variant_annotations
// row.
type VariantAnnotation struct {
	VariantId   string   `json:"variant_id"`
	Locus       Locus    `json:"locus"`
	Ref         string   `json:"ref"`
	Alt         string   `json:"alt"`
	GeneSymbol  *string  `json:"gene_symbol"`
	Consequence *string  `json:"consequence"`
	AfAll       *float64 `json:"af_all"`
}

// VariantAnnotationExtended is the shaped form of the per-sequencing-type
// exome_annotations / genome_annotations layout.
type VariantAnnotationExtended struct {
	VariantId   string   `json:"variant_id"`
	Locus       Locus    `json:"locus"`
	Ref         string   `json:"ref"`
	Alt         string   `json:"alt"`
	GeneSymbol  *string  `json:"gene_symbol"`
	Consequence *string  `json:"consequence"`
	Hgvsc       *string  `json:"hgvsc"`
	Hgvsp       *string  `json:"hgvsp"`
	Ac          *uint32  `json:"ac"`
	An          *uint32  `json:"an"`
	Af          *float64 `json:"af"`
	Hom         *uint32  `json:"hom"`
}

// GeneAssociation is the shaped form of a gene_associations row.
// A max_maf of -1 marks a Cauchy combined test.
type GeneAssociation struct {
	GeneId            string   `json:"gene_id"`
	GeneSymbol        string   `json:"gene_symbol"`
	Annotation        string   `json:"annotation"`
	MaxMaf            float64  `json:"max_maf"`
	Phenotype         string   `json:"phenotype"`
	Ancestry          string   `json:"ancestry"`
	Pvalue            *float64 `json:"pvalue"`
	PvalueBurden      *float64 `json:"pvalue_burden"`
	PvalueSkat        *float64 `json:"pvalue_skat"`
	BetaBurden        *float64 `json:"beta_burden"`
	Mac               *uint32  `json:"mac"`
	Contig            string   `json:"contig"`
	GeneStartPosition int32    `json:"gene_start_position"`
	Xpos              int64    `json:"xpos"`
}

// Exon is one record zipped out of the gene_models parallel arrays.
type Exon struct {
	FeatureType string `json:"feature_type"`
	Start       int64  `json:"start"`
	Stop        int64  `json:"stop"`
	Xstart      int64  `json:"xstart"`
	Xstop       int64  `json:"xstop"`
}

// Transcript is a record parsed from the serialized transcripts_json
// column. Transcripts are a detail field; a parse failure degrades to
// an empty list.
type Transcript struct {
	TranscriptId      string  `json:"transcript_id"`
	TranscriptVersion string  `json:"transcript_version"`
	GeneId            string  `json:"gene_id"`
	GeneVersion       string  `json:"gene_version"`
	Chrom             string  `json:"chrom"`
	Strand            string  `json:"strand"`
	Start             int64   `json:"start"`
	Stop              int64   `json:"stop"`
	Xstart            int64   `json:"xstart"`
	Xstop             int64   `json:"xstop"`
	ReferenceGenome   string  `json:"reference_genome"`
	RefseqId          *string `json:"refseq_id"`
	RefseqVersion     *string `json:"refseq_version"`
	Exons             []Exon  `json:"exons"`
}

// ManeSelectTranscript is the MANE Select bundle, present only when
// stored.
type ManeSelectTranscript struct {
	EnsemblId           string `json:"ensembl_id"`
	EnsemblVersion      string `json:"ensembl_version"`
	RefseqId            string `json:"refseq_id"`
	RefseqVersion       string `json:"refseq_version"`
	MatchedGeneVersion  string `json:"matched_gene_version"`
}

// GnomadConstraint is the flattened gnomAD constraint bundle, present
// only when at least one source column is non-null.
type GnomadConstraint struct {
	Gene       string   `json:"gene"`
	GeneId     string   `json:"gene_id"`
	Transcript string   `json:"transcript"`
	ManeSelect bool     `json:"mane_select"`
	Flags      []string `json:"flags"`
	ObsLof     int64    `json:"obs_lof"`
	ObsMis     int64    `json:"obs_mis"`
	ObsSyn     int64    `json:"obs_syn"`
	ExpLof     float64  `json:"exp_lof"`
	ExpMis     float64  `json:"exp_mis"`
	ExpSyn     float64  `json:"exp_syn"`
	OeLof      float64  `json:"oe_lof"`
	OeLofLower float64  `json:"oe_lof_lower"`
	OeLofUpper float64  `json:"oe_lof_upper"`
	OeMis      float64  `json:"oe_mis"`
	OeMisLower float64  `json:"oe_mis_lower"`
	OeMisUpper float64  `json:"oe_mis_upper"`
	OeSyn      float64  `json:"oe_syn"`
	OeSynLower float64  `json:"oe_syn_lower"`
	OeSynUpper float64  `json:"oe_syn_upper"`
	LofZ       float64  `json:"lof_z"`
	MisZ       float64  `json:"mis_z"`
	SynZ       float64  `json:"syn_z"`
	Pli        float64  `json:"pli"`
}

// GeneModel is the full Ensembl-like gene record served by the gene
// model endpoints.
type GeneModel struct {
	GeneId                    string                `json:"gene_id"`
	Symbol                    string                `json:"symbol"`
	SymbolUpperCase           string                `json:"symbol_upper_case"`
	Chrom                     string                `json:"chrom"`
	Start                     int64                 `json:"start"`
	Stop                      int64                 `json:"stop"`
	Strand                    string                `json:"strand"`
	Xstart                    int64                 `json:"xstart"`
	Xstop                     int64                 `json:"xstop"`
	CanonicalTranscriptId     string                `json:"canonical_transcript_id"`
	PreferredTranscriptId     string                `json:"preferred_transcript_id"`
	PreferredTranscriptSource string                `json:"preferred_transcript_source"`
	GencodeSymbol             string                `json:"gencode_symbol"`
	GeneVersion               string                `json:"gene_version"`
	Name                      string                `json:"name"`
	HgncId                    string                `json:"hgnc_id"`
	NcbiId                    string                `json:"ncbi_id"`
	OmimId                    string                `json:"omim_id"`
	ReferenceGenome           string                `json:"reference_genome"`
	AliasSymbols              []string              `json:"alias_symbols"`
	PreviousSymbols           []string              `json:"previous_symbols"`
	SearchTerms               []string              `json:"search_terms"`
	Flags                     []string              `json:"flags"`
	Exons                     []Exon                `json:"exons"`
	Transcripts               []Transcript          `json:"transcripts"`
	ManeSelectTranscript      *ManeSelectTranscript `json:"mane_select_transcript"`
	GnomadConstraint          *GnomadConstraint     `json:"gnomad_constraint"`
}
