package clickhouse

import (
	"encoding/json"
	"math"

	"go.uber.org/zap"

	"github.com/broadinstitute/all-by-all-aou-browser/logger"
	"github.com/broadinstitute/all-by-all-aou-browser/models"
	"github.com/broadinstitute/all-by-all-aou-browser/xpos"
)

// nullifyNaN treats NaN in nullable float columns as null on
// extraction. 0 and null stay distinct.
func nullifyNaN(value *float64) *float64 {
	if value == nil || math.IsNaN(*value) {
		return nil
	}
	return value
}

// LocusRow is the loci table row, served as-is by the loci endpoint.
type LocusRow struct {
	LocusId     string  `json:"locus_id" db:"locus_id"`
	Phenotype   string  `json:"phenotype" db:"phenotype"`
	Ancestry    string  `json:"ancestry" db:"ancestry"`
	Contig      string  `json:"contig" db:"contig"`
	Start       int32   `json:"start" db:"start"`
	Stop        int32   `json:"stop" db:"stop"`
	Xstart      int64   `json:"xstart" db:"xstart"`
	Xstop       int64   `json:"xstop" db:"xstop"`
	Source      string  `json:"source" db:"source"`
	LeadVariant string  `json:"lead_variant" db:"lead_variant"`
	LeadPvalue  float64 `json:"lead_pvalue" db:"lead_pvalue"`
	ExomeCount  uint32  `json:"exome_count" db:"exome_count"`
	GenomeCount uint32  `json:"genome_count" db:"genome_count"`
	PlotGcsUri  string  `json:"plot_gcs_uri" db:"plot_gcs_uri"`
}

// LocusVariantRow is the minimal Manhattan-rendering row.
type LocusVariantRow struct {
	Xpos          int64   `json:"xpos" db:"xpos"`
	Position      int32   `json:"position" db:"position"`
	Pvalue        float64 `json:"pvalue" db:"pvalue"`
	NegLog10P     float32 `json:"neg_log10_p" db:"neg_log10_p"`
	IsSignificant bool    `json:"is_significant" db:"is_significant"`
}

// LocusVariantExtendedRow adds the locus id for cross-locus queries.
type LocusVariantExtendedRow struct {
	LocusId       string  `json:"locus_id" db:"locus_id"`
	Xpos          int64   `json:"xpos" db:"xpos"`
	Position      int32   `json:"position" db:"position"`
	Pvalue        float64 `json:"pvalue" db:"pvalue"`
	NegLog10P     float32 `json:"neg_log10_p" db:"neg_log10_p"`
	IsSignificant bool    `json:"is_significant" db:"is_significant"`
}

// SignificantVariantRow is the full association row from
// significant_variants.
type SignificantVariantRow struct {
	Phenotype      string  `db:"phenotype"`
	Ancestry       string  `db:"ancestry"`
	SequencingType string  `db:"sequencing_type"`
	Xpos           int64   `db:"xpos"`
	Contig         string  `db:"contig"`
	Position       uint32  `db:"position"`
	Ref            string  `db:"ref"`
	Alt            string  `db:"alt"`
	Pvalue         float64 `db:"pvalue"`
	Beta           float64 `db:"beta"`
	Se             float64 `db:"se"`
	Af             float64 `db:"af"`
}

func (row *SignificantVariantRow) ToAPI() models.VariantAssociation {
	return models.VariantAssociation{
		VariantId:      xpos.FormatVariantID(row.Contig, row.Position, row.Ref, row.Alt),
		Locus:          models.Locus{Contig: row.Contig, Position: row.Position},
		Ref:            row.Ref,
		Alt:            row.Alt,
		Pvalue:         row.Pvalue,
		Beta:           row.Beta,
		Se:             row.Se,
		Af:             row.Af,
		Phenotype:      row.Phenotype,
		Ancestry:       row.Ancestry,
		SequencingType: row.SequencingType,
	}
}

// VariantAnnotationRow is the legacy merged annotation layout.
type VariantAnnotationRow struct {
	Xpos        int64    `db:"xpos"`
	Contig      string   `db:"contig"`
	Position    uint32   `db:"position"`
	Ref         string   `db:"ref"`
	Alt         string   `db:"alt"`
	GeneSymbol  *string  `db:"gene_symbol"`
	Consequence *string  `db:"consequence"`
	AfAll       *float64 `db:"af_all"`
}

func (row *VariantAnnotationRow) ToAPI() models.VariantAnnotation {
	return models.VariantAnnotation{
		VariantId:   xpos.FormatVariantID(row.Contig, row.Position, row.Ref, row.Alt),
		Locus:       models.Locus{Contig: row.Contig, Position: row.Position},
		Ref:         row.Ref,
		Alt:         row.Alt,
		GeneSymbol:  row.GeneSymbol,
		Consequence: row.Consequence,
		AfAll:       nullifyNaN(row.AfAll),
	}
}

// ExtendedAnnotationRow is the per-sequencing-type annotation layout
// (exome_annotations / genome_annotations).
type ExtendedAnnotationRow struct {
	Xpos        int64    `db:"xpos"`
	Contig      string   `db:"contig"`
	Position    uint32   `db:"position"`
	Ref         string   `db:"ref"`
	Alt         string   `db:"alt"`
	GeneSymbol  *string  `db:"gene_symbol"`
	Consequence *string  `db:"consequence"`
	Hgvsc       *string  `db:"hgvsc"`
	Hgvsp       *string  `db:"hgvsp"`
	Ac          *uint32  `db:"ac"`
	An          *uint32  `db:"an"`
	Af          *float64 `db:"af"`
	Hom         *uint32  `db:"hom"`
}

func (row *ExtendedAnnotationRow) ToAPI() models.VariantAnnotationExtended {
	return models.VariantAnnotationExtended{
		VariantId:   xpos.FormatVariantID(row.Contig, row.Position, row.Ref, row.Alt),
		Locus:       models.Locus{Contig: row.Contig, Position: row.Position},
		Ref:         row.Ref,
		Alt:         row.Alt,
		GeneSymbol:  row.GeneSymbol,
		Consequence: row.Consequence,
		Hgvsc:       row.Hgvsc,
		Hgvsp:       row.Hgvsp,
		Ac:          row.Ac,
		An:          row.An,
		Af:          nullifyNaN(row.Af),
		Hom:         row.Hom,
	}
}

// GeneVariantRow joins loci_variants with the per-sequencing-type
// annotations for the gene-region view.
type GeneVariantRow struct {
	Phenotype      string   `db:"phenotype"`
	Ancestry       string   `db:"ancestry"`
	SequencingType string   `db:"sequencing_type"`
	Xpos           int64    `db:"xpos"`
	Contig         string   `db:"contig"`
	Position       uint32   `db:"position"`
	Ref            string   `db:"ref"`
	Alt            string   `db:"alt"`
	Pvalue         float64  `db:"pvalue"`
	Beta           *float64 `db:"beta"`
	Se             *float64 `db:"se"`
	Af             *float64 `db:"af"`
	GeneSymbol     *string  `db:"gene_symbol"`
	Consequence    *string  `db:"consequence"`
	Hgvsc          *string  `db:"hgvsc"`
	Hgvsp          *string  `db:"hgvsp"`
	Ac             *uint32  `db:"ac"`
	An             *uint32  `db:"an"`
	Hom            *uint32  `db:"hom"`
}

func zeroIfNull(value *float64) float64 {
	if value == nil || math.IsNaN(*value) {
		return 0
	}
	return *value
}

func (row *GeneVariantRow) ToAPI() models.VariantAssociationExtended {
	return models.VariantAssociationExtended{
		VariantId:       xpos.FormatVariantID(row.Contig, row.Position, row.Ref, row.Alt),
		Locus:           models.Locus{Contig: row.Contig, Position: row.Position},
		Ref:             row.Ref,
		Alt:             row.Alt,
		Pvalue:          row.Pvalue,
		Beta:            zeroIfNull(row.Beta),
		Se:              zeroIfNull(row.Se),
		Af:              zeroIfNull(row.Af),
		Phenotype:       row.Phenotype,
		Ancestry:        row.Ancestry,
		SequencingType:  row.SequencingType,
		GeneSymbol:      row.GeneSymbol,
		Consequence:     row.Consequence,
		Hgvsc:           row.Hgvsc,
		Hgvsp:           row.Hgvsp,
		AlleleCount:     row.Ac,
		AlleleNumber:    row.An,
		HomozygoteCount: row.Hom,
	}
}

// GeneAssociationRow is the gene_associations row.
type GeneAssociationRow struct {
	GeneId            string   `db:"gene_id"`
	GeneSymbol        string   `db:"gene_symbol"`
	Annotation        string   `db:"annotation"`
	MaxMaf            float64  `db:"max_maf"`
	Phenotype         string   `db:"phenotype"`
	Ancestry          string   `db:"ancestry"`
	Pvalue            *float64 `db:"pvalue"`
	PvalueBurden      *float64 `db:"pvalue_burden"`
	PvalueSkat        *float64 `db:"pvalue_skat"`
	BetaBurden        *float64 `db:"beta_burden"`
	Mac               *uint32  `db:"mac"`
	Contig            string   `db:"contig"`
	GeneStartPosition int32    `db:"gene_start_position"`
	Xpos              int64    `db:"xpos"`
}

func (row *GeneAssociationRow) ToAPI() models.GeneAssociation {
	return models.GeneAssociation{
		GeneId:            row.GeneId,
		GeneSymbol:        row.GeneSymbol,
		Annotation:        row.Annotation,
		MaxMaf:            row.MaxMaf,
		Phenotype:         row.Phenotype,
		Ancestry:          row.Ancestry,
		Pvalue:            nullifyNaN(row.Pvalue),
		PvalueBurden:      nullifyNaN(row.PvalueBurden),
		PvalueSkat:        nullifyNaN(row.PvalueSkat),
		BetaBurden:        nullifyNaN(row.BetaBurden),
		Mac:               row.Mac,
		Contig:            row.Contig,
		GeneStartPosition: row.GeneStartPosition,
		Xpos:              row.Xpos,
	}
}

// PlotRow is the phenotype_plots row.
type PlotRow struct {
	Phenotype string `json:"phenotype" db:"phenotype"`
	Ancestry  string `json:"ancestry" db:"ancestry"`
	PlotType  string `json:"plot_type" db:"plot_type"`
	GcsUri    string `json:"gcs_uri" db:"gcs_uri"`
}

// QQRow is one pre-downsampled Q-Q plot point.
type QQRow struct {
	Phenotype           string  `json:"phenotype" db:"phenotype"`
	Ancestry            string  `json:"ancestry" db:"ancestry"`
	SequencingType      string  `json:"sequencing_type" db:"sequencing_type"`
	Contig              string  `json:"contig" db:"contig"`
	Position            int32   `json:"position" db:"position"`
	Ref                 string  `json:"ref" db:"ref"`
	Alt                 string  `json:"alt" db:"alt"`
	PvalueLog10         float64 `json:"pvalue_log10" db:"pvalue_log10"`
	PvalueExpectedLog10 float64 `json:"pvalue_expected_log10" db:"pvalue_expected_log10"`
}

// GeneModelRow is the flat gene_models layout. Array columns arrive as
// JSON strings (toJSONString in the SELECT) so one code path serves
// both the native and the HTTP protocol.
type GeneModelRow struct {
	GeneId                    string   `db:"gene_id"`
	Symbol                    string   `db:"symbol"`
	SymbolUpperCase           string   `db:"symbol_upper_case"`
	Chrom                     string   `db:"chrom"`
	Start                     int64    `db:"start"`
	Stop                      int64    `db:"stop"`
	Xstart                    int64    `db:"xstart"`
	Xstop                     int64    `db:"xstop"`
	Strand                    string   `db:"strand"`
	GeneVersion               string   `db:"gene_version"`
	GencodeSymbol             string   `db:"gencode_symbol"`
	Name                      string   `db:"name"`
	HgncId                    string   `db:"hgnc_id"`
	NcbiId                    string   `db:"ncbi_id"`
	OmimId                    string   `db:"omim_id"`
	ReferenceGenome           string   `db:"reference_genome"`
	CanonicalTranscriptId     string   `db:"canonical_transcript_id"`
	PreferredTranscriptId     string   `db:"preferred_transcript_id"`
	PreferredTranscriptSource string   `db:"preferred_transcript_source"`
	AliasSymbolsJson          string   `db:"alias_symbols_json"`
	PreviousSymbolsJson       string   `db:"previous_symbols_json"`
	SearchTermsJson           string   `db:"search_terms_json"`
	FlagsJson                 string   `db:"flags_json"`
	ExonFeatureTypesJson      string   `db:"exon_feature_types_json"`
	ExonStartsJson            string   `db:"exon_starts_json"`
	ExonStopsJson             string   `db:"exon_stops_json"`
	ExonXstartsJson           string   `db:"exon_xstarts_json"`
	ExonXstopsJson            string   `db:"exon_xstops_json"`
	GnomadGene                *string  `db:"gnomad_gene"`
	GnomadGeneId              *string  `db:"gnomad_gene_id"`
	GnomadTranscript          *string  `db:"gnomad_transcript"`
	GnomadManeSelect          *bool    `db:"gnomad_mane_select"`
	GnomadFlagsJson           string   `db:"gnomad_flags_json"`
	GnomadPli                 *float64 `db:"gnomad_pli"`
	GnomadLofZ                *float64 `db:"gnomad_lof_z"`
	GnomadMisZ                *float64 `db:"gnomad_mis_z"`
	GnomadSynZ                *float64 `db:"gnomad_syn_z"`
	GnomadOeLof               *float64 `db:"gnomad_oe_lof"`
	GnomadOeLofLower          *float64 `db:"gnomad_oe_lof_lower"`
	GnomadOeLofUpper          *float64 `db:"gnomad_oe_lof_upper"`
	GnomadOeMis               *float64 `db:"gnomad_oe_mis"`
	GnomadOeMisLower          *float64 `db:"gnomad_oe_mis_lower"`
	GnomadOeMisUpper          *float64 `db:"gnomad_oe_mis_upper"`
	GnomadOeSyn               *float64 `db:"gnomad_oe_syn"`
	GnomadOeSynLower          *float64 `db:"gnomad_oe_syn_lower"`
	GnomadOeSynUpper          *float64 `db:"gnomad_oe_syn_upper"`
	GnomadExpLof              *float64 `db:"gnomad_exp_lof"`
	GnomadExpMis              *float64 `db:"gnomad_exp_mis"`
	GnomadExpSyn              *float64 `db:"gnomad_exp_syn"`
	GnomadObsLof              *int64   `db:"gnomad_obs_lof"`
	GnomadObsMis              *int64   `db:"gnomad_obs_mis"`
	GnomadObsSyn              *int64   `db:"gnomad_obs_syn"`
	ManeEnsemblId             *string  `db:"mane_ensembl_id"`
	ManeEnsemblVersion        *string  `db:"mane_ensembl_version"`
	ManeRefseqId              *string  `db:"mane_refseq_id"`
	ManeRefseqVersion         *string  `db:"mane_refseq_version"`
	ManeMatchedGeneVersion    *string  `db:"mane_matched_gene_version"`
	TranscriptsJson           string   `db:"transcripts_json"`
}

func parseStringArray(encoded string) []string {
	if encoded == "" || encoded == "[]" {
		return []string{}
	}
	var parsed []*string
	if err := json.Unmarshal([]byte(encoded), &parsed); err != nil {
		logger.Debug("Unparseable array column", zap.String("value", encoded))
		return []string{}
	}
	values := make([]string, 0, len(parsed))
	for _, entry := range parsed {
		if entry != nil {
			values = append(values, *entry)
		}
	}
	return values
}

func parseInt64Array(encoded string) []int64 {
	if encoded == "" || encoded == "[]" {
		return []int64{}
	}
	var parsed []int64
	if err := json.Unmarshal([]byte(encoded), &parsed); err != nil {
		return []int64{}
	}
	return parsed
}

// zipExons combines the exon parallel arrays into ordered exon records.
// Storage order is preserved; ragged arrays truncate to the shortest.
func zipExons(featureTypes []string, starts, stops, xstarts, xstops []int64) []models.Exon {
	count := len(featureTypes)
	for _, length := range []int{len(starts), len(stops), len(xstarts), len(xstops)} {
		if length < count {
			count = length
		}
	}
	exons := make([]models.Exon, 0, count)
	for i := 0; i < count; i++ {
		exons = append(exons, models.Exon{
			FeatureType: featureTypes[i],
			Start:       starts[i],
			Stop:        stops[i],
			Xstart:      xstarts[i],
			Xstop:       xstops[i],
		})
	}
	return exons
}

// parseTranscripts decodes the serialized transcripts column. A parse
// failure yields an empty slice, never an error: transcripts are a
// non-critical detail field.
func parseTranscripts(encoded string) []models.Transcript {
	if encoded == "" || encoded == "[]" {
		return []models.Transcript{}
	}
	var transcripts []models.Transcript
	if err := json.Unmarshal([]byte(encoded), &transcripts); err != nil {
		logger.Debug("Unparseable transcripts_json, serving empty list", zap.Error(err))
		return []models.Transcript{}
	}
	return transcripts
}

func valueOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func valueOrZero(value *float64) float64 {
	if value == nil || math.IsNaN(*value) {
		return 0
	}
	return *value
}

func intOrZero(value *int64) int64 {
	if value == nil {
		return 0
	}
	return *value
}

func (row *GeneModelRow) hasGnomadConstraint() bool {
	return row.GnomadGene != nil || row.GnomadGeneId != nil || row.GnomadTranscript != nil ||
		row.GnomadPli != nil || row.GnomadOeLof != nil || row.GnomadObsLof != nil
}

func (row *GeneModelRow) hasManeSelect() bool {
	return row.ManeEnsemblId != nil || row.ManeRefseqId != nil
}

// ToAPI expands the flat row into the nested gene model: exon arrays
// zipped, transcripts parsed, gnomAD and MANE bundles present only
// when at least one source column is non-null.
func (row *GeneModelRow) ToAPI() models.GeneModel {
	model := models.GeneModel{
		GeneId:                    row.GeneId,
		Symbol:                    row.Symbol,
		SymbolUpperCase:           row.SymbolUpperCase,
		Chrom:                     row.Chrom,
		Start:                     row.Start,
		Stop:                      row.Stop,
		Strand:                    row.Strand,
		Xstart:                    row.Xstart,
		Xstop:                     row.Xstop,
		CanonicalTranscriptId:     row.CanonicalTranscriptId,
		PreferredTranscriptId:     row.PreferredTranscriptId,
		PreferredTranscriptSource: row.PreferredTranscriptSource,
		GencodeSymbol:             row.GencodeSymbol,
		GeneVersion:               row.GeneVersion,
		Name:                      row.Name,
		HgncId:                    row.HgncId,
		NcbiId:                    row.NcbiId,
		OmimId:                    row.OmimId,
		ReferenceGenome:           row.ReferenceGenome,
		AliasSymbols:              parseStringArray(row.AliasSymbolsJson),
		PreviousSymbols:           parseStringArray(row.PreviousSymbolsJson),
		SearchTerms:               parseStringArray(row.SearchTermsJson),
		Flags:                     parseStringArray(row.FlagsJson),
		Exons: zipExons(
			parseStringArray(row.ExonFeatureTypesJson),
			parseInt64Array(row.ExonStartsJson),
			parseInt64Array(row.ExonStopsJson),
			parseInt64Array(row.ExonXstartsJson),
			parseInt64Array(row.ExonXstopsJson),
		),
		Transcripts: parseTranscripts(row.TranscriptsJson),
	}

	if row.hasManeSelect() {
		model.ManeSelectTranscript = &models.ManeSelectTranscript{
			EnsemblId:          valueOrEmpty(row.ManeEnsemblId),
			EnsemblVersion:     valueOrEmpty(row.ManeEnsemblVersion),
			RefseqId:           valueOrEmpty(row.ManeRefseqId),
			RefseqVersion:      valueOrEmpty(row.ManeRefseqVersion),
			MatchedGeneVersion: valueOrEmpty(row.ManeMatchedGeneVersion),
		}
	}

	if row.hasGnomadConstraint() {
		maneSelect := false
		if row.GnomadManeSelect != nil {
			maneSelect = *row.GnomadManeSelect
		}
		model.GnomadConstraint = &models.GnomadConstraint{
			Gene:       valueOrEmpty(row.GnomadGene),
			GeneId:     valueOrEmpty(row.GnomadGeneId),
			Transcript: valueOrEmpty(row.GnomadTranscript),
			ManeSelect: maneSelect,
			Flags:      parseStringArray(row.GnomadFlagsJson),
			ObsLof:     intOrZero(row.GnomadObsLof),
			ObsMis:     intOrZero(row.GnomadObsMis),
			ObsSyn:     intOrZero(row.GnomadObsSyn),
			ExpLof:     valueOrZero(row.GnomadExpLof),
			ExpMis:     valueOrZero(row.GnomadExpMis),
			ExpSyn:     valueOrZero(row.GnomadExpSyn),
			OeLof:      valueOrZero(row.GnomadOeLof),
			OeLofLower: valueOrZero(row.GnomadOeLofLower),
			OeLofUpper: valueOrZero(row.GnomadOeLofUpper),
			OeMis:      valueOrZero(row.GnomadOeMis),
			OeMisLower: valueOrZero(row.GnomadOeMisLower),
			OeMisUpper: valueOrZero(row.GnomadOeMisUpper),
			OeSyn:      valueOrZero(row.GnomadOeSyn),
			OeSynLower: valueOrZero(row.GnomadOeSynLower),
			OeSynUpper: valueOrZero(row.GnomadOeSynUpper),
			LofZ:       valueOrZero(row.GnomadLofZ),
			MisZ:       valueOrZero(row.GnomadMisZ),
			SynZ:       valueOrZero(row.GnomadSynZ),
			Pli:        valueOrZero(row.GnomadPli),
		}
	}

	return model
}
