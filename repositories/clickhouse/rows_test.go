package clickhouse

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignificantVariantRowToAPI(t *testing.T) {
	row := SignificantVariantRow{
		Phenotype:      "height",
		Ancestry:       "meta",
		SequencingType: "genome",
		Xpos:           1_000_012_345,
		Contig:         "chr1",
		Position:       12345,
		Ref:            "A",
		Alt:            "T",
		Pvalue:         1e-9,
		Beta:           0.02,
		Se:             0.003,
		Af:             0.12,
	}

	shaped := row.ToAPI()
	assert.Equal(t, "chr1-12345-A-T", shaped.VariantId)
	assert.Equal(t, "chr1", shaped.Locus.Contig)
	assert.Equal(t, uint32(12345), shaped.Locus.Position)
	assert.Equal(t, 1e-9, shaped.Pvalue)
}

func TestNullifyNaN(t *testing.T) {
	assert.Nil(t, nullifyNaN(nil))

	nan := math.NaN()
	assert.Nil(t, nullifyNaN(&nan))

	zero := 0.0
	require.NotNil(t, nullifyNaN(&zero))
	assert.Equal(t, 0.0, *nullifyNaN(&zero))
}

func TestGeneAssociationRowNaNPvalues(t *testing.T) {
	nan := math.NaN()
	pvalue := 2.5e-7
	row := GeneAssociationRow{
		GeneId:       "ENSG00000066468",
		GeneSymbol:   "FGFR2",
		Annotation:   "pLoF",
		MaxMaf:       0.001,
		Phenotype:    "height",
		Ancestry:     "meta",
		Pvalue:       &pvalue,
		PvalueBurden: &nan,
	}

	shaped := row.ToAPI()
	require.NotNil(t, shaped.Pvalue)
	assert.Equal(t, pvalue, *shaped.Pvalue)
	assert.Nil(t, shaped.PvalueBurden)
	assert.Nil(t, shaped.PvalueSkat)
}

func TestZipExons(t *testing.T) {
	exons := zipExons(
		[]string{"CDS", "UTR"},
		[]int64{100, 200},
		[]int64{150, 250},
		[]int64{1_000_000_100, 1_000_000_200},
		[]int64{1_000_000_150, 1_000_000_250},
	)
	require.Len(t, exons, 2)
	assert.Equal(t, "CDS", exons[0].FeatureType)
	assert.Equal(t, int64(200), exons[1].Start)
	assert.Equal(t, int64(1_000_000_250), exons[1].Xstop)
}

func TestZipExonsRaggedArrays(t *testing.T) {
	exons := zipExons(
		[]string{"CDS", "UTR", "CDS"},
		[]int64{100},
		[]int64{150},
		[]int64{1_000_000_100},
		[]int64{1_000_000_150},
	)
	assert.Len(t, exons, 1)
}

func TestParseStringArraySkipsNulls(t *testing.T) {
	assert.Equal(t, []string{"A1BG", "GAB"}, parseStringArray(`["A1BG",null,"GAB"]`))
	assert.Empty(t, parseStringArray(""))
	assert.Empty(t, parseStringArray("[]"))
	assert.Empty(t, parseStringArray("not json"))
}

func TestParseTranscriptsBadJsonDegradesToEmpty(t *testing.T) {
	assert.Empty(t, parseTranscripts("{broken"))
	assert.Empty(t, parseTranscripts(""))

	transcripts := parseTranscripts(`[{"transcript_id":"ENST00000302118","chrom":"chr10","start":121478332,"stop":121598458,"exons":[]}]`)
	require.Len(t, transcripts, 1)
	assert.Equal(t, "ENST00000302118", transcripts[0].TranscriptId)
}

func TestGeneModelRowNestedBundles(t *testing.T) {
	row := GeneModelRow{
		GeneId:          "ENSG00000066468",
		Symbol:          "FGFR2",
		SymbolUpperCase: "FGFR2",
		Chrom:           "chr10",
		Start:           121478332,
		Stop:            121598458,
	}

	shaped := row.ToAPI()
	assert.Nil(t, shaped.GnomadConstraint)
	assert.Nil(t, shaped.ManeSelectTranscript)
	assert.NotNil(t, shaped.Exons)
	assert.NotNil(t, shaped.Transcripts)

	pli := 0.999
	maneId := "ENST00000358487"
	row.GnomadPli = &pli
	row.ManeEnsemblId = &maneId

	shaped = row.ToAPI()
	require.NotNil(t, shaped.GnomadConstraint)
	assert.Equal(t, 0.999, shaped.GnomadConstraint.Pli)
	require.NotNil(t, shaped.ManeSelectTranscript)
	assert.Equal(t, maneId, shaped.ManeSelectTranscript.EnsemblId)
}

func TestExtendedAnnotationRowToAPI(t *testing.T) {
	symbol := "SHOX"
	ac := uint32(41)
	row := ExtendedAnnotationRow{
		Xpos:       23_000_624_344,
		Contig:     "chrX",
		Position:   624344,
		Ref:        "G",
		Alt:        "C",
		GeneSymbol: &symbol,
		Ac:         &ac,
	}

	shaped := row.ToAPI()
	assert.Equal(t, "chrX-624344-G-C", shaped.VariantId)
	require.NotNil(t, shaped.GeneSymbol)
	assert.Equal(t, "SHOX", *shaped.GeneSymbol)
	require.NotNil(t, shaped.Ac)
	assert.Equal(t, uint32(41), *shaped.Ac)
	assert.Nil(t, shaped.Af)
}
