package clickhouse

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldPeakRowsGroupsByPeak(t *testing.T) {
	burdenP := 1.2e-7
	rows := []PeakRow{
		{Contig: "chr10", PeakPosition: 121520000, PeakPvalue: 3e-12,
			GeneSymbol: "FGFR2", GeneId: "ENSG00000066468", DistanceKb: 18.4,
			CodingVariantCount: 3, BurdenPvalue: &burdenP},
		{Contig: "chr10", PeakPosition: 121520000, PeakPvalue: 3e-12,
			GeneSymbol: "ATE1", GeneId: "ENSG00000107669", DistanceKb: 95.1},
		{Contig: "chr20", PeakPosition: 35440000, PeakPvalue: 8e-10,
			GeneSymbol: "GDF5", GeneId: "ENSG00000125965", DistanceKb: 4.2,
			CodingVariantCount: 1},
	}

	peaks := foldPeakRows(rows)
	require.Len(t, peaks, 2)

	assert.Equal(t, "chr10", peaks[0].Contig)
	assert.Equal(t, int64(121520000), peaks[0].Position)
	require.Len(t, peaks[0].Genes, 2)
	assert.Equal(t, "FGFR2", peaks[0].Genes[0].GeneSymbol)
	require.NotNil(t, peaks[0].Genes[0].BurdenPvalue)
	assert.Equal(t, burdenP, *peaks[0].Genes[0].BurdenPvalue)
	assert.Nil(t, peaks[0].Genes[1].BurdenPvalue)

	require.Len(t, peaks[1].Genes, 1)
	assert.Equal(t, uint64(1), peaks[1].Genes[0].CodingVariantCount)
}

func TestFoldPeakRowsDropsVariantOnlyPeaks(t *testing.T) {
	rows := []PeakRow{
		{Contig: "chrX", PeakPosition: 640000, PeakPvalue: 2e-9},
	}
	assert.Empty(t, foldPeakRows(rows))

	// a join-miss row between two gene-bearing peaks drops only its own peak
	rows = []PeakRow{
		{Contig: "chr1", PeakPosition: 1000000, PeakPvalue: 1e-12,
			GeneSymbol: "A1BG", GeneId: "ENSG00000121410", DistanceKb: 12.0},
		{Contig: "chrX", PeakPosition: 640000, PeakPvalue: 2e-9},
		{Contig: "chr20", PeakPosition: 35440000, PeakPvalue: 8e-10,
			GeneSymbol: "GDF5", GeneId: "ENSG00000125965", DistanceKb: 4.2},
	}
	peaks := foldPeakRows(rows)
	require.Len(t, peaks, 2)
	assert.Equal(t, "chr1", peaks[0].Contig)
	assert.Equal(t, "chr20", peaks[1].Contig)
}

func TestFoldPeakRowsNaNBurden(t *testing.T) {
	nan := math.NaN()
	rows := []PeakRow{
		{Contig: "chr1", PeakPosition: 1000000, PeakPvalue: 1e-8,
			GeneSymbol: "A1BG", GeneId: "ENSG00000121410", BurdenPvalue: &nan},
	}

	peaks := foldPeakRows(rows)
	require.Len(t, peaks, 1)
	require.Len(t, peaks[0].Genes, 1)
	assert.Nil(t, peaks[0].Genes[0].BurdenPvalue)
}

func TestFoldPeakRowsEmpty(t *testing.T) {
	assert.Empty(t, foldPeakRows(nil))
}

func TestNormalizeSequencingType(t *testing.T) {
	assert.Equal(t, "exome", normalizeSequencingType("exomes"))
	assert.Equal(t, "genome", normalizeSequencingType("Genomes"))
	assert.Equal(t, "genome", normalizeSequencingType("genome"))
	assert.Equal(t, "", normalizeSequencingType(""))
}

func TestAnnotationTable(t *testing.T) {
	assert.Equal(t, "exome_annotations", annotationTable("exome"))
	assert.Equal(t, "exome_annotations", annotationTable("exomes"))
	assert.Equal(t, "genome_annotations", annotationTable("genome"))
	assert.Equal(t, "genome_annotations", annotationTable("genomes"))
	assert.Equal(t, "genome_annotations", annotationTable(""))
}
