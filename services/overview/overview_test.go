package overview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadinstitute/all-by-all-aou-browser/models/dtos"
	"github.com/broadinstitute/all-by-all-aou-browser/repositories/clickhouse"
)

func floatPtr(value float64) *float64 { return &value }

func TestMergeGenomeAndExomeSameBin(t *testing.T) {
	genome := []dtos.Peak{
		{Contig: "chr10", Position: 121_520_000, Pvalue: 3e-12, Genes: []dtos.PeakGene{
			{GeneSymbol: "FGFR2", GeneId: "ENSG00000066468", DistanceKb: 18.4, CodingVariantCount: 2},
		}},
	}
	exome := []dtos.Peak{
		{Contig: "chr10", Position: 121_540_000, Pvalue: 7e-9, Genes: []dtos.PeakGene{
			{GeneSymbol: "FGFR2", GeneId: "ENSG00000066468", DistanceKb: 18.4,
				CodingVariantCount: 5, BurdenPvalue: floatPtr(1.1e-7)},
		}},
	}

	loci := Merge(genome, exome, nil)
	require.Len(t, loci, 1)

	locus := loci[0]
	require.NotNil(t, locus.PvalueGenome)
	assert.Equal(t, 3e-12, *locus.PvalueGenome)
	require.NotNil(t, locus.PvalueExome)
	assert.Equal(t, 7e-9, *locus.PvalueExome)

	require.Len(t, locus.Genes, 1)
	gene := locus.Genes[0]
	require.NotNil(t, gene.CodingVariantCountGenome)
	assert.Equal(t, uint64(2), *gene.CodingVariantCountGenome)
	require.NotNil(t, gene.CodingVariantCountExome)
	assert.Equal(t, uint64(5), *gene.CodingVariantCountExome)
	require.Len(t, gene.BurdenResults, 1)
	assert.Equal(t, "pLoF", gene.BurdenResults[0].Annotation)
}

func TestMergeExomeOnlyBinCreatesLocus(t *testing.T) {
	exome := []dtos.Peak{
		{Contig: "chr20", Position: 35_440_000, Pvalue: 8e-10},
	}

	loci := Merge(nil, exome, nil)
	require.Len(t, loci, 1)
	assert.Nil(t, loci[0].PvalueGenome)
	require.NotNil(t, loci[0].PvalueExome)
	assert.Equal(t, 8e-10, *loci[0].PvalueExome)
}

func TestMergeBurdenOnlyLocus(t *testing.T) {
	burden := []clickhouse.SignificantBurdenRow{
		{GeneId: "ENSG00000125965", GeneSymbol: "GDF5", Contig: "chr20",
			GeneStartPosition: 35_433_347, Annotation: "pLoF",
			Pvalue: floatPtr(4e-7), PvalueBurden: floatPtr(9e-8)},
		{GeneId: "ENSG00000125965", GeneSymbol: "GDF5", Contig: "chr20",
			GeneStartPosition: 35_433_347, Annotation: "missenseLC",
			Pvalue: floatPtr(1.5e-6)},
	}

	loci := Merge(nil, nil, burden)
	require.Len(t, loci, 1)

	locus := loci[0]
	assert.Nil(t, locus.PvalueGenome)
	assert.Nil(t, locus.PvalueExome)
	require.Len(t, locus.Genes, 1)

	gene := locus.Genes[0]
	assert.Equal(t, "GDF5", gene.GeneSymbol)
	assert.Equal(t, 0.0, gene.DistanceKb)
	require.Len(t, gene.BurdenResults, 2)
	assert.Equal(t, "pLoF", gene.BurdenResults[0].Annotation)
	assert.Equal(t, "missenseLC", gene.BurdenResults[1].Annotation)
}

func TestMergeBurdenAttachesToExistingGene(t *testing.T) {
	genome := []dtos.Peak{
		{Contig: "chr20", Position: 35_440_000, Pvalue: 2e-9, Genes: []dtos.PeakGene{
			{GeneSymbol: "GDF5", GeneId: "ENSG00000125965", DistanceKb: 4.2,
				BurdenPvalue: floatPtr(9e-8)},
		}},
	}
	burden := []clickhouse.SignificantBurdenRow{
		{GeneId: "ENSG00000125965", GeneSymbol: "GDF5", Contig: "chr20",
			GeneStartPosition: 35_433_347, Annotation: "pLoF", PvalueBurden: floatPtr(9e-8)},
		{GeneId: "ENSG00000125965", GeneSymbol: "GDF5", Contig: "chr20",
			GeneStartPosition: 35_433_347, Annotation: "synonymous", Pvalue: floatPtr(2e-6)},
	}

	loci := Merge(genome, nil, burden)
	require.Len(t, loci, 1)
	require.Len(t, loci[0].Genes, 1)

	results := loci[0].Genes[0].BurdenResults
	require.Len(t, results, 2)
	assert.Equal(t, "pLoF", results[0].Annotation)
	assert.Equal(t, "synonymous", results[1].Annotation)
}

func TestMergeSortsByBestPvalue(t *testing.T) {
	genome := []dtos.Peak{
		{Contig: "chr1", Position: 1_500_000, Pvalue: 5e-8},
		{Contig: "chr2", Position: 2_500_000, Pvalue: 1e-12},
	}
	burden := []clickhouse.SignificantBurdenRow{
		{GeneId: "ENSG00000121410", GeneSymbol: "A1BG", Contig: "chr19",
			GeneStartPosition: 58_345_178, Annotation: "pLoF", Pvalue: floatPtr(1e-7)},
	}

	loci := Merge(genome, nil, burden)
	require.Len(t, loci, 3)
	assert.Equal(t, "chr2", loci[0].Contig)
	assert.Equal(t, "chr1", loci[1].Contig)
	assert.Equal(t, "chr19", loci[2].Contig)
}
