package xpos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, int64(1_000_012_345), Encode("chr1", 12345))
	assert.Equal(t, int64(1_000_012_345), Encode("1", 12345))
	assert.Equal(t, int64(22_000_001_000), Encode("chr22", 1000))
	assert.Equal(t, int64(23_000_005_000), Encode("X", 5000))
	assert.Equal(t, int64(23_000_005_000), Encode("chrX", 5000))
	assert.Equal(t, int64(24_000_000_100), Encode("Y", 100))
	assert.Equal(t, int64(25_000_000_001), Encode("MT", 1))
	assert.Equal(t, int64(25_000_000_001), Encode("M", 1))
}

func TestEncodeInvalidContig(t *testing.T) {
	assert.Equal(t, int64(0), Encode("chrZ", 1))
	assert.Equal(t, int64(0), Encode("23", 1))
	assert.Equal(t, int64(0), Encode("0", 1))
	assert.Equal(t, int64(0), Encode("", 1))
}

func TestDecodeRoundTrip(t *testing.T) {
	contigs := []string{"1", "12", "22", "X", "Y", "M"}
	for _, contig := range contigs {
		encoded := Encode(contig, 123456)
		decodedContig, decodedPosition := Decode(encoded)
		assert.Equal(t, contig, decodedContig)
		assert.Equal(t, uint32(123456), decodedPosition)
	}
}

func TestParseVariantID(t *testing.T) {
	encoded, ref, alt, err := ParseVariantID("chr1-12345-A-T")
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_012_345), encoded)
	assert.Equal(t, "A", ref)
	assert.Equal(t, "T", alt)

	encoded, ref, alt, err = ParseVariantID("22-1000-ACGT-G")
	require.NoError(t, err)
	assert.Equal(t, int64(22_000_001_000), encoded)
	assert.Equal(t, "ACGT", ref)
	assert.Equal(t, "G", alt)
}

func TestParseVariantIDErrors(t *testing.T) {
	_, _, _, err := ParseVariantID("chr1-100")
	assert.Error(t, err)

	_, _, _, err = ParseVariantID("chr1-abc-A-T")
	assert.Error(t, err)

	_, _, _, err = ParseVariantID("chrZ-100-A-T")
	assert.Error(t, err)
}

func TestParseInterval(t *testing.T) {
	start, stop, err := ParseInterval("chr1:100-200")
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000_100), start)
	assert.Equal(t, int64(1_000_000_200), stop)

	start, stop, err = ParseInterval("X:1-5000")
	require.NoError(t, err)
	assert.Equal(t, int64(23_000_000_001), start)
	assert.Equal(t, int64(23_000_005_000), stop)
}

func TestParseIntervalErrors(t *testing.T) {
	_, _, err := ParseInterval("chr1-100-200")
	assert.Error(t, err)

	_, _, err = ParseInterval("chr1:100")
	assert.Error(t, err)

	_, _, err = ParseInterval("chr1:abc-200")
	assert.Error(t, err)

	_, _, err = ParseInterval("chrZ:100-200")
	assert.Error(t, err)
}

func TestParseIntervalKeepsOrder(t *testing.T) {
	// Reversed bounds are passed through untouched; the query simply
	// matches nothing.
	start, stop, err := ParseInterval("chr1:200-100")
	require.NoError(t, err)
	assert.Greater(t, start, stop)
}

func TestFormatVariantID(t *testing.T) {
	assert.Equal(t, "1-12345-A-T", FormatVariantID("1", 12345, "A", "T"))
	assert.Equal(t, "X-5000-ACGT-G", FormatVariantID("X", 5000, "ACGT", "G"))
}
