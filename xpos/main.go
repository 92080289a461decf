// Package xpos encodes (contig, position) pairs as a single int64 key,
// the gnomAD-style genome-wide coordinate used by every positional query:
//
//	xpos = contigNumber * 1_000_000_000 + position
//
// Contig numbers: 1-22 autosomes, 23 = X, 24 = Y, 25 = M/MT.
package xpos

import (
	"fmt"
	"strconv"
	"strings"
)

const contigMultiplier int64 = 1_000_000_000

// Encode converts a contig name and a position to an xpos value. The
// contig may carry a "chr" prefix in any case. Unknown contigs encode
// to 0, which no valid coordinate produces.
func Encode(contig string, position uint32) int64 {
	contigNum := ContigNumber(contig)
	if contigNum == 0 {
		return 0
	}
	return contigNum*contigMultiplier + int64(position)
}

// Decode splits an xpos back into its contig name and position.
func Decode(value int64) (string, uint32) {
	contigNum := value / contigMultiplier
	position := uint32(value % contigMultiplier)
	return ContigName(contigNum), position
}

// ContigNumber maps a contig name to its numeric code, or 0 when the
// name is not a recognized GRCh38 primary contig.
func ContigNumber(contig string) int64 {
	normalized := contig
	if len(normalized) >= 3 && strings.EqualFold(normalized[:3], "chr") {
		normalized = normalized[3:]
	}
	switch strings.ToUpper(normalized) {
	case "X":
		return 23
	case "Y":
		return 24
	case "M", "MT":
		return 25
	}
	num, err := strconv.ParseInt(normalized, 10, 64)
	if err != nil || num < 1 || num > 22 {
		return 0
	}
	return num
}

// ContigName is the inverse of ContigNumber. Numbers outside 1-25 map
// to the empty string.
func ContigName(contigNum int64) string {
	switch {
	case contigNum >= 1 && contigNum <= 22:
		return strconv.FormatInt(contigNum, 10)
	case contigNum == 23:
		return "X"
	case contigNum == 24:
		return "Y"
	case contigNum == 25:
		return "M"
	}
	return ""
}

// ParseVariantID parses "chr1-12345-A-T" (or "1-12345-A-T") into
// (xpos, ref, alt).
func ParseVariantID(variantID string) (int64, string, string, error) {
	parts := strings.Split(variantID, "-")
	if len(parts) != 4 {
		return 0, "", "", fmt.Errorf(
			"invalid variant ID format '%s'. Expected chr-pos-ref-alt", variantID)
	}

	position, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, "", "", fmt.Errorf("invalid position in variant ID: %s", parts[1])
	}

	encoded := Encode(parts[0], uint32(position))
	if encoded == 0 {
		return 0, "", "", fmt.Errorf("invalid chromosome in variant ID: %s", parts[0])
	}

	return encoded, parts[2], parts[3], nil
}

// ParseInterval parses "chr1:100-200" (or "1:100-200") into
// (xposStart, xposStop). Both bounds live on the same contig; no
// reordering is applied when start > stop.
func ParseInterval(interval string) (int64, int64, error) {
	parts := strings.Split(interval, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf(
			"invalid interval format '%s'. Expected chr:start-end", interval)
	}

	rangeParts := strings.Split(parts[1], "-")
	if len(rangeParts) != 2 {
		return 0, 0, fmt.Errorf(
			"invalid range format in interval '%s'. Expected start-end", interval)
	}

	start, err := strconv.ParseUint(rangeParts[0], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start position: %s", rangeParts[0])
	}
	stop, err := strconv.ParseUint(rangeParts[1], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end position: %s", rangeParts[1])
	}

	xposStart := Encode(parts[0], uint32(start))
	xposStop := Encode(parts[0], uint32(stop))
	if xposStart == 0 || xposStop == 0 {
		return 0, 0, fmt.Errorf("invalid chromosome in interval: %s", parts[0])
	}

	return xposStart, xposStop, nil
}

// FormatVariantID renders the canonical "contig-position-ref-alt" form.
func FormatVariantID(contig string, position uint32, ref string, alt string) string {
	return fmt.Sprintf("%s-%d-%s-%s", contig, position, ref, alt)
}
