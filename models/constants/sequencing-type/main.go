package sequencingType

import (
	"strings"

	"github.com/broadinstitute/all-by-all-aou-browser/models/constants"
)

const (
	Unknown constants.SequencingType = ""

	Exome  constants.SequencingType = "exome"
	Genome constants.SequencingType = "genome"
)

// CastToSequencingType accepts singular and plural spellings in any
// case ("exome", "Exomes", "GENOMES", ...).
func CastToSequencingType(text string) constants.SequencingType {
	normalized := strings.TrimSuffix(strings.ToLower(text), "s")
	switch normalized {
	case "exome":
		return Exome
	case "genome":
		return Genome
	default:
		return Unknown
	}
}

func IsKnownSequencingType(text string) bool {
	return CastToSequencingType(text) != Unknown
}

// Plural is the spelling used in result-store directory names
// ("exomes", "genomes").
func Plural(seqType constants.SequencingType) string {
	if seqType == Unknown {
		return ""
	}
	return string(seqType) + "s"
}
