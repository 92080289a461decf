package ancestry

import (
	"strings"

	"github.com/broadinstitute/all-by-all-aou-browser/models/constants"
)

const (
	Unknown constants.AncestryGroup = ""

	AFR  constants.AncestryGroup = "afr"
	AMR  constants.AncestryGroup = "amr"
	EAS  constants.AncestryGroup = "eas"
	EUR  constants.AncestryGroup = "eur"
	MID  constants.AncestryGroup = "mid"
	SAS  constants.AncestryGroup = "sas"
	Meta constants.AncestryGroup = "meta"
)

// Default is the ancestry used when a request omits the parameter.
const Default = Meta

func All() []constants.AncestryGroup {
	return []constants.AncestryGroup{AFR, AMR, EAS, EUR, MID, SAS, Meta}
}

func CastToAncestryGroup(text string) constants.AncestryGroup {
	switch strings.ToLower(text) {
	case "afr":
		return AFR
	case "amr":
		return AMR
	case "eas":
		return EAS
	case "eur":
		return EUR
	case "mid":
		return MID
	case "sas":
		return SAS
	case "meta":
		return Meta
	default:
		return Unknown
	}
}

func IsKnownAncestryGroup(text string) bool {
	return CastToAncestryGroup(text) != Unknown
}

// DirName is the uppercase spelling used by result paths in the
// object store ("AFR", "META", ...).
func DirName(group constants.AncestryGroup) string {
	return strings.ToUpper(string(group))
}
