package initStrategy

import (
	"strings"

	"github.com/broadinstitute/all-by-all-aou-browser/models/constants"
)

const (
	Unknown constants.InitStrategy = ""

	// Create runs the DDL only if the target table is missing.
	Create constants.InitStrategy = "create"
	// Replace drops the target table and recreates it empty.
	Replace constants.InitStrategy = "replace"
	// Append runs the DDL if needed and keeps existing rows.
	Append constants.InitStrategy = "append"
)

func CastToInitStrategy(text string) constants.InitStrategy {
	switch strings.ToLower(text) {
	case "create":
		return Create
	case "replace":
		return Replace
	case "append":
		return Append
	default:
		return Unknown
	}
}

func IsKnownInitStrategy(text string) bool {
	return CastToInitStrategy(text) != Unknown
}
