package assetType

import (
	"strings"

	"github.com/broadinstitute/all-by-all-aou-browser/models/constants"
)

const (
	Unknown constants.AssetType = ""

	Variant            constants.AssetType = "variant"
	VariantDownsampled constants.AssetType = "variant_downsampled"
	VariantExpectedP   constants.AssetType = "variant_expected_p"
	Gene               constants.AssetType = "gene"
	GeneExpectedP      constants.AssetType = "gene_expected_p"
)

func CastToAssetType(text string) constants.AssetType {
	switch strings.ToLower(text) {
	case "variant":
		return Variant
	case "variant_downsampled":
		return VariantDownsampled
	case "variant_expected_p":
		return VariantExpectedP
	case "gene":
		return Gene
	case "gene_expected_p":
		return GeneExpectedP
	default:
		return Unknown
	}
}

func IsKnownAssetType(text string) bool {
	return CastToAssetType(text) != Unknown
}
