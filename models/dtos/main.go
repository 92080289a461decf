package dtos

import "time"

// LookupResult is the list envelope expected by the client:
//
//	{ data, count, storage_source, time_seconds }
type LookupResult[T any] struct {
	Data          []T     `json:"data"`
	Count         int     `json:"count"`
	StorageSource string  `json:"storage_source"`
	TimeSeconds   float64 `json:"time_seconds"`
}

// NewLookupResult wraps a result slice with its query duration. A nil
// slice serializes as an empty data array.
func NewLookupResult[T any](data []T, elapsed time.Duration) LookupResult[T] {
	if data == nil {
		data = []T{}
	}
	return LookupResult[T]{
		Data:          data,
		Count:         len(data),
		StorageSource: "clickhouse",
		TimeSeconds:   elapsed.Seconds(),
	}
}

// SignificantHit is one overlay point with raw genomic coordinates;
// the client computes display positions.
type SignificantHit struct {
	VariantId string  `json:"variant_id"`
	Contig    string  `json:"contig"`
	Position  int32   `json:"position"`
	Pvalue    float64 `json:"pvalue"`
}

// ManhattanOverlay carries the significant hits drawn over the
// pre-rendered plot image, plus the binned peaks with their candidate
// genes.
type ManhattanOverlay struct {
	SignificantHits []SignificantHit `json:"significant_hits"`
	HitCount        int              `json:"hit_count"`
	Peaks           []Peak           `json:"peaks"`
}

// ManhattanResponse bundles the image proxy URL with the overlay.
type ManhattanResponse struct {
	ImageUrl   string            `json:"image_url"`
	Overlay    *ManhattanOverlay `json:"overlay"`
	HasOverlay bool              `json:"has_overlay"`
}

// PeakGene is one candidate gene near a Manhattan peak.
type PeakGene struct {
	GeneSymbol         string   `json:"gene_symbol"`
	GeneId             string   `json:"gene_id"`
	DistanceKb         float64  `json:"distance_kb"`
	CodingVariantCount uint64   `json:"coding_variant_count"`
	BurdenPvalue       *float64 `json:"burden_pvalue,omitempty"`
	BurdenBeta         *float64 `json:"burden_beta,omitempty"`
}

// Peak is one 1Mb Manhattan peak with its nearby gene candidates.
type Peak struct {
	Contig   string     `json:"contig"`
	Position int64      `json:"position"`
	Pvalue   float64    `json:"pvalue"`
	Genes    []PeakGene `json:"genes"`
}

// AssetsSummary aggregates the discovered inventory for /assets/summary.
type AssetsSummary struct {
	TotalAssets      int            `json:"total_assets"`
	TotalPhenotypes  int            `json:"total_phenotypes"`
	ByAncestry       map[string]int `json:"by_ancestry"`
	ByAssetType      map[string]int `json:"by_asset_type"`
	BySequencingType map[string]int `json:"by_sequencing_type"`
}
