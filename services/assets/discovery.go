// Package assets discovers and caches the per-phenotype Hail result
// tables published in the object store, so the client can tell which
// analyses have browsable data before issuing queries.
package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"google.golang.org/api/iterator"

	"github.com/broadinstitute/all-by-all-aou-browser/logger"
	"github.com/broadinstitute/all-by-all-aou-browser/models"
	"github.com/broadinstitute/all-by-all-aou-browser/models/constants"
	"github.com/broadinstitute/all-by-all-aou-browser/models/constants/ancestry"
	assetType "github.com/broadinstitute/all-by-all-aou-browser/models/constants/asset-type"
	sequencingType "github.com/broadinstitute/all-by-all-aou-browser/models/constants/sequencing-type"
)

// maxConcurrentListings caps the parallel per-phenotype list calls so a
// full scan does not exhaust the client's connection pool.
const maxConcurrentListings = 50

// assetName maps a Hail table directory name to its asset kind.
type assetName struct {
	AssetType      constants.AssetType
	SequencingType constants.SequencingType
}

var knownAssetNames = map[string]assetName{
	"exome_variant_results.ht":                        {assetType.Variant, sequencingType.Exome},
	"genome_variant_results.ht":                       {assetType.Variant, sequencingType.Genome},
	"exome_variant_results_approx_cdf_expected_p.ht":  {assetType.VariantExpectedP, sequencingType.Exome},
	"genome_variant_results_approx_cdf_expected_p.ht": {assetType.VariantExpectedP, sequencingType.Genome},
	"gene_results.ht":                                 {assetType.Gene, sequencingType.Unknown},
}

// NormalizeAnalysisID strips the storage-layer "phenotype_" prefix.
func NormalizeAnalysisID(analysisID string) string {
	return strings.TrimPrefix(analysisID, "phenotype_")
}

// HashID derives a short stable id for an asset so the client can use
// it as a cache key.
func HashID(analysisID string, ancestryGroup constants.AncestryGroup, seqType constants.SequencingType) string {
	digest := sha256.Sum256([]byte(analysisID + "|" + string(ancestryGroup) + "|" + string(seqType)))
	return hex.EncodeToString(digest[:])[:12]
}

// Discoverer walks the result bucket and produces the asset inventory.
type Discoverer struct {
	client     *storage.Client
	bucket     string
	basePrefix string
}

func NewDiscoverer(client *storage.Client, bucket string, basePrefix string) *Discoverer {
	return &Discoverer{client: client, bucket: bucket, basePrefix: basePrefix}
}

// listPrefixes returns the immediate sub-directories under a prefix.
func (d *Discoverer) listPrefixes(ctx context.Context, prefix string) ([]string, error) {
	it := d.client.Bucket(d.bucket).Objects(ctx, &storage.Query{
		Prefix:    prefix,
		Delimiter: "/",
	})

	var prefixes []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing gs://%s/%s: %w", d.bucket, prefix, err)
		}
		if attrs.Prefix != "" {
			prefixes = append(prefixes, attrs.Prefix)
		}
	}
	return prefixes, nil
}

// lastSegment extracts the directory name from a trailing-slash prefix.
func lastSegment(prefix string) string {
	trimmed := strings.TrimSuffix(prefix, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// phenotypeAssets matches the Hail tables under one phenotype directory
// against the known asset names.
func (d *Discoverer) phenotypeAssets(ctx context.Context, ancestryGroup constants.AncestryGroup, phenotypePrefix string) ([]models.AnalysisAsset, error) {
	tablePrefixes, err := d.listPrefixes(ctx, phenotypePrefix)
	if err != nil {
		return nil, err
	}

	analysisID := NormalizeAnalysisID(lastSegment(phenotypePrefix))
	var found []models.AnalysisAsset
	for _, tablePrefix := range tablePrefixes {
		name, ok := knownAssetNames[lastSegment(tablePrefix)]
		if !ok {
			continue
		}
		found = append(found, models.AnalysisAsset{
			Id:             HashID(analysisID, ancestryGroup, name.SequencingType),
			AncestryGroup:  ancestryGroup,
			AnalysisId:     analysisID,
			Uri:            fmt.Sprintf("gs://%s/%s", d.bucket, strings.TrimSuffix(tablePrefix, "/")),
			AssetType:      name.AssetType,
			SequencingType: name.SequencingType,
		})
	}
	return found, nil
}

// Discover scans every ancestry directory in parallel, keeping only
// phenotype directories present in validPhenotypes. The set contains
// both the bare and the "phenotype_"-prefixed spellings. A failed
// ancestry is logged and skipped; the scan degrades rather than fails.
func (d *Discoverer) Discover(ctx context.Context, validPhenotypes map[string]bool) ([]models.AnalysisAsset, error) {
	groups := ancestry.All()
	perAncestry := make([][]models.AnalysisAsset, len(groups))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, group := range groups {
		i, group := i, group
		eg.Go(func() error {
			found, err := d.discoverAncestry(egCtx, group, validPhenotypes)
			if err != nil {
				logger.Warn("Asset discovery failed for ancestry, skipping",
					zap.String("ancestry", string(group)), zap.Error(err))
				return nil
			}
			perAncestry[i] = found
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []models.AnalysisAsset
	for _, found := range perAncestry {
		all = append(all, found...)
	}
	logger.Info("Asset discovery complete", zap.Int("assets", len(all)))
	return all, nil
}

func (d *Discoverer) discoverAncestry(ctx context.Context, group constants.AncestryGroup, validPhenotypes map[string]bool) ([]models.AnalysisAsset, error) {
	prefix := fmt.Sprintf("%s/%s/", d.basePrefix, ancestry.DirName(group))
	phenotypePrefixes, err := d.listPrefixes(ctx, prefix)
	if err != nil {
		return nil, err
	}

	sem := semaphore.NewWeighted(maxConcurrentListings)
	eg, egCtx := errgroup.WithContext(ctx)
	perPhenotype := make([][]models.AnalysisAsset, len(phenotypePrefixes))

	for i, phenotypePrefix := range phenotypePrefixes {
		dirName := lastSegment(phenotypePrefix)
		if len(validPhenotypes) > 0 && !validPhenotypes[dirName] {
			continue
		}

		i, phenotypePrefix := i, phenotypePrefix
		eg.Go(func() error {
			if err := sem.Acquire(egCtx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			found, err := d.phenotypeAssets(egCtx, group, phenotypePrefix)
			if err != nil {
				logger.Warn("Skipping phenotype directory",
					zap.String("prefix", phenotypePrefix), zap.Error(err))
				return nil
			}
			perPhenotype[i] = found
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var found []models.AnalysisAsset
	for _, assets := range perPhenotype {
		found = append(found, assets...)
	}
	return found, nil
}
