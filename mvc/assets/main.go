package assets

import (
	"net/http"

	"github.com/labstack/echo"

	"github.com/broadinstitute/all-by-all-aou-browser/apperrors"
	"github.com/broadinstitute/all-by-all-aou-browser/mvc"
	assetService "github.com/broadinstitute/all-by-all-aou-browser/services/assets"
)

func optionalParam(c echo.Context, name string) *string {
	if values, ok := c.QueryParams()[name]; ok && len(values) > 0 {
		return &values[0]
	}
	return nil
}

// GetAssets lists the discovered inventory, optionally filtered.
// refresh=true forces a rescan of the object store first.
func GetAssets(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)
	ctx := c.Request().Context()

	if c.QueryParam("refresh") == "true" {
		if err := gc.Assets.Refresh(ctx); err != nil {
			return mvc.RespondError(c, apperrors.Task(err, "asset discovery failed"))
		}
	} else if err := gc.Assets.EnsureLoaded(ctx); err != nil {
		return mvc.RespondError(c, apperrors.Task(err, "asset discovery failed"))
	}

	filter := assetService.Filter{
		AncestryGroup:  optionalParam(c, "ancestry"),
		AssetType:      optionalParam(c, "asset_type"),
		SequencingType: optionalParam(c, "sequencing_type"),
		AnalysisId:     optionalParam(c, "analysis_id"),
	}
	return c.JSON(http.StatusOK, gc.Assets.Filtered(filter))
}

// GetAssetsSummary aggregates the inventory.
func GetAssetsSummary(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	if err := gc.Assets.EnsureLoaded(c.Request().Context()); err != nil {
		return mvc.RespondError(c, apperrors.Task(err, "asset discovery failed"))
	}
	return c.JSON(http.StatusOK, gc.Assets.Summary())
}
