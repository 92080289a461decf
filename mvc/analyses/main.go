package analyses

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo"
	"gopkg.in/yaml.v2"

	"github.com/broadinstitute/all-by-all-aou-browser/apperrors"
	"github.com/broadinstitute/all-by-all-aou-browser/models"
	"github.com/broadinstitute/all-by-all-aou-browser/mvc"
)

//go:embed client_config.yaml
var clientConfigYaml []byte

// clientConfig is decoded once at boot; the blob is static.
var clientConfig map[string]interface{}

func init() {
	if err := yaml.Unmarshal(clientConfigYaml, &clientConfig); err != nil {
		panic("invalid embedded client_config.yaml: " + err.Error())
	}
}

// GetAnalyses lists the catalog, optionally narrowed to one ancestry
// group.
func GetAnalyses(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	ancestryGroup := c.QueryParam("ancestry_group")
	if ancestryGroup == "" {
		return c.JSON(http.StatusOK, gc.Catalog.All())
	}
	return c.JSON(http.StatusOK, gc.Catalog.FilterByAncestry(ancestryGroup))
}

// GetAnalysisById serves one analysis as an array of one record, the
// shape the client's detail page consumes.
func GetAnalysisById(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)
	analysisID := c.Param("id")

	found := gc.Catalog.FindByAnalysisId(analysisID)
	if len(found) == 0 {
		return mvc.RespondError(c, apperrors.NotFound("Analysis '%s' not found", analysisID))
	}
	return c.JSON(http.StatusOK, []models.AnalysisMetadata{found[0]})
}

// GetCategories serves the derived category groupings.
func GetCategories(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)
	return c.JSON(http.StatusOK, gc.Catalog.Categories())
}

// GetConfig serves the static client configuration blob.
func GetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, clientConfig)
}
