package phenotype

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo"
	"go.uber.org/zap"

	"github.com/broadinstitute/all-by-all-aou-browser/apperrors"
	"github.com/broadinstitute/all-by-all-aou-browser/logger"
	"github.com/broadinstitute/all-by-all-aou-browser/models/dtos"
	"github.com/broadinstitute/all-by-all-aou-browser/mvc"
	"github.com/broadinstitute/all-by-all-aou-browser/services/overview"
)

const (
	defaultSignificantLimit = 50000
	defaultQQSequencingType = "genomes"
	defaultPlotType         = "genome_manhattan"

	// Pre-rendered plots are immutable per release; let clients and
	// proxies hold them for a day.
	imageCacheControl = "public, max-age=86400"
)

// GetLoci lists the merged significant loci of one analysis.
func GetLoci(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	found, err := gc.Repo.Loci(c.Request().Context(), c.Param("id"), mvc.AncestryParam(c))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// GetLocusVariants lists the rendering points of one locus. The
// sequencing_type parameter is required.
func GetLocusVariants(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	sequencingType := c.QueryParam("sequencing_type")
	if sequencingType == "" {
		return mvc.RespondError(c, apperrors.MissingParameter("sequencing_type"))
	}

	found, err := gc.Repo.LocusVariants(c.Request().Context(),
		c.Param("id"), c.Param("locus"), mvc.AncestryParam(c), sequencingType)
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// GetSignificant lists the genome-wide significant points of one
// analysis.
func GetSignificant(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	found, err := gc.Repo.SignificantLocusVariants(c.Request().Context(),
		c.Param("id"), mvc.AncestryParam(c), c.QueryParam("sequencing_type"),
		mvc.IntParam(c, "limit", defaultSignificantLimit))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// GetPlots lists the registered pre-rendered plots of one phenotype.
func GetPlots(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	found, err := gc.Repo.Plots(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// GetQQ lists the pre-downsampled Q-Q points of one analysis.
func GetQQ(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	sequencingType := c.QueryParam("sequencing_type")
	if sequencingType == "" {
		sequencingType = defaultQQSequencingType
	}

	found, err := gc.Repo.QQPoints(c.Request().Context(),
		c.Param("id"), mvc.AncestryParam(c), sequencingType, c.QueryParam("contig"))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

func plotTypeParam(c echo.Context) string {
	plotType := c.QueryParam("plot_type")
	if plotType == "" {
		return defaultPlotType
	}
	return plotType
}

// overlaySequencingType maps the requested plot to the sequencing type
// its overlay is computed from.
func overlaySequencingType(plotType string) string {
	if plotType == "exome_manhattan" {
		return "exome"
	}
	return "genome"
}

func parseGcsUri(uri string) (string, string, error) {
	trimmed := strings.TrimPrefix(uri, "gs://")
	if trimmed == uri {
		return "", "", apperrors.DataTransform("not a gs:// URI: %s", uri)
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", apperrors.DataTransform("malformed gs:// URI: %s", uri)
	}
	return parts[0], parts[1], nil
}

// imageURL builds the image proxy path, carrying only the parameters
// the client actually supplied.
func imageURL(analysisID string, c echo.Context) string {
	base := fmt.Sprintf("/api/phenotype/%s/manhattan/image", url.PathEscape(analysisID))
	query := url.Values{}
	if ancestryGroup := c.QueryParam("ancestry"); ancestryGroup != "" {
		query.Set("ancestry", ancestryGroup)
	}
	if plotType := c.QueryParam("plot_type"); plotType != "" {
		query.Set("plot_type", plotType)
	}
	if len(query) == 0 {
		return base
	}
	return base + "?" + query.Encode()
}

func buildOverlay(c echo.Context) (*dtos.ManhattanOverlay, error) {
	gc := mvc.RetrieveBrowserContext(c)
	analysisID := c.Param("id")
	ancestryGroup := mvc.AncestryParam(c)
	sequencingType := overlaySequencingType(plotTypeParam(c))

	hits, err := gc.Repo.OverlayHits(c.Request().Context(),
		analysisID, ancestryGroup, sequencingType)
	if err != nil {
		return nil, err
	}

	peaks, err := gc.Repo.Peaks(c.Request().Context(),
		analysisID, ancestryGroup, sequencingType, overview.PeakCount)
	if err != nil {
		logger.Warn("Peak annotation failed, serving hits only",
			zap.String("analysis_id", analysisID), zap.Error(err))
		peaks = []dtos.Peak{}
	}

	return &dtos.ManhattanOverlay{
		SignificantHits: hits,
		HitCount:        len(hits),
		Peaks:           peaks,
	}, nil
}

// GetManhattan bundles the image proxy URL with the overlay. Overlay
// failures degrade to an image-only response.
func GetManhattan(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)
	analysisID := c.Param("id")

	if _, err := gc.Repo.PlotURI(c.Request().Context(),
		analysisID, plotTypeParam(c), mvc.AncestryParam(c)); err != nil {
		return mvc.RespondError(c, err)
	}

	response := dtos.ManhattanResponse{ImageUrl: imageURL(analysisID, c)}
	overlayData, err := buildOverlay(c)
	if err != nil {
		logger.Warn("Overlay unavailable",
			zap.String("analysis_id", analysisID), zap.Error(err))
	} else {
		response.Overlay = overlayData
		response.HasOverlay = overlayData.HitCount > 0
	}
	return c.JSON(http.StatusOK, response)
}

// GetManhattanOverlay serves the overlay on its own.
func GetManhattanOverlay(c echo.Context) error {
	overlayData, err := buildOverlay(c)
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, overlayData)
}

// GetManhattanImage streams the pre-rendered plot PNG from the object
// store.
func GetManhattanImage(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)
	analysisID := c.Param("id")

	uri, err := gc.Repo.PlotURI(c.Request().Context(),
		analysisID, plotTypeParam(c), mvc.AncestryParam(c))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	if !strings.HasSuffix(uri, ".png") {
		return mvc.RespondError(c, apperrors.DataTransform("Expected PNG file, got: %s", uri))
	}

	bucket, object, err := parseGcsUri(uri)
	if err != nil {
		return mvc.RespondError(c, err)
	}

	reader, err := gc.Storage.Bucket(bucket).Object(object).NewReader(c.Request().Context())
	if err != nil {
		return mvc.RespondError(c, apperrors.Task(err, "failed to open plot %s", uri))
	}
	defer reader.Close()

	c.Response().Header().Set("Cache-Control", imageCacheControl)
	return c.Stream(http.StatusOK, "image/png", reader)
}

// GetOverview serves the unified-locus view: genome peaks, exome peaks
// and significant burden tests merged per 1Mb bin. Either peak source
// failing degrades to the other.
func GetOverview(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)
	analysisID := c.Param("id")
	ancestryGroup := mvc.AncestryParam(c)
	ctx := c.Request().Context()

	genomePeaks, err := gc.Repo.Peaks(ctx, analysisID, ancestryGroup, "genome", overview.PeakCount)
	if err != nil {
		logger.Warn("Genome peaks unavailable for overview",
			zap.String("analysis_id", analysisID), zap.Error(err))
		genomePeaks = []dtos.Peak{}
	}

	exomePeaks, err := gc.Repo.Peaks(ctx, analysisID, ancestryGroup, "exome", overview.PeakCount)
	if err != nil {
		logger.Warn("Exome peaks unavailable for overview",
			zap.String("analysis_id", analysisID), zap.Error(err))
		exomePeaks = []dtos.Peak{}
	}

	burdenRows, err := gc.Repo.SignificantBurdenHits(ctx,
		analysisID, ancestryGroup, overview.BurdenThreshold)
	if err != nil {
		return mvc.RespondError(c, err)
	}

	response := overview.Response{
		GenomeImageUrl: fmt.Sprintf("/api/phenotype/%s/manhattan/image?ancestry=%s&plot_type=genome_manhattan",
			url.PathEscape(analysisID), url.QueryEscape(ancestryGroup)),
		ExomeImageUrl: fmt.Sprintf("/api/phenotype/%s/manhattan/image?ancestry=%s&plot_type=exome_manhattan",
			url.PathEscape(analysisID), url.QueryEscape(ancestryGroup)),
		UnifiedLoci: overview.Merge(genomePeaks, exomePeaks, burdenRows),
	}
	return c.JSON(http.StatusOK, response)
}
