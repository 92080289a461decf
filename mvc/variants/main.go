package variants

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo"

	"github.com/broadinstitute/all-by-all-aou-browser/apperrors"
	"github.com/broadinstitute/all-by-all-aou-browser/models"
	"github.com/broadinstitute/all-by-all-aou-browser/models/dtos"
	"github.com/broadinstitute/all-by-all-aou-browser/mvc"
	"github.com/broadinstitute/all-by-all-aou-browser/xpos"
)

const (
	defaultAnnotationLimit = 1000
	defaultTopMinPvalue    = 1e-10
	defaultTopMaxPvalue    = 1e-6
	defaultTopLimit        = 1000
	defaultGeneLimit       = 10000
	defaultManhattanLimit  = 1000

	defaultGeneSequencingType      = "exomes"
	defaultManhattanSequencingType = "genomes"
)

// GetAnnotation serves one variant annotation, from the legacy merged
// table by default or from the per-sequencing-type tables when
// extended=true.
func GetAnnotation(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	xposValue, ref, alt, err := xpos.ParseVariantID(c.Param("variant_id"))
	if err != nil {
		return mvc.RespondError(c, apperrors.InvalidInterval("%v", err))
	}

	if c.QueryParam("extended") == "true" {
		found, err := gc.Repo.ExtendedVariantAnnotation(c.Request().Context(),
			c.QueryParam("sequencing_type"), xposValue, ref, alt)
		if err != nil {
			return mvc.RespondError(c, err)
		}
		return c.JSON(http.StatusOK, found)
	}

	found, err := gc.Repo.VariantAnnotation(c.Request().Context(), xposValue, ref, alt)
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// GetAnnotationsInInterval lists annotations inside an interval.
func GetAnnotationsInInterval(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	xposStart, xposStop, err := xpos.ParseInterval(c.Param("interval"))
	if err != nil {
		return mvc.RespondError(c, apperrors.InvalidInterval("%v", err))
	}
	limit := mvc.IntParam(c, "limit", defaultAnnotationLimit)

	if c.QueryParam("extended") == "true" {
		found, err := gc.Repo.ExtendedAnnotationsInInterval(c.Request().Context(),
			c.QueryParam("sequencing_type"), xposStart, xposStop, limit)
		if err != nil {
			return mvc.RespondError(c, err)
		}
		return c.JSON(http.StatusOK, found)
	}

	found, err := gc.Repo.AnnotationsInInterval(c.Request().Context(),
		xposStart, xposStop, limit)
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// GetAnnotationsByGene lists the annotations falling inside any exon of
// one gene. A gene without exon records yields an empty list.
func GetAnnotationsByGene(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)
	gene := c.Param("gene_id")

	var model *models.GeneModel
	var err error
	if strings.HasPrefix(gene, "ENSG") {
		model, err = gc.Repo.GeneModelById(c.Request().Context(), gene)
	} else {
		model, err = gc.Repo.GeneModelBySymbol(c.Request().Context(), gene)
	}
	if err != nil {
		return mvc.RespondError(c, err)
	}

	found, err := gc.Repo.AnnotationsByGeneExons(c.Request().Context(),
		c.QueryParam("sequencing_type"), model.Exons)
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// GetAssociationByVariant serves one (phenotype, variant) association.
func GetAssociationByVariant(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	analysisID := c.QueryParam("analysis_id")
	if analysisID == "" {
		return mvc.RespondError(c, apperrors.MissingParameter("analysis_id"))
	}

	xposValue, ref, alt, err := xpos.ParseVariantID(c.Param("variant_id"))
	if err != nil {
		return mvc.RespondError(c, apperrors.InvalidInterval("%v", err))
	}

	found, err := gc.Repo.AssociationByVariant(c.Request().Context(),
		analysisID, xposValue, ref, alt)
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// GetAssociationsInInterval lists one phenotype's associations inside
// an interval.
func GetAssociationsInInterval(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	analysisID := c.QueryParam("analysis_id")
	if analysisID == "" {
		return mvc.RespondError(c, apperrors.MissingParameter("analysis_id"))
	}

	xposStart, xposStop, err := xpos.ParseInterval(c.Param("interval"))
	if err != nil {
		return mvc.RespondError(c, apperrors.InvalidInterval("%v", err))
	}

	found, err := gc.Repo.AssociationsInInterval(c.Request().Context(),
		analysisID, xposStart, xposStop)
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// GetVariantPhewas lists every phenotype association of one variant.
func GetVariantPhewas(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	xposValue, ref, alt, err := xpos.ParseVariantID(c.Param("variant_id"))
	if err != nil {
		return mvc.RespondError(c, apperrors.InvalidInterval("%v", err))
	}

	found, err := gc.Repo.VariantPhewas(c.Request().Context(), xposValue, ref, alt)
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// GetTopVariants lists the strongest associations in a p-value window.
// The ancestry parameter is required.
func GetTopVariants(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	ancestryGroup := c.QueryParam("ancestry")
	if ancestryGroup == "" {
		return mvc.RespondError(c, apperrors.MissingParameter("ancestry"))
	}

	found, err := gc.Repo.TopVariants(c.Request().Context(),
		ancestryGroup,
		mvc.FloatParam(c, "min_pvalue", defaultTopMinPvalue),
		mvc.FloatParam(c, "max_pvalue", defaultTopMaxPvalue),
		mvc.IntParam(c, "limit", defaultTopLimit))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// GetVariantsByGene lists the tested variants of one analysis inside a
// gene's region, joined with annotations.
func GetVariantsByGene(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)
	start := time.Now()

	analysisID := c.QueryParam("analysis_id")
	if analysisID == "" {
		return mvc.RespondError(c, apperrors.MissingParameter("analysis_id"))
	}

	sequencingType := c.QueryParam("sequencing_type")
	if sequencingType == "" {
		sequencingType = defaultGeneSequencingType
	}

	found, err := gc.Repo.VariantsByGene(c.Request().Context(),
		c.Param("gene_id"), analysisID, mvc.AncestryParam(c), sequencingType,
		mvc.IntParam(c, "limit", defaultGeneLimit))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, dtos.NewLookupResult(found, mvc.Elapsed(start)))
}

// GetManhattanTop lists the strongest rendering points of one analysis.
func GetManhattanTop(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)
	start := time.Now()

	sequencingType := c.QueryParam("sequencing_type")
	if sequencingType == "" {
		sequencingType = defaultManhattanSequencingType
	}

	found, err := gc.Repo.ManhattanTop(c.Request().Context(),
		c.Param("id"), mvc.AncestryParam(c), sequencingType,
		mvc.IntParam(c, "limit", defaultManhattanLimit))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, dtos.NewLookupResult(found, mvc.Elapsed(start)))
}
