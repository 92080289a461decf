package genes

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo"

	"github.com/broadinstitute/all-by-all-aou-browser/apperrors"
	"github.com/broadinstitute/all-by-all-aou-browser/models/dtos"
	"github.com/broadinstitute/all-by-all-aou-browser/mvc"
	"github.com/broadinstitute/all-by-all-aou-browser/repositories/clickhouse"
	"github.com/broadinstitute/all-by-all-aou-browser/xpos"
)

const (
	defaultTopLimit      = 100
	defaultTopMaxPvalue  = 1e-6
	defaultIntervalLimit = 1000
	defaultGeneListLimit = 1000
)

// GetGeneModel serves one gene model. Ensembl ids hit the id column,
// anything else is matched as a symbol.
func GetGeneModel(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)
	gene := c.Param("gene_id")

	var err error
	var model interface{}
	if strings.HasPrefix(gene, "ENSG") {
		model, err = gc.Repo.GeneModelById(c.Request().Context(), gene)
	} else {
		model, err = gc.Repo.GeneModelBySymbol(c.Request().Context(), gene)
	}
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, model)
}

// GetGeneModelsInInterval lists the gene models overlapping an
// interval.
func GetGeneModelsInInterval(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	xposStart, xposStop, err := xpos.ParseInterval(c.Param("interval"))
	if err != nil {
		return mvc.RespondError(c, apperrors.InvalidInterval("%v", err))
	}
	contig, start := xpos.Decode(xposStart)
	_, stop := xpos.Decode(xposStop)

	found, err := gc.Repo.GeneModelsInInterval(c.Request().Context(),
		contig, int64(start), int64(stop))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// GetGenePhewas lists every phenotype association of one gene.
func GetGenePhewas(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)
	start := time.Now()

	found, err := gc.Repo.GenePhewas(c.Request().Context(),
		c.Param("gene_id"), mvc.AncestryParam(c), c.QueryParam("annotation"))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, dtos.NewLookupResult(found, mvc.Elapsed(start)))
}

// GetTopGeneAssociations lists the strongest gene hits in a p-value
// window. The ancestry parameter is required.
func GetTopGeneAssociations(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)
	start := time.Now()

	ancestryGroup := c.QueryParam("ancestry")
	if ancestryGroup == "" {
		return mvc.RespondError(c, apperrors.MissingParameter("ancestry"))
	}

	found, err := gc.Repo.TopGeneAssociations(c.Request().Context(),
		ancestryGroup,
		mvc.FloatParam(c, "min_pvalue", 0.0),
		mvc.FloatParam(c, "max_pvalue", defaultTopMaxPvalue),
		c.QueryParam("annotation"),
		mvc.IntParam(c, "limit", defaultTopLimit))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, dtos.NewLookupResult(found, mvc.Elapsed(start)))
}

// GetAllGeneSymbols lists the distinct symbols for the search box.
func GetAllGeneSymbols(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	symbols, err := gc.Repo.AllGeneSymbols(c.Request().Context())
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, symbols)
}

// GetGeneAssociations lists the burden results of one gene within one
// analysis run.
func GetGeneAssociations(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	found, err := gc.Repo.GeneAssociationsForAnalysis(c.Request().Context(),
		c.QueryParam("gene_id"), c.QueryParam("analysis_id"), mvc.AncestryParam(c))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// GetGeneAssociationsInInterval lists the strongest gene associations
// in an interval.
func GetGeneAssociationsInInterval(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)
	start := time.Now()

	xposStart, xposStop, err := xpos.ParseInterval(c.Param("interval"))
	if err != nil {
		return mvc.RespondError(c, apperrors.InvalidInterval("%v", err))
	}

	found, err := gc.Repo.GeneAssociationsInInterval(c.Request().Context(),
		mvc.AncestryParam(c), xposStart, xposStop,
		c.QueryParam("annotation"), mvc.IntParam(c, "limit", defaultIntervalLimit))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, dtos.NewLookupResult(found, mvc.Elapsed(start)))
}

// GetPhenotypeGenes lists the gene burden results of one analysis in
// one MAF bin.
func GetPhenotypeGenes(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	found, err := gc.Repo.GeneAssociationsForPhenotype(c.Request().Context(),
		c.Param("id"), mvc.AncestryParam(c), c.QueryParam("annotation"),
		mvc.FloatParam(c, "max_maf", clickhouse.DefaultMaxMaf),
		mvc.IntParam(c, "limit", defaultGeneListLimit),
		mvc.IntParam(c, "offset", 0))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// GetPhenotypeGene serves the burden results of one gene within one
// analysis.
func GetPhenotypeGene(c echo.Context) error {
	gc := mvc.RetrieveBrowserContext(c)

	found, err := gc.Repo.GeneAssociationForPhenotypeGene(c.Request().Context(),
		c.Param("id"), mvc.AncestryParam(c), c.Param("gene"), c.QueryParam("annotation"),
		mvc.FloatParam(c, "max_maf", clickhouse.DefaultMaxMaf))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}
