package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"cloud.google.com/go/storage"
	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"go.uber.org/zap"

	"github.com/broadinstitute/all-by-all-aou-browser/contexts"
	"github.com/broadinstitute/all-by-all-aou-browser/logger"
	"github.com/broadinstitute/all-by-all-aou-browser/models"
	analysesMvc "github.com/broadinstitute/all-by-all-aou-browser/mvc/analyses"
	assetsMvc "github.com/broadinstitute/all-by-all-aou-browser/mvc/assets"
	genesMvc "github.com/broadinstitute/all-by-all-aou-browser/mvc/genes"
	phenotypeMvc "github.com/broadinstitute/all-by-all-aou-browser/mvc/phenotype"
	variantsMvc "github.com/broadinstitute/all-by-all-aou-browser/mvc/variants"
	"github.com/broadinstitute/all-by-all-aou-browser/repositories/clickhouse"
	assetService "github.com/broadinstitute/all-by-all-aou-browser/services/assets"
	"github.com/broadinstitute/all-by-all-aou-browser/services/metadata"
)

func main() {
	// Gather environment variables
	var cfg models.Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	logger.InitLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting browser server",
		zap.Int("port", cfg.Api.Port),
		zap.String("clickhouse_url", cfg.ClickHouse.Url),
		zap.String("assets_bucket", cfg.Assets.Bucket))

	ctx := context.Background()

	// Service Connections:
	// -- ClickHouse
	repo, err := clickhouse.Connect(&cfg)
	if err != nil {
		logger.Fatal("ClickHouse connection failed", zap.Error(err))
	}
	defer repo.Close()

	// -- Object store
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		logger.Fatal("Object store client failed", zap.Error(err))
	}
	defer storageClient.Close()

	// Service Singletons
	metadataRows, err := repo.LoadAnalysisMetadata(ctx)
	if err != nil {
		logger.Fatal("Loading analysis metadata failed", zap.Error(err))
	}
	catalog := metadata.NewCatalog(metadata.Shape(metadataRows))
	logger.Info("Analysis catalog loaded", zap.Int("entries", len(catalog.All())))

	discoverer := assetService.NewDiscoverer(storageClient, cfg.Assets.Bucket, cfg.Assets.BasePrefix)
	assetSvc := assetService.NewService(discoverer, cfg.Assets.File, func() map[string]bool {
		return assetService.ValidPhenotypeSet(catalog.AnalysisIDs())
	})
	assetSvc.StartScheduledRefresh(cfg.Assets.RefreshHours)
	defer assetSvc.Stop()

	// Instantiate Server
	e := echo.New()
	e.HideBanner = true

	// Configure Server
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET},
	}))

	// -- Override handlers with the custom browser context
	//		to provide the store handle and boot-time services
	e.Use(func(h echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &contexts.BrowserContext{
				Context: c,
				Config:  &cfg,
				Repo:    repo,
				Catalog: catalog,
				Assets:  assetSvc,
				Storage: storageClient,
			}
			return h(cc)
		}
	})

	// Begin MVC Routes
	// -- Root / health
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "all-by-all-aou-browser",
			"status":  "ok",
		})
	})
	e.GET("/healthz", func(c echo.Context) error {
		if err := repo.HealthCheck(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")

	// -- Analyses
	api.GET("/analyses", analysesMvc.GetAnalyses)
	api.GET("/analyses/:id", analysesMvc.GetAnalysisById)
	api.GET("/categories", analysesMvc.GetCategories)
	api.GET("/config", analysesMvc.GetConfig)

	// -- Genes
	api.GET("/genes/model/:gene_id", genesMvc.GetGeneModel)
	api.GET("/genes/model/interval/:interval", genesMvc.GetGeneModelsInInterval)
	api.GET("/genes/phewas/:gene_id", genesMvc.GetGenePhewas)
	api.GET("/genes/top-associations", genesMvc.GetTopGeneAssociations)
	api.GET("/genes/all-symbols", genesMvc.GetAllGeneSymbols)
	api.GET("/genes/associations", genesMvc.GetGeneAssociations)
	api.GET("/genes/associations/interval/:interval", genesMvc.GetGeneAssociationsInInterval)

	// -- Assets
	api.GET("/assets", assetsMvc.GetAssets)
	api.GET("/assets/summary", assetsMvc.GetAssetsSummary)

	// -- Phenotypes
	api.GET("/phenotype/:id/loci", phenotypeMvc.GetLoci)
	api.GET("/phenotype/:id/loci/:locus/variants", phenotypeMvc.GetLocusVariants)
	api.GET("/phenotype/:id/significant", phenotypeMvc.GetSignificant)
	api.GET("/phenotype/:id/plots", phenotypeMvc.GetPlots)
	api.GET("/phenotype/:id/qq", phenotypeMvc.GetQQ)
	api.GET("/phenotype/:id/manhattan", phenotypeMvc.GetManhattan)
	api.GET("/phenotype/:id/manhattan/image", phenotypeMvc.GetManhattanImage)
	api.GET("/phenotype/:id/manhattan/overlay", phenotypeMvc.GetManhattanOverlay)
	api.GET("/phenotype/:id/overview", phenotypeMvc.GetOverview)
	api.GET("/phenotype/:id/genes", genesMvc.GetPhenotypeGenes)
	api.GET("/phenotype/:id/genes/:gene", genesMvc.GetPhenotypeGene)

	// -- Variants
	api.GET("/variants/annotations/:variant_id", variantsMvc.GetAnnotation)
	api.GET("/variants/annotations/interval/:interval", variantsMvc.GetAnnotationsInInterval)
	api.GET("/variants/annotations/gene/:gene_id", variantsMvc.GetAnnotationsByGene)
	api.GET("/variants/associations/variant/:variant_id", variantsMvc.GetAssociationByVariant)
	api.GET("/variants/associations/interval/:interval", variantsMvc.GetAssociationsInInterval)
	api.GET("/variants/associations/phewas/:variant_id", variantsMvc.GetVariantPhewas)
	api.GET("/variants/associations/top", variantsMvc.GetTopVariants)
	api.GET("/variants/associations/gene/:gene_id", variantsMvc.GetVariantsByGene)
	api.GET("/variants/associations/manhattan/:id/top", variantsMvc.GetManhattanTop)

	// Run
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Api.Port)))
}
