package contexts

import (
	"cloud.google.com/go/storage"
	"github.com/labstack/echo"

	"github.com/broadinstitute/all-by-all-aou-browser/models"
	"github.com/broadinstitute/all-by-all-aou-browser/repositories/clickhouse"
	"github.com/broadinstitute/all-by-all-aou-browser/services/assets"
	"github.com/broadinstitute/all-by-all-aou-browser/services/metadata"
)

type (
	// "Helper" Context to pass into routes that need
	//  the store handle and the boot-time services
	BrowserContext struct {
		echo.Context
		Config  *models.Config
		Repo    *clickhouse.Repository
		Catalog *metadata.Catalog
		Assets  *assets.Service
		Storage *storage.Client
	}
)
