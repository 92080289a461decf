package mvc

import (
	"strconv"
	"time"

	"github.com/labstack/echo"
	"go.uber.org/zap"

	"github.com/broadinstitute/all-by-all-aou-browser/apperrors"
	"github.com/broadinstitute/all-by-all-aou-browser/contexts"
	"github.com/broadinstitute/all-by-all-aou-browser/logger"
	"github.com/broadinstitute/all-by-all-aou-browser/models/constants/ancestry"
)

// ErrorBody is the JSON error envelope served on every failure.
type ErrorBody struct {
	Error string `json:"error"`
}

// RespondError maps an error to its HTTP status and serves the error
// envelope. Internal failures are logged with the request path.
func RespondError(c echo.Context, err error) error {
	status := apperrors.HTTPStatus(err)
	if status >= 500 {
		logger.Error("Request failed",
			zap.String("path", c.Request().URL.Path), zap.Error(err))
	}
	return c.JSON(status, ErrorBody{Error: err.Error()})
}

// RetrieveBrowserContext recovers the boot-time services from the
// request context.
func RetrieveBrowserContext(c echo.Context) *contexts.BrowserContext {
	return c.(*contexts.BrowserContext)
}

// AncestryParam reads the ancestry query parameter, falling back to the
// meta analysis when absent. The ancestry_group spelling is accepted as
// an alias.
func AncestryParam(c echo.Context) string {
	value := c.QueryParam("ancestry")
	if value == "" {
		value = c.QueryParam("ancestry_group")
	}
	if value == "" {
		return string(ancestry.Default)
	}
	return value
}

// IntParam reads an integer query parameter, falling back to a default
// when absent or unparseable.
func IntParam(c echo.Context, name string, fallback int) int {
	value := c.QueryParam(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// FloatParam reads a float query parameter, falling back to a default
// when absent or unparseable.
func FloatParam(c echo.Context, name string, fallback float64) float64 {
	value := c.QueryParam(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// Elapsed measures handler-side query time for the list envelope.
func Elapsed(start time.Time) time.Duration {
	return time.Since(start)
}
