package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"
)

// SQLExecutor runs one SQL statement against the store and returns its
// raw response body.
type SQLExecutor interface {
	Exec(ctx context.Context, statement string) (string, error)
}

// DecoderRunner invokes the external Hail decoder binary.
type DecoderRunner interface {
	Run(ctx context.Context, binary string, args []string) error
}

// HTTPExecutor posts statements to the ClickHouse HTTP interface. The
// pipeline favors HTTP over the native protocol because the decoder
// pods reach the store the same way.
type HTTPExecutor struct {
	BaseURL  string
	Database string
	Client   *http.Client
}

func NewHTTPExecutor(baseURL string, database string) *HTTPExecutor {
	return &HTTPExecutor{
		BaseURL:  baseURL,
		Database: database,
		Client:   &http.Client{Timeout: 30 * time.Minute},
	}
}

func (e *HTTPExecutor) Exec(ctx context.Context, statement string) (string, error) {
	endpoint := fmt.Sprintf("%s/?database=%s", strings.TrimSuffix(e.BaseURL, "/"),
		url.QueryEscape(e.Database))

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(statement))
	if err != nil {
		return "", err
	}

	response, err := e.Client.Do(request)
	if err != nil {
		return "", fmt.Errorf("ClickHouse request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}
	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ClickHouse returned %d: %s",
			response.StatusCode, strings.TrimSpace(string(body)))
	}
	return string(body), nil
}

// ExecDecoder runs the decoder as a subprocess, streaming its output so
// long loads stay observable.
type ExecDecoder struct{}

func (ExecDecoder) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("decoder %s failed: %w", binary, err)
	}
	return nil
}
