package ingestion

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Jeffail/gabs"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/broadinstitute/all-by-all-aou-browser/logger"
	"github.com/broadinstitute/all-by-all-aou-browser/models/constants"
	initStrategy "github.com/broadinstitute/all-by-all-aou-browser/models/constants/init-strategy"
)

// Options carries the ingest command's flags.
type Options struct {
	ClickhouseURL       string
	RemoteClickhouseURL string
	Database            string
	HailDecoder         string
	InitStrategy        constants.InitStrategy
	Limit               int
	KeepStaging         bool
	Pool                string
	Force               bool
	RedeployBinary      bool
	BatchSize           int
}

// Pipeline runs one table load end to end.
type Pipeline struct {
	Executor SQLExecutor
	Decoder  DecoderRunner
	Options  Options
}

func NewPipeline(executor SQLExecutor, decoder DecoderRunner, options Options) *Pipeline {
	return &Pipeline{Executor: executor, Decoder: decoder, Options: options}
}

// SplitSQLStatements breaks a script into executable statements,
// dropping chunks that hold nothing but blank lines and -- comments.
func SplitSQLStatements(script string) []string {
	statements := []string{}
	for _, chunk := range strings.Split(script, ";") {
		if isBlankStatement(chunk) {
			continue
		}
		statements = append(statements, strings.TrimSpace(chunk))
	}
	return statements
}

func isBlankStatement(chunk string) bool {
	for _, line := range strings.Split(chunk, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
			return false
		}
	}
	return true
}

// decoderTargetURL picks the store URL the decoder writes to. Pool
// submissions run off-host and need the remote address when one is
// configured.
func (p *Pipeline) decoderTargetURL() string {
	if p.Options.Pool != "" && p.Options.RemoteClickhouseURL != "" {
		return p.Options.RemoteClickhouseURL
	}
	return p.Options.ClickhouseURL
}

// buildDecoderArgs assembles the decoder argv. With a pool configured
// the export invocation is wrapped in a pool submission.
func buildDecoderArgs(options Options, input string, targetURL string, stagingTable string) []string {
	args := []string{}
	if options.Pool != "" {
		args = append(args, "pool", "submit", options.Pool)
		if options.Force {
			args = append(args, "--force")
		}
		if options.RedeployBinary {
			args = append(args, "--redeploy-binary")
		}
		if options.BatchSize > 0 {
			args = append(args, "--batch-size", strconv.Itoa(options.BatchSize))
		}
		args = append(args, "--")
	}
	args = append(args, "export", "clickhouse", input, targetURL, stagingTable)
	if options.Limit > 0 {
		args = append(args, "--limit", strconv.Itoa(options.Limit))
	}
	return args
}

func (p *Pipeline) execScript(ctx context.Context, script string) error {
	for _, statement := range SplitSQLStatements(script) {
		if _, err := p.Executor.Exec(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}

// prepareTarget readies the serving table for the configured strategy.
// Replace drops and recreates; Create and Append both run the
// idempotent DDL and differ only in what the transform lands on.
func (p *Pipeline) prepareTarget(ctx context.Context, table TableConfig) error {
	if p.Options.InitStrategy == initStrategy.Replace {
		if _, err := p.Executor.Exec(ctx,
			fmt.Sprintf("DROP TABLE IF EXISTS %s", table.Name)); err != nil {
			return err
		}
	}
	return p.execScript(ctx, table.DDL())
}

// Ingest loads one table: prepare the target, land the raw rows in
// staging through the decoder, transform, report counts and drop the
// staging table unless asked to keep it.
func (p *Pipeline) Ingest(ctx context.Context, table TableConfig, input string) error {
	runID := uuid.NewString()
	if input == "" {
		input = table.DefaultInput
	}

	logger.Info("Starting ingest",
		zap.String("run_id", runID),
		zap.String("table", table.Name),
		zap.String("input", input),
		zap.String("strategy", string(p.Options.InitStrategy)))

	if err := p.prepareTarget(ctx, table); err != nil {
		return fmt.Errorf("preparing %s: %w", table.Name, err)
	}

	if _, err := p.Executor.Exec(ctx,
		fmt.Sprintf("DROP TABLE IF EXISTS %s", table.StagingTable)); err != nil {
		return fmt.Errorf("dropping staging %s: %w", table.StagingTable, err)
	}

	args := buildDecoderArgs(p.Options, input, p.decoderTargetURL(), table.StagingTable)
	if err := p.Decoder.Run(ctx, p.Options.HailDecoder, args); err != nil {
		return fmt.Errorf("decoding %s: %w", input, err)
	}

	if err := p.execScript(ctx, table.TransformSQL()); err != nil {
		return fmt.Errorf("transforming %s: %w", table.Name, err)
	}

	stagingRows := p.RowCount(ctx, table.StagingTable)
	servingRows := p.RowCount(ctx, table.Name)
	logger.Info("Ingest row counts",
		zap.String("run_id", runID),
		zap.String("staging", formatNumber(stagingRows)),
		zap.String("serving", formatNumber(servingRows)))

	if !p.Options.KeepStaging {
		if _, err := p.Executor.Exec(ctx,
			fmt.Sprintf("DROP TABLE IF EXISTS %s", table.StagingTable)); err != nil {
			return fmt.Errorf("cleaning staging %s: %w", table.StagingTable, err)
		}
	}

	logger.Info("Ingest complete", zap.String("run_id", runID), zap.String("table", table.Name))
	return nil
}

// RowCount reports a table's row count; a missing table counts as zero.
func (p *Pipeline) RowCount(ctx context.Context, table string) int64 {
	body, err := p.Executor.Exec(ctx,
		fmt.Sprintf("SELECT count() AS n FROM %s FORMAT JSON", table))
	if err != nil {
		logger.Debug("Row count unavailable", zap.String("table", table), zap.Error(err))
		return 0
	}

	parsed, err := gabs.ParseJSON([]byte(body))
	if err != nil {
		logger.Warn("Unparseable count response", zap.String("table", table), zap.Error(err))
		return 0
	}
	return parseCount(parsed.Path("data").Index(0).Path("n").Data())
}

// parseCount accepts the count in either of ClickHouse's JSON spellings
// (UInt64 arrives as a string, smaller types as a number).
func parseCount(value interface{}) int64 {
	switch typed := value.(type) {
	case string:
		count, err := strconv.ParseInt(typed, 10, 64)
		if err != nil {
			return 0
		}
		return count
	case float64:
		return int64(typed)
	default:
		return 0
	}
}

// TableStatus is one row of the ingest status report.
type TableStatus struct {
	Table       string `mapstructure:"table" json:"table"`
	Description string `mapstructure:"description" json:"description"`
	Rows        int64  `mapstructure:"rows" json:"rows"`
	RowsDisplay string `mapstructure:"rows_display" json:"rows_display"`
}

// statusTables is every serving table the status report covers,
// including the ones loaded outside this pipeline.
var statusTables = []struct {
	Name        string
	Description string
}{
	{"exome_annotations", "Exome variant annotations"},
	{"genome_annotations", "Genome (ACAF) variant annotations"},
	{"gene_models", "GENCODE gene models with gnomAD constraint"},
	{"analysis_metadata", "Per-analysis phenotype metadata"},
	{"analysis_categories", "Derived analysis category groupings"},
	{"variant_annotations", "Legacy merged variant annotations"},
}

// Status reports the row counts of every serving table.
func (p *Pipeline) Status(ctx context.Context) ([]TableStatus, error) {
	statuses := make([]TableStatus, 0, len(statusTables))
	for _, entry := range statusTables {
		rows := p.RowCount(ctx, entry.Name)
		raw := map[string]interface{}{
			"table":        entry.Name,
			"description":  entry.Description,
			"rows":         rows,
			"rows_display": formatNumber(rows),
		}
		var status TableStatus
		if err := mapstructure.Decode(raw, &status); err != nil {
			return nil, fmt.Errorf("shaping status row for %s: %w", entry.Name, err)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// formatNumber renders a count with thousands separators.
func formatNumber(value int64) string {
	digits := strconv.FormatInt(value, 10)
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var grouped strings.Builder
	for i, digit := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	if negative {
		return "-" + grouped.String()
	}
	return grouped.String()
}
