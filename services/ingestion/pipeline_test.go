package ingestion

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	initStrategy "github.com/broadinstitute/all-by-all-aou-browser/models/constants/init-strategy"
)

// scriptedExecutor records every statement and answers count queries
// with a canned ClickHouse JSON body.
type scriptedExecutor struct {
	statements []string
	countBody  string
}

func (e *scriptedExecutor) Exec(_ context.Context, statement string) (string, error) {
	e.statements = append(e.statements, statement)
	if strings.Contains(statement, "count()") {
		return e.countBody, nil
	}
	return "", nil
}

// recordingDecoder captures the argv of each decoder invocation.
type recordingDecoder struct {
	binary string
	args   []string
}

func (d *recordingDecoder) Run(_ context.Context, binary string, args []string) error {
	d.binary = binary
	d.args = args
	return nil
}

func TestSplitSQLStatements(t *testing.T) {
	script := `
-- leading comment
CREATE TABLE t (x Int64) ENGINE = MergeTree ORDER BY x;

-- between statements
INSERT INTO t SELECT 1;
`
	statements := SplitSQLStatements(script)
	require.Len(t, statements, 2)
	assert.Contains(t, statements[0], "CREATE TABLE t")
	assert.Contains(t, statements[1], "INSERT INTO t")
}

func TestSplitSQLStatementsDropsCommentOnlyChunks(t *testing.T) {
	assert.Empty(t, SplitSQLStatements("-- nothing here\n\n-- still nothing"))
	assert.Empty(t, SplitSQLStatements(";;;"))
}

func TestBuildDecoderArgsLocal(t *testing.T) {
	options := Options{ClickhouseURL: "http://localhost:8123"}
	args := buildDecoderArgs(options, "gs://bucket/input.ht", "http://localhost:8123", "staging_exome_raw")
	assert.Equal(t, []string{
		"export", "clickhouse", "gs://bucket/input.ht", "http://localhost:8123", "staging_exome_raw",
	}, args)
}

func TestBuildDecoderArgsWithPoolAndLimit(t *testing.T) {
	options := Options{
		Pool:           "hail-pool",
		Force:          true,
		RedeployBinary: true,
		BatchSize:      50000,
		Limit:          1000,
	}
	args := buildDecoderArgs(options, "gs://bucket/input.ht", "http://remote:8123", "staging_exome_raw")
	assert.Equal(t, []string{
		"pool", "submit", "hail-pool", "--force", "--redeploy-binary", "--batch-size", "50000", "--",
		"export", "clickhouse", "gs://bucket/input.ht", "http://remote:8123", "staging_exome_raw",
		"--limit", "1000",
	}, args)
}

func TestDecoderTargetURLPrefersRemoteForPoolRuns(t *testing.T) {
	p := NewPipeline(nil, nil, Options{
		ClickhouseURL:       "http://localhost:8123",
		RemoteClickhouseURL: "http://clickhouse.internal:8123",
		Pool:                "hail-pool",
	})
	assert.Equal(t, "http://clickhouse.internal:8123", p.decoderTargetURL())

	p.Options.Pool = ""
	assert.Equal(t, "http://localhost:8123", p.decoderTargetURL())
}

func TestIngestReplaceDropsTargetFirst(t *testing.T) {
	executor := &scriptedExecutor{countBody: `{"data":[{"n":"42"}]}`}
	decoder := &recordingDecoder{}
	p := NewPipeline(executor, decoder, Options{
		ClickhouseURL: "http://localhost:8123",
		HailDecoder:   "hail-decoder",
		InitStrategy:  initStrategy.Replace,
	})

	require.NoError(t, p.Ingest(context.Background(), AnalysisMetadata, ""))

	require.NotEmpty(t, executor.statements)
	assert.Equal(t, "DROP TABLE IF EXISTS analysis_metadata", executor.statements[0])
	assert.Contains(t, executor.statements[1], "CREATE TABLE IF NOT EXISTS analysis_metadata")
	assert.Equal(t, "DROP TABLE IF EXISTS staging_analysis_metadata_raw", executor.statements[2])

	// default input fills in when none is given
	assert.Equal(t, "hail-decoder", decoder.binary)
	assert.Contains(t, decoder.args, AnalysisMetadata.DefaultInput)

	// staging is dropped again after the transform
	last := executor.statements[len(executor.statements)-1]
	assert.Equal(t, "DROP TABLE IF EXISTS staging_analysis_metadata_raw", last)
}

func TestIngestCreateKeepsTarget(t *testing.T) {
	executor := &scriptedExecutor{countBody: `{"data":[{"n":"42"}]}`}
	p := NewPipeline(executor, &recordingDecoder{}, Options{
		HailDecoder:  "hail-decoder",
		InitStrategy: initStrategy.Create,
		KeepStaging:  true,
	})

	require.NoError(t, p.Ingest(context.Background(), GeneModels, "gs://custom/input.ht"))

	assert.Contains(t, executor.statements[0], "CREATE TABLE IF NOT EXISTS gene_models")
	for _, statement := range executor.statements {
		assert.NotEqual(t, "DROP TABLE IF EXISTS gene_models", statement)
	}

	// --keep-staging leaves the staging table in place
	last := executor.statements[len(executor.statements)-1]
	assert.NotEqual(t, "DROP TABLE IF EXISTS staging_gene_models_raw", last)
}

func TestRowCountParsesStringAndNumber(t *testing.T) {
	executor := &scriptedExecutor{countBody: `{"data":[{"n":"1234567"}]}`}
	p := NewPipeline(executor, nil, Options{})
	assert.Equal(t, int64(1234567), p.RowCount(context.Background(), "gene_models"))

	executor.countBody = `{"data":[{"n":42}]}`
	assert.Equal(t, int64(42), p.RowCount(context.Background(), "gene_models"))

	executor.countBody = `not json`
	assert.Equal(t, int64(0), p.RowCount(context.Background(), "gene_models"))
}

func TestStatusCoversAllServingTables(t *testing.T) {
	executor := &scriptedExecutor{countBody: `{"data":[{"n":"1000"}]}`}
	p := NewPipeline(executor, nil, Options{})

	statuses, err := p.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 6)
	assert.Equal(t, "exome_annotations", statuses[0].Table)
	assert.Equal(t, "variant_annotations", statuses[5].Table)
	assert.Equal(t, int64(1000), statuses[0].Rows)
	assert.Equal(t, "1,000", statuses[0].RowsDisplay)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567,890", formatNumber(1234567890))
	assert.Equal(t, "-12,345", formatNumber(-12345))
}

func TestTableByName(t *testing.T) {
	table, err := TableByName("exome_annotations")
	require.NoError(t, err)
	assert.Equal(t, "staging_exome_raw", table.StagingTable)

	_, err = TableByName("nope")
	assert.Error(t, err)
}

func TestAllTablesOrder(t *testing.T) {
	names := []string{}
	for _, table := range AllTables() {
		names = append(names, table.Name)
	}
	assert.Equal(t, []string{
		"exome_annotations", "genome_annotations", "gene_models", "analysis_metadata",
	}, names)
}
