package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/broadinstitute/all-by-all-aou-browser/logger"
	initStrategy "github.com/broadinstitute/all-by-all-aou-browser/models/constants/init-strategy"
	"github.com/broadinstitute/all-by-all-aou-browser/services/ingestion"
)

var (
	flagClickhouseURL       string
	flagRemoteClickhouseURL string
	flagDatabase            string
	flagInitStrategy        string
	flagInput               string
	flagLimit               int
	flagKeepStaging         bool
	flagHailDecoder         string
	flagPool                string
	flagForce               bool
	flagRedeployBinary      bool
	flagBatchSize           int
	flagLogLevel            string
)

func buildPipeline(cmd *cobra.Command) (*ingestion.Pipeline, error) {
	strategy := initStrategy.CastToInitStrategy(flagInitStrategy)
	if strategy == initStrategy.Unknown {
		return nil, fmt.Errorf("unknown init strategy %q (want create, replace or append)", flagInitStrategy)
	}

	options := ingestion.Options{
		ClickhouseURL:       flagClickhouseURL,
		RemoteClickhouseURL: flagRemoteClickhouseURL,
		Database:            flagDatabase,
		HailDecoder:         flagHailDecoder,
		InitStrategy:        strategy,
		Limit:               flagLimit,
		KeepStaging:         flagKeepStaging,
		Pool:                flagPool,
		Force:               flagForce,
		RedeployBinary:      flagRedeployBinary,
		BatchSize:           flagBatchSize,
	}
	executor := ingestion.NewHTTPExecutor(flagClickhouseURL, flagDatabase)
	return ingestion.NewPipeline(executor, ingestion.ExecDecoder{}, options), nil
}

func ingestCommand(table ingestion.TableConfig, use string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Load the %s table (%s)", table.Name, table.Description),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := buildPipeline(cmd)
			if err != nil {
				return err
			}
			return pipeline.Ingest(cmd.Context(), table, flagInput)
		},
	}
}

func allCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Load every table in order, continuing past per-table failures",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := buildPipeline(cmd)
			if err != nil {
				return err
			}
			for _, table := range ingestion.AllTables() {
				// --input only makes sense for a single table
				if err := pipeline.Ingest(cmd.Context(), table, ""); err != nil {
					logger.Warn("Table ingest failed, continuing",
						zap.String("table", table.Name), zap.Error(err))
				}
			}
			return nil
		},
	}
}

func statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report the row counts of every serving table",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := buildPipeline(cmd)
			if err != nil {
				return err
			}
			statuses, err := pipeline.Status(cmd.Context())
			if err != nil {
				return err
			}
			for _, status := range statuses {
				fmt.Printf("%-22s %18s  %s\n", status.Table, status.RowsDisplay, status.Description)
			}
			return nil
		},
	}
}

func main() {
	root := &cobra.Command{
		Use:          "ingest",
		Short:        "Load Hail result tables into ClickHouse",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitLogger(flagLogLevel)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&flagClickhouseURL, "clickhouse-url", "http://localhost:8123", "ClickHouse HTTP endpoint")
	flags.StringVar(&flagRemoteClickhouseURL, "remote-clickhouse-url", "", "ClickHouse endpoint reachable from pool workers")
	flags.StringVar(&flagDatabase, "database", "default", "target database")
	flags.StringVar(&flagInitStrategy, "init-strategy", "replace", "create, replace or append")
	flags.StringVar(&flagInput, "input", "", "Hail table URI (defaults per table)")
	flags.IntVar(&flagLimit, "limit", 0, "cap exported rows (0 = all)")
	flags.BoolVar(&flagKeepStaging, "keep-staging", false, "keep the staging table after the transform")
	flags.StringVar(&flagHailDecoder, "hail-decoder", "hail-decoder", "decoder binary")
	flags.StringVar(&flagPool, "pool", "", "submit the export to a worker pool")
	flags.BoolVar(&flagForce, "force", false, "force pool resubmission")
	flags.BoolVar(&flagRedeployBinary, "redeploy-binary", false, "redeploy the decoder binary to the pool")
	flags.IntVar(&flagBatchSize, "batch-size", 0, "pool export batch size (0 = decoder default)")
	flags.StringVar(&flagLogLevel, "log-level", "info", "log level")

	root.AddCommand(
		ingestCommand(ingestion.ExomeAnnotations, "exome-annotations"),
		ingestCommand(ingestion.GenomeAnnotations, "genome-annotations"),
		ingestCommand(ingestion.GeneModels, "gene-models"),
		ingestCommand(ingestion.AnalysisMetadata, "analysis-metadata"),
		allCommand(),
		statusCommand(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
