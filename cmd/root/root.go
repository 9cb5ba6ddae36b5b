// Package root contains the root command for the application
package root

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"fjacquet/statement-extract/internal/aiclient"
	"fjacquet/statement-extract/internal/categorizer"
	"fjacquet/statement-extract/internal/common"
	"fjacquet/statement-extract/internal/config"
	"fjacquet/statement-extract/internal/logging"
	"fjacquet/statement-extract/internal/pipeline"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input   string
	Output  string
	DocType string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cfg is the application configuration, loaded in PersistentPreRun
	Cfg *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "statement-extract",
		Short: "A CLI tool to extract transactions from bank statements using Gemini.",
		Long: `statement-extract reads bank statements (PDF, CSV, camt.053 XML or plain
text), extracts the transactions with the Gemini API, verifies them against
the printed balance chain and writes the result as CSV.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to statement-extract!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			adapter := GetLogrusAdapter()
			config.LoadEnv(adapter)

			cfg, err := config.InitializeConfig()
			if err != nil {
				adapter.Fatalf("Failed to load configuration: %v", err)
			}
			Cfg = cfg

			Log = config.ConfigureLoggingFromConfig(cfg)
			logging.SetAllLogLevels(Log.GetLevel())

			common.SetDelimiter([]rune(cfg.CSV.Delimiter)[0])
		},
	}

	// SharedFlags holds flag values common to multiple commands
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
	Cmd.PersistentFlags().StringVar(&SharedFlags.DocType, "doc-type", "", "Force document type (camt, csv, pdf, text)")
}

// GetLogrusAdapter returns the shared logger wrapped in the Logger interface.
func GetLogrusAdapter() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}

// NewPipeline builds the extraction pipeline from the loaded configuration.
// The returned cleanup function closes the model client.
func NewPipeline(ctx context.Context) (*pipeline.Pipeline, func(), error) {
	adapter := GetLogrusAdapter()

	client, err := aiclient.NewGeminiClient(ctx, Cfg.AI.APIKey, adapter)
	if err != nil {
		return nil, nil, err
	}

	cat := categorizer.New(Cfg.Categories.FilePath, adapter)
	p := pipeline.New(client, cat, PipelineConfig(), adapter)
	return p, func() { _ = client.Close() }, nil
}

// PipelineConfig maps the application configuration onto pipeline knobs.
func PipelineConfig() pipeline.Config {
	return pipeline.Config{
		FlashModel:          Cfg.AI.FlashModel,
		ProModel:            Cfg.AI.ProModel,
		MaxAttempts:         Cfg.AI.MaxAttempts,
		FlashBaseDelay:      time.Duration(Cfg.AI.FlashBaseDelayMS) * time.Millisecond,
		ProBaseDelay:        time.Duration(Cfg.AI.ProBaseDelayMS) * time.Millisecond,
		FlashInterval:       time.Duration(Cfg.AI.FlashIntervalMS) * time.Millisecond,
		ProInterval:         time.Duration(Cfg.AI.ProIntervalMS) * time.Millisecond,
		SinglePassCharLimit: Cfg.Extract.SinglePassCharLimit,
		RowsPerChunk:        Cfg.Extract.RowsPerChunk,
		Dedup:               Cfg.Extract.Dedup,
		MaxOutputTokens:     int32(Cfg.AI.MaxOutputTokens),
		Tolerance:           Cfg.Balance.Tolerance,
		CoverageThreshold:   Cfg.Balance.CoverageThreshold,
		MaxAutoCorrection:   Cfg.Balance.MaxAutoCorrection,
	}
}
