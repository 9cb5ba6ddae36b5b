// Package pipeline selects an extraction strategy for a document, runs
// it unit by unit, and aggregates the outcome into a single result.
package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/statement-extract/internal/aiclient"
	"fjacquet/statement-extract/internal/balance"
	"fjacquet/statement-extract/internal/categorizer"
	"fjacquet/statement-extract/internal/invoker"
	"fjacquet/statement-extract/internal/logging"
	"fjacquet/statement-extract/internal/normalize"
)

// Pipeline names reported in result metadata.
const (
	PipelineCAMT       = "camt"
	PipelineCSVChunks  = "csv-chunks"
	PipelineSinglePass = "single-pass"
	PipelineByMonth    = "by-month"
	PipelineByPage     = "by-page"
)

// Config carries the tuned knobs the pipeline needs. Values come from
// the application configuration; tests set them directly.
type Config struct {
	FlashModel string
	ProModel   string

	MaxAttempts    int
	FlashBaseDelay time.Duration
	ProBaseDelay   time.Duration
	// Pause between consecutive units, per model tier. Sequential
	// pacing is deliberate: parallel units would trip the API's rate
	// limiter immediately.
	FlashInterval time.Duration
	ProInterval   time.Duration

	SinglePassCharLimit int
	RowsPerChunk        int
	Dedup               bool
	MaxOutputTokens     int32

	Tolerance         float64
	CoverageThreshold float64
	MaxAutoCorrection float64
}

// Input is one document to extract from. Opening and Closing are
// caller-supplied balances when known; CAMT documents carry their own.
type Input struct {
	Filename string
	Data     []byte
	// DocType forces a document kind: "camt", "csv", "pdf" or "text".
	// Empty or "auto" means detect.
	DocType string
	Opening *decimal.Decimal
	Closing *decimal.Decimal
}

// Pipeline runs extractions.
type Pipeline struct {
	inv       *invoker.Invoker
	norm      *normalize.Normalizer
	verifier  *balance.Verifier
	corrector *balance.Corrector
	cat       *categorizer.Categorizer
	cfg       Config
	log       logging.Logger

	// pause is replaced in tests so unit pacing does not slow them down.
	pause func(d time.Duration)
}

// New wires a Pipeline from its parts.
func New(client aiclient.ModelClient, cat *categorizer.Categorizer, cfg Config, log logging.Logger) *Pipeline {
	norm := normalize.New(log)
	return &Pipeline{
		inv:       invoker.New(client, norm, log),
		norm:      norm,
		verifier:  balance.NewVerifier(cfg.Tolerance, cfg.CoverageThreshold, log),
		corrector: balance.NewCorrector(cfg.MaxAutoCorrection, log),
		cat:       cat,
		cfg:       cfg,
		log:       log,
		pause:     time.Sleep,
	}
}

// tier bundles the per-model-tier call parameters.
type tier struct {
	model    string
	retry    invoker.RetryConfig
	interval time.Duration
}

func (p *Pipeline) flashTier() tier {
	return tier{
		model:    p.cfg.FlashModel,
		retry:    invoker.RetryConfig{MaxAttempts: p.cfg.MaxAttempts, BaseDelay: p.cfg.FlashBaseDelay},
		interval: p.cfg.FlashInterval,
	}
}

func (p *Pipeline) proTier() tier {
	return tier{
		model:    p.cfg.ProModel,
		retry:    invoker.RetryConfig{MaxAttempts: p.cfg.MaxAttempts, BaseDelay: p.cfg.ProBaseDelay},
		interval: p.cfg.ProInterval,
	}
}
