// Package invoker runs single model calls end to end: request, retry on
// rate limits, repair the JSON, normalize the rows. One call equals one
// unit of work in the pipeline's partitioning scheme.
package invoker

import (
	"context"
	"encoding/json"
	"time"

	"fjacquet/statement-extract/internal/aiclient"
	"fjacquet/statement-extract/internal/jsonrepair"
	"fjacquet/statement-extract/internal/logging"
	"fjacquet/statement-extract/internal/models"
	"fjacquet/statement-extract/internal/normalize"
)

// RetryConfig controls the rate-limit retry loop. The delay grows
// linearly with the attempt number; the API's own pacing makes
// exponential growth unnecessary here.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// UnitOutcome is the result of one unit of work.
type UnitOutcome struct {
	Transactions []models.ExtractedTransaction
	Status       models.UnitStatus
	Truncated    bool
	// Fatal marks an outcome the pipeline may respond to by switching
	// to a cheaper tier.
	Fatal bool
}

// Invoker executes requests against a ModelClient.
type Invoker struct {
	client aiclient.ModelClient
	norm   *normalize.Normalizer
	log    logging.Logger
}

// New creates an Invoker.
func New(client aiclient.ModelClient, norm *normalize.Normalizer, log logging.Logger) *Invoker {
	return &Invoker{client: client, norm: norm, log: log}
}

// Run performs one unit of work. Rate limits are retried with a growing
// delay; a fatal model error or exhausted retries yield a failed unit,
// never a panic or a lost batch. Unparseable model output degrades to
// zero transactions for this unit only.
func (inv *Invoker) Run(ctx context.Context, req aiclient.Request, retry RetryConfig, label string) UnitOutcome {
	res := inv.callWithRetry(ctx, req, retry, label)

	if res.Status != aiclient.StatusOK {
		inv.log.WithError(res.Err).WithFields(
			logging.Field{Key: logging.FieldUnit, Value: label},
			logging.Field{Key: logging.FieldModel, Value: req.Model},
		).Error("Unit extraction failed")
		return UnitOutcome{
			Status: models.UnitStatus{Label: label, OK: false, Error: errString(res.Err)},
			Fatal:  res.Status == aiclient.StatusFatal,
		}
	}

	if res.Truncated {
		inv.log.WithField(logging.FieldUnit, label).Warn("Response truncated, repairing partial JSON")
	}

	repaired := jsonrepair.Repair(res.Text)
	var resp models.ModelResponse
	if err := json.Unmarshal([]byte(repaired), &resp); err != nil {
		inv.log.WithError(err).WithField(logging.FieldUnit, label).Warn("Model output unparseable after repair, unit yields no transactions")
		return UnitOutcome{
			Status:    models.UnitStatus{Label: label, OK: false, Error: "unparseable model output"},
			Truncated: res.Truncated,
		}
	}

	txs := inv.norm.Transactions(resp.Transactions)
	inv.log.WithFields(
		logging.Field{Key: logging.FieldUnit, Value: label},
		logging.Field{Key: logging.FieldCount, Value: len(txs)},
	).Info("Unit extracted")

	return UnitOutcome{
		Transactions: txs,
		Status:       models.UnitStatus{Label: label, Count: len(txs), OK: true},
		Truncated:    res.Truncated,
	}
}

func (inv *Invoker) callWithRetry(ctx context.Context, req aiclient.Request, retry RetryConfig, label string) aiclient.Result {
	attempts := retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var last aiclient.Result
	for attempt := 1; attempt <= attempts; attempt++ {
		last = inv.client.Generate(ctx, req)
		if last.Status != aiclient.StatusRateLimited {
			return last
		}
		if attempt == attempts {
			break
		}

		delay := time.Duration(attempt) * retry.BaseDelay
		inv.log.WithFields(
			logging.Field{Key: logging.FieldUnit, Value: label},
			logging.Field{Key: logging.FieldAttempt, Value: attempt},
			logging.Field{Key: logging.FieldDelay, Value: delay.String()},
		).Warn("Rate limited, backing off")

		select {
		case <-ctx.Done():
			return aiclient.Result{Status: aiclient.StatusFatal, Err: ctx.Err()}
		case <-time.After(delay):
		}
	}
	return last
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
