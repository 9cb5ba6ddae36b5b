package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/statement-extract/internal/aiclient"
	"fjacquet/statement-extract/internal/camtparser"
	"fjacquet/statement-extract/internal/chunker"
	"fjacquet/statement-extract/internal/dateutils"
	"fjacquet/statement-extract/internal/invoker"
	"fjacquet/statement-extract/internal/logging"
	"fjacquet/statement-extract/internal/models"
	"fjacquet/statement-extract/internal/pdfutils"
)

// Extract runs the full pipeline for one document: strategy selection,
// unit execution, aggregation, categorization and balance verification.
func (p *Pipeline) Extract(ctx context.Context, in Input) models.ExtractionResult {
	started := time.Now()

	agg := p.runStrategy(ctx, in)

	p.cat.Apply(agg.transactions)
	res := p.finalize(in, agg)
	res.Metadata.ElapsedMS = time.Since(started).Milliseconds()

	p.log.WithFields(
		logging.Field{Key: logging.FieldFile, Value: in.Filename},
		logging.Field{Key: logging.FieldPipeline, Value: res.Metadata.Pipeline},
		logging.Field{Key: logging.FieldCount, Value: res.Metadata.Count},
		logging.Field{Key: logging.FieldDuration, Value: res.Metadata.ElapsedMS},
	).Info("Extraction finished")
	return res
}

// runStrategy picks the cheapest strategy able to handle the document
// and executes it.
func (p *Pipeline) runStrategy(ctx context.Context, in Input) *aggregate {
	kind := p.detectKind(in)

	switch kind {
	case "camt":
		return p.extractCAMT(in)
	case "csv":
		return p.extractCSVChunks(ctx, string(in.Data))
	case "pdf":
		return p.extractPDF(ctx, in)
	default:
		return p.extractText(ctx, string(in.Data))
	}
}

func (p *Pipeline) detectKind(in Input) string {
	switch in.DocType {
	case "camt", "csv", "pdf", "text":
		return in.DocType
	}
	switch {
	case camtparser.Detect(in.Data):
		return "camt"
	case pdfutils.IsPDF(in.Data):
		return "pdf"
	case chunker.LooksLikeCSV(string(in.Data)):
		return "csv"
	default:
		return "text"
	}
}

// extractCAMT handles machine-readable camt.053 statements without any
// model call.
func (p *Pipeline) extractCAMT(in Input) *aggregate {
	agg := newAggregate("camt", PipelineCAMT)

	st, err := camtparser.Parse(in.Data, p.log)
	if err != nil {
		agg.addUnit(invoker.UnitOutcome{
			Status: models.UnitStatus{Label: "camt", OK: false, Error: err.Error()},
		})
		return agg
	}

	agg.opening = in.Opening
	if st.Opening != nil {
		agg.opening = st.Opening
	}
	agg.closing = in.Closing
	if st.Closing != nil {
		agg.closing = st.Closing
	}

	txs := p.norm.Transactions(st.Transactions)
	agg.addUnit(invoker.UnitOutcome{
		Transactions: txs,
		Status:       models.UnitStatus{Label: "camt", Count: len(txs), OK: true},
	})
	return agg
}

// extractCSVChunks feeds header-repeated row batches to the text tier.
func (p *Pipeline) extractCSVChunks(ctx context.Context, text string) *aggregate {
	agg := newAggregate("csv", PipelineCSVChunks)
	t := p.flashTier()

	chunks := chunker.CSVChunks(text, p.cfg.RowsPerChunk)
	if len(chunks) == 0 {
		agg.addUnit(invoker.UnitOutcome{
			Status: models.UnitStatus{Label: "csv", OK: false, Error: "no CSV rows found"},
		})
		return agg
	}
	for i, chunk := range chunks {
		if i > 0 {
			p.pause(t.interval)
		}
		req := aiclient.Request{
			Model:           t.model,
			Prompt:          invoker.CSVChunkPrompt(chunk.Text, p.cat.Names()),
			MaxOutputTokens: p.cfg.MaxOutputTokens,
		}
		agg.addUnit(p.inv.Run(ctx, req, t.retry, chunk.Label))
	}
	return agg
}

// extractText handles plain statement text: a single pass when it is
// short or covers at most one month, month-by-month otherwise.
func (p *Pipeline) extractText(ctx context.Context, text string) *aggregate {
	if strings.TrimSpace(text) == "" {
		agg := newAggregate("text", PipelineSinglePass)
		agg.addUnit(invoker.UnitOutcome{
			Status: models.UnitStatus{Label: "document", OK: false, Error: "no input data"},
		})
		return agg
	}

	if len(text) <= p.cfg.SinglePassCharLimit {
		return p.singlePassText(ctx, text, "")
	}

	start, end, ok := dateutils.DetectDateRange(text)
	if !ok {
		agg := p.singlePassText(ctx, text,
			"date range undetectable in oversized document, extracted in one pass")
		return agg
	}

	ranges := chunker.MonthRanges(start, end)
	if len(ranges) <= 1 {
		return p.singlePassText(ctx, text, "")
	}

	return p.extractTextByMonth(ctx, text, ranges)
}

func (p *Pipeline) singlePassText(ctx context.Context, text, warning string) *aggregate {
	agg := newAggregate("text", PipelineSinglePass)
	if warning != "" {
		agg.warn(warning)
	}
	t := p.flashTier()
	req := aiclient.Request{
		Model:           t.model,
		Prompt:          invoker.TextPrompt(text, p.cat.Names()),
		MaxOutputTokens: p.cfg.MaxOutputTokens,
	}
	agg.addUnit(p.inv.Run(ctx, req, t.retry, "document"))
	return agg
}

func (p *Pipeline) extractTextByMonth(ctx context.Context, text string, ranges []models.MonthRange) *aggregate {
	agg := newAggregate("text", PipelineByMonth)
	t := p.flashTier()

	for i, r := range ranges {
		if i > 0 {
			p.pause(t.interval)
		}
		prompt := invoker.MonthPrompt(dateutils.FormatISO(r.Start), dateutils.FormatISO(r.End), p.cat.Names())
		req := aiclient.Request{
			Model:           t.model,
			Prompt:          prompt + "\n\nStatement text:\n" + text,
			MaxOutputTokens: p.cfg.MaxOutputTokens,
		}
		agg.addMonthUnit(p.inv.Run(ctx, req, t.retry, r.Label), r)
	}
	return agg
}

// extractPDF routes a PDF by its text layer: scanned documents go page
// by page, text-bearing ones get the file attached for a single pass or
// one call per month window.
func (p *Pipeline) extractPDF(ctx context.Context, in Input) *aggregate {
	analysis := pdfutils.Analyze(in.Data)

	if analysis.Scanned {
		return p.extractPages(ctx, in, analysis)
	}

	if len(analysis.Text) <= p.cfg.SinglePassCharLimit {
		return p.singlePassDocument(ctx, in, analysis, "")
	}

	start, end, ok := dateutils.DetectDateRange(analysis.Text)
	if !ok {
		return p.singlePassDocument(ctx, in, analysis,
			"date range undetectable in oversized document, extracted in one pass")
	}

	ranges := chunker.MonthRanges(start, end)
	if len(ranges) <= 1 {
		return p.singlePassDocument(ctx, in, analysis, "")
	}

	return p.extractDocumentByMonth(ctx, in, analysis, ranges)
}

// singlePassDocument extracts a text-bearing PDF in one call with the
// file attached. The model reads the original layout instead of the
// flattened text layer.
func (p *Pipeline) singlePassDocument(ctx context.Context, in Input, analysis pdfutils.Analysis, warning string) *aggregate {
	agg := newAggregate("pdf", PipelineSinglePass)
	if warning != "" {
		agg.warn(warning)
	}
	t := p.flashTier()
	req := aiclient.Request{
		Model:           t.model,
		Prompt:          invoker.StatementPrompt(p.cat.Names()),
		Document:        in.Data,
		MIMEType:        "application/pdf",
		MaxOutputTokens: analysis.MaxOutputTokens,
	}
	agg.addUnit(p.inv.Run(ctx, req, t.retry, "document"))
	return agg
}

// extractDocumentByMonth sends the whole PDF to the document tier once
// per month window. A fatal document-tier failure drops that month to
// the cheap text tier instead of losing it.
func (p *Pipeline) extractDocumentByMonth(ctx context.Context, in Input, analysis pdfutils.Analysis, ranges []models.MonthRange) *aggregate {
	agg := newAggregate("pdf", PipelineByMonth)
	doc := p.proTier()
	txt := p.flashTier()

	for i, r := range ranges {
		if i > 0 {
			p.pause(doc.interval)
		}
		prompt := invoker.MonthPrompt(dateutils.FormatISO(r.Start), dateutils.FormatISO(r.End), p.cat.Names())
		req := aiclient.Request{
			Model:           doc.model,
			Prompt:          prompt,
			Document:        in.Data,
			MIMEType:        "application/pdf",
			MaxOutputTokens: analysis.MaxOutputTokens,
		}
		out := p.inv.Run(ctx, req, doc.retry, r.Label)

		if out.Fatal && analysis.Text != "" {
			p.log.WithField(logging.FieldUnit, r.Label).Warn("Document tier failed, retrying month on text tier")
			fallback := aiclient.Request{
				Model:           txt.model,
				Prompt:          prompt + "\n\nStatement text:\n" + analysis.Text,
				MaxOutputTokens: p.cfg.MaxOutputTokens,
			}
			out = p.inv.Run(ctx, fallback, txt.retry, r.Label)
		}
		agg.addMonthUnit(out, r)
	}
	return agg
}

// extractPages reads a scanned PDF one page at a time. The whole file
// is attached each time; the prompt directs the model to a single page.
// Each page goes to the cheap tier first; only pages the cheap tier
// cannot parse are retried on the stronger tier.
func (p *Pipeline) extractPages(ctx context.Context, in Input, analysis pdfutils.Analysis) *aggregate {
	agg := newAggregate("pdf", PipelineByPage)
	agg.warn("document has no text layer, extracting page by page")
	cheap := p.flashTier()
	strong := p.proTier()
	mime := pdfutils.DetectMIMEType(in.Data)

	pages := analysis.PageCount
	if pages < 1 {
		pages = 1
	}
	for page := 1; page <= pages; page++ {
		if page > 1 {
			p.pause(cheap.interval)
		}
		prompt := invoker.PagePrompt(page, pages, p.cat.Names())
		label := fmt.Sprintf("page %d/%d", page, pages)

		req := aiclient.Request{
			Model:           cheap.model,
			Prompt:          prompt,
			Document:        in.Data,
			MIMEType:        mime,
			MaxOutputTokens: analysis.MaxOutputTokens,
		}
		out := p.inv.Run(ctx, req, cheap.retry, label)

		if !out.Status.OK {
			p.log.WithField(logging.FieldUnit, label).Warn("Cheap tier failed on page, escalating")
			p.pause(strong.interval)
			req.Model = strong.model
			out = p.inv.Run(ctx, req, strong.retry, label)
		}
		agg.addUnit(out)
	}
	return agg
}
