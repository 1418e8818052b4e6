package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/eternals/internal/admission"
	"github.com/dgallion1/eternals/internal/doctext"
	"github.com/dgallion1/eternals/internal/parser"
)

// ExtractText picks a parser by file extension and returns the document's
// text lines grouped by page.
func ExtractText(r io.Reader, filename string, popts parser.Options) (*doctext.Document, error) {
	p, err := parser.ForFile(filename, popts)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(r, filename)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	return doc, nil
}

// ParseDocument extracts the text lines of a document and runs the line
// parser over them. Pages without text contribute no lines.
func ParseDocument(r io.Reader, filename string, popts parser.Options, rules *admission.Rules, opts admission.Options, log *slog.Logger) (*doctext.Document, *admission.Result, error) {
	doc, err := ExtractText(r, filename, popts)
	if err != nil {
		return nil, nil, err
	}
	res := admission.NewParser(rules, opts, log).Parse(doc.Lines())
	return doc, res, nil
}

// Worker processes a single parse job.
type Worker struct {
	rules      *admission.Rules
	parserOpts parser.Options
	stats      *ParseStats
	log        *slog.Logger
}

func NewWorker(rules *admission.Rules, popts parser.Options, stats *ParseStats, log *slog.Logger) *Worker {
	return &Worker{
		rules:      rules,
		parserOpts: popts,
		stats:      stats,
		log:        log,
	}
}

// Process extracts text from the job's file and parses it into a table.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	if err := ctx.Err(); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "cancelled")
		return
	}

	// Phase 1: text extraction
	job.SetStatus(StatusExtracting, "extracting text")
	doc, err := ExtractText(bytes.NewReader(job.FileData()), job.Filename, w.parserOpts)
	if err != nil {
		log.Error("text extraction failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	lines := doc.Lines()
	job.SetDocument(doc.Title, len(doc.Pages), len(lines))
	log.Info("extracted text", "pages", len(doc.Pages), "lines", len(lines))
	if len(lines) == 0 {
		log.Warn("no text extracted")
		job.AddError("no extractable text")
	}

	// Phase 2: line parsing
	job.SetStatus(StatusParsing, "parsing lines")
	res := admission.NewParser(w.rules, job.Options, log).Parse(lines)
	job.SetResult(res)

	elapsed := time.Since(start)
	if w.stats != nil {
		w.stats.Record(elapsed, res.Stats.Lines, res.Stats.Accepted)
	}
	log.Info("parse complete",
		"accepted", res.Stats.Accepted,
		"rejected", res.Stats.Rejected,
		"merged", res.Stats.Merged,
		"filtered", res.Stats.Filtered,
		"duration_ms", elapsed.Milliseconds(),
	)
	job.SetStatus(StatusCompleted, "done")
}
