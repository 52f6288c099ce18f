package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/freteiro/internal/config"
	"github.com/dgallion1/freteiro/internal/export"
	"github.com/dgallion1/freteiro/internal/extract"
	"github.com/dgallion1/freteiro/internal/manifest"
	"github.com/dgallion1/freteiro/internal/parser"
	"github.com/dgallion1/freteiro/internal/report"
	"github.com/dgallion1/freteiro/internal/tariff"
)

// Worker processes a single report job.
type Worker struct {
	jobs *JobStore
	log  *slog.Logger

	parserOpts  parser.Options
	extractOpts extract.Options
	header      manifest.Header
	outputDir   string
	maxBytes    int64
}

// NewWorker builds a worker from cfg. An empty OutputDir disables export.
func NewWorker(jobs *JobStore, log *slog.Logger, cfg config.Config) *Worker {
	return &Worker{
		jobs:        jobs,
		log:         log,
		parserOpts:  parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		extractOpts: extract.Options{HelperAllowance: cfg.HelperAllowance},
		header: manifest.Header{
			Provider: cfg.Provider,
			Profile:  cfg.Profile,
			Date:     cfg.ReportDate,
		},
		outputDir: cfg.OutputDir,
		maxBytes:  cfg.MaxUploadBytes,
	}
}

// Process reads, prices and exports one document.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Read
	job.SetStatus(StatusReading, "reading")
	data := job.FileData()
	if w.maxBytes > 0 && int64(len(data)) > w.maxBytes {
		log.Error("file too large", "bytes", len(data), "limit", w.maxBytes)
		job.AddError(fmt.Sprintf("file exceeds %d bytes", w.maxBytes))
		job.SetStatus(StatusFailed, "reading")
		return
	}

	p, err := parser.ForFile(job.Filename, w.parserOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "reading")
		return
	}

	doc, err := p.Parse(ctx, bytes.NewReader(data), job.Filename)
	if err != nil {
		log.Error("read failed", "error", err)
		job.AddError(fmt.Sprintf("read: %s", err))
		job.SetStatus(StatusFailed, "reading")
		return
	}
	job.SetPages(len(doc.Pages))

	hash := ContentHashHex([]byte(doc.FullText()))
	job.setRead(doc.Title, hash)

	// Phase 1.5: Dedup check
	if owner, ok := w.jobs.ClaimHash(hash, job.ID); !ok {
		log.Info("duplicate document, skipping", "duplicate_of", owner)
		job.setDuplicateOf(owner)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Segment and read fields
	job.SetStatus(StatusSegmenting, "segmenting")
	res := extract.ParseDocument(doc.Pages, w.extractOpts)
	unresolved := 0
	for _, rec := range res.Records {
		if rec.Region == tariff.Unresolved {
			unresolved++
		}
	}
	job.SetRecords(len(res.Records), len(res.Records), unresolved)
	log.Info("segmented document", "pages", len(doc.Pages), "records", len(res.Records), "unresolved", unresolved, "plate", res.Plate)
	if len(res.Records) == 0 {
		log.Warn("no manifest headers found")
	}

	if err := ctx.Err(); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "segmenting")
		return
	}

	// Phase 3: Price
	job.SetStatus(StatusPricing, "pricing")
	rep := report.New(w.header)
	rep.Load(res)
	snap := rep.Snapshot()
	log.Info("priced report", "profile", snap.Header.Profile, "grand_total", snap.Totals.Grand.StringFixed(2))

	// Phase 4: Export
	outputPath := ""
	if w.outputDir != "" {
		job.SetStatus(StatusExporting, "exporting")
		outputPath = w.claimOutput(log, job.ID, snap.Header.Provider, doc.Title)
		if err := writeWorkbook(outputPath, snap); err != nil {
			log.Error("export failed", "path", outputPath, "error", err)
			job.AddError(fmt.Sprintf("export: %s", err))
			job.SetStatus(StatusFailed, "exporting")
			return
		}
		log.Info("exported workbook", "path", outputPath)
	}

	job.setResult(snap, outputPath)
	job.SetStatus(StatusCompleted, "done")
}

// claimOutput reserves the workbook path for a job. When another job in the
// batch already holds the name, the job id prefix is appended.
func (w *Worker) claimOutput(log *slog.Logger, jobID, provider, title string) string {
	path := filepath.Join(w.outputDir, export.FileName(provider, title))
	owner, ok := w.jobs.ClaimOutput(path, jobID)
	if ok {
		return path
	}
	alt := filepath.Join(w.outputDir, export.FileName(provider, title, shortID(jobID)))
	w.jobs.ClaimOutput(alt, jobID)
	log.Info("output name taken, using job suffix", "taken_by", owner, "path", alt)
	return alt
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func writeWorkbook(path string, snap report.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteXLSX(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
