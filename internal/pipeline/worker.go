package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docoutline/internal/parser"
)

// Worker processes a single document job.
type Worker struct {
	log   *slog.Logger
	stats *StageStats

	pdftotextFallback bool
	repairWorkers     int
}

func NewWorker(log *slog.Logger, stats *StageStats, pdftotextFallback bool, repairWorkers int) *Worker {
	return &Worker{
		log:               log,
		stats:             stats,
		pdftotextFallback: pdftotextFallback,
		repairWorkers:     repairWorkers,
	}
}

// Process runs the full extraction for a job and keeps the result in
// memory for the API.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "file", job.Filename)

	// Phase 1: Open
	job.SetStatus(StatusOpening, "opening")
	start := time.Now()
	doc, err := parser.FromBytes(job.Filename, job.FileData(), parser.Options{
		FallbackPdftotext: w.pdftotextFallback,
		Log:               log,
	})
	if err != nil {
		log.Error("open failed", "error", err)
		job.Fail("opening", fmt.Sprintf("open: %s", err))
		return
	}
	defer doc.Close()
	if w.stats != nil {
		w.stats.Record("open", time.Since(start))
	}

	// Phases 2-5: outline, assemble, repair, rebalance.
	opts := job.Options
	if opts.RepairWorkers <= 0 {
		opts.RepairWorkers = w.repairWorkers
	}
	res, err := Run(ctx, doc, job.Filename, opts, job, w.stats, log)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.Fail("failed", err.Error())
		return
	}

	job.SetResult(res)
	job.SetStatus(StatusCompleted, "done")
	log.Info("job complete", "segments", len(res.Segments))
}
