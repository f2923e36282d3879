package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docoutline/internal/chunker"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/output"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/rebalance"
	"github.com/dgallion1/docoutline/internal/repair"
	"github.com/dgallion1/docoutline/internal/section"
)

// Options control a single extraction.
type Options struct {
	MaxSectionChars int
	IncludeMetadata bool
	RepairWorkers   int
	Repair          *repair.Pipeline // nil uses the default recognizers
}

// Tracker receives progress while a document is processed. Job
// implements it for server mode.
type Tracker interface {
	SetStatus(status JobStatus, phase string)
	SetSectionsTotal(n int)
	IncrSectionsDone()
}

type noopTracker struct{}

func (noopTracker) SetStatus(JobStatus, string) {}
func (noopTracker) SetSectionsTotal(int)        {}
func (noopTracker) IncrSectionsDone()           {}

// Stem returns the file name without directory and extension.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Run extracts the outline, section bodies, segments and section tree
// of doc. Page and outline failures degrade the result instead of
// failing the run; only cancellation and index validation return errors.
func Run(ctx context.Context, doc parser.Document, name string, opts Options, tr Tracker, stats *StageStats, log *slog.Logger) (*doctree.Result, error) {
	if tr == nil {
		tr = noopTracker{}
	}
	if log == nil {
		log = slog.Default()
	}
	timed := func(stage string, start time.Time) {
		if stats != nil {
			stats.Record(stage, time.Since(start))
		}
	}

	// Phase 1: Outline
	tr.SetStatus(StatusOutlining, "outlining")
	log.Info("outlining", "pages", doc.NumPages())
	start := time.Now()
	pageCount := doc.NumPages()
	pages := make([]*doctree.Page, pageCount)
	pageErrs := make([]error, pageCount)
	for i := range pageCount {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages[i], pageErrs[i] = doc.Page(i + 1)
		if pageErrs[i] != nil {
			log.Warn("page unreadable", "page", i+1, "error", pageErrs[i])
		}
	}
	entries := outline.Finalize(outline.Build(doc, pages, log))
	timed("outline", start)

	// Phase 2: Assemble
	tr.SetStatus(StatusAssembling, "assembling")
	log.Info("assembling", "headings", len(entries))
	sections := section.Assemble(entries, pageCount)
	tr.SetSectionsTotal(len(sections))
	source := func(n int) (*doctree.Page, error) {
		if n < 1 || n > pageCount {
			return nil, fmt.Errorf("page %d out of range", n)
		}
		if pageErrs[n-1] != nil {
			return nil, pageErrs[n-1]
		}
		return pages[n-1], nil
	}

	// Phase 3: Collect and repair each section.
	tr.SetStatus(StatusRepairing, "repairing")
	log.Info("repairing", "sections", len(sections))
	start = time.Now()
	rp := opts.Repair
	if rp == nil {
		rp = repair.New()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.RepairWorkers))
	for i, s := range sections {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			log.Debug("extracting section", "index", i+1, "total", len(sections), "title", s.Entry.Title)
			raw := section.Collect(s, source, log)
			s.Body = rp.Run(raw, s.Entry.Title, s.NextTitle)
			tr.IncrSectionsDone()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	timed("repair", start)

	// Phase 4: Rebalance footnotes across section boundaries.
	tr.SetStatus(StatusRebalancing, "rebalancing")
	log.Info("rebalancing")
	start = time.Now()
	rebalance.Run(sections)
	timed("rebalance", start)

	// Phase 5: Chunk and compose documents.
	chunks := chunker.ChunkSections(sections, chunker.Config{MaxChars: opts.MaxSectionChars})
	segments, docs := output.Compose(chunks, opts.IncludeMetadata)

	stem := Stem(name)
	res := &doctree.Result{
		Source:    name,
		Stem:      stem,
		PageCount: pageCount,
		Outline:   entries,
		Segments:  segments,
		Documents: docs,
		Tree:      doctree.BuildTree(stem, sections),
	}
	if _, _, err := output.EncodeIndexes(res); err != nil {
		return nil, err
	}
	log.Info("extraction complete", "source", res.Provenance(), "headings", len(entries), "segments", len(segments))
	return res, nil
}

// ExtractOptions configure Extract.
type ExtractOptions struct {
	Options
	OutRoot           string
	PdftotextFallback bool
	Preview           output.Renderer
}

// Extract opens path, runs the pipeline and writes the documents to
// <OutRoot>/<stem>. It returns the result and the output directory.
func Extract(ctx context.Context, path string, opts ExtractOptions, stats *StageStats, log *slog.Logger) (*doctree.Result, string, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("file", filepath.Base(path))

	log.Info("opening")
	start := time.Now()
	doc, err := parser.Open(path, parser.Options{FallbackPdftotext: opts.PdftotextFallback, Log: log})
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()
	if stats != nil {
		stats.Record("open", time.Since(start))
	}

	res, err := Run(ctx, doc, path, opts.Options, nil, stats, log)
	if err != nil {
		return nil, "", err
	}

	dir := output.Dir(opts.OutRoot, res.Stem)
	log.Info("writing", "dir", dir, "documents", len(res.Documents))
	start = time.Now()
	if err := output.Write(ctx, dir, res, output.Options{Preview: opts.Preview}); err != nil {
		return nil, "", err
	}
	if stats != nil {
		stats.Record("write", time.Since(start))
	}
	return res, dir, nil
}
