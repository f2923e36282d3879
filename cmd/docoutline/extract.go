package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/preview"
)

var extractCmd = &cobra.Command{
	Use:   "extract [input]",
	Short: "Extract the outline and section documents of one file",
	Long: `Extract reads one PDF or JSON layout file and writes its outline and
section documents to <out-dir>/<input stem>/.

Examples:
  docoutline extract handbook.pdf
  docoutline extract -i handbook.pdf --out-dir build --max-section-chars 4000
  docoutline extract handbook.pdf --preview-html -o table`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 && !cmd.Flags().Changed("input") {
			if err := cmd.Flags().Set("input", args[0]); err != nil {
				return err
			}
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
		if err := cfg.ValidateExtract(); err != nil {
			log.Error("invalid input", "error", err)
			return err
		}

		opts := pipeline.ExtractOptions{
			Options: pipeline.Options{
				MaxSectionChars: cfg.MaxSectionChars,
				IncludeMetadata: cfg.IncludeSectionMetadata,
				RepairWorkers:   cfg.RepairWorkers,
			},
			OutRoot:           cfg.OutDir,
			PdftotextFallback: cfg.PdftotextFallback,
		}
		if cfg.PreviewHTML {
			opts.Preview = preview.New()
		}

		res, dir, err := pipeline.Extract(cmd.Context(), cfg.Input, opts, nil, log)
		if err != nil {
			log.Error("extraction failed", "error", err)
			return err
		}

		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = dir
		}
		return writeSummary(cmd.OutOrStdout(), outputFormat, newSummary(cfg.Input, abs, res))
	},
}

func init() {
	f := extractCmd.Flags()
	f.StringP("input", "i", "", "input PDF or JSON layout file")
	f.String("out-dir", "output", "output root directory")
	f.Int("max-section-chars", 8000, "character budget per section document (minimum 1000)")
	f.Bool("include-section-metadata", true, "write Level/Pages/Source lines under each heading")
	f.Bool("preview-html", false, "also write sanitized HTML previews of each section")
	f.Bool("pdftotext-fallback", true, "use pdftotext -bbox-layout when the PDF cannot be parsed")
	f.Int("repair-workers", 4, "number of sections repaired in parallel")
	f.StringVarP(&outputFormat, "output", "o", "yaml", "summary format: yaml, json or table")
}

