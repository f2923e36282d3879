package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/config"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "docoutline",
	Short: "Split long PDF documents into an outline and per-section markdown",
	Long: `docoutline reads a PDF (or a JSON layout dump), works out its heading
outline, and writes one markdown document per section together with
outline.json, segments.json and outline.md.

Headings come from the embedded outline when the PDF has one, otherwise
from font sizes. Section text is repaired: footnote markers become <sup>
tags, definitions move to the end of their section, and flattened tables
are rebuilt as markdown tables.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./docoutline.yaml)",
	)
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"input":                    "input",
	"out-dir":                  "out_dir",
	"max-section-chars":        "max_section_chars",
	"include-section-metadata": "include_section_metadata",
	"preview-html":             "preview_html",
	"pdftotext-fallback":       "pdftotext_fallback",
	"repair-workers":           "repair_workers",
	"log-level":                "log_level",
	"port":                     "port",
}

// loadConfig merges defaults, config file, environment and the flags
// defined on cmd, in increasing order of precedence.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v, err := config.New(cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return config.Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}
	return config.Load(v)
}
