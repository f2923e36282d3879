// Package output writes an extraction result to disk: one markdown
// document per section or chunk, the outline and segment indexes, and
// optional HTML previews.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Renderer turns a section document into HTML.
type Renderer interface {
	Render(markdown string) (string, error)
}

// Options control what Write emits.
type Options struct {
	Preview Renderer // nil disables HTML previews
}

// Dir returns the output directory for an input stem.
func Dir(root, stem string) string {
	return filepath.Join(root, stem)
}

// EncodeIndexes marshals and validates outline.json and segments.json.
func EncodeIndexes(res *doctree.Result) (outline, segments []byte, err error) {
	outline, err = json.MarshalIndent(res.Outline, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode outline: %w", err)
	}
	if err := ValidateIndex(OutlineJSON, outline); err != nil {
		return nil, nil, err
	}
	segments, err = json.MarshalIndent(res.Segments, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode segments: %w", err)
	}
	if err := ValidateIndex(SegmentsJSON, segments); err != nil {
		return nil, nil, err
	}
	return outline, segments, nil
}

// Write prepares dir and writes every document of res into it.
func Write(ctx context.Context, dir string, res *doctree.Result, opts Options) error {
	outlineJSON, segmentsJSON, err := EncodeIndexes(res)
	if err != nil {
		return err
	}
	if _, err := Prepare(ctx, dir); err != nil {
		return err
	}

	for _, d := range res.Documents {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, filepath.FromSlash(d.File))
		if err := os.WriteFile(path, []byte(d.Markdown), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", d.File, err)
		}
		if opts.Preview == nil {
			continue
		}
		html, err := opts.Preview.Render(d.Markdown)
		if err != nil {
			return fmt.Errorf("render %s: %w", d.File, err)
		}
		if err := os.WriteFile(strings.TrimSuffix(path, ".md")+".html", []byte(html), 0o644); err != nil {
			return fmt.Errorf("write preview for %s: %w", d.File, err)
		}
	}

	files := []struct {
		name string
		data []byte
	}{
		{OutlineJSON, outlineJSON},
		{SegmentsJSON, segmentsJSON},
		{OutlineMD, []byte(RenderOutline(res.Outline))},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.name), f.data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}
