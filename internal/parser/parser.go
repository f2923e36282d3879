// Package parser supplies positioned page content to the outline pipeline.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// ErrUnsupportedFormat is returned for inputs no Document implementation reads.
var ErrUnsupportedFormat = errors.New("unsupported file extension")

// Document exposes the positioned content of a paginated document.
// Page numbers are 1-based.
type Document interface {
	NumPages() int
	Page(n int) (*doctree.Page, error)
	Outline() ([]doctree.TOCItem, error)
	Close() error
}

// Options control how documents are opened.
type Options struct {
	// FallbackPdftotext switches to pdftotext -bbox-layout when the
	// PDF library cannot read a file.
	FallbackPdftotext bool
	Log               *slog.Logger
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".json": true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Open returns the Document implementation matching the file extension.
func Open(path string, opts Options) (Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		doc, err := OpenPDF(path)
		if err == nil {
			return doc, nil
		}
		if !opts.FallbackPdftotext {
			return nil, err
		}
		logger(opts).Warn("pdf library failed, trying pdftotext", "path", path, "error", err)
		fb, fbErr := OpenPdftotext(path)
		if fbErr != nil {
			return nil, fmt.Errorf("open pdf: %w (pdftotext: %v)", err, fbErr)
		}
		return fb, nil
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open layout: %w", err)
		}
		defer f.Close()
		return ReadLayout(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// FromBytes opens an in-memory upload. PDFs that the library rejects are
// spooled to a temp file for the pdftotext fallback.
func FromBytes(filename string, data []byte, opts Options) (Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		doc, err := ReadPDF(data)
		if err == nil {
			return doc, nil
		}
		if !opts.FallbackPdftotext {
			return nil, err
		}
		logger(opts).Warn("pdf library failed, trying pdftotext", "file", filename, "error", err)
		tmp, tmpErr := os.CreateTemp("", "docoutline-*.pdf")
		if tmpErr != nil {
			return nil, fmt.Errorf("create temp file: %w", tmpErr)
		}
		defer os.Remove(tmp.Name())
		if _, werr := tmp.Write(data); werr != nil {
			tmp.Close()
			return nil, fmt.Errorf("write temp file: %w", werr)
		}
		tmp.Close()
		fb, fbErr := OpenPdftotext(tmp.Name())
		if fbErr != nil {
			return nil, fmt.Errorf("open pdf: %w (pdftotext: %v)", err, fbErr)
		}
		return fb, nil
	case ".json":
		return ReadLayout(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func logger(opts Options) *slog.Logger {
	if opts.Log != nil {
		return opts.Log
	}
	return slog.Default()
}
