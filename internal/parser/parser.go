// Package parser implements the parse capability consumed by ingestion.
// Text and CSV extraction are built in; binary formats (pdf, pptx, docx) are
// pluggable so deployments can register their own extractors.
package parser

import (
	"path/filepath"
	"strings"

	"github.com/docmind/backend/internal/domain"
	"github.com/docmind/backend/pkg/errs"
)

// Format identifies a supported document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPPTX Format = "pptx"
	FormatDOCX Format = "docx"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// FromFileName infers the parse format from the file extension.
func FromFileName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, nil
	case ".pptx":
		return FormatPPTX, nil
	case ".docx":
		return FormatDOCX, nil
	case ".csv":
		return FormatCSV, nil
	case ".txt", ".md":
		return FormatText, nil
	default:
		return "", errs.UnsupportedFormat("unsupported file type: %s", name)
	}
}

// Parser extracts text and metadata from raw document bytes.
type Parser interface {
	Parse(content []byte, format Format) (domain.Parsed, error)
}

// ParseFunc parses a single format.
type ParseFunc func(content []byte) (domain.Parsed, error)

// Registry dispatches to per-format parse functions.
type Registry struct {
	parsers map[Format]ParseFunc
}

// NewRegistry returns a registry with the text and CSV parsers installed.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[Format]ParseFunc)}
	r.Register(FormatText, parseText)
	r.Register(FormatCSV, parseCSV)
	return r
}

// Register installs or replaces the parser for a format.
func (r *Registry) Register(format Format, fn ParseFunc) {
	r.parsers[format] = fn
}

// Parse extracts text from content. Formats without a registered parser fail
// with a parse error; unsupported formats are rejected upstream by
// FromFileName.
func (r *Registry) Parse(content []byte, format Format) (domain.Parsed, error) {
	fn, ok := r.parsers[format]
	if !ok {
		return domain.Parsed{}, errs.New(errs.KindParse, "no parser registered for format %q", format)
	}
	return fn(content)
}
