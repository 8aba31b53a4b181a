// Package pdftext extracts plain text from PDF payloads so the rest of the
// pipeline can treat uploaded documents as ordinary text. Extraction is
// best-effort: content streams are inflated and their string literals
// harvested, which covers the text operators of simple generators without
// attempting full layout reconstruction.
package pdftext

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrNotPDF indicates the payload does not carry a PDF header.
var ErrNotPDF = errors.New("payload is not a PDF document")

var (
	pdfHeader = []byte("%PDF-")

	streamRe  = regexp.MustCompile(`(?s)stream\r?\n(.*?)endstream`)
	literalRe = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)
)

// Document is the result of text extraction.
type Document struct {
	Text      string `json:"text"`
	PageCount int    `json:"page_count"`
}

// Extractor pulls text and page metadata out of raw PDF bytes.
type Extractor struct {
	logger *slog.Logger
}

// New creates an Extractor with the given logger.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{
		logger: logger.With("system", "pdftext"),
	}
}

// Extract returns the harvested text and page count of a PDF payload.
func (e *Extractor) Extract(data []byte) (*Document, error) {
	if !bytes.HasPrefix(data, pdfHeader) {
		return nil, ErrNotPDF
	}

	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("read pdf structure: %w", err)
	}

	text := e.harvest(data)

	return &Document{
		Text:      text,
		PageCount: pages,
	}, nil
}

// harvest collects string literals from every content stream, inflating
// zlib-compressed streams first.
func (e *Extractor) harvest(data []byte) string {
	var parts []string

	for _, match := range streamRe.FindAllSubmatch(data, -1) {
		content := match[1]
		if inflated, err := inflate(content); err == nil {
			content = inflated
		}

		for _, lit := range literalRe.FindAllSubmatch(content, -1) {
			if s := unescape(string(lit[1])); strings.TrimSpace(s) != "" {
				parts = append(parts, s)
			}
		}
	}

	if len(parts) == 0 {
		e.logger.Warn("no text literals found in pdf content streams")
	}

	return strings.Join(parts, "\n")
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// unescape resolves the PDF string literal escapes that matter for text
// content. Octal escapes beyond the common set are left as-is.
func unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}

		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '(', ')', '\\':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}

	return b.String()
}
