package pdftext

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func newExtractor() *Extractor {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExtractRejectsNonPDF(t *testing.T) {
	e := newExtractor()

	_, err := e.Extract([]byte("plain text payload"))
	if !errors.Is(err, ErrNotPDF) {
		t.Errorf("error: got %v, want ErrNotPDF", err)
	}
}

func TestExtractRejectsCorruptPDF(t *testing.T) {
	e := newExtractor()

	_, err := e.Extract([]byte("%PDF-1.4 garbage with no structure"))
	if err == nil {
		t.Error("expected error for corrupt pdf structure")
	}
	if errors.Is(err, ErrNotPDF) {
		t.Error("corrupt pdf should not report ErrNotPDF")
	}
}

func TestHarvestPlainStream(t *testing.T) {
	e := newExtractor()
	data := []byte("%PDF-1.4\nstream\nBT (Invoice) Tj (Total: $99.00) Tj ET\nendstream\n")

	got := e.harvest(data)
	want := "Invoice\nTotal: $99.00"
	if got != want {
		t.Errorf("harvest: got %q, want %q", got, want)
	}
}

func TestHarvestCompressedStream(t *testing.T) {
	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	if _, err := w.Write([]byte("BT (Quarterly report) Tj ET")); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	var data bytes.Buffer
	data.WriteString("%PDF-1.4\nstream\n")
	data.Write(compressed.Bytes())
	data.WriteString("endstream\n")

	e := newExtractor()
	got := e.harvest(data.Bytes())
	if got != "Quarterly report" {
		t.Errorf("harvest: got %q, want %q", got, "Quarterly report")
	}
}

func TestHarvestSkipsEmptyLiterals(t *testing.T) {
	e := newExtractor()
	data := []byte("stream\n( ) Tj (kept) Tj\nendstream")

	if got := e.harvest(data); got != "kept" {
		t.Errorf("harvest: got %q, want %q", got, "kept")
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`line one\nline two`, "line one\nline two"},
		{`tab\there`, "tab\there"},
		{`balanced \(parens\)`, "balanced (parens)"},
		{`back\\slash`, `back\slash`},
		{`octal \101 kept`, `octal \101 kept`},
		{`trailing \`, `trailing \`},
	}

	for _, tt := range tests {
		if got := unescape(tt.in); got != tt.want {
			t.Errorf("unescape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
