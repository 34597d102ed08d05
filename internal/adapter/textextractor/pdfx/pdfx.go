// Package pdfx extracts plain text from candidate documents locally.
package pdfx

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
	"github.com/iamcalledayush/resume-scorer-resupply/pkg/textx"
)

// Extractor implements domain.TextExtractor for PDF and plain-text files.
type Extractor struct{}

// New constructs an Extractor.
func New() *Extractor { return &Extractor{} }

// Extract returns the plain text of a document. PDFs are parsed page by
// page; unreadable pages are skipped rather than failing the document.
// Everything else is treated as UTF-8 text.
func (e *Extractor) Extract(_ context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty document %q", domain.ErrInvalidArgument, filename)
	}
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return textx.SanitizeText(string(data)), nil
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("op=pdfx.Extract: open %q: %w", filename, err)
	}

	var b strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}

	text := textx.SanitizeText(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: no text content in %q", domain.ErrSchemaInvalid, filename)
	}
	return text, nil
}
