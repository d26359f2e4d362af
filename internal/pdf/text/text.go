// Package text extracts plain text from PDF pages. Sheet extraction works
// from form fields; this exists for sheets that flattened their fields into
// page content and for the debug CLI.
package text

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/rollkeeper/rollkeeper/internal/pdf/pdferr"
)

// Extractor pulls plain text out of PDF bytes, page by page.
type Extractor struct{}

// NewExtractor creates a text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the concatenated plain text of every page, separated by
// blank lines. A page that cannot be decoded is skipped; the document only
// fails when it cannot be opened at all.
func (e *Extractor) Extract(ctx context.Context, pdfBytes []byte) (string, error) {
	pages, err := e.ExtractPages(ctx, pdfBytes)
	if err != nil {
		return "", err
	}
	return strings.Join(pages, "\n\n"), nil
}

// ExtractPages returns the plain text of each page, one entry per page.
// Undecodable pages yield an empty entry so indexes still line up with
// page numbers.
func (e *Extractor) ExtractPages(ctx context.Context, pdfBytes []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reader, err := openReader(pdfBytes)
	if err != nil {
		return nil, pdferr.WrapOpen(err)
	}

	pageCount := reader.NumPage()
	pages := make([]string, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, pageText(reader, pageNum))
	}
	return pages, nil
}

// openReader guards against panics inside the parser on hostile input.
func openReader(pdfBytes []byte) (reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse document: %v", r)
		}
	}()
	return pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
}

func pageText(reader *pdf.Reader, pageNum int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()
	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}
	content, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(content)
}
