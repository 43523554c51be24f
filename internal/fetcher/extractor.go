package fetcher

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor converts raw PDF bytes to plain text. Implementations
// return an empty string instead of an error for undecodable documents;
// callers treat empty output as extraction failure.
type TextExtractor interface {
	ExtractText(data []byte) string
}

// PDFExtractor is the default TextExtractor.
type PDFExtractor struct {
	logger *log.Logger
}

func NewPDFExtractor(logger *log.Logger) *PDFExtractor {
	return &PDFExtractor{logger: logger}
}

func (e *PDFExtractor) ExtractText(data []byte) string {
	text, err := extractPDFText(data)
	if err != nil {
		if e.logger != nil {
			e.logger.Printf("pdf extraction failed: %v", err)
		}
		return ""
	}
	return text
}

func extractPDFText(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs; keep that inside
	// the extraction boundary.
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdf reader panic: %v", recovered)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var builder strings.Builder
	for pageNumber := 1; pageNumber <= reader.NumPage(); pageNumber++ {
		page := reader.Page(pageNumber)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(content)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
