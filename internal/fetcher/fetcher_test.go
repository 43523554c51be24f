package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atxlegis/bill-analyzer/internal/resolver"
)

// passthroughExtractor treats the fetched bytes as the extracted text.
type passthroughExtractor struct{}

func (passthroughExtractor) ExtractText(data []byte) string { return string(data) }

// brokenExtractor simulates an undecodable PDF.
type brokenExtractor struct{}

func (brokenExtractor) ExtractText([]byte) string { return "" }

func TestFetchAndExtractNormalizesText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("AN  ACT\trelating to\n\n\n\nappropriations.  \n"))
	}))
	defer server.Close()

	f := New(Config{HTTPClient: server.Client(), Extractor: passthroughExtractor{}})
	text, err := f.FetchAndExtract(context.Background(), resolver.KindBill, resolver.DocumentLocation{URL: server.URL})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := "AN ACT relating to\n\nappropriations."
	if text != want {
		t.Fatalf("normalized text %q, want %q", text, want)
	}
}

func TestFetchAndExtract404IsDistinguished(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := New(Config{HTTPClient: server.Client(), Extractor: passthroughExtractor{}})
	_, err := f.FetchAndExtract(context.Background(), resolver.KindFiscalNote, resolver.DocumentLocation{URL: server.URL})
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestFetchAndExtractServerErrorIsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := New(Config{HTTPClient: server.Client(), Extractor: passthroughExtractor{}})
	_, err := f.FetchAndExtract(context.Background(), resolver.KindBill, resolver.DocumentLocation{URL: server.URL})
	if err == nil || errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestFetchAndExtractEmptyBodyIsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	defer server.Close()

	f := New(Config{HTTPClient: server.Client(), Extractor: passthroughExtractor{}})
	_, err := f.FetchAndExtract(context.Background(), resolver.KindBill, resolver.DocumentLocation{URL: server.URL})
	if err == nil {
		t.Fatalf("expected error on empty body")
	}
}

func TestFetchAndExtractUndecodablePDFYieldsEmptyText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not a pdf"))
	}))
	defer server.Close()

	f := New(Config{HTTPClient: server.Client(), Extractor: brokenExtractor{}})
	text, err := f.FetchAndExtract(context.Background(), resolver.KindBill, resolver.DocumentLocation{URL: server.URL})
	if err != nil {
		t.Fatalf("extraction failure must not error: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestNormalizeTextIsIdempotent(t *testing.T) {
	inputs := []string{
		"a  b\tc\n\n\n\nd",
		"  leading and trailing  ",
		"already\n\nnormal text",
		"",
	}
	for _, input := range inputs {
		once := NormalizeText(input)
		twice := NormalizeText(once)
		if once != twice {
			t.Fatalf("normalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestPDFExtractorReturnsEmptyOnGarbage(t *testing.T) {
	extractor := NewPDFExtractor(nil)
	if got := extractor.ExtractText([]byte("definitely not a pdf")); got != "" {
		t.Fatalf("expected empty extraction, got %q", got)
	}
}
