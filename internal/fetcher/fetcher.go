package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/atxlegis/bill-analyzer/internal/resolver"
)

// ErrDocumentNotFound is a distinguished outcome: the document does not
// exist on the host (not every bill has a published fiscal note yet).
// Callers branch on it separately from transport and server failures.
var ErrDocumentNotFound = errors.New("document does not exist")

// StatusError is a non-200, non-404 response from the document host.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

type Config struct {
	BillTimeout   time.Duration
	FiscalTimeout time.Duration
	// HTTPClient should be the insecure document-host client from the
	// resolver package; tests substitute a plain one.
	HTTPClient *http.Client
	Extractor  TextExtractor
	Logger     *log.Logger
}

// Fetcher downloads resolved documents and turns them into normalized
// plain text.
type Fetcher struct {
	billTimeout   time.Duration
	fiscalTimeout time.Duration
	httpClient    *http.Client
	extractor     TextExtractor
	logger        *log.Logger
}

func New(cfg Config) *Fetcher {
	if cfg.BillTimeout <= 0 {
		cfg.BillTimeout = 30 * time.Second
	}
	if cfg.FiscalTimeout <= 0 {
		cfg.FiscalTimeout = 15 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resolver.NewDocumentHostClient()
	}
	return &Fetcher{
		billTimeout:   cfg.BillTimeout,
		fiscalTimeout: cfg.FiscalTimeout,
		httpClient:    cfg.HTTPClient,
		extractor:     cfg.Extractor,
		logger:        cfg.Logger,
	}
}

// FetchAndExtract downloads the located document and extracts normalized
// text. Empty returned text means the PDF could not be decoded; callers
// treat that as extraction failure rather than receiving an error.
func (f *Fetcher) FetchAndExtract(
	ctx context.Context,
	kind resolver.DocumentKind,
	location resolver.DocumentLocation,
) (string, error) {
	timeout := f.billTimeout
	if kind == resolver.KindFiscalNote {
		timeout = f.fiscalTimeout
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, location.URL, nil)
	if err != nil {
		return "", fmt.Errorf("create fetch request: %w", err)
	}

	response, err := f.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", kind, err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return "", ErrDocumentNotFound
	}
	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: %w", kind, &StatusError{StatusCode: response.StatusCode})
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("read %s body: %w", kind, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("fetch %s: empty response body", kind)
	}

	text := NormalizeText(f.extractor.ExtractText(data))
	if f.logger != nil {
		f.logger.Printf("fetched %s url=%s bytes=%d extracted_chars=%d", kind, location.URL, len(data), len(text))
	}
	return text, nil
}
