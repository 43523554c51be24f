package resolver

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/atxlegis/bill-analyzer/internal/domain"
)

// ErrNotFound means every candidate URL was probed and none responded 200.
var ErrNotFound = errors.New("document not found under any known URL pattern")

// DocumentLocation is the first responsive candidate for a document. It is
// recomputed per request, never persisted. ContentLength is -1 when the
// host omits the header.
type DocumentLocation struct {
	URL           string
	Pattern       PatternKind
	ContentLength int64
}

type Config struct {
	BaseURL      string
	ProbeTimeout time.Duration
	// HTTPClient overrides the default insecure-TLS client in tests.
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Resolver locates bill and fiscal-note PDFs by probing an ordered list of
// URL naming conventions with HEAD requests.
type Resolver struct {
	baseURL      string
	probeTimeout time.Duration
	httpClient   *http.Client
	logger       *log.Logger
}

func New(cfg Config) *Resolver {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = NewDocumentHostClient()
	}
	return &Resolver{
		baseURL:      cfg.BaseURL,
		probeTimeout: cfg.ProbeTimeout,
		httpClient:   cfg.HTTPClient,
		logger:       cfg.Logger,
	}
}

// NewDocumentHostClient builds the HTTP client used against the document
// host only. The host serves a self-signed certificate, so verification is
// disabled here and nowhere else; the summarizer and any other upstream use
// a default client.
func NewDocumentHostClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	return &http.Client{Transport: transport}
}

// Resolve probes each candidate in order and returns the first that answers
// 200. Probe failures and non-200 statuses advance to the next candidate;
// exhaustion is ErrNotFound.
func (r *Resolver) Resolve(
	ctx context.Context,
	kind DocumentKind,
	id domain.BillIdentifier,
	session string,
) (DocumentLocation, error) {
	for _, pattern := range patternsFor(kind) {
		candidate := pattern.render(r.baseURL, session, string(id.Type), id.Number)

		contentLength, ok := r.probe(ctx, candidate)
		if !ok {
			continue
		}

		if r.logger != nil {
			r.logger.Printf(
				"resolved %s %s via pattern=%s url=%s content_length=%d",
				kind, id, pattern.Kind, candidate, contentLength,
			)
		}
		return DocumentLocation{
			URL:           candidate,
			Pattern:       pattern.Kind,
			ContentLength: contentLength,
		}, nil
	}
	return DocumentLocation{}, ErrNotFound
}

func (r *Resolver) probe(ctx context.Context, url string) (int64, bool) {
	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(probeCtx, http.MethodHead, url, nil)
	if err != nil {
		return 0, false
	}

	response, err := r.httpClient.Do(request)
	if err != nil {
		return 0, false
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return 0, false
	}
	return response.ContentLength, true
}
