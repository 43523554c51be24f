package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/atxlegis/bill-analyzer/internal/cache"
	"github.com/atxlegis/bill-analyzer/internal/domain"
	"github.com/atxlegis/bill-analyzer/internal/fetcher"
	"github.com/atxlegis/bill-analyzer/internal/resolver"
	"github.com/atxlegis/bill-analyzer/internal/summarizer"
)

// Request is one bill analysis ask as it arrives from the HTTP layer.
type Request struct {
	BillNumber   string
	Session      string
	ForceRefresh bool
	UseAsync     bool
}

// Outcome is either a synchronous result or an accepted background job,
// never both.
type Outcome struct {
	Result *domain.AnalysisResult
	Job    *domain.Job
}

type AnalysisConfig struct {
	DefaultSession string
	CacheTTL       time.Duration
	LockTTL        time.Duration

	// Async dispatch signals: a measured Content-Length threshold plus a
	// configured override list of canonical bill numbers for documents
	// served without the header.
	AsyncSizeThresholdBytes int64
	AsyncForcedBills        []string
}

type AnalysisDependencies struct {
	Resolver   *resolver.Resolver
	Fetcher    *fetcher.Fetcher
	Summarizer *summarizer.FiscalSummarizer
	Cache      cache.AnalysisCache
	Jobs       *JobsService
	Logger     *log.Logger
}

// AnalysisService runs the resolve → fetch → extract → gate → summarize →
// cache pipeline, and decides per request whether it runs inline or on the
// worker pool.
type AnalysisService struct {
	resolver   *resolver.Resolver
	fetcher    *fetcher.Fetcher
	summarizer *summarizer.FiscalSummarizer
	cache      cache.AnalysisCache
	jobs       *JobsService
	logger     *log.Logger

	defaultSession string
	cacheTTL       time.Duration
	lockTTL        time.Duration
	sizeThreshold  int64
	forcedAsync    map[string]bool
}

func NewAnalysisService(cfg AnalysisConfig, deps AnalysisDependencies) *AnalysisService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultTTL
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}

	forced := make(map[string]bool, len(cfg.AsyncForcedBills))
	for _, bill := range cfg.AsyncForcedBills {
		forced[strings.ToUpper(strings.TrimSpace(bill))] = true
	}

	return &AnalysisService{
		resolver:       deps.Resolver,
		fetcher:        deps.Fetcher,
		summarizer:     deps.Summarizer,
		cache:          deps.Cache,
		jobs:           deps.Jobs,
		logger:         deps.Logger,
		defaultSession: cfg.DefaultSession,
		cacheTTL:       cfg.CacheTTL,
		lockTTL:        cfg.LockTTL,
		sizeThreshold:  cfg.AsyncSizeThresholdBytes,
		forcedAsync:    forced,
	}
}

// Process serves one analysis request end to end: cache read, async
// dispatch decision, then either an inline pipeline run or an enqueued job.
func (s *AnalysisService) Process(ctx context.Context, request Request) (Outcome, error) {
	raw := strings.TrimSpace(request.BillNumber)
	if raw == "" {
		return Outcome{}, analysisErr(domain.ErrCodeMissingBillNumber, "bill_number is required", nil)
	}

	id, err := domain.ParseBillIdentifier(raw)
	if err != nil {
		return Outcome{}, analysisErr(
			domain.ErrCodeInvalidBillFormat,
			"bill number must look like HB 150, SB 45, HJR 10 or SJR 10",
			err,
		)
	}

	session := strings.TrimSpace(request.Session)
	if session == "" {
		session = s.defaultSession
	}
	key := cache.Key(session, id)

	if request.ForceRefresh {
		_ = s.cache.Invalidate(ctx, key)
	} else if cached, ok := s.cache.Get(ctx, key); ok {
		cached.CacheHit = true
		return Outcome{Result: cached}, nil
	}

	location, runAsync := s.decideAsync(ctx, id, session, request.UseAsync)
	if runAsync {
		job, err := s.jobs.Enqueue(ctx, id, session)
		if err != nil {
			return Outcome{}, analysisErr(domain.ErrCodeBillFetchError, "failed to enqueue analysis job", err)
		}
		return Outcome{Job: job}, nil
	}

	result, analysisError := s.buildWithLock(ctx, id, session, key, location)
	if analysisError != nil {
		return Outcome{}, analysisError
	}
	return Outcome{Result: result}, nil
}

// decideAsync picks the execution mode. It returns any bill location
// already resolved while measuring size so the synchronous path does not
// probe twice.
func (s *AnalysisService) decideAsync(
	ctx context.Context,
	id domain.BillIdentifier,
	session string,
	explicit bool,
) (*resolver.DocumentLocation, bool) {
	if explicit {
		return nil, true
	}
	if s.forcedAsync[id.String()] {
		return nil, true
	}
	if s.sizeThreshold <= 0 {
		return nil, false
	}

	location, err := s.resolver.Resolve(ctx, resolver.KindBill, id, session)
	if err != nil {
		// Let the synchronous path surface NotFound with its proper code.
		return nil, false
	}
	if location.ContentLength > s.sizeThreshold {
		if s.logger != nil {
			s.logger.Printf(
				"dispatching async bill=%s content_length=%d threshold=%d",
				id, location.ContentLength, s.sizeThreshold,
			)
		}
		return nil, true
	}
	return &location, false
}

// buildWithLock collapses concurrent cache misses for one key onto a single
// upstream build. Lock losers poll the cache briefly for the winner's
// write; if it never lands they build redundantly rather than fail.
func (s *AnalysisService) buildWithLock(
	ctx context.Context,
	id domain.BillIdentifier,
	session string,
	key string,
	location *resolver.DocumentLocation,
) (*domain.AnalysisResult, *AnalysisError) {
	if s.cache.TryLock(ctx, key, s.lockTTL) {
		defer s.cache.Unlock(ctx, key)

		result, err := s.Build(ctx, id, session, location)
		if err != nil {
			return nil, err
		}
		s.cache.Put(ctx, key, result, s.cacheTTL)
		return result, nil
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, analysisErr(domain.ErrCodeTimeout, "request cancelled", ctx.Err())
		case <-time.After(200 * time.Millisecond):
		}
		if cached, ok := s.cache.Get(ctx, key); ok {
			cached.CacheHit = true
			return cached, nil
		}
	}

	// The lock holder is still working; accept the redundant build.
	result, err := s.Build(ctx, id, session, location)
	if err != nil {
		return nil, err
	}
	s.cache.Put(ctx, key, result, s.cacheTTL)
	return result, nil
}

// Build runs the pipeline against the upstream host without touching the
// cache. The worker uses it directly; cache population for async runs
// happens when the poller first observes the finished job.
func (s *AnalysisService) Build(
	ctx context.Context,
	id domain.BillIdentifier,
	session string,
	knownLocation *resolver.DocumentLocation,
) (*domain.AnalysisResult, *AnalysisError) {
	var location resolver.DocumentLocation
	if knownLocation != nil {
		location = *knownLocation
	} else {
		resolved, err := s.resolver.Resolve(ctx, resolver.KindBill, id, session)
		if err != nil {
			return nil, &AnalysisError{
				Code:    domain.ErrCodeBillNotFound,
				Message: "Bill not found",
				Result: &domain.AnalysisResult{
					BillNumber: id.String(),
					Session:    session,
					Exists:     false,
					Success:    false,
					Timestamp:  time.Now().UTC(),
				},
			}
		}
		location = resolved
	}

	billText, err := s.fetcher.FetchAndExtract(ctx, resolver.KindBill, location)
	if err != nil {
		return nil, s.classifyFetchError(id, session, err)
	}
	if billText == "" {
		return nil, analysisErr(domain.ErrCodePDFExtractionFailed, "Could not extract bill text", nil)
	}

	result := &domain.AnalysisResult{
		BillNumber: id.String(),
		BillType:   string(id.Type),
		Session:    session,
		BillURL:    location.URL,
		BillText:   domain.TruncateExcerpt(billText),
		Exists:     true,
		Success:    true,
		Timestamp:  time.Now().UTC(),
	}

	if IsFiscallyRelevant(billText) {
		s.attachFiscalNote(ctx, id, session, result)
	}
	return result, nil
}

// attachFiscalNote is best effort: a missing or unfetchable fiscal note
// never fails the bill analysis.
func (s *AnalysisService) attachFiscalNote(
	ctx context.Context,
	id domain.BillIdentifier,
	session string,
	result *domain.AnalysisResult,
) {
	location, err := s.resolver.Resolve(ctx, resolver.KindFiscalNote, id, session)
	if err != nil {
		return
	}

	fiscalText, err := s.fetcher.FetchAndExtract(ctx, resolver.KindFiscalNote, location)
	if err != nil {
		if s.logger != nil && !errors.Is(err, fetcher.ErrDocumentNotFound) {
			s.logger.Printf("fiscal note fetch failed bill=%s err=%v", id, err)
		}
		return
	}
	if fiscalText == "" {
		return
	}

	summary := s.summarizer.SummarizeFiscalNote(ctx, fiscalText)
	fiscalURL := location.URL
	result.FiscalNoteURL = &fiscalURL
	result.FiscalNoteSummary = summary.SummaryText
	result.TotalFiscalImpact = summary.TotalImpact
	result.HasFiscalNote = true
}

func (s *AnalysisService) classifyFetchError(
	id domain.BillIdentifier,
	session string,
	err error,
) *AnalysisError {
	switch {
	case errors.Is(err, fetcher.ErrDocumentNotFound):
		return &AnalysisError{
			Code:    domain.ErrCodeBillNotFound,
			Message: "Bill not found",
			Result: &domain.AnalysisResult{
				BillNumber: id.String(),
				Session:    session,
				Exists:     false,
				Success:    false,
				Timestamp:  time.Now().UTC(),
			},
			Err: err,
		}
	case errors.Is(err, context.DeadlineExceeded):
		return analysisErr(domain.ErrCodeTimeout, "bill fetch timed out", err)
	default:
		var statusErr *fetcher.StatusError
		if errors.As(err, &statusErr) {
			return analysisErr(domain.ErrCodeBillFetchFailed, "Failed to fetch bill", err)
		}
		return analysisErr(domain.ErrCodeBillFetchError, "bill fetch error", err)
	}
}
