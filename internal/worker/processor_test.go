package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atxlegis/bill-analyzer/internal/cache"
	"github.com/atxlegis/bill-analyzer/internal/domain"
	"github.com/atxlegis/bill-analyzer/internal/fetcher"
	"github.com/atxlegis/bill-analyzer/internal/repository"
	"github.com/atxlegis/bill-analyzer/internal/resolver"
	"github.com/atxlegis/bill-analyzer/internal/service"
	"github.com/atxlegis/bill-analyzer/internal/summarizer"
)

type passthroughExtractor struct{}

func (passthroughExtractor) ExtractText(data []byte) string { return string(data) }

func newTestProcessor(t *testing.T, docs map[string]string) (*Processor, *repository.MemoryJobsRepository) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := docs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	analysis := service.NewAnalysisService(service.AnalysisConfig{DefaultSession: "89R"}, service.AnalysisDependencies{
		Resolver: resolver.New(resolver.Config{
			BaseURL:      server.URL,
			ProbeTimeout: 2 * time.Second,
			HTTPClient:   server.Client(),
		}),
		Fetcher: fetcher.New(fetcher.Config{
			HTTPClient: server.Client(),
			Extractor:  passthroughExtractor{},
		}),
		Summarizer: summarizer.NewFiscalSummarizer(nil, nil),
		Cache:      cache.NewMemoryCache(10),
	})

	repo := repository.NewMemoryJobsRepository()
	return NewProcessor(nil, repo, analysis, nil), repo
}

func queueJob(t *testing.T, repo *repository.MemoryJobsRepository, billNumber string) *domain.Job {
	t.Helper()
	now := time.Now().UTC()
	job := &domain.Job{
		ID:         "job-" + billNumber,
		BillNumber: billNumber,
		Session:    "89R",
		Status:     domain.JobStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	return job
}

func TestProcessMessageFinishesJob(t *testing.T) {
	processor, repo := newTestProcessor(t, map[string]string{
		"/89R/pdf/TX89RHB00150FIL.pdf": "An act relating to agency rulemaking procedure.",
	})
	job := queueJob(t, repo, "HB00150")

	err := processor.processMessage(context.Background(), domain.QueueMessage{
		JobID:      job.ID,
		BillNumber: job.BillNumber,
		Session:    job.Session,
	})
	if err != nil {
		t.Fatalf("processMessage: %v", err)
	}

	stored, err := repo.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if stored.Status != domain.JobStatusFinished {
		t.Fatalf("status = %s, want finished", stored.Status)
	}
	var result domain.AnalysisResult
	if err := json.Unmarshal(stored.Result, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Success || result.BillNumber != "HB00150" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestProcessMessageBillNotFoundIsValidOutcome(t *testing.T) {
	processor, repo := newTestProcessor(t, nil)
	job := queueJob(t, repo, "SB09999")

	err := processor.processMessage(context.Background(), domain.QueueMessage{
		JobID:      job.ID,
		BillNumber: job.BillNumber,
		Session:    job.Session,
	})
	if err != nil {
		t.Fatalf("processMessage: %v", err)
	}

	stored, _ := repo.GetJob(context.Background(), job.ID)
	if stored.Status != domain.JobStatusFinished {
		t.Fatalf("status = %s, want finished", stored.Status)
	}
	var result domain.AnalysisResult
	if err := json.Unmarshal(stored.Result, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Exists || result.Success {
		t.Fatalf("not-found result must be exists=false success=false, got %+v", result)
	}
	if result.ErrorMessage == "" {
		t.Fatalf("not-found result must carry an error message")
	}
}

func TestProcessMessagePipelineFailureMarksJobFailed(t *testing.T) {
	processor, repo := newTestProcessor(t, map[string]string{
		// Whitespace-only text reads as an undecodable PDF.
		"/89R/pdf/TX89RHB00001FIL.pdf": "   \n  ",
	})
	job := queueJob(t, repo, "HB00001")

	err := processor.processMessage(context.Background(), domain.QueueMessage{
		JobID:      job.ID,
		BillNumber: job.BillNumber,
		Session:    job.Session,
	})
	if err != nil {
		t.Fatalf("pipeline failure must be recorded, not returned: %v", err)
	}

	stored, _ := repo.GetJob(context.Background(), job.ID)
	if stored.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed", stored.Status)
	}
	if stored.ErrorMessage == "" {
		t.Fatalf("failed job must record the error text")
	}
}

func TestProcessMessageSkipsTerminalJob(t *testing.T) {
	processor, repo := newTestProcessor(t, nil)
	job := queueJob(t, repo, "HB00150")
	job.Status = domain.JobStatusFinished
	if err := repo.UpdateJob(context.Background(), job); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	before, _ := repo.GetJob(context.Background(), job.ID)

	err := processor.processMessage(context.Background(), domain.QueueMessage{JobID: job.ID})
	if err != nil {
		t.Fatalf("processMessage: %v", err)
	}
	after, _ := repo.GetJob(context.Background(), job.ID)
	if after.Status != before.Status || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("terminal job must not be touched on redelivery")
	}
}

func TestProcessMessageUnknownJobIsInfrastructureError(t *testing.T) {
	processor, _ := newTestProcessor(t, nil)

	err := processor.processMessage(context.Background(), domain.QueueMessage{JobID: "missing"})
	if err == nil {
		t.Fatalf("unknown job must surface as an error for redelivery")
	}
}
