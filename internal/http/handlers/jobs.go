package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/atxlegis/bill-analyzer/internal/cache"
	"github.com/atxlegis/bill-analyzer/internal/domain"
	"github.com/atxlegis/bill-analyzer/internal/repository"
)

type jobResponse struct {
	JobID      string          `json:"job_id"`
	Status     string          `json:"status"`
	BillNumber string          `json:"bill_number"`
	Session    string          `json:"session"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// JobStatus reports an async job's state. When the poller first observes a
// finished job it copies the result into the analysis cache so later
// synchronous requests for the same bill hit instead of rebuilding.
func (a *API) JobStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/v1/jobs/")
	if jobID == "" || strings.Contains(jobID, "/") {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "unknown route")
		return
	}

	job, err := a.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "JOB_NOT_FOUND", "no job with that id")
			return
		}
		if a.logger != nil {
			a.logger.Printf("job lookup %s failed: %v", jobID, err)
		}
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "job lookup failed")
		return
	}

	if job.Status == domain.JobStatusFinished && len(job.Result) > 0 {
		a.backfillCache(r, job.Session, job.Result)
	}

	writeJSON(w, http.StatusOK, jobResponse{
		JobID:      job.ID,
		Status:     string(job.Status),
		BillNumber: job.BillNumber,
		Session:    job.Session,
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
		Result:     job.Result,
		Error:      job.ErrorMessage,
	})
}

func (a *API) backfillCache(r *http.Request, session string, raw json.RawMessage) {
	var result domain.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return
	}
	if !result.Success || !result.Exists {
		return
	}
	billID, err := domain.ParseBillIdentifier(result.BillNumber)
	if err != nil {
		return
	}
	key := cache.Key(session, billID)
	if _, ok := a.cacheStore.Get(r.Context(), key); ok {
		return
	}
	a.cacheStore.Put(r.Context(), key, &result, a.cacheTTL)
}
