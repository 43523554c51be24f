package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/atxlegis/bill-analyzer/internal/cache"
	"github.com/atxlegis/bill-analyzer/internal/domain"
	"github.com/atxlegis/bill-analyzer/internal/service"
)

// Analyze runs the bill analysis pipeline synchronously, or enqueues a
// background job when the caller asks for async mode or the documents
// are large enough that a blocking request would time out.
func (a *API) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	var payload analyzeRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_PAYLOAD", "request body must be a JSON object")
		return
	}

	outcome, err := a.analysis.Process(r.Context(), service.Request{
		BillNumber:   payload.BillNumber,
		Session:      payload.Session,
		ForceRefresh: payload.ForceRefresh,
		UseAsync:     payload.UseAsync,
	})
	if err != nil {
		var analysisError *service.AnalysisError
		if errors.As(err, &analysisError) {
			writeAnalysisError(w, r, analysisError)
			return
		}
		if a.logger != nil {
			a.logger.Printf("analyze %q failed: %v", payload.BillNumber, err)
		}
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "analysis failed")
		return
	}

	if outcome.Job != nil {
		w.Header().Set("Retry-After", "2")
		writeJSON(w, http.StatusAccepted, map[string]any{
			"job_id":     outcome.Job.ID,
			"status":     outcome.Job.Status,
			"status_url": fmt.Sprintf("/v1/jobs/%s", outcome.Job.ID),
		})
		return
	}
	writeJSON(w, http.StatusOK, outcome.Result)
}

// InvalidateCache drops the cached analysis for one bill so the next
// request rebuilds it. DELETE /v1/bills/{bill_number}/cache?session=89R
func (a *API) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/bills/")
	rawBill := strings.TrimSuffix(rest, "/cache")
	if rawBill == rest || rawBill == "" {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "unknown route")
		return
	}

	billID, err := domain.ParseBillIdentifier(rawBill)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, domain.ErrCodeInvalidBillFormat,
			fmt.Sprintf("invalid bill number format: %s", rawBill))
		return
	}

	session := r.URL.Query().Get("session")
	if session == "" {
		session = a.defaultSession
	}

	key := cache.Key(session, billID)
	if err := a.cacheStore.Invalidate(r.Context(), key); err != nil {
		writeError(w, r, http.StatusBadGateway, "CACHE_ERROR", "cache invalidation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bill_number": billID.String(),
		"session":     session,
		"invalidated": true,
	})
}
