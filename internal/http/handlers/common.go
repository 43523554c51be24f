package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/atxlegis/bill-analyzer/internal/cache"
	"github.com/atxlegis/bill-analyzer/internal/domain"
	"github.com/atxlegis/bill-analyzer/internal/http/middleware"
	"github.com/atxlegis/bill-analyzer/internal/service"
)

var errInvalidPayload = errors.New("invalid payload")

type API struct {
	analysis       *service.AnalysisService
	jobs           *service.JobsService
	cacheStore     cache.AnalysisCache
	cacheTTL       time.Duration
	defaultSession string
	logger         *log.Logger
}

type APIConfig struct {
	Analysis       *service.AnalysisService
	Jobs           *service.JobsService
	Cache          cache.AnalysisCache
	CacheTTL       time.Duration
	DefaultSession string
	Logger         *log.Logger
}

func NewAPI(cfg APIConfig) *API {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultTTL
	}
	return &API{
		analysis:       cfg.Analysis,
		jobs:           cfg.Jobs,
		cacheStore:     cfg.Cache,
		cacheTTL:       cfg.CacheTTL,
		defaultSession: cfg.DefaultSession,
		logger:         cfg.Logger,
	}
}

type analyzeRequest struct {
	BillNumber   string `json:"bill_number"`
	Session      string `json:"session,omitempty"`
	ForceRefresh bool   `json:"force_refresh,omitempty"`
	UseAsync     bool   `json:"use_async,omitempty"`
}

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func writeJSON(w http.ResponseWriter, statusCode int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	payload := errorPayload{RequestID: middleware.GetRequestID(r.Context())}
	payload.Error.Code = code
	payload.Error.Message = message
	writeJSON(w, statusCode, payload)
}

// writeAnalysisError maps pipeline error codes onto HTTP statuses. A
// BILL_NOT_FOUND failure carries the exists:false result shape the CRM
// client expects alongside the error code.
func writeAnalysisError(w http.ResponseWriter, r *http.Request, analysisError *service.AnalysisError) {
	statusCode := statusForCode(analysisError.Code)

	if analysisError.Result != nil {
		writeJSON(w, statusCode, map[string]any{
			"bill_number": analysisError.Result.BillNumber,
			"session":     analysisError.Result.Session,
			"exists":      analysisError.Result.Exists,
			"success":     analysisError.Result.Success,
			"error":       analysisError.Message,
			"error_code":  analysisError.Code,
			"request_id":  middleware.GetRequestID(r.Context()),
		})
		return
	}
	writeError(w, r, statusCode, analysisError.Code, analysisError.Message)
}

func statusForCode(code string) int {
	switch code {
	case domain.ErrCodeMissingBillNumber, domain.ErrCodeInvalidBillFormat:
		return http.StatusBadRequest
	case domain.ErrCodeBillNotFound:
		return http.StatusNotFound
	case domain.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case domain.ErrCodeBillFetchFailed, domain.ErrCodeBillFetchError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, value any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(value); err != nil {
		return errInvalidPayload
	}
	return nil
}
