package handlers

import (
	"net/http"
	"time"
)

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	cacheStatus := "ok"
	if err := a.cacheStore.Ping(r.Context()); err != nil {
		cacheStatus = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"cache":     cacheStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
