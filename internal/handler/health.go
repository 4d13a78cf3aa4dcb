package handler

import (
	"net/http"

	"inkwell/internal/httputil"
)

// Health reports liveness
func Health(w http.ResponseWriter, _ *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
