package httputil

import (
	"encoding/json"
	"net/http"
)

// RespondJSON writes a JSON response with the given status code. The
// payload is marshaled first so an encoding failure cannot produce a
// partial body after headers are sent.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// errorBody is the error envelope every endpoint uses.
type errorBody struct {
	Error string `json:"error"`
}

// RespondError writes a JSON error response of the form
// {"error": "..."}.
func RespondError(w http.ResponseWriter, status int, detail string) {
	payload, err := json.Marshal(errorBody{Error: detail})
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondBytes streams a binary artifact as a download.
func RespondBytes(w http.ResponseWriter, mimeType, filename string, data []byte) {
	w.Header().Set("Content-Type", mimeType)
	if filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
