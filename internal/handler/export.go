package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/httputil"
	"inkwell/internal/service/export"
)

// ExportHandler handles HTTP requests for project export
type ExportHandler struct {
	exporter *export.Service
	logger   *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *export.Service, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{exporter: exportService, logger: logger}
}

// Download assembles the project in the requested format and streams
// the artifact as an attachment.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	format, err := export.ParseFormat(r.PathValue("format"))
	if err != nil {
		handleError(w, err)
		return
	}

	result, err := h.exporter.Export(r.Context(), projectID, userID, format)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondBytes(w, result.MimeType, result.Filename, result.Data)
}
