package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/loanbook/pkg/response"
)

// maxImportBytes bounds the size of an uploaded import document
const maxImportBytes = 32 << 20

// ImportResponse summarizes an accepted import
type ImportResponse struct {
	People              int `json:"people"`
	SplitExpenses       int `json:"splitExpenses"`
	SharedLinks         int `json:"sharedLinks"`
	SharedSplitExpenses int `json:"sharedSplitExpenses"`
}

// Handler handles HTTP requests for export, import and snapshots
type Handler struct {
	service *Service
}

// NewHandler creates a new backup handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for backup endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/export", h.Export)
	r.Get("/export.xlsx", h.ExportWorkbook)
	r.Post("/import", h.Import)

	r.Get("/snapshots", h.ListSnapshots)
	r.Post("/snapshots", h.SaveSnapshot)
	r.Post("/snapshots/restore", h.RestoreSnapshot)

	return r
}

// Export handles GET /backup/export
// @Summary      Download the export document
// @Description  The raw document, not wrapped in the response envelope, so it can be imported back as is
// @Tags         backup
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} ledger.Snapshot
// @Router       /backup/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Export()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=loanbook-%s.json", snap.ExportDate.Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		slog.Error("Failed to write export", "error", err)
	}
}

// ExportWorkbook handles GET /backup/export.xlsx
// @Summary      Download a spreadsheet of people and transactions
// @Tags         backup
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200 {file} file
// @Router       /backup/export.xlsx [get]
func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=loanbook.xlsx")
	if err := h.service.WriteWorkbook(w); err != nil {
		slog.Error("Failed to write workbook", "error", err)
		response.InternalError(w, "Failed to write workbook")
	}
}

// Import handles POST /backup/import
// @Summary      Import an export document
// @Description  Replaces the whole ledger. A document missing any collection is rejected and nothing changes.
// @Tags         backup
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ledger.Snapshot true "Export document"
// @Success      200 {object} response.APIResponse{data=ImportResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /backup/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		response.BadRequest(w, "Failed to read import document")
		return
	}

	snap, err := h.service.Import(data)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_IMPORT", err.Error())
		return
	}
	response.JSON(w, http.StatusOK, ImportResponse{
		People:              len(snap.People),
		SplitExpenses:       len(snap.SplitExpenses),
		SharedLinks:         len(snap.SharedLinks),
		SharedSplitExpenses: len(snap.SharedSplitExpenses),
	})
}

// ListSnapshots handles GET /backup/snapshots
// @Summary      List stored snapshots
// @Tags         backup
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Maximum number of snapshots" default(20)
// @Success      200 {object} response.APIResponse{data=[]Record}
// @Failure      503 {object} response.APIResponse
// @Router       /backup/snapshots [get]
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	records, err := h.service.Snapshots(r.Context(), limit)
	if err != nil {
		snapshotError(w, err)
		return
	}
	response.JSONWithMeta(w, http.StatusOK, records, &response.Meta{Total: len(records)})
}

// SaveSnapshot handles POST /backup/snapshots
// @Summary      Store the current state in the database
// @Tags         backup
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} response.APIResponse{data=Record}
// @Failure      503 {object} response.APIResponse
// @Router       /backup/snapshots [post]
func (h *Handler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.SaveSnapshot(r.Context(), ReasonManual)
	if err != nil {
		snapshotError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, rec)
}

// RestoreSnapshot handles POST /backup/snapshots/restore
// @Summary      Restore the most recent snapshot
// @Tags         backup
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=Record}
// @Failure      404 {object} response.APIResponse
// @Failure      503 {object} response.APIResponse
// @Router       /backup/snapshots/restore [post]
func (h *Handler) RestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.RestoreLatest(r.Context())
	if err != nil {
		snapshotError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, rec)
}

func snapshotError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSnapshotsDisabled):
		response.ServiceUnavailable(w, err.Error())
	case errors.Is(err, ErrNoSnapshot):
		response.NotFound(w, err.Error())
	default:
		slog.Error("Snapshot operation failed", "error", err)
		response.InternalError(w, "Snapshot operation failed")
	}
}
