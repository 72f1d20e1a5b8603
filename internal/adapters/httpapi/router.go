// Package httpapi exposes the proposal service over a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"propdesk/internal/archive"
	"propdesk/internal/assist"
	"propdesk/internal/core"
	"propdesk/pkg/domain"
)

const maxBodySize = 4 << 20

// Archives is the archive surface the API serves.
type Archives interface {
	Export(ctx context.Context) (archive.Entry, error)
	List(ctx context.Context) ([]archive.Entry, error)
	Restore(ctx context.Context, key string) (core.RepairReport, error)
}

// Deps collects what the router needs. Archives, Assist and Metrics are
// optional.
type Deps struct {
	Service  *core.Service
	Archives Archives
	Assist   assist.Suggester
	Metrics  http.Handler
	Logger   core.Logger
}

type handler struct {
	svc      *core.Service
	archives Archives
	assist   assist.Suggester
	logger   core.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(d Deps) http.Handler {
	h := &handler{svc: d.Service, archives: d.Archives, assist: d.Assist, logger: d.Logger}
	if h.logger == nil {
		h.logger = core.NopLogger()
	}
	if h.assist == nil {
		h.assist = assist.Disabled{}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/healthz", h.handleHealth)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/snapshot", h.handleSnapshot)
		api.Get("/dashboard", h.handleDashboard)
		api.Get("/propositions/{id}", h.handleProposition)
		api.Put("/propositions/{id}/budget", h.handleReplaceBudget)

		api.Post("/records/{kind}", h.handleCreateRecord)
		api.Get("/records/{kind}/{id}", h.handleRecord)
		api.Put("/records/{kind}/{id}", h.handleUpdateRecord)
		api.Delete("/records/{kind}/{id}", h.handleDeleteRecord)
		api.Patch("/budget-lines/{id}", h.handleEditBudgetLine)

		api.Post("/history/undo", h.handleUndo)
		api.Post("/history/redo", h.handleRedo)

		api.Post("/assist", h.handleAssist)

		api.Get("/archives", h.handleListArchives)
		api.Post("/archives", h.handleExportArchive)
		api.Post("/archives/restore", h.handleRestoreArchive)
	})
	return r
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": h.svc.Snapshot().Total()})
}

func (h *handler) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Snapshot())
}

func (h *handler) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Dashboard())
}

func (h *handler) handleProposition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	detail, ok := h.svc.PropositionDetail(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("proposition %q not found", id)})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleRecord returns one record as the field map the create and update
// endpoints accept.
func (h *handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	t, err := domain.ParseEntityType(chi.URLParam(r, "kind"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	rec, ok := h.svc.Snapshot().Find(t, id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("%s %q not found", t, id)})
		return
	}
	fields, err := core.EncodeRecord(rec)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fields)
}

func (h *handler) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	t, err := domain.ParseEntityType(chi.URLParam(r, "kind"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var fields domain.Fields
	if !decodeBody(w, r, &fields) {
		return
	}
	res, err := h.svc.Add(r.Context(), t, fields)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handler) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	t, err := domain.ParseEntityType(chi.URLParam(r, "kind"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var fields domain.Fields
	if !decodeBody(w, r, &fields) {
		return
	}
	if fields == nil {
		fields = domain.Fields{}
	}
	fields["id"] = chi.URLParam(r, "id")
	res, err := h.svc.Update(r.Context(), t, fields)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	t, err := domain.ParseEntityType(chi.URLParam(r, "kind"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	res, err := h.svc.Delete(r.Context(), t, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type budgetEditRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

func (h *handler) handleEditBudgetLine(w http.ResponseWriter, r *http.Request) {
	var req budgetEditRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.svc.EditBudgetLine(r.Context(), chi.URLParam(r, "id"), req.Field, req.Value)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type budgetReplaceRequest struct {
	Lines []domain.BudgetLine `json:"lines"`
}

func (h *handler) handleReplaceBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetReplaceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.svc.ReplacePropositionBudget(r.Context(), chi.URLParam(r, "id"), req.Lines)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) handleUndo(w http.ResponseWriter, r *http.Request) {
	h.travel(r.Context(), w, h.svc.Undo)
}

func (h *handler) handleRedo(w http.ResponseWriter, r *http.Request) {
	h.travel(r.Context(), w, h.svc.Redo)
}

func (h *handler) travel(ctx context.Context, w http.ResponseWriter, fn func(context.Context) (bool, error)) {
	changed, err := fn(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

type assistRequest struct {
	Field    string         `json:"field"`
	Form     map[string]any `json:"form"`
	Previous string         `json:"previous"`
}

type assistResponse struct {
	Value string `json:"value"`
	Error string `json:"error,omitempty"`
}

// handleAssist always returns a value: the suggestion, or the previous
// value when the backend failed. The status code tells the two apart.
func (h *handler) handleAssist(w http.ResponseWriter, r *http.Request) {
	var req assistRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Field == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "field is required"})
		return
	}
	value, err := assist.Resolve(r.Context(), h.assist, req.Field, req.Form, req.Previous)
	if err != nil {
		status := statusFor(err)
		h.logger.Warn("assist suggestion failed", "field", req.Field, "status", status, "error", err)
		writeJSON(w, status, assistResponse{Value: value, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, assistResponse{Value: value})
}

func (h *handler) handleListArchives(w http.ResponseWriter, r *http.Request) {
	if !h.archivesEnabled(w) {
		return
	}
	entries, err := h.archives.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []archive.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *handler) handleExportArchive(w http.ResponseWriter, r *http.Request) {
	if !h.archivesEnabled(w) {
		return
	}
	entry, err := h.archives.Export(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

type restoreRequest struct {
	Key string `json:"key"`
}

func (h *handler) handleRestoreArchive(w http.ResponseWriter, r *http.Request) {
	if !h.archivesEnabled(w) {
		return
	}
	var req restoreRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	report, err := h.archives.Restore(r.Context(), req.Key)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handler) archivesEnabled(w http.ResponseWriter) bool {
	if h.archives != nil {
		return true
	}
	writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "archives are not configured"})
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		msg := "invalid payload"
		if errors.Is(err, io.EOF) {
			msg = "empty payload"
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
