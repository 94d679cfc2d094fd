package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/curesight/triage-platform/internal/archive"
	"github.com/curesight/triage-platform/internal/auth"
	"github.com/curesight/triage-platform/internal/notes"
	"github.com/curesight/triage-platform/internal/policy"
	"github.com/curesight/triage-platform/internal/queries"
	"github.com/curesight/triage-platform/pkg/logging"
)

const defaultLogsLimit = 20

// PolicyStore is the admin-facing policy surface.
type PolicyStore interface {
	LoadRules(ctx context.Context) (policy.RuleSet, error)
	SaveRules(ctx context.Context, rs policy.RuleSet) error
	LoadContent(ctx context.Context) (policy.ContentSet, error)
	SaveContent(ctx context.Context, cs policy.ContentSet) error
}

// RecordLister serves the admin logs view.
type RecordLister interface {
	ListRecent(ctx context.Context, limit int) ([]queries.Record, error)
}

// NoteStore persists clinician notes. May be absent when no relational
// database is configured.
type NoteStore interface {
	Add(ctx context.Context, n *notes.Note) error
	ListForQuery(ctx context.Context, queryID string) ([]notes.Note, error)
}

// LogExporter pushes recent records to cold storage. May be absent when no
// archive bucket is configured.
type LogExporter interface {
	ExportRecent(ctx context.Context, limit int) (*archive.ExportResult, error)
}

// AdminHandler covers login, policy editing, the logs view, notes and
// archive export.
type AdminHandler struct {
	auth     auth.Authenticator
	policies PolicyStore
	records  RecordLister
	notes    NoteStore
	exporter LogExporter
	logger   *logging.Logger
}

func NewAdminHandler(a auth.Authenticator, policies PolicyStore, records RecordLister, noteStore NoteStore, exporter LogExporter, logger *logging.Logger) *AdminHandler {
	if a == nil {
		panic("handlers: authenticator cannot be nil")
	}
	if policies == nil {
		panic("handlers: policy store cannot be nil")
	}
	if records == nil {
		panic("handlers: record lister cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminHandler{
		auth:     a,
		policies: policies,
		records:  records,
		notes:    noteStore,
		exporter: exporter,
		logger:   logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	token, err := h.auth.Issue(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GET /api/admin/rules
func (h *AdminHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	rs, err := h.policies.LoadRules(r.Context())
	if err != nil {
		h.logger.Error("load rules failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load rules")
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

// POST /api/admin/rules
func (h *AdminHandler) UpdateRules(w http.ResponseWriter, r *http.Request) {
	var rs policy.RuleSet
	if err := json.NewDecoder(r.Body).Decode(&rs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if err := h.policies.SaveRules(r.Context(), rs); err != nil {
		if errors.Is(err, policy.ErrInvalidShape) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("save rules failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save rules")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// GET /api/admin/content
func (h *AdminHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	cs, err := h.policies.LoadContent(r.Context())
	if err != nil {
		h.logger.Error("load content failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load content")
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

// POST /api/admin/content
func (h *AdminHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	var cs policy.ContentSet
	if err := json.NewDecoder(r.Body).Decode(&cs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if err := h.policies.SaveContent(r.Context(), cs); err != nil {
		if errors.Is(err, policy.ErrInvalidShape) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("save content failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save content")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// GET /api/admin/logs?limit=N
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	items, err := h.records.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list records failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list query records")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type addNoteRequest struct {
	QueryID string `json:"query_id"`
	Note    string `json:"note"`
	Author  string `json:"author"`
}

// POST /api/admin/notes
func (h *AdminHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	if h.notes == nil {
		writeError(w, http.StatusServiceUnavailable, "notes storage is not configured")
		return
	}

	var req addNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	req.QueryID = strings.TrimSpace(req.QueryID)
	req.Note = strings.TrimSpace(req.Note)
	if req.QueryID == "" || req.Note == "" {
		writeError(w, http.StatusBadRequest, "query_id and note are required")
		return
	}

	author := req.Author
	if author == "" {
		author, _ = auth.PrincipalFromContext(r.Context())
	}

	n := &notes.Note{QueryID: req.QueryID, Note: req.Note, Author: author}
	if err := h.notes.Add(r.Context(), n); err != nil {
		h.logger.Error("add note failed", "error", err, "query_id", req.QueryID)
		writeError(w, http.StatusInternalServerError, "failed to save note")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"note_id": n.ID})
}

// GET /api/admin/notes/{queryID}
func (h *AdminHandler) ListNotes(w http.ResponseWriter, r *http.Request, queryID string) {
	if h.notes == nil {
		writeError(w, http.StatusServiceUnavailable, "notes storage is not configured")
		return
	}
	queryID = strings.TrimSpace(queryID)
	if queryID == "" {
		writeError(w, http.StatusBadRequest, "query_id is required")
		return
	}

	items, err := h.notes.ListForQuery(r.Context(), queryID)
	if err != nil {
		h.logger.Error("list notes failed", "error", err, "query_id", queryID)
		writeError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type exportRequest struct {
	Limit int `json:"limit"`
}

// POST /api/admin/export
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "archive export is not configured")
		return
	}

	req := exportRequest{Limit: 100}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
			return
		}
		if req.Limit <= 0 {
			req.Limit = 100
		}
	}

	result, err := h.exporter.ExportRecent(r.Context(), req.Limit)
	if err != nil {
		h.logger.Error("archive export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "archive export failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
