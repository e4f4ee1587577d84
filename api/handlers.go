package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/poiesic/lostfound/core"
	"github.com/poiesic/lostfound/match"
	"github.com/poiesic/lostfound/report"
	"github.com/poiesic/lostfound/storage"
)

// Handler holds the API route handlers.
type Handler struct {
	reporter *report.Reporter
	logger   *slog.Logger
}

// NewHandler creates a Handler. A nil logger uses slog.Default().
func NewHandler(reporter *report.Reporter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{reporter: reporter, logger: logger.With("component", "api")}
}

// statusFor maps a workflow error onto an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidItem),
		errors.Is(err, core.ErrInvalidUser),
		errors.Is(err, core.ErrInvalidItemType),
		errors.Is(err, match.ErrMalformedQuery):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, report.ErrNotOwner):
		return http.StatusForbidden, "item belongs to another user"
	case errors.Is(err, report.ErrUnknownUser):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, storage.ErrDuplicateKey):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, match.ErrEmbeddingUnavailable),
		errors.Is(err, match.ErrCandidateLookup):
		return http.StatusServiceUnavailable, "matching unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", "err", err)
	}
	writeJSON(w, status, errorBody(msg))
}

// Live handles GET /health/live.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	user, err := h.reporter.RegisterUser(r.Context(), req.Name, req.Email)
	if err != nil {
		h.writeError(w, "register user", err)
		return
	}
	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

// ReportItem handles POST /items.
//
// The item is stored even when matching cannot run; the response then carries
// the stored item, an error message and status 503.
func (h *Handler) ReportItem(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	itemType, err := core.ParseItemType(req.Type)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	outcome, err := h.reporter.Report(r.Context(), report.Request{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Type:        itemType,
		OwnerId:     userFromContext(r.Context()),
		ImageRef:    req.ImageRef,
	})
	if err != nil && outcome == nil {
		h.writeError(w, "report item", err)
		return
	}

	resp := newReportResponse(outcome)
	status := http.StatusCreated
	if err != nil {
		h.logger.Error("report stored without matches", "item", outcome.Item.Id, "err", err)
		status, resp.Error = statusFor(err)
	}
	writeJSON(w, status, resp)
}

// ResolveItem handles DELETE /items/{id}.
func (h *Handler) ResolveItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid item id"))
		return
	}
	if err := h.reporter.Resolve(r.Context(), userFromContext(r.Context()), core.ID(id)); err != nil {
		h.writeError(w, "resolve item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dashboard handles GET /dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.reporter.Dashboard(r.Context(), userFromContext(r.Context()))
	if err != nil {
		h.writeError(w, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, newDashboardResponse(d))
}

// MarkRead handles POST /notifications/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req MarkReadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	updated, err := h.reporter.MarkRead(r.Context(), userFromContext(r.Context()), req.IDs...)
	if err != nil {
		h.writeError(w, "mark read", err)
		return
	}
	writeJSON(w, http.StatusOK, MarkReadResponse{Updated: updated})
}

// Match handles POST /match. Nothing is stored and nobody is notified.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	itemType, err := core.ParseItemType(req.Type)
	if err != nil {
		h.writeError(w, "match", fmt.Errorf("%w: %w", match.ErrMalformedQuery, err))
		return
	}

	matches, err := h.reporter.Match(r.Context(), match.Query{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Type:        itemType,
	})
	if err != nil {
		h.writeError(w, "match", err)
		return
	}
	writeJSON(w, http.StatusOK, MatchListResponse{Matches: newMatchResponses(matches)})
}
