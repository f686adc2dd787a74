package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"postqueue/internal/model"
	"postqueue/internal/scheduler"
	"postqueue/internal/service"
	"postqueue/internal/timeutil"
)

const defaultListLimit = 200

// Reloader re-arms timers for rows still in the scheduled state.
type Reloader interface {
	LoadPending(ctx context.Context, src scheduler.PendingSource) (int, error)
	Pending() int
}

type Handler struct {
	posts   *service.PostService
	sched   Reloader
	pending scheduler.PendingSource
}

func NewHandler(posts *service.PostService, sched Reloader, pending scheduler.PendingSource) *Handler {
	return &Handler{posts: posts, sched: sched, pending: pending}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

type createRequest struct {
	Text            string `json:"text"`
	LocalDatetime   string `json:"localDatetime"`
	TzOffsetMinutes int    `json:"tzOffsetMinutes"`
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	post, err := h.posts.Create(r.Context(), req.Text, req.LocalDatetime, req.TzOffsetMinutes)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]any{"post": post})
	case errors.Is(err, service.ErrDeliveryDelayed):
		writeJSON(w, http.StatusAccepted, map[string]any{
			"post":    post,
			"warning": "stored, but delivery is delayed until the next reload or restart",
		})
	case errors.Is(err, service.ErrEmptyText),
		errors.Is(err, service.ErrTextTooLong),
		errors.Is(err, timeutil.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) CancelPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	switch err := h.posts.Cancel(r.Context(), id); {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"cancelled": true, "id": id})
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrNotCancellable):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), defaultListLimit)
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	items, err := h.posts.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"pending": h.sched.Pending()})
}

func (h *Handler) SchedulerReload(w http.ResponseWriter, r *http.Request) {
	armed, err := h.sched.LoadPending(r.Context(), h.pending)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"armed": armed})
}

func parseInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
