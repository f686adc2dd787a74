package api

import "net/http"

func Router(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", h.Health)

	mux.HandleFunc("POST /v1/posts", h.CreatePost)
	mux.HandleFunc("GET /v1/posts", h.ListPosts)
	mux.HandleFunc("POST /v1/posts/{id}/cancel", h.CancelPost)

	mux.HandleFunc("GET /v1/scheduler/status", h.SchedulerStatus)
	mux.HandleFunc("POST /v1/scheduler/reload", h.SchedulerReload)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("postqueue"))
	})

	return mux
}
