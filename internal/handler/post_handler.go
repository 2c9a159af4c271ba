package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/inkwell/internal/domain"
	"github.com/prn-tf/inkwell/internal/service"
	"github.com/prn-tf/inkwell/internal/token"
	"github.com/prn-tf/inkwell/internal/transport"
)

// PostHandler handles post CRUD.
type PostHandler struct {
	posts  *service.PostService
	tokens *token.Service
	logger zerolog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *service.PostService, tokens *token.Service, logger zerolog.Logger) *PostHandler {
	return &PostHandler{
		posts:  posts,
		tokens: tokens,
		logger: logger.With().Str("handler", "post").Logger(),
	}
}

// RegisterRoutes registers post routes. Reads are public; mutations
// require a valid token.
func (h *PostHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/posts", h.handleList)
	r.Get("/api/posts/{id}", h.handleGet)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.tokens))
		r.Post("/api/posts", h.handleCreate)
		r.Put("/api/posts/{id}", h.handleUpdate)
		r.Delete("/api/posts/{id}", h.handleDelete)
	})
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// listPostsResponse echoes the effective window alongside the page.
type listPostsResponse struct {
	Posts  []*domain.Post `json:"posts"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func (h *PostHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	post, err := h.posts.Create(r.Context(), claims.UserID, service.PostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	post, err := h.posts.Update(r.Context(), id, claims.UserID, service.PostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.posts.Delete(r.Context(), id, claims.UserID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleList serves the post listing. Oversized limits are clamped to the
// shared cap; the gRPC surface rejects an oversized page_size instead, since
// page-based callers compute offsets from the size they asked for.
func (h *PostHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit, err := parseQueryInt(r, "limit", 0)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	offset, err := parseQueryInt(r, "offset", 0)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	limit, offset = transport.NormalizeLimitOffset(limit, offset)

	out, err := h.posts.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, listPostsResponse{
		Posts:  out.Posts,
		Total:  out.Total,
		Limit:  out.Limit,
		Offset: out.Offset,
	})
}

// parseID extracts the {id} path parameter.
func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, domain.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

// parseQueryInt parses an optional integer query parameter.
func parseQueryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return n, nil
}
