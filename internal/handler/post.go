package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/devconnector/internal/service"
)

// PostHandler serves the post feed and the like/unlike/delete interactions.
type PostHandler struct {
	svc    *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(svc *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{svc: svc, logger: logger}
}

// HandleList returns every post, newest first.
//
// HTTP: GET /api/posts
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.List(r.Context())
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

// HandleGetByID returns a single post.
//
// HTTP: GET /api/posts/{id}
func (h *PostHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// HandleCreate publishes a post as the caller.
//
// HTTP: POST /api/posts   (requires auth)
// REQUEST BODY: {"text":"..."}
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var in service.CreatePostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.svc.Create(r.Context(), p, in)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// HandleDelete removes a post the caller authored.
//
// HTTP: DELETE /api/posts/{id}   (requires auth)
// RESPONSE: {"success":true}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		fail(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleLike adds the caller to the post's likes.
//
// HTTP: POST /api/posts/like/{id}   (requires auth)
// RESPONSE: the updated post.
func (h *PostHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	post, err := h.svc.Like(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// HandleUnlike removes the caller from the post's likes.
//
// HTTP: POST /api/posts/unlike/{id}   (requires auth)
// RESPONSE: the updated post.
func (h *PostHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	post, err := h.svc.Unlike(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}
