package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/realworld-go/conduit-be/internal/models"
	"github.com/realworld-go/conduit-be/internal/services"
	"github.com/rs/zerolog/log"
)

// CommentHandler handles comment listing, creation and deletion.
type CommentHandler struct {
	responder
	comments services.CommentServiceProvider
	users    services.UserServiceProvider
	validate *validator.Validate
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(comments services.CommentServiceProvider, users services.UserServiceProvider, production bool) *CommentHandler {
	return &CommentHandler{
		responder: responder{production: production},
		comments:  comments,
		users:     users,
		validate:  validator.New(),
	}
}

type createCommentPayload struct {
	Comment struct {
		Body string `json:"body" validate:"required"`
	} `json:"comment"`
}

// List returns an article's comments newest first, projected for the viewer.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	comments, err := h.comments.ListForArticle(slug)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	viewer := viewerFromRequest(r, h.users)
	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, models.NewCommentView(c.Comment, c.Author, viewer))
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"comments": views})
}

// Create attaches a new comment by the caller to the article.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var payload createCommentPayload
	if err := decodeBody(r, &payload); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "body", "is invalid")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		h.writeValidationError(w, err)
		return
	}

	viewer := viewerFromRequest(r, h.users)
	if viewer == nil {
		h.writeError(w, http.StatusUnauthorized, "token", "missing or invalid")
		return
	}

	comment, err := h.comments.Create(slug, viewer.ID, payload.Comment.Body)
	if err != nil {
		log.Warn().Err(err).Str("slug", slug).Msg("Failed to create comment")
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"comment": models.NewCommentView(comment.Comment, comment.Author, viewer),
	})
}

// Delete removes a comment authored by the caller.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	commentID := chi.URLParam(r, "commentID")

	viewer := viewerFromRequest(r, h.users)
	if viewer == nil {
		h.writeError(w, http.StatusUnauthorized, "token", "missing or invalid")
		return
	}

	if err := h.comments.Delete(slug, commentID, viewer.ID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
