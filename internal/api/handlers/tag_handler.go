package handlers

import (
	"net/http"

	"github.com/realworld-go/conduit-be/internal/services"
	"github.com/rs/zerolog/log"
)

// TagHandler handles the tag listing endpoint.
type TagHandler struct {
	responder
	articles services.ArticleServiceProvider
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(articles services.ArticleServiceProvider, production bool) *TagHandler {
	return &TagHandler{responder: responder{production: production}, articles: articles}
}

// List returns the distinct tag values across all articles.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.articles.ListTags()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tags")
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
}
