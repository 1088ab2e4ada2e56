package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/realworld-go/conduit-be/internal/models"
	"github.com/realworld-go/conduit-be/internal/services"
	"github.com/rs/zerolog/log"
)

// ArticleHandler handles article CRUD, the feed and favoriting.
type ArticleHandler struct {
	responder
	articles services.ArticleServiceProvider
	users    services.UserServiceProvider
	validate *validator.Validate
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(articles services.ArticleServiceProvider, users services.UserServiceProvider, production bool) *ArticleHandler {
	return &ArticleHandler{
		responder: responder{production: production},
		articles:  articles,
		users:     users,
		validate:  validator.New(),
	}
}

type createArticlePayload struct {
	Article struct {
		Title       string   `json:"title" validate:"required"`
		Description string   `json:"description" validate:"required"`
		Body        string   `json:"body" validate:"required"`
		TagList     []string `json:"tagList" validate:"required,dive,min=1"`
	} `json:"article"`
}

type updateArticlePayload struct {
	Article struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Body        *string  `json:"body"`
		TagList     []string `json:"tagList" validate:"omitempty,dive,min=1"`
	} `json:"article"`
}

// List returns a filtered page of articles, projected for the viewer.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := paginationParams(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "pagination", err.Error())
		return
	}

	q := r.URL.Query()
	articles, total, err := h.articles.List(services.ArticleFilter{
		Tag:         q.Get("tag"),
		Author:      q.Get("author"),
		FavoritedBy: q.Get("favorited"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to list articles")
		h.writeServiceError(w, err)
		return
	}

	viewer := viewerFromRequest(r, h.users)
	h.writeArticleList(w, articles, total, viewer)
}

// Feed returns a page of articles authored by users the caller follows.
func (h *ArticleHandler) Feed(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := paginationParams(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "pagination", err.Error())
		return
	}

	viewer := viewerFromRequest(r, h.users)
	if viewer == nil {
		h.writeError(w, http.StatusUnauthorized, "token", "missing or invalid")
		return
	}

	articles, total, err := h.articles.Feed(viewer.ID, limit, offset)
	if err != nil {
		log.Error().Err(err).Str("user_id", viewer.ID).Msg("Failed to build feed")
		h.writeServiceError(w, err)
		return
	}
	h.writeArticleList(w, articles, total, viewer)
}

// Get returns a single article by slug, projected for the viewer.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	article, err := h.articles.GetBySlug(slug)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	viewer := viewerFromRequest(r, h.users)
	h.writeArticle(w, article, viewer)
}

// Create persists a new article owned by the caller.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload createArticlePayload
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

	article, err := h.articles.Create(
		viewer.ID,
		payload.Article.Title, payload.Article.Description, payload.Article.Body,
		payload.Article.TagList,
	)
	if err != nil {
		log.Error().Err(err).Str("user_id", viewer.ID).Msg("Failed to create article")
		h.writeServiceError(w, err)
		return
	}
	h.writeArticle(w, article, viewer)
}

// Update applies a partial update to an article the caller owns.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var payload updateArticlePayload
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

	article, err := h.articles.Update(slug, viewer.ID, services.ArticleUpdate{
		Title:       payload.Article.Title,
		Description: payload.Article.Description,
		Body:        payload.Article.Body,
		TagList:     payload.Article.TagList,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeArticle(w, article, viewer)
}

// Delete removes an article the caller owns, cascading its comments.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	viewer := viewerFromRequest(r, h.users)
	if viewer == nil {
		h.writeError(w, http.StatusUnauthorized, "token", "missing or invalid")
		return
	}

	if err := h.articles.Delete(slug, viewer.ID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Favorite adds the article to the caller's favorite set.
func (h *ArticleHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	h.setFavorited(w, r, true)
}

// Unfavorite removes the article from the caller's favorite set.
func (h *ArticleHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	h.setFavorited(w, r, false)
}

func (h *ArticleHandler) setFavorited(w http.ResponseWriter, r *http.Request, favorite bool) {
	slug := chi.URLParam(r, "slug")

	viewer := viewerFromRequest(r, h.users)
	if viewer == nil {
		h.writeError(w, http.StatusUnauthorized, "token", "missing or invalid")
		return
	}

	var article services.ArticleWithAuthor
	var err error
	if favorite {
		article, err = h.articles.Favorite(slug, viewer.ID)
	} else {
		article, err = h.articles.Unfavorite(slug, viewer.ID)
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	// Reload so the projection sees the updated favorite set.
	updated, err := h.users.GetByID(viewer.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeArticle(w, article, &updated)
}

func (h *ArticleHandler) writeArticle(w http.ResponseWriter, a services.ArticleWithAuthor, viewer *models.User) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"article": models.NewArticleView(a.Article, a.Author, viewer),
	})
}

func (h *ArticleHandler) writeArticleList(w http.ResponseWriter, articles []services.ArticleWithAuthor, total int, viewer *models.User) {
	views := make([]models.ArticleView, 0, len(articles))
	for _, a := range articles {
		views = append(views, models.NewArticleView(a.Article, a.Author, viewer))
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"articles":      views,
		"articlesCount": total,
	})
}
