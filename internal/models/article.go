package models

import "time"

// Article is a published post. AuthorID is immutable after creation.
// FavoritesCount is derived from the favorites table and recomputed after
// every favorite/unfavorite rather than incremented in place.
type Article struct {
	ID             string    `json:"id"`
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Body           string    `json:"body"`
	TagList        []string  `json:"tagList"`
	AuthorID       string    `json:"-"`
	FavoritesCount int       `json:"favoritesCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ArticleView is the public projection of an article. Favorited and the
// author's Following flag depend on who is looking.
type ArticleView struct {
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Body           string    `json:"body"`
	TagList        []string  `json:"tagList"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Favorited      bool      `json:"favorited"`
	FavoritesCount int       `json:"favoritesCount"`
	Author         Profile   `json:"author"`
}

// NewArticleView projects an article for the given viewer (nil = anonymous).
func NewArticleView(a Article, author User, viewer *User) ArticleView {
	tags := a.TagList
	if tags == nil {
		tags = []string{}
	}
	return ArticleView{
		Slug:           a.Slug,
		Title:          a.Title,
		Description:    a.Description,
		Body:           a.Body,
		TagList:        tags,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Favorited:      viewer != nil && viewer.HasFavorited(a.ID),
		FavoritesCount: a.FavoritesCount,
		Author:         NewProfile(author, viewer),
	}
}
