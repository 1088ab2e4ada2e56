package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/realworld-go/conduit-be/internal/models"
)

// ArticleFilter narrows the article listing. Zero values mean "no filter".
type ArticleFilter struct {
	Tag         string
	Author      string // author username
	FavoritedBy string // username whose favorites to list
	Limit       int
	Offset      int
}

// ArticleUpdate carries a partial article update. Nil fields are left
// untouched; a non-nil TagList replaces the tag list wholesale.
type ArticleUpdate struct {
	Title       *string
	Description *string
	Body        *string
	TagList     []string
}

// ArticleWithAuthor pairs an article with its author record for projection.
type ArticleWithAuthor struct {
	models.Article
	Author models.User
}

// ArticleServiceProvider defines the interface for article services.
type ArticleServiceProvider interface {
	List(f ArticleFilter) ([]ArticleWithAuthor, int, error)
	Feed(userID string, limit, offset int) ([]ArticleWithAuthor, int, error)
	GetBySlug(slug string) (ArticleWithAuthor, error)
	Create(authorID, title, description, body string, tags []string) (ArticleWithAuthor, error)
	Update(slug, userID string, upd ArticleUpdate) (ArticleWithAuthor, error)
	Delete(slug, userID string) error
	Favorite(slug, userID string) (ArticleWithAuthor, error)
	Unfavorite(slug, userID string) (ArticleWithAuthor, error)
	ListTags() ([]string, error)
	RecountAllFavorites() (int64, error)
}

// ArticleService provides business logic for articles, favorites and tags.
type ArticleService struct {
	db *sql.DB
}

// NewArticleService creates a new ArticleService.
func NewArticleService(db *sql.DB) *ArticleService {
	return &ArticleService{db: db}
}

const articleColumns = `a.id, a.slug, a.title, a.description, a.body, a.author_id, a.favorites_count,
	a.created_at, a.updated_at, u.id, u.username, u.email, u.bio, u.image`

// List returns a page of articles matching the filter, newest first, plus the
// total match count.
//
// An unknown author username drops that filter; an unknown favorited username
// yields an empty result.
func (s *ArticleService) List(f ArticleFilter) ([]ArticleWithAuthor, int, error) {
	where := "1=1"
	var args []interface{}

	if f.Tag != "" {
		where += " AND a.id IN (SELECT article_id FROM article_tags WHERE tag = ?)"
		args = append(args, f.Tag)
	}
	if f.Author != "" {
		var authorID string
		err := s.db.QueryRow("SELECT id FROM users WHERE username = ?", f.Author).Scan(&authorID)
		switch err {
		case nil:
			where += " AND a.author_id = ?"
			args = append(args, authorID)
		case sql.ErrNoRows:
			// unknown author: filter is dropped
		default:
			return nil, 0, err
		}
	}
	if f.FavoritedBy != "" {
		var favoriterID string
		err := s.db.QueryRow("SELECT id FROM users WHERE username = ?", f.FavoritedBy).Scan(&favoriterID)
		switch err {
		case nil:
			where += " AND a.id IN (SELECT article_id FROM favorites WHERE user_id = ?)"
			args = append(args, favoriterID)
		case sql.ErrNoRows:
			where += " AND 1=0"
		default:
			return nil, 0, err
		}
	}

	return s.page(where, args, f.Limit, f.Offset)
}

// Feed returns a page of articles authored by users the given user follows,
// newest first, plus the total count.
func (s *ArticleService) Feed(userID string, limit, offset int) ([]ArticleWithAuthor, int, error) {
	where := "a.author_id IN (SELECT followed_id FROM follows WHERE follower_id = ?)"
	return s.page(where, []interface{}{userID}, limit, offset)
}

// GetBySlug retrieves a single article with its author.
func (s *ArticleService) GetBySlug(slug string) (ArticleWithAuthor, error) {
	row := s.db.QueryRow(
		"SELECT "+articleColumns+" FROM articles a JOIN users u ON u.id = a.author_id WHERE a.slug = ?", slug,
	)
	a, err := scanArticle(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return ArticleWithAuthor{}, ErrNotFound
		}
		return ArticleWithAuthor{}, err
	}
	if err := s.loadTags(&a); err != nil {
		return ArticleWithAuthor{}, err
	}
	return a, nil
}

// Create persists a new article owned by authorID. The slug is derived from
// the title; on collision a short random suffix is appended.
func (s *ArticleService) Create(authorID, title, description, body string, tags []string) (ArticleWithAuthor, error) {
	now := time.Now().UTC()
	id := uuid.New().String()
	base := slugify(title)
	slug := base

	for attempt := 0; ; attempt++ {
		_, err := s.db.Exec(
			"INSERT INTO articles(id, slug, title, description, body, author_id, favorites_count, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, 0, ?, ?)",
			id, slug, title, description, body, authorID, now.Unix(), now.Unix(),
		)
		if err == nil {
			break
		}
		if isUniqueViolation(err, "articles.slug") {
			if attempt >= 5 {
				return ArticleWithAuthor{}, ErrDuplicateSlug
			}
			slug = base + "-" + slugSuffix()
			continue
		}
		return ArticleWithAuthor{}, err
	}

	if err := s.replaceTags(id, tags); err != nil {
		return ArticleWithAuthor{}, err
	}
	return s.GetBySlug(slug)
}

// Update applies a partial update. Only the owner may update; anyone else is
// rejected with ErrForbidden.
func (s *ArticleService) Update(slug, userID string, upd ArticleUpdate) (ArticleWithAuthor, error) {
	a, err := s.GetBySlug(slug)
	if err != nil {
		return ArticleWithAuthor{}, err
	}
	if a.AuthorID != userID {
		return ArticleWithAuthor{}, ErrForbidden
	}

	if upd.Title != nil {
		a.Title = *upd.Title
	}
	if upd.Description != nil {
		a.Description = *upd.Description
	}
	if upd.Body != nil {
		a.Body = *upd.Body
	}

	_, err = s.db.Exec(
		"UPDATE articles SET title = ?, description = ?, body = ?, updated_at = ? WHERE id = ?",
		a.Title, a.Description, a.Body, time.Now().UTC().Unix(), a.ID,
	)
	if err != nil {
		return ArticleWithAuthor{}, err
	}

	if upd.TagList != nil {
		if err := s.replaceTags(a.ID, upd.TagList); err != nil {
			return ArticleWithAuthor{}, err
		}
	}
	return s.GetBySlug(slug)
}

// Delete removes an article. Comments, tags and favorite entries go with it.
// Only the owner may delete; anyone else is rejected with ErrForbidden.
func (s *ArticleService) Delete(slug, userID string) error {
	a, err := s.GetBySlug(slug)
	if err != nil {
		return err
	}
	if a.AuthorID != userID {
		return ErrForbidden
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM comments WHERE article_id = ?",
		"DELETE FROM favorites WHERE article_id = ?",
		"DELETE FROM article_tags WHERE article_id = ?",
		"DELETE FROM articles WHERE id = ?",
	} {
		if _, err := tx.Exec(stmt, a.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Favorite adds the article to the user's favorite set and recomputes the
// favorites counter. Favoriting an already-favorited article is a no-op.
func (s *ArticleService) Favorite(slug, userID string) (ArticleWithAuthor, error) {
	a, err := s.GetBySlug(slug)
	if err != nil {
		return ArticleWithAuthor{}, err
	}
	_, err = s.db.Exec("INSERT OR IGNORE INTO favorites(user_id, article_id) VALUES(?, ?)", userID, a.ID)
	if err != nil {
		return ArticleWithAuthor{}, err
	}
	if err := s.recountFavorites(a.ID); err != nil {
		return ArticleWithAuthor{}, err
	}
	return s.GetBySlug(slug)
}

// Unfavorite removes the article from the user's favorite set and recomputes
// the favorites counter. Unfavoriting a non-favorited article is a no-op.
func (s *ArticleService) Unfavorite(slug, userID string) (ArticleWithAuthor, error) {
	a, err := s.GetBySlug(slug)
	if err != nil {
		return ArticleWithAuthor{}, err
	}
	_, err = s.db.Exec("DELETE FROM favorites WHERE user_id = ? AND article_id = ?", userID, a.ID)
	if err != nil {
		return ArticleWithAuthor{}, err
	}
	if err := s.recountFavorites(a.ID); err != nil {
		return ArticleWithAuthor{}, err
	}
	return s.GetBySlug(slug)
}

// ListTags returns the distinct tag values across all articles.
func (s *ArticleService) ListTags() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT tag FROM article_tags ORDER BY tag")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// RecountAllFavorites recomputes every article's favorites counter from the
// favorites table and returns the number of rows touched.
func (s *ArticleService) RecountAllFavorites() (int64, error) {
	res, err := s.db.Exec(
		"UPDATE articles SET favorites_count = (SELECT COUNT(*) FROM favorites f WHERE f.article_id = articles.id)",
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *ArticleService) recountFavorites(articleID string) error {
	_, err := s.db.Exec(
		"UPDATE articles SET favorites_count = (SELECT COUNT(*) FROM favorites WHERE article_id = ?) WHERE id = ?",
		articleID, articleID,
	)
	return err
}

func (s *ArticleService) page(where string, args []interface{}, limit, offset int) ([]ArticleWithAuthor, int, error) {
	var total int
	countSQL := "SELECT COUNT(*) FROM articles a WHERE " + where
	if err := s.db.QueryRow(countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM articles a JOIN users u ON u.id = a.author_id WHERE %s ORDER BY a.created_at DESC, a.rowid DESC LIMIT ? OFFSET ?",
		articleColumns, where,
	)
	rows, err := s.db.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	articles := []ArticleWithAuthor{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range articles {
		if err := s.loadTags(&articles[i]); err != nil {
			return nil, 0, err
		}
	}
	return articles, total, nil
}

// replaceTags rewrites an article's tag list, preserving order.
func (s *ArticleService) replaceTags(articleID string, tags []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM article_tags WHERE article_id = ?", articleID); err != nil {
		return err
	}
	for i, tag := range tags {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO article_tags(article_id, tag, position) VALUES(?, ?, ?)",
			articleID, tag, i,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *ArticleService) loadTags(a *ArticleWithAuthor) error {
	rows, err := s.db.Query("SELECT tag FROM article_tags WHERE article_id = ? ORDER BY position", a.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	a.TagList = []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return err
		}
		a.TagList = append(a.TagList, tag)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (ArticleWithAuthor, error) {
	var a ArticleWithAuthor
	var createdAt, updatedAt int64
	err := row.Scan(
		&a.ID, &a.Slug, &a.Title, &a.Description, &a.Body, &a.AuthorID, &a.FavoritesCount,
		&createdAt, &updatedAt,
		&a.Author.ID, &a.Author.Username, &a.Author.Email, &a.Author.Bio, &a.Author.Image,
	)
	if err != nil {
		return ArticleWithAuthor{}, err
	}
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	a.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return a, nil
}
