package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/realworld-go/conduit-be/internal/models"
)

// CommentWithAuthor pairs a comment with its author record for projection.
type CommentWithAuthor struct {
	models.Comment
	Author models.User
}

// CommentServiceProvider defines the interface for comment services.
type CommentServiceProvider interface {
	ListForArticle(slug string) ([]CommentWithAuthor, error)
	Create(slug, authorID, body string) (CommentWithAuthor, error)
	Delete(slug, commentID, userID string) error
}

// CommentService provides business logic for article comments.
type CommentService struct {
	db *sql.DB
}

// NewCommentService creates a new CommentService.
func NewCommentService(db *sql.DB) *CommentService {
	return &CommentService{db: db}
}

// ListForArticle returns an article's comments, newest first.
func (s *CommentService) ListForArticle(slug string) ([]CommentWithAuthor, error) {
	articleID, err := s.articleIDForSlug(slug)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT c.id, c.article_id, c.author_id, c.body, c.created_at, c.updated_at,
			u.id, u.username, u.email, u.bio, u.image
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.article_id = ?
		ORDER BY c.created_at DESC, c.rowid DESC`, articleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []CommentWithAuthor{}
	for rows.Next() {
		var c CommentWithAuthor
		var createdAt, updatedAt int64
		err := rows.Scan(
			&c.ID, &c.ArticleID, &c.AuthorID, &c.Body, &createdAt, &updatedAt,
			&c.Author.ID, &c.Author.Username, &c.Author.Email, &c.Author.Bio, &c.Author.Image,
		)
		if err != nil {
			return nil, err
		}
		c.CreatedAt = time.Unix(createdAt, 0).UTC()
		c.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Create attaches a new comment to the article with the given slug.
func (s *CommentService) Create(slug, authorID, body string) (CommentWithAuthor, error) {
	articleID, err := s.articleIDForSlug(slug)
	if err != nil {
		return CommentWithAuthor{}, err
	}

	now := time.Now().UTC()
	c := CommentWithAuthor{
		Comment: models.Comment{
			ID:        uuid.New().String(),
			ArticleID: articleID,
			AuthorID:  authorID,
			Body:      body,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	_, err = s.db.Exec(
		"INSERT INTO comments(id, article_id, author_id, body, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)",
		c.ID, c.ArticleID, c.AuthorID, c.Body, now.Unix(), now.Unix(),
	)
	if err != nil {
		return CommentWithAuthor{}, err
	}

	row := s.db.QueryRow("SELECT id, username, email, bio, image FROM users WHERE id = ?", authorID)
	err = row.Scan(&c.Author.ID, &c.Author.Username, &c.Author.Email, &c.Author.Bio, &c.Author.Image)
	if err != nil {
		return CommentWithAuthor{}, err
	}
	return c, nil
}

// Delete removes a comment. Only the comment's author may delete it; anyone
// else is rejected with ErrForbidden.
func (s *CommentService) Delete(slug, commentID, userID string) error {
	articleID, err := s.articleIDForSlug(slug)
	if err != nil {
		return err
	}

	var authorID string
	row := s.db.QueryRow("SELECT author_id FROM comments WHERE id = ? AND article_id = ?", commentID, articleID)
	if err := row.Scan(&authorID); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	if authorID != userID {
		return ErrForbidden
	}

	_, err = s.db.Exec("DELETE FROM comments WHERE id = ?", commentID)
	return err
}

func (s *CommentService) articleIDForSlug(slug string) (string, error) {
	var id string
	err := s.db.QueryRow("SELECT id FROM articles WHERE slug = ?", slug).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", err
	}
	return id, nil
}
