package models

import "time"

// Comment belongs to one article and one author; both links are immutable.
type Comment struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"-"`
	AuthorID  string    `json:"-"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentView is the public projection of a comment.
type CommentView struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Author    Profile   `json:"author"`
}

// NewCommentView projects a comment for the given viewer (nil = anonymous).
func NewCommentView(c Comment, author User, viewer *User) CommentView {
	return CommentView{
		ID:        c.ID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Author:    NewProfile(author, viewer),
	}
}
