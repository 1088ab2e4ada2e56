package services

import "testing"

func TestCommentLifecycle(t *testing.T) {
	f := newFixture(t)
	author := f.register(t, "jake")
	commenter := f.register(t, "emma")
	a := f.create(t, author.ID, "Dragons")

	first, err := f.comments.Create(a.Slug, commenter.ID, "first!")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if first.Author.Username != "emma" {
		t.Fatalf("unexpected comment author %q", first.Author.Username)
	}
	second, err := f.comments.Create(a.Slug, author.ID, "thanks for reading")
	if err != nil {
		t.Fatalf("create second comment: %v", err)
	}

	comments, err := f.comments.ListForArticle(a.Slug)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	// Newest first.
	if comments[0].ID != second.ID || comments[1].ID != first.ID {
		t.Fatalf("comments not newest-first: %v, %v", comments[0].Body, comments[1].Body)
	}
}

func TestCommentOnMissingArticle(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "jake")

	if _, err := f.comments.Create("no-such-slug", user.ID, "hello"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.comments.ListForArticle("no-such-slug"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCommentOnlyByAuthor(t *testing.T) {
	f := newFixture(t)
	author := f.register(t, "jake")
	commenter := f.register(t, "emma")
	a := f.create(t, author.ID, "Dragons")

	c, err := f.comments.Create(a.Slug, commenter.ID, "first!")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	// Not even the article owner may delete someone else's comment.
	if err := f.comments.Delete(a.Slug, c.ID, author.ID); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	comments, err := f.comments.ListForArticle(a.Slug)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("comment should remain after forbidden delete, got %d", len(comments))
	}

	if err := f.comments.Delete(a.Slug, c.ID, commenter.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	comments, err = f.comments.ListForArticle(a.Slug)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 0 {
		t.Fatalf("expected no comments after delete, got %d", len(comments))
	}

	if err := f.comments.Delete(a.Slug, c.ID, commenter.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for deleted comment, got %v", err)
	}
}
