package services

import (
	"strings"
	"testing"

	"github.com/realworld-go/conduit-be/internal/models"
)

type fixture struct {
	users    *UserService
	articles *ArticleService
	comments *CommentService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := newTestDB(t)
	return fixture{
		users:    NewUserService(db),
		articles: NewArticleService(db),
		comments: NewCommentService(db),
	}
}

func (f fixture) register(t *testing.T, username string) models.User {
	t.Helper()
	user, err := f.users.Register(username, username+"@example.com", "pw")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func (f fixture) create(t *testing.T, authorID, title string, tags ...string) ArticleWithAuthor {
	t.Helper()
	a, err := f.articles.Create(authorID, title, "desc", "body", tags)
	if err != nil {
		t.Fatalf("create article %q: %v", title, err)
	}
	return a
}

func TestCreateArticleSlug(t *testing.T) {
	f := newFixture(t)
	author := f.register(t, "jake")

	a := f.create(t, author.ID, "How to Train Your Dragon", "dragons", "training")
	if a.Slug != "how-to-train-your-dragon" {
		t.Fatalf("unexpected slug %q", a.Slug)
	}
	if a.Author.Username != "jake" {
		t.Fatalf("unexpected author %q", a.Author.Username)
	}
	if len(a.TagList) != 2 || a.TagList[0] != "dragons" || a.TagList[1] != "training" {
		t.Fatalf("tag order not preserved: %v", a.TagList)
	}
}

func TestSlugCollisionGetsSuffix(t *testing.T) {
	f := newFixture(t)
	author := f.register(t, "jake")

	first := f.create(t, author.ID, "Same Title")
	second := f.create(t, author.ID, "Same Title")

	if first.Slug == second.Slug {
		t.Fatalf("expected distinct slugs, both %q", first.Slug)
	}
	if !strings.HasPrefix(second.Slug, "same-title-") {
		t.Fatalf("expected suffixed slug, got %q", second.Slug)
	}
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	author := f.register(t, "jake")
	for _, title := range []string{"one", "two", "three", "four", "five"} {
		f.create(t, author.ID, title)
	}

	articles, total, err := f.articles.List(ArticleFilter{Limit: 1, Offset: 0})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	// Newest first.
	if articles[0].Title != "five" {
		t.Fatalf("expected newest article first, got %q", articles[0].Title)
	}

	articles, _, err = f.articles.List(ArticleFilter{Limit: 20, Offset: 3})
	if err != nil {
		t.Fatalf("list with offset: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles at offset 3, got %d", len(articles))
	}
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	jake := f.register(t, "jake")
	emma := f.register(t, "emma")

	dragons := f.create(t, jake.ID, "Dragons", "dragons")
	f.create(t, emma.ID, "Cats", "cats")

	byTag, _, err := f.articles.List(ArticleFilter{Tag: "dragons", Limit: 20})
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if len(byTag) != 1 || byTag[0].ID != dragons.ID {
		t.Fatalf("tag filter returned %d articles", len(byTag))
	}

	byAuthor, total, err := f.articles.List(ArticleFilter{Author: "emma", Limit: 20})
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	if total != 1 || byAuthor[0].Author.Username != "emma" {
		t.Fatalf("author filter returned %d articles", total)
	}

	// An unknown author drops the filter.
	all, total, err := f.articles.List(ArticleFilter{Author: "ghost", Limit: 20})
	if err != nil {
		t.Fatalf("list by unknown author: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("unknown author should not filter, got %d", total)
	}

	// An unknown favoriter yields an empty result.
	_, total, err = f.articles.List(ArticleFilter{FavoritedBy: "ghost", Limit: 20})
	if err != nil {
		t.Fatalf("list by unknown favoriter: %v", err)
	}
	if total != 0 {
		t.Fatalf("unknown favoriter should return nothing, got %d", total)
	}

	if _, err := f.articles.Favorite(dragons.Slug, emma.ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	favs, total, err := f.articles.List(ArticleFilter{FavoritedBy: "emma", Limit: 20})
	if err != nil {
		t.Fatalf("list by favoriter: %v", err)
	}
	if total != 1 || favs[0].ID != dragons.ID {
		t.Fatalf("favorited filter returned %d articles", total)
	}
}

func TestFavoriteIdempotentAndRecounted(t *testing.T) {
	f := newFixture(t)
	author := f.register(t, "jake")
	fan := f.register(t, "emma")
	a := f.create(t, author.ID, "Dragons")

	for i := 0; i < 2; i++ {
		got, err := f.articles.Favorite(a.Slug, fan.ID)
		if err != nil {
			t.Fatalf("favorite (attempt %d): %v", i+1, err)
		}
		if got.FavoritesCount != 1 {
			t.Fatalf("expected count 1 after favorite, got %d", got.FavoritesCount)
		}
	}

	fanUser, err := f.users.GetByID(fan.ID)
	if err != nil {
		t.Fatalf("get fan: %v", err)
	}
	if len(fanUser.Favorites) != 1 || !fanUser.HasFavorited(a.ID) {
		t.Fatalf("unexpected favorite set %v", fanUser.Favorites)
	}

	for i := 0; i < 2; i++ {
		got, err := f.articles.Unfavorite(a.Slug, fan.ID)
		if err != nil {
			t.Fatalf("unfavorite (attempt %d): %v", i+1, err)
		}
		if got.FavoritesCount != 0 {
			t.Fatalf("expected count 0 after unfavorite, got %d", got.FavoritesCount)
		}
	}
}

func TestRecountAllFavorites(t *testing.T) {
	f := newFixture(t)
	author := f.register(t, "jake")
	fan := f.register(t, "emma")
	a := f.create(t, author.ID, "Dragons")
	if _, err := f.articles.Favorite(a.Slug, fan.ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}

	if _, err := f.articles.RecountAllFavorites(); err != nil {
		t.Fatalf("recount: %v", err)
	}
	got, err := f.articles.GetBySlug(a.Slug)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FavoritesCount != 1 {
		t.Fatalf("expected count 1 after recount, got %d", got.FavoritesCount)
	}
}

func TestUpdateArticleOwnership(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "jake")
	stranger := f.register(t, "emma")
	a := f.create(t, owner.ID, "Dragons")

	if _, err := f.articles.Update(a.Slug, stranger.ID, ArticleUpdate{Title: strptr("Stolen")}); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := f.articles.Delete(a.Slug, stranger.ID); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}

	updated, err := f.articles.Update(a.Slug, owner.ID, ArticleUpdate{Body: strptr("new body")})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Body != "new body" || updated.Title != "Dragons" {
		t.Fatalf("partial update wrong: %+v", updated.Article)
	}
	// Slug is stable across updates.
	if updated.Slug != a.Slug {
		t.Fatalf("slug changed on update: %q", updated.Slug)
	}
}

func TestDeleteArticleCascadesComments(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "jake")
	a := f.create(t, owner.ID, "Dragons")

	if _, err := f.comments.Create(a.Slug, owner.ID, "first!"); err != nil {
		t.Fatalf("comment: %v", err)
	}

	if err := f.articles.Delete(a.Slug, owner.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.articles.GetBySlug(a.Slug); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := f.comments.ListForArticle(a.Slug); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound listing comments of deleted article, got %v", err)
	}
}

func TestFeed(t *testing.T) {
	f := newFixture(t)
	reader := f.register(t, "reader")
	followed := f.register(t, "followed")
	ignored := f.register(t, "ignored")

	f.create(t, followed.ID, "From Followed")
	f.create(t, ignored.ID, "From Ignored")

	if _, err := f.users.Follow(reader.ID, "followed"); err != nil {
		t.Fatalf("follow: %v", err)
	}

	feed, total, err := f.articles.Feed(reader.ID, 20, 0)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if total != 1 || len(feed) != 1 || feed[0].Title != "From Followed" {
		t.Fatalf("unexpected feed: total=%d articles=%v", total, feed)
	}
}

func TestListTagsDistinct(t *testing.T) {
	f := newFixture(t)
	author := f.register(t, "jake")
	f.create(t, author.ID, "One", "dragons", "training")
	f.create(t, author.ID, "Two", "dragons", "cats")

	tags, err := f.articles.ListTags()
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	want := []string{"cats", "dragons", "training"}
	if len(tags) != len(want) {
		t.Fatalf("expected %v, got %v", want, tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tags)
		}
	}
}
