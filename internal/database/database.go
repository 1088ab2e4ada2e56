package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
// Timestamps are stored as unix seconds.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		bio TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS follows (
		follower_id TEXT NOT NULL,
		followed_id TEXT NOT NULL,
		PRIMARY KEY (follower_id, followed_id),
		FOREIGN KEY (follower_id) REFERENCES users(id),
		FOREIGN KEY (followed_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS articles (
		id TEXT NOT NULL PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		body TEXT NOT NULL,
		author_id TEXT NOT NULL,
		favorites_count INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (author_id) REFERENCES users(id)
	);
	CREATE INDEX IF NOT EXISTS idx_articles_author ON articles(author_id);
	CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at DESC);

	CREATE TABLE IF NOT EXISTS article_tags (
		article_id TEXT NOT NULL,
		tag TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (article_id, tag),
		FOREIGN KEY (article_id) REFERENCES articles(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_article_tags_tag ON article_tags(tag);

	CREATE TABLE IF NOT EXISTS favorites (
		user_id TEXT NOT NULL,
		article_id TEXT NOT NULL,
		PRIMARY KEY (user_id, article_id),
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (article_id) REFERENCES articles(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS comments (
		id TEXT NOT NULL PRIMARY KEY,
		article_id TEXT NOT NULL,
		author_id TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (article_id) REFERENCES articles(id) ON DELETE CASCADE,
		FOREIGN KEY (author_id) REFERENCES users(id)
	);
	CREATE INDEX IF NOT EXISTS idx_comments_article ON comments(article_id);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
