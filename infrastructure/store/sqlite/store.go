// ABOUTME: SQLite-backed store for subscribed feeds and their posts
// ABOUTME: Provides a file-based post index that survives application restarts and serves search

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rss-reader-app/core/domain"
	"rss-reader-app/core/interfaces"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
	CREATE TABLE IF NOT EXISTS feeds (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL UNIQUE,
		link TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		last_updated INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT NOT NULL,
		feed_id TEXT NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL,
		image_url TEXT NOT NULL DEFAULT '',
		published INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (feed_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_posts_published ON posts(published DESC);
`

// Store implements interfaces.Store using SQLite
type Store struct {
	db       *sql.DB
	filePath string
	logger   interfaces.Logger
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger for slow or failed statements
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New opens (creating if needed) the SQLite database at filePath
func New(filePath string, opts ...Option) (*Store, error) {
	if filePath == "" {
		filePath = "reader.db"
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", filePath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// A single connection keeps writes serialized and makes ":memory:" usable
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	s := &Store{
		db:       db,
		filePath: filePath,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// SaveFeed inserts the feed or updates the row with the same URL.
// The stored ID is written back into feed.
func (s *Store) SaveFeed(ctx context.Context, feed *domain.Feed) error {
	if feed == nil {
		return errors.New("feed cannot be nil")
	}
	if feed.ID == "" {
		return errors.New("feed ID cannot be empty")
	}
	if err := feed.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO feeds (id, title, description, url, link, icon, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			link = excluded.link,
			icon = excluded.icon,
			last_updated = excluded.last_updated
	`
	_, err = tx.ExecContext(ctx, query,
		feed.ID, feed.Title, feed.Description, feed.URL, feed.Link, feed.Icon, toUnix(feed.LastUpdated))
	if err != nil {
		return fmt.Errorf("failed to save feed: %w", err)
	}

	var id string
	if err := tx.QueryRowContext(ctx, "SELECT id FROM feeds WHERE url = ?", feed.URL).Scan(&id); err != nil {
		return fmt.Errorf("failed to read feed id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit feed: %w", err)
	}

	feed.ID = id
	return nil
}

// Feeds returns every stored feed ordered by title, without posts
func (s *Store) Feeds(ctx context.Context) ([]domain.Feed, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, url, link, icon, last_updated
		FROM feeds
		ORDER BY title COLLATE NOCASE, url
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	defer rows.Close()

	feeds := make([]domain.Feed, 0)
	for rows.Next() {
		var f domain.Feed
		var updated int64
		if err := rows.Scan(&f.ID, &f.Title, &f.Description, &f.URL, &f.Link, &f.Icon, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		f.LastUpdated = fromUnix(updated)
		feeds = append(feeds, f)
	}

	return feeds, rows.Err()
}

// SavePosts upserts posts in one transaction. Every post needs an ID, a FeedID and a Link.
func (s *Store) SavePosts(ctx context.Context, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	for _, p := range posts {
		if p.ID == "" || p.FeedID == "" {
			return fmt.Errorf("post %q is missing its ID or feed ID", p.Link)
		}
		if !p.IsValid() {
			return fmt.Errorf("post %q is not valid", p.ID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO posts (id, feed_id, title, description, link, image_url, published)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(feed_id, id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			link = excluded.link,
			image_url = excluded.image_url,
			published = excluded.published
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare post upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range posts {
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.FeedID, p.Title, p.Description, p.Link, p.ImageURL, toUnix(p.Published)); err != nil {
			return fmt.Errorf("failed to save post %q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit posts: %w", err)
	}

	s.debug("Posts saved", map[string]interface{}{"count": len(posts)})
	return nil
}

// SearchPosts returns at most limit posts whose title or description contains query,
// newest first. Matching is case-insensitive for ASCII letters; LIKE wildcards in query
// match literally.
func (s *Store) SearchPosts(ctx context.Context, query string, limit int) ([]domain.Post, error) {
	if query == "" {
		return []domain.Post{}, nil
	}
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	pattern := containsPattern(query)
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.feed_id, f.title, p.title, p.description, p.link, p.image_url, p.published
		FROM posts p
		JOIN feeds f ON f.id = p.feed_id
		WHERE p.title LIKE ? ESCAPE '\' OR p.description LIKE ? ESCAPE '\'
		ORDER BY p.published DESC, p.title
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)
	for rows.Next() {
		var p domain.Post
		var published int64
		if err := rows.Scan(&p.ID, &p.FeedID, &p.FeedTitle, &p.Title, &p.Description, &p.Link, &p.ImageURL, &published); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		p.Published = fromUnix(published)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}

	if elapsed := time.Since(start); elapsed > slowQueryThreshold {
		s.warn("Slow post search", map[string]interface{}{
			"query":   query,
			"elapsed": elapsed.String(),
			"results": len(posts),
		})
	}

	return posts, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Stats returns row counts and the database size
func (s *Store) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var feeds, posts int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feeds").Scan(&feeds); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&posts); err != nil {
		return nil, err
	}
	stats["feeds"] = feeds
	stats["posts"] = posts

	var pageCount, pageSize int
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err == nil {
			stats["db_size_bytes"] = pageCount * pageSize
		}
	}

	stats["file_path"] = s.filePath

	return stats, nil
}

func (s *Store) debug(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, fields)
	}
}

func (s *Store) warn(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, fields)
	}
}

var _ interfaces.Store = (*Store)(nil)
