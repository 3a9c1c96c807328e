// Package storage persists posts in SQLite. Workflow transitions are applied
// as atomic single-row updates guarded by the current status; the unique hash
// constraint is the concurrency safety net for intake.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"changal24/internal/domain"
	"changal24/internal/ports"
)

//go:embed schema.sql
var schemaSQL string

// deliveryLoopPrefix marks posts whose URL points back at the delivery
// platform; publishing them would re-share our own channel.
const deliveryLoopPrefix = "https://t.me/"

var postColumns = []string{
	"id", "source", "title", "title_uz", "url", "source_url", "duplicate_key",
	"body", "body_uz", "tldr_uz", "published_at", "score", "score_details",
	"is_political", "workflow_status", "priority", "published_to_channel",
	"drafted_at", "rejected_at", "channel_published_at", "created_at", "updated_at",
}

// SQLiteRepository implements ports.PostRepository on a local SQLite file.
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

var _ ports.PostRepository = (*SQLiteRepository)(nil)

// Open connects to the database at path, applies pragmas, and ensures the
// schema exists.
func Open(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteRepository{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Insert stores a new post. A duplicate hash is silently ignored; the return
// value reports whether a row was actually added.
func (r *SQLiteRepository) Insert(ctx context.Context, post domain.Post) (bool, error) {
	breakdown, err := json.Marshal(post.ScoreBreakdown)
	if err != nil {
		return false, fmt.Errorf("marshal score breakdown: %w", err)
	}

	now := formatTime(time.Now().UTC())
	status := post.Status
	if status == "" {
		status = domain.StatusCandidate
	}

	query, args, err := sq.Insert("posts").
		Options("OR IGNORE").
		Columns(
			"source", "title", "url", "source_url", "duplicate_key", "body",
			"published_at", "hash", "score", "score_details", "is_political",
			"workflow_status", "priority", "published_to_channel",
			"created_at", "updated_at",
		).
		Values(
			post.Source, post.Title, post.URL, post.SourceURL, post.DuplicateKey,
			post.Body, nullableTime(post.PublishedAt), post.Hash, post.Score,
			string(breakdown), boolToInt(post.IsPolitical), string(status),
			post.Priority, int(status.ChannelState()), now, now,
		).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// NextCandidate selects the single best eligible candidate: highest priority,
// then score, then most recent id, excluding self-referential delivery links.
func (r *SQLiteRepository) NextCandidate(ctx context.Context) (*domain.Post, error) {
	query, args, err := sq.Select(postColumns...).
		From("posts").
		Where(sq.Eq{"workflow_status": string(domain.StatusCandidate)}).
		Where(sq.NotLike{"url": deliveryLoopPrefix + "%"}).
		OrderBy("priority DESC", "score DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	post, err := scanPost(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select candidate: %w", err)
	}
	return post, nil
}

// ApplyDraft persists the localized fields produced by normalization. It runs
// regardless of the political outcome so rejected posts keep their draft for
// audit.
func (r *SQLiteRepository) ApplyDraft(ctx context.Context, id int64, d domain.NormalizedDraft, at time.Time) error {
	query, args, err := sq.Update("posts").
		Set("title_uz", d.TitleLocalized).
		Set("body_uz", d.BodyLocalized).
		Set("tldr_uz", d.SummaryLocalized).
		Set("is_political", boolToInt(d.IsPolitical)).
		Set("drafted_at", formatTime(at)).
		Set("updated_at", formatTime(time.Now().UTC())).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build draft update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("apply draft to post %d: %w", id, err)
	}
	return nil
}

// MarkRejected transitions a candidate to the terminal rejected state.
func (r *SQLiteRepository) MarkRejected(ctx context.Context, id int64, at time.Time) error {
	return r.transition(ctx, id, domain.StatusRejected, "rejected_at", at)
}

// MarkPublished transitions a candidate to the terminal published state.
func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	return r.transition(ctx, id, domain.StatusPublished, "channel_published_at", at)
}

func (r *SQLiteRepository) transition(ctx context.Context, id int64, to domain.Status, stampColumn string, at time.Time) error {
	if err := domain.Transition(domain.StatusCandidate, to); err != nil {
		return err
	}

	query, args, err := sq.Update("posts").
		Set("workflow_status", string(to)).
		Set("published_to_channel", int(to.ChannelState())).
		Set(stampColumn, formatTime(at)).
		Set("updated_at", formatTime(time.Now().UTC())).
		Where(sq.Eq{
			"id":              id,
			"workflow_status": string(domain.StatusCandidate),
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build transition update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("transition post %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("post %d to %s: %w", id, to, domain.ErrInvalidTransition)
	}
	return nil
}

// ListRecent returns the latest non-political posts, newest first.
func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]domain.Post, error) {
	query, args, err := sq.Select(postColumns...).
		From("posts").
		Where(sq.Eq{"is_political": 0}).
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return posts, nil
}

// GetByID returns a single post, or nil when absent.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	query, args, err := sq.Select(postColumns...).
		From("posts").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get select: %w", err)
	}

	post, err := scanPost(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return post, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var (
		post               domain.Post
		publishedAt        sql.NullString
		breakdown          string
		isPolitical        int
		status             string
		publishedToChannel int
		draftedAt          sql.NullString
		rejectedAt         sql.NullString
		channelPublishedAt sql.NullString
		createdAt          string
		updatedAt          string
	)

	err := row.Scan(
		&post.ID, &post.Source, &post.Title, &post.TitleLocalized, &post.URL,
		&post.SourceURL, &post.DuplicateKey, &post.Body, &post.BodyLocalized,
		&post.SummaryLocalized, &publishedAt, &post.Score, &breakdown,
		&isPolitical, &status, &post.Priority, &publishedToChannel,
		&draftedAt, &rejectedAt, &channelPublishedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	post.PublishedAt = parseNullableTime(publishedAt)
	post.IsPolitical = isPolitical != 0
	post.Status = domain.Status(status)
	post.PublishedToChannel = domain.ChannelState(publishedToChannel)
	post.DraftedAt = parseNullableTime(draftedAt)
	post.RejectedAt = parseNullableTime(rejectedAt)
	post.ChannelPublishedAt = parseNullableTime(channelPublishedAt)
	post.CreatedAt = parseTime(createdAt)
	post.UpdatedAt = parseTime(updatedAt)

	if breakdown != "" {
		_ = json.Unmarshal([]byte(breakdown), &post.ScoreBreakdown)
	}

	return &post, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, value)
	return t
}

func parseNullableTime(value sql.NullString) *time.Time {
	if !value.Valid || value.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, value.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
