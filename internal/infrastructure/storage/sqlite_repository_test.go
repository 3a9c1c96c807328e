package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"changal24/internal/domain"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newPost(hash string) domain.Post {
	published := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	return domain.Post{
		Source:         "telegram_s",
		Title:          "Title " + hash,
		URL:            "https://example.com/" + hash,
		SourceURL:      "https://t.me/chan/" + hash,
		DuplicateKey:   "https://example.com/" + hash,
		Hash:           hash,
		Body:           "Body " + hash,
		PublishedAt:    &published,
		Score:          50,
		ScoreBreakdown: map[string]int{"source": 25},
		Status:         domain.StatusCandidate,
	}
}

func TestInsertIgnoresDuplicateHash(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	inserted, err := repo.Insert(ctx, newPost("h1"))
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}

	inserted, err = repo.Insert(ctx, newPost("h1"))
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if inserted {
		t.Fatal("duplicate hash must be ignored")
	}
}

func TestInsertRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Insert(ctx, newPost("h1")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.NextCandidate(ctx)
	if err != nil {
		t.Fatalf("next candidate: %v", err)
	}
	if got == nil {
		t.Fatal("expected a candidate")
	}
	if got.Hash != "h1" || got.Title != "Title h1" || got.Score != 50 {
		t.Fatalf("unexpected post: %+v", got)
	}
	if got.Status != domain.StatusCandidate || got.PublishedToChannel != domain.ChannelPending {
		t.Fatalf("unexpected workflow fields: status=%s channel=%d", got.Status, got.PublishedToChannel)
	}
	if got.ScoreBreakdown["source"] != 25 {
		t.Fatalf("score breakdown lost: %v", got.ScoreBreakdown)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("published_at lost: %v", got.PublishedAt)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("timestamps must be set on insert")
	}
}

func TestNextCandidateOrdering(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	low := newPost("low")
	low.Score = 10
	high := newPost("high")
	high.Score = 90
	prioritized := newPost("prio")
	prioritized.Score = 5
	prioritized.Priority = 1

	for _, p := range []domain.Post{low, high, prioritized} {
		if _, err := repo.Insert(ctx, p); err != nil {
			t.Fatalf("insert %s: %v", p.Hash, err)
		}
	}

	got, err := repo.NextCandidate(ctx)
	if err != nil {
		t.Fatalf("next candidate: %v", err)
	}
	if got == nil || got.Hash != "prio" {
		t.Fatalf("priority must outrank score, got %+v", got)
	}

	if err := repo.MarkRejected(ctx, got.ID, time.Now()); err != nil {
		t.Fatalf("reject: %v", err)
	}

	got, err = repo.NextCandidate(ctx)
	if err != nil {
		t.Fatalf("next candidate: %v", err)
	}
	if got == nil || got.Hash != "high" {
		t.Fatalf("highest score must come next, got %+v", got)
	}
}

func TestNextCandidateSkipsDeliveryLinks(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	loop := newPost("loop")
	loop.URL = "https://t.me/somechannel/7"
	loop.Score = 99
	if _, err := repo.Insert(ctx, loop); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.NextCandidate(ctx)
	if err != nil {
		t.Fatalf("next candidate: %v", err)
	}
	if got != nil {
		t.Fatalf("delivery-platform URLs must never be selected, got %+v", got)
	}
}

func TestNextCandidateEmpty(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	got, err := repo.NextCandidate(context.Background())
	if err != nil {
		t.Fatalf("next candidate: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no candidate, got %+v", got)
	}
}

func TestApplyDraft(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Insert(ctx, newPost("h1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	post, err := repo.NextCandidate(ctx)
	if err != nil || post == nil {
		t.Fatalf("next candidate: %+v %v", post, err)
	}

	at := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	draft := domain.NormalizedDraft{
		TitleLocalized:   "Sarlavha",
		BodyLocalized:    "- punkt",
		SummaryLocalized: "izoh",
		IsPolitical:      true,
	}
	if err := repo.ApplyDraft(ctx, post.ID, draft, at); err != nil {
		t.Fatalf("apply draft: %v", err)
	}

	got, err := repo.GetByID(ctx, post.ID)
	if err != nil || got == nil {
		t.Fatalf("get: %+v %v", got, err)
	}
	if got.TitleLocalized != "Sarlavha" || got.BodyLocalized != "- punkt" || got.SummaryLocalized != "izoh" {
		t.Fatalf("draft fields not persisted: %+v", got)
	}
	if !got.IsPolitical {
		t.Fatal("political flag not persisted")
	}
	if got.DraftedAt == nil || !got.DraftedAt.Equal(at) {
		t.Fatalf("drafted_at not persisted: %v", got.DraftedAt)
	}
	if got.Status != domain.StatusCandidate {
		t.Fatalf("applying a draft must not change the workflow status, got %s", got.Status)
	}
}

func TestTransitionsAreTerminal(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Insert(ctx, newPost("h1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	post, err := repo.NextCandidate(ctx)
	if err != nil || post == nil {
		t.Fatalf("next candidate: %+v %v", post, err)
	}

	at := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	if err := repo.MarkPublished(ctx, post.ID, at); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got, err := repo.GetByID(ctx, post.ID)
	if err != nil || got == nil {
		t.Fatalf("get: %+v %v", got, err)
	}
	if got.Status != domain.StatusPublished || got.PublishedToChannel != domain.ChannelDone {
		t.Fatalf("unexpected workflow fields after publish: %+v", got)
	}
	if got.ChannelPublishedAt == nil || !got.ChannelPublishedAt.Equal(at) {
		t.Fatalf("channel_published_at not persisted: %v", got.ChannelPublishedAt)
	}

	// Terminal states never move again.
	if err := repo.MarkRejected(ctx, post.ID, time.Now()); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := repo.MarkPublished(ctx, post.ID, time.Now()); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransitionMissingPost(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	if err := repo.MarkPublished(context.Background(), 12345, time.Now()); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for a missing post, got %v", err)
	}
}

func TestListRecentExcludesPolitical(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	political := newPost("pol")
	political.IsPolitical = true
	for _, p := range []domain.Post{newPost("a"), political, newPost("b")} {
		if _, err := repo.Insert(ctx, p); err != nil {
			t.Fatalf("insert %s: %v", p.Hash, err)
		}
	}

	posts, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	// Newest first.
	if posts[0].Hash != "b" || posts[1].Hash != "a" {
		t.Fatalf("unexpected ordering: %s, %s", posts[0].Hash, posts[1].Hash)
	}

	posts, err = repo.ListRecent(ctx, 1)
	if err != nil {
		t.Fatalf("list with limit: %v", err)
	}
	if len(posts) != 1 || posts[0].Hash != "b" {
		t.Fatalf("limit not applied: %+v", posts)
	}
}

func TestGetByIDMissing(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	got, err := repo.GetByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for a missing post, got %+v", got)
	}
}
