package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"changal24/internal/domain"
)

type stubRepository struct {
	posts   []domain.Post
	listErr error
}

func (s *stubRepository) Insert(context.Context, domain.Post) (bool, error) { return false, nil }

func (s *stubRepository) NextCandidate(context.Context) (*domain.Post, error) { return nil, nil }

func (s *stubRepository) ApplyDraft(context.Context, int64, domain.NormalizedDraft, time.Time) error {
	return nil
}

func (s *stubRepository) MarkRejected(context.Context, int64, time.Time) error { return nil }

func (s *stubRepository) MarkPublished(context.Context, int64, time.Time) error { return nil }

func (s *stubRepository) ListRecent(_ context.Context, limit int) ([]domain.Post, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if limit < len(s.posts) {
		return s.posts[:limit], nil
	}
	return s.posts, nil
}

func (s *stubRepository) GetByID(_ context.Context, id int64) (*domain.Post, error) {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return &s.posts[i], nil
		}
	}
	return nil, nil
}

func testPosts() []domain.Post {
	published := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	return []domain.Post{
		{
			ID:               1,
			Title:            "Original title",
			TitleLocalized:   "Sarlavha",
			URL:              "https://example.com/a",
			SourceURL:        "https://t.me/chan/1",
			BodyLocalized:    "- punkt",
			SummaryLocalized: "izoh",
			Score:            60,
			PublishedAt:      &published,
		},
		{ID: 2, Title: "Second"},
	}
}

func TestListNews(t *testing.T) {
	t.Parallel()

	srv := New(":0", &stubRepository{posts: testPosts()}, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/news", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var items []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0]["title_uz"] != "Sarlavha" || items[0]["tldr_uz"] != "izoh" {
		t.Fatalf("unexpected first item: %v", items[0])
	}
	if _, ok := items[0]["body_uz"]; ok {
		t.Fatal("list view must omit the body")
	}
	if items[0]["published_at"] != "2026-08-30T10:00:00Z" {
		t.Fatalf("unexpected published_at: %v", items[0]["published_at"])
	}
}

func TestGetNews(t *testing.T) {
	t.Parallel()

	srv := New(":0", &stubRepository{posts: testPosts()}, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/news/1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var item map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if item["body_uz"] != "- punkt" {
		t.Fatalf("detail view must include the body, got %v", item)
	}
}

func TestGetNewsNotFound(t *testing.T) {
	t.Parallel()

	srv := New(":0", &stubRepository{posts: testPosts()}, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/news/999", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetNewsRejectsNonNumericID(t *testing.T) {
	t.Parallel()

	srv := New(":0", &stubRepository{posts: testPosts()}, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/news/abc", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("non-numeric ids must not match the route, got %d", rec.Code)
	}
}

func TestListNewsStorageError(t *testing.T) {
	t.Parallel()

	srv := New(":0", &stubRepository{listErr: errors.New("db gone")}, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/news", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := New(":0", &stubRepository{}, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response: %d %q", rec.Code, rec.Body.String())
	}
}
