// Package server exposes the read-only JSON API over stored posts.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"changal24/internal/domain"
	"changal24/internal/ports"
)

const recentLimit = 100

// Server serves the read-only news API.
type Server struct {
	repository ports.PostRepository
	logger     *slog.Logger
	http       *http.Server
}

// New builds the API server bound to addr.
func New(addr string, repository ports.PostRepository, logger *slog.Logger) *Server {
	s := &Server{repository: repository, logger: logger}

	router := mux.NewRouter()
	router.HandleFunc("/api/news", s.handleList).Methods(http.MethodGet)
	router.HandleFunc("/api/news/{id:[0-9]+}", s.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Router returns the handler for tests.
func (s *Server) Router() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving requests until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

type newsItem struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	TitleLocalized   string `json:"title_uz"`
	URL              string `json:"url"`
	SourceURL        string `json:"source_url"`
	BodyLocalized    string `json:"body_uz,omitempty"`
	SummaryLocalized string `json:"tldr_uz"`
	IsPolitical      bool   `json:"is_political"`
	PublishedAt      string `json:"published_at,omitempty"`
	Score            int    `json:"score"`
}

func toNewsItem(post domain.Post, includeBody bool) newsItem {
	item := newsItem{
		ID:               post.ID,
		Title:            post.Title,
		TitleLocalized:   post.TitleLocalized,
		URL:              post.URL,
		SourceURL:        post.SourceURL,
		SummaryLocalized: post.SummaryLocalized,
		IsPolitical:      post.IsPolitical,
		Score:            post.Score,
	}
	if includeBody {
		item.BodyLocalized = post.BodyLocalized
	}
	if post.PublishedAt != nil {
		item.PublishedAt = post.PublishedAt.UTC().Format(time.RFC3339)
	}
	return item
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	posts, err := s.repository.ListRecent(r.Context(), recentLimit)
	if err != nil {
		s.fail(w, "list posts", err)
		return
	}

	items := make([]newsItem, 0, len(posts))
	for _, post := range posts {
		items = append(items, toNewsItem(post, false))
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_id"})
		return
	}

	post, err := s.repository.GetByID(r.Context(), id)
	if err != nil {
		s.fail(w, "get post", err)
		return
	}
	if post == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
		return
	}
	writeJSON(w, http.StatusOK, toNewsItem(*post, true))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	if s.logger != nil {
		s.logger.Error(op, "error", err)
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
