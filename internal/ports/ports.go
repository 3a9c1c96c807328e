package ports

import (
	"context"
	"time"

	"changal24/internal/domain"
)

// CandidateSource pulls fresh candidates from an upstream feed.
type CandidateSource interface {
	Fetch(ctx context.Context) ([]domain.Candidate, error)
}

// Enricher optionally augments a candidate with scraped article content.
// Absence of enrichment is not an error; the candidate passes through
// unchanged.
type Enricher interface {
	Enrich(ctx context.Context, c domain.Candidate) domain.Candidate
}

// PostRepository persists posts and applies workflow transitions through
// atomic single-row updates.
type PostRepository interface {
	// Insert stores a new post, silently ignoring duplicate hashes.
	// It reports whether a row was actually added.
	Insert(ctx context.Context, post domain.Post) (bool, error)
	// NextCandidate selects the single best eligible candidate row, or nil
	// when nothing is eligible.
	NextCandidate(ctx context.Context) (*domain.Post, error)
	// ApplyDraft persists localized fields regardless of political outcome.
	ApplyDraft(ctx context.Context, id int64, d domain.NormalizedDraft, at time.Time) error
	// MarkRejected transitions candidate -> rejected.
	MarkRejected(ctx context.Context, id int64, at time.Time) error
	// MarkPublished transitions candidate -> published.
	MarkPublished(ctx context.Context, id int64, at time.Time) error
	ListRecent(ctx context.Context, limit int) ([]domain.Post, error)
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
}

// Localizer produces a normalized localized draft for a post. It is total:
// service failures and malformed responses degrade to a fixed fallback draft
// rather than an error.
type Localizer interface {
	Localize(ctx context.Context, title, body string) domain.NormalizedDraft
}

// Messenger delivers a plain-text message to a channel target.
type Messenger interface {
	Send(ctx context.Context, target, message string) error
}

// Scheduler controls when jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
