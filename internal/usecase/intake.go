package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"changal24/internal/domain"
	"changal24/internal/ports"
	"changal24/internal/scoring"
)

// IntakeDeps wires the driven adapters into the intake job.
type IntakeDeps struct {
	Source     ports.CandidateSource
	Enricher   ports.Enricher
	Repository ports.PostRepository
	Scoring    scoring.Config
	Logger     *slog.Logger
}

// Intake fetches candidates, scores and deduplicates them, and persists the
// survivors as candidate posts.
type Intake struct {
	source     ports.CandidateSource
	enricher   ports.Enricher
	repository ports.PostRepository
	scoring    scoring.Config
	logger     *slog.Logger
}

// NewIntake constructs the intake job.
func NewIntake(deps IntakeDeps) *Intake {
	return &Intake{
		source:     deps.Source,
		enricher:   deps.Enricher,
		repository: deps.Repository,
		scoring:    deps.Scoring,
		logger:     deps.Logger,
	}
}

// Run executes a single intake pass. Upstream fetch failures degrade to an
// empty candidate list; duplicate inserts are silently ignored and counted.
func (j *Intake) Run(ctx context.Context, now time.Time) error {
	if j.source == nil || j.repository == nil {
		return nil
	}

	candidates, err := j.source.Fetch(ctx)
	if err != nil {
		j.log().Warn("fetch failed, treating as empty", "error", err)
		candidates = nil
	}

	inserted := 0
	for _, candidate := range candidates {
		if j.enricher != nil {
			candidate = j.enricher.Enrich(ctx, candidate)
		}

		duplicateKey := scoring.DuplicateKey(candidate)
		ranked := scoring.Score(candidate, j.scoring, now)

		added, err := j.repository.Insert(ctx, domain.Post{
			Source:         candidate.Source,
			Title:          candidate.Title,
			Body:           candidate.Body,
			URL:            candidate.URL,
			SourceURL:      candidate.SourceURL,
			PublishedAt:    candidate.PublishedAt,
			DuplicateKey:   duplicateKey,
			Hash:           scoring.Fingerprint(duplicateKey),
			Score:          ranked.Score,
			ScoreBreakdown: ranked.Breakdown,
			IsPolitical:    ranked.IsPolitical,
			Status:         domain.StatusCandidate,
		})
		if err != nil {
			return fmt.Errorf("persist candidate %q: %w", candidate.URL, err)
		}
		if added {
			inserted++
		}
	}

	j.log().Info("intake done", "fetched", len(candidates), "inserted", inserted)
	return nil
}

func (j *Intake) log() *slog.Logger {
	if j.logger != nil {
		return j.logger
	}
	return slog.Default()
}
