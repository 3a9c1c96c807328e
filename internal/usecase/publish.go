package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"changal24/internal/domain"
	"changal24/internal/ports"
)

// PublishDeps wires the driven adapters into the publish job.
type PublishDeps struct {
	Repository ports.PostRepository
	Localizer  ports.Localizer
	Messenger  ports.Messenger
	Brand      string
	Target     string
	Logger     *slog.Logger
}

// Publish selects the best eligible candidate, localizes it, and either
// rejects it (political) or delivers it to the channel.
type Publish struct {
	repository ports.PostRepository
	localizer  ports.Localizer
	messenger  ports.Messenger
	brand      string
	target     string
	logger     *slog.Logger
}

// NewPublish constructs the publish job.
func NewPublish(deps PublishDeps) *Publish {
	return &Publish{
		repository: deps.Repository,
		localizer:  deps.Localizer,
		messenger:  deps.Messenger,
		brand:      deps.Brand,
		target:     deps.Target,
		logger:     deps.Logger,
	}
}

// Run executes a single publish pass. The localized draft is persisted
// before the political decision so rejected posts keep it for audit. A
// content-less draft or a delivery failure leaves the row re-selectable
// for the next run.
func (j *Publish) Run(ctx context.Context, now time.Time) error {
	if j.repository == nil {
		return nil
	}

	post, err := j.repository.NextCandidate(ctx)
	if err != nil {
		return fmt.Errorf("select candidate: %w", err)
	}
	if post == nil {
		j.log().Info("nothing_to_publish")
		return nil
	}

	localized := j.localizer.Localize(ctx, post.Title, post.Body)

	if err := j.repository.ApplyDraft(ctx, post.ID, localized, now); err != nil {
		return fmt.Errorf("apply draft to post %d: %w", post.ID, err)
	}

	if localized.IsPolitical {
		if err := j.repository.MarkRejected(ctx, post.ID, now); err != nil {
			return fmt.Errorf("reject post %d: %w", post.ID, err)
		}
		j.log().Info("skip_political", "id", post.ID)
		return nil
	}

	// A draft with no body and no summary is the fallback shape: the
	// generation step produced nothing deliverable. Leave the row a
	// candidate so the next run retries.
	if localized.BodyLocalized == "" && localized.SummaryLocalized == "" {
		j.log().Info("draft_unavailable", "id", post.ID)
		return nil
	}

	message := composeMessage(j.brand, localized, *post)
	if j.messenger != nil {
		if err := j.messenger.Send(ctx, j.target, message); err != nil {
			j.log().Warn("delivery failed, post stays re-selectable", "id", post.ID, "error", err)
			return nil
		}
	}

	if err := j.repository.MarkPublished(ctx, post.ID, now); err != nil {
		return fmt.Errorf("publish post %d: %w", post.ID, err)
	}
	j.log().Info("published", "id", post.ID)
	return nil
}

func composeMessage(brand string, d domain.NormalizedDraft, post domain.Post) string {
	title := d.TitleLocalized
	if title == "" {
		title = post.Title
	}

	content := d.BodyLocalized
	if content == "" {
		content = d.SummaryLocalized
	}

	return fmt.Sprintf("%s: %s\n\n%s\n\nManba: %s", brand, title, content, post.URL)
}

func (j *Publish) log() *slog.Logger {
	if j.logger != nil {
		return j.logger
	}
	return slog.Default()
}
