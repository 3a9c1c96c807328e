package domain

import "time"

// Candidate is a raw, unscored content item produced by a feed source.
// It is never persisted directly; intake converts it into a Post.
type Candidate struct {
	Source      string
	Title       string
	Body        string
	URL         string
	SourceURL   string
	PublishedAt *time.Time
}

// NormalizedDraft is the quality-filtered localized content produced from a
// generation-service response. The raw response is never stored.
type NormalizedDraft struct {
	TitleLocalized   string
	BodyLocalized    string
	SummaryLocalized string
	IsPolitical      bool
}

// ChannelState is the flat tri-state reporting column for channel delivery.
// Decisions are always made from Status; this value is derived from it.
type ChannelState int

const (
	ChannelPending  ChannelState = 0
	ChannelRejected ChannelState = -1
	ChannelDone     ChannelState = 1
)

// Post is the durable unit of the pipeline, tracked through the workflow.
type Post struct {
	ID int64

	// Identity.
	Source       string
	URL          string
	SourceURL    string
	DuplicateKey string
	Hash         string

	// Original content.
	Title       string
	Body        string
	PublishedAt *time.Time

	// Localized content.
	TitleLocalized   string
	BodyLocalized    string
	SummaryLocalized string

	// Classification.
	Score          int
	ScoreBreakdown map[string]int
	IsPolitical    bool

	// Workflow.
	Status             Status
	Priority           int
	PublishedToChannel ChannelState

	CreatedAt          time.Time
	UpdatedAt          time.Time
	DraftedAt          *time.Time
	RejectedAt         *time.Time
	ChannelPublishedAt *time.Time
}
