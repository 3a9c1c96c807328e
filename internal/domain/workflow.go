package domain

import (
	"errors"
	"fmt"
)

// Status represents the lifecycle stage of a Post.
type Status string

const (
	StatusCandidate Status = "candidate"
	StatusPublished Status = "published"
	StatusRejected  Status = "rejected"
)

// ErrInvalidTransition is returned when a workflow transition is not allowed.
var ErrInvalidTransition = errors.New("invalid workflow transition")

var allStatuses = []Status{StatusCandidate, StatusPublished, StatusRejected}

var allowedTransitions = map[Status][]Status{
	StatusCandidate: {StatusPublished, StatusRejected},
}

// Valid reports whether the status is a known lifecycle stage.
func (s Status) Valid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether a Post in this status may never change again.
func (s Status) Terminal() bool {
	return s == StatusPublished || s == StatusRejected
}

// ChannelState derives the flat reporting column value for this status.
func (s Status) ChannelState() ChannelState {
	switch s {
	case StatusPublished:
		return ChannelDone
	case StatusRejected:
		return ChannelRejected
	default:
		return ChannelPending
	}
}

// Transition validates a status change. Published and rejected are terminal,
// so the only legal moves are candidate -> published and candidate -> rejected.
func Transition(from, to Status) error {
	if !from.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, from)
	}
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
