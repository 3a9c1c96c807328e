package domain

import (
	"errors"
	"testing"
)

func TestTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"candidate to published", StatusCandidate, StatusPublished, true},
		{"candidate to rejected", StatusCandidate, StatusRejected, true},
		{"published is terminal", StatusPublished, StatusRejected, false},
		{"rejected is terminal", StatusRejected, StatusPublished, false},
		{"no reverse to candidate", StatusPublished, StatusCandidate, false},
		{"no self loop", StatusCandidate, StatusCandidate, false},
		{"unknown source status", Status("draft"), StatusPublished, false},
		{"unknown target status", StatusCandidate, Status("archived"), false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := Transition(tc.from, tc.to)
			if tc.ok && err != nil {
				t.Fatalf("expected transition to be allowed, got %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatal("expected transition to be refused")
				}
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
			}
		})
	}
}

func TestStatusValid(t *testing.T) {
	t.Parallel()

	for _, s := range []Status{StatusCandidate, StatusPublished, StatusRejected} {
		if !s.Valid() {
			t.Fatalf("%s must be a valid status", s)
		}
	}
	if Status("draft").Valid() {
		t.Fatal("unknown status must not be valid")
	}
}

func TestStatusTerminal(t *testing.T) {
	t.Parallel()

	if StatusCandidate.Terminal() {
		t.Fatal("candidate must not be terminal")
	}
	if !StatusPublished.Terminal() || !StatusRejected.Terminal() {
		t.Fatal("published and rejected must be terminal")
	}
}

func TestStatusChannelState(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status Status
		want   ChannelState
	}{
		{StatusCandidate, ChannelPending},
		{StatusPublished, ChannelDone},
		{StatusRejected, ChannelRejected},
	}
	for _, tc := range cases {
		if got := tc.status.ChannelState(); got != tc.want {
			t.Fatalf("%s: expected channel state %d, got %d", tc.status, tc.want, got)
		}
	}
}
