package models

import (
	"testing"
	"time"
)

func TestParseCallOutcome(t *testing.T) {
	cases := []struct {
		raw     string
		want    CallOutcome
		failure bool
	}{
		{"completed", CallOutcomeCompleted, false},
		{"no-answer", CallOutcomeNoAnswer, true},
		{"busy", CallOutcomeBusy, true},
		{"failed", CallOutcomeFailed, true},
		{"canceled", CallOutcomeCanceled, true},
		{" Completed ", CallOutcomeCompleted, false},
		{"ringing", CallOutcomeUnknown, false},
		{"in-progress", CallOutcomeUnknown, false},
		{"", CallOutcomeUnknown, false},
	}
	for _, c := range cases {
		got := ParseCallOutcome(c.raw)
		if got != c.want {
			t.Errorf("ParseCallOutcome(%q) = %v, want %v", c.raw, got, c.want)
		}
		if got.Failure() != c.failure {
			t.Errorf("ParseCallOutcome(%q).Failure() = %v, want %v", c.raw, got.Failure(), c.failure)
		}
	}
}

func TestReservationResponded(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		res  Reservation
		want bool
	}{
		{"fresh pending", Reservation{Status: ReservationPending}, false},
		{"responded timestamp set", Reservation{Status: ReservationPending, RespondedAt: &now}, true},
		{"accepted without timestamp", Reservation{Status: ReservationAccepted}, true},
		{"declined without timestamp", Reservation{Status: ReservationDeclined}, true},
		{"no response without timestamp", Reservation{Status: ReservationNoResponse}, true},
		{"cancelled", Reservation{Status: ReservationCancelled}, false},
	}
	for _, c := range cases {
		if got := c.res.Responded(); got != c.want {
			t.Errorf("%s: Responded() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := []ReservationStatus{
		ReservationDeclined, ReservationNoResponse, ReservationFailed,
		ReservationCancelled, ReservationCompleted,
	}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []ReservationStatus{ReservationPending, ReservationAccepted} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
