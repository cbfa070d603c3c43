package models

import "strings"

// CallOutcome is the closed set of terminal call states the telephony
// provider reports asynchronously. Raw provider strings are parsed into
// this enum at the reconciler boundary; anything unrecognized maps to
// CallOutcomeUnknown and is ignored for business logic.
type CallOutcome int

const (
	CallOutcomeUnknown CallOutcome = iota
	CallOutcomeCompleted
	CallOutcomeNoAnswer
	CallOutcomeBusy
	CallOutcomeFailed
	CallOutcomeCanceled
)

// ParseCallOutcome normalizes a provider call-status string.
func ParseCallOutcome(raw string) CallOutcome {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "completed":
		return CallOutcomeCompleted
	case "no-answer":
		return CallOutcomeNoAnswer
	case "busy":
		return CallOutcomeBusy
	case "failed":
		return CallOutcomeFailed
	case "canceled":
		return CallOutcomeCanceled
	}
	return CallOutcomeUnknown
}

// Failure reports whether the outcome means the call never reached a human
// at all (as opposed to completing without input).
func (o CallOutcome) Failure() bool {
	switch o {
	case CallOutcomeNoAnswer, CallOutcomeBusy, CallOutcomeFailed, CallOutcomeCanceled:
		return true
	}
	return false
}

func (o CallOutcome) String() string {
	switch o {
	case CallOutcomeCompleted:
		return "completed"
	case CallOutcomeNoAnswer:
		return "no-answer"
	case CallOutcomeBusy:
		return "busy"
	case CallOutcomeFailed:
		return "failed"
	case CallOutcomeCanceled:
		return "canceled"
	}
	return "unknown"
}
