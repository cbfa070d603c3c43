package voice

import "context"

// IVR stage markers. The full state needed to serve any leg of the call is
// reconstructable from the reservation id and the stage name alone; there is
// no server-side call session, so any instance can serve any leg.
const (
	StageStart = ""
	StageRetry = "retry"
	StageFinal = "final"
)

// LegRequest carries everything one leg of the interactive call needs.
// Digits may come from the query string or the provider's form body.
type LegRequest struct {
	ReservationID string
	Stage         string
	Digits        string
}

// Engine serves the multi-stage DTMF confirmation menu. ServeLeg always
// returns a complete voice-instruction document; internal failures degrade
// to a spoken error followed by a hangup, never an HTTP error.
type Engine interface {
	ServeLeg(ctx context.Context, req LegRequest) string
}

// Reconciler consumes asynchronous call-status notifications from the
// provider. It never reports failure to its caller: the provider only needs
// a fast acknowledgement.
type Reconciler interface {
	HandleCallStatus(ctx context.Context, reservationID, callSID, rawStatus string)
}

// CallRef identifies a freshly placed outbound call.
type CallRef struct {
	SID    string
	Status string
}

// CallPlacer places the outbound confirmation call to a restaurant.
type CallPlacer interface {
	PlaceCall(ctx context.Context, to, reservationID string) (*CallRef, error)
}
