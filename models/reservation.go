package models

import "time"

// ReservationStatus is the lifecycle state of a reservation. A reservation
// is never deleted, only transitioned into a terminal status.
type ReservationStatus string

const (
	ReservationPending    ReservationStatus = "pending"
	ReservationAccepted   ReservationStatus = "accepted"
	ReservationDeclined   ReservationStatus = "declined"
	ReservationNoResponse ReservationStatus = "no_response"
	ReservationFailed     ReservationStatus = "failed"
	ReservationCancelled  ReservationStatus = "cancelled"
	ReservationCompleted  ReservationStatus = "completed"
)

// Terminal reports whether the status can no longer change through the
// voice-confirmation workflow.
func (s ReservationStatus) Terminal() bool {
	switch s {
	case ReservationDeclined, ReservationNoResponse, ReservationFailed,
		ReservationCancelled, ReservationCompleted:
		return true
	}
	return false
}

// Reservation is the durable record of one table request and its
// confirmation outcome.
type Reservation struct {
	ID           string            `bson:"id" json:"id"`
	RestaurantID string            `bson:"restaurantId" json:"restaurantId"`
	TableID      string            `bson:"tableId" json:"tableId"`
	UserID       string            `bson:"userId,omitempty" json:"userId,omitempty"`
	ReservedFor  string            `bson:"reservedFor" json:"reservedFor"`
	Seats        int               `bson:"seats" json:"seats"`
	EtaMinutes   int               `bson:"etaMinutes" json:"etaMinutes"`
	Status       ReservationStatus `bson:"status" json:"status"`
	CreatedAt    time.Time         `bson:"createdAt" json:"createdAt"`
	ExpiresAt    time.Time         `bson:"expiresAt" json:"expiresAt"`

	// RespondedAt is set exactly once, on the first transition out of
	// pending. It is the guard both the voice engine and the call-outcome
	// reconciler compete on.
	RespondedAt *time.Time `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`

	// Provider call metadata, mirrored for observability.
	CallSID    string `bson:"callSid,omitempty" json:"callSid,omitempty"`
	CallStatus string `bson:"callStatus,omitempty" json:"callStatus,omitempty"`
}

// Responded reports whether an accept/decline/no-response outcome has
// already been recorded for the reservation.
func (r *Reservation) Responded() bool {
	if r.RespondedAt != nil {
		return true
	}
	switch r.Status {
	case ReservationAccepted, ReservationDeclined, ReservationNoResponse:
		return true
	}
	return false
}
