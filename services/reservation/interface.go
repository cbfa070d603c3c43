package reservation

import (
	"context"
	"time"

	reservationRepo "github.com/Janrichter12345/freetables/database/repository/reservation"
	restaurantRepo "github.com/Janrichter12345/freetables/database/repository/restaurant"
	tableRepo "github.com/Janrichter12345/freetables/database/repository/table"
	"github.com/Janrichter12345/freetables/services/voice"

	"go.uber.org/zap"
)

const (
	// A pending reservation expires 15 minutes after creation.
	pendingTTL = 15 * time.Minute
	// An accepted reservation still counts as active for 6 hours after the
	// response, covering the diner's arrival.
	acceptedActiveWindow = 6 * time.Hour
	// Admission control scans at most this many recent reservations.
	admissionLookback = 20
)

// CreateInput is a diner's request for a table. Identity is always passed
// explicitly; there is no ambient session.
type CreateInput struct {
	RestaurantID string
	TableID      string
	ReservedFor  string
	Seats        int
	EtaMinutes   int
	UserID       string
}

// CreateResult is returned once the table is claimed, the record persisted
// and the confirmation call placed.
type CreateResult struct {
	ReservationID string
	ExpiresAt     time.Time
	CallSID       string
}

// StatusItem is one row of the authoritative status view.
type StatusItem struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	RestaurantName string     `json:"restaurantName"`
	Seats          int        `json:"seats"`
	ReservedFor    string     `json:"reservedFor"`
	EtaMinutes     int        `json:"etaMinutes"`
	RespondedAt    *time.Time `json:"respondedAt,omitempty"`
	CallStatus     string     `json:"callStatus,omitempty"`
}

// ReservationService owns the reservation lifecycle.
type ReservationService interface {
	Create(ctx context.Context, in CreateInput) (*CreateResult, error)
	Cancel(ctx context.Context, reservationID, userID string) error
	Statuses(ctx context.Context, ids []string, userID string) ([]StatusItem, error)
}

// DefaultReservationService coordinates the ledger, the record store and the
// call placer. All coordination happens through the durable records; the
// service itself holds no per-reservation state.
type DefaultReservationService struct {
	Reservations reservationRepo.ReservationRepository
	Tables       tableRepo.TableRepository
	Restaurants  restaurantRepo.RestaurantRepository
	Caller       voice.CallPlacer
	Logger       *zap.Logger

	// TestToNumber, when set, overrides the dialed restaurant number.
	TestToNumber string
}
