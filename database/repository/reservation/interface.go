// File: database/repository/reservation/interface.go
package reservationRepo

import (
	"context"
	"time"

	"github.com/Janrichter12345/freetables/database"
	"github.com/Janrichter12345/freetables/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ReservationRepository is the durable record store for reservations and
// their status history.
type ReservationRepository interface {
	Insert(ctx context.Context, r *models.Reservation) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Reservation, error)

	// ListRecentByUser returns the caller's most recent reservations in the
	// given statuses, newest first, bounded by limit.
	ListRecentByUser(ctx context.Context, userID string, statuses []models.ReservationStatus, limit int64) ([]models.Reservation, error)

	// MarkResponded performs the guarded first-writer-wins transition out of
	// pending: it sets status and respondedAt only while respondedAt is still
	// unset, and reports whether this caller won the write.
	MarkResponded(ctx context.Context, id string, status models.ReservationStatus, at time.Time) (bool, error)

	// SetStatus applies an unguarded status write. Used for cancellation and
	// for marking a reservation failed during creation rollback, where no
	// outcome race exists yet.
	SetStatus(ctx context.Context, id string, status models.ReservationStatus) error

	// SetCallMeta mirrors the provider call identifier and raw call status
	// onto the reservation for observability.
	SetCallMeta(ctx context.Context, id, callSID, callStatus string) error

	// ClaimOwnerless attaches the given user to legacy reservations among ids
	// that have no owner recorded.
	ClaimOwnerless(ctx context.Context, ids []string, userID string) error

	// ListExpiredPending returns pending reservations whose expiry has passed,
	// bounded by limit.
	ListExpiredPending(ctx context.Context, now time.Time, limit int64) ([]models.Reservation, error)
}

type mongoReservationRepo struct {
	coll *mongo.Collection
}

// NewMongoReservationRepo constructs a new MongoDB ReservationRepository.
func NewMongoReservationRepo() ReservationRepository {
	db := database.MongoClient.Database("freetables")
	return &mongoReservationRepo{
		coll: db.Collection("reservations"),
	}
}
