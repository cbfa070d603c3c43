// File: database/repository/table/interface.go
package tableRepo

import (
	"context"
	"errors"

	"github.com/Janrichter12345/freetables/database"
	"github.com/Janrichter12345/freetables/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotAvailable means the table was not in the free state, so the
	// conditional claim matched nothing.
	ErrNotAvailable = errors.New("table not available")
	// ErrWrongRestaurant means the table exists but belongs to a different
	// restaurant; the claim has already been rolled back when this is returned.
	ErrWrongRestaurant = errors.New("table does not belong to restaurant")
)

// TableRepository is the ledger of per-table availability. Claim is the sole
// synchronization primitive preventing double-booking: it must be a single
// conditional write, never read-then-write.
type TableRepository interface {
	GetByID(ctx context.Context, id string) (*models.Table, error)
	// Claim transitions the table from free to requested. Exactly one of any
	// set of concurrent callers wins; the rest get ErrNotAvailable.
	Claim(ctx context.Context, tableID, restaurantID string) error
	// Release sets the table to the target status (free on decline, failure,
	// cancellation or no-response; reserved on acceptance). Idempotent.
	Release(ctx context.Context, tableID string, target models.TableStatus) error
}

type mongoTableRepo struct {
	coll *mongo.Collection
}

// NewMongoTableRepo constructs a new MongoDB TableRepository.
func NewMongoTableRepo() TableRepository {
	db := database.MongoClient.Database("freetables")
	return &mongoTableRepo{
		coll: db.Collection("tables"),
	}
}
