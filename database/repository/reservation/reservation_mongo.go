// File: database/repository/reservation/reservation_mongo.go
package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Janrichter12345/freetables/models"
)

func (r *mongoReservationRepo) Insert(ctx context.Context, res *models.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, res); err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	return nil
}

func (r *mongoReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var res models.Reservation
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *mongoReservationRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Reservation
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkResponded is the single guarded transition out of pending. The filter
// on respondedAt makes it a conditional write: the first caller matches and
// wins, later callers match nothing and are no-ops.
func (r *mongoReservationRepo) MarkResponded(ctx context.Context, id string, status models.ReservationStatus, at time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":          id,
		"respondedAt": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"status":      status,
		"respondedAt": at,
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark reservation %s responded: %w", id, err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoReservationRepo) SetStatus(ctx context.Context, id string, status models.ReservationStatus) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to set reservation %s status to %s: %w", id, status, err)
	}
	return nil
}

func (r *mongoReservationRepo) SetCallMeta(ctx context.Context, id, callSID, callStatus string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{}
	if callSID != "" {
		set["callSid"] = callSID
	}
	if callStatus != "" {
		set["callStatus"] = callStatus
	}
	if len(set) == 0 {
		return nil
	}

	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to set call metadata on reservation %s: %w", id, err)
	}
	return nil
}
