// File: database/repository/reservation/queries.go
package reservationRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Janrichter12345/freetables/models"
)

func (r *mongoReservationRepo) ListRecentByUser(ctx context.Context, userID string, statuses []models.ReservationStatus, limit int64) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"userId": userID,
		"status": bson.M{"$in": statuses},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
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

func (r *mongoReservationRepo) ClaimOwnerless(ctx context.Context, ids []string, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id": bson.M{"$in": ids},
		"$or": []bson.M{
			{"userId": bson.M{"$exists": false}},
			{"userId": ""},
		},
	}
	_, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"userId": userID}})
	return err
}

func (r *mongoReservationRepo) ListExpiredPending(ctx context.Context, now time.Time, limit int64) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":    models.ReservationPending,
		"expiresAt": bson.M{"$lt": now},
	}
	opts := options.Find().SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
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
