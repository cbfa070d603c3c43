// File: database/repository/table/table_mongo.go
package tableRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Janrichter12345/freetables/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *mongoTableRepo) GetByID(ctx context.Context, id string) (*models.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var table models.Table
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&table); err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *mongoTableRepo) Claim(ctx context.Context, tableID, restaurantID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Single conditional update: only a free table can move to requested.
	filter := bson.M{"id": tableID, "status": models.TableFree}
	update := bson.M{"$set": bson.M{"status": models.TableRequested}}

	var claimed models.Table
	err := r.coll.FindOneAndUpdate(ctx, filter, update).Decode(&claimed)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotAvailable
		}
		return fmt.Errorf("failed to claim table %s: %w", tableID, err)
	}

	if claimed.RestaurantID != restaurantID {
		// The claim landed on a table outside the stated restaurant; undo it.
		if relErr := r.Release(ctx, tableID, models.TableFree); relErr != nil {
			return fmt.Errorf("failed to roll back mismatched claim on table %s: %w", tableID, relErr)
		}
		return ErrWrongRestaurant
	}
	return nil
}

func (r *mongoTableRepo) Release(ctx context.Context, tableID string, target models.TableStatus) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"id": tableID},
		bson.M{"$set": bson.M{"status": target}},
	)
	if err != nil {
		return fmt.Errorf("failed to release table %s to %s: %w", tableID, target, err)
	}
	return nil
}
