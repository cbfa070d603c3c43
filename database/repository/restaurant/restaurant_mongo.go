// File: database/repository/restaurant/restaurant_mongo.go
package restaurantRepo

import (
	"context"
	"time"

	"github.com/Janrichter12345/freetables/models"

	"go.mongodb.org/mongo-driver/bson"
)

func (r *mongoRestaurantRepo) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var restaurant models.Restaurant
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&restaurant); err != nil {
		return nil, err
	}
	return &restaurant, nil
}
