// File: database/repository/restaurant/interface.go
package restaurantRepo

import (
	"context"

	"github.com/Janrichter12345/freetables/database"
	"github.com/Janrichter12345/freetables/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// RestaurantRepository exposes the read-only slice of restaurant data the
// reservation core needs. Restaurant records are managed elsewhere.
type RestaurantRepository interface {
	GetByID(ctx context.Context, id string) (*models.Restaurant, error)
}

type mongoRestaurantRepo struct {
	coll *mongo.Collection
}

// NewMongoRestaurantRepo constructs a new MongoDB RestaurantRepository.
func NewMongoRestaurantRepo() RestaurantRepository {
	db := database.MongoClient.Database("freetables")
	return &mongoRestaurantRepo{
		coll: db.Collection("restaurants"),
	}
}
