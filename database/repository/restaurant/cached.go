// File: database/repository/restaurant/cached.go
package restaurantRepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Janrichter12345/freetables/models"
)

// Restaurant records change rarely; a short TTL keeps phone-number edits
// visible without hitting Mongo on every confirmation call.
const restaurantCacheTTL = 10 * time.Minute

type cachedRestaurantRepo struct {
	inner RestaurantRepository
	cache *redis.Client
}

// NewCachedRestaurantRepo wraps a repository with a Redis read-through cache.
func NewCachedRestaurantRepo(inner RestaurantRepository, cache *redis.Client) RestaurantRepository {
	return &cachedRestaurantRepo{inner: inner, cache: cache}
}

func restaurantCacheKey(id string) string {
	return "restaurant:" + id
}

func (r *cachedRestaurantRepo) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	if raw, err := r.cache.Get(ctx, restaurantCacheKey(id)).Result(); err == nil {
		var rest models.Restaurant
		if json.Unmarshal([]byte(raw), &rest) == nil {
			return &rest, nil
		}
	}

	rest, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(rest); err == nil {
		// Best effort; a cache write failure only costs the next lookup.
		r.cache.Set(ctx, restaurantCacheKey(id), raw, restaurantCacheTTL)
	}
	return rest, nil
}
