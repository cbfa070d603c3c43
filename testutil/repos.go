// Package testutil provides in-memory repository implementations for tests.
// They honor the same conditional-write contracts as the Mongo versions.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	tableRepo "github.com/Janrichter12345/freetables/database/repository/table"
	"github.com/Janrichter12345/freetables/models"
)

// MemTableRepo is an in-memory TableRepository with the same claim
// semantics as the Mongo implementation.
type MemTableRepo struct {
	mu     sync.Mutex
	tables map[string]*models.Table
}

func NewMemTableRepo(tables ...models.Table) *MemTableRepo {
	r := &MemTableRepo{tables: make(map[string]*models.Table)}
	for i := range tables {
		t := tables[i]
		r.tables[t.ID] = &t
	}
	return r
}

func (r *MemTableRepo) GetByID(ctx context.Context, id string) (*models.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *t
	return &cp, nil
}

func (r *MemTableRepo) Claim(ctx context.Context, tableID, restaurantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[tableID]
	if !ok || t.Status != models.TableFree {
		return tableRepo.ErrNotAvailable
	}
	t.Status = models.TableRequested
	if t.RestaurantID != restaurantID {
		t.Status = models.TableFree
		return tableRepo.ErrWrongRestaurant
	}
	return nil
}

func (r *MemTableRepo) Release(ctx context.Context, tableID string, target models.TableStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tables[tableID]; ok {
		t.Status = target
	}
	return nil
}

// Status reports the current status of a table, for assertions.
func (r *MemTableRepo) Status(tableID string) models.TableStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tables[tableID]; ok {
		return t.Status
	}
	return ""
}

// MemReservationRepo is an in-memory ReservationRepository. MarkResponded
// implements the same first-writer-wins guard as the Mongo version.
type MemReservationRepo struct {
	mu    sync.Mutex
	byID  map[string]*models.Reservation
	order []string
}

func NewMemReservationRepo(reservations ...models.Reservation) *MemReservationRepo {
	r := &MemReservationRepo{byID: make(map[string]*models.Reservation)}
	for i := range reservations {
		res := reservations[i]
		r.byID[res.ID] = &res
		r.order = append(r.order, res.ID)
	}
	return r
}

func (r *MemReservationRepo) Insert(ctx context.Context, res *models.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *res
	r.byID[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	return nil
}

func (r *MemReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *res
	return &cp, nil
}

func (r *MemReservationRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Reservation
	for _, id := range ids {
		if res, ok := r.byID[id]; ok {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *MemReservationRepo) ListRecentByUser(ctx context.Context, userID string, statuses []models.ReservationStatus, limit int64) ([]models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[models.ReservationStatus]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	var out []models.Reservation
	for _, res := range r.byID {
		if res.UserID == userID && wanted[res.Status] {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemReservationRepo) MarkResponded(ctx context.Context, id string, status models.ReservationStatus, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok || res.RespondedAt != nil {
		return false, nil
	}
	res.Status = status
	ts := at
	res.RespondedAt = &ts
	return true, nil
}

func (r *MemReservationRepo) SetStatus(ctx context.Context, id string, status models.ReservationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.byID[id]; ok {
		res.Status = status
	}
	return nil
}

func (r *MemReservationRepo) SetCallMeta(ctx context.Context, id, callSID, callStatus string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.byID[id]; ok {
		if callSID != "" {
			res.CallSID = callSID
		}
		if callStatus != "" {
			res.CallStatus = callStatus
		}
	}
	return nil
}

func (r *MemReservationRepo) ClaimOwnerless(ctx context.Context, ids []string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if res, ok := r.byID[id]; ok && res.UserID == "" {
			res.UserID = userID
		}
	}
	return nil
}

func (r *MemReservationRepo) ListExpiredPending(ctx context.Context, now time.Time, limit int64) ([]models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Reservation
	for _, res := range r.byID {
		if res.Status == models.ReservationPending && res.ExpiresAt.Before(now) {
			out = append(out, *res)
		}
		if int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

// All returns every stored reservation in insertion order, for assertions.
func (r *MemReservationRepo) All() []models.Reservation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Reservation, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

// Get returns the stored reservation, for assertions.
func (r *MemReservationRepo) Get(id string) *models.Reservation {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok {
		return nil
	}
	cp := *res
	return &cp
}

// MemRestaurantRepo is an in-memory RestaurantRepository.
type MemRestaurantRepo struct {
	byID map[string]*models.Restaurant
}

func NewMemRestaurantRepo(restaurants ...models.Restaurant) *MemRestaurantRepo {
	r := &MemRestaurantRepo{byID: make(map[string]*models.Restaurant)}
	for i := range restaurants {
		rest := restaurants[i]
		r.byID[rest.ID] = &rest
	}
	return r
}

func (r *MemRestaurantRepo) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	rest, ok := r.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *rest
	return &cp, nil
}
