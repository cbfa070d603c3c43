package reservation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Janrichter12345/freetables/models"
)

// Create runs the full creation sequence: validate, admission check, atomic
// table claim, record insert, outbound call. Any failure after the claim
// rolls the table back to free; any failure after the insert additionally
// marks the reservation failed.
func (s *DefaultReservationService) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	in.RestaurantID = strings.TrimSpace(in.RestaurantID)
	in.TableID = strings.TrimSpace(in.TableID)
	in.ReservedFor = strings.TrimSpace(in.ReservedFor)

	if in.RestaurantID == "" || in.TableID == "" || in.ReservedFor == "" {
		return nil, ValidationError{Reason: "missing_fields"}
	}
	if in.EtaMinutes < 1 || in.EtaMinutes > 20 {
		return nil, ValidationError{Reason: "eta_minutes_must_be_1_to_20"}
	}
	if in.Seats < 1 {
		return nil, ValidationError{Reason: "invalid_seats"}
	}

	now := time.Now()

	activeID, active, err := s.hasActiveReservation(ctx, in.UserID, now)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ActiveReservationError{ActiveID: activeID}
	}

	rest, err := s.Restaurants.GetByID(ctx, in.RestaurantID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}

	to := strings.TrimSpace(s.TestToNumber)
	if to == "" {
		to = strings.TrimSpace(rest.Phone)
	}
	if to == "" {
		return nil, ErrMissingPhone
	}

	// The one and only synchronization point against concurrent requests for
	// the same table.
	if err := s.Tables.Claim(ctx, in.TableID, in.RestaurantID); err != nil {
		return nil, err
	}

	res := &models.Reservation{
		ID:           uuid.New().String(),
		RestaurantID: in.RestaurantID,
		TableID:      in.TableID,
		UserID:       in.UserID,
		ReservedFor:  in.ReservedFor,
		Seats:        in.Seats,
		EtaMinutes:   in.EtaMinutes,
		Status:       models.ReservationPending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(pendingTTL),
	}
	if err := s.Reservations.Insert(ctx, res); err != nil {
		s.releaseQuietly(ctx, in.TableID)
		return nil, err
	}

	ref, err := s.Caller.PlaceCall(ctx, to, res.ID)
	if err != nil {
		if stErr := s.Reservations.SetStatus(ctx, res.ID, models.ReservationFailed); stErr != nil {
			s.Logger.Error("failed to mark reservation failed after call error",
				zap.String("reservationId", res.ID), zap.Error(stErr))
		}
		s.releaseQuietly(ctx, in.TableID)
		return nil, CallPlacementError{Err: err}
	}

	if err := s.Reservations.SetCallMeta(ctx, res.ID, ref.SID, ref.Status); err != nil {
		s.Logger.Error("failed to store call metadata",
			zap.String("reservationId", res.ID), zap.Error(err))
	}

	return &CreateResult{
		ReservationID: res.ID,
		ExpiresAt:     res.ExpiresAt,
		CallSID:       ref.SID,
	}, nil
}

// Cancel transitions the reservation to cancelled and frees its table.
// Only the owning diner may cancel; cancelling twice is harmless.
func (s *DefaultReservationService) Cancel(ctx context.Context, reservationID, userID string) error {
	res, err := s.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	if res.UserID != userID {
		return ErrForbidden
	}

	if err := s.Reservations.SetStatus(ctx, reservationID, models.ReservationCancelled); err != nil {
		return err
	}
	if res.TableID != "" {
		if err := s.Tables.Release(ctx, res.TableID, models.TableFree); err != nil {
			return err
		}
	}
	return nil
}

// Statuses returns the authoritative view for the requested ids, restricted
// to rows the caller owns. Legacy reservations created before ownership was
// recorded are opportunistically attached to the caller first.
func (s *DefaultReservationService) Statuses(ctx context.Context, ids []string, userID string) ([]StatusItem, error) {
	if len(ids) == 0 {
		return []StatusItem{}, nil
	}

	rows, err := s.Reservations.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	var ownerless []string
	for _, r := range rows {
		if r.UserID == "" {
			ownerless = append(ownerless, r.ID)
		}
	}
	if len(ownerless) > 0 {
		if err := s.Reservations.ClaimOwnerless(ctx, ownerless, userID); err != nil {
			s.Logger.Warn("failed to claim ownerless reservations", zap.Error(err))
		} else {
			for i := range rows {
				if rows[i].UserID == "" {
					rows[i].UserID = userID
				}
			}
		}
	}

	names := make(map[string]string)
	items := make([]StatusItem, 0, len(rows))
	for _, r := range rows {
		if r.UserID != userID {
			continue
		}

		name, ok := names[r.RestaurantID]
		if !ok {
			if rest, err := s.Restaurants.GetByID(ctx, r.RestaurantID); err == nil {
				name = rest.Name
			}
			names[r.RestaurantID] = name
		}

		items = append(items, StatusItem{
			ID:             r.ID,
			Status:         string(r.Status),
			RestaurantName: name,
			Seats:          r.Seats,
			ReservedFor:    r.ReservedFor,
			EtaMinutes:     r.EtaMinutes,
			RespondedAt:    r.RespondedAt,
			CallStatus:     r.CallStatus,
		})
	}
	return items, nil
}

func (s *DefaultReservationService) releaseQuietly(ctx context.Context, tableID string) {
	if err := s.Tables.Release(ctx, tableID, models.TableFree); err != nil {
		s.Logger.Error("failed to roll back table claim",
			zap.String("tableId", tableID), zap.Error(err))
	}
}
