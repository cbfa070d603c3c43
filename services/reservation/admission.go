package reservation

import (
	"context"
	"time"

	"github.com/Janrichter12345/freetables/models"
)

// isActiveReservation reports whether a reservation still blocks the diner
// from opening another one: pending and not yet expired, or accepted within
// the post-acceptance window (falling back to creation time when the
// response timestamp is missing).
func isActiveReservation(r models.Reservation, now time.Time) bool {
	switch r.Status {
	case models.ReservationPending:
		return r.ExpiresAt.After(now)
	case models.ReservationAccepted:
		basis := r.CreatedAt
		if r.RespondedAt != nil {
			basis = *r.RespondedAt
		}
		return basis.After(now.Add(-acceptedActiveWindow))
	}
	return false
}

// hasActiveReservation scans the diner's recent reservations for one that
// still counts as active and returns its id.
//
// Known race: this check is not transactionally atomic with the subsequent
// table claim and insert, so two near-simultaneous requests from the same
// diner can both pass it before either commits.
func (s *DefaultReservationService) hasActiveReservation(ctx context.Context, userID string, now time.Time) (string, bool, error) {
	candidates, err := s.Reservations.ListRecentByUser(ctx, userID,
		[]models.ReservationStatus{models.ReservationPending, models.ReservationAccepted},
		admissionLookback)
	if err != nil {
		return "", false, err
	}
	for _, r := range candidates {
		if isActiveReservation(r, now) {
			return r.ID, true, nil
		}
	}
	return "", false, nil
}
