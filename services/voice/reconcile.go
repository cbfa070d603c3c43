package voice

import (
	"context"
	"time"

	"go.uber.org/zap"

	reservationRepo "github.com/Janrichter12345/freetables/database/repository/reservation"
	tableRepo "github.com/Janrichter12345/freetables/database/repository/table"
	"github.com/Janrichter12345/freetables/models"
)

// DefaultReconciler normalizes provider call-completion signals into
// reservation transitions. It is idempotent: the responded-at guard in the
// record store makes a second delivery, or a delivery racing the voice
// engine, a no-op.
type DefaultReconciler struct {
	Reservations reservationRepo.ReservationRepository
	Tables       tableRepo.TableRepository
	Logger       *zap.Logger
}

func (rc *DefaultReconciler) HandleCallStatus(ctx context.Context, reservationID, callSID, rawStatus string) {
	// The raw provider signal is persisted unconditionally for operator
	// visibility, before any business logic runs.
	if err := rc.Reservations.SetCallMeta(ctx, reservationID, callSID, rawStatus); err != nil {
		rc.Logger.Error("failed to persist call metadata",
			zap.String("reservationId", reservationID), zap.Error(err))
	}

	res, err := rc.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		rc.Logger.Warn("call status for unknown reservation",
			zap.String("reservationId", reservationID), zap.Error(err))
		return
	}
	if res.Responded() {
		return
	}

	outcome := models.ParseCallOutcome(rawStatus)
	switch {
	case outcome.Failure():
		// The call never reached anyone.
		rc.finalize(ctx, res, models.ReservationFailed)
	case outcome == models.CallOutcomeCompleted:
		// The call finished without a digit ever being recorded; calls that
		// did yield a digit were finalized synchronously by the voice engine.
		rc.finalize(ctx, res, models.ReservationNoResponse)
	default:
		rc.Logger.Debug("ignoring non-terminal call status",
			zap.String("reservationId", reservationID), zap.String("callStatus", rawStatus))
	}
}

func (rc *DefaultReconciler) finalize(ctx context.Context, res *models.Reservation, status models.ReservationStatus) {
	won, err := rc.Reservations.MarkResponded(ctx, res.ID, status, time.Now())
	if err != nil {
		rc.Logger.Error("failed to record call outcome",
			zap.String("reservationId", res.ID), zap.String("status", string(status)), zap.Error(err))
		return
	}
	if !won {
		return
	}
	if err := rc.Tables.Release(ctx, res.TableID, models.TableFree); err != nil {
		rc.Logger.Error("failed to free table after call outcome",
			zap.String("reservationId", res.ID), zap.String("tableId", res.TableID), zap.Error(err))
	}
}
