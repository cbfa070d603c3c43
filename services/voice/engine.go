package voice

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	reservationRepo "github.com/Janrichter12345/freetables/database/repository/reservation"
	tableRepo "github.com/Janrichter12345/freetables/database/repository/table"
	"github.com/Janrichter12345/freetables/models"
)

// DefaultEngine drives the three-stage confirmation menu against the
// reservation record. Each leg re-reads the stored reservation; nothing is
// cached between legs.
type DefaultEngine struct {
	Reservations reservationRepo.ReservationRepository
	Tables       tableRepo.TableRepository
	Logger       *zap.Logger

	// PublicBaseURL and WebhookToken are used to build the action URLs the
	// provider posts the collected digit to.
	PublicBaseURL string
	WebhookToken  string
}

func (e *DefaultEngine) ServeLeg(ctx context.Context, req LegRequest) string {
	res, err := e.Reservations.GetByID(ctx, req.ReservationID)
	if err != nil {
		e.Logger.Warn("voice leg for unknown reservation",
			zap.String("reservationId", req.ReservationID), zap.Error(err))
		return messageDoc(`A technical error occurred.<break time="600ms"/> Please try again later.`)
	}

	// Duplicate or replayed delivery: the outcome is already recorded, so no
	// digit on any stage may change anything.
	if res.Responded() {
		return e.alreadyProcessed()
	}

	switch req.Stage {
	case StageStart:
		return gatherDoc(e.actionURL(req.ReservationID, StageRetry), e.startPrompts(res))
	case StageRetry:
		if doc, ok := e.tryDecide(ctx, res, req.Digits); ok {
			return doc
		}
		return gatherDoc(e.actionURL(req.ReservationID, StageFinal), retryPrompts())
	default:
		// Final stage: a valid digit still counts, anything else resolves to
		// no response.
		if doc, ok := e.tryDecide(ctx, res, req.Digits); ok {
			return doc
		}
		return e.finalize(ctx, res, models.ReservationNoResponse)
	}
}

// tryDecide applies a valid accept/decline digit. It reports false when the
// digit is not one of the two choices, leaving the caller to fall through to
// the next stage.
func (e *DefaultEngine) tryDecide(ctx context.Context, res *models.Reservation, digits string) (string, bool) {
	switch digits {
	case "1":
		return e.finalize(ctx, res, models.ReservationAccepted), true
	case "2":
		return e.finalize(ctx, res, models.ReservationDeclined), true
	}
	return "", false
}

// finalize performs the guarded transition and the matching table release,
// then speaks the outcome.
func (e *DefaultEngine) finalize(ctx context.Context, res *models.Reservation, status models.ReservationStatus) string {
	won, err := e.Reservations.MarkResponded(ctx, res.ID, status, time.Now())
	if err != nil {
		e.Logger.Error("failed to record reservation outcome",
			zap.String("reservationId", res.ID), zap.String("status", string(status)), zap.Error(err))
		return messageDoc(`A technical error occurred.<break time="600ms"/> Please try again later.`)
	}
	if !won {
		return e.alreadyProcessed()
	}

	target := models.TableFree
	if status == models.ReservationAccepted {
		target = models.TableReserved
	}
	if err := e.Tables.Release(ctx, res.TableID, target); err != nil {
		// The outcome is recorded; the table state is repaired out of band.
		e.Logger.Error("failed to release table after outcome",
			zap.String("reservationId", res.ID), zap.String("tableId", res.TableID), zap.Error(err))
	}

	switch status {
	case models.ReservationAccepted:
		return messageDoc(`Thank you.<break time="400ms"/> The reservation has been confirmed.`)
	case models.ReservationDeclined:
		return messageDoc(`Understood.<break time="400ms"/> The reservation has been declined.`)
	default:
		return messageDoc(`No valid input received.<break time="600ms"/> The request is now closed.`)
	}
}

func (e *DefaultEngine) alreadyProcessed() string {
	return messageDoc(`This request has already been processed.<break time="500ms"/> Thank you.`)
}

// startPrompts announces the request. All values come from the stored record
// at the time this leg is served.
func (e *DefaultEngine) startPrompts(res *models.Reservation) []string {
	reservedFor := res.ReservedFor
	if reservedFor == "" {
		reservedFor = "A guest"
	}
	seats := "several"
	if res.Seats > 0 {
		seats = strconv.Itoa(res.Seats)
	}
	eta := "a few"
	if res.EtaMinutes > 0 {
		eta = strconv.Itoa(res.EtaMinutes)
	}

	return []string{
		`Hello, this is Free Tables.`,
		fmt.Sprintf(`%s would like to reserve a table for %s people.`, escapeXML(reservedFor), seats),
		fmt.Sprintf(`The estimated arrival is in about %s minutes.`, eta),
		`Press <emphasis level="moderate">1</emphasis> now to confirm.`,
		`Or press <emphasis level="moderate">2</emphasis> to decline.`,
	}
}

func retryPrompts() []string {
	return []string{
		`A quick note.<break time="500ms"/>`,
		`Please press only <emphasis level="strong">1</emphasis> or <emphasis level="strong">2</emphasis>.`,
		`<emphasis level="moderate">1</emphasis> means yes.`,
		`<emphasis level="moderate">2</emphasis> means no.`,
	}
}

func (e *DefaultEngine) actionURL(reservationID, stage string) string {
	return fmt.Sprintf("%s/twilio/voice?token=%s&reservation_id=%s&stage=%s",
		e.PublicBaseURL,
		url.QueryEscape(e.WebhookToken),
		url.QueryEscape(reservationID),
		url.QueryEscape(stage),
	)
}
