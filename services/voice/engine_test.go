package voice

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Janrichter12345/freetables/models"
	"github.com/Janrichter12345/freetables/testutil"
)

const testReservationID = "res-1"

func newTestEngine() (*DefaultEngine, *testutil.MemReservationRepo, *testutil.MemTableRepo) {
	reservations := testutil.NewMemReservationRepo(models.Reservation{
		ID:           testReservationID,
		RestaurantID: "r1",
		TableID:      "t1",
		UserID:       "u1",
		ReservedFor:  "Maria",
		Seats:        4,
		EtaMinutes:   12,
		Status:       models.ReservationPending,
		CreatedAt:    time.Now(),
		ExpiresAt:    time.Now().Add(15 * time.Minute),
	})
	tables := testutil.NewMemTableRepo(models.Table{
		ID: "t1", RestaurantID: "r1", Seats: 4, Status: models.TableRequested,
	})
	engine := &DefaultEngine{
		Reservations:  reservations,
		Tables:        tables,
		Logger:        zap.NewNop(),
		PublicBaseURL: "https://api.example.com",
		WebhookToken:  "tok",
	}
	return engine, reservations, tables
}

func TestStartLegAnnouncesAndGathers(t *testing.T) {
	engine, _, _ := newTestEngine()

	doc := engine.ServeLeg(context.Background(), LegRequest{
		ReservationID: testReservationID,
		Stage:         StageStart,
	})

	for _, want := range []string{"<Gather", "Maria", "for 4 people", "about 12 minutes", "stage=retry"} {
		if !strings.Contains(doc, want) {
			t.Errorf("start leg missing %q:\n%s", want, doc)
		}
	}
}

func TestAcceptDigitConfirmsReservation(t *testing.T) {
	engine, reservations, tables := newTestEngine()

	doc := engine.ServeLeg(context.Background(), LegRequest{
		ReservationID: testReservationID,
		Stage:         StageRetry,
		Digits:        "1",
	})

	if !strings.Contains(doc, "confirmed") {
		t.Errorf("accept response should speak a confirmation:\n%s", doc)
	}
	res := reservations.Get(testReservationID)
	if res.Status != models.ReservationAccepted {
		t.Errorf("status = %s, want accepted", res.Status)
	}
	if res.RespondedAt == nil {
		t.Error("respondedAt must be set on acceptance")
	}
	if got := tables.Status("t1"); got != models.TableReserved {
		t.Errorf("table status = %s, want reserved", got)
	}
}

func TestDeclineDigitFreesTable(t *testing.T) {
	engine, reservations, tables := newTestEngine()

	doc := engine.ServeLeg(context.Background(), LegRequest{
		ReservationID: testReservationID,
		Stage:         StageRetry,
		Digits:        "2",
	})

	if !strings.Contains(doc, "declined") {
		t.Errorf("decline response should speak the decline:\n%s", doc)
	}
	if res := reservations.Get(testReservationID); res.Status != models.ReservationDeclined {
		t.Errorf("status = %s, want declined", res.Status)
	}
	if got := tables.Status("t1"); got != models.TableFree {
		t.Errorf("table status = %s, want free", got)
	}
}

func TestInvalidDigitFallsThroughToFinalStage(t *testing.T) {
	engine, reservations, _ := newTestEngine()

	doc := engine.ServeLeg(context.Background(), LegRequest{
		ReservationID: testReservationID,
		Stage:         StageRetry,
		Digits:        "9",
	})

	if !strings.Contains(doc, "<Gather") || !strings.Contains(doc, "stage=final") {
		t.Errorf("invalid digit must re-gather toward the final stage:\n%s", doc)
	}
	if res := reservations.Get(testReservationID); res.Status != models.ReservationPending {
		t.Errorf("status = %s, want still pending", res.Status)
	}
}

func TestFinalStageWithoutDigitResolvesNoResponse(t *testing.T) {
	engine, reservations, tables := newTestEngine()

	engine.ServeLeg(context.Background(), LegRequest{
		ReservationID: testReservationID,
		Stage:         StageFinal,
	})

	res := reservations.Get(testReservationID)
	if res.Status != models.ReservationNoResponse {
		t.Errorf("status = %s, want no_response", res.Status)
	}
	if got := tables.Status("t1"); got != models.TableFree {
		t.Errorf("table status = %s, want free", got)
	}
}

func TestFinalStageStillHonorsValidDigit(t *testing.T) {
	engine, reservations, tables := newTestEngine()

	engine.ServeLeg(context.Background(), LegRequest{
		ReservationID: testReservationID,
		Stage:         StageFinal,
		Digits:        "1",
	})

	if res := reservations.Get(testReservationID); res.Status != models.ReservationAccepted {
		t.Errorf("status = %s, want accepted", res.Status)
	}
	if got := tables.Status("t1"); got != models.TableReserved {
		t.Errorf("table status = %s, want reserved", got)
	}
}

func TestReplayedLegAfterOutcomeChangesNothing(t *testing.T) {
	engine, reservations, tables := newTestEngine()
	ctx := context.Background()

	engine.ServeLeg(ctx, LegRequest{ReservationID: testReservationID, Stage: StageRetry, Digits: "1"})

	// A duplicate delivery tries to flip the decision.
	doc := engine.ServeLeg(ctx, LegRequest{ReservationID: testReservationID, Stage: StageRetry, Digits: "2"})

	if !strings.Contains(doc, "already been processed") {
		t.Errorf("replay should speak the already-processed message:\n%s", doc)
	}
	if res := reservations.Get(testReservationID); res.Status != models.ReservationAccepted {
		t.Errorf("status = %s, replay must not overturn the outcome", res.Status)
	}
	if got := tables.Status("t1"); got != models.TableReserved {
		t.Errorf("table status = %s, replay must not free a reserved table", got)
	}
}

func TestUnknownReservationSpeaksError(t *testing.T) {
	engine, _, _ := newTestEngine()

	doc := engine.ServeLeg(context.Background(), LegRequest{ReservationID: "ghost", Stage: StageStart})

	if !strings.Contains(doc, "technical error") || !strings.Contains(doc, "<Hangup/>") {
		t.Errorf("unknown reservation must degrade to a spoken error:\n%s", doc)
	}
}

func TestGatherDocShape(t *testing.T) {
	doc := gatherDoc("https://api.example.com/twilio/voice?token=a&stage=retry", []string{"Hello."})

	for _, want := range []string{
		`numDigits="1"`,
		`timeout="8"`,
		`actionOnEmptyResult="true"`,
		`method="POST"`,
		"&amp;stage=retry",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("gather doc missing %q:\n%s", want, doc)
		}
	}
}
