package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	tableRepo "github.com/Janrichter12345/freetables/database/repository/table"
	"github.com/Janrichter12345/freetables/models"
	"github.com/Janrichter12345/freetables/services/voice"
	"github.com/Janrichter12345/freetables/testutil"
)

type fakeCaller struct {
	mu     sync.Mutex
	fail   bool
	dialed []string
}

func (f *fakeCaller) PlaceCall(ctx context.Context, to, reservationID string) (*voice.CallRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("provider unavailable")
	}
	f.dialed = append(f.dialed, to)
	return &voice.CallRef{SID: "CA-" + reservationID, Status: "queued"}, nil
}

type testEnv struct {
	svc          *DefaultReservationService
	reservations *testutil.MemReservationRepo
	tables       *testutil.MemTableRepo
	caller       *fakeCaller
}

func newTestEnv() *testEnv {
	tables := testutil.NewMemTableRepo(
		models.Table{ID: "t1", RestaurantID: "r1", Seats: 4, Status: models.TableFree},
		models.Table{ID: "t2", RestaurantID: "r1", Seats: 2, Status: models.TableFree},
		models.Table{ID: "t-other", RestaurantID: "r2", Seats: 4, Status: models.TableFree},
	)
	reservations := testutil.NewMemReservationRepo()
	restaurants := testutil.NewMemRestaurantRepo(
		models.Restaurant{ID: "r1", Name: "Luigi", Phone: "+15550100"},
		models.Restaurant{ID: "r3", Name: "Silent Place", Phone: ""},
	)
	caller := &fakeCaller{}
	return &testEnv{
		svc: &DefaultReservationService{
			Reservations: reservations,
			Tables:       tables,
			Restaurants:  restaurants,
			Caller:       caller,
			Logger:       zap.NewNop(),
		},
		reservations: reservations,
		tables:       tables,
		caller:       caller,
	}
}

func validInput(userID string) CreateInput {
	return CreateInput{
		RestaurantID: "r1",
		TableID:      "t1",
		ReservedFor:  "Maria",
		Seats:        4,
		EtaMinutes:   12,
		UserID:       userID,
	}
}

func TestCreateClaimsTableAndPlacesCall(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	result, err := env.svc.Create(ctx, validInput("u1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if result.ReservationID == "" || result.CallSID == "" {
		t.Fatalf("incomplete result: %+v", result)
	}
	ttl := time.Until(result.ExpiresAt)
	if ttl < 14*time.Minute || ttl > 16*time.Minute {
		t.Errorf("pending expiry %v outside the 15 minute window", ttl)
	}

	if got := env.tables.Status("t1"); got != models.TableRequested {
		t.Errorf("table status = %s, want requested", got)
	}
	res := env.reservations.Get(result.ReservationID)
	if res == nil || res.Status != models.ReservationPending {
		t.Fatalf("stored reservation = %+v, want pending", res)
	}
	if res.CallSID != result.CallSID || res.CallStatus != "queued" {
		t.Errorf("call metadata not stored: %+v", res)
	}
	if len(env.caller.dialed) != 1 || env.caller.dialed[0] != "+15550100" {
		t.Errorf("dialed = %v, want the restaurant's number", env.caller.dialed)
	}
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateInput)
		reason string
	}{
		{"blank name", func(in *CreateInput) { in.ReservedFor = "  " }, "missing_fields"},
		{"no table", func(in *CreateInput) { in.TableID = "" }, "missing_fields"},
		{"eta too low", func(in *CreateInput) { in.EtaMinutes = 0 }, "eta_minutes_must_be_1_to_20"},
		{"eta too high", func(in *CreateInput) { in.EtaMinutes = 21 }, "eta_minutes_must_be_1_to_20"},
		{"zero seats", func(in *CreateInput) { in.Seats = 0 }, "invalid_seats"},
	}
	for _, c := range cases {
		in := validInput("u1")
		c.mutate(&in)
		_, err := env.svc.Create(ctx, in)
		var verr ValidationError
		if !errors.As(err, &verr) || verr.Reason != c.reason {
			t.Errorf("%s: err = %v, want ValidationError(%s)", c.name, err, c.reason)
		}
	}

	if got := env.tables.Status("t1"); got != models.TableFree {
		t.Errorf("rejected requests must not touch the table, status = %s", got)
	}
}

func TestCreateRejectsUnknownRestaurant(t *testing.T) {
	env := newTestEnv()
	in := validInput("u1")
	in.RestaurantID = "nope"
	in.TableID = "t-other"

	_, err := env.svc.Create(context.Background(), in)
	if !errors.Is(err, ErrRestaurantNotFound) {
		t.Fatalf("err = %v, want ErrRestaurantNotFound", err)
	}
}

func TestCreateRejectsRestaurantWithoutPhone(t *testing.T) {
	env := newTestEnv()
	in := validInput("u1")
	in.RestaurantID = "r3"

	_, err := env.svc.Create(context.Background(), in)
	if !errors.Is(err, ErrMissingPhone) {
		t.Fatalf("err = %v, want ErrMissingPhone", err)
	}
	if got := env.tables.Status("t1"); got != models.TableFree {
		t.Errorf("table must stay free when no call can be placed, status = %s", got)
	}
}

func TestCreateTestNumberOverride(t *testing.T) {
	env := newTestEnv()
	env.svc.TestToNumber = "+15559999"

	if _, err := env.svc.Create(context.Background(), validInput("u1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(env.caller.dialed) != 1 || env.caller.dialed[0] != "+15559999" {
		t.Errorf("dialed = %v, want the override number", env.caller.dialed)
	}
}

func TestCreateRejectsClaimedTable(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.svc.Create(ctx, validInput("u1")); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := env.svc.Create(ctx, validInput("u2"))
	if !errors.Is(err, tableRepo.ErrNotAvailable) {
		t.Fatalf("err = %v, want ErrNotAvailable", err)
	}
}

func TestCreateRejectsTableFromOtherRestaurant(t *testing.T) {
	env := newTestEnv()
	in := validInput("u1")
	in.TableID = "t-other"

	_, err := env.svc.Create(context.Background(), in)
	if !errors.Is(err, tableRepo.ErrWrongRestaurant) {
		t.Fatalf("err = %v, want ErrWrongRestaurant", err)
	}
	if got := env.tables.Status("t-other"); got != models.TableFree {
		t.Errorf("mismatched claim must roll back to free, status = %s", got)
	}
}

func TestCreateCallFailureRollsBack(t *testing.T) {
	env := newTestEnv()
	env.caller.fail = true

	_, err := env.svc.Create(context.Background(), validInput("u1"))
	var cerr CallPlacementError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want CallPlacementError", err)
	}

	if got := env.tables.Status("t1"); got != models.TableFree {
		t.Errorf("table must be freed after call failure, status = %s", got)
	}
	// The record survives as failed so the diner's history can show it.
	rows := env.reservations.All()
	if len(rows) != 1 || rows[0].Status != models.ReservationFailed {
		t.Errorf("stored reservations = %+v, want a single failed record", rows)
	}
}

func TestConcurrentCreatesSingleWinner(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := validInput("user-" + string(rune('a'+i)))
			_, errs[i] = env.svc.Create(ctx, in)
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, tableRepo.ErrNotAvailable):
			lost++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("exactly one concurrent claim may win, got %d", won)
	}
	if lost != attempts-1 {
		t.Fatalf("losers = %d, want %d", lost, attempts-1)
	}
	if got := env.tables.Status("t1"); got != models.TableRequested {
		t.Errorf("winning claim must hold the table, status = %s", got)
	}
}

func TestCancel(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	result, err := env.svc.Create(ctx, validInput("u1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := env.svc.Cancel(ctx, result.ReservationID, "intruder"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign cancel err = %v, want ErrForbidden", err)
	}
	if err := env.svc.Cancel(ctx, "missing", "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing cancel err = %v, want ErrNotFound", err)
	}

	if err := env.svc.Cancel(ctx, result.ReservationID, "u1"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	res := env.reservations.Get(result.ReservationID)
	if res.Status != models.ReservationCancelled {
		t.Errorf("status = %s, want cancelled", res.Status)
	}
	if got := env.tables.Status("t1"); got != models.TableFree {
		t.Errorf("table status = %s, want free after cancel", got)
	}

	// Cancelling again is harmless.
	if err := env.svc.Cancel(ctx, result.ReservationID, "u1"); err != nil {
		t.Errorf("repeat Cancel failed: %v", err)
	}
}

func TestStatusesFiltersAndClaimsOwnerless(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	now := time.Now()

	seed := []models.Reservation{
		{ID: "mine", RestaurantID: "r1", TableID: "t1", UserID: "u1",
			ReservedFor: "Maria", Seats: 4, Status: models.ReservationAccepted, CreatedAt: now},
		{ID: "legacy", RestaurantID: "r1", TableID: "t2",
			ReservedFor: "Maria", Seats: 2, Status: models.ReservationPending, CreatedAt: now},
		{ID: "theirs", RestaurantID: "r1", TableID: "t2", UserID: "u2",
			ReservedFor: "Bob", Seats: 2, Status: models.ReservationPending, CreatedAt: now},
	}
	for i := range seed {
		if err := env.reservations.Insert(ctx, &seed[i]); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	items, err := env.svc.Statuses(ctx, []string{"mine", "legacy", "theirs", "ghost"}, "u1")
	if err != nil {
		t.Fatalf("Statuses failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected own + claimed legacy rows, got %d: %+v", len(items), items)
	}
	for _, it := range items {
		if it.ID == "theirs" {
			t.Error("another diner's reservation leaked into the view")
		}
		if it.RestaurantName != "Luigi" {
			t.Errorf("restaurant name not resolved on %s: %q", it.ID, it.RestaurantName)
		}
	}

	// The ownerless row is now permanently attached to the caller.
	if res := env.reservations.Get("legacy"); res.UserID != "u1" {
		t.Errorf("legacy reservation userId = %q, want u1", res.UserID)
	}
}

func TestStatusesEmptyInput(t *testing.T) {
	env := newTestEnv()
	items, err := env.svc.Statuses(context.Background(), nil, "u1")
	if err != nil {
		t.Fatalf("Statuses failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty result, got %+v", items)
	}
}
