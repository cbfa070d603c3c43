package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Janrichter12345/freetables/services/voice"
)

type stubEngine struct {
	lastReq voice.LegRequest
	served  int
}

func (s *stubEngine) ServeLeg(ctx context.Context, req voice.LegRequest) string {
	s.lastReq = req
	s.served++
	return `<?xml version="1.0" encoding="UTF-8"?><Response><Say>hi</Say></Response>`
}

type stubReconciler struct {
	reservationID string
	callSID       string
	rawStatus     string
	handled       int
}

func (s *stubReconciler) HandleCallStatus(ctx context.Context, reservationID, callSID, rawStatus string) {
	s.reservationID = reservationID
	s.callSID = callSID
	s.rawStatus = rawStatus
	s.handled++
}

func newVoiceRouter() (*gin.Engine, *stubEngine, *stubReconciler) {
	gin.SetMode(gin.TestMode)
	engine := &stubEngine{}
	reconciler := &stubReconciler{}
	h := NewVoiceHandler(engine, reconciler, "secret")

	r := gin.New()
	r.POST("/twilio/voice", h.VoiceLegHandler)
	r.POST("/twilio/call-status", h.CallStatusHandler)
	return r, engine, reconciler
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVoiceLegRejectsBadToken(t *testing.T) {
	r, engine, _ := newVoiceRouter()

	w := postForm(r, "/twilio/voice?token=wrong&reservation_id=res-1", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, webhooks always answer 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<Hangup/>") {
		t.Errorf("bad token must hang up:\n%s", w.Body.String())
	}
	if engine.served != 0 {
		t.Error("engine must not run for an unauthenticated request")
	}
}

func TestVoiceLegPassesStageAndFormDigits(t *testing.T) {
	r, engine, _ := newVoiceRouter()

	form := url.Values{"Digits": {"1"}}
	w := postForm(r, "/twilio/voice?token=secret&reservation_id=res-1&stage=retry", form)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/xml") {
		t.Errorf("content type = %q, want text/xml", ct)
	}
	if engine.served != 1 {
		t.Fatalf("engine served %d legs, want 1", engine.served)
	}
	want := voice.LegRequest{ReservationID: "res-1", Stage: "retry", Digits: "1"}
	if engine.lastReq != want {
		t.Errorf("leg request = %+v, want %+v", engine.lastReq, want)
	}
}

func TestCallStatusAlwaysAcknowledges(t *testing.T) {
	r, _, reconciler := newVoiceRouter()

	// Missing token: acknowledged but not processed.
	w := postForm(r, "/twilio/call-status?reservation_id=res-1", url.Values{"CallStatus": {"completed"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if reconciler.handled != 0 {
		t.Error("reconciler must not run for an unauthenticated request")
	}

	// Valid token: the raw status and call sid flow through.
	form := url.Values{"CallStatus": {"no-answer"}, "CallSid": {"CA1"}}
	w = postForm(r, "/twilio/call-status?token=secret&reservation_id=res-1", form)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if reconciler.handled != 1 || reconciler.reservationID != "res-1" ||
		reconciler.callSID != "CA1" || reconciler.rawStatus != "no-answer" {
		t.Errorf("reconciler got %+v", reconciler)
	}
}
