package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Janrichter12345/freetables/services/voice"
)

const twimlContentType = "text/xml; charset=utf-8"

// VoiceHandler serves the provider-facing endpoints: the interactive voice
// legs and the call-status callback. Neither endpoint ever returns an error
// status: the provider cannot act on one and must not be kept retrying.
type VoiceHandler struct {
	Engine       voice.Engine
	Reconciler   voice.Reconciler
	WebhookToken string
}

// NewVoiceHandler constructs a VoiceHandler.
func NewVoiceHandler(engine voice.Engine, reconciler voice.Reconciler, webhookToken string) *VoiceHandler {
	return &VoiceHandler{Engine: engine, Reconciler: reconciler, WebhookToken: webhookToken}
}

func (h *VoiceHandler) tokenValid(c *gin.Context) bool {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" || h.WebhookToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.WebhookToken)) == 1
}

// VoiceLegHandler handles POST /twilio/voice. The stage marker in the query
// string is the only call state; digits arrive in the query or the form body.
func (h *VoiceHandler) VoiceLegHandler(c *gin.Context) {
	reservationID := strings.TrimSpace(c.Query("reservation_id"))
	if !h.tokenValid(c) || reservationID == "" {
		c.Data(http.StatusOK, twimlContentType, []byte(`<?xml version="1.0" encoding="UTF-8"?><Response><Hangup/></Response>`))
		return
	}

	digits := strings.TrimSpace(c.Query("Digits"))
	if digits == "" {
		digits = strings.TrimSpace(c.Query("digits"))
	}
	if digits == "" {
		digits = strings.TrimSpace(c.PostForm("Digits"))
	}
	if digits == "" {
		digits = strings.TrimSpace(c.PostForm("digits"))
	}

	doc := h.Engine.ServeLeg(c.Request.Context(), voice.LegRequest{
		ReservationID: reservationID,
		Stage:         strings.TrimSpace(c.Query("stage")),
		Digits:        digits,
	})

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, twimlContentType, []byte(doc))
}

// CallStatusHandler handles POST /twilio/call-status. It always acknowledges
// with 200: internal failures are recorded and swallowed.
func (h *VoiceHandler) CallStatusHandler(c *gin.Context) {
	reservationID := strings.TrimSpace(c.Query("reservation_id"))
	if !h.tokenValid(c) || reservationID == "" {
		c.String(http.StatusOK, "ok")
		return
	}

	callStatus := strings.TrimSpace(c.PostForm("CallStatus"))
	callSID := strings.TrimSpace(c.PostForm("CallSid"))

	h.Reconciler.HandleCallStatus(c.Request.Context(), reservationID, callSID, callStatus)

	c.String(http.StatusOK, "ok")
}
