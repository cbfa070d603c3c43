package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Janrichter12345/freetables/config"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioCaller places outbound calls through the Twilio REST API. The voice
// and status-callback URLs carry the webhook token and the reservation id as
// the correlation token.
type TwilioCaller struct {
	hc *http.Client

	accountSID    string
	authToken     string
	from          string
	publicBaseURL string
	webhookToken  string
}

// NewTwilioCaller constructs a caller from the application configuration.
func NewTwilioCaller() *TwilioCaller {
	return &TwilioCaller{
		hc:            &http.Client{Timeout: 10 * time.Second},
		accountSID:    config.AppConfig.TwilioAccountSID,
		authToken:     config.AppConfig.TwilioAuthToken,
		from:          config.AppConfig.TwilioFromNumber,
		publicBaseURL: config.AppConfig.PublicBaseURL,
		webhookToken:  config.AppConfig.TwilioWebhookToken,
	}
}

func (t *TwilioCaller) PlaceCall(ctx context.Context, to, reservationID string) (*CallRef, error) {
	voiceURL := fmt.Sprintf("%s/twilio/voice?token=%s&reservation_id=%s",
		t.publicBaseURL, url.QueryEscape(t.webhookToken), url.QueryEscape(reservationID))
	statusURL := fmt.Sprintf("%s/twilio/call-status?token=%s&reservation_id=%s",
		t.publicBaseURL, url.QueryEscape(t.webhookToken), url.QueryEscape(reservationID))

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.from)
	form.Set("Url", voiceURL)
	form.Set("Method", http.MethodPost)
	form.Set("StatusCallback", statusURL)
	form.Set("StatusCallbackMethod", http.MethodPost)
	form.Set("StatusCallbackEvent", "completed")

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls.json", twilioAPIBase, t.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio call request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &apiErr)
		if apiErr.Message != "" {
			return nil, fmt.Errorf("twilio call failed: %s (status=%d)", apiErr.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("twilio call failed (status=%d)", resp.StatusCode)
	}

	var call struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &call); err != nil {
		return nil, fmt.Errorf("failed to decode twilio response: %w", err)
	}
	return &CallRef{SID: call.SID, Status: call.Status}, nil
}
