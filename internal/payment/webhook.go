package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"storefront/internal/model"
)

// EventCheckoutCompleted is the event type applied by reconciliation.
// Other event types are acknowledged and dropped.
const EventCheckoutCompleted = "checkout.session.completed"

// DefaultTolerance bounds how stale a signed timestamp may be before the
// signature is rejected as a potential replay.
const DefaultTolerance = 5 * time.Minute

// Event is a verified webhook event from the payment provider.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData wraps the event's object payload.
type EventData struct {
	Object SessionObject `json:"object"`
}

// SessionObject is the checkout session carried by a completed-checkout
// event. Metadata carries the order id set at session creation.
type SessionObject struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

// VerifyWebhook validates the signature header over the raw payload and
// parses the event. This is the sole trust boundary for inbound payment
// confirmations: it must succeed before any state is read or mutated.
//
// The header carries a unix timestamp and one or more HMAC-SHA256
// signatures over "<timestamp>.<payload>":
//
//	t=1712345678,v1=5257a869e7...
func VerifyWebhook(payload []byte, sigHeader, secret string) (*Event, error) {
	return verifyWebhookAt(payload, sigHeader, secret, DefaultTolerance, time.Now())
}

func verifyWebhookAt(payload []byte, sigHeader, secret string, tolerance time.Duration, now time.Time) (*Event, error) {
	var timestamp int64 = -1
	var signatures []string

	for _, part := range strings.Split(sigHeader, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, model.ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, value)
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return nil, model.ErrInvalidSignature
	}

	if now.Sub(time.Unix(timestamp, 0)) > tolerance {
		return nil, model.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	matched := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			matched = true
		}
	}
	if !matched {
		return nil, model.ErrInvalidSignature
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, model.ErrMalformedPayload
	}
	if event.Type == "" {
		return nil, model.ErrMalformedPayload
	}

	return &event, nil
}

// SignPayload produces a signature header VerifyWebhook accepts, for tests
// and local replay tooling.
func SignPayload(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}
