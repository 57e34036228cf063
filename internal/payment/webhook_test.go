package payment

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/model"
)

const webhookSecret = "whsec_test_secret"

func checkoutPayload(orderID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_123",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_456",
				"payment_intent": "pi_789",
				"metadata": {"order_id": %q}
			}
		}
	}`, orderID))
}

func TestVerifyWebhook(t *testing.T) {
	payload := checkoutPayload("a1b2c3d4-0000-0000-0000-000000000000")
	header := SignPayload(payload, webhookSecret, time.Now())

	event, err := VerifyWebhook(payload, header, webhookSecret)

	require.NoError(t, err)
	assert.Equal(t, "evt_123", event.ID)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "cs_test_456", event.Data.Object.ID)
	assert.Equal(t, "pi_789", event.Data.Object.PaymentIntent)
	assert.Equal(t, "a1b2c3d4-0000-0000-0000-000000000000", event.Data.Object.Metadata["order_id"])
}

func TestVerifyWebhook_WrongSecret(t *testing.T) {
	payload := checkoutPayload("a1b2c3d4-0000-0000-0000-000000000000")
	header := SignPayload(payload, "whsec_other", time.Now())

	_, err := VerifyWebhook(payload, header, webhookSecret)

	assert.ErrorIs(t, err, model.ErrInvalidSignature)
}

func TestVerifyWebhook_TamperedPayload(t *testing.T) {
	payload := checkoutPayload("a1b2c3d4-0000-0000-0000-000000000000")
	header := SignPayload(payload, webhookSecret, time.Now())

	tampered := checkoutPayload("ffffffff-0000-0000-0000-000000000000")
	_, err := VerifyWebhook(tampered, header, webhookSecret)

	assert.ErrorIs(t, err, model.ErrInvalidSignature)
}

func TestVerifyWebhook_StaleTimestamp(t *testing.T) {
	payload := checkoutPayload("a1b2c3d4-0000-0000-0000-000000000000")
	signedAt := time.Now().Add(-10 * time.Minute)
	header := SignPayload(payload, webhookSecret, signedAt)

	_, err := verifyWebhookAt(payload, header, webhookSecret, DefaultTolerance, time.Now())

	assert.ErrorIs(t, err, model.ErrInvalidSignature)
}

func TestVerifyWebhook_MalformedHeader(t *testing.T) {
	payload := checkoutPayload("a1b2c3d4-0000-0000-0000-000000000000")

	for _, header := range []string{
		"",
		"t=notanumber,v1=deadbeef",
		"v1=deadbeef",
		fmt.Sprintf("t=%d", time.Now().Unix()),
	} {
		_, err := VerifyWebhook(payload, header, webhookSecret)
		assert.ErrorIs(t, err, model.ErrInvalidSignature, "header %q", header)
	}
}

func TestVerifyWebhook_SecondSignatureAccepted(t *testing.T) {
	// During secret rotation the provider sends a signature per active secret.
	payload := checkoutPayload("a1b2c3d4-0000-0000-0000-000000000000")
	valid := SignPayload(payload, webhookSecret, time.Now())
	header := valid + ",v1=0000000000000000000000000000000000000000000000000000000000000000"

	_, err := VerifyWebhook(payload, header, webhookSecret)

	assert.NoError(t, err)
}

func TestVerifyWebhook_ValidSignatureGarbageBody(t *testing.T) {
	payload := []byte("not json at all")
	header := SignPayload(payload, webhookSecret, time.Now())

	_, err := VerifyWebhook(payload, header, webhookSecret)

	assert.ErrorIs(t, err, model.ErrMalformedPayload)
}

func TestVerifyWebhook_MissingEventType(t *testing.T) {
	payload := []byte(`{"id": "evt_123"}`)
	header := SignPayload(payload, webhookSecret, time.Now())

	_, err := VerifyWebhook(payload, header, webhookSecret)

	assert.ErrorIs(t, err, model.ErrMalformedPayload)
}
