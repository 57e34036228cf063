package handler

import (
	"io"
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/payment"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxWebhookBody bounds how much of a webhook payload is read.
const maxWebhookBody = 1 << 20

// PaymentHandler handles checkout session creation and provider webhooks.
type PaymentHandler struct {
	payments      service.PaymentService
	reconciler    service.ReconcileService
	webhookSecret string
	logger        zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(
	payments service.PaymentService,
	reconciler service.ReconcileService,
	webhookSecret string,
	logger zerolog.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		payments:      payments,
		reconciler:    reconciler,
		webhookSecret: webhookSecret,
		logger:        logger.With().Str("handler", "payment").Logger(),
	}
}

// CreateSession handles POST /api/payment/create/{orderId} requests.
func (h *PaymentHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	session, err := h.payments.CreateSession(r.Context(), caller, orderID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Webhook handles POST /api/payment/webhook requests. The endpoint is
// unauthenticated at the transport level; trust comes solely from the
// signature over the raw payload, verified before anything else happens.
// It is safe to call repeatedly with the same payload.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body", h.logger)
		return
	}

	event, err := payment.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		// Potential security event: unsigned or tampered payload
		h.logger.Warn().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Msg("webhook verification failed")
		writeDomainError(w, err, h.logger)
		return
	}

	if event.Type != payment.EventCheckoutCompleted {
		h.logger.Debug().
			Str("event_id", event.ID).
			Str("event_type", event.Type).
			Msg("ignoring webhook event type")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if err := h.reconciler.ApplyPayment(r.Context(), event); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	// Covers both first application and benign duplicate deliveries
	writeJSON(w, http.StatusOK, map[string]string{"status": "handled"})
}
