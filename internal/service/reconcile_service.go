package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/event"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// dedupTTL bounds how long an applied event id is remembered in the
// fast-path cache. The database check remains authoritative afterwards.
const dedupTTL = 48 * time.Hour

// reconcileService implements ReconcileService. All mutations for one
// event happen in a single transaction behind a row lock on the order, and
// the idempotency check runs inside that transaction, so two concurrent
// deliveries of the same event cannot both decrement stock.
type reconcileService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	publisher   event.Publisher
	redis       *redis.Client // optional dedup fast path; may be nil
	logger      zerolog.Logger
	now         func() time.Time
}

// NewReconcileService creates a new reconciliation service. redisClient
// may be nil, disabling the dedup fast path.
func NewReconcileService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	publisher event.Publisher,
	redisClient *redis.Client,
	logger zerolog.Logger,
) ReconcileService {
	return &reconcileService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		redis:       redisClient,
		logger:      logger.With().Str("service", "reconcile").Logger(),
		now:         time.Now,
	}
}

// ApplyPayment applies a verified checkout-completed event to the order it
// references and to inventory.
func (s *reconcileService) ApplyPayment(ctx context.Context, ev *payment.Event) (err error) {
	orderID, err := orderIDFromEvent(ev)
	if err != nil {
		s.logger.Warn().Err(err).Str("event_id", ev.ID).Msg("event carries no usable order id")
		return model.ErrMalformedPayload
	}

	logger := s.logger.With().
		Str("event_id", ev.ID).
		Str("order_id", orderID.String()).
		Logger()

	// Fast path: an event id we have already applied. Best effort only;
	// the in-transaction status check below is the real safeguard.
	if s.redis != nil && ev.ID != "" {
		key := dedupKey(ev.ID)
		if n, redisErr := s.redis.Exists(ctx, key).Result(); redisErr == nil && n > 0 {
			logger.Info().Msg("event already applied, skipping")
			return nil
		}
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to apply payment: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// Locks the order row: concurrent deliveries for the same order
	// serialise here.
	order, items, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load order")
		return fmt.Errorf("failed to apply payment: %w", err)
	}

	if order == nil {
		err = model.ErrOrderNotFound
		logger.Warn().Msg("webhook references unknown order")
		return err
	}

	// Idempotent replay: the provider may deliver the same event more
	// than once. An already-paid order is a successful no-op.
	if order.Status == model.StatusPaid {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		s.rememberEvent(ctx, ev.ID)
		logger.Info().Msg("order already paid, ignoring duplicate delivery")
		return nil
	}

	if order.Status != model.StatusPending {
		err = model.ErrInvalidOrderState
		logger.Warn().Str("status", string(order.Status)).Msg("payment received for non-pending order")
		return err
	}

	paidAt := s.now()
	if err = s.orderRepo.MarkPaid(ctx, tx, order.ID, ev.Data.Object.PaymentIntent, paidAt); err != nil {
		logger.Error().Err(err).Msg("failed to mark order paid")
		return fmt.Errorf("failed to apply payment: %w", err)
	}

	for _, item := range items {
		if err = s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			logger.Error().
				Err(err).
				Str("product_id", item.ProductID.String()).
				Msg("failed to decrement stock")
			return fmt.Errorf("failed to apply payment: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to apply payment: %w", err)
	}

	s.rememberEvent(ctx, ev.ID)

	s.publisher.Publish(ctx, event.TypeOrderPaid, order.ID, event.OrderPaidPayload{
		OrderID:   order.ID,
		PaymentID: ev.Data.Object.PaymentIntent,
	})

	logger.Info().
		Int("item_count", len(items)).
		Msg("payment applied, order paid and stock decremented")

	return nil
}

// rememberEvent records an applied event id in the dedup cache. Failures
// are ignored: the cache only short-circuits, it never decides.
func (s *reconcileService) rememberEvent(ctx context.Context, eventID string) {
	if s.redis == nil || eventID == "" {
		return
	}
	if err := s.redis.Set(ctx, dedupKey(eventID), "1", dedupTTL).Err(); err != nil {
		s.logger.Debug().Err(err).Str("event_id", eventID).Msg("failed to record event in dedup cache")
	}
}

// dedupKey builds the cache key for an applied webhook event.
func dedupKey(eventID string) string {
	return "dedup:payment:" + eventID
}

// orderIDFromEvent extracts the order id stamped into the session metadata
// at session-creation time.
func orderIDFromEvent(ev *payment.Event) (uuid.UUID, error) {
	raw, ok := ev.Data.Object.Metadata["order_id"]
	if !ok || raw == "" {
		return uuid.Nil, fmt.Errorf("missing order_id metadata")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid order_id metadata: %w", err)
	}
	return id, nil
}
