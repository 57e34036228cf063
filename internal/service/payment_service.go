package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// paymentService implements PaymentService.
type paymentService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	client      payment.Client
	frontendURL string
	logger      zerolog.Logger
}

// NewPaymentService creates a new payment service. frontendURL is the base
// for post-payment redirect targets.
func NewPaymentService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	client payment.Client,
	frontendURL string,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		client:      client,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger.With().Str("service", "payment").Logger(),
	}
}

// CreateSession creates an external checkout session for a pending order.
// Line items use the product's price and description at session-creation
// time, not at order creation. Recreating a session simply overwrites the
// stored session id, so provider failures are safe to retry.
func (s *paymentService) CreateSession(ctx context.Context, caller auth.Identity, orderID uuid.UUID) (*model.CheckoutSession, error) {
	order, items, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if !auth.CanAccess(caller, order.UserID) {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("caller_id", caller.UserID.String()).
			Msg("caller does not own order")
		return nil, model.ErrForbidden
	}

	if order.Status != model.StatusPending {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("status", string(order.Status)).
			Msg("order is not payable")
		return nil, model.ErrOrderNotPayable
	}

	productIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to retrieve product details")
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lineItems := make([]payment.LineItem, 0, len(items))
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, model.ErrProductNotFound
		}
		lineItems = append(lineItems, payment.LineItem{
			Name:        p.Name,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			UnitAmount:  int64(math.Round(p.Price * 100)),
			Quantity:    item.Quantity,
		})
	}

	session, err := s.client.CreateCheckoutSession(ctx, &payment.SessionParams{
		LineItems:         lineItems,
		Currency:          "usd",
		SuccessURL:        s.frontendURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         s.frontendURL + "/payment/cancel",
		ClientReferenceID: order.ID.String(),
		Metadata:          map[string]string{"order_id": order.ID.String()},
	})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("checkout session creation failed")
		return nil, err
	}

	if err := s.orderRepo.SetSessionID(ctx, order.ID, session.ID); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to persist session id")
		return nil, fmt.Errorf("failed to persist session id: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("session_id", session.ID).
		Msg("checkout session created")

	return &model.CheckoutSession{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}
