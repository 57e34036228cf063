package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/auth"
	"storefront/internal/event"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	publisher   event.Publisher
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	publisher event.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Create creates a new order in pending status for the caller.
func (s *orderService) Create(ctx context.Context, caller auth.Identity, req *model.OrderRequest) (*model.OrderResponse, error) {
	// Validate request
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	// Extract product IDs and validate they exist
	productIDs := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		productIDs[i] = item.ProductID
	}

	if err := s.productRepo.ValidateProductsExist(ctx, productIDs); err != nil {
		s.logger.Warn().
			Int("product_count", len(productIDs)).
			Err(err).
			Msg("product validation failed")
		return nil, err
	}

	// Start transaction
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order := &model.Order{
		ID:              uuid.New(),
		UserID:          caller.UserID,
		Status:          model.StatusPending,
		CreatedAt:       time.Now(),
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Create order items
	orderItems := make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		orderItems[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(orderItems)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	// Commit transaction
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Retrieve product details for the response
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to retrieve product details")
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	total := model.TotalAmount(orderItems, products)

	s.publisher.Publish(ctx, event.TypeOrderCreated, order.ID, event.OrderCreatedPayload{
		OrderID: order.ID,
		UserID:  order.UserID,
		Total:   total,
	})

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", order.UserID.String()).
		Int("item_count", len(orderItems)).
		Msg("order created successfully")

	return &model.OrderResponse{
		Order:    *order,
		Items:    orderItems,
		Products: products,
		Total:    total,
	}, nil
}

// GetByID retrieves an order, enforcing ownership.
func (s *orderService) GetByID(ctx context.Context, caller auth.Identity, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	if !auth.CanAccess(caller, order.UserID) {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("caller_id", caller.UserID.String()).
			Msg("caller does not own order")
		return nil, model.ErrForbidden
	}

	// Extract product IDs
	productIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	// Retrieve product details
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to retrieve product details")
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	return &model.OrderResponse{
		Order:    *order,
		Items:    items,
		Products: products,
		Total:    model.TotalAmount(items, products),
	}, nil
}

// List retrieves the caller's orders; admins see every order. The
// ownership filter is applied at the data-access boundary.
func (s *orderService) List(ctx context.Context, caller auth.Identity) ([]model.Order, error) {
	var ownedBy *uuid.UUID
	if !caller.IsAdmin() {
		ownedBy = &caller.UserID
	}

	orders, err := s.orderRepo.List(ctx, ownedBy)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// SetStatus sets an order's status. Admin only. Beyond enum membership
// there is no transition validation: any status is reachable from any
// other, which is the documented escape hatch for manual intervention.
func (s *orderService) SetStatus(ctx context.Context, caller auth.Identity, id uuid.UUID, status model.OrderStatus) error {
	if !caller.IsAdmin() {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("caller_id", caller.UserID.String()).
			Msg("non-admin attempted status update")
		return model.ErrForbidden
	}

	if !status.IsValid() {
		return model.ErrInvalidStatus
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		if err == model.ErrOrderNotFound {
			return err
		}
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update status")
		return fmt.Errorf("failed to update status: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("status", string(status)).
		Msg("order status updated by admin")

	return nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return fmt.Errorf("order request is nil")
	}

	if len(req.Items) == 0 {
		return fmt.Errorf("order must contain at least one item")
	}

	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("item %d: product ID is required", i)
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID.String()).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}
