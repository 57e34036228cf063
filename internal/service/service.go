package service

import (
	"context"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/payment"

	"github.com/google/uuid"
)

// CatalogService defines read operations over the product catalogue.
type CatalogService interface {
	// GetProducts retrieves products with pagination.
	GetProducts(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetProduct retrieves a single product by ID.
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetCategories retrieves all categories.
	GetCategories(ctx context.Context) ([]model.Category, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// Create creates a new order in pending status for the caller.
	// Stock is not touched at creation; it is decremented when payment is
	// confirmed.
	Create(ctx context.Context, caller auth.Identity, req *model.OrderRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order. The caller must own the order or hold
	// the admin role.
	GetByID(ctx context.Context, caller auth.Identity, id uuid.UUID) (*model.OrderResponse, error)

	// List retrieves the caller's orders, or all orders for admins.
	List(ctx context.Context, caller auth.Identity) ([]model.Order, error)

	// SetStatus sets an order's status. Admin only; any status is
	// reachable from any other.
	SetStatus(ctx context.Context, caller auth.Identity, id uuid.UUID, status model.OrderStatus) error
}

// PaymentService starts external checkout sessions for pending orders.
type PaymentService interface {
	// CreateSession creates a checkout session with the external provider
	// and stores its id on the order. The caller must own the order or be
	// admin, and the order must be pending.
	CreateSession(ctx context.Context, caller auth.Identity, orderID uuid.UUID) (*model.CheckoutSession, error)
}

// ReconcileService applies verified payment confirmations to orders and
// inventory, exactly once.
type ReconcileService interface {
	// ApplyPayment applies a verified checkout-completed event: the order
	// transitions to paid and each item's stock is decremented, atomically.
	// Replays of an already-applied event succeed without mutating state.
	ApplyPayment(ctx context.Context, event *payment.Event) error
}
