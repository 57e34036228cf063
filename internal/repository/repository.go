package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue data access.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// ValidateProductsExist checks if all provided product IDs exist in the database.
	// Returns error if any product ID does not exist.
	ValidateProductsExist(ctx context.Context, ids []uuid.UUID) error

	// DecrementStock reduces a product's stock by quantity within the
	// provided transaction, clamping at zero.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) error

	// ListCategories retrieves all categories.
	ListCategories(ctx context.Context) ([]model.Category, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	// Returns nil order when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetForUpdate retrieves an order and its items within the provided
	// transaction, row-locking the order until the transaction ends.
	// Returns nil order when not found.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// List retrieves orders, newest first. When ownedBy is non-nil, only
	// that user's orders are returned; the filter lives in SQL, not in
	// presentation code.
	List(ctx context.Context, ownedBy *uuid.UUID) ([]model.Order, error)

	// UpdateStatus sets an order's status. Returns model.ErrOrderNotFound
	// if no such order exists.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error

	// SetSessionID stores the external checkout session id on the order,
	// overwriting any previous session.
	SetSessionID(ctx context.Context, id uuid.UUID, sessionID string) error

	// MarkPaid transitions the order to paid within the provided
	// transaction, recording the payment timestamp and external payment id.
	MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, paymentID string, paidAt time.Time) error
}
