package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusCancelled OrderStatus = "cancelled"
)

// IsValid reports whether s is a known order status. Admin status updates
// are gated on enum membership only; any status is reachable from any other.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Order represents a customer order.
type Order struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	UserID          uuid.UUID   `json:"userId" db:"user_id"`
	Status          OrderStatus `json:"status" db:"status"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	PaymentDate     *time.Time  `json:"paymentDate,omitempty" db:"payment_date"`
	StripeSessionID *string     `json:"stripeSessionId,omitempty" db:"stripe_session_id"`
	StripePaymentID *string     `json:"stripePaymentId,omitempty" db:"stripe_payment_id"`
	ShippingAddress string      `json:"shippingAddress" db:"shipping_address"`
	BillingAddress  string      `json:"billingAddress" db:"billing_address"`
}

// OrderItem represents a line item in an order. Items are created only as
// part of order creation and are deleted with their order.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	Items           []OrderItemRequest `json:"orderItems"`
	ShippingAddress string             `json:"shippingAddress"`
	BillingAddress  string             `json:"billingAddress"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order
	Items    []OrderItem `json:"orderItems"`
	Products []Product   `json:"products"`
	Total    float64     `json:"totalAmount"`
}

// StatusUpdateRequest is the body of an admin status patch.
type StatusUpdateRequest struct {
	Status OrderStatus `json:"status"`
}

// CheckoutSession is the result of starting an external payment session.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// TotalAmount computes the order total as the sum of current product price
// times quantity. The total is always derived at read time, never stored,
// so it cannot drift from price edits. Items referencing products absent
// from the slice contribute nothing.
func TotalAmount(items []OrderItem, products []Product) float64 {
	prices := make(map[uuid.UUID]float64, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}

	var total float64
	for _, item := range items {
		total += prices[item.ProductID] * float64(item.Quantity)
	}
	return total
}
