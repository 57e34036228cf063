package model

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeInvalidOrderState = "INVALID_ORDER_STATE"
	ErrCodeOrderNotPayable   = "ORDER_NOT_PAYABLE"
	ErrCodeInvalidSignature  = "INVALID_SIGNATURE"
	ErrCodeMalformedPayload  = "MALFORMED_PAYLOAD"
	ErrCodePaymentProvider   = "PAYMENT_PROVIDER_ERROR"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business-logic failure carrying a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidStatus     = NewDomainError(ErrCodeInvalidStatus, "Unknown order status")
	ErrInvalidOrderState = NewDomainError(ErrCodeInvalidOrderState, "Order is not in a state that accepts this payment")
	ErrOrderNotPayable   = NewDomainError(ErrCodeOrderNotPayable, "This order cannot be paid")
	ErrInvalidSignature  = NewDomainError(ErrCodeInvalidSignature, "Webhook signature verification failed")
	ErrMalformedPayload  = NewDomainError(ErrCodeMalformedPayload, "Webhook payload could not be parsed")
	ErrForbidden         = NewDomainError(ErrCodeForbidden, "Access to this resource is forbidden")
)
