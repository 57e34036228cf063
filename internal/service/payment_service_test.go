package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/model"
	"storefront/internal/payment"
)

const frontendURL = "http://localhost:5173"

func TestPaymentService_CreateSession(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	client := new(MockPaymentClient)

	caller := userIdentity()
	product := model.Product{ID: uuid.New(), Name: "Espresso Machine", Description: "15-bar pump", Price: 249.99}
	order := &model.Order{ID: uuid.New(), UserID: caller.UserID, Status: model.StatusPending}
	items := []model.OrderItem{{OrderID: order.ID, ProductID: product.ID, Quantity: 2}}

	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, items, nil)
	productRepo.On("GetByIDs", mock.Anything, []uuid.UUID{product.ID}).Return([]model.Product{product}, nil)

	var gotParams *payment.SessionParams
	client.On("CreateCheckoutSession", mock.Anything, mock.AnythingOfType("*payment.SessionParams")).
		Run(func(args mock.Arguments) {
			gotParams = args.Get(1).(*payment.SessionParams)
		}).
		Return(&payment.Session{ID: "cs_test_123", URL: "https://checkout.example.com/cs_test_123"}, nil)
	orderRepo.On("SetSessionID", mock.Anything, order.ID, "cs_test_123").Return(nil)

	svc := NewPaymentService(orderRepo, productRepo, client, frontendURL, zerolog.Nop())
	session, err := svc.CreateSession(context.Background(), caller, order.ID)

	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", session.SessionID)
	assert.Equal(t, "https://checkout.example.com/cs_test_123", session.URL)

	require.Len(t, gotParams.LineItems, 1)
	assert.Equal(t, "Espresso Machine", gotParams.LineItems[0].Name)
	assert.Equal(t, int64(24999), gotParams.LineItems[0].UnitAmount)
	assert.Equal(t, 2, gotParams.LineItems[0].Quantity)
	assert.Equal(t, order.ID.String(), gotParams.Metadata["order_id"])
	assert.Equal(t, frontendURL+"/payment/success?session_id={CHECKOUT_SESSION_ID}", gotParams.SuccessURL)
	assert.Equal(t, frontendURL+"/payment/cancel", gotParams.CancelURL)

	orderRepo.AssertExpectations(t)
}

func TestPaymentService_CreateSession_OrderNotFound(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	client := new(MockPaymentClient)

	id := uuid.New()
	orderRepo.On("GetByID", mock.Anything, id).Return(nil, nil, nil)

	svc := NewPaymentService(orderRepo, productRepo, client, frontendURL, zerolog.Nop())
	_, err := svc.CreateSession(context.Background(), userIdentity(), id)

	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestPaymentService_CreateSession_Forbidden(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	client := new(MockPaymentClient)

	order := &model.Order{ID: uuid.New(), UserID: uuid.New(), Status: model.StatusPending}
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, []model.OrderItem{}, nil)

	svc := NewPaymentService(orderRepo, productRepo, client, frontendURL, zerolog.Nop())
	_, err := svc.CreateSession(context.Background(), userIdentity(), order.ID)

	assert.ErrorIs(t, err, model.ErrForbidden)
	client.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func TestPaymentService_CreateSession_NotPayable(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	client := new(MockPaymentClient)

	caller := userIdentity()

	for _, status := range []model.OrderStatus{model.StatusPaid, model.StatusCancelled} {
		order := &model.Order{ID: uuid.New(), UserID: caller.UserID, Status: status}
		orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, []model.OrderItem{}, nil)

		svc := NewPaymentService(orderRepo, productRepo, client, frontendURL, zerolog.Nop())
		_, err := svc.CreateSession(context.Background(), caller, order.ID)

		assert.ErrorIs(t, err, model.ErrOrderNotPayable, "status %s", status)
	}

	client.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func TestPaymentService_CreateSession_ProviderError(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	client := new(MockPaymentClient)

	caller := userIdentity()
	product := model.Product{ID: uuid.New(), Name: "Product A", Price: 10.00}
	order := &model.Order{ID: uuid.New(), UserID: caller.UserID, Status: model.StatusPending}
	items := []model.OrderItem{{OrderID: order.ID, ProductID: product.ID, Quantity: 1}}

	providerErr := model.NewDomainError(model.ErrCodePaymentProvider, "provider rejected the request")

	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, items, nil)
	productRepo.On("GetByIDs", mock.Anything, []uuid.UUID{product.ID}).Return([]model.Product{product}, nil)
	client.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(nil, providerErr)

	svc := NewPaymentService(orderRepo, productRepo, client, frontendURL, zerolog.Nop())
	_, err := svc.CreateSession(context.Background(), caller, order.ID)

	assert.ErrorIs(t, err, providerErr)
	orderRepo.AssertNotCalled(t, "SetSessionID", mock.Anything, mock.Anything, mock.Anything)
}
