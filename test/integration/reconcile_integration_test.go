package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/event"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/service"
)

func checkoutCompletedEvent(eventID string, orderID uuid.UUID) *payment.Event {
	return &payment.Event{
		ID:   eventID,
		Type: payment.EventCheckoutCompleted,
		Data: payment.EventData{
			Object: payment.SessionObject{
				ID:            "cs_test_123",
				PaymentIntent: "pi_456",
				Metadata:      map[string]string{"order_id": orderID.String()},
			},
		},
	}
}

func TestReconcileService_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	svc := service.NewReconcileService(orderRepo, productRepo, event.NewNopPublisher(), nil, logger)

	ctx := context.Background()

	createPendingOrder := func(t *testing.T, items []model.OrderItem) uuid.UUID {
		t.Helper()

		tx, err := orderRepo.BeginTx(ctx)
		require.NoError(t, err)

		order := &model.Order{ID: uuid.New(), UserID: uuid.New(), Status: model.StatusPending}
		require.NoError(t, orderRepo.CreateOrder(ctx, tx, order))
		for i := range items {
			items[i].ID = uuid.New()
			items[i].OrderID = order.ID
		}
		require.NoError(t, orderRepo.CreateOrderItems(ctx, tx, items))
		require.NoError(t, tx.Commit(ctx))
		return order.ID
	}

	t.Run("payment marks order paid and decrements stock", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		productA := SeedProduct(t, testDB.Pool, "Product A", 10.00, 5)
		productB := SeedProduct(t, testDB.Pool, "Product B", 20.00, 4)

		orderID := createPendingOrder(t, []model.OrderItem{
			{ProductID: productA, Quantity: 2},
			{ProductID: productB, Quantity: 1},
		})

		require.NoError(t, svc.ApplyPayment(ctx, checkoutCompletedEvent("evt_1", orderID)))

		order, _, err := orderRepo.GetByID(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPaid, order.Status)
		require.NotNil(t, order.StripePaymentID)
		assert.Equal(t, "pi_456", *order.StripePaymentID)
		assert.NotNil(t, order.PaymentDate)

		assert.Equal(t, 3, ProductStock(t, testDB.Pool, productA))
		assert.Equal(t, 3, ProductStock(t, testDB.Pool, productB))
	})

	t.Run("replayed delivery does not decrement stock twice", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		productID := SeedProduct(t, testDB.Pool, "Product A", 10.00, 5)
		orderID := createPendingOrder(t, []model.OrderItem{{ProductID: productID, Quantity: 2}})

		require.NoError(t, svc.ApplyPayment(ctx, checkoutCompletedEvent("evt_1", orderID)))
		require.NoError(t, svc.ApplyPayment(ctx, checkoutCompletedEvent("evt_1", orderID)))

		assert.Equal(t, 3, ProductStock(t, testDB.Pool, productID))
	})

	t.Run("concurrent deliveries decrement stock exactly once", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		productID := SeedProduct(t, testDB.Pool, "Product A", 10.00, 10)
		orderID := createPendingOrder(t, []model.OrderItem{{ProductID: productID, Quantity: 3}})

		const deliveries = 5
		var wg sync.WaitGroup
		errs := make([]error, deliveries)
		for i := 0; i < deliveries; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = svc.ApplyPayment(ctx, checkoutCompletedEvent(fmt.Sprintf("evt_%d", i), orderID))
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			assert.NoError(t, err, "delivery %d", i)
		}
		assert.Equal(t, 7, ProductStock(t, testDB.Pool, productID))
	})

	t.Run("oversold stock clamps at zero", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		productID := SeedProduct(t, testDB.Pool, "Product A", 10.00, 1)
		orderID := createPendingOrder(t, []model.OrderItem{{ProductID: productID, Quantity: 5}})

		require.NoError(t, svc.ApplyPayment(ctx, checkoutCompletedEvent("evt_1", orderID)))

		assert.Equal(t, 0, ProductStock(t, testDB.Pool, productID))
	})

	t.Run("cancelled order rejects payment", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		productID := SeedProduct(t, testDB.Pool, "Product A", 10.00, 5)
		orderID := createPendingOrder(t, []model.OrderItem{{ProductID: productID, Quantity: 1}})
		require.NoError(t, orderRepo.UpdateStatus(ctx, orderID, model.StatusCancelled))

		err := svc.ApplyPayment(ctx, checkoutCompletedEvent("evt_1", orderID))
		assert.ErrorIs(t, err, model.ErrInvalidOrderState)

		assert.Equal(t, 5, ProductStock(t, testDB.Pool, productID))
	})

	t.Run("unknown order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		err := svc.ApplyPayment(ctx, checkoutCompletedEvent("evt_1", uuid.New()))
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}
