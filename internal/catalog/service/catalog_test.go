package service_test

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokotrack/tokotrack-backend/internal/catalog/events"
	"github.com/tokotrack/tokotrack-backend/internal/catalog/repository"
	"github.com/tokotrack/tokotrack-backend/internal/catalog/service"
	"github.com/tokotrack/tokotrack-backend/pkg/errors"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
	"github.com/tokotrack/tokotrack-backend/pkg/messaging"
	"github.com/tokotrack/tokotrack-backend/pkg/testutil"
)

func newCatalogService(t *testing.T) (*service.CatalogService, *testutil.MockDB, *testutil.MockPublisher) {
	t.Helper()

	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })

	log := logger.New("test", "test")
	sink := testutil.NewMockPublisher()
	publisher := events.NewCatalogEventPublisherWithSink(sink, log)

	svc := service.NewCatalogService(
		repository.NewProductRepository(mockDB.Database()),
		repository.NewSupplierRepository(mockDB.Database()),
		publisher,
		log,
	)
	return svc, mockDB, sink
}

func productColumns() []string {
	return []string{
		"id", "sku", "name", "category", "description", "price", "quantity", "supplier_id",
		"created_at", "updated_at", "deleted_at",
	}
}

func productRow(id, sku, name string, quantity int) []driver.Value {
	now := time.Now()
	return []driver.Value{id, sku, name, nil, nil, 15000.0, quantity, nil, now, now, nil}
}

func TestCatalogService_CreateProduct(t *testing.T) {
	t.Run("created with healthy stock", func(t *testing.T) {
		svc, mockDB, sink := newCatalogService(t)

		now := time.Now()
		mockDB.ExpectQuery("INSERT INTO products").
			WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(now, now))

		product, err := svc.CreateProduct(context.Background(), &service.CreateProductRequest{
			SKU:      "SKU-0001",
			Name:     "Beras 5kg",
			Price:    75000,
			Quantity: 40,
		})
		require.NoError(t, err)

		assert.Equal(t, 40, product.Quantity)
		sink.AssertEventPublished(t, messaging.EventProductCreated)
		require.Len(t, sink.PublishedEvents, 1, "no low stock alert for healthy stock")
	})

	t.Run("created already below the threshold", func(t *testing.T) {
		svc, mockDB, sink := newCatalogService(t)

		now := time.Now()
		mockDB.ExpectQuery("INSERT INTO products").
			WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(now, now))

		_, err := svc.CreateProduct(context.Background(), &service.CreateProductRequest{
			SKU:      "SKU-0002",
			Name:     "Gula Pasir",
			Price:    15000,
			Quantity: 2,
		})
		require.NoError(t, err)

		sink.AssertEventPublished(t, messaging.EventProductCreated)
		sink.AssertEventPublished(t, messaging.EventStockLow)
	})

	t.Run("unknown supplier is rejected", func(t *testing.T) {
		svc, mockDB, sink := newCatalogService(t)

		mockDB.ExpectQuery("FROM suppliers").
			WithArgs("7f9c24e8-3b2a-4d1c-9e8f-1a2b3c4d5e6f").
			WillReturnRows(testutil.MockRows(
				"id", "name", "contact_name", "email", "phone", "address",
				"created_at", "updated_at", "deleted_at",
			))

		supplierID := "7f9c24e8-3b2a-4d1c-9e8f-1a2b3c4d5e6f"
		_, err := svc.CreateProduct(context.Background(), &service.CreateProductRequest{
			SKU:        "SKU-0003",
			Name:       "Minyak Goreng",
			Price:      30000,
			Quantity:   10,
			SupplierID: &supplierID,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrBadRequest))
		sink.AssertNoEventsPublished(t)
	})
}

func TestCatalogService_AdjustStock(t *testing.T) {
	t.Run("publishes the adjustment", func(t *testing.T) {
		svc, mockDB, sink := newCatalogService(t)

		mockDB.ExpectQuery("UPDATE products").
			WithArgs("p1", -5).
			WillReturnRows(testutil.MockRows("quantity").AddRow(15))
		mockDB.ExpectQuery("FROM products").
			WithArgs("p1").
			WillReturnRows(testutil.MockRows(productColumns()...).
				AddRow(productRow("p1", "SKU-0001", "Beras 5kg", 15)...))

		product, err := svc.AdjustStock(context.Background(), "p1", &service.AdjustStockRequest{
			Delta:  -5,
			Reason: "sale",
		})
		require.NoError(t, err)

		assert.Equal(t, 15, product.Quantity)
		sink.AssertEventPublished(t, messaging.EventStockAdjusted)
		require.Len(t, sink.PublishedEvents, 1)

		payload, ok := sink.PublishedEvents[0].Payload.(messaging.StockAdjustedEvent)
		require.True(t, ok)
		assert.Equal(t, -5, payload.Adjustment)
		assert.Equal(t, 15, payload.NewQuantity)
		assert.Equal(t, "sale", payload.Reason)
	})

	t.Run("crossing the threshold raises a low stock alert", func(t *testing.T) {
		svc, mockDB, sink := newCatalogService(t)

		mockDB.ExpectQuery("UPDATE products").
			WithArgs("p1", -8).
			WillReturnRows(testutil.MockRows("quantity").AddRow(4))
		mockDB.ExpectQuery("FROM products").
			WithArgs("p1").
			WillReturnRows(testutil.MockRows(productColumns()...).
				AddRow(productRow("p1", "SKU-0001", "Beras 5kg", 4)...))

		_, err := svc.AdjustStock(context.Background(), "p1", &service.AdjustStockRequest{Delta: -8})
		require.NoError(t, err)

		sink.AssertEventPublished(t, messaging.EventStockAdjusted)
		sink.AssertEventPublished(t, messaging.EventStockLow)

		for _, e := range sink.PublishedEvents {
			if low, ok := e.Payload.(messaging.StockLowEvent); ok {
				assert.Equal(t, 4, low.Quantity)
				assert.Equal(t, repository.LowStockThreshold, low.Threshold)
			}
		}
	})
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	svc, mockDB, sink := newCatalogService(t)

	mockDB.ExpectQuery("FROM products").
		WithArgs("p1").
		WillReturnRows(testutil.MockRows(productColumns()...).
			AddRow(productRow("p1", "SKU-0001", "Beras 5kg", 12)...))
	mockDB.ExpectExec("UPDATE products SET deleted_at").
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.DeleteProduct(context.Background(), "p1"))

	sink.AssertEventPublished(t, messaging.EventProductDeleted)

	require.Len(t, sink.PublishedEvents, 1)
	payload, ok := sink.PublishedEvents[0].Payload.(messaging.ProductDeletedEvent)
	require.True(t, ok)
	assert.Equal(t, "SKU-0001", payload.SKU)
}
