package repository_test

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokotrack/tokotrack-backend/internal/catalog/repository"
	"github.com/tokotrack/tokotrack-backend/pkg/errors"
	"github.com/tokotrack/tokotrack-backend/pkg/testutil"
)

func TestProduct_IsLowStock(t *testing.T) {
	tests := []struct {
		quantity int
		low      bool
	}{
		{0, true},
		{1, true},
		{9, true},
		{10, false},
		{11, false},
		{100, false},
	}

	for _, tt := range tests {
		p := &repository.Product{Quantity: tt.quantity}
		assert.Equal(t, tt.low, p.IsLowStock(), "quantity %d", tt.quantity)
	}
}

func TestProductRepository_AdjustStock(t *testing.T) {
	t.Run("applies the delta and returns the new quantity", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()

		repo := repository.NewProductRepository(mockDB.Database())

		mockDB.ExpectQuery("UPDATE products").
			WithArgs("p1", -3).
			WillReturnRows(testutil.MockRows("quantity").AddRow(7))

		quantity, err := repo.AdjustStock(context.Background(), "p1", -3)
		require.NoError(t, err)
		assert.Equal(t, 7, quantity)
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("unknown product", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()

		repo := repository.NewProductRepository(mockDB.Database())

		mockDB.ExpectQuery("UPDATE products").
			WithArgs("missing", 1).
			WillReturnRows(testutil.MockRows("quantity"))

		_, err := repo.AdjustStock(context.Background(), "missing", 1)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("negative result is rejected by the check constraint", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()

		repo := repository.NewProductRepository(mockDB.Database())

		mockDB.ExpectQuery("UPDATE products").
			WithArgs("p1", -50).
			WillReturnError(&pq.Error{Code: "23514", Constraint: "products_quantity_non_negative"})

		_, err := repo.AdjustStock(context.Background(), "p1", -50)
		require.Error(t, err)

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		assert.Contains(t, appErr.Details, "quantity")
	})
}

func TestProductRepository_Create_DuplicateSKU(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewProductRepository(mockDB.Database())

	mockDB.ExpectQuery("INSERT INTO products").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "products_sku_unique"})

	err := repo.Create(context.Background(), &repository.Product{
		SKU:  "SKU-0001",
		Name: "Beras 5kg",
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestProductRepository_CountLowStock(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewProductRepository(mockDB.Database())

	mockDB.ExpectQuery("SELECT COUNT").
		WithArgs(repository.LowStockThreshold).
		WillReturnRows(testutil.MockRows("count").AddRow(4))

	count, err := repo.CountLowStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
