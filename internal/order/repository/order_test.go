package repository_test

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokotrack/tokotrack-backend/internal/order/repository"
	"github.com/tokotrack/tokotrack-backend/pkg/errors"
	"github.com/tokotrack/tokotrack-backend/pkg/testutil"
)

func TestValidStatus(t *testing.T) {
	assert.True(t, repository.ValidStatus("Pending"))
	assert.True(t, repository.ValidStatus("Processing"))
	assert.True(t, repository.ValidStatus("Completed"))
	assert.True(t, repository.ValidStatus("Cancelled"))

	assert.False(t, repository.ValidStatus("pending"))
	assert.False(t, repository.ValidStatus("Shipped"))
	assert.False(t, repository.ValidStatus(""))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{repository.StatusPending, repository.StatusProcessing, true},
		{repository.StatusPending, repository.StatusCancelled, true},
		{repository.StatusPending, repository.StatusCompleted, false},
		{repository.StatusProcessing, repository.StatusCompleted, true},
		{repository.StatusProcessing, repository.StatusCancelled, true},
		{repository.StatusProcessing, repository.StatusPending, false},
		{repository.StatusCompleted, repository.StatusPending, false},
		{repository.StatusCompleted, repository.StatusProcessing, false},
		{repository.StatusCompleted, repository.StatusCancelled, false},
		{repository.StatusCancelled, repository.StatusPending, false},
		{repository.StatusCancelled, repository.StatusProcessing, false},
		{repository.StatusCancelled, repository.StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+" to "+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.allowed, repository.CanTransition(tt.from, tt.to))
		})
	}
}

func orderColumns() []string {
	return []string{"id", "customer_name", "status", "total", "order_date", "created_at", "updated_at", "deleted_at"}
}

func orderRow(id, status string, orderDate time.Time) []driver.Value {
	now := time.Now()
	return []driver.Value{id, "Customer " + id, status, 100000.0, orderDate, now, now, nil}
}

func TestOrderRepository_Create(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewOrderRepository(mockDB.Database())

	now := time.Now()
	mockDB.ExpectQuery("INSERT INTO orders").
		WithArgs(testutil.AnyUUID{}, "Ibu Siti", repository.StatusPending, 250000.0, testutil.AnyTime{}).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(now, now))

	order := &repository.Order{
		CustomerName: "Ibu Siti",
		Total:        250000,
	}
	require.NoError(t, repo.Create(context.Background(), order))

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, repository.StatusPending, order.Status, "new orders default to Pending")
	assert.False(t, order.OrderDate.IsZero())
	mockDB.ExpectationsWereMet(t)
}

func TestOrderRepository_Recent(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewOrderRepository(mockDB.Database())

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	mockDB.ExpectQuery("ORDER BY order_date DESC").
		WithArgs(5).
		WillReturnRows(testutil.MockRows(orderColumns()...).
			AddRow(orderRow("o3", repository.StatusPending, base)...).
			AddRow(orderRow("o2", repository.StatusCompleted, base.Add(-time.Hour))...).
			AddRow(orderRow("o1", repository.StatusCompleted, base.Add(-2*time.Hour))...))

	orders, err := repo.Recent(context.Background(), 5)
	require.NoError(t, err)

	require.Len(t, orders, 3)
	assert.Equal(t, "o3", orders[0].ID)
	assert.Equal(t, "o1", orders[2].ID)
	mockDB.ExpectationsWereMet(t)
}

func TestOrderRepository_UpdateStatus_NotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewOrderRepository(mockDB.Database())

	mockDB.ExpectExec("UPDATE orders SET status").
		WithArgs("missing", repository.StatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", repository.StatusProcessing)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestOrderRepository_CountByStatus(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewOrderRepository(mockDB.Database())

	mockDB.ExpectQuery("SELECT COUNT").
		WithArgs(repository.StatusPending).
		WillReturnRows(testutil.MockRows("count").AddRow(7))

	count, err := repo.CountByStatus(context.Background(), repository.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}
