package handler_test

import (
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokotrack/tokotrack-backend/internal/order/handler"
	"github.com/tokotrack/tokotrack-backend/internal/order/repository"
	orderservice "github.com/tokotrack/tokotrack-backend/internal/order/service"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
	"github.com/tokotrack/tokotrack-backend/pkg/testutil"
)

func newOrderRouter(t *testing.T) (*chi.Mux, *testutil.MockDB) {
	t.Helper()

	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })

	log := logger.New("test", "test")
	svc := orderservice.NewOrderService(repository.NewOrderRepository(mockDB.Database()), nil, log)
	h := handler.NewOrderHandler(svc, log)

	r := chi.NewRouter()
	r.Get("/orders", h.List)
	r.Post("/orders", h.Create)
	r.Get("/orders/recent", h.Recent)
	r.Get("/orders/{id}", h.Get)
	r.Patch("/orders/{id}/status", h.UpdateStatus)
	r.Delete("/orders/{id}", h.Delete)

	return r, mockDB
}

func orderRows() *sqlmock.Rows {
	now := time.Now()
	return testutil.MockRows(
		"id", "customer_name", "status", "total", "order_date", "created_at", "updated_at", "deleted_at",
	).AddRow([]driver.Value{"o1", "Ibu Siti", "Pending", 250000.0, now, now, now, nil}...)
}

func TestOrderHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		r, mockDB := newOrderRouter(t)

		now := time.Now()
		mockDB.ExpectQuery("INSERT INTO orders").
			WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(now, now))

		req := httptest.NewRequest(http.MethodPost, "/orders",
			strings.NewReader(`{"customer_name":"Ibu Siti","total":250000}`))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var body struct {
			Data repository.Order `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Pending", body.Data.Status)
	})

	t.Run("missing customer name fails validation", func(t *testing.T) {
		r, _ := newOrderRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/orders",
			strings.NewReader(`{"total":250000}`))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "CustomerName")
	})
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	t.Run("unknown status fails validation before hitting the database", func(t *testing.T) {
		r, mockDB := newOrderRouter(t)

		req := httptest.NewRequest(http.MethodPatch, "/orders/o1/status",
			strings.NewReader(`{"status":"Shipped"}`))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("disallowed transition", func(t *testing.T) {
		r, mockDB := newOrderRouter(t)

		now := time.Now()
		mockDB.ExpectQuery("FROM orders").
			WithArgs("o1").
			WillReturnRows(testutil.MockRows(
				"id", "customer_name", "status", "total", "order_date", "created_at", "updated_at", "deleted_at",
			).AddRow([]driver.Value{"o1", "Ibu Siti", "Completed", 250000.0, now, now, now, nil}...))

		req := httptest.NewRequest(http.MethodPatch, "/orders/o1/status",
			strings.NewReader(`{"status":"Processing"}`))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "BAD_REQUEST")
	})
}

func TestOrderHandler_Recent(t *testing.T) {
	r, mockDB := newOrderRouter(t)

	mockDB.ExpectQuery("ORDER BY order_date DESC").
		WithArgs(5).
		WillReturnRows(orderRows())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/recent", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []repository.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "o1", body.Data[0].ID)
}

func TestOrderHandler_List_Pagination(t *testing.T) {
	r, mockDB := newOrderRouter(t)

	mockDB.ExpectQuery("SELECT COUNT").
		WillReturnRows(testutil.MockRows("count").AddRow(101))
	mockDB.ExpectQuery("FROM orders").
		WithArgs(50, 0).
		WillReturnRows(orderRows())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Meta struct {
			Page       int   `json:"page"`
			PerPage    int   `json:"per_page"`
			Total      int64 `json:"total"`
			TotalPages int   `json:"total_pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Meta.Page)
	assert.Equal(t, 50, body.Meta.PerPage)
	assert.Equal(t, int64(101), body.Meta.Total)
	assert.Equal(t, 3, body.Meta.TotalPages)
}
