package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokotrack/tokotrack-backend/internal/dashboard/client"
	"github.com/tokotrack/tokotrack-backend/internal/dashboard/service"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
)

// fakeAPI is an in-memory stand-in for the API server client
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	products  []client.Product
	orders    []client.Order
	suppliers []client.Supplier
	users     []client.User

	productsErr  error
	ordersErr    error
	suppliersErr error
	usersErr     error

	createUserErr error
	deleteUserErr error
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) ListProducts(ctx context.Context) ([]client.Product, error) {
	f.record("ListProducts")
	return f.products, f.productsErr
}

func (f *fakeAPI) ListOrders(ctx context.Context) ([]client.Order, error) {
	f.record("ListOrders")
	return f.orders, f.ordersErr
}

func (f *fakeAPI) ListSuppliers(ctx context.Context) ([]client.Supplier, error) {
	f.record("ListSuppliers")
	return f.suppliers, f.suppliersErr
}

func (f *fakeAPI) ListUsers(ctx context.Context) ([]client.User, error) {
	f.record("ListUsers")
	return f.users, f.usersErr
}

func (f *fakeAPI) CreateUser(ctx context.Context, req *client.CreateUserRequest) (*client.User, error) {
	f.record("CreateUser")
	if f.createUserErr != nil {
		return nil, f.createUserErr
	}
	u := client.User{ID: "new-user", Name: req.Name, Email: req.Email, Role: req.Role, IsActive: true}
	f.mu.Lock()
	f.users = append(f.users, u)
	f.mu.Unlock()
	return &u, nil
}

func (f *fakeAPI) UpdateUser(ctx context.Context, id string, req *client.UpdateUserRequest) (*client.User, error) {
	f.record("UpdateUser")
	for i := range f.users {
		if f.users[i].ID == id {
			if req.Name != nil {
				f.users[i].Name = *req.Name
			}
			if req.Role != nil {
				f.users[i].Role = *req.Role
			}
			return &f.users[i], nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeAPI) DeleteUser(ctx context.Context, id string) error {
	f.record("DeleteUser")
	if f.deleteUserErr != nil {
		return f.deleteUserErr
	}
	for i := range f.users {
		if f.users[i].ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return errors.New("user not found")
}

func testLogger() *logger.Logger {
	return logger.New("test", "test")
}

func orderAt(id string, daysAgo int) client.Order {
	return client.Order{
		ID:           id,
		CustomerName: "Customer " + id,
		Status:       "Completed",
		Total:        100000,
		OrderDate:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo),
	}
}

func TestAggregatorService_GetStats(t *testing.T) {
	api := &fakeAPI{
		products: []client.Product{
			{ID: "p1", SKU: "SKU-0001", Name: "Beras 5kg", Quantity: 5},
			{ID: "p2", SKU: "SKU-0002", Name: "Minyak Goreng", Quantity: 20},
			{ID: "p3", SKU: "SKU-0003", Name: "Gula Pasir", Quantity: 3},
		},
		orders: []client.Order{
			{ID: "o1", Status: "Pending", OrderDate: time.Now()},
			{ID: "o2", Status: "Completed", OrderDate: time.Now()},
			{ID: "o3", Status: "Pending", OrderDate: time.Now()},
		},
		suppliers: []client.Supplier{{ID: "s1", Name: "PT Sumber Pangan"}},
		users: []client.User{
			{ID: "u1", Name: "Andi", Role: "admin"},
			{ID: "u2", Name: "Budi", Role: "employee"},
		},
	}

	svc := service.NewAggregatorService(api, 5, testLogger())

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 1, stats.TotalSuppliers)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 2, stats.LowStockCount, "quantities 5 and 3 are below the threshold, 20 is not")
	assert.Equal(t, 2, stats.PendingOrders)

	// all four collections are fetched exactly once
	assert.Equal(t, 1, api.callCount("ListProducts"))
	assert.Equal(t, 1, api.callCount("ListOrders"))
	assert.Equal(t, 1, api.callCount("ListSuppliers"))
	assert.Equal(t, 1, api.callCount("ListUsers"))
}

func TestAggregatorService_GetStats_Empty(t *testing.T) {
	svc := service.NewAggregatorService(&fakeAPI{}, 5, testLogger())

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.TotalProducts)
	assert.Zero(t, stats.LowStockCount)
	assert.Zero(t, stats.PendingOrders)
	assert.Empty(t, stats.RecentOrders)
}

func TestAggregatorService_GetStats_BoundaryQuantity(t *testing.T) {
	// A product sitting exactly at the threshold is not low stock
	api := &fakeAPI{
		products: []client.Product{
			{ID: "p1", Quantity: 10},
			{ID: "p2", Quantity: 9},
			{ID: "p3", Quantity: 0},
		},
	}

	svc := service.NewAggregatorService(api, 5, testLogger())

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.LowStockCount)
}

func TestAggregatorService_RecentOrders(t *testing.T) {
	t.Run("newest first, limited to five", func(t *testing.T) {
		api := &fakeAPI{}
		for i := 0; i < 8; i++ {
			api.orders = append(api.orders, orderAt(fmt.Sprintf("o%d", i), i))
		}

		svc := service.NewAggregatorService(api, 5, testLogger())

		stats, err := svc.GetStats(context.Background())
		require.NoError(t, err)

		require.Len(t, stats.RecentOrders, 5)
		assert.Equal(t, "o0", stats.RecentOrders[0].ID)
		assert.Equal(t, "o4", stats.RecentOrders[4].ID)
		for i := 1; i < len(stats.RecentOrders); i++ {
			assert.False(t, stats.RecentOrders[i].OrderDate.After(stats.RecentOrders[i-1].OrderDate))
		}
	})

	t.Run("fewer orders than the limit", func(t *testing.T) {
		api := &fakeAPI{orders: []client.Order{orderAt("o1", 1), orderAt("o2", 0)}}

		svc := service.NewAggregatorService(api, 5, testLogger())

		stats, err := svc.GetStats(context.Background())
		require.NoError(t, err)

		require.Len(t, stats.RecentOrders, 2)
		assert.Equal(t, "o2", stats.RecentOrders[0].ID)
	})

	t.Run("equal dates keep their original order", func(t *testing.T) {
		same := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		api := &fakeAPI{orders: []client.Order{
			{ID: "first", OrderDate: same},
			{ID: "second", OrderDate: same},
			{ID: "third", OrderDate: same},
		}}

		svc := service.NewAggregatorService(api, 5, testLogger())

		stats, err := svc.GetStats(context.Background())
		require.NoError(t, err)

		require.Len(t, stats.RecentOrders, 3)
		assert.Equal(t, "first", stats.RecentOrders[0].ID)
		assert.Equal(t, "second", stats.RecentOrders[1].ID)
		assert.Equal(t, "third", stats.RecentOrders[2].ID)
	})

	t.Run("upstream order list is not mutated", func(t *testing.T) {
		api := &fakeAPI{orders: []client.Order{orderAt("old", 5), orderAt("new", 0)}}

		svc := service.NewAggregatorService(api, 5, testLogger())

		_, err := svc.GetStats(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "old", api.orders[0].ID)
		assert.Equal(t, "new", api.orders[1].ID)
	})
}

func TestAggregatorService_GetStats_FetchFailure(t *testing.T) {
	upstream := errors.New("upstream unavailable")

	tests := []struct {
		name string
		api  *fakeAPI
	}{
		{"products fetch fails", &fakeAPI{productsErr: upstream}},
		{"orders fetch fails", &fakeAPI{ordersErr: upstream}},
		{"suppliers fetch fails", &fakeAPI{suppliersErr: upstream}},
		{"users fetch fails", &fakeAPI{usersErr: upstream}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := service.NewAggregatorService(tt.api, 5, testLogger())

			stats, err := svc.GetStats(context.Background())
			require.Error(t, err)
			assert.Nil(t, stats, "a partial dashboard is never returned")

			// the remaining fetches still ran; the join is all-or-nothing,
			// not short-circuiting
			total := tt.api.callCount("ListProducts") + tt.api.callCount("ListOrders") +
				tt.api.callCount("ListSuppliers") + tt.api.callCount("ListUsers")
			assert.Equal(t, 4, total)
		})
	}
}
