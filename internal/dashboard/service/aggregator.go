package service

import (
	"context"
	"sort"
	"sync"

	catalogrepo "github.com/tokotrack/tokotrack-backend/internal/catalog/repository"
	"github.com/tokotrack/tokotrack-backend/internal/dashboard/client"
	orderrepo "github.com/tokotrack/tokotrack-backend/internal/order/repository"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
)

// apiClient is the subset of the API server client the aggregator needs
type apiClient interface {
	ListProducts(ctx context.Context) ([]client.Product, error)
	ListOrders(ctx context.Context) ([]client.Order, error)
	ListSuppliers(ctx context.Context) ([]client.Supplier, error)
	ListUsers(ctx context.Context) ([]client.User, error)
}

// DashboardStats is the aggregated view served to the dashboard page
type DashboardStats struct {
	TotalProducts  int            `json:"totalProducts"`
	TotalOrders    int            `json:"totalOrders"`
	TotalSuppliers int            `json:"totalSuppliers"`
	TotalUsers     int            `json:"totalUsers"`
	LowStockCount  int            `json:"lowStockCount"`
	PendingOrders  int            `json:"pendingOrders"`
	RecentOrders   []client.Order `json:"recentOrders"`
}

// AggregatorService assembles dashboard statistics from the API server.
// The four upstream collections are fetched concurrently and the result
// is all-or-nothing: if any fetch fails the whole aggregation fails.
type AggregatorService struct {
	api              apiClient
	recentOrderLimit int
	logger           *logger.Logger
}

// NewAggregatorService creates a new dashboard aggregator
func NewAggregatorService(api apiClient, recentOrderLimit int, log *logger.Logger) *AggregatorService {
	if recentOrderLimit <= 0 {
		recentOrderLimit = 5
	}

	return &AggregatorService{
		api:              api,
		recentOrderLimit: recentOrderLimit,
		logger:           log,
	}
}

// GetStats fetches products, orders, suppliers and users concurrently and
// derives the dashboard statistics from the combined result
func (s *AggregatorService) GetStats(ctx context.Context) (*DashboardStats, error) {
	var (
		wg        sync.WaitGroup
		products  []client.Product
		orders    []client.Order
		suppliers []client.Supplier
		users     []client.User

		productsErr  error
		ordersErr    error
		suppliersErr error
		usersErr     error
	)

	wg.Add(4)

	go func() {
		defer wg.Done()
		products, productsErr = s.api.ListProducts(ctx)
	}()

	go func() {
		defer wg.Done()
		orders, ordersErr = s.api.ListOrders(ctx)
	}()

	go func() {
		defer wg.Done()
		suppliers, suppliersErr = s.api.ListSuppliers(ctx)
	}()

	go func() {
		defer wg.Done()
		users, usersErr = s.api.ListUsers(ctx)
	}()

	wg.Wait()

	for _, err := range []error{productsErr, ordersErr, suppliersErr, usersErr} {
		if err != nil {
			s.logger.Error().Err(err).Msg("dashboard aggregation failed")
			return nil, err
		}
	}

	stats := &DashboardStats{
		TotalProducts:  len(products),
		TotalOrders:    len(orders),
		TotalSuppliers: len(suppliers),
		TotalUsers:     len(users),
		RecentOrders:   recentOrders(orders, s.recentOrderLimit),
	}

	for _, p := range products {
		if p.Quantity < catalogrepo.LowStockThreshold {
			stats.LowStockCount++
		}
	}

	for _, o := range orders {
		if o.Status == orderrepo.StatusPending {
			stats.PendingOrders++
		}
	}

	return stats, nil
}

// recentOrders returns the newest orders by order date, limited to n.
// The input slice is not modified.
func recentOrders(orders []client.Order, n int) []client.Order {
	sorted := make([]client.Order, len(orders))
	copy(sorted, orders)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderDate.After(sorted[j].OrderDate)
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
