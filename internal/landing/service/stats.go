package service

import (
	"context"

	catalogrepo "github.com/tokotrack/tokotrack-backend/internal/catalog/repository"
	orderrepo "github.com/tokotrack/tokotrack-backend/internal/order/repository"
	userrepo "github.com/tokotrack/tokotrack-backend/internal/user/repository"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
)

// LandingStats holds the public headline numbers shown on the landing page
type LandingStats struct {
	TotalProducts int64 `json:"totalProducts"`
	TotalOrders   int64 `json:"totalOrders"`
	TotalUsers    int64 `json:"totalUsers"`
}

// StatsService computes public landing page statistics
type StatsService struct {
	productRepo *catalogrepo.ProductRepository
	orderRepo   *orderrepo.OrderRepository
	userRepo    *userrepo.UserRepository
	logger      *logger.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(
	productRepo *catalogrepo.ProductRepository,
	orderRepo *orderrepo.OrderRepository,
	userRepo *userrepo.UserRepository,
	log *logger.Logger,
) *StatsService {
	return &StatsService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		logger:      log,
	}
}

// Get returns the current landing page statistics
func (s *StatsService) Get(ctx context.Context) (*LandingStats, error) {
	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &LandingStats{
		TotalProducts: products,
		TotalOrders:   orders,
		TotalUsers:    users,
	}, nil
}
