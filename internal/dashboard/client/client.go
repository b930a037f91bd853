package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tokotrack/tokotrack-backend/pkg/config"
	"github.com/tokotrack/tokotrack-backend/pkg/errors"
	"github.com/tokotrack/tokotrack-backend/pkg/httputil"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
)

// Product is the product representation returned by the API server
type Product struct {
	ID       string  `json:"id"`
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order is the order representation returned by the API server
type Order struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	Status       string    `json:"status"`
	Total        float64   `json:"total"`
	OrderDate    time.Time `json:"order_date"`
}

// Supplier is the supplier representation returned by the API server
type Supplier struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is the user representation returned by the API server
type User struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
	Role     string  `json:"role"`
	IsActive bool    `json:"is_active"`
}

// LandingStats mirrors the API server's public landing statistics
type LandingStats struct {
	TotalProducts int64 `json:"totalProducts"`
	TotalOrders   int64 `json:"totalOrders"`
	TotalUsers    int64 `json:"totalUsers"`
}

// CreateUserRequest is forwarded to the API server when creating a user
type CreateUserRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
	Role     string  `json:"role"`
	Password string  `json:"password"`
}

// UpdateUserRequest is forwarded to the API server when updating a user
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	Password *string `json:"password,omitempty"`
}

// APIClient calls the core API server on behalf of dashboard requests.
// Outbound calls reuse the caller's bearer token when one is in the context,
// otherwise they fall back to the configured service token.
type APIClient struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
	logger       *logger.Logger
}

// NewAPIClient creates a new API server client
func NewAPIClient(cfg *config.APIConfig, log *logger.Logger) *APIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &APIClient{
		baseURL:      cfg.BaseURL,
		serviceToken: cfg.ServiceToken,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       log,
	}
}

// token resolves the bearer token for an outbound call
func (c *APIClient) token(ctx context.Context) string {
	if t := httputil.GetBearerToken(ctx); t != "" {
		return t
	}
	return c.serviceToken
}

func (c *APIClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) (*httputil.Meta, error) {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("failed to call API server")
		return nil, fmt.Errorf("failed to call API server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, c.mapError(resp, path)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	// The API server wraps responses in {"success": true, "data": ..., "meta": ...}
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Meta    *httputil.Meta  `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return nil, fmt.Errorf("failed to decode response data: %w", err)
	}

	return envelope.Meta, nil
}

// mapError converts an upstream error response into an AppError so the
// dashboard surfaces the API server's status instead of a generic 500
func (c *APIClient) mapError(resp *http.Response, path string) error {
	var envelope struct {
		Success bool                `json:"success"`
		Error   *httputil.ErrorBody `json:"error"`
	}
	json.NewDecoder(resp.Body).Decode(&envelope)

	message := "upstream request failed"
	code := "UPSTREAM_ERROR"
	if envelope.Error != nil {
		message = envelope.Error.Message
		code = envelope.Error.Code
	}

	c.logger.Warn().
		Int("status", resp.StatusCode).
		Str("path", path).
		Str("code", code).
		Msg("API server returned error")

	return &errors.AppError{
		Message:    message,
		Code:       code,
		StatusCode: resp.StatusCode,
	}
}

// listPageSize is the page size used when walking paginated listings.
// It matches the largest per_page the API server accepts.
const listPageSize = 100

func listPath(resource string, page int) string {
	return fmt.Sprintf("/api/v1/%s?page=%d&per_page=%d", resource, page, listPageSize)
}

// lastPage reports whether the page just fetched was the final one. A short
// page always ends the walk, so a missing meta block cannot loop forever.
func lastPage(meta *httputil.Meta, page, fetched int) bool {
	if fetched < listPageSize {
		return true
	}
	if meta != nil && meta.TotalPages > 0 {
		return page >= meta.TotalPages
	}
	return false
}

// ListProducts fetches all products, walking every page
func (c *APIClient) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	for page := 1; ; page++ {
		var batch []Product
		meta, err := c.do(ctx, http.MethodGet, listPath("products", page), nil, &batch)
		if err != nil {
			return nil, err
		}
		products = append(products, batch...)
		if lastPage(meta, page, len(batch)) {
			return products, nil
		}
	}
}

// ListOrders fetches all orders, walking every page
func (c *APIClient) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	for page := 1; ; page++ {
		var batch []Order
		meta, err := c.do(ctx, http.MethodGet, listPath("orders", page), nil, &batch)
		if err != nil {
			return nil, err
		}
		orders = append(orders, batch...)
		if lastPage(meta, page, len(batch)) {
			return orders, nil
		}
	}
}

// ListSuppliers fetches all suppliers, walking every page
func (c *APIClient) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	var suppliers []Supplier
	for page := 1; ; page++ {
		var batch []Supplier
		meta, err := c.do(ctx, http.MethodGet, listPath("suppliers", page), nil, &batch)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, batch...)
		if lastPage(meta, page, len(batch)) {
			return suppliers, nil
		}
	}
}

// ListUsers fetches all users, walking every page
func (c *APIClient) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	for page := 1; ; page++ {
		var batch []User
		meta, err := c.do(ctx, http.MethodGet, listPath("users", page), nil, &batch)
		if err != nil {
			return nil, err
		}
		users = append(users, batch...)
		if lastPage(meta, page, len(batch)) {
			return users, nil
		}
	}
}

// CreateUser creates a user via the API server
func (c *APIClient) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	var user User
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates a user via the API server
func (c *APIClient) UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*User, error) {
	var user User
	if _, err := c.do(ctx, http.MethodPut, "/api/v1/users/"+id, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser deletes a user via the API server
func (c *APIClient) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/users/"+id, nil, nil)
	return err
}

// GetLandingStats fetches the public landing statistics
func (c *APIClient) GetLandingStats(ctx context.Context) (*LandingStats, error) {
	var stats LandingStats
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/landing/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
