package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tokotrack/tokotrack-backend/internal/dashboard/client"
	"github.com/tokotrack/tokotrack-backend/pkg/errors"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
)

// RoleFilterAll matches every role in directory filters
const RoleFilterAll = "all"

// directoryClient is the subset of the API server client the directory needs
type directoryClient interface {
	ListUsers(ctx context.Context) ([]client.User, error)
	CreateUser(ctx context.Context, req *client.CreateUserRequest) (*client.User, error)
	UpdateUser(ctx context.Context, id string, req *client.UpdateUserRequest) (*client.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// DirectoryService keeps a periodically refreshed snapshot of the user
// directory and filters it locally, so searching and role filtering do not
// hit the API server on every keystroke.
type DirectoryService struct {
	api             directoryClient
	refreshInterval time.Duration
	logger          *logger.Logger

	mu    sync.RWMutex
	users []client.User

	stopOnce sync.Once
	stop     chan struct{}
}

// NewDirectoryService creates a new user directory service
func NewDirectoryService(api directoryClient, refreshInterval time.Duration, log *logger.Logger) *DirectoryService {
	if refreshInterval <= 0 {
		refreshInterval = 30 * time.Second
	}

	return &DirectoryService{
		api:             api,
		refreshInterval: refreshInterval,
		logger:          log,
		stop:            make(chan struct{}),
	}
}

// Refresh replaces the cached snapshot with the current upstream user list
func (s *DirectoryService) Refresh(ctx context.Context) error {
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to refresh user directory")
		return err
	}

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()

	s.logger.Debug().Int("count", len(users)).Msg("user directory refreshed")
	return nil
}

// Start refreshes the directory immediately and then on a fixed interval
// until the context is cancelled or Stop is called
func (s *DirectoryService) Start(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("initial directory refresh failed, will retry on next tick")
	}

	go func() {
		ticker := time.NewTicker(s.refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					s.logger.Warn().Err(err).Msg("periodic directory refresh failed")
				}
			}
		}
	}()
}

// Stop halts the periodic refresh loop
func (s *DirectoryService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// List returns the cached users matching the search term and role filter.
// The search matches name or email case-insensitively; role is an exact
// match, with "all" (or empty) matching every role.
func (s *DirectoryService) List(search, role string) []client.User {
	s.mu.RLock()
	snapshot := s.users
	s.mu.RUnlock()

	return FilterUsers(snapshot, search, role)
}

// FilterUsers applies the directory search and role filter to a user list
func FilterUsers(users []client.User, search, role string) []client.User {
	search = strings.ToLower(strings.TrimSpace(search))

	filtered := make([]client.User, 0, len(users))
	for _, u := range users {
		if role != "" && role != RoleFilterAll && u.Role != role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		filtered = append(filtered, u)
	}
	return filtered
}

// Create adds a user via the API server and refreshes the snapshot
func (s *DirectoryService) Create(ctx context.Context, req *client.CreateUserRequest) (*client.User, error) {
	if req.Password == "" {
		return nil, errors.Validation(map[string]string{"password": "password is required"})
	}

	user, err := s.api.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("directory refresh after create failed")
	}
	return user, nil
}

// Update modifies a user via the API server and refreshes the snapshot
func (s *DirectoryService) Update(ctx context.Context, id string, req *client.UpdateUserRequest) (*client.User, error) {
	user, err := s.api.UpdateUser(ctx, id, req)
	if err != nil {
		return nil, err
	}

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("directory refresh after update failed")
	}
	return user, nil
}

// Delete removes a user via the API server and refreshes the snapshot.
// Callers must obtain explicit confirmation before invoking this; the
// handler enforces it.
func (s *DirectoryService) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteUser(ctx, id); err != nil {
		return err
	}

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("directory refresh after delete failed")
	}
	return nil
}
