package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokotrack/tokotrack-backend/internal/dashboard/client"
	"github.com/tokotrack/tokotrack-backend/internal/dashboard/service"
	apperrors "github.com/tokotrack/tokotrack-backend/pkg/errors"
)

func directoryUsers() []client.User {
	return []client.User{
		{ID: "u1", Name: "Andi Wijaya", Email: "andi@toko.id", Role: "admin", IsActive: true},
		{ID: "u2", Name: "Budi Santoso", Email: "budi@toko.id", Role: "employee", IsActive: true},
		{ID: "u3", Name: "Citra Dewi", Email: "citra.dewi@toko.id", Role: "employee", IsActive: false},
	}
}

func TestFilterUsers(t *testing.T) {
	users := directoryUsers()

	tests := []struct {
		name   string
		search string
		role   string
		want   []string
	}{
		{"no filters returns everyone", "", "", []string{"u1", "u2", "u3"}},
		{"role all returns everyone", "", "all", []string{"u1", "u2", "u3"}},
		{"role admin", "", "admin", []string{"u1"}},
		{"role employee", "", "employee", []string{"u2", "u3"}},
		{"search matches name case-insensitively", "BUDI", "", []string{"u2"}},
		{"search matches email", "citra.dewi", "", []string{"u3"}},
		{"search with surrounding spaces", "  andi  ", "", []string{"u1"}},
		{"search and role combined", "dewi", "employee", []string{"u3"}},
		{"search and role with no overlap", "andi", "employee", []string{}},
		{"no match", "zulkifli", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.FilterUsers(users, tt.search, tt.role)

			ids := make([]string, 0, len(got))
			for _, u := range got {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterUsers_DoesNotMutateInput(t *testing.T) {
	users := directoryUsers()

	service.FilterUsers(users, "budi", "employee")

	require.Len(t, users, 3)
	assert.Equal(t, "u1", users[0].ID)
}

func TestDirectoryService_Refresh(t *testing.T) {
	api := &fakeAPI{users: directoryUsers()}
	dir := service.NewDirectoryService(api, time.Minute, testLogger())

	// empty before the first refresh
	assert.Empty(t, dir.List("", ""))

	require.NoError(t, dir.Refresh(context.Background()))
	assert.Len(t, dir.List("", ""), 3)

	// the snapshot serves filters without further upstream calls
	calls := api.callCount("ListUsers")
	dir.List("budi", "")
	dir.List("", "admin")
	assert.Equal(t, calls, api.callCount("ListUsers"))
}

func TestDirectoryService_Refresh_UpstreamError(t *testing.T) {
	api := &fakeAPI{users: directoryUsers()}
	dir := service.NewDirectoryService(api, time.Minute, testLogger())

	require.NoError(t, dir.Refresh(context.Background()))

	// a failed refresh keeps the previous snapshot
	api.usersErr = errors.New("upstream unavailable")
	require.Error(t, dir.Refresh(context.Background()))
	assert.Len(t, dir.List("", ""), 3)
}

func TestDirectoryService_Create(t *testing.T) {
	t.Run("creates and refreshes", func(t *testing.T) {
		api := &fakeAPI{users: directoryUsers()}
		dir := service.NewDirectoryService(api, time.Minute, testLogger())
		require.NoError(t, dir.Refresh(context.Background()))

		user, err := dir.Create(context.Background(), &client.CreateUserRequest{
			Name:     "Dewi Lestari",
			Email:    "dewi@toko.id",
			Role:     "employee",
			Password: "rahasia123",
		})
		require.NoError(t, err)
		assert.Equal(t, "Dewi Lestari", user.Name)

		assert.Len(t, dir.List("", ""), 4)
	})

	t.Run("missing password is rejected without an upstream call", func(t *testing.T) {
		api := &fakeAPI{}
		dir := service.NewDirectoryService(api, time.Minute, testLogger())

		_, err := dir.Create(context.Background(), &client.CreateUserRequest{
			Name:  "Dewi Lestari",
			Email: "dewi@toko.id",
			Role:  "employee",
		})
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

		assert.Zero(t, api.callCount("CreateUser"))
	})
}

func TestDirectoryService_Update(t *testing.T) {
	t.Run("updates without a password and refreshes", func(t *testing.T) {
		api := &fakeAPI{users: directoryUsers()}
		dir := service.NewDirectoryService(api, time.Minute, testLogger())
		require.NoError(t, dir.Refresh(context.Background()))

		role := "admin"
		user, err := dir.Update(context.Background(), "u2", &client.UpdateUserRequest{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, "admin", user.Role)

		assert.Equal(t, 1, api.callCount("UpdateUser"))

		// The refreshed snapshot reflects the promotion
		admins := dir.List("", "admin")
		require.Len(t, admins, 2)
		assert.Equal(t, 2, api.callCount("ListUsers"))
	})

	t.Run("upstream failure leaves the snapshot unchanged", func(t *testing.T) {
		api := &fakeAPI{users: directoryUsers()}
		dir := service.NewDirectoryService(api, time.Minute, testLogger())
		require.NoError(t, dir.Refresh(context.Background()))

		name := "Ghost"
		_, err := dir.Update(context.Background(), "missing", &client.UpdateUserRequest{Name: &name})
		require.Error(t, err)

		assert.Len(t, dir.List("", ""), 3)
		assert.Equal(t, 1, api.callCount("ListUsers"))
	})
}

func TestDirectoryService_Delete(t *testing.T) {
	api := &fakeAPI{users: directoryUsers()}
	dir := service.NewDirectoryService(api, time.Minute, testLogger())
	require.NoError(t, dir.Refresh(context.Background()))

	require.NoError(t, dir.Delete(context.Background(), "u2"))

	assert.Len(t, dir.List("", ""), 2)
	assert.Empty(t, dir.List("budi", ""))
}

func TestDirectoryService_StartPolling(t *testing.T) {
	api := &fakeAPI{users: directoryUsers()}
	dir := service.NewDirectoryService(api, 20*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir.Start(ctx)
	defer dir.Stop()

	// the initial refresh plus at least one tick
	require.Eventually(t, func() bool {
		return api.callCount("ListUsers") >= 2
	}, time.Second, 5*time.Millisecond)

	dir.Stop()
	settled := api.callCount("ListUsers")
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, settled, api.callCount("ListUsers"), "no refreshes after Stop")
}
