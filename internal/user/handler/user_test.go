package handler_test

import (
	"database/sql/driver"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokotrack/tokotrack-backend/internal/user/handler"
	"github.com/tokotrack/tokotrack-backend/internal/user/repository"
	"github.com/tokotrack/tokotrack-backend/internal/user/service"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
	"github.com/tokotrack/tokotrack-backend/pkg/testutil"
)

func newUserRouter(t *testing.T) (*chi.Mux, *testutil.MockDB) {
	t.Helper()

	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })

	log := logger.New("test", "test")
	repo := repository.NewUserRepository(mockDB.Database())
	svc := service.NewUserService(repo, nil, log)
	h := handler.NewUserHandler(svc, log)

	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
	})
	return r, mockDB
}

func listUserColumns() []string {
	return []string{
		"id", "name", "email", "phone", "role", "password_hash", "is_active",
		"last_login_at", "created_at", "updated_at", "deleted_at",
	}
}

func listUserRow(id, name, email, role string) []driver.Value {
	now := time.Now()
	return []driver.Value{id, name, email, nil, role, "$2a$10$secrethash", true, nil, now, now, nil}
}

func TestUserHandler_List(t *testing.T) {
	r, mockDB := newUserRouter(t)

	mockDB.ExpectQuery("SELECT COUNT").
		WillReturnRows(testutil.MockRows("count").AddRow(2))
	mockDB.ExpectQuery("FROM users").
		WithArgs(50, 0).
		WillReturnRows(testutil.MockRows(listUserColumns()...).
			AddRow(listUserRow("u1", "Andi Wijaya", "andi@toko.id", "admin")...).
			AddRow(listUserRow("u2", "Budi Santoso", "budi@toko.id", "employee")...))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "andi@toko.id")
	assert.Contains(t, body, `"total":2`)

	// The hash column is read but must never reach the wire
	assert.NotContains(t, body, "password_hash")
	assert.NotContains(t, body, "secrethash")
}

func TestUserHandler_Get(t *testing.T) {
	r, mockDB := newUserRouter(t)

	mockDB.ExpectQuery("FROM users").
		WithArgs("u1").
		WillReturnRows(testutil.MockRows(listUserColumns()...).
			AddRow(listUserRow("u1", "Andi Wijaya", "andi@toko.id", "admin")...))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/u1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Andi Wijaya")
	assert.NotContains(t, rec.Body.String(), "secrethash")
}

func TestUserHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{
			name:   "missing password",
			body:   `{"name":"Citra Dewi","email":"citra@toko.id","role":"employee"}`,
			detail: "Password",
		},
		{
			name:   "short password",
			body:   `{"name":"Citra Dewi","email":"citra@toko.id","role":"employee","password":"abc"}`,
			detail: "Password",
		},
		{
			name:   "bad role",
			body:   `{"name":"Citra Dewi","email":"citra@toko.id","role":"superuser","password":"rahasia123"}`,
			detail: "Role",
		},
		{
			name:   "bad email",
			body:   `{"name":"Citra Dewi","email":"not-an-email","role":"employee","password":"rahasia123"}`,
			detail: "Email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mockDB := newUserRouter(t)

			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.detail)
			mockDB.ExpectationsWereMet(t)
		})
	}
}
