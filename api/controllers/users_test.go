package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/emirkaya/toolshare-backend/api/middleware"
	"github.com/emirkaya/toolshare-backend/internal/users"
	"github.com/emirkaya/toolshare-backend/pkg/db/models"
	"github.com/emirkaya/toolshare-backend/pkg/enums"
	pkgerrors "github.com/emirkaya/toolshare-backend/pkg/errors"
	"github.com/emirkaya/toolshare-backend/pkg/types"
)

func setupUsersRepo(t *testing.T) (*users.Repository, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:ctrlusers_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'user',
  trust_score NUMERIC NOT NULL DEFAULT 0,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return users.NewRepository(conn), conn
}

func seedAccount(t *testing.T, conn *gorm.DB, username string, role enums.UserRole, createdAt time.Time) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		TrustScore:   decimal.Zero,
		CreatedAt:    createdAt,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func adminRequest(method, target string, adminID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(middleware.WithIdentity(req.Context(), adminID, "admin", enums.UserRoleAdmin))
}

func TestAdminUsersDeleteRejectsSelf(t *testing.T) {
	repo, conn := setupUsersRepo(t)
	admin := seedAccount(t, conn, "admin", enums.UserRoleAdmin, time.Now())

	router := chi.NewRouter()
	router.Delete("/users/{userID}", AdminUsersDelete(repo, nil))

	req := adminRequest(http.MethodDelete, "/users/"+admin.ID.String(), admin.ID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, string(pkgerrors.CodeValidation), envelope.Error.Code)

	var count int64
	require.NoError(t, conn.Model(&models.User{}).Where("id = ?", admin.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "self-delete must leave the admin row intact")
}

func TestAdminUsersDeleteRemovesOtherUser(t *testing.T) {
	repo, conn := setupUsersRepo(t)
	admin := seedAccount(t, conn, "admin", enums.UserRoleAdmin, time.Now())
	target := seedAccount(t, conn, "member", enums.UserRoleUser, time.Now())

	router := chi.NewRouter()
	router.Delete("/users/{userID}", AdminUsersDelete(repo, nil))

	req := adminRequest(http.MethodDelete, "/users/"+target.ID.String(), admin.ID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var count int64
	require.NoError(t, conn.Model(&models.User{}).Where("id = ?", target.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// Gone means gone: a second delete reports not found.
	req = adminRequest(http.MethodDelete, "/users/"+target.ID.String(), admin.ID)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminUsersListPaginates(t *testing.T) {
	repo, conn := setupUsersRepo(t)
	admin := seedAccount(t, conn, "admin", enums.UserRoleAdmin, time.Now().Add(-3*time.Hour))
	base := time.Now()
	seedAccount(t, conn, "alice", enums.UserRoleUser, base.Add(-2*time.Hour))
	seedAccount(t, conn, "bob", enums.UserRoleUser, base.Add(-1*time.Hour))
	newest := seedAccount(t, conn, "carol", enums.UserRoleUser, base)

	router := chi.NewRouter()
	router.Get("/users", AdminUsersList(repo, nil))

	req := adminRequest(http.MethodGet, "/users?limit=2", admin.ID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data users.UserList `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Users, 2)
	assert.Equal(t, newest.ID, envelope.Data.Users[0].ID)
	require.NotEmpty(t, envelope.Data.NextCursor)

	req = adminRequest(http.MethodGet, "/users?limit=2&cursor="+envelope.Data.NextCursor, admin.ID)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	envelope.Data = users.UserList{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Users, 2)
	assert.Empty(t, envelope.Data.NextCursor)
}
