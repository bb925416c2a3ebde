package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgauth "github.com/emirkaya/toolshare-backend/pkg/auth"
	"github.com/emirkaya/toolshare-backend/pkg/config"
	"github.com/emirkaya/toolshare-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	active map[string]bool
	err    error
}

func (s *stubChecker) HasSession(_ context.Context, accessID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.active[accessID], nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "toolshare-test",
		ExpirationMinutes: 15,
		SessionTTLMinutes: 60,
	}
}

func mintToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, role enums.UserRole, jti string) string {
	t.Helper()

	token, err := pkgauth.MintAccessToken(cfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID:   userID,
		Username: "borrower",
		Role:     role,
		JTI:      jti,
	})
	require.NoError(t, err)
	return token
}

func TestAuthMiddlewareSeedsIdentity(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	jti := uuid.NewString()
	checker := &stubChecker{active: map[string]bool{jti: true}}

	var gotUser uuid.UUID
	var gotRole enums.UserRole
	var gotAccess string
	handler := Auth(cfg, checker, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		gotAccess = AccessIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, userID, enums.UserRoleUser, jti))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, enums.UserRoleUser, gotRole)
	assert.Equal(t, jti, gotAccess)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	handler := Auth(testJWTConfig(), &stubChecker{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsRevokedSession(t *testing.T) {
	cfg := testJWTConfig()
	jti := uuid.NewString()
	checker := &stubChecker{active: map[string]bool{}}

	handler := Auth(cfg, checker, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, uuid.New(), enums.UserRoleUser, jti))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	handler := Auth(testJWTConfig(), &stubChecker{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleBlocksNonAdmins(t *testing.T) {
	handler := RequireRole(enums.UserRoleAdmin, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/v1/users/x", nil)
	req = req.WithContext(WithIdentity(req.Context(), uuid.New(), "borrower", enums.UserRoleUser))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/admin/v1/users/x", nil)
	req = req.WithContext(WithIdentity(req.Context(), uuid.New(), "admin", enums.UserRoleAdmin))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
