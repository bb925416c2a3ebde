package auth

import (
	"context"
	"testing"

	"github.com/emirkaya/toolshare-backend/pkg/config"
	"github.com/emirkaya/toolshare-backend/pkg/db"
	"github.com/emirkaya/toolshare-backend/pkg/db/models"
	pkgerrors "github.com/emirkaya/toolshare-backend/pkg/errors"
	"github.com/emirkaya/toolshare-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTestDB(t *testing.T) *db.Client {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:auth_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'user',
  trust_score NUMERIC NOT NULL DEFAULT 0,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(users).Error)
	return db.FromGorm(conn)
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestRegisterCreatesUser(t *testing.T) {
	client := setupAuthTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             client,
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)

	dto, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "sturdy-workbench-42",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", dto.Username)
	assert.Equal(t, "alice@example.com", dto.Email, "email should be lowercased")
	assert.Equal(t, "0.00", dto.TrustScore)

	var stored models.User
	require.NoError(t, client.DB().First(&stored, "username = ?", "alice").Error)
	assert.NotEqual(t, "sturdy-workbench-42", stored.PasswordHash)

	ok, err := security.VerifyPassword("sturdy-workbench-42", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	client := setupAuthTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             client,
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password-one",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "password-two",
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())

	_, err = svc.Register(context.Background(), RegisterRequest{
		Username: "bob",
		Email:    "alice@example.com",
		Password: "password-two",
	})
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())
}

func TestRegisterValidation(t *testing.T) {
	client := setupAuthTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             client,
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)

	cases := []RegisterRequest{
		{Username: "", Email: "a@b.com", Password: "x12345678"},
		{Username: "alice", Email: "", Password: "x12345678"},
		{Username: "alice", Email: "a@b.com", Password: ""},
	}
	for _, req := range cases {
		_, err := svc.Register(context.Background(), req)
		coded := pkgerrors.As(err)
		require.NotNil(t, coded, "request %+v", req)
		assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
	}
}
