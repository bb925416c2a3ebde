package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) SessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func TestManagerCreateCheckRevoke(t *testing.T) {
	store := newMockStore()
	manager := &Manager{
		store: store,
		keyer: store,
		ttl:   time.Hour,
	}

	ctx := context.Background()
	accessID := NewAccessID()
	userID := uuid.New()

	ok, err := manager.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if ok {
		t.Fatal("expected no session before create")
	}

	if err := manager.Create(ctx, accessID, userID); err != nil {
		t.Fatalf("create: %v", err)
	}
	if stored := store.data[store.SessionKey(accessID)]; stored != userID.String() {
		t.Fatalf("expected stored user %q, got %q", userID, stored)
	}

	ok, err = manager.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !ok {
		t.Fatal("expected live session after create")
	}

	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = manager.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if ok {
		t.Fatal("expected session gone after revoke")
	}
}

func TestManagerCreateRequiresAccessID(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, keyer: store, ttl: time.Hour}

	if err := manager.Create(context.Background(), "  ", uuid.New()); err == nil {
		t.Fatal("expected error for blank access id")
	}
}

func TestManagerHasSessionBlankID(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, keyer: store, ttl: time.Hour}

	ok, err := manager.HasSession(context.Background(), "")
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if ok {
		t.Fatal("blank access id should never map to a session")
	}
}
