package userservice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

func newTestServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}
	mux := http.NewServeMux()
	mux.HandleFunc("/internal/users/10", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":10,"role":"doctor"}`))
	})
	mux.HandleFunc("/internal/users/11", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"id":11,"role":"superuser"}`))
	})
	mux.HandleFunc("/internal/users/12", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`oops`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, calls
}

func TestClient_GetUser(t *testing.T) {
	srv, _ := newTestServer(t)
	client := NewClient(srv.URL+"/", time.Second, logger.NewNop())
	ctx := context.Background()

	user, err := client.GetUser(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), user.ID)
	assert.Equal(t, domain.RoleDoctor, user.Role)

	_, err = client.GetUser(ctx, 99)
	assert.True(t, errors.Is(err, ErrUserNotFound))
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = client.GetUser(ctx, 11)
	assert.True(t, errors.Is(err, ErrInvalidResponse))

	_, err = client.GetUser(ctx, 12)
	assert.True(t, errors.Is(err, ErrInvalidResponse))
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

type memoryCache struct {
	mu     sync.Mutex
	roles  map[int64]string
	getErr error
	setErr error
}

func (m *memoryCache) Get(_ context.Context, userID int64) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	role, ok := m.roles[userID]
	return role, ok, nil
}

func (m *memoryCache) Set(_ context.Context, userID int64, role string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.roles[userID] = role
	return nil
}

func TestCachedClient_GetUser(t *testing.T) {
	srv, calls := newTestServer(t)
	cache := &memoryCache{roles: map[int64]string{}}
	client := NewCachedClient(NewClient(srv.URL, time.Second, logger.NewNop()), cache, time.Minute, logger.NewNop())
	ctx := context.Background()

	user, err := client.GetUser(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDoctor, user.Role)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "doctor", cache.roles[10])

	user, err = client.GetUser(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDoctor, user.Role)
	assert.Equal(t, int32(1), calls.Load(), "second lookup must be served from cache")

	_, err = client.GetUser(ctx, 99)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, cached := cache.roles[99]
	assert.False(t, cached)
}

func TestCachedClient_CacheFailureFallsThrough(t *testing.T) {
	srv, calls := newTestServer(t)
	cache := &memoryCache{
		roles:  map[int64]string{},
		getErr: errors.New("redis down"),
		setErr: errors.New("redis down"),
	}
	client := NewCachedClient(NewClient(srv.URL, time.Second, logger.NewNop()), cache, time.Minute, logger.NewNop())

	user, err := client.GetUser(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDoctor, user.Role)
	assert.Equal(t, int32(1), calls.Load())
}
