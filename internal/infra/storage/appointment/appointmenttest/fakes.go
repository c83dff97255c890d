package appointmenttest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// TxManager выполняет функцию без транзакции и считает вызовы
type TxManager struct {
	Calls atomic.Int32
	// Err возвращается вместо вызова функции, если задана
	Err error
	// CommitErr возвращается после успешного вызова функции (ошибка фиксации)
	CommitErr error
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls.Add(1)
	if m.Err != nil {
		return m.Err
	}
	if err := fn(ctx); err != nil {
		return err
	}
	return m.CommitErr
}

// Users справочник пользователей в памяти
type Users struct {
	mu    sync.Mutex
	roles map[int64]domain.Role
	// Err возвращается из GetUser, если задана
	Err error
}

// NewUsers создает справочник с пользователями id -> роль
func NewUsers(roles map[int64]domain.Role) *Users {
	copied := make(map[int64]domain.Role, len(roles))
	for id, role := range roles {
		copied[id] = role
	}
	return &Users{roles: copied}
}

func (u *Users) GetUser(_ context.Context, userID int64) (*domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	role, ok := u.roles[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user id=%d", domain.ErrNotFound, userID)
	}
	return &domain.User{ID: userID, Role: role}, nil
}

// Clock управляемое время
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock создает часы с заданным временем
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set переставляет часы
func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
