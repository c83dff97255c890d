package userservice

import (
	"context"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RoleCache кэш ролей пользователей.
// Get возвращает found=false, если ключа нет
type RoleCache interface {
	Get(ctx context.Context, userID int64) (role string, found bool, err error)
	Set(ctx context.Context, userID int64, role string, ttl time.Duration) error
}
