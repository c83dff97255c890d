package availability

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AvailabilityRepository интерфейс репозитория расписаний врачей
type AvailabilityRepository interface {
	GetByDoctorID(ctx context.Context, doctorID int64) (*domain.DoctorAvailability, error)
	Upsert(ctx context.Context, availability *domain.DoctorAvailability) (*domain.DoctorAvailability, error)
}

// UserDirectory интерфейс справочника пользователей (UserService)
type UserDirectory interface {
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
