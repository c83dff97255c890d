package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	CountByFilter(ctx context.Context, filter domain.AppointmentsFilter) (int64, error)
	ListOverdueConfirmed(ctx context.Context, cutoff time.Time, loc *time.Location) ([]*domain.Appointment, error)
	ListHistory(ctx context.Context, appointmentID int64) ([]domain.StatusHistoryEntry, error)
	SaveTransition(ctx context.Context, appointment *domain.Appointment, entry domain.StatusHistoryEntry) error
	UpdateAdminNotes(ctx context.Context, id int64, notes *string, updatedAt time.Time) error
}

// UserDirectory интерфейс справочника пользователей (UserService)
type UserDirectory interface {
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics интерфейс метрик переходов статусов
type Metrics interface {
	IncAppointmentTransition(status string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}
