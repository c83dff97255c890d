package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
	ListActiveByDoctorAndDate(ctx context.Context, doctorID int64, date time.Time) ([]*domain.Appointment, error)
	ListActiveByPatientAndDate(ctx context.Context, patientID int64, date time.Time) ([]*domain.Appointment, error)
}

// AvailabilityRepository интерфейс репозитория расписаний врачей
type AvailabilityRepository interface {
	GetByDoctorID(ctx context.Context, doctorID int64) (*domain.DoctorAvailability, error)
}

// UserDirectory интерфейс справочника пользователей (UserService)
type UserDirectory interface {
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker блокировки по ключам внутри процесса
type Locker interface {
	Lock(keys ...string) (unlock func())
}

// Metrics интерфейс метрик бронирования
type Metrics interface {
	IncAppointmentTransition(status string)
	IncBookingConflict(kind string)
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

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
