package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	// ListActiveByDoctorAndDate получает активные (pending, confirmed) записи врача на дату
	ListActiveByDoctorAndDate(ctx context.Context, doctorID int64, date time.Time) ([]*domain.Appointment, error)
}

// AvailabilityRepository интерфейс репозитория расписаний врачей
type AvailabilityRepository interface {
	GetByDoctorID(ctx context.Context, doctorID int64) (*domain.DoctorAvailability, error)
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
