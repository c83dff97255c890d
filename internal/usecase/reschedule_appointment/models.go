package reschedule_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса на перенос записи
type Request struct {
	AppointmentID int64
	ActorID       int64
	NewStart      time.Time // Новое начало приема
	NewEnd        time.Time // Новый конец приема (длительность = NewEnd - NewStart)
}

// Response модель ответа с перенесенной записью
type Response struct {
	Appointment *domain.Appointment
}
