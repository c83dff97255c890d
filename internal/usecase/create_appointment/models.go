package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	ActorID          int64                   // Кто создает запись (0 или PatientID - сам пациент)
	DoctorID         int64                   // ID врача
	PatientID        int64                   // ID пациента
	Date             time.Time               // Дата приема (без времени)
	StartTime        types.TimeString        // Время начала, например "09:00"
	DurationMinutes  int                     // Длительность приема
	ConsultationType domain.ConsultationType // Пусто = in_clinic
	Reason           *string                 // Причина обращения (опционально)
	Notes            *string                 // Заметки пациента (опционально)
}

// Response модель ответа с созданной записью
type Response struct {
	Appointment *domain.Appointment
}
