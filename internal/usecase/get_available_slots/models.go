package get_available_slots

import (
	"iter"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса на получение свободных слотов
type Request struct {
	DoctorID        int64     // ID врача
	Date            time.Time // Дата (без времени)
	DurationMinutes int       // Длительность слота, 0 = из расписания врача
}

// Response модель ответа со свободными слотами.
// Slots можно обходить повторно; результат носит справочный характер
// и не резервирует слот до создания записи
type Response struct {
	DoctorID        int64
	Date            time.Time
	DurationMinutes int
	Slots           iter.Seq[domain.Interval]
}
