package get_available_slots

import (
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
)

// ToUseCaseRequest конвертирует параметры запроса в модель use case.
// duration опционален: пусто = длительность слота из расписания врача
func ToUseCaseRequest(doctorID int64, dateStr, durationStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	duration := 0
	if durationStr != "" {
		duration, err = strconv.Atoi(durationStr)
		if err != nil {
			return nil, err
		}
	}

	return &getAvailableSlots.Request{
		DoctorID:        doctorID,
		Date:            date,
		DurationMinutes: duration,
	}, nil
}
