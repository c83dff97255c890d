package reschedule_appointment

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	rescheduleAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var errMissingInterval = errors.New("either newStart/newEnd or date/startTime/durationMinutes is required")

// RescheduleAppointmentRequest HTTP request model.
// Новый интервал задается либо моментами newStart/newEnd (RFC3339),
// либо датой, временем начала и длительностью в часовом поясе клиники
type RescheduleAppointmentRequest struct {
	NewStart        *time.Time `json:"newStart,omitempty"`
	NewEnd          *time.Time `json:"newEnd,omitempty"`
	Date            string     `json:"date,omitempty"`      // "2026-10-15"
	StartTime       string     `json:"startTime,omitempty"` // "10:00"
	DurationMinutes int        `json:"durationMinutes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleAppointmentRequest) ToUseCaseRequest(id, actorID int64, loc *time.Location) (*rescheduleAppointment.Request, error) {
	req := &rescheduleAppointment.Request{
		AppointmentID: id,
		ActorID:       actorID,
	}

	if r.NewStart != nil && r.NewEnd != nil {
		req.NewStart = *r.NewStart
		req.NewEnd = *r.NewEnd
		return req, nil
	}

	if r.Date == "" || r.StartTime == "" || r.DurationMinutes <= 0 {
		return nil, errMissingInterval
	}

	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}
	start, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}
	interval, err := domain.NewInterval(date, start, r.DurationMinutes)
	if err != nil {
		return nil, err
	}

	req.NewStart = interval.StartAt(loc)
	req.NewEnd = interval.EndAt(loc)
	return req, nil
}
