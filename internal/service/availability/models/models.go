package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модели

// WindowRequest окно приема
type WindowRequest struct {
	Start string `json:"start" validate:"required"` // "09:00"
	End   string `json:"end" validate:"required"`   // "13:00", "24:00" = до конца дня
}

// UpsertAvailabilityRequest запрос на создание или замену расписания врача
type UpsertAvailabilityRequest struct {
	ActorID             int64           `json:"-"`
	DoctorID            int64           `json:"-"`
	AvailableDays       []string        `json:"availableDays" validate:"required,dive,required"` // "Mon", "tuesday", ...
	Windows             []WindowRequest `json:"windows" validate:"required,dive"`
	ConsultationTypes   []string        `json:"consultationTypes" validate:"required,min=1,dive,required"` // "in_clinic", "online", "home_visit"
	SlotDurationMinutes int             `json:"slotDurationMinutes,omitempty"`                             // 0 = по умолчанию
	MaxBookingsPerSlot  int             `json:"maxBookingsPerSlot,omitempty"`                              // 0 = по умолчанию
}

// ToDomain конвертирует request в domain модель (без валидации диапазонов)
func (r *UpsertAvailabilityRequest) ToDomain() (*domain.DoctorAvailability, error) {
	availability := &domain.DoctorAvailability{
		DoctorID:            r.DoctorID,
		AvailableDays:       make([]time.Weekday, 0, len(r.AvailableDays)),
		Windows:             make([]domain.TimeWindow, 0, len(r.Windows)),
		SlotDurationMinutes: r.SlotDurationMinutes,
		MaxBookingsPerSlot:  r.MaxBookingsPerSlot,
		ConsultationTypes:   make([]domain.ConsultationType, 0, len(r.ConsultationTypes)),
	}

	if availability.SlotDurationMinutes == 0 {
		availability.SlotDurationMinutes = domain.DefaultSlotDurationMinutes
	}
	if availability.MaxBookingsPerSlot == 0 {
		availability.MaxBookingsPerSlot = domain.DefaultMaxBookingsPerSlot
	}

	for _, day := range r.AvailableDays {
		weekday, err := domain.ParseWeekday(day)
		if err != nil {
			return nil, err
		}
		availability.AvailableDays = append(availability.AvailableDays, weekday)
	}

	for _, c := range r.ConsultationTypes {
		availability.ConsultationTypes = append(availability.ConsultationTypes, domain.ConsultationType(c))
	}

	for i, w := range r.Windows {
		start, err := types.NewTimeStringFromString(w.Start)
		if err != nil {
			return nil, fmt.Errorf("window %d: invalid start: %w", i, err)
		}
		end, err := types.NewTimeStringFromString(w.End)
		if err != nil {
			return nil, fmt.Errorf("window %d: invalid end: %w", i, err)
		}
		availability.Windows = append(availability.Windows, domain.TimeWindow{Start: start, End: end})
	}

	return availability, nil
}

// Response модели

// WindowResponse окно приема
type WindowResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailabilityResponse ответ с расписанием врача
type AvailabilityResponse struct {
	DoctorID            int64            `json:"doctorId"`
	AvailableDays       []string         `json:"availableDays"`
	Windows             []WindowResponse `json:"windows"`
	SlotDurationMinutes int              `json:"slotDurationMinutes"`
	MaxBookingsPerSlot  int              `json:"maxBookingsPerSlot"`
	ConsultationTypes   []string         `json:"consultationTypes"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

// Методы конвертации

// FromDomainAvailability конвертирует domain модель в DTO
func FromDomainAvailability(a *domain.DoctorAvailability) *AvailabilityResponse {
	if a == nil {
		return nil
	}

	resp := &AvailabilityResponse{
		DoctorID:            a.DoctorID,
		AvailableDays:       make([]string, 0, len(a.AvailableDays)),
		Windows:             make([]WindowResponse, 0, len(a.Windows)),
		SlotDurationMinutes: a.SlotDurationMinutes,
		MaxBookingsPerSlot:  a.MaxBookingsPerSlot,
		ConsultationTypes:   make([]string, 0, len(a.ConsultationTypes)),
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}

	for _, day := range a.AvailableDays {
		resp.AvailableDays = append(resp.AvailableDays, domain.FormatWeekday(day))
	}
	for _, w := range a.Windows {
		resp.Windows = append(resp.Windows, WindowResponse{Start: w.Start.String(), End: w.End.String()})
	}
	for _, c := range a.ConsultationTypes {
		resp.ConsultationTypes = append(resp.ConsultationTypes, string(c))
	}

	return resp
}
