package models

import (
	"errors"
	"iter"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// CancelRequest запрос на отмену записи
type CancelRequest struct {
	ActorID int64   `json:"-"`
	Reason  *string `json:"reason,omitempty"`
}

// AdminNotesRequest запрос на добавление заметок администратора
type AdminNotesRequest struct {
	ActorID int64  `json:"-"`
	Notes   string `json:"notes"`
}

// ListAppointmentsRequest запрос на получение списка записей
type ListAppointmentsRequest struct {
	ActorID   int64      `json:"-"`
	DoctorID  *int64     `json:"doctorId,omitempty"`  // Фильтр по врачу (опционально)
	PatientID *int64     `json:"patientId,omitempty"` // Фильтр по пациенту (опционально)
	Status    *string    `json:"status,omitempty"`    // Фильтр по статусу (опционально)
	Date      *time.Time `json:"date,omitempty"`      // Конкретная дата (опционально)
	StartDate *time.Time `json:"startDate,omitempty"` // Начало периода (опционально)
	EndDate   *time.Time `json:"endDate,omitempty"`   // Конец периода (опционально)
	Limit     uint64     `json:"limit,omitempty"`
	Offset    uint64     `json:"offset,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListAppointmentsRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		DoctorID:  r.DoctorID,
		PatientID: r.PatientID,
		Date:      r.Date,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Limit:     r.Limit,
		Offset:    r.Offset,
	}

	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи.
// Интервал отдается и как дата с HH:MM, и как RFC3339 моменты
type AppointmentResponse struct {
	ID               int64  `json:"id"`
	DoctorID         int64  `json:"doctorId"`
	PatientID        int64  `json:"patientId"`
	Date             string `json:"date"`      // "2026-11-02"
	StartTime        string `json:"startTime"` // "09:00"
	EndTime          string `json:"endTime"`   // "09:30"
	StartAt          string `json:"startAt"`   // RFC3339
	EndAt            string `json:"endAt"`     // RFC3339
	DurationMinutes  int    `json:"durationMinutes"`
	Status           string `json:"status"`
	ConsultationType string `json:"consultationType"`

	Reason     *string `json:"reason,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	AdminNotes *string `json:"adminNotes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`

	History []HistoryEntryResponse `json:"history,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Meta         ListMeta              `json:"meta"`
}

// ListMeta данные пагинации списка
type ListMeta struct {
	Total      int64  `json:"total"` // Всего записей по фильтру без учета limit/offset
	Limit      uint64 `json:"limit"` // 0 = без ограничения
	Offset     uint64 `json:"offset"`
	Page       uint64 `json:"page"` // Номер страницы с 1
	TotalPages uint64 `json:"totalPages"`
}

// NewListMeta считает страницы по общему числу записей и параметрам пагинации
func NewListMeta(total int64, limit, offset uint64) ListMeta {
	meta := ListMeta{Total: total, Limit: limit, Offset: offset, Page: 1}
	if total < 0 {
		meta.Total = 0
	}

	if limit == 0 {
		if meta.Total > 0 {
			meta.TotalPages = 1
		}
		return meta
	}

	meta.Page = offset/limit + 1
	meta.TotalPages = (uint64(meta.Total) + limit - 1) / limit
	return meta
}

// HistoryEntryResponse запись истории статусов
type HistoryEntryResponse struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
	ChangedBy int64     `json:"changedBy"` // 0 = система
	Notes     *string   `json:"notes,omitempty"`
}

// HistoryResponse ответ с историей статусов записи
type HistoryResponse struct {
	AppointmentID int64                  `json:"appointmentId"`
	History       []HistoryEntryResponse `json:"history"`
}

// SlotResponse свободный слот
type SlotResponse struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	StartAt   string `json:"startAt"`
	EndAt     string `json:"endAt"`
}

// SlotsResponse ответ со свободными слотами врача на дату
type SlotsResponse struct {
	DoctorID        int64          `json:"doctorId"`
	Date            string         `json:"date"`
	DurationMinutes int            `json:"durationMinutes"`
	Slots           []SlotResponse `json:"slots"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment, loc *time.Location) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                 a.ID,
		DoctorID:           a.DoctorID,
		PatientID:          a.PatientID,
		Date:               a.Interval.Date.Format(domain.DateFormat),
		StartTime:          a.Interval.Start.String(),
		EndTime:            a.Interval.End.String(),
		StartAt:            a.StartAt(loc).Format(time.RFC3339),
		EndAt:              a.EndAt(loc).Format(time.RFC3339),
		DurationMinutes:    a.DurationMinutes,
		Status:             string(a.Status),
		ConsultationType:   string(a.ConsultationType),
		Reason:             a.Reason,
		Notes:              a.Notes,
		AdminNotes:         a.AdminNotes,
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}

	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	if len(a.History) > 0 {
		resp.History = FromDomainHistory(a.History)
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO (без истории)
func FromDomainAppointmentList(appointments []*domain.Appointment, loc *time.Location) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, a := range appointments {
		if item := FromDomainAppointment(a, loc); item != nil {
			item.History = nil
			resp.Appointments = append(resp.Appointments, *item)
		}
	}

	return resp
}

// FromDomainHistory конвертирует историю статусов
func FromDomainHistory(entries []domain.StatusHistoryEntry) []HistoryEntryResponse {
	result := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, HistoryEntryResponse{
			Status:    string(e.Status),
			ChangedAt: e.ChangedAt,
			ChangedBy: e.ChangedBy,
			Notes:     e.Notes,
		})
	}
	return result
}

// FromSlots материализует последовательность слотов в DTO
func FromSlots(doctorID int64, date time.Time, duration int, slots iter.Seq[domain.Interval], loc *time.Location) *SlotsResponse {
	resp := &SlotsResponse{
		DoctorID:        doctorID,
		Date:            date.Format(domain.DateFormat),
		DurationMinutes: duration,
		Slots:           []SlotResponse{},
	}

	for slot := range slots {
		resp.Slots = append(resp.Slots, SlotResponse{
			StartTime: slot.Start.String(),
			EndTime:   slot.End.String(),
			StartAt:   slot.StartAt(loc).Format(time.RFC3339),
			EndAt:     slot.EndAt(loc).Format(time.RFC3339),
		})
	}

	return resp
}

// ToDomainStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
