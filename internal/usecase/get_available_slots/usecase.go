package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// UseCase use case для получения свободных слотов врача
type UseCase struct {
	appointmentRepo  AppointmentRepository
	availabilityRepo AvailabilityRepository
	location         *time.Location
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	availabilityRepo AvailabilityRepository,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		appointmentRepo:  appointmentRepo,
		availabilityRepo: availabilityRepo,
		location:         location,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: doctor=%d, date=%s, duration=%d",
		req.DoctorID, req.Date.Format(domain.DateFormat), req.DurationMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	date := domain.DateOnly(req.Date)

	// 2. Расписание врача
	calendar, err := uc.availabilityRepo.GetByDoctorID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrAvailabilityNotFound) {
			uc.logger.Warn("GetAvailableSlots: availability for doctor id=%d not found", req.DoctorID)
			return nil, ErrAvailabilityNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get availability for doctor id=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
	}

	// 3. Активные записи врача на дату
	appointments, err := uc.appointmentRepo.ListActiveByDoctorAndDate(ctx, req.DoctorID, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list appointments for doctor id=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = calendar.SlotDurationMinutes
	}

	// 4. Генерация слотов
	slots, err := scheduling.GenerateSlots(scheduling.SlotQuery{
		Calendar:        calendar,
		Date:            date,
		DurationMinutes: duration,
		Booked:          scheduling.BookedIntervals(appointments),
		Now:             uc.timeProvider.Now(),
		Location:        uc.location,
	})
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	uc.logger.Info("GetAvailableSlots: doctor=%d has %d booked intervals on %s",
		req.DoctorID, len(appointments), date.Format(domain.DateFormat))

	return &Response{
		DoctorID:        req.DoctorID,
		Date:            date,
		DurationMinutes: duration,
		Slots:           slots,
	}, nil
}
