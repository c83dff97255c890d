package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// Settings параметры бронирования
type Settings struct {
	LeadTime time.Duration  // Минимальное время до нового начала приема
	Location *time.Location // Часовой пояс клиники
}

// UseCase use case для переноса записи на другой интервал
type UseCase struct {
	repo         AppointmentRepository
	checker      *scheduling.ConflictChecker
	users        UserDirectory
	txManager    TransactionManager
	locker       Locker
	metrics      Metrics
	settings     Settings
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	repo AppointmentRepository,
	users UserDirectory,
	txManager TransactionManager,
	locker Locker,
	metrics Metrics,
	settings Settings,
	logger Logger,
) *UseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &UseCase{
		repo:         repo,
		checker:      scheduling.NewConflictChecker(repo),
		users:        users,
		txManager:    txManager,
		locker:       locker,
		metrics:      metrics,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute переносит запись. Статус не меняется, в историю добавляется запись о переносе.
// При отказе запись остается на прежнем интервале
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: appointment=%d, actor=%d, start=%s, end=%s",
		req.AppointmentID, req.ActorID, req.NewStart.Format(time.RFC3339), req.NewEnd.Format(time.RFC3339))

	// 1. Валидация и новый интервал
	interval, err := validateRequest(req, uc.settings.Location)
	if err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем запись и проверяем права
	current, err := uc.getAppointment(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	if err := scheduling.Authorize(ctx, uc.users, current, req.ActorID, scheduling.ActionReschedule); err != nil {
		uc.logger.Warn("RescheduleAppointment: access denied: %v", err)
		return nil, err
	}

	if !current.IsActive() {
		uc.logger.Warn("RescheduleAppointment: appointment id=%d is %s", current.ID, current.Status)
		return nil, fmt.Errorf("%w: cannot reschedule appointment id=%d in status %s",
			domain.ErrInvalidState, current.ID, current.Status)
	}

	// 3. Минимальное время до нового начала проверяется после прав и статуса
	now := uc.timeProvider.Now()
	if err := scheduling.CheckLeadTime(interval, now, uc.settings.Location, uc.settings.LeadTime); err != nil {
		uc.logger.Warn("RescheduleAppointment: %s is too late to book at %s", interval, now.Format(time.RFC3339))
		return nil, fmt.Errorf("%w: %v", ErrTooLateToBook, err)
	}

	proposal := scheduling.Proposal{
		DoctorID:  current.DoctorID,
		PatientID: current.PatientID,
		Interval:  interval,
		ExcludeID: current.ID,
	}

	// 4. Блокировки врача и пациента
	unlock := uc.locker.Lock(scheduling.DoctorLockKey(current.DoctorID), scheduling.PatientLockKey(current.PatientID))
	defer unlock()

	var result *domain.Appointment

	// 5. Перечитываем запись под блокировкой строки, проверяем пересечения и сохраняем
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		appointment, err := uc.repo.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		if err := uc.checker.Check(txCtx, proposal); err != nil {
			return err
		}

		entry, err := appointment.Reschedule(interval, req.ActorID, now)
		if err != nil {
			return err
		}

		if err := uc.repo.SaveInterval(txCtx, appointment, entry); err != nil {
			return err
		}

		result = appointment
		return nil
	})

	if err != nil {
		return nil, uc.mapError(ctx, proposal, err)
	}

	uc.logger.Info("RescheduleAppointment: appointment id=%d moved to %s", result.ID, result.Interval)

	return &Response{Appointment: result}, nil
}

func (uc *UseCase) getAppointment(ctx context.Context, id int64) (*domain.Appointment, error) {
	appointment, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("RescheduleAppointment: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("RescheduleAppointment: failed to get appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}
	return appointment, nil
}

// mapError приводит ошибку транзакции к таксономии домена
func (uc *UseCase) mapError(ctx context.Context, proposal scheduling.Proposal, err error) error {
	if conflict, ok := domain.AsConflict(err); ok {
		uc.metrics.IncBookingConflict(string(conflict.Kind))
		uc.logger.Warn("RescheduleAppointment: %v", conflict)
		return conflict
	}

	if errors.Is(err, appointmentRepo.ErrSlotTaken) {
		conflict := resolveConflict(ctx, uc.checker, proposal, err)
		uc.metrics.IncBookingConflict(string(conflict.Kind))
		uc.logger.Warn("RescheduleAppointment: %v (detected by database)", conflict)
		return conflict
	}

	if errors.Is(err, appointmentRepo.ErrSerialization) {
		uc.logger.Error("RescheduleAppointment: serialization failure: %v", err)
		return fmt.Errorf("%w: concurrent update, try again: %v", ErrInternal, err)
	}

	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidState) {
		uc.logger.Warn("RescheduleAppointment: %v", err)
		return err
	}

	if errors.Is(err, domain.ErrInternal) {
		uc.logger.Error("RescheduleAppointment: %v", err)
		return err
	}

	uc.logger.Error("RescheduleAppointment: failed to save appointment: %v", err)
	return fmt.Errorf("%w: failed to save appointment: %v", ErrInternal, err)
}

// resolveConflict повторяет проверку пересечений, чтобы найти id конфликтующей записи
func resolveConflict(ctx context.Context, checker *scheduling.ConflictChecker, proposal scheduling.Proposal, dbErr error) *domain.ConflictError {
	if err := checker.Check(ctx, proposal); err != nil {
		if conflict, ok := domain.AsConflict(err); ok {
			return conflict
		}
	}
	if errors.Is(dbErr, appointmentRepo.ErrPatientSlotTaken) {
		return domain.NewPatientConflict(0)
	}
	return domain.NewDoctorConflict(0)
}
