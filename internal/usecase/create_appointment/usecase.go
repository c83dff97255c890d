package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// Settings параметры бронирования
type Settings struct {
	LeadTime time.Duration  // Минимальное время до начала приема
	Location *time.Location // Часовой пояс клиники
}

// UseCase use case для создания записи на прием
type UseCase struct {
	repo         AppointmentRepository
	checker      *scheduling.ConflictChecker
	availability AvailabilityRepository
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
	availability AvailabilityRepository,
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
		availability: availability,
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

// Execute выполняет use case создания записи.
// Проверка пересечений и вставка выполняются под блокировками врача и пациента
// в сериализуемой транзакции; ограничения EXCLUDE в БД закрывают гонку между инстансами
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: actor=%d, doctor=%d, patient=%d, date=%s, time=%s, duration=%d",
		req.ActorID, req.DoctorID, req.PatientID, req.Date.Format(domain.DateFormat), req.StartTime, req.DurationMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	consultationType := req.ConsultationType
	if consultationType == "" {
		consultationType = domain.ConsultationInClinic
	}

	// 2. Записать другого пациента может только администратор
	actorID := req.ActorID
	if actorID == domain.SystemActorID {
		actorID = req.PatientID
	}
	if actorID != req.PatientID {
		isAdmin, err := scheduling.IsAdmin(ctx, uc.users, actorID)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to check actor id=%d: %v", actorID, err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if !isAdmin {
			uc.logger.Warn("CreateAppointment: actor id=%d cannot book for patient id=%d", actorID, req.PatientID)
			return nil, fmt.Errorf("%w: only admin can book for another patient", ErrForbidden)
		}
	}

	// 3. Интервал приема и минимальное время до начала
	interval, err := domain.NewInterval(req.Date, req.StartTime, req.DurationMinutes)
	if err != nil {
		uc.logger.Warn("CreateAppointment: invalid interval: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := uc.timeProvider.Now()
	if err := scheduling.CheckLeadTime(interval, now, uc.settings.Location, uc.settings.LeadTime); err != nil {
		uc.logger.Warn("CreateAppointment: %s is too late to book at %s", interval, now.Format(time.RFC3339))
		return nil, fmt.Errorf("%w: %v", ErrTooLateToBook, err)
	}

	// 4. Проверяем врача и пациента в UserService
	if err := scheduling.RequireRole(ctx, uc.users, req.DoctorID, domain.RoleDoctor); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("CreateAppointment: doctor id=%d not found", req.DoctorID)
			return nil, ErrDoctorNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get doctor id=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if err := scheduling.RequireRole(ctx, uc.users, req.PatientID, domain.RolePatient); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("CreateAppointment: patient id=%d not found", req.PatientID)
			return nil, ErrPatientNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get patient id=%d: %v", req.PatientID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 5. Тип приема должен входить в расписание врача (если оно заведено)
	if err := uc.checkConsultationType(ctx, req.DoctorID, consultationType); err != nil {
		return nil, err
	}

	proposal := scheduling.Proposal{
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		Interval:  interval,
	}

	// 6. Блокировки врача и пациента на время проверки и вставки
	unlock := uc.locker.Lock(scheduling.DoctorLockKey(req.DoctorID), scheduling.PatientLockKey(req.PatientID))
	defer unlock()

	var result *domain.Appointment

	// 7. Проверка пересечений и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := uc.checker.Check(txCtx, proposal); err != nil {
			return err
		}

		appointment := domain.NewAppointment(
			req.DoctorID,
			req.PatientID,
			interval,
			consultationType,
			req.Reason,
			req.Notes,
			actorID,
			now,
		)

		created, err := uc.repo.Create(txCtx, appointment)
		if err != nil {
			return err
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, uc.mapError(ctx, proposal, err)
	}

	uc.metrics.IncAppointmentTransition(string(domain.StatusPending))
	uc.logger.Info("CreateAppointment: successfully created appointment id=%d (%s)", result.ID, result.Interval)

	return &Response{Appointment: result}, nil
}

// checkConsultationType проверяет, что врач ведет прием выбранного типа.
// Без расписания ограничений на тип нет
func (uc *UseCase) checkConsultationType(ctx context.Context, doctorID int64, consultationType domain.ConsultationType) error {
	availability, err := uc.availability.GetByDoctorID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrAvailabilityNotFound) {
			return nil
		}
		uc.logger.Error("CreateAppointment: failed to get availability for doctor=%d: %v", doctorID, err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if !availability.Offers(consultationType) {
		uc.logger.Warn("CreateAppointment: doctor id=%d does not offer %s consultations", doctorID, consultationType)
		return fmt.Errorf("%w: %s", ErrConsultationTypeNotOffered, consultationType)
	}
	return nil
}

// mapError приводит ошибку транзакции к таксономии домена
func (uc *UseCase) mapError(ctx context.Context, proposal scheduling.Proposal, err error) error {
	if conflict, ok := domain.AsConflict(err); ok {
		uc.metrics.IncBookingConflict(string(conflict.Kind))
		uc.logger.Warn("CreateAppointment: %v", conflict)
		return conflict
	}

	// Пересечение поймано ограничением БД: ищем конфликтующую запись уже после отката
	if errors.Is(err, appointmentRepo.ErrSlotTaken) {
		conflict := resolveConflict(ctx, uc.checker, proposal, err)
		uc.metrics.IncBookingConflict(string(conflict.Kind))
		uc.logger.Warn("CreateAppointment: %v (detected by database)", conflict)
		return conflict
	}

	if errors.Is(err, appointmentRepo.ErrSerialization) {
		uc.logger.Error("CreateAppointment: serialization failure: %v", err)
		return fmt.Errorf("%w: concurrent update, try again: %v", ErrInternal, err)
	}

	if errors.Is(err, domain.ErrInternal) {
		uc.logger.Error("CreateAppointment: %v", err)
		return err
	}

	uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
	return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
}

// resolveConflict повторяет проверку пересечений, чтобы найти id конфликтующей записи.
// Если запись не найдена, возвращается конфликт без id
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
