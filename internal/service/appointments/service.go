package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// Settings параметры сервиса
type Settings struct {
	Location    *time.Location // Часовой пояс клиники
	NoShowGrace time.Duration  // Сколько ждать после конца приема, прежде чем отметить неявку
}

// Service сервис для работы с записями: чтение, смена статусов, заметки администратора
type Service struct {
	repo         AppointmentRepository
	users        UserDirectory
	txManager    TransactionManager
	metrics      Metrics
	settings     Settings
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	repo AppointmentRepository,
	users UserDirectory,
	txManager TransactionManager,
	metrics Metrics,
	settings Settings,
	logger Logger,
) *Service {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &Service{
		repo:         repo,
		users:        users,
		txManager:    txManager,
		metrics:      metrics,
		settings:     settings,
		timeProvider: realTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Location часовой пояс, в котором сервис трактует интервалы записей
func (s *Service) Location() *time.Location {
	return s.settings.Location
}

// GetByID получает запись по ID вместе с историей.
// Запись видят ее пациент, ее врач и администратор
func (s *Service) GetByID(ctx context.Context, id int64, actorID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for user=%d", id, actorID)

	appointment, err := s.getAppointment(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, "GetByID", appointment, actorID, scheduling.ActionView); err != nil {
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched appointment id=%d", id)
	return models.FromDomainAppointment(appointment, s.settings.Location), nil
}

// List получает записи с фильтрацией.
// Пациент видит только свои записи, врач - только записи к себе, администратор - все
func (s *Service) List(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("List: fetching appointments for user=%d", req.ActorID)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter for user=%d: %v", req.ActorID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.restrictFilter(ctx, &filter, req.ActorID); err != nil {
		return nil, err
	}

	appointments, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error for user=%d: %v", req.ActorID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	total, err := s.repo.CountByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("List: count error for user=%d: %v", req.ActorID, err)
		return nil, fmt.Errorf("%w: List - count error: %v", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d of %d appointments for user=%d", len(appointments), total, req.ActorID)
	resp := models.FromDomainAppointmentList(appointments, s.settings.Location)
	resp.Meta = models.NewListMeta(total, filter.Limit, filter.Offset)
	return resp, nil
}

// GetHistory получает историю статусов записи
func (s *Service) GetHistory(ctx context.Context, id int64, actorID int64) (*models.HistoryResponse, error) {
	s.logger.Info("GetHistory: fetching history of appointment id=%d for user=%d", id, actorID)

	appointment, err := s.getAppointment(ctx, "GetHistory", id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, "GetHistory", appointment, actorID, scheduling.ActionView); err != nil {
		return nil, err
	}

	history, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		s.logger.Error("GetHistory: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetHistory - repository error: %v", ErrInternal, err)
	}

	return &models.HistoryResponse{
		AppointmentID: id,
		History:       models.FromDomainHistory(history),
	}, nil
}

// Confirm подтверждает запись (pending -> confirmed). Доступно врачу записи и администратору
func (s *Service) Confirm(ctx context.Context, id int64, actorID int64) (*models.AppointmentResponse, error) {
	return s.transition(ctx, "Confirm", id, actorID, scheduling.ActionConfirm, domain.StatusConfirmed, nil, nil)
}

// Complete завершает прием (confirmed -> completed). Доступно врачу записи и администратору
func (s *Service) Complete(ctx context.Context, id int64, actorID int64) (*models.AppointmentResponse, error) {
	return s.transition(ctx, "Complete", id, actorID, scheduling.ActionComplete, domain.StatusCompleted, nil, nil)
}

// Cancel отменяет запись ({pending, confirmed} -> cancelled).
// Доступно пациенту, врачу записи и администратору, пока прием не начался
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelRequest) (*models.AppointmentResponse, error) {
	if req.Reason != nil && utf8.RuneCountInString(*req.Reason) > domain.MaxCancellationReasonLength {
		s.logger.Warn("Cancel: reason is too long for appointment id=%d", id)
		return nil, fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return s.transition(ctx, "Cancel", id, req.ActorID, scheduling.ActionCancel, domain.StatusCancelled, req.Reason,
		func(appointment *domain.Appointment, now time.Time) error {
			return scheduling.CheckCancellable(appointment, now, s.settings.Location)
		})
}

// AddAdminNotes сохраняет заметки администратора. Разрешено для записи в любом статусе
func (s *Service) AddAdminNotes(ctx context.Context, id int64, req *models.AdminNotesRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("AddAdminNotes: appointment id=%d by user=%d", id, req.ActorID)

	if utf8.RuneCountInString(req.Notes) > domain.MaxNotesLength {
		s.logger.Warn("AddAdminNotes: notes are too long for appointment id=%d", id)
		return nil, fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	appointment, err := s.getAppointment(ctx, "AddAdminNotes", id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, "AddAdminNotes", appointment, req.ActorID, scheduling.ActionAdminNotes); err != nil {
		return nil, err
	}

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}
	now := s.timeProvider.Now()

	if err := s.repo.UpdateAdminNotes(ctx, id, notes, now); err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("AddAdminNotes: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: AddAdminNotes - repository error: %v", ErrInternal, err)
	}

	appointment.AdminNotes = notes
	appointment.UpdatedAt = now

	s.logger.Info("AddAdminNotes: successfully updated appointment id=%d", id)
	return models.FromDomainAppointment(appointment, s.settings.Location), nil
}

// SweepNoShows отмечает неявку (confirmed -> no_show) для подтвержденных записей,
// конец которых прошел больше чем NoShowGrace назад. Переход выполняет система (changedBy = 0).
// Ошибка одной записи не останавливает обработку остальных
func (s *Service) SweepNoShows(ctx context.Context) (int, error) {
	now := s.timeProvider.Now()
	cutoff := now.Add(-s.settings.NoShowGrace)

	overdue, err := s.repo.ListOverdueConfirmed(ctx, cutoff, s.settings.Location)
	if err != nil {
		s.logger.Error("SweepNoShows: repository error: %v", err)
		return 0, fmt.Errorf("%w: SweepNoShows - repository error: %v", ErrInternal, err)
	}

	if len(overdue) == 0 {
		return 0, nil
	}

	note := "not completed within grace period"
	marked := 0
	var errs []error

	for _, candidate := range overdue {
		changed := false
		err := s.txManager.Do(ctx, func(txCtx context.Context) error {
			appointment, err := s.repo.GetByID(txCtx, candidate.ID)
			if err != nil {
				return err
			}
			// Статус мог измениться после выборки
			if appointment.Status != domain.StatusConfirmed {
				return nil
			}

			entry, err := appointment.Transition(domain.StatusNoShow, domain.SystemActorID, now, &note)
			if err != nil {
				return err
			}
			if err := s.repo.SaveTransition(txCtx, appointment, entry); err != nil {
				return err
			}

			changed = true
			return nil
		})
		if err != nil {
			s.logger.Error("SweepNoShows: failed to mark appointment id=%d: %v", candidate.ID, err)
			errs = append(errs, fmt.Errorf("appointment id=%d: %w", candidate.ID, err))
			continue
		}

		// Счетчики только после фиксации транзакции
		if changed {
			marked++
			s.metrics.IncAppointmentTransition(string(domain.StatusNoShow))
		}
	}

	s.logger.Info("SweepNoShows: marked %d of %d overdue appointments as no_show", marked, len(overdue))

	if len(errs) > 0 {
		return marked, fmt.Errorf("%w: SweepNoShows: %v", ErrInternal, errors.Join(errs...))
	}
	return marked, nil
}

// Вспомогательные методы

// transition выполняет переход статуса.
// Права проверяются до состояния записи; сама запись перечитывается с блокировкой строки в транзакции
func (s *Service) transition(
	ctx context.Context,
	op string,
	id int64,
	actorID int64,
	action scheduling.Action,
	to domain.AppointmentStatus,
	notes *string,
	precheck func(appointment *domain.Appointment, now time.Time) error,
) (*models.AppointmentResponse, error) {
	s.logger.Info("%s: appointment id=%d by user=%d", op, id, actorID)

	current, err := s.getAppointment(ctx, op, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, op, current, actorID, action); err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	var result *domain.Appointment

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		appointment, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
		}

		if precheck != nil {
			if err := precheck(appointment, now); err != nil {
				return err
			}
		}

		entry, err := appointment.Transition(to, actorID, now, notes)
		if err != nil {
			return err
		}

		if err := s.repo.SaveTransition(txCtx, appointment, entry); err != nil {
			return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
		}

		result = appointment
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrNotFound):
			s.logger.Warn("%s: %v", op, err)
			return nil, err
		case errors.Is(err, domain.ErrInternal):
			s.logger.Error("%s: %v", op, err)
			return nil, err
		default:
			s.logger.Error("%s: transaction error for appointment id=%d: %v", op, id, err)
			return nil, fmt.Errorf("%w: %s - transaction error: %v", ErrInternal, op, err)
		}
	}

	s.metrics.IncAppointmentTransition(string(to))
	s.logger.Info("%s: appointment id=%d is now %s", op, id, result.Status)
	return models.FromDomainAppointment(result, s.settings.Location), nil
}

func (s *Service) getAppointment(ctx context.Context, op string, id int64) (*domain.Appointment, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}

	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return appointment, nil
}

func (s *Service) authorize(ctx context.Context, op string, appointment *domain.Appointment, actorID int64, action scheduling.Action) error {
	err := scheduling.Authorize(ctx, s.users, appointment, actorID, action)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrForbidden) {
		s.logger.Warn("%s: access denied for user=%d to appointment id=%d", op, actorID, appointment.ID)
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	s.logger.Error("%s: failed to authorize user=%d: %v", op, actorID, err)
	return err
}

// restrictFilter ограничивает фильтр записями, видимыми актору
func (s *Service) restrictFilter(ctx context.Context, filter *domain.AppointmentsFilter, actorID int64) error {
	if actorID <= 0 {
		return ErrAccessDenied
	}

	user, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("List: user=%d not found", actorID)
			return ErrAccessDenied
		}
		s.logger.Error("List: failed to get user=%d: %v", actorID, err)
		return fmt.Errorf("%w: List - failed to get user: %v", ErrInternal, err)
	}

	switch user.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleDoctor:
		if filter.DoctorID != nil && *filter.DoctorID != actorID {
			s.logger.Warn("List: doctor=%d requested appointments of doctor=%d", actorID, *filter.DoctorID)
			return ErrAccessDenied
		}
		filter.DoctorID = &actorID
	default:
		if filter.PatientID != nil && *filter.PatientID != actorID {
			s.logger.Warn("List: patient=%d requested appointments of patient=%d", actorID, *filter.PatientID)
			return ErrAccessDenied
		}
		filter.PatientID = &actorID
	}
	return nil
}
