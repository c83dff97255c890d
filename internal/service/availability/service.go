package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability/models"
)

// Service сервис для работы с расписаниями врачей
type Service struct {
	repo      AvailabilityRepository
	users     UserDirectory
	txManager TransactionManager
	logger    Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	repo AvailabilityRepository,
	users UserDirectory,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		txManager: txManager,
		logger:    logger,
	}
}

// Get получает расписание врача. Расписание публичное
func (s *Service) Get(ctx context.Context, doctorID int64) (*models.AvailabilityResponse, error) {
	s.logger.Info("Get: fetching availability for doctor=%d", doctorID)

	if doctorID <= 0 {
		return nil, fmt.Errorf("%w: doctorID must be positive", ErrInvalidInput)
	}

	availability, err := s.repo.GetByDoctorID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrAvailabilityNotFound) {
			s.logger.Warn("Get: availability for doctor=%d not found", doctorID)
			return nil, ErrAvailabilityNotFound
		}
		s.logger.Error("Get: repository error for doctor=%d: %v", doctorID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAvailability(availability), nil
}

// Upsert создает или заменяет расписание врача.
// Доступно самому врачу и администратору
func (s *Service) Upsert(ctx context.Context, req *models.UpsertAvailabilityRequest) (*models.AvailabilityResponse, error) {
	s.logger.Info("Upsert: availability for doctor=%d by user=%d", req.DoctorID, req.ActorID)

	// 1. Валидация
	availability, err := req.ToDomain()
	if err != nil {
		s.logger.Warn("Upsert: invalid request: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.DoctorID <= 0 {
		return nil, fmt.Errorf("%w: doctorID must be positive", ErrInvalidInput)
	}
	if err := availability.Validate(); err != nil {
		s.logger.Warn("Upsert: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 2. Права: сам врач или администратор
	if err := s.checkWriteAccess(ctx, req.DoctorID, req.ActorID); err != nil {
		return nil, err
	}

	// 3. Врач должен существовать
	if err := scheduling.RequireRole(ctx, s.users, req.DoctorID, domain.RoleDoctor); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("Upsert: doctor id=%d not found", req.DoctorID)
			return nil, ErrDoctorNotFound
		}
		s.logger.Error("Upsert: failed to get doctor id=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 4. Сохраняем в транзакции: окна заменяются целиком
	var result *domain.DoctorAvailability
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		saved, err := s.repo.Upsert(txCtx, availability)
		if err != nil {
			return err
		}
		result = saved
		return nil
	})
	if err != nil {
		s.logger.Error("Upsert: repository error for doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: Upsert - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Upsert: successfully saved availability for doctor=%d (%d days, %d windows)",
		req.DoctorID, len(result.AvailableDays), len(result.Windows))
	return models.FromDomainAvailability(result), nil
}

// checkWriteAccess проверяет, что пользователь может менять расписание врача
func (s *Service) checkWriteAccess(ctx context.Context, doctorID, actorID int64) error {
	if actorID <= 0 {
		s.logger.Warn("checkWriteAccess: anonymous user cannot change availability of doctor=%d", doctorID)
		return ErrAccessDenied
	}
	if actorID == doctorID {
		return nil
	}

	isAdmin, err := scheduling.IsAdmin(ctx, s.users, actorID)
	if err != nil {
		s.logger.Error("checkWriteAccess: failed to check user=%d: %v", actorID, err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if !isAdmin {
		s.logger.Warn("checkWriteAccess: user=%d cannot change availability of doctor=%d", actorID, doctorID)
		return ErrAccessDenied
	}
	return nil
}
