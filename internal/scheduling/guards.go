package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Action действие над записью, для которого проверяются права актора
type Action string

const (
	ActionView       Action = "view"
	ActionConfirm    Action = "confirm"
	ActionComplete   Action = "complete"
	ActionCancel     Action = "cancel"
	ActionReschedule Action = "reschedule"
	ActionAdminNotes Action = "admin_notes"
)

type party int

const (
	partyPatient party = 1 << iota
	partyDoctor
)

// allowedParties стороны записи, которым действие разрешено без обращения к справочнику.
// Администратор допускается для любого действия
var allowedParties = map[Action]party{
	ActionView:       partyPatient | partyDoctor,
	ActionConfirm:    partyDoctor,
	ActionComplete:   partyDoctor,
	ActionCancel:     partyPatient | partyDoctor,
	ActionReschedule: partyPatient,
	ActionAdminNotes: 0,
}

// UserDirectory справочник пользователей.
// Для неизвестного пользователя возвращает ошибку, оборачивающую domain.ErrNotFound
type UserDirectory interface {
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// Authorize проверяет, что актор может выполнить действие над записью
func Authorize(ctx context.Context, directory UserDirectory, appointment *domain.Appointment, actorID int64, action Action) error {
	if actorID <= 0 {
		return fmt.Errorf("%w: actor is required", domain.ErrForbidden)
	}

	parties, ok := allowedParties[action]
	if !ok {
		return fmt.Errorf("%w: unknown action %q", domain.ErrInternal, action)
	}

	if parties&partyPatient != 0 && appointment.PatientID == actorID {
		return nil
	}
	if parties&partyDoctor != 0 && appointment.DoctorID == actorID {
		return nil
	}

	isAdmin, err := IsAdmin(ctx, directory, actorID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return fmt.Errorf("%w: user id=%d cannot %s appointment id=%d", domain.ErrForbidden, actorID, action, appointment.ID)
	}
	return nil
}

// IsAdmin проверяет роль администратора по справочнику.
// Неизвестный пользователь не является администратором
func IsAdmin(ctx context.Context, directory UserDirectory, userID int64) (bool, error) {
	user, err := directory.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to get user id=%d: %v", domain.ErrInternal, userID, err)
	}
	return user.IsAdmin(), nil
}

// RequireRole проверяет, что пользователь существует и имеет указанную роль.
// Неизвестный пользователь или другая роль дают domain.ErrNotFound
func RequireRole(ctx context.Context, directory UserDirectory, userID int64, role domain.Role) error {
	user, err := directory.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: %s id=%d", domain.ErrNotFound, role, userID)
		}
		return fmt.Errorf("%w: failed to get user id=%d: %v", domain.ErrInternal, userID, err)
	}
	if user.Role != role {
		return fmt.Errorf("%w: %s id=%d", domain.ErrNotFound, role, userID)
	}
	return nil
}

// CheckLeadTime проверяет, что до начала интервала не меньше leadTime.
// Ровно leadTime допускается
func CheckLeadTime(interval domain.Interval, now time.Time, loc *time.Location, leadTime time.Duration) error {
	if interval.StartAt(loc).Sub(now) < leadTime {
		return fmt.Errorf("%w: appointment must be booked at least %s in advance", domain.ErrValidation, leadTime)
	}
	return nil
}

// CheckCancellable проверяет политику отмены: запись еще не началась
func CheckCancellable(appointment *domain.Appointment, now time.Time, loc *time.Location) error {
	if !now.Before(appointment.StartAt(loc)) {
		return fmt.Errorf("%w: appointment id=%d has already started", domain.ErrInvalidState, appointment.ID)
	}
	return nil
}
