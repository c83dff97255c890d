package userservice

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrUserNotFound возвращается, когда пользователя нет в справочнике.
	// Оборачивает domain.ErrNotFound, поэтому проверки errors.Is(err, domain.ErrNotFound) срабатывают
	ErrUserNotFound = fmt.Errorf("userservice client: %w: user", domain.ErrNotFound)

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("userservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("userservice client: invalid response")

	// ErrCache возвращается при ошибках кэша ролей
	ErrCache = errors.New("userservice client: cache error")
)
