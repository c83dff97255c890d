package userservice

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// User модель пользователя из UserService
type User struct {
	ID   int64  `json:"id"`
	Role string `json:"role"` // patient, doctor, admin
}

// ToDomain конвертирует ответ сервиса в доменную модель
func (u *User) ToDomain() *domain.User {
	return &domain.User{ID: u.ID, Role: domain.Role(u.Role)}
}

// ErrorResponse модель ошибки от UserService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
