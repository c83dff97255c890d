package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const msgInternalError = "внутренняя ошибка сервера"

// maxBodyBytes ограничение размера тела запроса
const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ConflictResponse тело ответа при пересечении записей
type ConflictResponse struct {
	Code                     int    `json:"code"`
	Message                  string `json:"message"`
	Kind                     string `json:"kind"`
	ConflictingAppointmentID *int64 `json:"conflictingAppointmentId,omitempty"`
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RespondError отправляет ответ с ошибкой
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Code: status, Message: message})
}

// RespondBadRequest 400
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

// RespondUnauthorized 401
func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

// RespondForbidden 403
func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

// RespondNotFound 404
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

// RespondInternalError 500
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondConflict 409 с типом пересечения и id конфликтующей записи (если известен)
func RespondConflict(w http.ResponseWriter, message string, conflict *domain.ConflictError) {
	resp := ConflictResponse{
		Code:    http.StatusConflict,
		Message: message,
	}
	if conflict != nil {
		resp.Kind = string(conflict.Kind)
		if conflict.AppointmentID != 0 {
			id := conflict.AppointmentID
			resp.ConflictingAppointmentID = &id
		}
	}
	RespondJSON(w, http.StatusConflict, resp)
}

// DecodeJSON декодирует тело запроса в dst.
// Неизвестные поля и лишние данные после объекта считаются ошибкой
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("empty body")
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if decoder.More() {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}

// DecodeAndValidate декодирует тело запроса и проверяет теги validate
func DecodeAndValidate(r *http.Request, dst interface{}) error {
	if err := DecodeJSON(r, dst); err != nil {
		return err
	}
	return Validate(dst)
}

// Validate проверяет структуру по тегам validate и возвращает читаемое описание ошибок
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(fields, ", "))
}
