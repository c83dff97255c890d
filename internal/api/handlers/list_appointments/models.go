package list_appointments

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

const maxLimit = 500

// ParseListRequest собирает фильтр из query параметров:
// status, date, startDate, endDate, doctorId, patientId, limit, offset
func ParseListRequest(query url.Values, actorID int64) (*models.ListAppointmentsRequest, error) {
	req := &models.ListAppointmentsRequest{ActorID: actorID}

	if v := query.Get("status"); v != "" {
		req.Status = &v
	}

	var err error
	if req.DoctorID, err = optionalID(query, "doctorId"); err != nil {
		return nil, err
	}
	if req.PatientID, err = optionalID(query, "patientId"); err != nil {
		return nil, err
	}
	if req.Date, err = optionalDate(query, "date"); err != nil {
		return nil, err
	}
	if req.StartDate, err = optionalDate(query, "startDate"); err != nil {
		return nil, err
	}
	if req.EndDate, err = optionalDate(query, "endDate"); err != nil {
		return nil, err
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("endDate is before startDate")
	}

	if req.Limit, err = optionalUint(query, "limit"); err != nil {
		return nil, err
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}
	if req.Offset, err = optionalUint(query, "offset"); err != nil {
		return nil, err
	}

	return req, nil
}

func optionalID(query url.Values, name string) (*int64, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid %s: %s", name, raw)
	}
	return &id, nil
}

func optionalDate(query url.Values, name string) (*time.Time, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse(domain.DateFormat, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %s", name, raw)
	}
	return &date, nil
}

func optionalUint(query url.Values, name string) (uint64, error) {
	raw := query.Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", name, raw)
	}
	return value, nil
}
