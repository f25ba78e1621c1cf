package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/citamed/api/internal/domain/appointment"
	"github.com/citamed/api/internal/domain/doctor"
	"github.com/citamed/api/internal/domain/patient"
	"github.com/citamed/api/internal/service"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, APIResponse{OK: true, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, APIResponse{OK: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{OK: false, Message: message})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		respondError(c, http.StatusBadRequest, validErr.Message)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, err.Error())

	case errors.Is(err, service.ErrEmailNotVerified),
		errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, appointment.ErrAppointmentNotFound),
		errors.Is(err, doctor.ErrDoctorNotFound),
		errors.Is(err, patient.ErrPatientNotFound):
		respondError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrCannotDeleteSelf),
		errors.Is(err, service.ErrRoleChangeBlocked),
		errors.Is(err, service.ErrUserHasActive),
		errors.Is(err, appointment.ErrSlotUnavailable),
		errors.Is(err, doctor.ErrEmailInUse),
		errors.Is(err, doctor.ErrLicenseInUse),
		errors.Is(err, doctor.ErrUserAlreadyLinked),
		errors.Is(err, doctor.ErrHasActiveAppointments),
		errors.Is(err, patient.ErrUserAlreadyLinked),
		errors.Is(err, patient.ErrHasActiveAppointments):
		respondError(c, http.StatusConflict, err.Error())

	case errors.Is(err, appointment.ErrInvalidStatus),
		errors.Is(err, appointment.ErrReminderNotAllowed),
		errors.Is(err, appointment.ErrReminderInPast):
		respondError(c, http.StatusBadRequest, err.Error())

	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		respondError(c, http.StatusBadRequest, "El ID no es válido")
		return uuid.Nil, false
	}
	return id, true
}
