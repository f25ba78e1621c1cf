package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/citamed/api/internal/domain/appointment"
	"github.com/citamed/api/internal/service"
)

type AppointmentHandler struct {
	appointments *service.AppointmentService
}

func NewAppointmentHandler(appointments *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.Validate()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	appt, err := h.appointments.Create(c.Request.Context(), actor(c), cmd, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, "Cita médica creada exitosamente", appt)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	appts, err := h.appointments.List(c.Request.Context(), actor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", appts)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	appt, err := h.appointments.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", appt)
}

func (h *AppointmentHandler) ListByPatient(c *gin.Context) {
	patientID, ok := parseUUID(c, "patientId")
	if !ok {
		return
	}

	appts, err := h.appointments.ListByPatient(c.Request.Context(), actor(c), patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", appts)
}

func (h *AppointmentHandler) ListByDoctor(c *gin.Context) {
	doctorID, ok := parseUUID(c, "doctorId")
	if !ok {
		return
	}

	appts, err := h.appointments.ListByDoctor(c.Request.Context(), doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", appts)
}

func (h *AppointmentHandler) ListByStatus(c *gin.Context) {
	status := appointment.Status(strings.ToUpper(c.Param("status")))
	if !status.IsValid() {
		respondError(c, http.StatusBadRequest, "Status no válido. Debe ser: PENDING, CONFIRMED o CANCELLED")
		return
	}

	appts, err := h.appointments.ListByStatus(c.Request.Context(), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", appts)
}

func (h *AppointmentHandler) ListByDateRange(c *gin.Context) {
	startRaw, endRaw := c.Query("startDate"), c.Query("endDate")
	if startRaw == "" || endRaw == "" {
		respondError(c, http.StatusBadRequest, "startDate y endDate son requeridos")
		return
	}

	start, okStart := parseDate(startRaw)
	end, okEnd := parseDate(endRaw)
	if !okStart || !okEnd {
		respondError(c, http.StatusBadRequest, "Fechas no válidas")
		return
	}
	if start.After(end) {
		respondError(c, http.StatusBadRequest, "La fecha de inicio debe ser anterior a la fecha de fin")
		return
	}

	appts, err := h.appointments.ListByDateRange(c.Request.Context(), start, end)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", appts)
}

func (h *AppointmentHandler) AvailableSlots(c *gin.Context) {
	doctorID, ok := parseUUID(c, "doctorId")
	if !ok {
		return
	}

	dateRaw := c.Query("date")
	if dateRaw == "" {
		respondError(c, http.StatusBadRequest, "La fecha es requerida")
		return
	}
	date, okDate := parseDate(dateRaw)
	if !okDate {
		respondError(c, http.StatusBadRequest, "Fecha no válida")
		return
	}

	slots, err := h.appointments.AvailableSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", slots)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.Validate()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	appt, err := h.appointments.Update(c.Request.Context(), actor(c), id, cmd, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "Cita médica actualizada exitosamente", appt)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	// The body is optional; an empty or absent one means no reason.
	var req deleteAppointmentRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.appointments.Delete(c.Request.Context(), actor(c), id, req.Reason, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "Cita médica eliminada exitosamente", nil)
}

func (h *AppointmentHandler) SendReminder(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.appointments.SendReminder(c.Request.Context(), actor(c), id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "Recordatorio enviado exitosamente", nil)
}
