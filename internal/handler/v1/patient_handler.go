package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/citamed/api/internal/domain"
	"github.com/citamed/api/internal/service"
)

type PatientHandler struct {
	patients *service.PatientService
}

func NewPatientHandler(patients *service.PatientService) *PatientHandler {
	return &PatientHandler{patients: patients}
}

func (h *PatientHandler) Create(c *gin.Context) {
	var req createPatientRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.Validate()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	p, err := h.patients.Create(c.Request.Context(), actor(c), cmd, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, "Paciente creado exitosamente", p)
}

// Search lists all patients, or the autocomplete matches when ?q= is set.
func (h *PatientHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		patients, err := h.patients.List(c.Request.Context())
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, "", patients)
		return
	}

	patients, err := h.patients.Search(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", patients)
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.patients.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", p)
}

// GetByUser resolves the patient record behind a user account. Patients may
// only look up their own.
func (h *PatientHandler) GetByUser(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}

	claims := actor(c)
	if claims.Role == domain.RolePatient && claims.UserID != userID {
		respondError(c, http.StatusForbidden, "access denied")
		return
	}

	p, err := h.patients.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", p)
}

func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updatePatientRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.Validate()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	p, err := h.patients.Update(c.Request.Context(), actor(c), id, cmd, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "Paciente actualizado exitosamente", p)
}

func (h *PatientHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.patients.Delete(c.Request.Context(), actor(c), id, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "Paciente eliminado exitosamente", nil)
}
