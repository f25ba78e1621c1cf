package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/citamed/api/internal/service"
)

type DoctorHandler struct {
	doctors *service.DoctorService
}

func NewDoctorHandler(doctors *service.DoctorService) *DoctorHandler {
	return &DoctorHandler{doctors: doctors}
}

func (h *DoctorHandler) Create(c *gin.Context) {
	var req createDoctorRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.Validate()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	d, err := h.doctors.Create(c.Request.Context(), actor(c), cmd, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, "Doctor creado exitosamente", d)
}

func (h *DoctorHandler) List(c *gin.Context) {
	docs, err := h.doctors.List(c.Request.Context(), c.Query("specialty"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", docs)
}

func (h *DoctorHandler) ListBySpecialty(c *gin.Context) {
	docs, err := h.doctors.List(c.Request.Context(), c.Param("specialty"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", docs)
}

func (h *DoctorHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	d, err := h.doctors.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", d)
}

func (h *DoctorHandler) GetByUser(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}

	d, err := h.doctors.GetByUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", d)
}

func (h *DoctorHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateDoctorRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.Validate()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	d, err := h.doctors.Update(c.Request.Context(), actor(c), id, cmd, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "Doctor actualizado exitosamente", d)
}

func (h *DoctorHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.doctors.Delete(c.Request.Context(), actor(c), id, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "Doctor eliminado exitosamente", nil)
}
