package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/citamed/api/internal/domain"
	"github.com/citamed/api/internal/service"
)

type AdminHandler struct {
	admin *service.AdminService
}

func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) Metrics(c *gin.Context) {
	m, err := h.admin.Metrics(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", m)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page := parseQueryInt(c, "page", 1)
	limit := parseQueryInt(c, "limit", 20)

	users, total, err := h.admin.ListUsers(c.Request.Context(), nil, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", gin.H{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (h *AdminHandler) ListUsersByRole(c *gin.Context) {
	role, ok := domain.ParseRole(c.Param("role"))
	if !ok {
		respondError(c, http.StatusBadRequest, "Rol no válido. Debe ser: ADMIN, DOCTOR o PATIENT")
		return
	}

	page := parseQueryInt(c, "page", 1)
	limit := parseQueryInt(c, "limit", 20)

	users, total, err := h.admin.ListUsers(c.Request.Context(), &role, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", gin.H{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetUser serves admins and the account owner; everyone else is refused.
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if !ownershipOrAdmin(c, id) {
		return
	}

	user, err := h.admin.GetUser(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "", user)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if !ownershipOrAdmin(c, id) {
		return
	}

	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.Validate()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	user, err := h.admin.UpdateUser(c.Request.Context(), actor(c), id, cmd, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "Usuario actualizado exitosamente", user)
}

func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateUserRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	role, err := req.Validate()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	user, err := h.admin.UpdateUserRole(c.Request.Context(), actor(c), id, role, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "Rol actualizado exitosamente", user)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.admin.DeleteUser(c.Request.Context(), actor(c), id, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "Usuario eliminado exitosamente", nil)
}

func ownershipOrAdmin(c *gin.Context, id uuid.UUID) bool {
	claims := actor(c)
	if claims.Role == domain.RoleAdmin || claims.UserID == id {
		return true
	}
	respondError(c, http.StatusForbidden, "access denied")
	return false
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}
