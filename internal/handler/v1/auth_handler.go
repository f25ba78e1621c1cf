package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/citamed/api/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd, err := req.Validate()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	user, pair, err := h.auth.Register(c.Request.Context(), cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, "Usuario registrado exitosamente", gin.H{
		"user":  user,
		"token": pair,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondServiceError(c, err)
		return
	}

	user, pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", gin.H{
		"user":  user,
		"token": pair,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.RefreshToken == "" {
		respondError(c, http.StatusBadRequest, "refreshToken is required")
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", gin.H{"token": pair})
}

// Profile returns the authenticated user's own account.
func (h *AuthHandler) Profile(c *gin.Context) {
	claims := actor(c)
	if claims == nil {
		respondError(c, http.StatusUnauthorized, "authorization token required")
		return
	}

	user, err := h.auth.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", user)
}
