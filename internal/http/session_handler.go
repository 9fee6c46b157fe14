package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"profile-auth/internal/domain"
	"profile-auth/internal/service"
)

// SessionHandler mantiene dependencias para los endpoints /v1/session.
type SessionHandler struct {
	logger   *zap.Logger
	authServ *service.AuthenticationService
}

func NewSessionHandler(logger *zap.Logger, authServ *service.AuthenticationService) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{
		logger:   logger,
		authServ: authServ,
	}
}

// LogOn maneja POST /v1/session.
func (h *SessionHandler) LogOn(c *gin.Context) {
	var req struct {
		EmailAddress string `json:"emailAddress"`
		Password     string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid log-on request", zap.Error(err))
		badRequest(c, "The request body is not valid JSON.")
		return
	}

	result, err := h.authServ.LogOn(c.Request.Context(), domain.LogOnInfo{
		EmailAddress: req.EmailAddress,
		Password:     req.Password,
		ClientIP:     c.ClientIP(),
	})
	if err != nil {
		h.logger.Error("log-on failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, standardResponse{Message: "There was a problem authenticating you."})
		return
	}
	if result == nil {
		c.JSON(http.StatusUnauthorized, standardResponse{Message: "Authentication failed. E-mail address or password incorrect."})
		return
	}

	c.JSON(http.StatusCreated, standardResponse{
		Success: true,
		Message: "You have been successfully authenticated.",
		Data:    result,
	})
}

// GetSession maneja GET /v1/session.
func (h *SessionHandler) GetSession(c *gin.Context) {
	profile, ok := GetAuthProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, standardResponse{Message: "Unauthorized."})
		return
	}
	c.JSON(http.StatusOK, standardResponse{
		Success: true,
		Data:    sessionView(profile),
	})
}

// LogOut maneja DELETE /v1/session.
func (h *SessionHandler) LogOut(c *gin.Context) {
	profile, okProfile := GetAuthProfile(c)
	claims, okClaims := GetAuthClaims(c)
	if !okProfile || !okClaims {
		c.JSON(http.StatusUnauthorized, standardResponse{Message: "Unauthorized."})
		return
	}

	ok, err := h.authServ.LogOut(c.Request.Context(), profile, claims)
	if err != nil {
		h.logger.Error("log-out failed", zap.Error(err), zap.String("profile_id", profile.ID))
		c.JSON(http.StatusInternalServerError, standardResponse{Message: "There was a problem logging you out."})
		return
	}
	if !ok {
		c.JSON(http.StatusInternalServerError, standardResponse{Message: "You have not been logged out."})
		return
	}
	c.JSON(http.StatusOK, standardResponse{Success: true, Message: "You have been successfully logged out."})
}

func sessionView(profile domain.Profile) domain.Session {
	return domain.Session{
		ProfileID: profile.ID,
		Email:     profile.Email,
		FullName:  profile.FullName,
	}
}
