package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"profile-auth/internal/service"
)

// ProfileHandler mantiene dependencias para los endpoints /v1/profile.
type ProfileHandler struct {
	logger      *zap.Logger
	profileServ *service.ProfileService
}

// NewProfileHandler crea una instancia de ProfileHandler con dependencias necesarias.
func NewProfileHandler(logger *zap.Logger, profileServ *service.ProfileService) *ProfileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{
		logger:      logger,
		profileServ: profileServ,
	}
}

var errInvalidBirthday = errors.New("invalid birthday")

// birthdayLayouts son los formatos aceptados para birthday, en orden.
var birthdayLayouts = []string{"2006-01-02", time.RFC3339}

func parseBirthday(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errInvalidBirthday
}

// CreateProfile maneja POST /v1/profile.
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req struct {
		EmailAddress string `json:"emailAddress"`
		Password     string `json:"password"`
		FullName     string `json:"fullName"`
		Birthday     string `json:"birthday"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create profile request", zap.Error(err))
		badRequest(c, "The request body is not valid JSON.")
		return
	}
	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		badRequest(c, "The birthday must be a date in YYYY-MM-DD format.")
		return
	}

	_, reasons := h.profileServ.CreateNewProfile(c.Request.Context(), service.NewProfileInput{
		Email:    req.EmailAddress,
		Password: req.Password,
		FullName: req.FullName,
		Birthday: birthday,
	})
	writeReasons(c, createOutcomes, reasons...)
}

// ConfirmEmail maneja PATCH /v1/profile.
func (h *ProfileHandler) ConfirmEmail(c *gin.Context) {
	var req struct {
		EmailAddress      string `json:"emailAddress"`
		ConfirmationToken string `json:"confirmationToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid confirm email request", zap.Error(err))
		badRequest(c, "The request body is not valid JSON.")
		return
	}

	reason := h.profileServ.ConfirmProfileEmailAddress(c.Request.Context(), req.EmailAddress, req.ConfirmationToken)
	writeReasons(c, confirmOutcomes, reason)
}

// GetProfile maneja GET /v1/profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, ok := GetAuthProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, standardResponse{Message: "Unauthorized."})
		return
	}
	c.JSON(http.StatusOK, standardResponse{
		Success: true,
		Data:    service.CleanProfileForClient(profile),
	})
}

// UpdateProfile maneja PUT /v1/profile. Los campos ausentes no se modifican.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	profile, ok := GetAuthProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, standardResponse{Message: "Unauthorized."})
		return
	}

	var req struct {
		EmailAddress *string `json:"emailAddress"`
		Password     *string `json:"password"`
		FullName     *string `json:"fullName"`
		Birthday     *string `json:"birthday"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update profile request", zap.Error(err))
		badRequest(c, "The request body is not valid JSON.")
		return
	}

	input := service.UpdateProfileInput{
		Email:    req.EmailAddress,
		Password: req.Password,
		FullName: req.FullName,
	}
	if req.Birthday != nil {
		birthday, err := parseBirthday(*req.Birthday)
		if err != nil {
			badRequest(c, "The birthday must be a date in YYYY-MM-DD format.")
			return
		}
		input.Birthday = &birthday
	}

	reason := h.profileServ.UpdateProfile(c.Request.Context(), profile.ID, input)
	writeReasons(c, updateOutcomes, reason)
}

// DeactivateProfile maneja DELETE /v1/profile.
func (h *ProfileHandler) DeactivateProfile(c *gin.Context) {
	profile, ok := GetAuthProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, standardResponse{Message: "Unauthorized."})
		return
	}
	reason := h.profileServ.DeactivateProfile(c.Request.Context(), profile.ID)
	writeReasons(c, deactivateOutcomes, reason)
}
