package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profile-auth/internal/domain"
)

// standardResponse es el sobre JSON comun a todos los endpoints.
type standardResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type reasonOutcome struct {
	status  int
	message string
}

// Cada operacion tiene su propio texto por razon; las razones ausentes caen en UNKNOWN.
var (
	createOutcomes = map[domain.FailureReason]reasonOutcome{
		domain.FailureNone:             {http.StatusCreated, "Your profile has been created successfully."},
		domain.FailureDuplicateEmail:   {http.StatusConflict, "An account with this e-mail address already exists."},
		domain.FailureInactiveProfile:  {http.StatusUnauthorized, "The account is currently inactive."},
		domain.FailureMissingRequired:  {http.StatusBadRequest, "A required field is missing from your profile or is not valid."},
		domain.FailureUnconfirmedEmail: {http.StatusConflict, "The e-mail address for this account has not been confirmed yet."},
		domain.FailureUnknown:          {http.StatusInternalServerError, "There was an unknown error creating your profile."},
	}

	confirmOutcomes = map[domain.FailureReason]reasonOutcome{
		domain.FailureNone:               {http.StatusOK, "Your e-mail address has been confirmed successfully."},
		domain.FailureDuplicateEmail:     {http.StatusConflict, "This e-mail address had already been confirmed."},
		domain.FailureInactiveProfile:    {http.StatusUnauthorized, "This profile is currently inactive."},
		domain.FailureNonExistentProfile: {http.StatusNotFound, "A profile with the given e-mail address and confirmation token was not found."},
		domain.FailureUnknown:            {http.StatusInternalServerError, "There was an unknown error confirming your e-mail address."},
	}

	updateOutcomes = map[domain.FailureReason]reasonOutcome{
		domain.FailureNone:               {http.StatusOK, "Your profile has been updated successfully."},
		domain.FailureDuplicateEmail:     {http.StatusConflict, "An account with this e-mail address already exists."},
		domain.FailureInactiveProfile:    {http.StatusUnauthorized, "This profile is currently inactive."},
		domain.FailureMissingRequired:    {http.StatusBadRequest, "A field is empty or not valid."},
		domain.FailureNonExistentProfile: {http.StatusNotFound, "The profile was not found."},
		domain.FailureUnknown:            {http.StatusInternalServerError, "There was an unknown error updating your profile."},
	}

	deactivateOutcomes = map[domain.FailureReason]reasonOutcome{
		domain.FailureNone:               {http.StatusOK, "Your profile has been deactivated."},
		domain.FailureNonExistentProfile: {http.StatusNotFound, "The profile was not found."},
		domain.FailureUnknown:            {http.StatusInternalServerError, "There was an unknown error deactivating your profile."},
	}
)

// buildReasonResponse concatena el mensaje de cada razon; la ultima razon decide el status.
func buildReasonResponse(outcomes map[domain.FailureReason]reasonOutcome, reasons []domain.FailureReason) (int, standardResponse) {
	if len(reasons) == 0 {
		reasons = []domain.FailureReason{domain.FailureUnknown}
	}
	status := http.StatusInternalServerError
	var msg strings.Builder
	for _, reason := range reasons {
		outcome, ok := outcomes[reason]
		if !ok {
			outcome = outcomes[domain.FailureUnknown]
		}
		status = outcome.status
		msg.WriteString(outcome.message)
		msg.WriteString(" ")
	}
	return status, standardResponse{
		Success: domain.Succeeded(reasons),
		Message: strings.TrimRight(msg.String(), " "),
	}
}

func writeReasons(c *gin.Context, outcomes map[domain.FailureReason]reasonOutcome, reasons ...domain.FailureReason) {
	status, resp := buildReasonResponse(outcomes, reasons)
	c.JSON(status, resp)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, standardResponse{Success: false, Message: message})
}
