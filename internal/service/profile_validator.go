package service

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"profile-auth/internal/domain"
)

// NewProfileInput son los datos de alta de un perfil.
type NewProfileInput struct {
	Email    string
	Password string
	FullName string
	Birthday time.Time
}

// UpdateProfileInput es un cambio parcial pedido por el dueño del perfil; nil = sin cambio.
type UpdateProfileInput struct {
	Email    *string
	Password *string
	FullName *string
	Birthday *time.Time
}

// maxPasswordBytes es el limite de entrada de bcrypt.
const maxPasswordBytes = 72

// ProfileValidator evalua un perfil propuesto contra el registro existente con el mismo email.
// No tiene estado ni hace I/O.
type ProfileValidator struct{}

// RequiredErrors devuelve los campos obligatorios ausentes o invalidos, o nil.
// La password se mide sin recortar porque es lo que recibe bcrypt.
func (ProfileValidator) RequiredErrors(in NewProfileInput) error {
	fields := struct {
		Email       string
		Password    string
		RawPassword string
		FullName    string
		Birthday    time.Time
	}{
		Email:       strings.TrimSpace(in.Email),
		Password:    strings.TrimSpace(in.Password),
		RawPassword: in.Password,
		FullName:    strings.TrimSpace(in.FullName),
		Birthday:    in.Birthday,
	}
	return validation.ValidateStruct(&fields,
		validation.Field(&fields.Email, validation.Required),
		validation.Field(&fields.Password, validation.Required),
		validation.Field(&fields.RawPassword, validation.Length(1, maxPasswordBytes)),
		validation.Field(&fields.FullName, validation.Required),
		validation.Field(&fields.Birthday, validation.Required),
	)
}

// UpdateErrors devuelve error si algun campo presente en el update quedaria vacio o invalido.
func (ProfileValidator) UpdateErrors(in UpdateProfileInput) error {
	fields := struct {
		Email       *string
		Password    *string
		RawPassword *string
		FullName    *string
		Birthday    *time.Time
	}{
		Email:       trimmedPtr(in.Email),
		Password:    trimmedPtr(in.Password),
		RawPassword: in.Password,
		FullName:    trimmedPtr(in.FullName),
		Birthday:    in.Birthday,
	}
	return validation.ValidateStruct(&fields,
		validation.Field(&fields.Email, validation.NilOrNotEmpty),
		validation.Field(&fields.Password, validation.NilOrNotEmpty),
		validation.Field(&fields.RawPassword, validation.Length(1, maxPasswordBytes)),
		validation.Field(&fields.FullName, validation.NilOrNotEmpty),
		validation.Field(&fields.Birthday, validation.NilOrNotEmpty),
	)
}

// ClassifyExisting devuelve las razones para un email ya registrado, siempre en el orden
// DUPLICATE_EMAIL, INACTIVE_PROFILE, UNCONFIRMED_EMAIL.
func (ProfileValidator) ClassifyExisting(existing domain.Profile) []domain.FailureReason {
	reasons := []domain.FailureReason{domain.FailureDuplicateEmail}
	if existing.IsDeactivated {
		reasons = append(reasons, domain.FailureInactiveProfile)
	}
	if !existing.IsEmailConfirmed {
		reasons = append(reasons, domain.FailureUnconfirmedEmail)
	}
	return reasons
}

// Evaluate aplica la maquina de estados completa del alta. existing es nil si el email es nuevo.
func (v ProfileValidator) Evaluate(in NewProfileInput, existing *domain.Profile) []domain.FailureReason {
	if v.RequiredErrors(in) != nil {
		return []domain.FailureReason{domain.FailureMissingRequired}
	}
	if existing == nil {
		return []domain.FailureReason{domain.FailureNone}
	}
	return v.ClassifyExisting(*existing)
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
