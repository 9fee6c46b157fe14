package domain

import "time"

// Profile es el registro persistido de un usuario (credenciales + metadatos).
type Profile struct {
	ID                     string    `json:"id"`
	Email                  string    `json:"email"`
	PasswordHash           string    `json:"-"`
	FullName               string    `json:"fullName"`
	Birthday               time.Time `json:"birthday"`
	IsEmailConfirmed       bool      `json:"isEmailConfirmed"`
	IsDeactivated          bool      `json:"isDeactivated"`
	EmailConfirmationToken string    `json:"-"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// ClientProfile es la proyeccion segura de un Profile para el cliente.
// No tiene campos para el hash de la password ni para el token de confirmacion.
type ClientProfile struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"fullName"`
	Birthday         time.Time `json:"birthday"`
	IsEmailConfirmed bool      `json:"isEmailConfirmed"`
	IsDeactivated    bool      `json:"isDeactivated"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ProfileUpdate describe un cambio parcial a nivel de store; nil significa "sin cambios".
type ProfileUpdate struct {
	Email                  *string
	PasswordHash           *string
	FullName               *string
	Birthday               *time.Time
	IsEmailConfirmed       *bool
	IsDeactivated          *bool
	EmailConfirmationToken *string
}

// Empty indica si el update no modifica ningun campo.
func (u ProfileUpdate) Empty() bool {
	return u.Email == nil &&
		u.PasswordHash == nil &&
		u.FullName == nil &&
		u.Birthday == nil &&
		u.IsEmailConfirmed == nil &&
		u.IsDeactivated == nil &&
		u.EmailConfirmationToken == nil
}

// Apply devuelve una copia del perfil con los cambios aplicados.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.PasswordHash != nil {
		p.PasswordHash = *u.PasswordHash
	}
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.Birthday != nil {
		p.Birthday = *u.Birthday
	}
	if u.IsEmailConfirmed != nil {
		p.IsEmailConfirmed = *u.IsEmailConfirmed
	}
	if u.IsDeactivated != nil {
		p.IsDeactivated = *u.IsDeactivated
	}
	if u.EmailConfirmationToken != nil {
		p.EmailConfirmationToken = *u.EmailConfirmationToken
	}
	return p
}
