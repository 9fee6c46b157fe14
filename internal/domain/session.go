package domain

import "time"

// LogOnInfo son las credenciales recibidas en un intento de log-on.
type LogOnInfo struct {
	EmailAddress string
	Password     string
	// ClientIP acota el contador de fallos al origen del intento; puede ir vacio.
	ClientIP string
}

// LogOnResult es lo que se devuelve al cliente tras un log-on exitoso.
type LogOnResult struct {
	Token     string    `json:"token"`
	ProfileID string    `json:"profileId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Session es la vista de la sesion autenticada actual.
type Session struct {
	ProfileID string `json:"profileId"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
}
