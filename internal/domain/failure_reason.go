package domain

// FailureReason es el codigo de resultado de una operacion sobre perfiles.
// Varias razones pueden coexistir en una misma respuesta.
type FailureReason string

const (
	FailureNone               FailureReason = "NONE"
	FailureDuplicateEmail     FailureReason = "DUPLICATE_EMAIL"
	FailureInactiveProfile    FailureReason = "INACTIVE_PROFILE"
	FailureUnconfirmedEmail   FailureReason = "UNCONFIRMED_EMAIL"
	FailureMissingRequired    FailureReason = "MISSING_REQUIRED"
	FailureNonExistentProfile FailureReason = "NON_EXISTENT_PROFILE"
	FailureUnknown            FailureReason = "UNKNOWN"
)

func (r FailureReason) String() string {
	return string(r)
}

// Succeeded reporta si una secuencia de razones representa exito.
func Succeeded(reasons []FailureReason) bool {
	return len(reasons) == 1 && reasons[0] == FailureNone
}
