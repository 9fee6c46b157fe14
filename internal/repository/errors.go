package repository

import "errors"

var (
	// ErrNotFound se devuelve cuando el registro no existe.
	ErrNotFound = errors.New("not found")
	// ErrConflict se devuelve cuando una escritura viola una restriccion de unicidad.
	ErrConflict = errors.New("conflict")
)
