package domain

import (
	"errors"
	"fmt"
)

// Erros base da taxonomia compartilhada entre os casos de uso
var (
	ErrNotFound         = errors.New("entity not found")
	ErrValidation       = errors.New("validation failure")
	ErrStoreUnavailable = errors.New("document store unavailable")
	ErrDriftDetected    = errors.New("aggregate drift detected")
)

// NotFoundError indica que um dono ou lançamento não existe no store
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s/%s", ErrNotFound.Error(), e.Collection, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError cria um NotFoundError para a coleção e id informados
func NewNotFoundError(collection, id string) *NotFoundError {
	return &NotFoundError{Collection: collection, ID: id}
}

// ValidationError indica um valor malformado na entrada de uma operação
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError cria um ValidationError para o campo informado
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// StoreError envolve uma falha transitória de I/O do document store
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable.Error(), e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return ErrStoreUnavailable }

// DriftError é levantado apenas pela checagem interna do job de
// reconciliação; nunca pelas operações do caminho quente
type DriftError struct {
	Collection string
	ID         string
	Field      string
	Stored     int64
	Expected   int64
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("%s: %s/%s campo %s armazenado=%d esperado=%d",
		ErrDriftDetected.Error(), e.Collection, e.ID, e.Field, e.Stored, e.Expected)
}

func (e *DriftError) Unwrap() error { return ErrDriftDetected }
