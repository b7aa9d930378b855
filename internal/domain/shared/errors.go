package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// ConflictError is returned when a mutation carries a stale version. It
// carries the server-side version so the client can refresh and retry.
type ConflictError struct {
	ServerVersion int
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return fmt.Sprintf("the record has been modified by another user (server version %d)", e.ServerVersion)
}

// NewConflictError creates a ConflictError carrying the current server version
func NewConflictError(serverVersion int) *ConflictError {
	return &ConflictError{ServerVersion: serverVersion}
}

// NewBusinessRuleError creates a domain error for a generation-pipeline
// precondition violation
func NewBusinessRuleError(message string) *DomainError {
	return NewDomainError("BUSINESS_RULE", message)
}

// Common domain errors
var (
	ErrNotFound        = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists   = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput    = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized    = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden       = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState    = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrLockWaitTimeout = NewDomainError("LOCK_WAIT_TIMEOUT", "Timed out waiting for a record lock, please retry")
	ErrOwnerProtected  = NewDomainError("OWNER_PROTECTED", "User still owns records that block deletion")
)
