package model

import "errors"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeOrderNotFound     = "ORD001"
	ErrCodeInvalidTransition = "ORD002"
	ErrCodeInvalidSplit      = "ORD003"
	ErrCodeLineNotFound      = "ORD004"
	ErrCodeInvalidStatus     = "ORD005"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrInvalidSplit      = errors.New("invalid split assignment")
	ErrLineNotFound      = errors.New("order line not found")
	ErrInvalidStatus     = errors.New("invalid target status")
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================
type OrderError struct {
	Code    string
	Message string
	Err     error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

func NewOrderError(code, message string, err error) *OrderError {
	return &OrderError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
