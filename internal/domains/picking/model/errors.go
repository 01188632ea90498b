package model

import "errors"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeInsufficientRemaining = "PCK001"
	ErrCodeLineNotFound          = "PCK002"
	ErrCodeInvalidQuantity       = "PCK003"
	ErrCodeNothingToRevert       = "PCK004"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrInsufficientRemaining = errors.New("insufficient remaining quantity")
	ErrLineNotFound          = errors.New("order line not found")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrNothingToRevert       = errors.New("nothing to revert")
)
