package model

import "errors"

const (
	ErrCodeExceptionNotFound = "STK001"
)

var (
	ErrExceptionNotFound = errors.New("stock exception not found")
)
