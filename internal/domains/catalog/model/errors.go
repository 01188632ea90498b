package model

import "errors"

const (
	ErrCodeProductNotFound = "PRD001"
)

var (
	ErrProductNotFound = errors.New("product not found")
)
