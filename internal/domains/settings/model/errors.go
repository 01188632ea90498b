package model

import "errors"

const (
	ErrCodeSettingNotFound = "SET001"
)

var (
	ErrSettingNotFound = errors.New("setting not found")
)
