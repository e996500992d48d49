package model

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateResource  = errors.New("resource already exists")
	ErrPersistence        = errors.New("persistence failure")
	ErrArchiveDisabled    = errors.New("archive storage is not configured")
)
