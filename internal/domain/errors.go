package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidMonth       = errors.New("invalid year or month")
	ErrReportExists       = errors.New("report already exists for this restaurant and date")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrUnsupportedExport  = errors.New("unsupported export format")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
)
