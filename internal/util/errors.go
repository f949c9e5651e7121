package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")

	ErrAreaNotFound       = errors.New("grading area not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrDefinitionNotFound = errors.New("grading definition not found")
	ErrInstanceNotFound   = errors.New("grading instance not found")
	ErrUnknownOutcome     = errors.New("unknown student outcome")
	ErrInvalidEvaluation  = errors.New("evaluation is missing required fields")
	ErrInstanceBusy       = errors.New("grading instance is being saved by another request")
	ErrValidation         = errors.New(MsgValidationError)
)
