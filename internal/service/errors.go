package service

import (
	"strings"

	"rubrics_backend/internal/grading"
	"rubrics_backend/internal/util"
)

// ValidationError 携带全部未通过的指标，errors.Is(err, util.ErrValidation) 成立
type ValidationError struct {
	Violations []grading.Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Error())
	}
	return util.MsgValidationError + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Is(target error) bool {
	return target == util.ErrValidation
}
