package task

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every field validation error.
var ErrValidation = errors.New("validation failed")

var (
	ErrInvalidTitle       = fmt.Errorf("%w: title is required and must be at most %d characters", ErrValidation, MaxTitleLen)
	ErrInvalidDescription = fmt.Errorf("%w: description must be at most %d characters", ErrValidation, MaxDescriptionLen)
	ErrInvalidStatus      = fmt.Errorf("%w: status must be one of pending, in-progress, completed", ErrValidation)
	ErrInvalidPriority    = fmt.Errorf("%w: priority must be one of low, medium, high", ErrValidation)
)
