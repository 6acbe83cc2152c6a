package task

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/druedada/projecte-final/internal/model"
)

const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 500
)

func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(norm.NFC.String(title))
	if trimmed == "" || utf8.RuneCountInString(trimmed) > MaxTitleLen {
		return "", ErrInvalidTitle
	}
	return trimmed, nil
}

func ValidateDescription(description string) (string, error) {
	normalized := norm.NFC.String(description)
	if utf8.RuneCountInString(normalized) > MaxDescriptionLen {
		return "", ErrInvalidDescription
	}
	return normalized, nil
}

// Normalize validates in and fills the defaults: status pending, priority
// medium, and an empty due date treated as none.
func Normalize(in model.TaskInput) (model.TaskInput, error) {
	title, err := ValidateTitle(in.Title)
	if err != nil {
		return model.TaskInput{}, err
	}
	desc, err := ValidateDescription(in.Description)
	if err != nil {
		return model.TaskInput{}, err
	}

	out := model.TaskInput{
		Title:       title,
		Description: desc,
		Status:      in.Status,
		Priority:    in.Priority,
	}
	if out.Status == "" {
		out.Status = model.StatusPending
	}
	if !out.Status.Valid() {
		return model.TaskInput{}, ErrInvalidStatus
	}
	if out.Priority == "" {
		out.Priority = model.PriorityMedium
	}
	if !out.Priority.Valid() {
		return model.TaskInput{}, ErrInvalidPriority
	}
	if in.DueDate != nil && !in.DueDate.IsZero() {
		d := *in.DueDate
		out.DueDate = &d
	}
	return out, nil
}
