package taskapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/druedada/projecte-final/internal/model"
	"github.com/druedada/projecte-final/internal/task"
)

// ErrNetwork covers transport failures, unexpected statuses and responses
// that cannot be decoded into a task.
var ErrNetwork = errors.New("network failure")

// ErrNotFound and ErrValidation are shared with the server side so a single
// errors.Is check works whether the task service runs remotely or in process.
var (
	ErrNotFound   = model.ErrNotFound
	ErrValidation = task.ErrValidation
)

// StatusError is a non-2xx response from the API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrValidation:
		return e.StatusCode == http.StatusBadRequest
	case ErrNetwork:
		return e.StatusCode != http.StatusNotFound && e.StatusCode != http.StatusBadRequest
	}
	return false
}
