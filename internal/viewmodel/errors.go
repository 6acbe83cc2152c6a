package viewmodel

import "errors"

var (
	// ErrCacheInconsistency means a mutation targeted an id the cache does
	// not hold. It always points at a logic bug or a lost race with a reload.
	ErrCacheInconsistency = errors.New("cache inconsistency")
	ErrUnknownFilter      = errors.New("unknown filter")
	ErrNotEditing         = errors.New("no task is being edited")
	// ErrBusy rejects a second submission for a task whose previous call has
	// not returned yet.
	ErrBusy = errors.New("operation already in progress")
)
