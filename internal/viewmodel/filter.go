package viewmodel

import (
	"fmt"
	"strings"

	"github.com/druedada/projecte-final/internal/model"
)

// Filter selects the tasks shown in the view: "all" or one status.
type Filter string

const FilterAll Filter = "all"

// Filters lists every accepted filter in display order.
var Filters = []Filter{
	FilterAll,
	Filter(model.StatusPending),
	Filter(model.StatusInProgress),
	Filter(model.StatusCompleted),
}

func (f Filter) Valid() bool {
	return f == FilterAll || model.Status(f).Valid()
}

func (f Filter) Matches(t model.Task) bool {
	return f == FilterAll || t.Status == model.Status(f)
}

// ParseFilter accepts the filter names case-insensitively and rejects
// anything else.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w %q: want one of %s", ErrUnknownFilter, s, filterNames())
	}
	return f, nil
}

// Project returns the tasks matching f in their original order.
func Project(tasks []model.Task, f Filter) ([]model.Task, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownFilter, string(f))
	}

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func filterNames() string {
	names := make([]string, len(Filters))
	for i, f := range Filters {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
