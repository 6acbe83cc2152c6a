package httpapi

import (
	"errors"
	"net/url"
	"strings"

	"github.com/druedada/projecte-final/internal/model"
)

type listFilters struct {
	status model.Status
}

func parseListFilters(q url.Values) (listFilters, error) {
	var filters listFilters

	if v := strings.TrimSpace(q.Get("status")); v != "" {
		s := model.Status(strings.ToLower(v))
		if !s.Valid() {
			return listFilters{}, errors.New("status must be one of pending, in-progress, completed")
		}
		filters.status = s
	}

	return filters, nil
}

func filterTasks(tasks []model.Task, filters listFilters) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if filters.status != "" && t.Status != filters.status {
			continue
		}
		out = append(out, t)
	}
	return out
}
