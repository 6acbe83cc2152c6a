package viewmodel

import "github.com/druedada/projecte-final/internal/model"

// Draft is the scratch task behind the create/edit form. It never aliases a
// cache entry.
type Draft struct {
	ID          string
	Title       string
	Description string
	Status      model.Status
	Priority    model.Priority
	DueDate     *model.Date
}

func newDraft() Draft {
	return Draft{
		Status:   model.StatusPending,
		Priority: model.PriorityMedium,
	}
}

// draftOf copies t into a draft. The due date keeps only its calendar day.
func draftOf(t model.Task) Draft {
	d := Draft{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
	}
	if d.Priority == "" {
		d.Priority = model.PriorityMedium
	}
	if t.DueDate != nil {
		day := model.DateOf(*t.DueDate)
		d.DueDate = &day
	}
	return d
}

func (d Draft) IsNew() bool { return d.ID == "" }

// Payload is the body sent to the server. It never carries the id.
func (d Draft) Payload() model.TaskInput {
	in := model.TaskInput{
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		Priority:    d.Priority,
	}
	if d.DueDate != nil {
		day := *d.DueDate
		in.DueDate = &day
	}
	return in
}

func (d Draft) clone() Draft {
	if d.DueDate != nil {
		day := *d.DueDate
		d.DueDate = &day
	}
	return d
}
