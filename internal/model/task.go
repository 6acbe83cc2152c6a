package model

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Label returns the localized label shown in the UI.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pendent"
	case StatusInProgress:
		return "En progrés"
	case StatusCompleted:
		return "Completada"
	}
	return string(s)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Baixa"
	case PriorityMedium:
		return "Mitjana"
	case PriorityHigh:
		return "Alta"
	}
	return string(p)
}

type Task struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// IsNew marks a task created during the current client session.
	IsNew bool `json:"-"`
}

func (t Task) IsCompleted() bool { return t.Status == StatusCompleted }

// Clone returns a copy of t that shares no memory with it.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

// Input returns the payload that reproduces t's editable fields. Due dates
// are calendar days: every store here persists midnight UTC, and a due date
// carrying a time of day is sent as its UTC day, so the next write stores
// that day's midnight.
func (t Task) Input() TaskInput {
	in := TaskInput{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
	}
	if t.DueDate != nil {
		d := DateOf(*t.DueDate)
		in.DueDate = &d
	}
	return in
}

// TaskInput is the create/update payload. It carries no id.
type TaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	DueDate     *Date    `json:"dueDate,omitempty"`
}
