package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/druedada/projecte-final/internal/model"
	"github.com/druedada/projecte-final/internal/viewmodel"
)

const timeLayout = "2006-01-02 15:04"

// Renderer writes tasks and banners in the selected output format.
type Renderer struct {
	Format string
	W      io.Writer
}

func (r Renderer) json() bool { return r.Format == "json" }

func (r Renderer) Tasks(tasks []model.Task) error {
	if r.json() {
		if tasks == nil {
			tasks = []model.Task{}
		}
		return r.writeJSON(tasks)
	}

	if len(tasks) == 0 {
		_, err := fmt.Fprintln(r.W, "No hi ha tasques.")
		return err
	}

	tw := tabwriter.NewWriter(r.W, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE")
	for _, t := range tasks {
		title := t.Title
		if t.IsNew {
			title += " (nova)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, title, t.Status.Label(), t.Priority.Label(), dueString(t))
	}
	return tw.Flush()
}

func (r Renderer) Task(t model.Task) error {
	if r.json() {
		return r.writeJSON(t)
	}

	rows := [][2]string{
		{"ID:", t.ID},
		{"Title:", t.Title},
		{"Description:", t.Description},
		{"Status:", t.Status.Label()},
		{"Priority:", t.Priority.Label()},
		{"Due:", dueString(t)},
		{"Created:", timeString(t.CreatedAt)},
		{"Updated:", timeString(t.UpdatedAt)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(r.W, "%-13s %s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return nil
}

// Message prints a success banner. JSON output carries data only.
func (r Renderer) Message(m viewmodel.Message) error {
	if r.json() || m.Kind != viewmodel.MessageSuccess {
		return nil
	}
	_, err := fmt.Fprintln(r.W, m.Text)
	return err
}

type snapshotJSON struct {
	Filter  viewmodel.Filter `json:"filter"`
	Message string           `json:"message,omitempty"`
	Error   bool             `json:"error,omitempty"`
	Tasks   []model.Task     `json:"tasks"`
}

// Snapshot renders one frame of the watch view.
func (r Renderer) Snapshot(s viewmodel.Snapshot) error {
	if r.json() {
		out := snapshotJSON{
			Filter:  s.Filter,
			Message: s.Message.Text,
			Error:   s.Message.Kind == viewmodel.MessageError,
			Tasks:   s.Tasks,
		}
		if out.Tasks == nil {
			out.Tasks = []model.Task{}
		}
		return r.writeJSON(out)
	}

	fmt.Fprintf(r.W, "== %s (%d) ==\n", s.Filter, len(s.Tasks))
	if s.Message.Kind != viewmodel.MessageNone {
		fmt.Fprintln(r.W, s.Message.Text)
	}
	return r.Tasks(s.Tasks)
}

func (r Renderer) writeJSON(v any) error {
	enc := json.NewEncoder(r.W)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dueString(t model.Task) string {
	if t.DueDate == nil {
		return "-"
	}
	return model.DateOf(*t.DueDate).String()
}

func timeString(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}
