package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/druedada/projecte-final/internal/model"
	"github.com/druedada/projecte-final/internal/taskapi"
	"github.com/druedada/projecte-final/internal/viewmodel"
)

func NewListCommand(opts *RootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := viewmodel.ParseFilter(filter)
			if err != nil {
				return err
			}
			c, err := opts.loadedController(cmd)
			if err != nil {
				return err
			}
			if err := c.SetFilter(f); err != nil {
				return err
			}
			return opts.renderer(cmd).Tasks(c.View())
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", string(viewmodel.FilterAll), "all|pending|in-progress|completed")
	return cmd
}

func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.client().Get(cmd.Context(), args[0])
			if errors.Is(err, taskapi.ErrNotFound) {
				return fmt.Errorf("task %s not found", args[0])
			}
			if err != nil {
				return err
			}
			return opts.renderer(cmd).Task(t)
		},
	}
}

// taskFlags are the editable fields shared by add and edit.
type taskFlags struct {
	title       string
	description string
	status      string
	priority    string
	due         string
}

func (f *taskFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.title, "title", "t", "", "task title (max 100 characters)")
	fs.StringVarP(&f.description, "description", "d", "", "task description (max 500 characters)")
	fs.StringVarP(&f.status, "status", "s", "", "pending|in-progress|completed")
	fs.StringVarP(&f.priority, "priority", "p", "", "low|medium|high")
	fs.StringVar(&f.due, "due", "", `due date as YYYY-MM-DD; "" clears it`)
}

// apply copies the flags set on the command line into the draft.
func (f *taskFlags) apply(fs *pflag.FlagSet, d *viewmodel.Draft) error {
	if fs.Changed("title") {
		d.Title = f.title
	}
	if fs.Changed("description") {
		d.Description = f.description
	}
	if fs.Changed("status") {
		d.Status = model.Status(f.status)
	}
	if fs.Changed("priority") {
		d.Priority = model.Priority(f.priority)
	}
	if fs.Changed("due") {
		if f.due == "" {
			d.DueDate = nil
			return nil
		}
		day, err := model.ParseDate(f.due)
		if err != nil {
			return err
		}
		d.DueDate = &day
	}
	return nil
}

func NewAddCommand(opts *RootOptions) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.controller(cmd)
			c.StartCreate()

			var applyErr error
			if err := c.Edit(func(d *viewmodel.Draft) { applyErr = flags.apply(cmd.Flags(), d) }); err != nil {
				return err
			}
			if applyErr != nil {
				return applyErr
			}
			return save(cmd, opts, c)
		},
	}

	flags.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func NewEditCommand(opts *RootOptions) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadedController(cmd)
			if err != nil {
				return err
			}
			existing, ok := c.Cache().Get(args[0])
			if !ok {
				return fmt.Errorf("task %s not found", args[0])
			}
			c.StartEdit(existing)

			var applyErr error
			if err := c.Edit(func(d *viewmodel.Draft) { applyErr = flags.apply(cmd.Flags(), d) }); err != nil {
				return err
			}
			if applyErr != nil {
				return applyErr
			}
			return save(cmd, opts, c)
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func save(cmd *cobra.Command, opts *RootOptions, c *viewmodel.Controller) error {
	saved, err := c.Save(cmd.Context())
	if err != nil {
		return failure(cmd, c, err)
	}
	r := opts.renderer(cmd)
	if err := r.Message(c.Message()); err != nil {
		return err
	}
	return r.Task(saved)
}

func NewCompleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadedController(cmd)
			if err != nil {
				return err
			}
			if _, ok := c.Cache().Get(args[0]); !ok {
				return fmt.Errorf("task %s not found", args[0])
			}
			done, err := c.Complete(cmd.Context(), args[0])
			if err != nil {
				return failure(cmd, c, err)
			}
			r := opts.renderer(cmd)
			if err := r.Message(c.Message()); err != nil {
				return err
			}
			return r.Task(done)
		},
	}
}

func NewDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadedController(cmd)
			if err != nil {
				return err
			}
			if _, ok := c.Cache().Get(args[0]); !ok {
				return fmt.Errorf("task %s not found", args[0])
			}
			if err := c.Delete(cmd.Context(), args[0]); err != nil {
				return failure(cmd, c, err)
			}
			r := opts.renderer(cmd)
			if r.json() {
				return r.writeJSON(map[string]string{"message": "Task deleted", "id": args[0]})
			}
			return r.Message(c.Message())
		},
	}
}
