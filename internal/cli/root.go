package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/druedada/projecte-final/internal/config"
	"github.com/druedada/projecte-final/internal/taskapi"
	"github.com/druedada/projecte-final/internal/viewmodel"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	APIURL     string
	Format     string // "json" | "text"
	Verbose    bool

	cfg config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the task-manager CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "task-manager",
		Short: "Task Manager - tasks over a REST API",
		Long: `Task Manager serves the task REST API and manages tasks through it.

Run "task-manager serve" to start the API, then use list, add, edit,
complete and delete against it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			if opts.APIURL != "" {
				cfg.Client.BaseURL = opts.APIURL
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "task API base URL, including the prefix (overrides TASKS_API_URL)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log request failures to stderr")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewCompleteCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// Execute runs the CLI until it finishes or receives SIGINT/SIGTERM and
// returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) renderer(cmd *cobra.Command) Renderer {
	return Renderer{Format: o.Format, W: cmd.OutOrStdout()}
}

func (o *RootOptions) client() *taskapi.Client {
	return taskapi.New(o.cfg.Client.BaseURL, &http.Client{Timeout: o.cfg.Client.Timeout})
}

func (o *RootOptions) logger(cmd *cobra.Command) *log.Logger {
	if o.Verbose {
		return log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

func (o *RootOptions) controller(cmd *cobra.Command) *viewmodel.Controller {
	return viewmodel.NewController(o.client(), viewmodel.NewCache(),
		viewmodel.WithLogger(o.logger(cmd)),
	)
}

// loadedController returns a controller whose cache holds the current list.
func (o *RootOptions) loadedController(cmd *cobra.Command) (*viewmodel.Controller, error) {
	c := o.controller(cmd)
	if err := c.Reload(cmd.Context()); err != nil {
		return nil, failure(cmd, c, err)
	}
	return c, nil
}

// failure prints the controller's error banner and returns err.
func failure(cmd *cobra.Command, c *viewmodel.Controller, err error) error {
	if msg := c.Message(); msg.Kind == viewmodel.MessageError {
		fmt.Fprintln(cmd.ErrOrStderr(), msg.Text)
	}
	return err
}
