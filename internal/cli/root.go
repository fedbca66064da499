package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tollgate/internal/app"
	"github.com/alexanderramin/tollgate/internal/config"
	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/service"
	"github.com/alexanderramin/tollgate/internal/workflow"
	"github.com/spf13/cobra"
)

// RoleDirectory is the part of the role directory the CLI edits.
type RoleDirectory interface {
	Assign(ctx context.Context, userID string, role domain.Role) error
	Remove(ctx context.Context, userID string) error
	List(ctx context.Context) ([]domain.RoleAssignment, error)
}

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Engine   service.WorkflowEngine
	Requests service.RequestService
	Tasks    service.TaskService
	Inbox    service.InboxService
	SLA      service.SLAService
	Registry *workflow.Registry
	Roles    RoleDirectory

	Config     *config.Config
	ConfigPath string

	// Init wires the services before any command runs, given the --config
	// value. Tests leave it nil and wire the App directly.
	Init func(cmd *cobra.Command, configPath string) error
	// Serve runs the HTTP daemon until ctx is done. Nil disables `serve`.
	Serve func(ctx context.Context) error
	// IsInteractive reports whether prompts may be shown.
	IsInteractive func() bool
	Now           func() time.Time
}

// FromApp adapts wired services for the CLI.
func FromApp(a *app.App, configPath string) *App {
	c := &App{}
	c.Attach(a, configPath)
	return c
}

// Attach points the CLI at a wired app, keeping hooks already set.
func (c *App) Attach(a *app.App, configPath string) {
	c.Engine = a.Engine
	c.Requests = a.Requests
	c.Tasks = a.Tasks
	c.Inbox = a.Inbox
	c.SLA = a.SLA
	c.Registry = a.Registry
	c.Roles = a.Directory
	c.Config = a.Config
	c.ConfigPath = configPath
}

func (c *App) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}

func (c *App) interactive() bool {
	return c.IsInteractive != nil && c.IsInteractive()
}

// NewRootCmd creates the top-level "tollgate" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tollgate",
		Short:         "Staged approval workflows for investment and cash requests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Config file (default ~/.tollgate/config.toml)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if app.Init == nil {
			return nil
		}
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		return app.Init(cmd, path)
	}

	root.AddCommand(
		newRequestCmd(app),
		newWorkflowCmd(app),
		newTaskCmd(app),
		newRoleCmd(app),
		newInboxCmd(app),
		newServeCmd(app),
		newConfigCmd(app),
	)

	return root
}

// resolveRequest looks a request up by its code, e.g. INV-0003.
func resolveRequest(ctx context.Context, app *App, code string) (*domain.Request, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: request code is required", domain.ErrInvalidRequest)
	}
	return app.Requests.GetByCode(ctx, code)
}
