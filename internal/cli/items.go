package cli

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/items/internal/client"
	"github.com/Makepad-fr/items/internal/config"
	"github.com/Makepad-fr/items/internal/logging"
	"github.com/Makepad-fr/items/internal/tui"
	"github.com/Makepad-fr/items/internal/ui"
)

// itemsApp is the state shared by the items subcommands. It is filled by
// the root's PersistentPreRunE.
type itemsApp struct {
	apiURL  string
	theme   string
	envFile string
	logFile string
	timeout time.Duration

	client  *client.Client
	logger  *slog.Logger
	logSink *os.File
}

// NewItemsCommand returns the root command of the items client. Without
// a subcommand it opens the interactive view.
func NewItemsCommand() *cobra.Command {
	app := &itemsApp{}

	root := &cobra.Command{
		Use:   "items",
		Short: "Manage items through the items API",
		Long: `items talks to an itemsd server over HTTP.

Run it without a subcommand to open the interactive view. The API base URL
comes from --api-url, then $ITEMS_API_URL, then http://localhost:3000/api.`,
		Args:               noArgs,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  app.setup,
		PersistentPostRunE: app.teardown,
		RunE:               app.runTUI,
	}

	f := root.PersistentFlags()
	f.StringVar(&app.apiURL, "api-url", client.DefaultBaseURL, "items API base URL")
	f.StringVar(&app.theme, "theme", "classic", "color theme: "+strings.Join(ui.Themes, ", "))
	f.StringVar(&app.envFile, "env-file", config.DefaultEnvFile, "dotenv file to load")
	f.StringVar(&app.logFile, "log-file", "", "append client logs to this file")
	f.DurationVar(&app.timeout, "timeout", 30*time.Second, "per-request timeout")

	root.AddCommand(
		app.tuiCommand(),
		app.listCommand(),
		app.getCommand(),
		app.addCommand(),
		app.editCommand(),
		app.removeCommand(),
		app.healthCommand(),
		newVersionCommand("items"),
	)
	return root
}

func (a *itemsApp) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadClient(a.envFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api-url") {
		cfg.APIURL = a.apiURL
	}
	if cmd.Flags().Changed("theme") {
		cfg.Theme = a.theme
	}

	ui.SetTheme(cfg.Theme)
	ui.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

	a.logger = logging.Nop()
	if a.logFile != "" {
		f, err := os.OpenFile(a.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logSink = f
		a.logger = logging.New(logging.Config{Level: logging.LevelDebug, Output: f})
	}

	a.client = client.New(cfg.APIURL, client.WithTimeout(a.timeout))
	a.logger.Debug("client configured", "api_url", a.client.BaseURL())
	return nil
}

func (a *itemsApp) teardown(*cobra.Command, []string) error {
	if a.logSink == nil {
		return nil
	}
	return a.logSink.Close()
}

func (a *itemsApp) runTUI(cmd *cobra.Command, _ []string) error {
	if err := tui.Run(a.client, tui.Options{Logger: a.logger, Timeout: a.timeout}); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (a *itemsApp) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive view (default)",
		Args:  exactArgs(0, "items tui"),
		RunE:  a.runTUI,
	}
}

func (a *itemsApp) listCommand() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items",
		Args:    exactArgs(0, "items ls"),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.client.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("ls: %w", err)
			}
			if jsonOut {
				return writeJSON(cmd, items)
			}
			ui.Panel(listLines(items))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	return cmd
}

func (a *itemsApp) getCommand() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one item",
		Args:  exactArgs(1, "items get <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("get", args[0])
			if err != nil {
				return err
			}
			it, err := a.client.Get(cmd.Context(), id)
			if err != nil {
				return notFoundHint(cmd, "get", id, err)
			}
			if jsonOut {
				return writeJSON(cmd, it)
			}
			ui.Panel(itemLines(it))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	return cmd
}

func (a *itemsApp) addCommand() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <name...>",
		Short: "Add an item (the name can be multiple words)",
		Example: `  items add "Buy milk"
  items add Widget -d "A thing"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if !interactive(cmd) {
					return usagef("usage: items add <name...> [--description text]")
				}
				name, desc, err := addForm(description)
				if err != nil {
					return err
				}
				args, description = []string{name}, desc
			}
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				return usagef("add: empty name")
			}
			it, err := a.client.Create(cmd.Context(), name, description)
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}
			ui.OK(fmt.Sprintf("added #%d %s", it.ID, it.Name))
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "item description")
	return cmd
}

func (a *itemsApp) editCommand() *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the name or description of an item",
		Example: `  items edit 3 --name "Buy oat milk"
  items edit 3 -d ""`,
		Args: exactArgs(1, "items edit <id> [--name text] [--description text]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("edit", args[0])
			if err != nil {
				return err
			}
			nameSet := cmd.Flags().Changed("name")
			descSet := cmd.Flags().Changed("description")
			if !nameSet && !descSet {
				return usagef("edit: nothing to change, pass --name or --description")
			}
			if nameSet && strings.TrimSpace(name) == "" {
				return usagef("edit: empty name")
			}

			it, err := a.client.Get(cmd.Context(), id)
			if err != nil {
				return notFoundHint(cmd, "edit", id, err)
			}
			if nameSet {
				it.Name = strings.TrimSpace(name)
			}
			if descSet {
				it.Description = description
			}

			updated, err := a.client.Update(cmd.Context(), id, it.Name, it.Description)
			if err != nil {
				return notFoundHint(cmd, "edit", id, err)
			}
			ui.OK(fmt.Sprintf("updated #%d %s", updated.ID, updated.Name))
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "new name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func (a *itemsApp) removeCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an item",
		Args:    exactArgs(1, "items rm <id> [--yes]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("rm", args[0])
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd, confirmDelete) {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Current().Muted.Render("cancelled"))
				return nil
			}
			if err := a.client.Delete(cmd.Context(), id); err != nil {
				return notFoundHint(cmd, "rm", id, err)
			}
			ui.OK(fmt.Sprintf("removed #%d", id))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *itemsApp) healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the API and its database connection",
		Args:  exactArgs(0, "items health"),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := a.client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}
			ui.OK(fmt.Sprintf("%s (database %s) at %s", status.Status, status.Database, a.client.BaseURL()))
			return nil
		},
	}
}

// interactive reports whether stdin is a terminal huh can prompt on.
func interactive(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// addForm prompts for the fields `items add` was run without.
func addForm(description string) (string, string, error) {
	var name string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Buy milk").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Value(&description),
		),
	)
	if err := form.Run(); err != nil {
		return "", "", err
	}
	return name, description, nil
}

// confirm asks question and reads a y/n answer. On a terminal it uses a huh
// prompt; otherwise it reads one line from stdin.
func confirm(cmd *cobra.Command, question string) bool {
	if interactive(cmd) {
		var ok bool
		prompt := huh.NewConfirm().
			Title(question).
			Affirmative("Yes").
			Negative("No").
			Value(&ok)
		if err := prompt.Run(); err != nil {
			return false
		}
		return ok
	}

	fmt.Fprint(cmd.OutOrStdout(), question+" ")
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// notFoundHint prints a hint for 404s and wraps err with verb.
func notFoundHint(cmd *cobra.Command, verb string, id int64, err error) error {
	if client.IsNotFound(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.Current().Muted.Render("Hint: run `items ls` to see valid ids"))
		return fmt.Errorf("%s: item #%d not found", verb, id)
	}
	return fmt.Errorf("%s: %w", verb, err)
}
