// Package tui is the interactive items client.
//
// It holds a local copy of the item list, two drafts (name and
// description) and the item being edited, if any. The copy is never
// patched in place: every successful mutation triggers a full re-fetch.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/items/internal/logging"
	"github.com/Makepad-fr/items/internal/model"
	"github.com/Makepad-fr/items/internal/ui"
)

// API is the subset of the HTTP client the view uses.
type API interface {
	List(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, name, description string) (model.Item, error)
	Update(ctx context.Context, id int64, name, description string) (model.Item, error)
	Delete(ctx context.Context, id int64) error
}

// Alert texts shown when a request fails.
const (
	fetchFailed  = "Failed to fetch items"
	saveFailed   = "Failed to save item"
	deleteFailed = "Failed to delete item"
)

type focus int

const (
	focusList focus = iota
	focusName
	focusDescription
)

// Options configure the view.
type Options struct {
	Title   string
	Logger  *slog.Logger
	Timeout time.Duration
}

// Model is the bubbletea model of the single items view.
type Model struct {
	api     API
	logger  *slog.Logger
	timeout time.Duration
	title   string

	items       []model.Item
	list        list.Model
	name        textinput.Model
	description textarea.Model
	editing     *model.Item
	loading     bool
	spinner     spinner.Model

	focus      focus
	confirming *model.Item
	alert      string
	alertErr   string

	keys   keyMap
	width  int
	height int
}

// New creates the view. The initial fetch starts in Init.
func New(api API, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Title == "" {
		opts.Title = "Items"
	}

	t := ui.Current()
	keys := newKeyMap()

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(true)
	l.SetShowPagination(true)
	l.SetShowHelp(true)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("item", "items")
	l.Styles.HelpStyle = t.Muted
	l.Styles.PaginationStyle = t.Muted
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.AdditionalShortHelpKeys = keys.listHelp
	l.AdditionalFullHelpKeys = keys.listHelp

	name := textinput.New()
	name.Prompt = "> "
	name.Placeholder = "Name"
	name.CharLimit = 0

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.ShowLineNumbers = false
	desc.CharLimit = 0
	desc.MaxHeight = 0
	desc.SetHeight(3)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = t.Accent

	return Model{
		api:         api,
		logger:      opts.Logger,
		timeout:     opts.Timeout,
		title:       opts.Title,
		list:        l,
		name:        name,
		description: desc,
		spinner:     sp,
		loading:     true,
		keys:        keys,
		width:       80,
		height:      24,
	}
}

// Run starts the interactive view and blocks until the user quits.
func Run(api API, opts Options) error {
	p := tea.NewProgram(New(api, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Items returns the local copy of the list.
func (m Model) Items() []model.Item { return m.items }

// Editing returns the item in edit mode, or nil.
func (m Model) Editing() *model.Item { return m.editing }

// Loading reports whether a list fetch is in flight.
func (m Model) Loading() bool { return m.loading }

// Drafts returns the current name and description drafts.
func (m Model) Drafts() (name, description string) {
	return m.name.Value(), m.description.Value()
}

// Alert returns the message of the open notification, or "".
func (m Model) Alert() string { return m.alert }
