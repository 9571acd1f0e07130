package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/items/internal/model"
)

type itemsLoadedMsg struct {
	items []model.Item
	err   error
}

// savedMsg reports a finished save. id is the edited item, or 0 for a
// create.
type savedMsg struct {
	id  int64
	err error
}

type deletedMsg struct {
	err error
}

// Init starts the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchItems())
}

func (m Model) fetchItems() tea.Cmd {
	api, timeout := m.api, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		items, err := api.List(ctx)
		return itemsLoadedMsg{items: items, err: err}
	}
}

func (m Model) saveItem(editing *model.Item, name, description string) tea.Cmd {
	api, timeout := m.api, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if editing != nil {
			_, err := api.Update(ctx, editing.ID, name, description)
			return savedMsg{id: editing.ID, err: err}
		}
		_, err := api.Create(ctx, name, description)
		return savedMsg{err: err}
	}
}

func (m Model) deleteItem(id int64) tea.Cmd {
	api, timeout := m.api, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return deletedMsg{err: api.Delete(ctx, id)}
	}
}

// refetch marks the list as loading and issues a fetch.
func (m Model) refetch() (Model, tea.Cmd) {
	m.loading = true
	return m, tea.Batch(m.spinner.Tick, m.fetchItems())
}

func (m Model) fail(message string, err error) Model {
	m.logger.Error(message, "error", err)
	m.alert = message
	m.alertErr = err.Error()
	return m
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case itemsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m.fail(fetchFailed, msg.err), nil
		}
		m.items = msg.items
		return m, m.list.SetItems(toListItems(msg.items))

	case savedMsg:
		if msg.err != nil {
			return m.fail(saveFailed, msg.err), nil
		}
		// Another edit may have started while the save was in flight; its
		// drafts are left alone.
		if m.savedCurrent(msg.id) {
			m.editing = nil
			m.clearDrafts()
		}
		return m.refetch()

	case deletedMsg:
		if msg.err != nil {
			return m.fail(deleteFailed, msg.err), nil
		}
		return m.refetch()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// An open alert swallows every key until it is dismissed.
	if m.alert != "" {
		if key.Matches(msg, m.keys.Dismiss) {
			m.alert, m.alertErr = "", ""
		}
		return m, nil
	}

	if m.confirming != nil {
		switch {
		case key.Matches(msg, m.keys.Yes):
			id := m.confirming.ID
			m.confirming = nil
			return m, m.deleteItem(id)
		case key.Matches(msg, m.keys.No):
			m.confirming = nil
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}

	switch m.focus {
	case focusList:
		return m.handleListKey(msg)
	case focusName:
		switch {
		case msg.Type == tea.KeyEnter:
			return m.submit()
		case key.Matches(msg, m.keys.Next):
			return m.setFocus(focusDescription), nil
		case key.Matches(msg, m.keys.Cancel):
			return m.cancel(), nil
		}
	case focusDescription:
		switch {
		case key.Matches(msg, m.keys.Next):
			return m.setFocus(focusList), nil
		case key.Matches(msg, m.keys.Cancel):
			return m.cancel(), nil
		}
	}

	return m.updateFocused(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Add), key.Matches(msg, m.keys.Next):
		return m.setFocus(focusName), nil
	case key.Matches(msg, m.keys.Edit):
		if it, ok := m.selected(); ok {
			return m.startEdit(it), nil
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if it, ok := m.selected(); ok {
			m.confirming = &it
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m.refetch()
	}
	return m.updateFocused(msg)
}

// savedCurrent reports whether a save of id (0 for a create) belongs to the
// form as it is now.
func (m Model) savedCurrent(id int64) bool {
	if m.editing == nil {
		return id == 0
	}
	return m.editing.ID == id
}

func (m Model) selected() (model.Item, bool) {
	li, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Item{}, false
	}
	return li.item, true
}

// startEdit enters edit mode for it and copies its values into the drafts.
func (m Model) startEdit(it model.Item) Model {
	m.editing = &it
	m.name.SetValue(it.Name)
	m.name.CursorEnd()
	m.description.SetValue(it.Description)
	return m.setFocus(focusName)
}

// cancel leaves edit mode and clears the drafts. Outside edit mode it only
// returns focus to the list.
func (m Model) cancel() Model {
	if m.editing != nil {
		m.editing = nil
		m.clearDrafts()
	}
	return m.setFocus(focusList)
}

// submit ignores a blank name; otherwise it updates the item in edit mode
// or creates a new one.
func (m Model) submit() (tea.Model, tea.Cmd) {
	name, description := m.Drafts()
	if strings.TrimSpace(name) == "" {
		return m, nil
	}
	return m, m.saveItem(m.editing, name, description)
}

func (m *Model) clearDrafts() {
	m.name.SetValue("")
	m.description.SetValue("")
}

func (m Model) setFocus(f focus) Model {
	m.focus = f
	m.name.Blur()
	m.description.Blur()
	switch f {
	case focusName:
		m.name.Focus()
	case focusDescription:
		m.description.Focus()
	}
	return m
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusName:
		m.name, cmd = m.name.Update(msg)
	case focusDescription:
		m.description, cmd = m.description.Update(msg)
	default:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m *Model) resize() {
	formHeight := 11
	listHeight := m.height - formHeight - 4
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width-4, listHeight)
	m.name.Width = m.width - 10
	m.description.SetWidth(m.width - 8)
}
