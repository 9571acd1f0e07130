package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/items/internal/logging"
	"github.com/Makepad-fr/items/internal/model"
)

type call struct {
	op          string
	id          int64
	name, descr string
}

type fakeAPI struct {
	items  []model.Item
	nextID int64
	calls  []call

	listErr, saveErr, deleteErr error
}

func (f *fakeAPI) List(context.Context) ([]model.Item, error) {
	f.calls = append(f.calls, call{op: "list"})
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Item(nil), f.items...), nil
}

func (f *fakeAPI) Create(_ context.Context, name, descr string) (model.Item, error) {
	f.calls = append(f.calls, call{op: "create", name: name, descr: descr})
	if f.saveErr != nil {
		return model.Item{}, f.saveErr
	}
	f.nextID++
	it := model.Item{ID: f.nextID, Name: name, Description: descr}
	f.items = append(f.items, it)
	return it, nil
}

func (f *fakeAPI) Update(_ context.Context, id int64, name, descr string) (model.Item, error) {
	f.calls = append(f.calls, call{op: "update", id: id, name: name, descr: descr})
	if f.saveErr != nil {
		return model.Item{}, f.saveErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Name, f.items[i].Description = name, descr
		}
	}
	return model.Item{ID: id, Name: name, Description: descr}, nil
}

func (f *fakeAPI) Delete(_ context.Context, id int64) error {
	f.calls = append(f.calls, call{op: "delete", id: id})
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) ops() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.op
	}
	return out
}

// drain runs cmd and feeds every resulting message back into m, ignoring
// animation ticks.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		switch msg := msg.(type) {
		case nil, spinner.TickMsg:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case itemsLoadedMsg, savedMsg, deletedMsg:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	ctrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
)

func started(t *testing.T, api *fakeAPI, opts Options) Model {
	t.Helper()
	m := New(api, opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(Model)
	require.True(t, m.Loading())
	return drain(t, m, m.Init())
}

func TestInitialFetch(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{items: []model.Item{{ID: 1, Name: "Widget", Description: "A thing"}}, nextID: 1}

	m := started(t, api, Options{})

	assert.False(t, m.Loading())
	assert.Equal(t, api.items, m.Items())
	assert.Contains(t, m.View(), "Widget")
	assert.Equal(t, []string{"list"}, api.ops())
}

func TestEmptyState(t *testing.T) {
	t.Parallel()

	m := New(&fakeAPI{}, Options{})
	assert.Contains(t, m.View(), "(Loading...)")

	m = started(t, &fakeAPI{}, Options{})
	assert.Contains(t, m.View(), emptyText)
}

func TestSubmitIgnoresBlankName(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{}
	m := started(t, api, Options{})

	m, _ = press(t, m, runes("a"))
	m.name.SetValue("   ")
	m, cmd := press(t, m, enter)

	assert.Nil(t, cmd)
	assert.Equal(t, []string{"list"}, api.ops())
}

func TestCreate(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{}
	m := started(t, api, Options{})

	m, _ = press(t, m, runes("a"))
	m.name.SetValue("Widget")
	m.description.SetValue("A thing")
	m, cmd := press(t, m, ctrlS)
	m = drain(t, m, cmd)

	assert.Equal(t, []string{"list", "create", "list"}, api.ops())
	assert.Equal(t, call{op: "create", name: "Widget", descr: "A thing"}, api.calls[1])

	name, descr := m.Drafts()
	assert.Empty(t, name)
	assert.Empty(t, descr)
	require.Len(t, m.Items(), 1)
	assert.Equal(t, "Widget", m.Items()[0].Name)
}

func TestEditAndUpdate(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{items: []model.Item{{ID: 7, Name: "Widget", Description: "A thing"}}, nextID: 7}
	m := started(t, api, Options{})

	m, _ = press(t, m, runes("e"))
	require.NotNil(t, m.Editing())
	assert.Equal(t, int64(7), m.Editing().ID)
	name, descr := m.Drafts()
	assert.Equal(t, "Widget", name)
	assert.Equal(t, "A thing", descr)
	assert.Contains(t, m.View(), "Update Item")

	m.name.SetValue("Widget2")
	m.description.SetValue("")
	m, cmd := press(t, m, enter)
	m = drain(t, m, cmd)

	assert.Equal(t, call{op: "update", id: 7, name: "Widget2"}, api.calls[1])
	assert.Nil(t, m.Editing())
	assert.Equal(t, []model.Item{{ID: 7, Name: "Widget2"}}, m.Items())
}

func TestEditKeepsLongName(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("x", 300)
	longDescr := strings.Repeat("d", 500)
	api := &fakeAPI{items: []model.Item{{ID: 4, Name: long, Description: longDescr}}}
	m := started(t, api, Options{})

	m, _ = press(t, m, runes("e"))
	name, descr := m.Drafts()
	assert.Equal(t, long, name)
	assert.Equal(t, longDescr, descr)

	m, cmd := press(t, m, ctrlS)
	m = drain(t, m, cmd)

	require.Len(t, api.calls, 3)
	assert.Equal(t, call{op: "update", id: 4, name: long, descr: longDescr}, api.calls[1])
	assert.Equal(t, []model.Item{{ID: 4, Name: long, Description: longDescr}}, m.Items())
}

func TestSaveDoesNotClearNewerEdit(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{items: []model.Item{{ID: 1, Name: "A"}, {ID: 2, Name: "B", Description: "b"}}}
	m := started(t, api, Options{})

	m, _ = press(t, m, runes("e"))
	m.name.SetValue("A2")
	m, pending := press(t, m, enter)
	require.NotNil(t, pending)

	// The user moves on to B before the save of A answers.
	m, _ = press(t, m, esc)
	m = m.startEdit(api.items[1])

	m = drain(t, m, pending)

	require.NotNil(t, m.Editing())
	assert.Equal(t, int64(2), m.Editing().ID)
	name, descr := m.Drafts()
	assert.Equal(t, "B", name)
	assert.Equal(t, "b", descr)
	assert.Equal(t, "A2", m.Items()[0].Name)
}

func TestCancelEdit(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{items: []model.Item{{ID: 1, Name: "Widget"}}}
	m := started(t, api, Options{})

	m, _ = press(t, m, runes("e"), esc)

	assert.Nil(t, m.Editing())
	name, descr := m.Drafts()
	assert.Empty(t, name)
	assert.Empty(t, descr)
	assert.Equal(t, []string{"list"}, api.ops())
}

func TestSaveFailureKeepsState(t *testing.T) {
	t.Parallel()
	var logs bytes.Buffer
	api := &fakeAPI{items: []model.Item{{ID: 1, Name: "Widget"}}, saveErr: errors.New("connection refused")}
	m := started(t, api, Options{Logger: logging.New(logging.Config{Output: &logs})})

	m, _ = press(t, m, runes("e"))
	m.name.SetValue("Widget2")
	m, cmd := press(t, m, enter)
	m = drain(t, m, cmd)

	assert.Equal(t, saveFailed, m.Alert())
	require.NotNil(t, m.Editing(), "edit mode survives a failed save")
	name, _ := m.Drafts()
	assert.Equal(t, "Widget2", name)
	assert.Equal(t, []model.Item{{ID: 1, Name: "Widget"}}, m.Items())
	assert.Contains(t, logs.String(), "connection refused")
	assert.Contains(t, m.View(), saveFailed)

	// The alert blocks other input until dismissed.
	m, cmd = press(t, m, ctrlS)
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"list", "update"}, api.ops())

	m, _ = press(t, m, enter)
	assert.Empty(t, m.Alert())
}

func TestDeleteConfirm(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{items: []model.Item{{ID: 3, Name: "Widget"}}}
	m := started(t, api, Options{})

	m, _ = press(t, m, runes("d"))
	assert.Contains(t, m.View(), confirmText)
	m, cmd := press(t, m, runes("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"list"}, api.ops())

	m, cmd = press(t, m, runes("d"), runes("y"))
	m = drain(t, m, cmd)

	assert.Equal(t, []string{"list", "delete", "list"}, api.ops())
	assert.Equal(t, int64(3), api.calls[1].id)
	assert.Empty(t, m.Items())
}

func TestDeleteFailure(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{items: []model.Item{{ID: 3, Name: "Widget"}}, deleteErr: errors.New("Item not found")}
	m := started(t, api, Options{})

	m, cmd := press(t, m, runes("d"), runes("y"))
	m = drain(t, m, cmd)

	assert.Equal(t, deleteFailed, m.Alert())
	assert.Len(t, m.Items(), 1)
	assert.Equal(t, []string{"list", "delete"}, api.ops())
}

func TestFetchFailure(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{listErr: errors.New("dial tcp: refused")}
	m := started(t, api, Options{})

	assert.False(t, m.Loading())
	assert.Equal(t, fetchFailed, m.Alert())
	assert.Empty(t, m.Items())
}

func TestQuit(t *testing.T) {
	t.Parallel()
	m := started(t, &fakeAPI{}, Options{})

	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
