package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/items/internal/model"
	"github.com/Makepad-fr/items/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item.
type listItem struct {
	item model.Item
}

func (i listItem) Title() string       { return i.item.Name }
func (i listItem) Description() string { return i.item.Description }
func (i listItem) FilterValue() string { return i.item.Name }

func toListItems(items []model.Item) []list.Item {
	out := make([]list.Item, len(items))
	for i, it := range items {
		out[i] = listItem{item: it}
	}
	return out
}

// itemDelegate renders the name on one line and the first line of the
// description, dimmed, on the next.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 2 }
func (d itemDelegate) Spacing() int                              { return 1 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()

	prefix := "  "
	name := it.item.Name
	if name == "" {
		name = t.Muted.Render("(no name)")
	}
	if index == m.Index() {
		prefix = t.Selected.Render(t.SymCursor) + " "
		name = t.Title.Render(name)
	}

	desc, _, _ := strings.Cut(it.item.Description, "\n")
	fmt.Fprintf(w, "%s%s\n  %s", prefix, name, t.Muted.Render(desc))
}
