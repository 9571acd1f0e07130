package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/items/internal/ui"
)

const (
	emptyText   = "No items found. Add some items to get started."
	confirmText = "Are you sure you want to delete this item? (y/n)"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.alert != "" {
		return m.alertView()
	}

	t := ui.Current()
	var b strings.Builder

	b.WriteString(m.formView())
	b.WriteString("\n")

	header := t.Title.Render(m.title)
	if m.loading {
		header += " " + m.spinner.View() + t.Muted.Render(" (Loading...)")
	}
	b.WriteString(header)
	b.WriteString("\n")

	if len(m.items) == 0 && !m.loading {
		b.WriteString(t.Muted.Render(emptyText))
		b.WriteString("\n")
	} else {
		b.WriteString(m.list.View())
		b.WriteString("\n")
	}

	if m.confirming != nil {
		b.WriteString(t.Error.Render(confirmText))
		b.WriteString("\n")
	}

	return ui.Frame(strings.TrimRight(b.String(), "\n"))
}

func (m Model) formView() string {
	t := ui.Current()

	label := func(s string, f focus) string {
		if m.focus == f {
			return t.Accent.Render(s)
		}
		return t.Muted.Render(s)
	}

	submit := "Add Item"
	if m.editing != nil {
		submit = "Update Item"
	}
	actions := t.Title.Render("[enter] "+submit) + t.Muted.Render("  ctrl+s save  tab next")
	if m.editing != nil {
		actions += t.Muted.Render("  [esc] Cancel")
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		label("Name:", focusName),
		m.name.View(),
		label("Description:", focusDescription),
		m.description.View(),
		actions,
	)
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(form)
}

func (m Model) alertView() string {
	t := ui.Current()
	body := lipgloss.JoinVertical(lipgloss.Left,
		t.Error.Render(t.SymFail+" "+m.alert),
		t.Muted.Render(m.alertErr),
		"",
		t.Muted.Render("press enter to dismiss"),
	)
	box := ui.Frame(body)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
