package cli

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/items/internal/model"
	"github.com/Makepad-fr/items/internal/ui"
)

const (
	emptyText     = "No items found. Add some items to get started."
	confirmDelete = "Are you sure you want to delete this item? (y/n)"
)

// listLines renders the ls panel: header, one line per item, tip.
func listLines(items []model.Item) []string {
	t := ui.Current()

	header := fmt.Sprintf("%s  %s %d",
		t.Title.Render("Items"),
		t.Accent.Render("Total"), len(items),
	)

	lines := []string{header, ""}
	lines = append(lines, flatLines(items)...)
	lines = append(lines, "", t.Muted.Render("Tip: add with `items add \"Buy milk\"`"))
	return lines
}

func flatLines(items []model.Item) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{t.Muted.Render(emptyText)}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		line := fmt.Sprintf("%s %s %s",
			t.Muted.Render(fmt.Sprintf("#%-4d", it.ID)),
			t.Accent.Render(t.SymItem),
			truncate(it.Name, 60),
		)
		if first := firstLine(it.Description); first != "" {
			line += "  " + t.Muted.Render(truncate(first, 60))
		}
		out = append(out, line)
	}
	return out
}

// itemLines renders a single item with its full description.
func itemLines(it model.Item) []string {
	t := ui.Current()
	lines := []string{
		fmt.Sprintf("%s %s", t.Muted.Render(fmt.Sprintf("#%d", it.ID)), t.Title.Render(it.Name)),
	}
	if it.Description == "" {
		return append(lines, t.Muted.Render("(no description)"))
	}
	return append(lines, strings.Split(it.Description, "\n")...)
}

func firstLine(s string) string {
	first, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(first)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
