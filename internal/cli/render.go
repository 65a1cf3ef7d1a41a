package cli

import (
	"fmt"

	"github.com/idilsaglam/grocery/internal/grocery"
	"github.com/idilsaglam/grocery/internal/model"
	"github.com/idilsaglam/grocery/internal/ui"
)

// longest item text shown before truncation
const maxTextRunes = 60

// listLines lays out the panel printed by `grocery ls`.
func listLines(s grocery.Snapshot, group bool) []string {
	t := ui.Current()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Heading, "Grocery List"),
		ui.C(t.InCart, t.CartMark), s.Checked,
		ui.C(t.ToBuy, t.ToBuyMark), s.Total-s.Checked,
		ui.C(t.Section, "Total"), s.Total,
	)

	lines := []string{header, ui.C(t.Muted, ui.ProgressBar(s.Checked, s.Total, 28))}
	if s.Filter != "" {
		lines = append(lines, ui.C(t.Muted, fmt.Sprintf("search: %q (%d shown)", s.Filter, len(s.Visible))))
	}
	lines = append(lines, "")

	if group {
		lines = append(lines, groupLines(s.Visible)...)
	} else {
		lines = append(lines, flatLines(s.Visible)...)
	}

	lines = append(lines, "", ui.C(t.Muted, footer(s.Total)))
	return lines
}

func flatLines(items []model.Item) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{ui.C(t.Muted, "Your list is empty.")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		idx := fmt.Sprintf("%2d.", i+1)
		box, color := t.Box, t.Muted
		if it.Checked {
			box, color = t.BoxChecked, t.InCart
		}
		out = append(out, fmt.Sprintf("%s %s %s %s",
			ui.Dim(idx), ui.C(color, box), truncate(it.Item), ui.C(t.Muted, "#"+it.ID)))
	}
	return out
}

func groupLines(items []model.Item) []string {
	t := ui.Current()
	var pend, done []model.Item
	for _, it := range items {
		if it.Checked {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	var lines []string
	lines = append(lines, ui.C(t.Section, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, ui.C(t.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Section, "Checked"))
	if len(done) == 0 {
		lines = append(lines, ui.C(t.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}

func footer(total int) string {
	if total == 1 {
		return "1 List item"
	}
	return fmt.Sprintf("%d List items", total)
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) > maxTextRunes {
		return string(r[:maxTextRunes-3]) + "..."
	}
	return s
}
