package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/grocery/internal/grocery"
)

func (m Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(m.snap),
		renderInput(m.add.View(), m.focus == focusAdd),
		renderInput(m.search.View(), m.focus == focusSearch),
		m.renderContent(),
		renderFooter(m.snap.Total),
		m.help.View(m.keys),
	)
	return boxStyle.Render(content)
}

func (m Model) renderContent() string {
	s := m.snap
	var parts []string
	if s.FetchError != "" {
		parts = append(parts, errorStyle.Render(s.FetchError))
	}
	if s.Loading {
		parts = append(parts, m.spin.View()+" Loading...")
	}
	if !s.Loading && s.FetchError == "" {
		if len(s.Visible) == 0 {
			parts = append(parts, mutedStyle.Render("Your list is empty."))
		} else {
			parts = append(parts, m.list.View())
		}
	}
	return strings.Join(parts, "\n")
}

func renderHeader(s grocery.Snapshot) string {
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Grocery List"),
		successStyle.Render("✔"), s.Checked,
		pendingStyle.Render("•"), s.Total-s.Checked,
		accentStyle.Render("Total"), s.Total,
	)
}

// renderInput frames the add form or the search box.
func renderInput(input string, focused bool) string {
	style := boxStyle
	if focused {
		style = focusedBoxStyle
	}
	return style.Render(input)
}

func renderFooter(total int) string {
	noun := "items"
	if total == 1 {
		noun = "item"
	}
	return mutedStyle.Render(fmt.Sprintf("%d List %s", total, noun))
}
