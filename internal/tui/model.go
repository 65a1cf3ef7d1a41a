// Package tui is the interactive grocery list: a Bubble Tea program whose
// only state of record lives in a grocery.List controller.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/grocery/internal/grocery"
)

// rows taken by everything around the item list
const chromeHeight = 12

type focus int

const (
	focusList focus = iota
	focusAdd
	focusSearch
)

const (
	opAdd    = "add"
	opToggle = "toggle"
	opDelete = "delete"
)

// listItem adapts a grocery item to bubbles/list.Item
type listItem struct {
	ID      string
	Text    string
	Checked bool
}

func (i listItem) Title() string {
	box := boxUnchecked
	if i.Checked {
		box = boxChecked
	}
	return fmt.Sprintf("%s %s", box, i.Text)
}

func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Text }

// itemDelegate renders one item per line
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)

	box := mutedStyle.Render(boxUnchecked)
	text := it.Text
	if it.Checked {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprint(w, prefix+box+" "+text)
}

type loadedMsg struct{ err error }

type mutatedMsg struct {
	op   string
	id   string
	text string // submitted text, for adds
	err  error
}

// Model is the Bubble Tea model. Header, add form, search box and footer are
// pure renderers of the controller snapshot.
type Model struct {
	ctx  context.Context
	ctrl *grocery.List
	log  *slog.Logger
	snap grocery.Snapshot

	focus  focus
	list   list.Model
	add    textinput.Model
	search textinput.Model
	spin   spinner.Model
	help   help.Model
	keys   keyMap
}

// New builds the model. The initial load starts from Init.
func New(ctx context.Context, ctrl *grocery.List, log *slog.Logger) Model {
	l := list.New(nil, itemDelegate{}, 76, 12)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.Styles.PaginationStyle = helpStyle
	l.DisableQuitKeybindings()

	add := textinput.New()
	add.Prompt = "> "
	add.Placeholder = "Add Item"
	add.CharLimit = 200

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search Items"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:    ctx,
		ctrl:   ctrl,
		log:    log,
		list:   l,
		add:    add,
		search: search,
		spin:   sp,
		help:   help.New(),
		keys:   defaultKeys(),
	}
	m.refresh()
	return m
}

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, ctrl *grocery.List, log *slog.Logger) error {
	p := tea.NewProgram(New(ctx, ctrl, log), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.list.SetSize(max(msg.Width-6, 10), max(msg.Height-chromeHeight, 3))
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.log.Debug("initial load failed", "error", msg.err)
		}
		m.refresh()
		return m, nil

	case mutatedMsg:
		// failures were logged by the controller and are not shown
		if msg.err != nil {
			m.log.Debug("change not applied", "op", msg.op, "id", msg.id, "error", msg.err)
		}
		m.refresh()
		// keep anything typed while the add was in flight
		if msg.op == opAdd && msg.err == nil && m.add.Value() == msg.text {
			m.add.SetValue("")
		}
		return m, nil

	case spinner.TickMsg:
		if !m.snap.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.focus {
		case focusAdd:
			return m.updateAdd(msg)
		case focusSearch:
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}

	// cursor blink and friends
	var addCmd, searchCmd tea.Cmd
	m.add, addCmd = m.add.Update(msg)
	m.search, searchCmd = m.search.Update(msg)
	return m, tea.Batch(addCmd, searchCmd)
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Add):
		m.focus = focusAdd
		return m, m.add.Focus()
	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Toggle):
		if it, ok := m.selected(); ok {
			return m, m.toggleCmd(it.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if it, ok := m.selected(); ok {
			return m, m.deleteCmd(it.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Back):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.ctrl.SetFilter("")
			m.refresh()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.focus = focusList
		m.add.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		text := m.add.Value()
		if text == "" {
			return m, nil
		}
		return m, m.addCmd(text)
	}
	var cmd tea.Cmd
	m.add, cmd = m.add.Update(msg)
	m.ctrl.SetDraft(m.add.Value())
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Submit) {
		m.focus = focusList
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.ctrl.SetFilter(m.search.Value())
	m.refresh()
	return m, cmd
}

func (m *Model) refresh() {
	m.snap = m.ctrl.Snapshot()
	items := make([]list.Item, 0, len(m.snap.Visible))
	for _, it := range m.snap.Visible {
		items = append(items, listItem{ID: it.ID, Text: it.Item, Checked: it.Checked})
	}
	m.list.SetItems(items)
	if n := len(items); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
}

func (m Model) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

func (m Model) loadCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return loadedMsg{err: ctrl.Load(ctx)}
	}
}

func (m Model) addCmd(text string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		_, err := ctrl.Add(ctx, text)
		return mutatedMsg{op: opAdd, text: text, err: err}
	}
}

func (m Model) toggleCmd(id string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return mutatedMsg{op: opToggle, id: id, err: ctrl.Toggle(ctx, id)}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return mutatedMsg{op: opDelete, id: id, err: ctrl.Delete(ctx, id)}
	}
}
