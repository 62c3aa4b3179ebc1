package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/clrmem"
	"github.com/wippyai/clrmem/memory"
	"github.com/wippyai/clrmem/symtab"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// headerLines is the number of lines View renders above the viewport.
const headerLines = 3

type watchModel struct {
	err      error
	reader   *memory.Counting
	table    *symtab.Table
	source   string
	lines    []string
	query    query
	input    textinput.Model
	view     viewport.Model
	interval time.Duration
	updated  time.Time
	editing  bool
	paused   bool
	ready    bool
}

type tickMsg time.Time

type decodedMsg struct {
	err   error
	lines []string
	at    time.Time
}

func newWatchModel(r clrmem.Reader, source string, q query, table *symtab.Table, interval time.Duration) *watchModel {
	ti := textinput.New()
	ti.Prompt = "address: "
	ti.Placeholder = "0x... or Class.field"
	ti.Width = 40

	return &watchModel{
		reader:   memory.NewCounting(r),
		table:    table,
		source:   source,
		query:    q,
		input:    ti,
		interval: interval,
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.tick())
}

func (m *watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// refresh snapshots the query so the read can run off the update loop.
func (m *watchModel) refresh() tea.Cmd {
	r, q := m.reader, m.query
	return func() tea.Msg {
		lines, err := decode(r, q)
		return decodedMsg{lines: lines, err: err, at: time.Now()}
	}
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateInput(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "r":
			return m, m.refresh()

		case "p", " ":
			m.paused = !m.paused
			return m, nil

		case "a":
			m.editing = true
			m.input.SetValue(fmt.Sprintf("0x%x", m.query.addr))
			return m, m.input.Focus()
		}

	case tea.WindowSizeMsg:
		height := max(msg.Height-headerLines-2, 1)
		if !m.ready {
			m.view = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = height
		}
		m.view.SetContent(strings.Join(m.lines, "\n"))

	case tickMsg:
		if m.paused {
			return m, m.tick()
		}
		return m, tea.Batch(m.refresh(), m.tick())

	case decodedMsg:
		m.err = msg.err
		m.updated = msg.at
		if msg.err == nil {
			m.lines = msg.lines
			if m.ready {
				m.view.SetContent(strings.Join(m.lines, "\n"))
			}
		}
		return m, nil
	}

	if m.ready {
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *watchModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil

	case "enter":
		addr, err := parseAddress(m.input.Value(), m.table)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.editing = false
		m.input.Blur()
		m.query.addr = addr
		m.lines = nil
		m.reader.Reset()
		return m, m.refresh()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *watchModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("clrview"))
	b.WriteString(" ")
	b.WriteString(m.source)
	b.WriteString(" ")
	b.WriteString(kindStyle.Render(m.describe()))
	b.WriteString("\n")

	if m.editing {
		b.WriteString(m.input.View())
	} else if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else {
		status := "updated " + m.updated.Format("15:04:05.000")
		if m.paused {
			status += " (paused)"
		}
		b.WriteString(helpStyle.Render(fmt.Sprintf("%s • %d reads, %d bytes",
			status, m.reader.Calls(), m.reader.Bytes())))
	}
	b.WriteString("\n\n")

	if m.ready {
		b.WriteString(m.view.View())
	} else {
		b.WriteString(strings.Join(m.lines, "\n"))
	}
	b.WriteString("\n")

	if m.editing {
		b.WriteString(helpStyle.Render("enter apply • esc cancel"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ scroll • a address • r refresh • p pause • q quit"))
	}
	return b.String()
}

func (m *watchModel) describe() string {
	q := m.query
	var s string
	switch q.kind {
	case "string":
		s = "string"
	case "map":
		s = fmt.Sprintf("map<%s, %s>", q.elem, q.value)
	default:
		s = fmt.Sprintf("%s<%s>", q.kind, q.elem)
	}
	if q.deref {
		s = "*" + s
	}
	return fmt.Sprintf("%s @0x%x", s, q.addr)
}

func runInteractive(r clrmem.Reader, source string, q query, table *symtab.Table, interval time.Duration) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	if interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	p := tea.NewProgram(newWatchModel(r, source, q, table, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
