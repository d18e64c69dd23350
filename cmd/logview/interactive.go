package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tracekit/logfmt/encoder"
	"github.com/tracekit/logfmt/pack"
	"github.com/tracekit/logfmt/sink"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	dumpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	inputs   []textinput.Model
	focusIdx int

	message  string
	stats    string
	hexDump  string
	rendered bool
}

func newInteractiveModel() *interactiveModel {
	format := textinput.New()
	format.Prompt = "format: "
	format.Placeholder = "listener %d ready on %{public}s"
	format.Width = 60
	format.Focus()

	args := textinput.New()
	args.Prompt = "args:   "
	args.Placeholder = "int:3,str:eth0  (int uint float str pstr data obj count errno)"
	args.Width = 60

	return &interactiveModel{inputs: []textinput.Model{format, args}}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "tab":
			m.inputs[m.focusIdx].Blur()
			m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
			m.inputs[m.focusIdx].Focus()
			return m, nil

		case "enter":
			if m.focusIdx == 0 {
				m.inputs[0].Blur()
				m.focusIdx = 1
				m.inputs[1].Focus()
				return m, nil
			}
			m.encode()
			return m, nil

		case "esc":
			m.message = ""
			m.stats = ""
			m.hexDump = ""
			m.err = nil
			m.rendered = false
			return m, nil
		}
	}

	var cmds []tea.Cmd
	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// encode runs the whole pipeline on the current inputs: encoder, pack
// assembly, decode, render.
func (m *interactiveModel) encode() {
	m.err = nil
	m.rendered = false

	format := m.inputs[0].Value()
	var enc encoder.Buffer
	if err := parseArgs(m.inputs[1].Value(), &enc); err != nil {
		m.err = err
		return
	}

	buf := make([]byte, pack.RequiredSize(len(format), enc.Len()))
	payload := pack.Fill(buf, 0, 0, format)
	copy(payload, enc.Bytes())

	rec, err := sink.Decode(buf)
	if err != nil {
		m.err = err
		return
	}

	m.message = sink.Render(rec, false)
	m.stats = fmt.Sprintf("%d commands, %d command bytes, %d byte pack",
		enc.Count(), enc.Len(), len(buf))
	m.hexDump = hex.Dump(buf)
	m.rendered = true
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("logview"))
	b.WriteString("\n\n")
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteByte('\n')
	}
	if m.rendered {
		b.WriteString(labelStyle.Render("message  "))
		b.WriteString(messageStyle.Render(m.message))
		b.WriteByte('\n')
		b.WriteString(labelStyle.Render("encoded  "))
		b.WriteString(m.stats)
		b.WriteString("\n\n")
		b.WriteString(dumpStyle.Render(m.hexDump))
	}

	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("enter: encode • tab: switch field • esc: clear • ctrl+c: quit"))
	b.WriteByte('\n')
	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel())
	_, err := p.Run()
	return err
}
