package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	planterpressure "github.com/ankit-colmed/planter-pressure"
	"github.com/ankit-colmed/planter-pressure/engine"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err       error
	eng       *engine.Engine
	assetsDir string
	home      string
	result    string
	inputs    []textinput.Model
	focusIdx  int
	state     modelState
}

type modelState int

const (
	stateLoading modelState = iota
	stateInput
	stateProcessing
	stateShowResult
)

// inputs[0] is the image path, inputs[1] an optional raw payload that
// takes precedence when non-empty.
const (
	inputImagePath = 0
	inputRawJSON   = 1
)

func newInteractiveModel(assetsDir, home string) *interactiveModel {
	imagePath := textinput.New()
	imagePath.Prompt = "image path: "
	imagePath.Placeholder = "/data/input.png"
	imagePath.Width = 48
	imagePath.Focus()

	rawJSON := textinput.New()
	rawJSON.Prompt = "raw payload: "
	rawJSON.Placeholder = `{"input_image_path": "..."}`
	rawJSON.Width = 48

	return &interactiveModel{
		assetsDir: assetsDir,
		home:      home,
		inputs:    []textinput.Model{imagePath, rawJSON},
		state:     stateLoading,
	}
}

type engineReadyMsg struct {
	err error
	eng *engine.Engine
}

type processResultMsg struct {
	payload string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.startEngine
}

func (m *interactiveModel) startEngine() tea.Msg {
	ctx := context.Background()

	eng := engine.New()
	if st := eng.Initialize(ctx, m.home, m.assetsDir); st != engine.StatusOK {
		return engineReadyMsg{err: fmt.Errorf("initialize: %s: %s", st, eng.LastError())}
	}
	return engineReadyMsg{eng: eng}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.eng != nil {
				m.eng.Shutdown(context.Background())
			}
			return m, tea.Quit

		case "esc":
			if m.state == stateShowResult {
				m.state = stateInput
				m.result = ""
				m.err = nil
				return m, nil
			}
			if m.eng != nil {
				m.eng.Shutdown(context.Background())
			}
			return m, tea.Quit

		case "tab":
			if m.state == stateInput {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "enter":
			switch m.state {
			case stateInput:
				m.state = stateProcessing
				return m, m.process

			case stateShowResult:
				m.state = stateInput
				m.result = ""
				m.err = nil
			}
		}

	case engineReadyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.eng = msg.eng
		m.state = stateInput

	case processResultMsg:
		m.result = msg.payload
		m.state = stateShowResult
	}

	if m.state == stateInput {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) process() tea.Msg {
	payload := strings.TrimSpace(m.inputs[inputRawJSON].Value())
	if payload == "" {
		built, err := buildPayload(strings.TrimSpace(m.inputs[inputImagePath].Value()))
		if err != nil {
			return processResultMsg{payload: fmt.Sprintf("Error: %v", err)}
		}
		payload = built
	}

	return processResultMsg{payload: m.eng.Invoke(context.Background(), []byte(payload))}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Engine " + planterpressure.Version))
	b.WriteString(" ")
	b.WriteString(m.assetsDir)
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("esc quit"))
		return b.String()
	}

	switch m.state {
	case stateLoading:
		b.WriteString("Loading " + labelStyle.Render("app_modules.zip") + "...")

	case stateInput:
		b.WriteString("Describe the processing request:\n\n")
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter process • esc quit"))

	case stateProcessing:
		b.WriteString("Processing...")

	case stateShowResult:
		b.WriteString("Result:\n\n")
		if strings.Contains(m.result, `"status":"error"`) {
			b.WriteString(errorStyle.Render(m.result))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter another request • esc back"))
	}

	return b.String()
}

func runInteractive(assetsDir, home string) error {
	p := tea.NewProgram(newInteractiveModel(assetsDir, home), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
