// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/uartbench/pkg/errdb"
	"github.com/Thermoquad/uartbench/pkg/errlog"
	"github.com/Thermoquad/uartbench/pkg/notify"
	"github.com/Thermoquad/uartbench/pkg/workbench"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	maxTranscriptLines = 500
	portPanelWidth     = 28
)

// Focus states
const (
	focusPortList = iota
	focusCommandInput
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// portItem is one serial port in the port list
type portItem struct {
	name      string
	connected bool
}

// Implement list.Item interface
func (p portItem) Title() string { return p.name }
func (p portItem) Description() string {
	if p.connected {
		return "connected"
	}
	return ""
}
func (p portItem) FilterValue() string { return p.name }

// consoleModel is the Bubble Tea model for the UART console
type consoleModel struct {
	ctx context.Context
	wb  *workbench.Workbench

	ports      list.Model
	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model

	lines    []string
	status   string
	statusOK bool

	focus     int
	busy      bool
	busyLabel string

	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type eventMsg notify.Event

type portsMsg struct {
	ports []string
	err   error
}

type connectMsg struct {
	err error
}

type disconnectMsg struct {
	err error
}

type exchangeMsg struct {
	command  string
	response string
	err      error
}

type logsMsg struct {
	report errlog.Report
	err    error
}

type clearMsg struct {
	response string
	err      error
}

type lookupMsg struct {
	result errdb.Result
	err    error
}

type refreshMsg struct {
	meta errdb.Metadata
	err  error
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialConsoleModel(ctx context.Context, wb *workbench.Workbench) consoleModel {
	ti := textinput.New()
	ti.Placeholder = "errlog 0"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = 60
	ti.Focus()

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	ports := list.New([]list.Item{}, delegate, portPanelWidth, 10)
	ports.Title = "Ports"
	ports.SetShowStatusBar(false)
	ports.SetShowHelp(false)
	ports.SetFilteringEnabled(false)

	s := spinner.New()
	s.Spinner = spinner.Dot

	return consoleModel{
		ctx:        ctx,
		wb:         wb,
		ports:      ports,
		input:      ti,
		transcript: viewport.New(60, 10),
		spinner:    s,
		lines:      make([]string, 0),
		status:     "Ready",
		statusOK:   true,
		focus:      focusCommandInput,
		width:      80,
		height:     24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m consoleModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, listPortsTask(m.wb))
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case eventMsg:
		m.handleEvent(notify.Event(msg))
		if msg.Kind == notify.ConnectionChanged {
			cmds = append(cmds, m.setPorts(m.wb.Session().Available()))
		}

	case portsMsg:
		m.busy = false
		if msg.err == nil {
			cmds = append(cmds, m.setPorts(msg.ports))
		}

	case connectMsg:
		m.busy = false
		cmds = append(cmds, m.setPorts(m.wb.Session().Available()))

	case disconnectMsg:
		m.busy = false
		if msg.err != nil {
			m.addLine(errorLineStyle.Render(fmt.Sprintf("Disconnect failed: %v", msg.err)))
		}
		cmds = append(cmds, m.setPorts(m.wb.Session().Available()))

	case exchangeMsg:
		m.busy = false
		if msg.err != nil {
			m.addLine(errorLineStyle.Render(fmt.Sprintf("%s -> %v", msg.command, msg.err)))
		} else {
			m.addLine(responseStyle.Render(msg.response))
		}

	case logsMsg:
		m.busy = false
		if msg.err == nil {
			for _, e := range msg.report.Entries {
				m.addLine(commandStyle.Render("> " + e.Command))
				style := responseStyle
				if errlog.IsFailure(e.Response) {
					style = errorLineStyle
				}
				m.addLine(style.Render(e.Response))
			}
		}

	case clearMsg:
		m.busy = false
		if msg.err == nil {
			m.addLine(responseStyle.Render(msg.response))
		}

	case lookupMsg:
		m.busy = false
		if msg.err == nil && msg.result.Found {
			m.addLine(fmt.Sprintf("%s %s: %s",
				labelStyle.Render(msg.result.Record.Code),
				dimStyle.Render("("+msg.result.Source.String()+")"),
				msg.result.Description))
		}

	case refreshMsg:
		m.busy = false
		if msg.err == nil {
			m.addLine(dimStyle.Render(fmt.Sprintf("Database: %d bytes, sha256 %s", msg.meta.Size, msg.meta.Checksum())))
		}
	}

	// Update child components
	var cmd tea.Cmd
	if m.focus == focusCommandInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.transcript, cmd = m.transcript.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m consoleModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab", "shift+tab":
		if m.focus == focusPortList {
			m.focus = focusCommandInput
			return m, m.input.Focus()
		}
		m.focus = focusPortList
		m.input.Blur()
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd

	case "enter":
		if m.busy {
			m.addLine(dimStyle.Render("Busy: " + m.busyLabel))
			return m, nil
		}
		if m.focus == focusPortList {
			return m.connectSelected("")
		}
		return m.submit()
	}

	var cmd tea.Cmd
	if m.focus == focusPortList {
		m.ports, cmd = m.ports.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// submit runs the text in the command line
func (m consoleModel) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if line == "" {
		return m, nil
	}

	if !strings.HasPrefix(line, "/") {
		m.addLine(commandStyle.Render("> " + line))
		return m.startBusy("sending "+line, exchangeTask(m.wb, line))
	}

	fields := strings.Fields(line)
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit
	case "/ports":
		return m.startBusy("listing ports", listPortsTask(m.wb))
	case "/connect":
		return m.connectSelected(arg)
	case "/disconnect":
		return m.startBusy("disconnecting", disconnectTask(m.wb))
	case "/logs":
		return m.startBusy("reading error log", collectLogsTask(m.wb))
	case "/clear":
		return m.startBusy("clearing error log", clearLogsTask(m.wb))
	case "/lookup":
		return m.startBusy("looking up "+arg, lookupOfflineTask(m.wb, arg))
	case "/online":
		return m.startBusy("looking up "+arg+" online", lookupOnlineTask(m.ctx, m.wb, arg))
	case "/refresh":
		return m.startBusy("downloading database", refreshTask(m.ctx, m.wb))
	case "/stats":
		for _, l := range strings.Split(strings.TrimRight(m.wb.Session().Statistics().String(), "\n"), "\n") {
			m.addLine(dimStyle.Render(l))
		}
		m.addLine(dimStyle.Render(fmt.Sprintf("Dropped Events:  %8d", m.wb.DroppedEvents())))
		return m, nil
	default:
		m.addLine(errorLineStyle.Render("Unknown command: " + fields[0]))
		return m, nil
	}
}

func (m consoleModel) connectSelected(name string) (tea.Model, tea.Cmd) {
	if name == "" {
		if item, ok := m.ports.SelectedItem().(portItem); ok {
			name = item.name
		}
	}
	if name != "" {
		m.wb.SelectPort(name)
	}
	return m.startBusy("connecting", connectTask(m.wb))
}

func (m consoleModel) startBusy(label string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = true
	m.busyLabel = label
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m *consoleModel) handleEvent(e notify.Event) {
	switch e.Kind {
	case notify.Status:
		m.status = e.Message
		m.statusOK = e.OK
	case notify.Error:
		m.addLine(errorLineStyle.Render(fmt.Sprintf("[%s] %s", e.Title, e.Message)))
	}
}

func (m *consoleModel) setPorts(ports []string) tea.Cmd {
	open := m.wb.Session().PortName()
	items := make([]list.Item, 0, len(ports))
	for _, name := range ports {
		items = append(items, portItem{name: name, connected: name == open})
	}
	if open != "" && !contains(ports, open) {
		items = append(items, portItem{name: open, connected: true})
	}
	return m.ports.SetItems(items)
}

func (m *consoleModel) addLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxTranscriptLines {
		m.lines = m.lines[len(m.lines)-maxTranscriptLines:]
	}
	m.transcript.SetContent(strings.Join(m.lines, "\n"))
	m.transcript.GotoBottom()
}

func (m *consoleModel) updateLayout() {
	bodyHeight := m.height - 8
	if bodyHeight < 5 {
		bodyHeight = 5
	}
	m.ports.SetSize(portPanelWidth, bodyHeight)

	transcriptWidth := m.width - portPanelWidth - 8
	if transcriptWidth < 20 {
		transcriptWidth = 20
	}
	m.transcript.Width = transcriptWidth
	m.transcript.Height = bodyHeight
	m.input.Width = m.width - 6
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

//////////////////////////////////////////////////////////////
// Commands
//////////////////////////////////////////////////////////////

func listPortsTask(wb *workbench.Workbench) tea.Cmd {
	return func() tea.Msg {
		ports, err := wb.ListPorts()
		return portsMsg{ports: ports, err: err}
	}
}

func connectTask(wb *workbench.Workbench) tea.Cmd {
	return func() tea.Msg {
		return connectMsg{err: wb.Connect()}
	}
}

func disconnectTask(wb *workbench.Workbench) tea.Cmd {
	return func() tea.Msg {
		return disconnectMsg{err: wb.Disconnect()}
	}
}

func exchangeTask(wb *workbench.Workbench, command string) tea.Cmd {
	return func() tea.Msg {
		response, err := wb.Send(command)
		return exchangeMsg{command: command, response: response, err: err}
	}
}

func collectLogsTask(wb *workbench.Workbench) tea.Cmd {
	return func() tea.Msg {
		report, err := wb.CollectLogs()
		return logsMsg{report: report, err: err}
	}
}

func clearLogsTask(wb *workbench.Workbench) tea.Cmd {
	return func() tea.Msg {
		response, err := wb.ClearLogs()
		return clearMsg{response: response, err: err}
	}
}

func lookupOfflineTask(wb *workbench.Workbench, code string) tea.Cmd {
	return func() tea.Msg {
		result, err := wb.LookupOffline(code)
		return lookupMsg{result: result, err: err}
	}
}

func lookupOnlineTask(ctx context.Context, wb *workbench.Workbench, code string) tea.Cmd {
	return func() tea.Msg {
		outcome := <-wb.LookupOnline(ctx, code)
		return lookupMsg{result: outcome.Result, err: outcome.Err}
	}
}

func refreshTask(ctx context.Context, wb *workbench.Workbench) tea.Cmd {
	return func() tea.Msg {
		outcome := <-wb.RefreshDirectory(ctx)
		return refreshMsg{meta: outcome.Meta, err: outcome.Err}
	}
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	responseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	focusedBoxStyle = boxStyle.
			BorderForeground(lipgloss.Color("12"))
)

func (m consoleModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Header
	connStatus := "not connected"
	if name := m.wb.Session().PortName(); name != "" {
		connStatus = connInfo(name)
	}
	s.WriteString(titleStyle.Render("UARTBENCH"))
	s.WriteString(" ")
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | Tab=switch Esc=quit", connStatus)))
	s.WriteString("\n\n")

	// Layout: left panel (ports) | right panel (transcript)
	portStyle := boxStyle
	if m.focus == focusPortList {
		portStyle = focusedBoxStyle
	}
	portPanel := portStyle.Width(portPanelWidth).Render(m.ports.View())
	transcriptPanel := boxStyle.Width(m.transcript.Width).Render(m.transcript.View())
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, portPanel, " ", transcriptPanel))
	s.WriteString("\n")

	// Command line
	inputStyle := boxStyle
	if m.focus == focusCommandInput {
		inputStyle = focusedBoxStyle
	}
	s.WriteString(inputStyle.Width(m.width - 4).Render(m.input.View()))
	s.WriteString("\n")

	// Status line
	if m.busy {
		s.WriteString(m.spinner.View() + " " + commandStyle.Render(m.busyLabel+"..."))
	} else if m.statusOK {
		s.WriteString(labelStyle.Render("Status: ") + m.status)
	} else {
		s.WriteString(labelStyle.Render("Status: ") + errorLineStyle.Render(m.status))
	}
	s.WriteString(dimStyle.Render(fmt.Sprintf("  %s", time.Now().Format(time.TimeOnly))))

	return s.String()
}
