package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/parley/internal/core"
)

// Screen represents the current screen.
type Screen int

const (
	ScreenJoin Screen = iota
	ScreenChat
)

const (
	headerHeight = 1
	inputHeight  = 3
	statusHeight = 1
)

// Options configures the TUI.
type Options struct {
	ServerURL string
	Name      string // prefilled display name
	AutoJoin  bool   // join with Name on start
}

// Model is the main TUI model.
type Model struct {
	client  *core.Client
	eventCh <-chan core.Event
	opts    Options

	screen   Screen
	width    int
	height   int
	showHelp bool

	input      InputModel
	viewport   viewport.Model
	autoScroll bool
	snapshot   core.Snapshot
	net        NetIndicator

	polls   int // fetches in flight, from net_activity events
	calls   int // join/leave/send commands in flight
	joining bool
	leaving bool

	pollErr string
	err     error
}

// EventMsg wraps a core event for the TUI.
type EventMsg struct {
	Event core.Event
}

type joinResultMsg struct {
	name string
	err  error
}

type leaveResultMsg struct{}

type sendResultMsg struct {
	content string
	err     error
}

// New creates a new TUI model.
func New(client *core.Client, eventCh <-chan core.Event, opts Options) Model {
	m := Model{
		client:     client,
		eventCh:    eventCh,
		opts:       opts,
		screen:     ScreenJoin,
		input:      NewInputModel(),
		viewport:   viewport.New(0, 0),
		autoScroll: true,
		net:        NewNetIndicator(),
		snapshot:   client.Snapshot(),
	}
	m.input.SetValue(opts.Name)
	if opts.AutoJoin && opts.Name != "" {
		m.joining = true
		m.calls = 1
		m.net.SetActivity(NetActivityCall)
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.listenForEvents(),
		m.net.Init(),
		m.input.Focus(),
	}
	if m.joining {
		cmds = append(cmds, m.joinCmd(m.opts.Name))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case NetIndicatorTickMsg:
		var cmd tea.Cmd
		m.net, cmd = m.net.Update(msg)
		return m, cmd

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, m.listenForEvents()

	case joinResultMsg:
		m.joining = false
		m.endCall()
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.pollErr = ""
		m.screen = ScreenChat
		m.input.SetMode(InputModeMessage)
		m.autoScroll = true
		m.refresh()
		return m, nil

	case leaveResultMsg:
		m.leaving = false
		m.endCall()
		m.err = nil
		m.pollErr = ""
		m.screen = ScreenJoin
		// The display name does not survive a leave
		m.input.SetMode(InputModeName)
		m.refresh()
		return m, nil

	case sendResultMsg:
		m.endCall()
		if msg.err != nil {
			if errors.Is(msg.err, core.ErrEmptyContent) {
				return m, nil
			}
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.input.AddToHistory(msg.content)
		// Keep anything typed while the send was in flight
		if m.input.Value() == msg.content {
			m.input.Reset()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if key.Matches(msg, keys.Help) || (key.Matches(msg, keys.HelpAlt) && m.input.Value() == "") {
		m.showHelp = true
		return m, nil
	}

	if m.screen == ScreenJoin {
		if key.Matches(msg, keys.Enter) {
			if m.joining {
				return m, nil
			}
			name := m.input.Value()
			m.joining = true
			m.err = nil
			m.beginCall()
			return m, m.joinCmd(name)
		}
	} else {
		switch {
		case key.Matches(msg, keys.Enter):
			if m.leaving {
				return m, nil
			}
			content := m.input.Value()
			m.client.SetInput(content)
			m.beginCall()
			return m, m.sendCmd(content)

		case key.Matches(msg, keys.Leave):
			if m.leaving {
				return m, nil
			}
			m.leaving = true
			m.beginCall()
			return m, m.leaveCmd()

		case key.Matches(msg, keys.PageUp):
			m.viewport.HalfViewUp()
			m.autoScroll = false
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.viewport.HalfViewDown()
			m.autoScroll = m.viewport.AtBottom()
			return m, nil

		case key.Matches(msg, keys.End):
			m.viewport.GotoBottom()
			m.autoScroll = true
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleEvent(event core.Event) {
	switch event.Type {
	case core.EventMessagesAppended, core.EventRosterUpdated:
		m.pollErr = ""
		m.refresh()

	case core.EventJoined, core.EventLeft:
		m.refresh()

	case core.EventPollError:
		if data, ok := event.Data.(*core.ErrorData); ok {
			m.pollErr = data.Error
		}

	case core.EventNetActivity:
		data, ok := event.Data.(*core.NetActivityData)
		if !ok {
			return
		}
		if data.Active {
			m.polls++
		} else if m.polls > 0 {
			m.polls--
		}
		m.updateNet()
	}
}

// refresh re-reads the client's view and re-renders the log.
func (m *Model) refresh() {
	m.snapshot = m.client.Snapshot()
	m.viewport.SetContent(renderLog(m.snapshot.Messages, m.snapshot.Session.Name, m.viewport.Width))
	if m.autoScroll {
		m.viewport.GotoBottom()
	}
}

func (m *Model) resize() {
	logWidth := m.width - rosterWidth
	vpWidth := logWidth - 3 // border and scrollbar
	vpHeight := m.height - headerHeight - inputHeight - statusHeight - 2
	if vpWidth < 10 {
		vpWidth = 10
	}
	if vpHeight < 1 {
		vpHeight = 1
	}

	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.refresh()
}

func (m *Model) beginCall() {
	m.calls++
	m.updateNet()
}

func (m *Model) endCall() {
	if m.calls > 0 {
		m.calls--
	}
	m.updateNet()
}

func (m *Model) updateNet() {
	switch {
	case m.calls > 0:
		m.net.SetActivity(NetActivityCall)
	case m.polls > 0:
		m.net.SetActivity(NetActivityPoll)
	default:
		m.net.SetActivity(NetActivityIdle)
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return RenderHelp(m.width, m.height)
	}

	if m.screen == ScreenJoin {
		return RenderJoin(m.input, m.opts.ServerURL, m.err, m.joining, m.width, m.height)
	}

	suffix := ""
	if !m.autoScroll {
		suffix = dimmedStyle.Render(fmt.Sprintf(" %3.f%% ", m.viewport.ScrollPercent()*100))
	}
	header := renderSectionTitleWithSuffix("parley · "+m.opts.ServerURL, suffix, m.width)

	panelHeight := m.viewport.Height + 2
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		renderLogPanel(m.viewport),
		renderRoster(m.snapshot.Roster, m.snapshot.Session.Name, panelHeight),
	)

	status := renderStatusBar(statusInfo{
		name:     m.snapshot.Session.Name,
		state:    m.client.PollerState(),
		interval: m.client.Interval(),
		cursor:   m.snapshot.Cursor,
		net:      m.net.View(),
		pollErr:  m.pollErr,
		err:      m.err,
		width:    m.width,
	})

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.input.View(m.width), status)
}

func (m Model) joinCmd(name string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.Join(context.Background(), name)
		if err != nil {
			log.Debug().Err(err).Msg("Join rejected")
		}
		return joinResultMsg{name: name, err: err}
	}
}

func (m Model) leaveCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		client.Leave(context.Background())
		return leaveResultMsg{}
	}
}

func (m Model) sendCmd(content string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return sendResultMsg{content: content, err: client.Send(context.Background(), content)}
	}
}

func (m Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.eventCh
		if !ok {
			return nil
		}
		return EventMsg{Event: event}
	}
}

// Key bindings
var keys = struct {
	Quit     key.Binding
	Help     key.Binding
	HelpAlt  key.Binding
	Enter    key.Binding
	Leave    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	End      key.Binding
}{
	Quit:     key.NewBinding(key.WithKeys("ctrl+c")),
	Help:     key.NewBinding(key.WithKeys("f1")),
	HelpAlt:  key.NewBinding(key.WithKeys("?")),
	Enter:    key.NewBinding(key.WithKeys("enter")),
	Leave:    key.NewBinding(key.WithKeys("ctrl+l")),
	PageUp:   key.NewBinding(key.WithKeys("pgup")),
	PageDown: key.NewBinding(key.WithKeys("pgdown")),
	End:      key.NewBinding(key.WithKeys("end")),
}
