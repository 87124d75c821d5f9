package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"go.uber.org/zap"

	"policy-chat/internal/chat"
	"policy-chat/internal/markup"
	"policy-chat/internal/session"
)

// exchangeDoneMsg carries a finished agent call back to Update
type exchangeDoneMsg struct {
	out chat.Outcome
}

// viewState is shared with the session listener. Update and the listener
// run on the same goroutine, so no locking is needed.
type viewState struct {
	dirty  bool
	scroll bool
}

// ModelDeps groups what the TUI needs
type ModelDeps struct {
	Context        context.Context
	Session        *session.Manager
	Controller     *chat.Controller
	Correlator     *chat.Correlator
	Renderer       *Renderer
	Host           string
	ShowReferences bool
	Notice         string // shown in the status line at startup
	Logger         *zap.Logger
}

// Model is the full-screen chat interface
type Model struct {
	ctx      context.Context
	sess     *session.Manager
	ctrl     *chat.Controller
	corr     *chat.Correlator
	renderer *Renderer
	logger   *zap.Logger

	host           string
	showReferences bool

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	keys     keyMap
	styles   styles

	view     *viewState
	selected int // transcript index of the reply targeted by rating keys, -1 for the latest
	status   string
	width    int
	height   int
	ready    bool
}

// NewModel creates the TUI model and subscribes it to session changes
func NewModel(deps ModelDeps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = NewRenderer(StyleAuto)
	}

	st := newStyles()

	input := textinput.New()
	input.Placeholder = "Ask about an HR policy... (Enter to send, /help for commands)"
	input.Prompt = "❯ "
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.hint

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	status := "ready"
	if deps.Notice != "" {
		status = deps.Notice
	}

	view := &viewState{dirty: true, scroll: true}
	deps.Session.Subscribe(func(c session.Change) {
		view.dirty = true
		if c.ScrollToNewest() {
			view.scroll = true
		}
	})

	return Model{
		ctx:            ctx,
		sess:           deps.Session,
		ctrl:           deps.Controller,
		corr:           deps.Correlator,
		renderer:       renderer,
		logger:         logger.Named("tui"),
		host:           deps.Host,
		showReferences: deps.ShowReferences,
		input:          input,
		viewport:       vp,
		spinner:        sp,
		keys:           defaultKeyMap(),
		styles:         st,
		view:           view,
		selected:       -1,
		status:         status,
	}
}

// Init starts the cursor blink
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles one event. Every state mutation of the conversation
// happens here; agent calls run as commands and come back as messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.view.dirty = true

	case exchangeDoneMsg:
		idx := m.ctrl.Settle(msg.out)
		m.logger.Debug("exchange settled",
			zap.Int("index", idx),
			zap.Duration("duration", msg.out.Duration),
			zap.Bool("failed", msg.out.Err != nil),
		)
		if msg.out.Err != nil {
			m.status = "agent unavailable"
		} else {
			m.status = fmt.Sprintf("answered in %s", formatDuration(msg.out.Duration))
		}

	case spinner.TickMsg:
		if m.sess.Busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Send):
			if cmd := m.submit(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		case key.Matches(msg, m.keys.PrevReply):
			m.moveSelection(-1)
		case key.Matches(msg, m.keys.NextReply):
			m.moveSelection(1)
		case key.Matches(msg, m.keys.ThumbsUp):
			m.rate(m.selected, session.FeedbackUp)
		case key.Matches(msg, m.keys.ThumbsDown):
			m.rate(m.selected, session.FeedbackDown)
		case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.refresh()
	return m, tea.Batch(cmds...)
}

// submit handles Enter: slash commands run locally, anything else starts
// an exchange unless the controller rejects it.
func (m *Model) submit() tea.Cmd {
	text := m.input.Value()

	if cmd, ok := ParseCommand(text); ok {
		m.input.Reset()
		return m.handle(cmd)
	}

	turn, ok := m.ctrl.Begin(text)
	if !ok {
		return nil
	}
	m.input.Reset()
	m.selected = -1
	m.status = "waiting for the agent..."

	ctrl, ctx := m.ctrl, m.ctx
	exchange := func() tea.Msg {
		return exchangeDoneMsg{out: ctrl.Exchange(ctx, turn)}
	}
	return tea.Batch(exchange, m.spinner.Tick)
}

func (m *Model) handle(cmd Command) tea.Cmd {
	if cmd.Err != nil {
		m.status = cmd.Err.Error()
		return nil
	}

	switch cmd.Kind {
	case CmdExit:
		return tea.Quit
	case CmdClear:
		m.status = "screen cleared"
		return tea.ClearScreen
	case CmdHistory:
		m.viewport.GotoTop()
		m.status = "showing the start of the conversation"
	case CmdSession:
		m.status = "session " + m.sess.ID()
	case CmdHelp:
		m.status = strings.ReplaceAll(helpText, "\n", " ")
	case CmdRate:
		idx, err := ReplyIndex(m.sess, cmd.Reply)
		if err != nil {
			m.status = err.Error()
			return nil
		}
		m.rate(idx, cmd.Feedback)
	}
	return nil
}

// rate toggles the rating on the reply at idx (-1 for the latest).
// The backend report runs detached; its outcome only reaches the log.
func (m *Model) rate(idx int, fb session.Feedback) {
	if idx < 0 {
		var err error
		if idx, err = ReplyIndex(m.sess, 0); err != nil {
			m.status = err.Error()
			return
		}
	}
	if err := m.corr.Rate(m.ctx, idx, fb); err != nil {
		m.status = err.Error()
		return
	}
	msgs := m.sess.Messages()
	m.status = ratingStatus(ReplyNumber(msgs, idx), msgs[idx].Feedback)
}

func (m *Model) moveSelection(delta int) {
	agents := m.sess.AgentIndexes()
	if len(agents) == 0 {
		return
	}

	pos := len(agents) - 1
	for i, idx := range agents {
		if idx == m.selected {
			pos = i
			break
		}
	}
	pos += delta
	if pos < 0 {
		pos = 0
	}
	if pos >= len(agents) {
		pos = len(agents) - 1
	}
	m.selected = agents[pos]
	m.status = fmt.Sprintf("reply #%d selected", pos+1)
	if msg, ok := m.sess.Message(m.selected); ok {
		m.status += ": " + markup.PlainText(msg.Text)
	}
	m.view.dirty = true
}

func (m *Model) resize() {
	contentWidth := max(20, m.width-2)
	m.input.Width = max(10, contentWidth-6)
	m.viewport.Width = contentWidth
	// header (3) + input panel (3) + footer (2)
	m.viewport.Height = max(3, m.height-8)
}

// refresh re-renders the transcript when the session changed and follows
// the newest entry when the change asked for it.
func (m *Model) refresh() {
	if !m.view.dirty {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	if m.view.scroll {
		m.viewport.GotoBottom()
	}
	m.view.dirty = false
	m.view.scroll = false
}

func (m *Model) renderTranscript() string {
	msgs := m.sess.Messages()
	if len(msgs) == 0 {
		return m.styles.muted.Render("No messages yet. Ask a question about company policy to get started.")
	}

	width := max(20, m.viewport.Width-2)
	target := m.selected
	if target < 0 {
		target, _ = ReplyIndex(m.sess, 0)
	}

	var b strings.Builder
	reply := 0
	for i, msg := range msgs {
		timestamp := msg.Timestamp.Format("15:04:05")
		if !msg.IsAgent() {
			b.WriteString(m.styles.userLabel.Render("You · " + timestamp))
			b.WriteString("\n")
			// Literal text: user input is never interpreted as markup.
			b.WriteString(wordwrap.String(msg.Text, width))
			b.WriteString("\n\n")
			continue
		}

		reply++
		label := fmt.Sprintf("Agent #%d · %s", reply, timestamp)
		if badge := msg.Feedback.Emoji(); badge != "" {
			label += " " + badge
		}
		if i == target {
			b.WriteString(m.styles.selected.Render("▶ " + label))
		} else {
			b.WriteString(m.styles.agentLabel.Render(label))
		}
		b.WriteString("\n")

		if msg.Failed {
			b.WriteString(m.styles.errorText.Render(msg.Text))
		} else {
			b.WriteString(m.renderer.Agent(msg.Text, width))
		}
		b.WriteString("\n")

		if m.showReferences && len(msg.References) > 0 {
			b.WriteString(m.styles.muted.Render("Sources:"))
			b.WriteString("\n")
			for _, ref := range msg.References {
				b.WriteString(m.styles.reference.Render("  • " + truncate(ref, width-4)))
				b.WriteString("\n")
			}
		}
		if msg.AwaitingInput {
			b.WriteString(m.styles.hint.Render("↳ The agent is waiting for more details."))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// View renders the screen
func (m Model) View() string {
	if !m.ready {
		return "Starting policy-chat..."
	}
	contentWidth := max(20, m.width-2)

	header := m.styles.header.Width(contentWidth - 2).Render(
		fmt.Sprintf("policy-chat · %s · session %s", m.host, shortID(m.sess.ID())),
	)

	inputView := m.input.View()
	if m.sess.Busy() {
		inputView = m.spinner.View() + " waiting for the agent... " + inputView
	}
	input := m.styles.inputPanel.Width(contentWidth - 2).Render(inputView)

	hints := make([]string, 0, len(m.keys.hints()))
	for _, b := range m.keys.hints() {
		hints = append(hints, b.Help().Key+" "+b.Help().Desc)
	}
	footer := m.styles.status.Render(truncate(m.status, contentWidth)) + "\n" +
		m.styles.footer.Render(truncate(strings.Join(hints, " · "), contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), input, footer)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
