package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campfire/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type fetchDoneMsg struct {
	gen  uint64
	resp *app.SessionResponse
	err  error
}

type submitDoneMsg struct {
	resp *app.SessionResponse
	err  error
}

type spinMsg struct{}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type keyMap struct {
	Quit       key.Binding
	Submit     key.Binding
	ToggleView key.Binding
	PrevTurn   key.Binding
	NextTurn   key.Binding
	EditTitle  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		ToggleView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch view"),
		),
		PrevTurn: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "previous part"),
		),
		NextTurn: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next part"),
		),
		EditTitle: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "rename story"),
		),
	}
}

// StoryModel is the bubbletea program for one story session. It owns the two
// surfaces (chat input and story display) and drives a SessionController;
// all backend traffic happens in tea commands so the update loop never
// blocks.
type StoryModel struct {
	backend app.Backend
	session *app.SessionController
	logger  *app.Logger

	// Title the user explicitly asked for, empty for the live session.
	requestedTitle string

	theme Theme
	keys  keyMap

	width  int
	height int
	ready  bool

	input      textarea.Model
	titleInput textinput.Model
	storyVP    viewport.Model

	loading    bool
	errText    string
	spinnerPos int
}

func NewStoryModel(backend app.Backend, logger *app.Logger, requestedTitle string) *StoryModel {
	ta := textarea.New()
	ta.Placeholder = "Tell the storyteller what happens..."
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.Prompt = " "
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()

	ti := textinput.New()
	ti.Placeholder = "Story title"
	ti.CharLimit = 120

	return &StoryModel{
		backend:        backend,
		session:        app.NewSessionController(),
		logger:         logger,
		requestedTitle: requestedTitle,
		theme:          NewTheme(),
		keys:           defaultKeyMap(),
		width:          100,
		height:         30,
		input:          ta,
		titleInput:     ti,
		loading:        true,
	}
}

// Session exposes the controller for tests.
func (m *StoryModel) Session() *app.SessionController { return m.session }

func (m *StoryModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.fetchCmd(), m.spinTick())
}

func (m *StoryModel) fetchCmd() tea.Cmd {
	gen := m.session.BeginFetch()
	title := m.requestedTitle
	backend := m.backend
	return func() tea.Msg {
		resp, err := backend.FetchSession(context.Background(), title)
		return fetchDoneMsg{gen: gen, resp: resp, err: err}
	}
}

func (m *StoryModel) submitCmd(payload app.TurnPayload) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		resp, err := backend.SubmitTurn(context.Background(), payload)
		return submitDoneMsg{resp: resp, err: err}
	}
}

func (m *StoryModel) spinTick() tea.Cmd {
	return tea.Tick(90*time.Millisecond, func(_ time.Time) tea.Msg { return spinMsg{} })
}

func (m *StoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpH := m.height - 8
		if vpH < 3 {
			vpH = 3
		}
		if !m.ready {
			m.storyVP = viewport.New(m.width-4, vpH)
			m.ready = true
		} else {
			m.storyVP.Width = m.width - 4
			m.storyVP.Height = vpH
		}
		m.input.SetWidth(maxInt(10, m.width-6))
		m.titleInput.Width = maxInt(10, m.width-10)
		m.refreshStory()
		return m, nil

	case fetchDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.logger.Error("session fetch failed", map[string]interface{}{"error": msg.err.Error()})
			m.errText = displayError(msg.err)
			return m, nil
		}
		if m.session.ApplyFetch(msg.gen, msg.resp, m.requestedTitle != "") {
			m.errText = ""
			m.refreshStory()
		}
		return m, nil

	case submitDoneMsg:
		if err := m.session.FinishSubmit(msg.resp, msg.err); err != nil {
			m.logger.Error("turn submission failed", map[string]interface{}{"error": err.Error()})
			m.errText = displayError(err)
			return m, nil
		}
		m.errText = ""
		m.refreshStory()
		return m, nil

	case spinMsg:
		m.spinnerPos = (m.spinnerPos + 1) % len(spinnerFrames)
		if m.loading || m.session.Submitting() {
			return m, m.spinTick()
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.session.EditingTitle() {
			return m.updateTitleEdit(msg)
		}
		if m.session.View() == app.ViewChatInput {
			return m.updateChatView(msg)
		}
		return m.updateStoryView(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.titleInput, cmd = m.titleInput.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *StoryModel) updateChatView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		payload, err := m.session.BeginSubmit(m.input.Value())
		if err != nil {
			m.errText = displayError(err)
			return m, nil
		}
		m.errText = ""
		m.input.Reset()
		return m, tea.Batch(m.submitCmd(payload), m.spinTick())

	case key.Matches(msg, m.keys.ToggleView):
		if err := m.session.ShowStory(); err != nil {
			m.errText = displayError(err)
			return m, nil
		}
		m.errText = ""
		m.input.Blur()
		m.refreshStory()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *StoryModel) updateStoryView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleView):
		m.session.ShowChatInput()
		m.errText = ""
		m.input.Focus()
		return m, textarea.Blink

	case key.Matches(msg, m.keys.PrevTurn):
		m.session.GotoPrevTurn()
		m.refreshStory()
		return m, nil

	case key.Matches(msg, m.keys.NextTurn):
		m.session.GotoNextTurn()
		m.refreshStory()
		return m, nil

	case key.Matches(msg, m.keys.EditTitle):
		m.session.BeginTitleEdit()
		m.titleInput.SetValue(m.session.StoryTitle())
		m.titleInput.Focus()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.storyVP, cmd = m.storyVP.Update(msg)
	return m, cmd
}

func (m *StoryModel) updateTitleEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.session.SaveTitleEdit(m.titleInput.Value())
		m.titleInput.Blur()
		return m, nil
	case tea.KeyEsc:
		m.session.CancelTitleEdit()
		m.titleInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

// refreshStory rebuilds the story viewport from the turn being viewed.
func (m *StoryModel) refreshStory() {
	if !m.ready {
		return
	}
	t, ok := m.session.CurrentTurn()
	if !ok {
		m.storyVP.SetContent(m.theme.Counter.Render("No story parts yet."))
		return
	}
	var b strings.Builder
	b.WriteString(m.theme.StoryText.Width(m.storyVP.Width).Render(t.Text))
	if t.ImageURL != "" {
		b.WriteString("\n\n")
		b.WriteString(m.theme.Illustration.Render("illustration: " + t.ImageURL))
	}
	m.storyVP.SetContent(b.String())
	m.storyVP.GotoTop()
}

func (m *StoryModel) View() string {
	if !m.ready {
		return "…"
	}

	top := m.renderTopBar()
	var body string
	if m.session.EditingTitle() {
		body = m.renderTitleEdit()
	} else if m.session.View() == app.ViewChatInput {
		body = m.renderChatView()
	} else {
		body = m.renderStoryView()
	}
	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, top, body, footer)
}

func (m *StoryModel) renderTopBar() string {
	left := m.theme.TopBarTitle.Render("campfire") + " " +
		m.theme.TopBarBadge.Render(m.session.StoryTitle())
	var right string
	switch {
	case m.loading:
		right = m.theme.Spinner.Render(spinnerFrames[m.spinnerPos]) + " loading"
	case m.session.Submitting():
		right = m.theme.Spinner.Render(spinnerFrames[m.spinnerPos]) + " the storyteller is thinking"
	case !m.session.CanSubmitNewTurn():
		right = m.theme.TopBar.Render("read-only")
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.theme.TopBar.Render(left + strings.Repeat(" ", gap) + right)
}

func (m *StoryModel) renderChatView() string {
	var b strings.Builder
	b.WriteString(m.theme.PromptLine.Render(m.session.Prompt()))
	b.WriteString("\n")
	b.WriteString(m.theme.InputBox.Width(m.width - 2).Render(m.input.View()))
	if m.errText != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.ErrorText.Render(m.errText))
	}
	return b.String()
}

func (m *StoryModel) renderStoryView() string {
	counter := ""
	if n := len(m.session.StorytellerTurns()); n > 0 {
		counter = m.theme.Counter.Render(
			fmt.Sprintf("Part %d of %d", m.session.CurrentTurnIndex()+1, n))
	}
	pane := m.theme.PaneFocused.Width(m.width - 2).Render(m.storyVP.View())
	if m.errText != "" {
		return lipgloss.JoinVertical(lipgloss.Left, counter, pane, m.theme.ErrorText.Render(m.errText))
	}
	return lipgloss.JoinVertical(lipgloss.Left, counter, pane)
}

func (m *StoryModel) renderTitleEdit() string {
	var b strings.Builder
	b.WriteString(m.theme.PromptLine.Render("Rename story"))
	b.WriteString("\n")
	b.WriteString(m.theme.InputBox.Width(m.width - 2).Render(m.titleInput.View()))
	return b.String()
}

func (m *StoryModel) renderFooter() string {
	if m.session.EditingTitle() {
		return m.theme.Footer.Render("enter save | esc cancel")
	}
	if m.session.View() == app.ViewChatInput {
		return m.theme.Footer.Render("enter send | tab story view | ctrl+c quit")
	}
	return m.theme.Footer.Render("←/→ parts | tab write | e rename | ctrl+c quit")
}

func displayError(err error) string {
	if errors.Is(err, app.ErrUnauthorized) {
		return "Your session has expired. Run 'campfire login' and try again."
	}
	return err.Error()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
