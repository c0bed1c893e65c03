package app

import "strings"

// ViewMode is which of the two UI surfaces is active.
type ViewMode int

const (
	ViewChatInput ViewMode = iota
	ViewStoryDisplay
)

func (v ViewMode) String() string {
	if v == ViewStoryDisplay {
		return "story"
	}
	return "chat"
}

// DefaultStoryTitle replaces a blank title in outbound payloads.
const DefaultStoryTitle = "Untitled Story"

// waitingForTale seeds previousContent when the session has no turns yet.
const waitingForTale = "Waiting for a tale to begin..."

// SessionResponse is the backend's answer to a session fetch or turn
// submission.
type SessionResponse struct {
	ID                    string    `json:"id,omitempty"`
	StoryTitle            string    `json:"storyTitle,omitempty"`
	ChatTurns             []RawTurn `json:"chatTurns"`
	HasActiveSessionToday bool      `json:"hasActiveSessionToday,omitempty"`
}

// TurnPayload is the outbound shape for a turn submission. An absent ID
// tells the backend to create a new story.
type TurnPayload struct {
	PreviousContent string `json:"previousContent"`
	InputText       string `json:"inputText"`
	ChatTurns       []Turn `json:"chatTurns"`
	StoryTitle      string `json:"storyTitle"`
	ID              string `json:"id,omitempty"`
}

// SessionController owns one interactive story session: the turn lists, the
// chat/story view state, the navigation index into storyteller turns, and
// payload assembly for submissions. It performs no I/O itself; the TUI (or a
// test) drives it and talks to the Backend.
//
// All state lives here rather than in ambient globals, so a controller can be
// created per story and discarded when the view goes away.
type SessionController struct {
	store *TurnStore

	storyID    string
	storyTitle string

	allTurns         []Turn
	storytellerTurns []Turn
	currentTurnIndex int

	view          ViewMode
	openedByTitle bool
	submitting    bool
	editingTitle  bool
	prompt        string

	// Monotonic generation counter guarding against a stale fetch response
	// overwriting newer state.
	fetchGen uint64
}

// NewSessionController returns an empty controller primed for a brand-new
// session: chat-input view, start-of-story prompt.
func NewSessionController() *SessionController {
	return &SessionController{
		store:  NewTurnStore(),
		view:   ViewChatInput,
		prompt: ResolveChatInputPrompt(nil, true),
	}
}

// BeginFetch registers an in-flight session fetch and returns its generation
// token. ApplyFetch ignores any response whose token is no longer current.
func (c *SessionController) BeginFetch() uint64 {
	c.fetchGen++
	return c.fetchGen
}

// ApplyFetch installs a fetched session. openedByTitle records whether the
// user explicitly asked for this story by title, which locks it against new
// turns and pins its navigation position. A nil response means the backend
// has no session yet. Returns false when the response is stale.
func (c *SessionController) ApplyFetch(gen uint64, resp *SessionResponse, openedByTitle bool) bool {
	if gen != c.fetchGen {
		return false
	}
	c.openedByTitle = openedByTitle
	if resp == nil {
		c.allTurns = nil
		c.storytellerTurns = nil
		c.currentTurnIndex = 0
		c.view = ViewChatInput
		c.prompt = ResolveChatInputPrompt(nil, true)
		return true
	}
	c.storyID = resp.ID
	c.storyTitle = resp.StoryTitle
	c.allTurns = c.store.Normalize(resp.ChatTurns)
	c.storytellerTurns = FilterStoryteller(c.allTurns)
	c.currentTurnIndex = c.lastStorytellerIndex()
	if len(c.storytellerTurns) > 0 || openedByTitle {
		c.view = ViewStoryDisplay
	} else {
		c.view = ViewChatInput
	}
	c.prompt = ResolveChatInputPrompt(c.allTurns, len(c.allTurns) == 0)
	return true
}

func (c *SessionController) lastStorytellerIndex() int {
	if len(c.storytellerTurns) == 0 {
		return 0
	}
	return len(c.storytellerTurns) - 1
}

func (c *SessionController) View() ViewMode { return c.view }

func (c *SessionController) StoryID() string { return c.storyID }

func (c *SessionController) Prompt() string { return c.prompt }

func (c *SessionController) Submitting() bool { return c.submitting }

func (c *SessionController) OpenedByTitle() bool { return c.openedByTitle }

func (c *SessionController) AllTurns() []Turn { return c.allTurns }

func (c *SessionController) StorytellerTurns() []Turn { return c.storytellerTurns }

func (c *SessionController) CurrentTurnIndex() int { return c.currentTurnIndex }

// StoryTitle returns the session title, falling back to the placeholder when
// none has been set.
func (c *SessionController) StoryTitle() string {
	if strings.TrimSpace(c.storyTitle) == "" {
		return DefaultStoryTitle
	}
	return c.storyTitle
}

// CurrentTurn returns the storyteller turn being viewed, if any.
func (c *SessionController) CurrentTurn() (Turn, bool) {
	if len(c.storytellerTurns) == 0 {
		return Turn{}, false
	}
	i := c.currentTurnIndex
	if i < 0 {
		i = 0
	}
	if i >= len(c.storytellerTurns) {
		i = len(c.storytellerTurns) - 1
	}
	return c.storytellerTurns[i], true
}

// ShowStory transitions chat-input -> story-display. The live (untitled,
// ongoing) session jumps to the most recent turn; an explicitly opened past
// story keeps its navigated position.
func (c *SessionController) ShowStory() error {
	if len(c.storytellerTurns) == 0 {
		return &StateGuardError{Msg: "no story parts to display yet"}
	}
	if !c.openedByTitle {
		c.currentTurnIndex = len(c.storytellerTurns) - 1
	}
	c.view = ViewStoryDisplay
	return nil
}

// ShowChatInput transitions story-display -> chat-input, re-deriving the
// prompt from the turn currently being viewed.
func (c *SessionController) ShowChatInput() {
	if t, ok := c.CurrentTurn(); ok && t.PromptForUser != "" {
		c.prompt = t.PromptForUser
	} else {
		c.prompt = ResolveChatInputPrompt(c.allTurns, false)
	}
	c.view = ViewChatInput
}

// CanSubmitNewTurn reports whether a new turn may be appended. A persisted
// story opened by explicit title lookup is read-only.
func (c *SessionController) CanSubmitNewTurn() bool {
	return c.storyID == "" || len(c.storytellerTurns) == 0 || !c.openedByTitle
}

// BeginSubmit validates userInput, checks the submission guards, marks the
// controller as having one submission in flight, and returns the payload to
// send. Session state is untouched until FinishSubmit.
func (c *SessionController) BeginSubmit(userInput string) (TurnPayload, error) {
	if c.submitting {
		return TurnPayload{}, &StateGuardError{Msg: "a turn is already being submitted"}
	}
	if strings.TrimSpace(userInput) == "" {
		return TurnPayload{}, &ValidationError{Msg: "write something to continue the story"}
	}
	if !c.CanSubmitNewTurn() {
		return TurnPayload{}, &StateGuardError{Msg: "viewing a specific past story; it can no longer be continued"}
	}
	c.submitting = true
	return c.BuildPayload(userInput), nil
}

// BuildPayload assembles the outbound submission request from current state.
func (c *SessionController) BuildPayload(userInput string) TurnPayload {
	prev := waitingForTale
	if n := len(c.allTurns); n > 0 {
		prev = c.allTurns[n-1].Text
	}
	title := strings.TrimSpace(c.storyTitle)
	if title == "" {
		title = DefaultStoryTitle
	}
	return TurnPayload{
		PreviousContent: prev,
		InputText:       strings.TrimSpace(userInput),
		ChatTurns:       c.allTurns,
		StoryTitle:      title,
		ID:              c.storyID,
	}
}

// FinishSubmit resolves the in-flight submission. On error the session is an
// atomic no-op: nothing was appended and the error is returned for display.
// On success the response replaces the turn lists, newly assigned id/title
// are adopted, navigation jumps to the latest storyteller turn, and the view
// switches to story-display.
func (c *SessionController) FinishSubmit(resp *SessionResponse, err error) error {
	c.submitting = false
	if err != nil {
		return err
	}
	if resp == nil {
		return &BackendError{Message: "the storyteller returned an empty response"}
	}
	c.allTurns = c.store.Normalize(resp.ChatTurns)
	c.storytellerTurns = FilterStoryteller(c.allTurns)
	if resp.ID != "" && c.storyID == "" {
		c.storyID = resp.ID
	}
	if resp.StoryTitle != "" && strings.TrimSpace(c.storyTitle) == "" {
		c.storyTitle = resp.StoryTitle
	}
	c.currentTurnIndex = c.lastStorytellerIndex()
	c.prompt = ResolveChatInputPrompt(c.allTurns, false)
	c.view = ViewStoryDisplay
	return nil
}

// GotoPrevTurn moves one storyteller turn back, stopping at the first.
func (c *SessionController) GotoPrevTurn() {
	if c.currentTurnIndex > 0 {
		c.currentTurnIndex--
	}
}

// GotoNextTurn moves one storyteller turn forward, stopping at the last.
func (c *SessionController) GotoNextTurn() {
	if c.currentTurnIndex < len(c.storytellerTurns)-1 {
		c.currentTurnIndex++
	}
}

// Title editing is a small independent machine: idle -> editing -> idle,
// resolved by save or cancel. The rename is local only; the backend has no
// rename endpoint.

func (c *SessionController) BeginTitleEdit() { c.editingTitle = true }

func (c *SessionController) EditingTitle() bool { return c.editingTitle }

func (c *SessionController) CancelTitleEdit() { c.editingTitle = false }

// SaveTitleEdit applies the edited title if non-blank and leaves editing
// mode either way.
func (c *SessionController) SaveTitleEdit(draft string) {
	if t := strings.TrimSpace(draft); t != "" {
		c.storyTitle = t
	}
	c.editingTitle = false
}
