package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MockBackend simulates the story-generation service for offline use and
// tests. Stories live in memory for the life of the process.
type MockBackend struct {
	mu      sync.Mutex
	stories map[string]*SessionResponse // keyed by title
	live    string                      // title of the ongoing session, if any
	Calls   int
}

func NewMockBackend() *MockBackend {
	return &MockBackend{stories: make(map[string]*SessionResponse)}
}

func (m *MockBackend) FetchSession(ctx context.Context, title string) (*SessionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if title == "" {
		title = m.live
	}
	if title == "" {
		return nil, nil
	}
	story, ok := m.stories[title]
	if !ok {
		return nil, nil
	}
	return cloneResponse(story), nil
}

func (m *MockBackend) SubmitTurn(ctx context.Context, payload TurnPayload) (*SessionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++

	title := payload.StoryTitle
	if title == "" {
		title = DefaultStoryTitle
	}
	story, ok := m.stories[title]
	if !ok {
		story = &SessionResponse{
			ID:         uuid.NewString(),
			StoryTitle: title,
		}
		m.stories[title] = story
		m.live = title
	}

	story.ChatTurns = append(story.ChatTurns,
		RawTurn{
			ID:     uuid.NewString(),
			Sender: string(SenderUser),
			Text:   payload.InputText,
		},
		RawTurn{
			ID:            uuid.NewString(),
			Sender:        string(SenderStoryteller),
			Text:          m.narrate(payload.InputText),
			PromptForUser: "What do you do next?",
		},
	)
	return cloneResponse(story), nil
}

func (m *MockBackend) ListTitles(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	titles := make([]string, 0, len(m.stories))
	for title := range m.stories {
		titles = append(titles, title)
	}
	return titles, nil
}

func (m *MockBackend) DeleteStory(ctx context.Context, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if _, ok := m.stories[title]; !ok {
		return &BackendError{Status: 404, Message: fmt.Sprintf("no story named %q", title)}
	}
	delete(m.stories, title)
	if m.live == title {
		m.live = ""
	}
	return nil
}

func (m *MockBackend) narrate(input string) string {
	input = strings.TrimSpace(input)
	switch {
	case strings.Contains(strings.ToLower(input), "dragon"):
		return "The dragon lifts its head, smoke curling from its nostrils, and regards you with ancient amusement."
	case strings.Contains(strings.ToLower(input), "door"):
		return "The door groans open onto a corridor lit by guttering torches that nobody remembers lighting."
	default:
		return fmt.Sprintf("The campfire crackles as your words - %q - take root, and the tale bends in a direction no one expected.", input)
	}
}

func cloneResponse(r *SessionResponse) *SessionResponse {
	out := &SessionResponse{
		ID:         r.ID,
		StoryTitle: r.StoryTitle,
		ChatTurns:  make([]RawTurn, len(r.ChatTurns)),
	}
	copy(out.ChatTurns, r.ChatTurns)
	return out
}
