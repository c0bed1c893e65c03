package app

import "fmt"

// Sender identifies who produced a turn. The wire format allows arbitrary
// strings, so Sender is a string type rather than an int enum; anything the
// backend sends is preserved as-is.
type Sender string

const (
	SenderUser        Sender = "User"
	SenderStoryteller Sender = "Storyteller"
	SenderSystem      Sender = "System"
)

// Turn is one utterance in a story session. Ordering is conversation
// chronology and is never reordered.
type Turn struct {
	ID            string `json:"id"`
	Sender        Sender `json:"sender"`
	Text          string `json:"text"`
	ImageURL      string `json:"imageUrl,omitempty"`
	PromptForUser string `json:"promptForUser,omitempty"`
}

// RawTurn is the wire shape received from the backend. Every field is
// optional; Normalize must tolerate total absence of all of them.
type RawTurn struct {
	ID            string `json:"id,omitempty"`
	Sender        string `json:"sender,omitempty"`
	Text          string `json:"text,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty"`
	PromptForUser string `json:"promptForUser,omitempty"`
}

// Placeholder text substituted when the backend omits a turn's content.
const (
	placeholderUserText  = "User input"
	placeholderStoryText = "The story continues..."
)

// TurnStore converts raw backend turn records into canonical Turns. Ids
// missing from the wire are synthesized from the element's position plus a
// store-scoped monotonic counter, so two turns normalized by the same store
// never collide and never depend on wall-clock time.
type TurnStore struct {
	seq uint64
}

func NewTurnStore() *TurnStore {
	return &TurnStore{}
}

// Normalize converts a raw turn list into canonical Turns, preserving order.
// A nil input yields an empty slice; otherwise output length always equals
// input length. It never fails.
func (s *TurnStore) Normalize(raw []RawTurn) []Turn {
	turns := make([]Turn, 0, len(raw))
	for i, rt := range raw {
		turns = append(turns, s.normalizeOne(i, rt))
	}
	return turns
}

func (s *TurnStore) normalizeOne(pos int, rt RawTurn) Turn {
	t := Turn{
		ID:            rt.ID,
		Sender:        Sender(rt.Sender),
		Text:          rt.Text,
		ImageURL:      rt.ImageURL,
		PromptForUser: rt.PromptForUser,
	}
	if t.ID == "" {
		s.seq++
		t.ID = fmt.Sprintf("turn-%d-%d", pos, s.seq)
	}
	if t.Sender == "" {
		t.Sender = SenderSystem
	}
	if t.Text == "" {
		if t.Sender == SenderUser {
			t.Text = placeholderUserText
		} else {
			t.Text = placeholderStoryText
		}
	}
	return t
}

// FilterStoryteller returns the subsequence of turns authored by the
// storyteller, preserving relative order.
func FilterStoryteller(turns []Turn) []Turn {
	out := make([]Turn, 0, len(turns))
	for _, t := range turns {
		if t.Sender == SenderStoryteller {
			out = append(out, t)
		}
	}
	return out
}
