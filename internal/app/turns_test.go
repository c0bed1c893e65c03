package app

import "testing"

func TestNormalize_EmptyAndNilInputs(t *testing.T) {
	s := NewTurnStore()
	if got := s.Normalize(nil); len(got) != 0 {
		t.Fatalf("Normalize(nil) returned %d turns, want 0", len(got))
	}
	if got := s.Normalize([]RawTurn{}); len(got) != 0 {
		t.Fatalf("Normalize([]) returned %d turns, want 0", len(got))
	}
}

func TestNormalize_FillsDefaults(t *testing.T) {
	tests := []struct {
		name       string
		in         RawTurn
		wantSender Sender
		wantText   string
	}{
		{
			name:       "totally empty record",
			in:         RawTurn{},
			wantSender: SenderSystem,
			wantText:   placeholderStoryText,
		},
		{
			name:       "user turn without text",
			in:         RawTurn{Sender: "User"},
			wantSender: SenderUser,
			wantText:   placeholderUserText,
		},
		{
			name:       "storyteller turn without text",
			in:         RawTurn{Sender: "Storyteller"},
			wantSender: SenderStoryteller,
			wantText:   placeholderStoryText,
		},
		{
			name:       "complete record passes through",
			in:         RawTurn{ID: "t1", Sender: "Storyteller", Text: "Once", ImageURL: "http://img", PromptForUser: "And then?"},
			wantSender: SenderStoryteller,
			wantText:   "Once",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := NewTurnStore().Normalize([]RawTurn{tc.in})
			if len(out) != 1 {
				t.Fatalf("Normalize returned %d turns, want 1", len(out))
			}
			got := out[0]
			if got.ID == "" {
				t.Fatalf("normalized turn has empty id")
			}
			if got.Sender != tc.wantSender {
				t.Fatalf("sender = %q, want %q", got.Sender, tc.wantSender)
			}
			if got.Text != tc.wantText {
				t.Fatalf("text = %q, want %q", got.Text, tc.wantText)
			}
			if got.ImageURL != tc.in.ImageURL {
				t.Fatalf("imageUrl = %q, want %q", got.ImageURL, tc.in.ImageURL)
			}
			if got.PromptForUser != tc.in.PromptForUser {
				t.Fatalf("promptForUser = %q, want %q", got.PromptForUser, tc.in.PromptForUser)
			}
		})
	}
}

func TestNormalize_LengthPreservedAndOrderKept(t *testing.T) {
	raw := []RawTurn{
		{Sender: "User", Text: "one"},
		{},
		{Sender: "Storyteller", Text: "three"},
		{Sender: "User"},
	}
	out := NewTurnStore().Normalize(raw)
	if len(out) != len(raw) {
		t.Fatalf("len(Normalize(raw)) = %d, want %d", len(out), len(raw))
	}
	if out[0].Text != "one" || out[2].Text != "three" {
		t.Fatalf("normalization reordered turns: %v", out)
	}
	for i, turn := range out {
		if turn.Text == "" {
			t.Fatalf("turn %d has empty text", i)
		}
		if turn.Sender == "" {
			t.Fatalf("turn %d has empty sender", i)
		}
	}
}

func TestNormalize_SynthesizedIDsAreUnique(t *testing.T) {
	s := NewTurnStore()
	seen := map[string]bool{}
	// Two rapid normalizations from the same store must never collide.
	for round := 0; round < 2; round++ {
		for _, turn := range s.Normalize(make([]RawTurn, 5)) {
			if seen[turn.ID] {
				t.Fatalf("duplicate synthesized id %q", turn.ID)
			}
			seen[turn.ID] = true
		}
	}
}

func TestFilterStoryteller_PreservesOrder(t *testing.T) {
	turns := []Turn{
		{ID: "1", Sender: SenderUser, Text: "a"},
		{ID: "2", Sender: SenderStoryteller, Text: "b"},
		{ID: "3", Sender: SenderSystem, Text: "c"},
		{ID: "4", Sender: SenderStoryteller, Text: "d"},
	}
	got := FilterStoryteller(turns)
	if len(got) != 2 {
		t.Fatalf("FilterStoryteller returned %d turns, want 2", len(got))
	}
	if got[0].ID != "2" || got[1].ID != "4" {
		t.Fatalf("FilterStoryteller order = [%s %s], want [2 4]", got[0].ID, got[1].ID)
	}
}

func TestFilterStoryteller_Empty(t *testing.T) {
	if got := FilterStoryteller(nil); len(got) != 0 {
		t.Fatalf("FilterStoryteller(nil) returned %d turns, want 0", len(got))
	}
}
