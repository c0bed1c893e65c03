package app

import "testing"

func TestResolveChatInputPrompt(t *testing.T) {
	tests := []struct {
		name         string
		turns        []Turn
		isNewSession bool
		want         string
	}{
		{
			name:         "brand new empty session",
			turns:        nil,
			isNewSession: true,
			want:         PromptStartStory,
		},
		{
			name:  "empty but not new falls back to default",
			turns: nil,
			want:  PromptDefault,
		},
		{
			name: "last storyteller turn carries prompt",
			turns: []Turn{
				{Sender: SenderStoryteller, Text: "t1", PromptForUser: "P1"},
			},
			want: "P1",
		},
		{
			name: "backward scan past trailing user turn",
			turns: []Turn{
				{Sender: SenderStoryteller, Text: "t1", PromptForUser: "P1"},
				{Sender: SenderUser, Text: "hi"},
			},
			want: "P1",
		},
		{
			name: "most recent storyteller prompt wins",
			turns: []Turn{
				{Sender: SenderStoryteller, Text: "t1", PromptForUser: "P1"},
				{Sender: SenderUser, Text: "hi"},
				{Sender: SenderStoryteller, Text: "t2", PromptForUser: "P2"},
				{Sender: SenderUser, Text: "again"},
			},
			want: "P2",
		},
		{
			name: "storyteller turns without prompts fall back to default",
			turns: []Turn{
				{Sender: SenderStoryteller, Text: "t1"},
				{Sender: SenderUser, Text: "hi"},
			},
			want: PromptDefault,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveChatInputPrompt(tc.turns, tc.isNewSession)
			if got != tc.want {
				t.Fatalf("ResolveChatInputPrompt = %q, want %q", got, tc.want)
			}
		})
	}
}
