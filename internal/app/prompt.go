package app

// Prompts shown above the chat input when the backend does not supply one.
const (
	PromptStartStory = "Let's start a new story! What's the opening line?"
	PromptDefault    = "What happens next?"
)

// ResolveChatInputPrompt picks the prompt to display above the chat input.
//
// Preference order: the last turn's prompt if the last turn is a storyteller
// turn carrying one, the start-of-story prompt for a brand-new empty session,
// the most recent storyteller prompt anywhere in the history, and finally the
// generic default.
func ResolveChatInputPrompt(allTurns []Turn, isNewSession bool) string {
	if n := len(allTurns); n > 0 {
		last := allTurns[n-1]
		if last.Sender == SenderStoryteller && last.PromptForUser != "" {
			return last.PromptForUser
		}
	}
	if isNewSession && len(allTurns) == 0 {
		return PromptStartStory
	}
	for i := len(allTurns) - 1; i >= 0; i-- {
		if allTurns[i].Sender == SenderStoryteller && allTurns[i].PromptForUser != "" {
			return allTurns[i].PromptForUser
		}
	}
	return PromptDefault
}
