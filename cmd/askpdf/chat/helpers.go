package chat

// suggestedQuestions returns the starter prompts shown before the first
// exchange in a fresh session.
func suggestedQuestions() []string {
	return []string{
		"What is this document about?",
		"Summarize the key points",
		"What are the main conclusions?",
		"List the important dates mentioned",
	}
}
