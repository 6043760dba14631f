package classifier

import "fmt"

const (
	// replyTokens caps the reply length; the answer is a single word.
	replyTokens = 10
	// replyTemperature keeps the answer close to deterministic.
	replyTemperature = 0.3
)

const promptTemplate = `You are a terminal activity monitor. Analyze the following terminal output and determine if the user needs to be notified.

Terminal Name: %s

Terminal Content (last output):
%s

Determine if any of these conditions are met:
1. A long-running task has completed (e.g., build finished, tests completed, deployment done)
2. An error occurred that requires user attention
3. The terminal is waiting for user input
4. A significant process has ended or requires action

Respond with ONLY "YES" if notification is needed, or "NO" if not needed.
Do not provide any additional explanation.`

// BuildPrompt embeds the session label and excerpt in the fixed
// classification prompt.
func BuildPrompt(content, label string) string {
	return fmt.Sprintf(promptTemplate, label, content)
}
