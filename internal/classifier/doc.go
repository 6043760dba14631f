// Package classifier asks an LLM whether a session's recent output needs
// the user's attention.
//
// A [Client] builds a fixed YES/NO prompt around the excerpt, sends it to
// one of a closed set of providers, and parses the reply strictly: only
// "YES" or "Y" (case-insensitive, surrounding whitespace ignored) is a
// positive verdict.
//
// # Providers
//
//   - openai: chat completions, Authorization: Bearer
//   - claude: Anthropic messages API, x-api-key + anthropic-version
//   - custom: {"prompt": ...} in, {"response"|"text": ...} out
//   - gemini: Google Gen AI SDK
//
// # Failure Handling
//
// [Client.Evaluate] returns a classified *errors.ClassifierError.
// [Client.Decide] never returns an error: failures are logged and collapse
// to false. Authentication failures and unreachable endpoints are also
// passed to the client's AlertFunc so they can be shown to the user.
package classifier
