package llm

import "context"

// Provider is the core abstraction for LLM interaction.
// Generate returns the model's text verbatim; locating JSON inside it is the
// extractor's job, not the provider's.
type Provider interface {
	// Generate sends a prompt to the LLM and returns its raw text reply.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history. Feature prompts are single-turn,
	// so this normally holds one user message.
	Messages []Message

	// Model overrides the provider's configured model for this call.
	// Friendly names are resolved the same way as in configuration.
	Model string

	// JSONMode asks providers with a native JSON output switch to use it.
	// The reply is still treated as free text downstream.
	JSONMode bool

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Zero leaves the provider default.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds the LLM's output.
type Response struct {
	// Text is the generated output exactly as the model returned it.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt builds a single-turn request.
func UserPrompt(system, user string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
	}
}

// modelFor returns the per-call override when set, else the default.
func modelFor(req Request, def string, aliases map[string]string) string {
	if req.Model != "" {
		return resolveModel(req.Model, aliases)
	}
	return def
}

// resolveModel maps a friendly model name to a provider model ID.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	// If not in the map, use as-is (allows direct model IDs).
	return name
}
