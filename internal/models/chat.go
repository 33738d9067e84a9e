package models

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Greeting is the first assistant message of every chat session.
const Greeting = "Hi! Ask me about property pricing, listings, or loans."

// ChatMessage is one entry of an append-only conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// QuickQuestions are the canned prompts offered next to the chat input.
var QuickQuestions = []string{
	"Is this property overpriced?",
	"Show me 3BHK options in Pune under 90L",
	"What's the investment potential?",
}
