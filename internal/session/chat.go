package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rahul4469/propmate/internal/logging"
	"github.com/rahul4469/propmate/internal/models"
	"go.uber.org/zap"
)

// Assistant replies used when the chat provider fails.
const (
	ReplyConfigError    = "API key not configured. Set OPENAI_API_KEY in the server environment."
	ReplyAuthError      = "Authentication failed. Please verify your API key is valid."
	ReplyRateLimitError = "Rate limit exceeded. Please wait a moment before trying again."
	ReplyUnexpected     = "Unexpected error while processing your request."
)

// ReplyGenerator produces the assistant's next message.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, query string, history []models.ChatMessage) (string, error)
}

// ChatController holds one append-only conversation. Turns are serialized so
// every reply sees a consistent history.
type ChatController struct {
	replier ReplyGenerator
	logger  *zap.Logger

	turn sync.Mutex

	mu         sync.Mutex
	messages   []models.ChatMessage
	processing bool
	lastChat   time.Duration
}

func NewChatController(replier ReplyGenerator, logger *zap.Logger) *ChatController {
	return &ChatController{
		replier: replier,
		logger:  logging.OrNop(logger),
	}
}

// Start inserts the greeting when the conversation is empty.
func (c *ChatController) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		c.messages = append(c.messages, models.ChatMessage{Role: models.RoleAssistant, Content: models.Greeting})
	}
}

// Send appends query (when non-empty) and then the assistant's reply, which is
// a fixed fallback text when the provider fails. It returns the reply.
func (c *ChatController) Send(ctx context.Context, query string) models.ChatMessage {
	c.turn.Lock()
	defer c.turn.Unlock()

	c.mu.Lock()
	history := make([]models.ChatMessage, len(c.messages))
	copy(history, c.messages)
	if query != "" {
		c.messages = append(c.messages, models.ChatMessage{Role: models.RoleUser, Content: query})
	}
	c.processing = true
	c.mu.Unlock()

	start := time.Now()
	content, err := c.replier.GenerateReply(ctx, query, history)
	if err != nil {
		c.logger.Warn("chat reply failed",
			zap.String("kind", models.KindOf(err).String()),
			zap.Error(err),
		)
		content = FallbackReply(err)
	}
	reply := models.ChatMessage{Role: models.RoleAssistant, Content: content}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, reply)
	c.lastChat = time.Since(start)
	c.processing = false

	c.logger.Debug("chat turn completed",
		zap.Int("history", len(history)),
		zap.Duration("duration", c.lastChat),
	)
	return reply
}

// SendQuickQuestion sends one of the canned prompts.
func (c *ChatController) SendQuickQuestion(ctx context.Context, question string) models.ChatMessage {
	return c.Send(ctx, question)
}

// QuickQuestions returns the canned prompts.
func (c *ChatController) QuickQuestions() []string {
	out := make([]string, len(models.QuickQuestions))
	copy(out, models.QuickQuestions)
	return out
}

// Messages returns a copy of the conversation, oldest first.
func (c *ChatController) Messages() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *ChatController) IsProcessing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

func (c *ChatController) LastDuration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastChat
}

// FallbackReply maps a provider failure to the text shown in the conversation.
func FallbackReply(err error) string {
	switch models.KindOf(err) {
	case models.KindConfig:
		return ReplyConfigError
	case models.KindAuthentication:
		return ReplyAuthError
	case models.KindRateLimit:
		return ReplyRateLimitError
	case models.KindAPI:
		msg := err.Error()
		var pe *models.ProviderError
		if errors.As(err, &pe) {
			msg = pe.Message
		}
		return "Service error: " + msg + ". Please try again in a moment."
	default:
		return ReplyUnexpected
	}
}
