package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/rahul4469/propmate/internal/middleware"
	"github.com/rahul4469/propmate/internal/views"
	"go.uber.org/zap"
)

const maxQueryLength = 2000

// ChatController handles the assistant conversation.
type ChatController struct {
	logger *zap.Logger
}

func NewChatController(logger *zap.Logger) *ChatController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatController{logger: logger}
}

// chatRequest carries either free text or the index of a quick question.
type chatRequest struct {
	Query         string `json:"query"`
	QuickQuestion *int   `json:"quick_question"`
}

// GetChat returns the conversation and the quick questions.
func (c *ChatController) GetChat(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustCurrentSession(r)
	views.JSON(w, http.StatusOK, views.NewChatView(sess.Chat.Messages(), sess.Chat.IsProcessing()))
}

// PostChat runs one chat turn. Provider failures come back as an assistant
// message, never as an HTTP error.
func (c *ChatController) PostChat(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustCurrentSession(r)

	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		views.Error(w, http.StatusBadRequest, views.CodeBadRequest, err.Error())
		return
	}

	// The turn is recorded even if the caller goes away mid-request.
	ctx := context.WithoutCancel(r.Context())

	if req.QuickQuestion != nil {
		questions := sess.Chat.QuickQuestions()
		idx := *req.QuickQuestion
		if idx < 0 || idx >= len(questions) {
			views.Error(w, http.StatusBadRequest, views.CodeBadRequest,
				fmt.Sprintf("quick_question must be between 0 and %d", len(questions)-1))
			return
		}
		sess.Chat.SendQuickQuestion(ctx, questions[idx])
	} else {
		query := strings.TrimSpace(req.Query)
		if utf8.RuneCountInString(query) > maxQueryLength {
			views.Error(w, http.StatusBadRequest, views.CodeBadRequest, "Query is too long")
			return
		}
		sess.Chat.Send(ctx, query)
	}

	c.logger.Debug("chat turn served",
		zap.String("session_id", sess.ID),
		zap.Duration("duration", sess.Chat.LastDuration()),
	)
	views.JSON(w, http.StatusOK, views.NewChatView(sess.Chat.Messages(), sess.Chat.IsProcessing()))
}
