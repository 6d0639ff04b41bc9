package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"loan-advisor/domain"
	"loan-advisor/logger"
	"loan-advisor/metrics"
)

// Narrator is the part of NarrativeService a conversation needs.
type Narrator interface {
	ProduceText(ctx context.Context, prompt, dataContext string) string
}

// DataContextProvider supplies the grounding text for each reply.
type DataContextProvider interface {
	DataContext(ctx context.Context) string
}

// Conversation is one chat session: an ordered, bounded history of
// alternating user and assistant messages. Posts are serialised.
type Conversation struct {
	narrator    Narrator
	dataContext DataContextProvider
	logger      logger.Logger

	mu      sync.Mutex
	history []domain.ChatMessage

	lastActive atomic.Int64
}

func NewConversation(narrator Narrator, dataContext DataContextProvider, log logger.Logger) *Conversation {
	c := &Conversation{
		narrator:    narrator,
		dataContext: dataContext,
		logger:      log,
	}
	c.touch()
	return c
}

// Post answers a user message. Only a successful exchange is recorded; on
// failure the history is left untouched and the apology text is returned.
func (c *Conversation) Post(ctx context.Context, message string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	reply, err := c.respond(ctx, message)
	if err != nil {
		c.logger.Error("Chat message failed", map[string]interface{}{"error": err})
		return ApologyMessage
	}

	metrics.ChatMessages.Inc()
	c.history = append(c.history,
		domain.ChatMessage{Role: domain.RoleUser, Content: message},
		domain.ChatMessage{Role: domain.RoleAssistant, Content: reply},
	)
	if n := len(c.history); n > MaxHistoryEntries {
		c.history = append([]domain.ChatMessage(nil), c.history[n-MaxHistoryEntries:]...)
	}

	return reply
}

func (c *Conversation) respond(ctx context.Context, message string) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic producing reply: %v", r)
		}
	}()

	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: empty message", domain.ErrInvalidArgument)
	}

	dataContext := DataContextUnavailable
	if c.dataContext != nil {
		dataContext = c.dataContext.DataContext(ctx)
	}

	reply = c.narrator.ProduceText(ctx, message, dataContext)
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("empty reply")
	}
	return reply, nil
}

// History returns a copy of the retained messages, oldest first.
func (c *Conversation) History() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.ChatMessage, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
	c.touch()
}

// LastActive does not take the conversation lock, so it is safe to call
// while a Post is in flight.
func (c *Conversation) LastActive() time.Time {
	return time.Unix(0, c.lastActive.Load())
}

func (c *Conversation) touch() {
	c.lastActive.Store(time.Now().UnixNano())
}
