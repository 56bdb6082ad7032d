package chat

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WelcomeText is shown once when the assistant is first opened.
const WelcomeText = "Hello, I am your AI assistant to help you with your social media analytics"

// FailureText is the single error string shown for any failed send.
const FailureText = "Failed to send message. Please try again."

// State is a copy of a conversation for rendering.
type State struct {
	Messages []Message `json:"messages"`
	Loading  bool      `json:"loading"`
	Error    string    `json:"error,omitempty"`
}

// Conversation is the assistant widget's history. At most one message is in
// flight at a time; a second Send while one is outstanding returns ErrBusy.
type Conversation struct {
	sender Sender
	now    func() time.Time

	mu       sync.Mutex
	messages []Message
	loading  bool
	errText  string
	welcomed bool
}

// NewConversation returns an empty conversation that sends through s.
func NewConversation(s Sender) *Conversation {
	return &Conversation{
		sender:   s,
		now:      time.Now,
		messages: make([]Message, 0),
	}
}

// Open adds the welcome message the first time it is called.
func (c *Conversation) Open() State {
	c.mu.Lock()
	if !c.welcomed {
		c.welcomed = true
		c.messages = append(c.messages, c.newMessage(RoleBot, WelcomeText))
	}
	c.mu.Unlock()
	return c.State()
}

// Send appends text as a user message, forwards it and appends the reply.
// On failure no bot message is added and the state carries FailureText.
func (c *Conversation) Send(ctx context.Context, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return Message{}, ErrBusy
	}
	c.loading = true
	c.errText = ""
	c.messages = append(c.messages, c.newMessage(RoleUser, text))
	c.mu.Unlock()

	reply, err := c.sender.Send(ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		log.Printf("chat send failed: %v", err)
		c.errText = FailureText
		return Message{}, err
	}
	msg := c.newMessage(RoleBot, reply)
	c.messages = append(c.messages, msg)
	return msg, nil
}

// State returns a snapshot of the conversation.
func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	messages := make([]Message, len(c.messages))
	copy(messages, c.messages)
	return State{Messages: messages, Loading: c.loading, Error: c.errText}
}

func (c *Conversation) newMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: c.now(),
	}
}
