package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Sender delivers one user message to the conversational flow and returns
// its reply. The wire format is the implementation's concern.
type Sender interface {
	Send(ctx context.Context, text string) (string, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, text string) (string, error)

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, text string) (string, error) { return f(ctx, text) }

// Payload selects the request body shape sent to the flow endpoint.
type Payload string

const (
	// PayloadSimple sends only {"input_value": text}.
	PayloadSimple Payload = "simple"
	// PayloadFlow adds input/output types, a session ID and tweaks.
	PayloadFlow Payload = "flow"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one entry of a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"type"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	// ErrNoReply means the flow answered 200 but carried no message text.
	ErrNoReply = errors.New("chat: response contained no message")
	// ErrEmptyMessage is returned for blank user input.
	ErrEmptyMessage = errors.New("chat: message is empty")
	// ErrBusy is returned while a previous message is still in flight.
	ErrBusy = errors.New("chat: a message is already being sent")
)

// StatusError reports a non-200 answer from the flow endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat: flow API returned status %d", e.StatusCode)
}

type simpleRequest struct {
	InputValue string `json:"input_value"`
}

type flowRequest struct {
	InputValue string                    `json:"input_value"`
	InputType  string                    `json:"input_type"`
	OutputType string                    `json:"output_type"`
	SessionID  string                    `json:"session_id,omitempty"`
	Tweaks     map[string]map[string]any `json:"tweaks,omitempty"`
}

// API response types (private - implementation detail)

type flowResponse struct {
	Message string `json:"message"`
	Outputs []struct {
		Outputs []struct {
			Results struct {
				Message struct {
					Text string `json:"text"`
				} `json:"message"`
			} `json:"results"`
			Artifacts struct {
				Message json.RawMessage `json:"message"`
			} `json:"artifacts"`
		} `json:"outputs"`
	} `json:"outputs"`
}

func (r flowResponse) text() string {
	for _, outer := range r.Outputs {
		for _, inner := range outer.Outputs {
			if inner.Results.Message.Text != "" {
				return inner.Results.Message.Text
			}
		}
	}
	for _, outer := range r.Outputs {
		for _, inner := range outer.Outputs {
			var s string
			if json.Unmarshal(inner.Artifacts.Message, &s) == nil && s != "" {
				return s
			}
		}
	}
	return r.Message
}
