package chat

import (
	"context"
	"errors"
	"testing"
)

func TestConversation_SuccessfulSendAddsUserThenBotMessage(t *testing.T) {
	conv := NewConversation(SenderFunc(func(ctx context.Context, text string) (string, error) {
		return "hi there", nil
	}))

	reply, err := conv.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Role != RoleBot || reply.Text != "hi there" {
		t.Errorf("unexpected reply %+v", reply)
	}

	state := conv.State()
	if len(state.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(state.Messages))
	}
	if state.Messages[0].Role != RoleUser || state.Messages[0].Text != "hello" {
		t.Errorf("first message should be the user's, got %+v", state.Messages[0])
	}
	if state.Loading || state.Error != "" {
		t.Errorf("state should be idle without error, got %+v", state)
	}
}

func TestConversation_FailedSendAddsNoBotMessage(t *testing.T) {
	conv := NewConversation(SenderFunc(func(ctx context.Context, text string) (string, error) {
		return "", &StatusError{StatusCode: 500}
	}))

	if _, err := conv.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected an error")
	}

	state := conv.State()
	if len(state.Messages) != 1 || state.Messages[0].Role != RoleUser {
		t.Errorf("only the user message should remain, got %+v", state.Messages)
	}
	if state.Error == "" {
		t.Error("failed send should set a user-visible error")
	}
}

func TestConversation_ErrorClearsOnNextSend(t *testing.T) {
	fail := true
	conv := NewConversation(SenderFunc(func(ctx context.Context, text string) (string, error) {
		if fail {
			return "", ErrNoReply
		}
		return "ok", nil
	}))

	conv.Send(context.Background(), "first")
	fail = false
	if _, err := conv.Send(context.Background(), "second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state := conv.State(); state.Error != "" || len(state.Messages) != 3 {
		t.Errorf("expected cleared error and 3 messages, got %+v", state)
	}
}

func TestConversation_RejectsSendWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	conv := NewConversation(SenderFunc(func(ctx context.Context, text string) (string, error) {
		close(started)
		<-release
		return "done", nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := conv.Send(context.Background(), "slow")
		done <- err
	}()
	<-started

	if !conv.State().Loading {
		t.Error("state should report loading while a send is in flight")
	}
	if _, err := conv.Send(context.Background(), "again"); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	if got := len(conv.State().Messages); got != 2 {
		t.Errorf("rejected send should not add messages, got %d", got)
	}
}

func TestConversation_BlankInputIsIgnored(t *testing.T) {
	called := false
	conv := NewConversation(SenderFunc(func(ctx context.Context, text string) (string, error) {
		called = true
		return "", nil
	}))

	if _, err := conv.Send(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
	if called || len(conv.State().Messages) != 0 {
		t.Error("blank input should not reach the sender or the history")
	}
}

func TestConversation_WelcomeShownOnce(t *testing.T) {
	conv := NewConversation(SenderFunc(func(ctx context.Context, text string) (string, error) {
		return "", nil
	}))

	conv.Open()
	state := conv.Open()
	if len(state.Messages) != 1 {
		t.Fatalf("welcome should be added once, got %d messages", len(state.Messages))
	}
	if state.Messages[0].Text != WelcomeText || state.Messages[0].Role != RoleBot {
		t.Errorf("unexpected welcome message %+v", state.Messages[0])
	}
}
