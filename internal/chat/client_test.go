package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const langflowResponse = `{
	"session_id": "abc",
	"outputs": [{
		"inputs": {"input_value": "hello"},
		"outputs": [{
			"results": {"message": {"text": "Reels drive the most likes."}},
			"artifacts": {"message": "Reels drive the most likes."}
		}]
	}]
}`

func TestClient_SimplePayloadPostsInputValue(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("no token configured, got Authorization %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
			return
		}
		w.Write([]byte(langflowResponse))
	}))
	defer server.Close()

	reply, err := NewClient(server.URL).Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Reels drive the most likes." {
		t.Errorf("unexpected reply %q", reply)
	}
	if len(got) != 1 || got["input_value"] != "hello" {
		t.Errorf("simple payload should only carry input_value, got %v", got)
	}
}

func TestClient_FlowPayloadCarriesRoutingAndToken(t *testing.T) {
	var got flowRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("expected bearer token, got %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
			return
		}
		w.Write([]byte(langflowResponse))
	}))
	defer server.Close()

	tweaks := map[string]map[string]any{"ChatInput-1": {"should_store_message": true}}
	client := NewClient(server.URL,
		WithToken("secret"),
		WithPayload(PayloadFlow),
		WithTweaks(tweaks),
		WithSessionID("dash-1"),
	)
	if _, err := client.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.InputValue != "hello" || got.InputType != "chat" || got.OutputType != "chat" {
		t.Errorf("unexpected routing fields %+v", got)
	}
	if got.SessionID != "dash-1" {
		t.Errorf("expected session id dash-1, got %q", got.SessionID)
	}
	if got.Tweaks["ChatInput-1"]["should_store_message"] != true {
		t.Errorf("tweaks not forwarded: %v", got.Tweaks)
	}
}

func TestClient_NonOKStatusIsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail":"flow crashed"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Send(context.Background(), "hello")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", statusErr.StatusCode)
	}
}

func TestDecodeReply_AcceptsKnownShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"flow results", langflowResponse, "Reels drive the most likes."},
		{"artifacts only", `{"outputs":[{"outputs":[{"artifacts":{"message":"from artifacts"}}]}]}`, "from artifacts"},
		{"proxy message", `{"message":"from proxy"}`, "from proxy"},
		{"bare string", `"plain reply"`, "plain reply"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeReply([]byte(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeReply_MissingTextIsErrNoReply(t *testing.T) {
	for _, body := range []string{`{}`, `{"outputs":[]}`, `""`} {
		if _, err := decodeReply([]byte(body)); !errors.Is(err, ErrNoReply) {
			t.Errorf("body %s: expected ErrNoReply, got %v", body, err)
		}
	}
	if _, err := decodeReply([]byte(`<html>`)); err == nil || errors.Is(err, ErrNoReply) {
		t.Errorf("non-JSON body should be a parse error, got %v", err)
	}
}
