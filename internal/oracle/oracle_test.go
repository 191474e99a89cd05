package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeServer(t *testing.T, content string, status int) (*httptest.Server, *atomic.Int32, *openai.ChatCompletionRequest) {
	t.Helper()
	calls := &atomic.Int32{}
	var seen openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&seen)

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "cmpl-1",
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, calls, &seen
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = url + "/v1"
	cfg.RequestsPerMinute = 0
	c, err := New(cfg, nil)
	require.NoError(t, err)
	return c
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestComplete_Success(t *testing.T) {
	srv, calls, seen := fakeServer(t, `{"text": "Steam", "emoji": "💨"}`, http.StatusOK)
	c := newTestClient(t, srv.URL)

	got, err := c.Complete(context.Background(), "Fire", "Water")
	require.NoError(t, err)
	assert.Equal(t, Completion{Name: "Steam", Glyph: "💨"}, got)
	assert.Equal(t, int32(1), calls.Load())

	require.Len(t, seen.Messages, 1)
	assert.Contains(t, seen.Messages[0].Content, `"Fire"`)
	assert.Contains(t, seen.Messages[0].Content, `"Water"`)
	require.NotNil(t, seen.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, seen.ResponseFormat.Type)
}

func TestComplete_MalformedPayload(t *testing.T) {
	srv, _, _ := fakeServer(t, `{"text": "Steam"}`, http.StatusOK)
	c := newTestClient(t, srv.URL)

	_, err := c.Complete(context.Background(), "Fire", "Water")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestComplete_ServerError(t *testing.T) {
	srv, _, _ := fakeServer(t, "", http.StatusInternalServerError)
	c := newTestClient(t, srv.URL)

	_, err := c.Complete(context.Background(), "Fire", "Water")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestComplete_CancelledContext(t *testing.T) {
	srv, calls, _ := fakeServer(t, `{"text": "Steam", "emoji": "💨"}`, http.StatusOK)
	c := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Complete(ctx, "Fire", "Water")
	assert.Error(t, err)
	assert.Equal(t, int32(0), calls.Load())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Completion
		wantErr bool
	}{
		{name: "plain", content: `{"text":"Nebula","emoji":"🌌"}`, want: Completion{Name: "Nebula", Glyph: "🌌"}},
		{name: "fenced", content: "```json\n{\"text\":\"Nebula\",\"emoji\":\"🌌\"}\n```", want: Completion{Name: "Nebula", Glyph: "🌌"}},
		{name: "trimmed", content: `{"text":"  Nebula ","emoji":" 🌌"}`, want: Completion{Name: "Nebula", Glyph: "🌌"}},
		{name: "missing glyph", content: `{"text":"Nebula"}`, wantErr: true},
		{name: "blank name", content: `{"text":"   ","emoji":"🌌"}`, wantErr: true},
		{name: "not json", content: `Nebula 🌌`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompt_MentionsBothNames(t *testing.T) {
	p := Prompt("Gravity", "Hydrogen")
	assert.Contains(t, p, `"Gravity"`)
	assert.Contains(t, p, `"Hydrogen"`)
	assert.Contains(t, p, `"emoji"`)
}
