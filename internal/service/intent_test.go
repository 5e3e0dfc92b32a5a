package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voiceshop/internal/config"
	"voiceshop/internal/metrics"
	"voiceshop/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCompleter struct {
	content  string
	err      error
	disabled bool
	prompts  []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.content, f.err
}

func (f *fakeCompleter) IsEnabled() bool { return !f.disabled }

func TestIntentParser_WithoutAI(t *testing.T) {
	m := metrics.NewNop()
	parser := NewIntentParser(nil, time.Second, m, zap.NewNop())

	f := parser.Parse(context.Background(), "red dress under 40")

	assert.Equal(t, model.Filter{}, f)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParserResults.WithLabelValues(metrics.ParserDisabled)))
}

func TestIntentParser_DisabledCompleterIsNotCalled(t *testing.T) {
	fc := &fakeCompleter{disabled: true, content: `{"product":"dress"}`}
	parser := NewIntentParser(fc, time.Second, nil, zap.NewNop())

	assert.Equal(t, model.Filter{}, parser.Parse(context.Background(), "dress"))
	assert.Empty(t, fc.prompts)
}

func TestIntentParser_EmptyTextSkipsCall(t *testing.T) {
	fc := &fakeCompleter{content: `{"product":"dress"}`}
	m := metrics.NewNop()
	parser := NewIntentParser(fc, time.Second, m, zap.NewNop())

	assert.Equal(t, model.Filter{}, parser.Parse(context.Background(), "   "))
	assert.Empty(t, fc.prompts)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParserResults.WithLabelValues(metrics.ParserEmpty)))
}

func TestIntentParser_Parse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     error
		outcome string
		check   func(t *testing.T, f model.Filter)
	}{
		{
			name:    "clean object",
			content: `{"category":"women","price":40,"color":"Red","product":"Dress","action":"filter","transcript":"red dress under 40"}`,
			outcome: metrics.ParserOK,
			check: func(t *testing.T, f model.Filter) {
				require.NotNil(t, f.Category)
				assert.Equal(t, "women's clothing", *f.Category)
				require.NotNil(t, f.Price)
				assert.Equal(t, 40.0, *f.Price)
				require.NotNil(t, f.Color)
				assert.Equal(t, "red", *f.Color)
				require.NotNil(t, f.Product)
				assert.Equal(t, "dress", *f.Product)
				assert.Equal(t, model.ActionFilter, f.Action)
				assert.Equal(t, "red dress under 40", f.Transcript)
			},
		},
		{
			name:    "fenced with prose",
			content: "Sure! ```json\n{\"product\": \"backpack\", \"color\": null}\n``` hope that helps",
			outcome: metrics.ParserOK,
			check: func(t *testing.T, f model.Filter) {
				require.NotNil(t, f.Product)
				assert.Equal(t, "backpack", *f.Product)
				assert.Nil(t, f.Color)
			},
		},
		{
			name:    "invalid fields are dropped individually",
			content: `{"price": -5, "action": "checkout", "product": "watch", "color": 7}`,
			outcome: metrics.ParserOK,
			check: func(t *testing.T, f model.Filter) {
				assert.Nil(t, f.Price)
				assert.Nil(t, f.Color)
				assert.Equal(t, model.Action(""), f.Action)
				require.NotNil(t, f.Product)
				assert.Equal(t, "watch", *f.Product)
			},
		},
		{
			name:    "not json",
			content: "I could not understand that.",
			outcome: metrics.ParserEmpty,
			check: func(t *testing.T, f model.Filter) {
				assert.Equal(t, model.Filter{}, f)
			},
		},
		{
			name:    "upstream error",
			err:     errors.New("connection refused"),
			outcome: metrics.ParserError,
			check: func(t *testing.T, f model.Filter) {
				assert.Equal(t, model.Filter{}, f)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.NewNop()
			fc := &fakeCompleter{content: tt.content, err: tt.err}
			parser := NewIntentParser(fc, time.Second, m, zap.NewNop())

			f := parser.Parse(context.Background(), "some utterance")

			tt.check(t, f)
			require.Len(t, fc.prompts, 1)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.ParserResults.WithLabelValues(tt.outcome)))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(`red "summer" dress`)
	assert.Contains(t, p, `Input: "red \"summer\" dress"`)
	assert.Contains(t, p, "Return ONLY a JSON object.")
	assert.Contains(t, p, `"jewelery"`)
}

func newTestOpenAIServer(t *testing.T, status int, content string) (*httptest.Server, *ChatCompletionRequest) {
	var captured ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"rate limited"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "cmpl-1",
			"model": "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func testOpenAIConfig(base string) *config.OpenAIConfig {
	return &config.OpenAIConfig{
		APIKey:          "test-key",
		APIBase:         base,
		ChatModel:       "gpt-4o-mini",
		ChatTemperature: 0.1,
		ChatMaxTokens:   256,
		Timeout:         5,
		Enabled:         true,
	}
}

func TestOpenAIClient_Complete(t *testing.T) {
	srv, captured := newTestOpenAIServer(t, http.StatusOK, `{"product":"laptop"}`)
	client := NewOpenAIClient(testOpenAIConfig(srv.URL), zap.NewNop())

	out, err := client.Complete(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, `{"product":"laptop"}`, out)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	assert.Equal(t, 0.1, captured.Temperature)
	assert.Equal(t, 256, captured.MaxTokens)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "prompt text", captured.Messages[0].Content)
}

func TestOpenAIClient_Errors(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		srv, _ := newTestOpenAIServer(t, http.StatusTooManyRequests, "")
		client := NewOpenAIClient(testOpenAIConfig(srv.URL), zap.NewNop())

		_, err := client.Complete(context.Background(), "p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 429")
	})

	t.Run("empty content", func(t *testing.T) {
		srv, _ := newTestOpenAIServer(t, http.StatusOK, "")
		client := NewOpenAIClient(testOpenAIConfig(srv.URL), zap.NewNop())

		_, err := client.Complete(context.Background(), "p")
		assert.ErrorIs(t, err, ErrEmptyCompletion)
	})

	t.Run("oversized body", func(t *testing.T) {
		limit := maxCompletionBodyBytes
		maxCompletionBodyBytes = 32
		t.Cleanup(func() { maxCompletionBodyBytes = limit })

		srv, _ := newTestOpenAIServer(t, http.StatusOK, `{"product":"laptop"}`)
		client := NewOpenAIClient(testOpenAIConfig(srv.URL), zap.NewNop())

		_, err := client.Complete(context.Background(), "p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds 32 bytes")
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := testOpenAIConfig("http://127.0.0.1:1")
		cfg.Enabled = false
		client := NewOpenAIClient(cfg, zap.NewNop())

		_, err := client.Complete(context.Background(), "p")
		assert.ErrorIs(t, err, ErrParserDisabled)
		assert.False(t, client.IsEnabled())
	})
}

func TestIntentParser_WithOpenAIServer(t *testing.T) {
	srv, _ := newTestOpenAIServer(t, http.StatusOK, `{"category":"electronics","price":"under 300","product":"laptop"}`)
	client := NewOpenAIClient(testOpenAIConfig(srv.URL), zap.NewNop())
	parser := NewIntentParser(client, 5*time.Second, nil, zap.NewNop())

	f := parser.Parse(context.Background(), "a laptop under 300")

	require.NotNil(t, f.Category)
	assert.Equal(t, "electronics", *f.Category)
	require.NotNil(t, f.Price)
	assert.Equal(t, 300.0, *f.Price)
	require.NotNil(t, f.Product)
	assert.Equal(t, "laptop", *f.Product)
}
