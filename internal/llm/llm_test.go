package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	genai "google.golang.org/genai"

	"github.com/shaun/pagesmith/internal/config"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<html></html>", "<html></html>"},
		{"```html\n<html></html>\n```", "<html></html>"},
		{"```\n<p>x</p>\n```", "<p>x</p>"},
		{"  ```HTML\r\n<p>x</p>\r\n```  ", "<p>x</p>"},
		{"```markdown\n# T\n\ntext\n```", "# T\n\ntext"},
		{"before ```html\n<p/>\n```", "before ```html\n<p/>\n```"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripFences(tt.in), "input %q", tt.in)
	}
}

func TestSplitPair(t *testing.T) {
	html, readme, err := SplitPair("```html\n<html/>\n```\n---README---\n# App\n")
	require.NoError(t, err)
	assert.Equal(t, "<html/>", html)
	assert.Equal(t, "# App", readme)
}

func TestSplitPair_errors(t *testing.T) {
	for _, in := range []string{
		"<html/> no separator",
		"a---README---b---README---c",
		"---README---# only readme",
		"<html/>---README---   ",
	} {
		_, _, err := SplitPair(in)
		assert.ErrorIs(t, err, ErrMissingParts, "input %q", in)
	}
}

func TestNew_unknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.Config{LLMProvider: "nope"})
	assert.Error(t, err)
}

func TestNew_anthropic(t *testing.T) {
	g, err := New(context.Background(), config.Config{LLMProvider: config.ProviderAnthropic, LLMAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, g)
}

func TestAnthropicClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"m",` +
			`"content":[{"type":"text","text":"<html>ok</html>"}],` +
			`"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":4}}`))
	}))
	defer server.Close()

	c := NewAnthropicClient("k", "m", option.WithBaseURL(server.URL), option.WithMaxRetries(0))
	out, err := c.Generate(context.Background(), "make a page")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", out)
}

func TestAnthropicClient_Generate_apiError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	}))
	defer server.Close()

	c := NewAnthropicClient("k", "m", option.WithBaseURL(server.URL), option.WithMaxRetries(0))
	_, err := c.Generate(context.Background(), "x")
	assert.Error(t, err)
}

func TestAnthropicClient_Generate_empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"m",` +
			`"content":[],"stop_reason":"max_tokens","usage":{"input_tokens":3,"output_tokens":0}}`))
	}))
	defer server.Close()

	c := NewAnthropicClient("k", "m", option.WithBaseURL(server.URL), option.WithMaxRetries(0))
	_, err := c.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGeminiClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, DefaultGeminiModel)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"<html>"},{"text":"</html>"}]}}]}`))
	}))
	defer server.Close()

	g, err := newGeminiClient(context.Background(), &genai.ClientConfig{
		APIKey:      "k",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: server.URL + "/"},
	}, "")
	require.NoError(t, err)
	out, err := g.Generate(context.Background(), "make a page")
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", out)
}

func TestGeminiClient_Generate_noCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	g, err := newGeminiClient(context.Background(), &genai.ClientConfig{
		APIKey:      "k",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: server.URL + "/"},
	}, "")
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
