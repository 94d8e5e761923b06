package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOllama answers the three endpoints the client uses and records the
// last decoded request body.
type fakeOllama struct {
	models []string
	reply  string
	stream []string
	status int
	delay  time.Duration

	mu           sync.Mutex
	lastGenerate generateRequest
	lastChat     chatRequest
}

func (f *fakeOllama) generated() generateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastGenerate
}

func (f *fakeOllama) chatted() chatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastChat
}

func (f *fakeOllama) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		var resp tagsResponse
		for _, m := range f.models {
			resp.Models = append(resp.Models, ModelInfo{Name: m})
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.lastGenerate = req
		f.mu.Unlock()
		if f.failed(w, r) {
			return
		}
		if req.Stream {
			for i, chunk := range f.stream {
				_ = json.NewEncoder(w).Encode(generateResponse{Response: chunk, Done: i == len(f.stream)-1})
			}
			return
		}
		_ = json.NewEncoder(w).Encode(generateResponse{Response: f.reply, Done: true})
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.lastChat = req
		f.mu.Unlock()
		if f.failed(w, r) {
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse{Message: Message{Role: "assistant", Content: f.reply}, Done: true})
	})
	return mux
}

func (f *fakeOllama) failed(w http.ResponseWriter, r *http.Request) bool {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-r.Context().Done():
			return true
		}
	}
	if f.status != 0 && f.status != http.StatusOK {
		http.Error(w, "model not found", f.status)
		return true
	}
	return false
}

func newTestClient(t *testing.T, f *fakeOllama, model string, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", model, opts...)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", "")
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultModel, c.Model())
	assert.Equal(t, DefaultTimeout, c.timeout)
	assert.Equal(t, SamplingOptions{NumPredict: 4000, Temperature: 0.7, TopP: 0.9, TopK: 40}, c.options)
}

func TestCheckConnection(t *testing.T) {
	c := newTestClient(t, &fakeOllama{}, "llama3")
	assert.True(t, c.CheckConnection(context.Background()))

	unreachable := NewClient("http://127.0.0.1:1", "llama3")
	assert.False(t, unreachable.CheckConnection(context.Background()))
}

func TestModelAvailable(t *testing.T) {
	tests := []struct {
		name   string
		model  string
		pulled []string
		want   bool
	}{
		{"tag ignored", "llama3", []string{"mistral:7b", "llama3:latest"}, true},
		{"exact tag", "llama3:8b", []string{"llama3:8b"}, true},
		{"different tag", "llama3:70b", []string{"llama3:8b"}, false},
		{"missing", "codellama", []string{"llama3:latest"}, false},
		{"no models", "llama3", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, &fakeOllama{models: tt.pulled}, tt.model)
			assert.Equal(t, tt.want, c.ModelAvailable(context.Background()))
		})
	}
}

func TestGenerate(t *testing.T) {
	f := &fakeOllama{reply: "import pytest\n"}
	c := newTestClient(t, f, "llama3")

	got := c.Generate(context.Background(), "write tests")
	assert.Equal(t, "import pytest\n", got)
	req := f.generated()
	assert.Equal(t, "llama3", req.Model)
	assert.Equal(t, "write tests", req.Prompt)
	assert.False(t, req.Stream)
	assert.Equal(t, 4000, req.Options.NumPredict)
	assert.Equal(t, 40, req.Options.TopK)
}

func TestGenerateFailuresYieldEmptyString(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, &fakeOllama{reply: "unused", status: http.StatusNotFound}, "llama3")
		assert.Equal(t, "", c.Generate(context.Background(), "p"))
		assert.Equal(t, "", c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}))
	})
	t.Run("timeout", func(t *testing.T) {
		c := newTestClient(t, &fakeOllama{reply: "late", delay: time.Second}, "llama3", WithTimeout(50*time.Millisecond))
		assert.Equal(t, "", c.Generate(context.Background(), "p"))
	})
	t.Run("unreachable", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", "llama3")
		assert.Equal(t, "", c.Generate(context.Background(), "p"))
	})
}

func TestGenerateStream(t *testing.T) {
	f := &fakeOllama{stream: []string{"import ", "pytest", "\n"}}
	c := newTestClient(t, f, "llama3")

	var chunks []string
	got := c.GenerateStream(context.Background(), "p", func(s string) { chunks = append(chunks, s) })
	assert.Equal(t, "import pytest\n", got)
	assert.Equal(t, []string{"import ", "pytest", "\n"}, chunks)
	assert.True(t, f.generated().Stream)
}

func TestChat(t *testing.T) {
	f := &fakeOllama{reply: "def test_ok():\n    pass"}
	c := newTestClient(t, f, "llama3", WithSamplingOptions(SamplingOptions{NumPredict: 10}))

	got := c.Chat(context.Background(), []Message{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "hi"},
	})
	assert.Equal(t, "def test_ok():\n    pass", got)
	req := f.chatted()
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, 10, req.Options.NumPredict)
}

func TestListModels(t *testing.T) {
	c := newTestClient(t, &fakeOllama{models: []string{"a:1", "b:2"}}, "a")
	models, err := c.ListModels(context.Background())
	require.NoError(t, err)

	var names []string
	for _, m := range models {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"a:1", "b:2"}, names)
	assert.Equal(t, "a", baseName("a:1"))
}
