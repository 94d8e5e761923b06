package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"specprobe/pkg/logging"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is where a local Ollama listens.
	DefaultBaseURL = "http://localhost:11434"
	// DefaultModel is the model asked for test code.
	DefaultModel = "llama3"
	// DefaultTimeout bounds one generate or chat call.
	DefaultTimeout = 300 * time.Second
	// tagsTimeout bounds the cheap reachability probe.
	tagsTimeout = 5 * time.Second
)

// SamplingOptions are forwarded to the model on every call.
type SamplingOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	TopK        int     `json:"top_k"`
}

// DefaultSamplingOptions caps output at 4000 tokens with balanced sampling.
func DefaultSamplingOptions() SamplingOptions {
	return SamplingOptions{NumPredict: 4000, Temperature: 0.7, TopP: 0.9, TopK: 40}
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelInfo is an entry of /api/tags.
type ModelInfo struct {
	Name       string `json:"name"`
	Size       int64  `json:"size,omitempty"`
	ModifiedAt string `json:"modified_at,omitempty"`
}

type tagsResponse struct {
	Models []ModelInfo `json:"models"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options SamplingOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type chatRequest struct {
	Model    string          `json:"model"`
	Messages []Message       `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  SamplingOptions `json:"options"`
}

type chatResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// Client talks to an Ollama server. Failures are logged and turned into
// empty results; nothing is retried.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	timeout    time.Duration
	options    SamplingOptions

	// concurrent reachability and model checks share one /api/tags request
	tags singleflight.Group
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds generate and chat calls.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithSamplingOptions replaces the default sampling options.
func WithSamplingOptions(opts SamplingOptions) ClientOption {
	return func(c *Client) {
		c.options = opts
	}
}

// NewClient creates a client for baseURL and model; empty values fall back
// to the defaults.
func NewClient(baseURL, model string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		options:    DefaultSamplingOptions(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string { return c.baseURL }

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// ListModels returns the models the server has pulled.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	v, err, _ := c.tags.Do("tags", func() (interface{}, error) {
		return c.fetchTags(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]ModelInfo), nil
}

func (c *Client) fetchTags(ctx context.Context) ([]ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, tagsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tags request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to Ollama at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama tags request failed with status %d", resp.StatusCode)
	}
	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags response: %w", err)
	}
	return tags.Models, nil
}

// CheckConnection reports whether the server answers /api/tags.
func (c *Client) CheckConnection(ctx context.Context) bool {
	if _, err := c.ListModels(ctx); err != nil {
		logging.Error("OllamaClient", err, "Cannot connect to Ollama")
		return false
	}
	return true
}

// ModelAvailable reports whether the configured model has been pulled. The
// ":tag" suffix is ignored unless the configured name carries one.
func (c *Client) ModelAvailable(ctx context.Context) bool {
	models, err := c.ListModels(ctx)
	if err != nil {
		logging.Error("OllamaClient", err, "Error checking models")
		return false
	}
	for _, m := range models {
		if m.Name == c.model || baseName(m.Name) == c.model {
			return true
		}
	}
	return false
}

func baseName(model string) string {
	if i := strings.IndexByte(model, ':'); i >= 0 {
		return model[:i]
	}
	return model
}

// Generate sends a single prompt and returns the completion, or "" when the
// call fails.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	body := generateRequest{Model: c.model, Prompt: prompt, Options: c.options}
	resp, err := c.post(ctx, "/api/generate", body)
	if err != nil {
		logging.Error("OllamaClient", err, "Generate request failed")
		return ""
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		logging.Error("OllamaClient", err, "Failed to decode generate response")
		return ""
	}
	return out.Response
}

// GenerateStream asks for a streamed completion and hands every chunk to
// onChunk (which may be nil). It returns the concatenated text, or what was
// received before a failure.
func (c *Client) GenerateStream(ctx context.Context, prompt string, onChunk func(string)) string {
	body := generateRequest{Model: c.model, Prompt: prompt, Stream: true, Options: c.options}
	resp, err := c.post(ctx, "/api/generate", body)
	if err != nil {
		logging.Error("OllamaClient", err, "Streaming generate request failed")
		return ""
	}
	defer resp.Body.Close()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk generateResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			logging.Error("OllamaClient", err, "Failed to decode stream chunk")
			return full.String()
		}
		full.WriteString(chunk.Response)
		if onChunk != nil && chunk.Response != "" {
			onChunk(chunk.Response)
		}
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		logging.Error("OllamaClient", err, "Stream interrupted")
	}
	return full.String()
}

// Chat sends a conversation and returns the assistant's reply, or "" when
// the call fails.
func (c *Client) Chat(ctx context.Context, messages []Message) string {
	body := chatRequest{Model: c.model, Messages: messages, Options: c.options}
	resp, err := c.post(ctx, "/api/chat", body)
	if err != nil {
		logging.Error("OllamaClient", err, "Chat request failed")
		return ""
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		logging.Error("OllamaClient", err, "Failed to decode chat response")
		return ""
	}
	return out.Message.Content
}

// post sends body as JSON. The returned response always has status 200 and
// its body must be closed by the caller. The request is bounded by the
// client timeout, which also covers reading the body.
func (c *Client) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logging.Debug("OllamaClient", "POST %s (model %s, %d bytes)", path, c.model, len(payload))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer cancel()
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
