package anthropic

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fwojciec/trickle"
	"github.com/rs/zerolog"
)

// Interface compliance checks.
var (
	_ trickle.Provider  = (*Client)(nil)
	_ trickle.Completer = (*Client)(nil)
)

// Client implements [trickle.Provider] and [trickle.Completer] for the
// Messages endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the endpoint base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxTokens sets the max_tokens used when a request leaves it zero.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithLogger sets the logger. Dropped records are logged at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		maxTokens:  defaultMaxTokens,
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends a streaming request and returns a [trickle.Stream] that
// emits semantic events. A non-2xx status is returned as a
// *trickle.TransportError carrying the response body.
func (c *Client) Stream(ctx context.Context, req trickle.Request) (trickle.Stream, error) {
	resp, err := c.do(ctx, req, true)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("model", c.model(req)).Msg("stream opened")
	return newStream(ctx, resp.Body, c.logger), nil
}

// Complete sends a non-streaming request and returns the text of the first
// content block. Reasoning text is not extracted in this mode.
func (c *Client) Complete(ctx context.Context, req trickle.Request) (string, error) {
	resp, err := c.do(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if ctx.Err() != nil {
			return "", trickle.Canceled(ctx.Err())
		}
		return "", fmt.Errorf("anthropic: decode response: %w", err)
	}
	if len(out.Content) == 0 {
		return "", &trickle.ProtocolError{Message: "anthropic: response has no content"}
	}
	return out.Content[0].Text, nil
}

func (c *Client) do(ctx context.Context, req trickle.Request, stream bool) (*http.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	body, err := c.buildRequestBody(req, stream)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, trickle.Canceled(ctx.Err())
		}
		return nil, &trickle.TransportError{Err: fmt.Errorf("anthropic: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	return resp, nil
}

func (c *Client) model(req trickle.Request) string {
	if req.Model == "" {
		return defaultModel
	}
	return req.Model
}

func (c *Client) buildRequestBody(req trickle.Request, stream bool) ([]byte, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	apiReq := apiRequest{
		Model:     c.model(req),
		MaxTokens: maxTokens,
		Stream:    stream,
		System:    req.SystemPrompt,
		Messages:  convertMessages(req.Messages),
	}
	return json.Marshal(apiReq)
}

// convertMessages maps history to the wire shape. Error-flagged assistant
// turns are left out; they never came from the model.
func convertMessages(msgs []trickle.Message) []apiMessage {
	result := make([]apiMessage, 0, len(msgs))
	for _, msg := range msgs {
		switch m := msg.(type) {
		case trickle.UserMessage:
			result = append(result, apiMessage{Role: "user", Content: convertUserContent(m.Content)})
		case trickle.AssistantMessage:
			if m.IsError {
				continue
			}
			result = append(result, apiMessage{Role: "assistant", Content: m.Text})
		}
	}
	return result
}

// convertUserContent returns a plain string for text-only content and a
// block array when attachments are present.
func convertUserContent(blocks []trickle.ContentBlock) any {
	if len(blocks) == 1 {
		if tb, ok := blocks[0].(trickle.TextBlock); ok {
			return tb.Text
		}
	}
	result := make([]apiContentBlock, 0, len(blocks))
	for _, b := range blocks {
		switch bl := b.(type) {
		case trickle.TextBlock:
			if bl.Text == "" {
				continue
			}
			result = append(result, apiContentBlock{Type: "text", Text: bl.Text})
		case trickle.ImageBlock:
			result = append(result, apiContentBlock{
				Type: "image",
				Source: &apiImageSource{
					Type:      "base64",
					MediaType: bl.MimeType,
					Data:      base64.StdEncoding.EncodeToString(bl.Data),
				},
			})
		}
	}
	return result
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &trickle.TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("anthropic: read error body: %w", err),
		}
	}
	return &trickle.TransportError{StatusCode: resp.StatusCode, Body: string(body)}
}
