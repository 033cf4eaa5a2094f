package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/trickle"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Interface compliance checks.
var (
	_ trickle.Provider  = (*Client)(nil)
	_ trickle.Completer = (*Client)(nil)
)

// Client implements [trickle.Provider] for the Google Gemini API.
type Client struct {
	client    *genai.Client
	model     string
	maxTokens int
	logger    zerolog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model used when a request leaves Model empty.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithMaxTokens sets the output token limit used when a request leaves it zero.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client:    gc,
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
		logger:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream sends a streaming request to the Gemini API and returns a
// [trickle.Stream] that emits semantic events.
func (c *Client) Stream(ctx context.Context, req trickle.Request) (trickle.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	model := c.modelFor(req)
	c.logger.Debug().Str("model", model).Int("messages", len(req.Messages)).Msg("stream opened")
	iter := c.client.Models.GenerateContentStream(ctx, model, ConvertMessages(req.Messages), c.buildConfig(req))
	return newStream(ctx, iter), nil
}

// Complete sends a non-streaming request and returns the first text part of
// the first candidate. Thought parts are skipped.
func (c *Client) Complete(ctx context.Context, req trickle.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.modelFor(req), ConvertMessages(req.Messages), c.buildConfig(req))
	if err != nil {
		if ctx.Err() != nil {
			return "", trickle.Canceled(ctx.Err())
		}
		return "", &trickle.TransportError{Err: fmt.Errorf("gemini: %w", err)}
	}
	return FirstText(resp)
}

func (c *Client) modelFor(req trickle.Request) string {
	if req.Model == "" {
		return c.model
	}
	return req.Model
}

func (c *Client) buildConfig(req trickle.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
		},
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	return config
}

// FirstText returns the first non-thought text part of the first candidate.
func FirstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", &trickle.ProtocolError{Message: fmt.Sprintf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason)}
		}
		return "", &trickle.ProtocolError{Message: "gemini: response has no candidates"}
	}
	cand := resp.Candidates[0]
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if p != nil && !p.Thought && p.Text != "" {
				return p.Text, nil
			}
		}
	}
	return "", &trickle.ProtocolError{Message: "gemini: response has no content"}
}

// ConvertMessages converts trickle Messages to genai Contents. Error-flagged
// assistant turns are dropped.
func ConvertMessages(msgs []trickle.Message) []*genai.Content {
	var result []*genai.Content
	for _, msg := range msgs {
		switch m := msg.(type) {
		case trickle.UserMessage:
			result = append(result, &genai.Content{
				Role:  genai.RoleUser,
				Parts: convertParts(m.Content),
			})
		case trickle.AssistantMessage:
			if m.IsError {
				continue
			}
			result = append(result, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: m.Text}},
			})
		}
	}
	return result
}

func convertParts(blocks []trickle.ContentBlock) []*genai.Part {
	var parts []*genai.Part
	for _, b := range blocks {
		switch bl := b.(type) {
		case trickle.TextBlock:
			if bl.Text == "" {
				continue
			}
			parts = append(parts, &genai.Part{Text: bl.Text})
		case trickle.ImageBlock:
			parts = append(parts, &genai.Part{
				InlineData: &genai.Blob{
					MIMEType: bl.MimeType,
					Data:     bl.Data,
				},
			})
		}
	}
	return parts
}
