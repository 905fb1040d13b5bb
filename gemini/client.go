package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Client streams model output from the Gemini API.
type Client struct {
	client *genai.Client
	model  string
	system string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-3.1-pro-preview.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithSystemInstruction sets the system instruction sent with every request.
func WithSystemInstruction(text string) Option {
	return func(c *Client) { c.system = text }
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
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Model returns the configured model ID.
func (c *Client) Model() string { return c.model }

// Stream sends prompt as a single user turn and returns a Source over the
// streamed response. The request is issued on the first call to Next.
func (c *Client) Stream(ctx context.Context, prompt string) *Source {
	seq := c.client.Models.GenerateContentStream(ctx, c.model, genai.Text(prompt), c.config())
	return NewSource(seq)
}

func (c *Client) config() *genai.GenerateContentConfig {
	if c.system == "" {
		return nil
	}
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(c.system, genai.RoleUser),
	}
}
