package completion

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"

	"cloudlead/internal/config"
)

// Client produces short company analyses through a chat-completion API.
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
}

// New builds a client from config. Callers should check cfg.AIEnabled first.
func New(cfg config.Config) *Client {
	oc := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIAPIURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.OpenAIAPIURL, "/")
	}
	timeout := cfg.HTTPClientTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}

	model := cfg.OpenAIModel
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	maxTokens := cfg.OpenAIMaxTokens
	if maxTokens <= 0 {
		maxTokens = 150
	}
	return &Client{
		api:       openai.NewClientWithConfig(oc),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Prompt renders the analysis prompt for a company.
func Prompt(company, website string) string {
	var b strings.Builder
	b.WriteString("Provide business intelligence analysis for ")
	b.WriteString(company)
	if website != "" {
		b.WriteString(" (")
		b.WriteString(website)
		b.WriteString(")")
	}
	b.WriteString(". Focus on their market position, technology stack, and potential pain points. Keep it under 100 words.")
	return b.String()
}

// Analyze sends a single user message and returns the first choice's text.
func (c *Client) Analyze(ctx context.Context, company, website string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: Prompt(company, website)},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
