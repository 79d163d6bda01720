package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"prodassist/internal/logging"
)

// GeminiClient implements Client for the Google Gemini API. Every call tries
// the primary model first and falls back to the fallback model exactly once;
// the caller sees an error only when both models fail.
type GeminiClient struct {
	client        *genai.Client
	model         string
	fallbackModel string
	timeout       time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey        string
	Model         string
	FallbackModel string
	Timeout       time.Duration
}

// NewGeminiClient creates a Gemini client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	fallback := strings.TrimSpace(cfg.FallbackModel)
	if fallback == "" {
		fallback = "gemini-2.5-pro"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:        client,
		model:         model,
		fallbackModel: fallback,
		timeout:       timeout,
	}, nil
}

// Complete sends a prompt and returns the completion.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem sends a prompt with a system message.
func (c *GeminiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	// Auto-apply timeout if context has no deadline (centralized timeout handling)
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.throttle()

	start := time.Now()
	logging.LLM("Gemini request: model=%s system_len=%d user_len=%d", c.model, len(systemPrompt), len(userPrompt))

	text, err := c.generate(ctx, c.model, systemPrompt, userPrompt)
	if err == nil {
		logging.LLM("Gemini response: model=%s len=%d elapsed=%v", c.model, len(text), time.Since(start))
		return text, nil
	}

	logging.LLMWarn("Gemini model %s failed, trying fallback %s: %v", c.model, c.fallbackModel, err)

	text, fbErr := c.generate(ctx, c.fallbackModel, systemPrompt, userPrompt)
	if fbErr != nil {
		logging.LLMError("Gemini fallback model %s failed: %v", c.fallbackModel, fbErr)
		return "", fmt.Errorf("completion failed on %s (%v) and fallback %s: %w", c.model, err, c.fallbackModel, fbErr)
	}

	logging.LLM("Gemini response via fallback: model=%s len=%d elapsed=%v", c.fallbackModel, len(text), time.Since(start))
	return text, nil
}

// throttle enforces a minimum interval between requests.
func (c *GeminiClient) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elapsed := time.Since(c.lastRequest); elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
}

func (c *GeminiClient) generate(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	var config *genai.GenerateContentConfig
	if systemPrompt != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: systemPrompt}},
			},
		}
	}

	contents := []*genai.Content{
		genai.NewContentFromText(userPrompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from model %s", model)
	}
	return text, nil
}
