package delegate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GriffinCanCode/formclip/internal/infrastructure/config"
)

// GeminiClient asks a Gemini model for mappings.
type GeminiClient struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// NewGeminiClient creates a client authenticated with cfg.APIKey.
func NewGeminiClient(ctx context.Context, cfg config.DelegateConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &GeminiClient{client: client, model: cfg.Model, limiter: limiter}, nil
}

// MapFields renders the prompt and decodes the model's JSON answer.
func (c *GeminiClient) MapFields(ctx context.Context, req Request) (*Response, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemInstruction))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if isTransient(err) {
			return nil, fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return ParseResponse(text)
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrMalformedResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no content", ErrMalformedResponse)
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: no text parts", ErrMalformedResponse)
	}
	return strings.Join(parts, ""), nil
}

func isTransient(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Aborted, codes.Internal:
		return true
	}
	return false
}
