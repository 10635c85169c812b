package analyzer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/auditlens/seo-audit/internal/keywords"
	"github.com/auditlens/seo-audit/internal/logging"
)

// ClaudeConfig holds model API configuration.
type ClaudeConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int
	MaxRetries uint64
	Timeout    time.Duration
}

// NewClaudeConfig creates model configuration from environment variables.
func NewClaudeConfig() *ClaudeConfig {
	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	base := os.Getenv("ANTHROPIC_BASE_URL")
	if base == "" {
		base = "https://api.anthropic.com"
	}
	return &ClaudeConfig{
		APIKey:     os.Getenv("ANTHROPIC_API_KEY"),
		Model:      model,
		BaseURL:    base,
		MaxTokens:  4096,
		MaxRetries: 3,
		Timeout:    120 * time.Second,
	}
}

// ClaudeClient implements Analyzer against the Anthropic messages API.
type ClaudeClient struct {
	cfg    *ClaudeConfig
	client *http.Client
	log    *logging.Logger
}

// NewClaudeClient creates a new model-backed analyzer.
func NewClaudeClient(cfg *ClaudeConfig) *ClaudeClient {
	if cfg == nil {
		cfg = NewClaudeConfig()
	}
	return &ClaudeClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logging.Default().WithComponent("analyzer"),
	}
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type chatMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// errOverloaded marks a transient capacity error worth retrying.
type errOverloaded struct{ inner error }

func (e errOverloaded) Error() string { return e.inner.Error() }

// CritiqueDesign sends both screenshots plus context and parses the
// structured critique out of the model response.
func (c *ClaudeClient) CritiqueDesign(ctx context.Context, desktop, mobile []byte, dctx DesignContext) (*DesignCritique, error) {
	blocks := []contentBlock{
		{Type: "image", Source: &imageSource{Type: "base64", MediaType: "image/jpeg", Data: base64.StdEncoding.EncodeToString(desktop)}},
		{Type: "image", Source: &imageSource{Type: "base64", MediaType: "image/jpeg", Data: base64.StdEncoding.EncodeToString(mobile)}},
		{Type: "text", Text: designPrompt(dctx)},
	}

	text, err := c.complete(ctx, designSystemPrompt, blocks)
	if err != nil {
		return nil, err
	}

	var critique DesignCritique
	if err := json.Unmarshal(extractJSON(text), &critique); err != nil {
		return nil, fmt.Errorf("failed to parse design critique: %w", err)
	}
	if critique.Score < 1 {
		critique.Score = 1
	}
	if critique.Score > 10 {
		critique.Score = 10
	}
	return &critique, nil
}

// FindContentGaps analyzes a URL list for missing content categories.
func (c *ClaudeClient) FindContentGaps(ctx context.Context, urls []string, domain string) (*ContentGapReport, error) {
	blocks := []contentBlock{{Type: "text", Text: contentGapPrompt(urls, domain)}}

	text, err := c.complete(ctx, contentGapSystemPrompt, blocks)
	if err != nil {
		return nil, err
	}

	var report ContentGapReport
	if err := json.Unmarshal(extractJSON(text), &report); err != nil {
		return nil, fmt.Errorf("failed to parse content gap report: %w", err)
	}
	return &report, nil
}

// SynthesizeStrategy produces the long-form markdown strategic roadmap.
func (c *ClaudeClient) SynthesizeStrategy(ctx context.Context, input StrategyInput, dataset *keywords.DomainData) (string, error) {
	blocks := []contentBlock{{Type: "text", Text: strategyPrompt(input, dataset)}}
	return c.complete(ctx, strategySystemPrompt, blocks)
}

// complete runs one messages call, retrying with exponential backoff only
// when the provider signals it is overloaded.
func (c *ClaudeClient) complete(ctx context.Context, system string, blocks []contentBlock) (string, error) {
	var result string

	operation := func() error {
		text, err := c.callOnce(ctx, system, blocks)
		if err != nil {
			if _, transient := err.(errOverloaded); transient {
				c.log.Warn("model overloaded, retrying", "error", err)
				return err
			}
			return backoff.Permanent(err)
		}
		result = text
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.cfg.MaxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return result, nil
}

func (c *ClaudeClient) callOnce(ctx context.Context, system string, blocks []contentBlock) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY is not configured")
	}

	payload, err := json.Marshal(messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		System:    system,
		Messages:  []chatMessage{{Role: "user", Content: blocks}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call model API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response (HTTP %d): %w", resp.StatusCode, err)
	}

	if parsed.Error != nil {
		err := fmt.Errorf("model API error (HTTP %d): %s: %s", resp.StatusCode, parsed.Error.Type, parsed.Error.Message)
		if resp.StatusCode == 529 || parsed.Error.Type == "overloaded_error" {
			return "", errOverloaded{err}
		}
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model API returned HTTP %d", resp.StatusCode)
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("model returned no text content")
	}
	return text.String(), nil
}

// extractJSON strips markdown fencing and surrounding prose so structured
// responses parse even when the model adds commentary.
func extractJSON(text string) []byte {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		text = strings.TrimPrefix(text, "json")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return []byte(strings.TrimSpace(text))
}
