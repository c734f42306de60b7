package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client implements IDeepSeek
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

var _ IDeepSeek = (*Client)(nil)

// New creates a new DeepSeek client
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("deepseek: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		client:  cfg.HTTPClient,
	}, nil
}

// GenerateContent sends a chat completion request to the DeepSeek API
func (c *Client) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	wireReq := chatRequest{
		Model:       c.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.SystemInstruction != "" {
		wireReq.Messages = append(wireReq.Messages, chatMessage{Role: "system", Content: req.SystemInstruction})
	}
	for _, msg := range req.Messages {
		wireReq.Messages = append(wireReq.Messages, chatMessage{Role: msg.Role, Content: msg.Text})
	}
	if req.JSONOutput {
		wireReq.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, fmt.Errorf("deepseek: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("deepseek: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("deepseek: failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("deepseek: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil {
			return nil, fmt.Errorf("deepseek: API error %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, fmt.Errorf("deepseek: API error %d: %s", resp.StatusCode, errResp.Error.Message)
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("deepseek: failed to parse response: %w", err)
	}

	out := &Response{
		Usage: Usage{
			InputTokens:  result.Usage.PromptTokens,
			OutputTokens: result.Usage.CompletionTokens,
			TotalTokens:  result.Usage.TotalTokens,
		},
	}
	if len(result.Choices) > 0 {
		out.Text = result.Choices[0].Message.Content
	}

	return out, nil
}

// Model returns the model being used
func (c *Client) Model() string {
	return c.model
}
