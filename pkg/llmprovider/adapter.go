package llmprovider

import (
	"context"

	"booking-assistant-nlu/pkg/deepseek"
	"booking-assistant-nlu/pkg/gemini"
)

// GeminiAdapter adapts pkg/gemini to the llmprovider.Provider interface
type GeminiAdapter struct {
	client gemini.IGemini
}

var _ Provider = (*GeminiAdapter)(nil)

// NewGeminiAdapter creates a new Gemini adapter
func NewGeminiAdapter(client gemini.IGemini) *GeminiAdapter {
	return &GeminiAdapter{client: client}
}

// GenerateContent implements Provider
func (a *GeminiAdapter) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	geminiReq := &gemini.Request{
		SystemInstruction: req.SystemInstruction,
		Temperature:       req.Temperature,
		MaxTokens:         req.MaxTokens,
		ResponseSchema:    req.ResponseSchema,
	}
	for _, msg := range req.Messages {
		geminiReq.Messages = append(geminiReq.Messages, gemini.Message{Role: msg.Role, Text: msg.Text})
	}

	resp, err := a.client.GenerateContent(ctx, geminiReq)
	if err != nil {
		return nil, &ProviderError{Provider: a.Name(), Err: err}
	}

	return &Response{
		Text:         resp.Text,
		ProviderName: a.Name(),
		ModelName:    a.client.Model(),
		Usage: &Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// Name returns the provider name
func (a *GeminiAdapter) Name() string {
	return "gemini"
}

// Model returns the model name
func (a *GeminiAdapter) Model() string {
	return a.client.Model()
}

// DeepSeekAdapter adapts pkg/deepseek to the llmprovider.Provider interface
type DeepSeekAdapter struct {
	client deepseek.IDeepSeek
}

var _ Provider = (*DeepSeekAdapter)(nil)

// NewDeepSeekAdapter creates a new DeepSeek adapter
func NewDeepSeekAdapter(client deepseek.IDeepSeek) *DeepSeekAdapter {
	return &DeepSeekAdapter{client: client}
}

// GenerateContent implements Provider
func (a *DeepSeekAdapter) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	dsReq := &deepseek.Request{
		SystemInstruction: req.SystemInstruction,
		Temperature:       req.Temperature,
		MaxTokens:         req.MaxTokens,
		// DeepSeek has no schema parameter; JSON mode plus the prompt's shape
		// description is the closest equivalent.
		JSONOutput: req.ResponseSchema != nil,
	}
	for _, msg := range req.Messages {
		dsReq.Messages = append(dsReq.Messages, deepseek.Message{Role: msg.Role, Text: msg.Text})
	}

	resp, err := a.client.GenerateContent(ctx, dsReq)
	if err != nil {
		return nil, &ProviderError{Provider: a.Name(), Err: err}
	}

	return &Response{
		Text:         resp.Text,
		ProviderName: a.Name(),
		ModelName:    a.client.Model(),
		Usage: &Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// Name returns the provider name
func (a *DeepSeekAdapter) Name() string {
	return "deepseek"
}

// Model returns the model name
func (a *DeepSeekAdapter) Model() string {
	return a.client.Model()
}
