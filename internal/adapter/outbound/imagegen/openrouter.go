package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/colorstudio/server/internal/port/outbound"
)

// ProviderName labels metrics and logs for this adapter.
const ProviderName = "openrouter"

// maxErrorBody caps how much of a failed response is echoed back in errors.
const maxErrorBody = 2048

// instruction is appended to every style prompt.
const instruction = "Please generate a colored version of this drawing. Maintain the original line art structure but add beautiful colors according to the style description."

// ErrNoImage is returned when the provider answered without an image.
var ErrNoImage = errors.New("provider response contained no image")

var dataURIPattern = regexp.MustCompile(`data:image/[a-zA-Z0-9.+-]+;base64,[A-Za-z0-9+/=]+`)

// Config holds OpenRouter connection settings.
type Config struct {
	BaseURL             string
	APIKey              string
	Model               string
	Referer             string
	Title               string
	MaxCompletionTokens int
	Temperature         float64
}

// OpenRouterAdapter implements outbound.ImageGeneratorPort over the
// OpenRouter chat completions API.
type OpenRouterAdapter struct {
	client *http.Client
	config Config
}

// NewOpenRouterAdapter creates a new OpenRouter adapter with the given HTTP client.
func NewOpenRouterAdapter(client *http.Client, config Config) *OpenRouterAdapter {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &OpenRouterAdapter{
		client: client,
		config: config,
	}
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type chatCompletionRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	Modalities          []string      `json:"modalities,omitempty"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	Temperature         float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
			Images  []contentPart   `json:"images"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends one recoloring request. It does not retry.
func (a *OpenRouterAdapter) Generate(ctx context.Context, req *outbound.ImageGenerationRequest) (*outbound.ImageGenerationResult, error) {
	chatReq := &chatCompletionRequest{
		Model: a.config.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: req.Prompt + "\n\n" + instruction},
				{Type: "image_url", ImageURL: &imageRef{URL: req.ImageDataURI}},
			},
		}},
		Modalities:          []string{"image", "text"},
		MaxCompletionTokens: a.config.MaxCompletionTokens,
		Temperature:         a.config.Temperature,
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	if a.config.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", a.config.Referer)
	}
	if a.config.Title != "" {
		httpReq.Header.Set("X-Title", a.config.Title)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("OpenRouter API failed: %s", truncate(string(respBody), maxErrorBody))
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("OpenRouter API failed: %s", chatResp.Error.Message)
	}

	url := extractImage(&chatResp)
	if url == "" {
		return nil, ErrNoImage
	}

	modelName := chatResp.Model
	if modelName == "" {
		modelName = a.config.Model
	}
	return &outbound.ImageGenerationResult{ImageURL: url, Model: modelName}, nil
}

// extractImage finds the first generated image in a completion. Images may be
// returned as message.images, as image_url content parts, or as a data URI
// embedded in text content.
func extractImage(resp *chatCompletionResponse) string {
	for _, choice := range resp.Choices {
		for _, img := range choice.Message.Images {
			if img.ImageURL != nil && img.ImageURL.URL != "" {
				return img.ImageURL.URL
			}
		}

		content := choice.Message.Content
		if len(content) == 0 {
			continue
		}

		var text string
		if err := json.Unmarshal(content, &text); err == nil {
			if uri := dataURIPattern.FindString(text); uri != "" {
				return uri
			}
			continue
		}

		var parts []contentPart
		if err := json.Unmarshal(content, &parts); err != nil {
			continue
		}
		for _, p := range parts {
			if p.ImageURL != nil && p.ImageURL.URL != "" {
				return p.ImageURL.URL
			}
			if uri := dataURIPattern.FindString(p.Text); uri != "" {
				return uri
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Compile-time interface check
var _ outbound.ImageGeneratorPort = (*OpenRouterAdapter)(nil)
