package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable means the inference backend is not configured. Callers of
// SummarizeFiscalNote never see it; it only matters to the transport layer
// and its tests.
var ErrUnavailable = errors.New("inference backend unavailable")

// TextGenerator is the chat-completions capability the fiscal summarizer
// defends against.
type TextGenerator interface {
	Generate(ctx context.Context, request GenerateRequest) (string, error)
	Available() bool
}

type GenerateRequest struct {
	Input       string
	Temperature float64
	MaxTokens   int
}

type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      strings.TrimSpace(cfg.Model),
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		httpClient: cfg.HTTPClient,
	}
}

func (c *Client) Available() bool {
	return c.baseURL != "" && c.apiKey != "" && c.model != ""
}

func (c *Client) Generate(ctx context.Context, request GenerateRequest) (string, error) {
	if !c.Available() {
		return "", ErrUnavailable
	}
	if strings.TrimSpace(request.Input) == "" {
		return "", errors.New("input is required")
	}

	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": request.Input},
		},
		"temperature": request.Temperature,
		"max_tokens":  request.MaxTokens,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal inference payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		text, callErr := c.callChatCompletions(ctx, encoded)
		if callErr == nil {
			return text, nil
		}
		lastErr = callErr

		if !isRetryable(callErr) || attempt == c.maxRetries {
			break
		}

		backoff := time.Duration(350*(attempt+1)) * time.Millisecond
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	if lastErr == nil {
		lastErr = errors.New("unknown inference error")
	}
	return "", lastErr
}

func (c *Client) callChatCompletions(ctx context.Context, payload []byte) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(
		timeoutCtx,
		http.MethodPost,
		c.baseURL+"/v1/chat/completions",
		bytes.NewReader(payload),
	)
	if err != nil {
		return "", fmt.Errorf("create inference request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("inference timeout: %w", err)
		}
		return "", fmt.Errorf("inference transport error: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("read inference body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		message := strings.TrimSpace(string(body))
		if len(message) > 700 {
			message = message[:700]
		}
		return "", &inferenceHTTPError{StatusCode: response.StatusCode, Message: message}
	}

	var raw chatCompletionsResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("decode inference response: %w", err)
	}
	if len(raw.Choices) == 0 {
		return "", errors.New("inference response without choices")
	}
	text := strings.TrimSpace(raw.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("inference response without text output")
	}
	return text, nil
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type inferenceHTTPError struct {
	StatusCode int
	Message    string
}

func (e *inferenceHTTPError) Error() string {
	return fmt.Sprintf("inference status %d: %s", e.StatusCode, e.Message)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *inferenceHTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "timeout") || strings.Contains(message, "tempor")
}
