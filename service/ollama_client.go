package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"loan-advisor/domain"
	"loan-advisor/metrics"
)

const assistantPersona = "You are Loan Approval Bot, an AI assistant specialized in loan approval analysis and financial guidance."

// TextProducer generates narrative text for a prompt, optionally grounded in
// a data context. Implementations may fail; NarrativeService handles that.
type TextProducer interface {
	ProduceText(ctx context.Context, prompt, dataContext string) (string, error)
	Name() string
}

type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// OllamaClient talks to a local Ollama server over its HTTP API.
type OllamaClient struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	httpClient  *http.Client
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	return &OllamaClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		httpClient:  &http.Client{},
	}
}

func (c *OllamaClient) Name() string {
	return "ollama:" + c.model
}

// Ping checks that the server answers. Used at startup to pick the backend.
func (c *OllamaClient) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", domain.ErrBackendUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *OllamaClient) ProduceText(ctx context.Context, prompt, dataContext string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.NarrativeBackendDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	reqBody := ollamaGenerateRequest{
		Model:  c.model,
		Prompt: framePrompt(prompt, dataContext),
		Stream: false,
		Options: ollamaOptions{
			Temperature: c.temperature,
			NumPredict:  c.maxTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: ollama status %d: %s", domain.ErrBackendUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrBackendUnavailable, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrBackendUnavailable, out.Error)
	}

	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", domain.ErrBackendUnavailable)
	}
	return text, nil
}

func (c *OllamaClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func framePrompt(prompt, dataContext string) string {
	var b strings.Builder
	b.WriteString(assistantPersona)
	b.WriteString("\n\nCONTEXT FOR ANALYSIS:\n")
	b.WriteString(dataContext)
	b.WriteString("\n\nUSER QUERY: ")
	b.WriteString(prompt)
	b.WriteString("\n\nPlease provide a helpful, accurate response based on the loan data context and financial best practices.\n")
	b.WriteString("Be professional but friendly in your tone.\n")
	b.WriteString("Focus on loan approval criteria, credit scores, income requirements, debt-to-income ratios, and financial advice.")
	return b.String()
}
