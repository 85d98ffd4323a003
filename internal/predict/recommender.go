package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Recommender interface {
	Recommend(ctx context.Context, disease string) (Advice, error)
}

var errEmptyCompletion = errors.New("completion has no content")

type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GroqRecommender asks an OpenAI-compatible chat completions API for treatment steps.
type GroqRecommender struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewGroqRecommender(cfg GroqConfig) *GroqRecommender {
	return &GroqRecommender{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *GroqRecommender) Recommend(ctx context.Context, disease string) (Advice, error) {
	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{{
			Role:    "user",
			Content: fmt.Sprintf("Give clear, short treatment steps for this plant disease: %s.", disease),
		}},
		Temperature: 0.3,
	})
	if err != nil {
		return Advice{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Advice{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Advice{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Advice{}, fmt.Errorf("chat completions returned status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Advice{}, fmt.Errorf("decode completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return Advice{}, errEmptyCompletion
	}

	text := out.Choices[0].Message.Content
	return Advice{Lines: splitLines(text), Raw: text}, nil
}

// splitLines keeps the non-empty lines of text with list bullets removed.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "•*- ")
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
