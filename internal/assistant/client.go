// Package assistant proxies operator questions to the OpenAI
// chat-completions API. The model is steered toward short, practical
// arcade-floor answers; the server never stores conversations.
package assistant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com"

const systemPrompt = "You are an assistant for an arcade operations team. " +
	"Answer questions about game maintenance, ticket-per-play tuning, and " +
	"floor operations briefly and practically."

// Client is a minimal OpenAI chat client.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// SetBaseURL overrides the API host, for tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Ask sends a single-turn question and returns the reply text.
func (c *Client) Ask(question string) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": question},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant API returned %d", resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode assistant response: %w", err)
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("assistant response had no choices")
	}
	return strings.TrimSpace(payload.Choices[0].Message.Content), nil
}
