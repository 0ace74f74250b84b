package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// CompleteOptions controls JSON mode + tokens for one request.
type CompleteOptions struct {
	Temperature          *float64
	MaxOutputTokens      *int
	StructuredSchemaName string
	StructuredSchema     map[string]any
	StructuredStrict     bool
}

// Client talks to one OpenAI-compatible chat/completions endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 45 * time.Second},
	}
}

func (c *Client) Config() Config { return c.cfg }

// Complete sends a system+user exchange and returns the assistant text.
func (c *Client) Complete(ctx context.Context, system, user string, opts CompleteOptions) (string, error) {
	payload := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}
	if opts.Temperature != nil {
		payload["temperature"] = *opts.Temperature
	} else {
		payload["temperature"] = defaultTemperature()
	}
	if opts.MaxOutputTokens != nil && *opts.MaxOutputTokens > 0 {
		payload["max_tokens"] = *opts.MaxOutputTokens
	}
	if opts.StructuredSchema != nil {
		name := opts.StructuredSchemaName
		if strings.TrimSpace(name) == "" {
			name = "structured"
		}
		payload["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   name,
				"strict": opts.StructuredStrict,
				"schema": opts.StructuredSchema,
			},
		}
	}

	b, _ := json.Marshal(payload)
	url := c.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	body := buf.Bytes()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%s http %d: %s", c.cfg.Provider, resp.StatusCode, truncate(string(body), 800))
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &cc); err != nil {
		return "", err
	}
	if len(cc.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return cc.Choices[0].Message.Content, nil
}

// MoveSchema is the structured-output schema for a move decision.
func MoveSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []string{"play", "draw"},
				"description": "The action to take: play a card or draw from deck",
			},
			"card_id": map[string]any{
				"type":        []any{"string", "null"},
				"description": "ID of the card to play (required if action is 'play')",
			},
			"color": map[string]any{
				"type":        []any{"string", "null"},
				"enum":        []any{"red", "blue", "green", "yellow", nil},
				"description": "Color to choose when playing wild/draw four cards",
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "Brief explanation of the decision strategy",
			},
		},
		"required": []string{"action", "reasoning"},
	}
}

// AnalysisSchema is the structured-output schema for the advisory analysis.
func AnalysisSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"best_cards_to_keep": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "IDs of cards that should be kept for strategic reasons",
			},
			"opponent_threat_level": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     10,
				"description": "Threat level of opponents (1-10)",
			},
			"strategic_notes": map[string]any{
				"type":        "string",
				"description": "Additional strategic considerations",
			},
		},
		"required": []string{"best_cards_to_keep", "opponent_threat_level", "strategic_notes"},
	}
}

func defaultTemperature() float64 {
	if v := strings.TrimSpace(os.Getenv("LLM_TEMPERATURE")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0.1
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
