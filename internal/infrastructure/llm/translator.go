package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode"

	"GameRegMonitor/internal/config"
	"GameRegMonitor/internal/domain"
	"GameRegMonitor/internal/ports"
)

const (
	inputLimit    = 500
	cacheKeyLimit = 200
	hanThreshold  = 0.3
)

// ChatGPTTranslator implements ports.Translator backed by OpenAI-compatible APIs.
type ChatGPTTranslator struct {
	endpoint     string
	model        string
	apiKey       string
	targetLang   string
	systemPrompt string
	httpClient   *http.Client

	mu    sync.Mutex
	cache map[string]string
}

var _ ports.Translator = (*ChatGPTTranslator)(nil)

// NewChatGPTTranslator builds a translator from configuration. A nil client
// gets a 20s timeout.
func NewChatGPTTranslator(cfg config.TranslatorConfig, client *http.Client) *ChatGPTTranslator {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	target := strings.TrimSpace(cfg.TargetLang)
	if target == "" {
		target = "Simplified Chinese"
	}
	return &ChatGPTTranslator{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		targetLang:   target,
		systemPrompt: cfg.SystemPrompt,
		httpClient:   client,
		cache:        map[string]string{},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Translate renders text in the target language. Text that is already mostly
// Chinese is returned unchanged. Results are cached per input prefix.
func (c *ChatGPTTranslator) Translate(ctx context.Context, text string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("translator is nil")
	}
	text = strings.TrimSpace(text)
	if text == "" || MostlyChinese(text) {
		return text, nil
	}
	if c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("translator misconfigured")
	}

	key := domain.TruncateRunes(text, cacheKeyLimit)
	if cached, ok := c.lookup(key); ok {
		return cached, nil
	}

	translated, err := c.complete(ctx, domain.TruncateRunes(text, inputLimit))
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.cache[key] = translated
	c.mu.Unlock()
	return translated, nil
}

func (c *ChatGPTTranslator) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache[key]
	return v, ok
}

func (c *ChatGPTTranslator) complete(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": c.prompt()},
			{"role": "user", "content": text},
		},
		"temperature": 0,
	})
	if err != nil {
		return "", fmt.Errorf("marshal translation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send translation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("translator error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode translation: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("translator returned no choices")
	}
	out := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("translator returned empty content")
	}
	return out, nil
}

func (c *ChatGPTTranslator) prompt() string {
	if p := strings.TrimSpace(c.systemPrompt); p != "" {
		return p
	}
	return fmt.Sprintf("Translate the user's text about game-industry regulation into concise %s. Reply with the translation only.", c.targetLang)
}

// MostlyChinese reports whether more than 30% of the runes are Han characters.
func MostlyChinese(text string) bool {
	total, han := 0, 0
	for _, r := range text {
		total++
		if unicode.Is(unicode.Han, r) {
			han++
		}
	}
	return total > 0 && float64(han) > float64(total)*hanThreshold
}
