package chatwebhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"GameRegMonitor/internal/ports"
)

// Notifier posts digests to a chat bot webhook using the Feishu/Lark text
// message format.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

type textMessage struct {
	MsgType string      `json:"msg_type"`
	Content textContent `json:"content"`
}

type textContent struct {
	Text string `json:"text"`
}

type webhookReply struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// NewNotifier registers the webhook address. A nil client gets a 10s timeout.
func NewNotifier(webhookURL string, client *http.Client) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Notifier{webhookURL: webhookURL, client: client}
}

// PublishDigest posts a plain-text message to the webhook.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.webhookURL == "" || n.client == nil {
		return fmt.Errorf("webhook notifier misconfigured")
	}
	if strings.TrimSpace(digest) == "" {
		return nil
	}

	body, err := json.Marshal(textMessage{MsgType: "text", Content: textContent{Text: digest}})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook error: %s", resp.Status)
	}

	// Feishu reports rejected messages with HTTP 200 and a non-zero code.
	var reply webhookReply
	if err := json.Unmarshal(payload, &reply); err == nil && reply.Code != 0 {
		return fmt.Errorf("webhook rejected message: code %d: %s", reply.Code, reply.Msg)
	}
	return nil
}
