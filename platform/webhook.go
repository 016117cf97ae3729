package platform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"
)

// WebhookSender posts relayed lines to per-channel webhook endpoints.
// Webhook id and token come from the peer's channel declaration; the
// hub never provisions webhooks.
type WebhookSender struct {
	base   string
	client *http.Client
}

// NewWebhookSender NewWebhookSender. base is the webhook root, e.g.
// https://discord.com/api/webhooks.
func NewWebhookSender(base string) *WebhookSender {
	return &WebhookSender{
		base:   base,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send Send
func (s *WebhookSender) Send(webhookID, webhookToken, username, avatarURL, content string) error {
	payload, err := json.Marshal(map[string]string{
		"username":   username,
		"avatar_url": avatarURL,
		"content":    content,
	})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/%s/%s", s.base, webhookID, webhookToken)
	resp, err := s.client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook %s: status %d: %s", webhookID, resp.StatusCode, msg)
	}
	return nil
}
