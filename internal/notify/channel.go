package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// defaultSendTimeout bounds a single webhook delivery.
const defaultSendTimeout = 10 * time.Second

// payload is the DingTalk/WeCom-compatible text message body.
type payload struct {
	MsgType string `json:"msgtype"`
	Text    text   `json:"text"`
}

type text struct {
	Content string `json:"content"`
}

// Channel posts text content to a webhook endpoint.
type Channel struct {
	url    string
	client *http.Client
}

// Option configures the channel.
type Option func(*Channel)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(ch *Channel) {
		if client != nil {
			ch.client = client
		}
	}
}

// NewChannel constructs a webhook channel.
func NewChannel(url string, opts ...Option) (*Channel, error) {
	if url == "" {
		return nil, errors.New("webhook channel: empty url")
	}

	channel := &Channel{
		url:    url,
		client: &http.Client{Timeout: defaultSendTimeout},
	}

	for _, opt := range opts {
		opt(channel)
	}

	return channel, nil
}

// Send posts the content as a text payload.
func (c *Channel) Send(ctx context.Context, content string) error {
	body, err := json.Marshal(payload{
		MsgType: "text",
		Text:    text{Content: content},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook channel: non-2xx response %d", resp.StatusCode)
	}

	return nil
}
