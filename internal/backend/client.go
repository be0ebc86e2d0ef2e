package backend

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/iamvkosarev/docs-chat-assistant/config"
)

const (
	chatPath        = "/api/chat"
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
	maxErrorBody    = 512
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages  []ChatMessage `json:"messages"`
	PagePath  *string       `json:"pagePath"`
	Timestamp string        `json:"timestamp"`
}

// NewChatRequest builds a request body; an empty pagePath is sent as null.
func NewChatRequest(messages []ChatMessage, pagePath string, at time.Time) ChatRequest {
	req := ChatRequest{
		Messages:  messages,
		Timestamp: at.UTC().Format(timestampLayout),
	}
	if pagePath != "" {
		req.PagePath = &pagePath
	}
	return req
}

// StatusError is returned when the backend answers with anything but 200.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("chat backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("chat backend returned status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	client *resty.Client
}

// NewClient builds a client for cfg.BaseURL. RequestTimeout bounds dialing
// and waiting for the response headers only; the streamed body lives as
// long as the context passed to OpenStream.
func NewClient(cfg config.Backend) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	if cfg.RequestTimeout > 0 {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DialContext = (&net.Dialer{
			Timeout:   cfg.RequestTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
		transport.ResponseHeaderTimeout = cfg.RequestTimeout
		client.SetTransport(transport)
	}
	return &Client{client: client}
}

// OpenStream posts req and returns the streamed response body. The caller
// must close it.
func (c *Client) OpenStream(ctx context.Context, req ChatRequest) (io.ReadCloser, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/event-stream").
		SetBody(req).
		SetDoNotParseResponse(true).
		Post(chatPath)
	if err != nil {
		return nil, fmt.Errorf("failed to send chat request: %w", err)
	}

	body := resp.RawBody()
	if resp.StatusCode() != http.StatusOK {
		statusErr := &StatusError{StatusCode: resp.StatusCode()}
		if body != nil {
			raw, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
			statusErr.Body = strings.TrimSpace(string(raw))
			_ = body.Close()
		}
		return nil, statusErr
	}
	if body == nil {
		return io.NopCloser(strings.NewReader("")), nil
	}
	return body, nil
}
