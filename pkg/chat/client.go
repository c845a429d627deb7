// Package chat 实现聊天挂件：远程问答客户端、会话状态、预设回复和"正在输入"延迟。
//
// 网络请求在独立 goroutine 中执行，回复通过带缓冲的 channel 交回游戏循环，
// 在 Session.Update 中应用，会话状态始终只在游戏循环中修改。
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Answerer 问答服务
type Answerer interface {
	Ask(ctx context.Context, message string) (string, error)
}

// Client talks to the remote question-answering endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client. A non-positive timeout means no client-side timeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: &http.Client{Timeout: max(timeout, 0)},
	}
}

// chatRequest is the request body.
type chatRequest struct {
	Message string `json:"message"`
}

// chatResponse is the response body.
type chatResponse struct {
	Reply string `json:"reply"`
}

// Ask posts the message and returns the reply text.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("chat endpoint not configured")
	}

	body, err := json.Marshal(chatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if strings.TrimSpace(result.Reply) == "" {
		return "", fmt.Errorf("empty reply")
	}
	return result.Reply, nil
}
