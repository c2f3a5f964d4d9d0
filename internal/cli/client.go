package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/CarRentLink/CarRentLink/internal/common/middleware"
)

// Client rental-service 的 HTTP 客户端。
// 出站调用经过熔断器保护，并做客户端侧令牌桶限流，避免种子导入打垮服务。
type Client struct {
	base    string
	http    *http.Client
	breaker *middleware.CircuitBreaker
	limiter middleware.RateLimiter
	token   string
}

func NewClient(base, token string) *Client {
	return &Client{
		base:    strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: middleware.NewCircuitBreaker("rental-service", 5, 10*time.Second),
		limiter: middleware.NewTokenBucket(20, 10),
		token:   token,
	}
}

// PostJSON 发送 POST 请求并解析 JSON 响应。
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// GetJSON 发送 GET 请求并解析 JSON 响应。
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.waitForToken(ctx); err != nil {
		return err
	}

	return c.breaker.Call(ctx, func() error {
		var payload io.Reader
		if body != nil {
			buf := &bytes.Buffer{}
			if err := json.NewEncoder(buf).Encode(body); err != nil {
				return fmt.Errorf("encode request: %w", err)
			}
			payload = buf
		}

		req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			var apiErr struct {
				Error string `json:"error"`
			}
			_ = json.NewDecoder(resp.Body).Decode(&apiErr)
			if apiErr.Error == "" {
				apiErr.Error = resp.Status
			}
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}

		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}

// waitForToken 客户端限流：令牌不足时小步等待，直到拿到令牌或 ctx 取消。
func (c *Client) waitForToken(ctx context.Context) error {
	for !c.limiter.Allow(ctx) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}
