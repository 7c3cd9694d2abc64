package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/techcorp/website/internal/core"
)

const doneSentinel = "[DONE]"

type chatRequest struct {
	Messages []core.ChatTurn `json:"messages"`
}

type streamEvent struct {
	Content string `json:"content"`
	Error   string `json:"error"`
}

// Client talks to the streaming relay endpoint. Each Send opens exactly
// one request; only the most recent request's cancellation is tracked,
// so callers should serialize Sends or accept that Cancel stops the
// latest one only.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

// NewClient builds a client for the given relay URL. The underlying
// http.Client carries no timeout: a hung stream blocks until Cancel,
// and deadlines are the caller's responsibility.
func NewClient(endpoint string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Send posts the conversation history and decodes the event stream.
// onChunk fires once per content record in transmission order; then
// exactly one of onComplete/onError fires — unless the request was
// cancelled, in which case neither does.
func (c *Client) Send(history []core.ChatTurn, onChunk func(string), onComplete func(), onError func(string)) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := c.setCancel(cancel)
	defer c.release(cancel, gen)

	body, err := json.Marshal(chatRequest{Messages: history})
	if err != nil {
		onError(fmt.Sprintf("failed to encode request: %v", err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		onError(fmt.Sprintf("failed to build request: %v", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// cancelled by the caller: silent termination
			return
		}
		c.logger.Warn("relay request failed", "error", err)
		onError(fmt.Sprintf("request failed: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		onError(classifyStatus(resp.StatusCode, resp.Body))
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		if payload == doneSentinel {
			onComplete()
			return
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			c.logger.Warn("skipping malformed stream record", "payload", payload, "error", err)
			continue
		}

		if event.Error != "" {
			onError(event.Error)
			return
		}

		if event.Content != "" {
			onChunk(event.Content)
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("stream read failed", "error", err)
		onError(fmt.Sprintf("stream interrupted: %v", err))
		return
	}

	// the stream ended without an explicit terminator
	onComplete()
}

// Cancel aborts the in-flight request, if any. The aborted Send invokes
// neither terminal callback.
func (c *Client) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Client) setCancel(cancel context.CancelFunc) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.cancel = cancel

	return c.gen
}

// release clears the tracked handle only if it still belongs to this
// Send; a newer Send may have replaced it in the meantime.
func (c *Client) release(cancel context.CancelFunc, gen uint64) {
	c.mu.Lock()
	if c.gen == gen {
		c.cancel = nil
	}
	c.mu.Unlock()

	cancel()
}

func classifyStatus(status int, body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, 64*1024))

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}

	switch status {
	case http.StatusUnauthorized:
		return "Invalid API key. Please check your configuration."
	case http.StatusTooManyRequests:
		return "Rate limit exceeded. Please try again later."
	case http.StatusInternalServerError:
		return "Server error. Please try again."
	case http.StatusServiceUnavailable:
		return "AI service temporarily unavailable."
	default:
		return fmt.Sprintf("Request failed with status %d", status)
	}
}
