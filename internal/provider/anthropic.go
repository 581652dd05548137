package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	apierrors "github.com/silanhu/easycli/internal/errors"
	"github.com/silanhu/easycli/internal/logging"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	messagesPath     = "/v1/messages"
	anthropicVersion = "2023-06-01"

	defaultMaxTokens = 4096
)

// Anthropic streams responses from the Anthropic Messages API over SSE.
type Anthropic struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewAnthropic creates a streaming client. apiKey must be non-empty;
// baseURL falls back to the public endpoint.
func NewAnthropic(apiKey, baseURL, model string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, apierrors.ErrMissingAPIKey
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Anthropic{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

// Model returns the model the client was configured with.
func (a *Anthropic) Model() string {
	return a.model
}

// Stream posts one turn to the messages endpoint and feeds text deltas to
// onChunk until the stream completes.
func (a *Anthropic) Stream(ctx context.Context, req Request, onChunk func(string)) error {
	start := time.Now()

	body, err := a.buildRequestBody(req)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	model := req.Model
	if model == "" {
		model = a.model
	}
	logging.Info("provider request", "model", model, "messages", len(req.Messages))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Error("provider request failed", "err", err)
		return apierrors.NewTransportError("request failed", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return a.errorFromResponse(httpResp)
	}

	chunks, err := a.parseSSEStream(ctx, httpResp.Body, onChunk)
	if err != nil {
		return err
	}

	logging.Info("provider response",
		"model", model,
		"chunks", chunks,
		"latencyMs", time.Since(start).Milliseconds(),
	)
	return nil
}

func (a *Anthropic) buildRequestBody(req Request) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = a.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body := map[string]any{
		"model":      model,
		"max_tokens": maxTokens,
		"messages":   req.Messages,
		"stream":     true,
	}
	if req.System != "" {
		body["system"] = req.System
	}
	return json.Marshal(body)
}

// errorFromResponse turns a non-200 response into a ProviderError with the
// API's own code and message when the body carries one.
func (a *Anthropic) errorFromResponse(resp *http.Response) error {
	var buf bytes.Buffer
	buf.ReadFrom(io.LimitReader(resp.Body, 64*1024))
	raw := buf.String()

	code := gjson.Get(raw, "error.type").String()
	msg := gjson.Get(raw, "error.message").String()
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	logging.Error("provider rejected request", "status", resp.StatusCode, "code", code, "message", msg)
	return apierrors.NewProviderError(code, msg)
}

// parseSSEStream consumes "data: {json}" lines until message_stop. An
// in-band error event ends the turn as a ProviderError; a connection cut
// before message_stop is a TransportError.
func (a *Anthropic) parseSSEStream(ctx context.Context, body io.Reader, onChunk func(string)) (int, error) {
	scanner := bufio.NewScanner(body)
	// Large code blocks can arrive as one oversized delta.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	chunks := 0
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := line[len("data: "):]

		switch gjson.Get(data, "type").String() {
		case "content_block_delta":
			if text := gjson.Get(data, "delta.text").String(); text != "" {
				chunks++
				onChunk(text)
			}
		case "error":
			code := gjson.Get(data, "error.type").String()
			msg := gjson.Get(data, "error.message").String()
			logging.Error("provider stream error", "code", code, "message", msg)
			return chunks, apierrors.NewProviderError(code, msg)
		case "message_stop":
			return chunks, nil
		}
	}

	if ctx.Err() != nil {
		return chunks, ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return chunks, apierrors.NewTransportError("stream read failed", err)
	}
	return chunks, apierrors.NewTransportError("stream ended early", apierrors.ErrStreamClosed)
}
