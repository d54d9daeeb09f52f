package perplexity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/docnamer/internal/common"
	"github.com/joseph-ayodele/docnamer/internal/llm"
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements llm.Completer against the chat/completions endpoint.
// A missing or too-short key fails with common.ErrNotConfigured before any request.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	if !c.cfg.Configured() {
		return "", common.NewAppError(common.CodeNotConfigured, "perplexity api key missing or too short", common.ErrNotConfigured)
	}
	reqID := common.RequestIDFromContext(ctx)
	start := time.Now()

	body := chatRequest{
		Model:       c.cfg.Model,
		Messages:    req.Messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}
	if req.Temperature != nil {
		body.Temperature = *req.Temperature
	}

	c.logger.Info("llm.complete.start",
		"req_id", reqID,
		"purpose", req.Purpose,
		"model", body.Model,
		"max_tokens", body.MaxTokens,
		"temp", body.Temperature,
	)

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.complete.http_error",
			"req_id", reqID, "purpose", req.Purpose, "status", status, "error", err,
			"body", llm.TruncateRunes(string(raw), 300),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.NewAppError(common.CodeRemoteCall, "chat completion", err)
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.complete.decode_error",
			"req_id", reqID, "error", err, "raw_bytes", len(raw),
		)
		return "", fmt.Errorf("%w: decode chat response: %v", common.ErrRemoteCall, err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.complete.no_choices", "req_id", reqID, "raw", llm.TruncateRunes(string(raw), 300))
		return "", fmt.Errorf("%w: no choices in response", common.ErrRemoteCall)
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	if content == "" {
		c.logger.Error("llm.complete.empty_content", "req_id", reqID)
		return "", fmt.Errorf("%w: empty message content", common.ErrRemoteCall)
	}

	c.logger.Info("llm.complete.ok",
		"req_id", reqID,
		"purpose", req.Purpose,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
