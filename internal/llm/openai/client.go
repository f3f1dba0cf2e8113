package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mudassirkhan-17/policyqc/internal/common"
	"github.com/mudassirkhan-17/policyqc/internal/llm"
)

// Validate implements llm.Validator using text-only chat/completions. The
// response is decoded through the two-stage recovery path and then checked
// against the report schema before anyone downstream sees it.
func (c *Client) Validate(ctx context.Context, req llm.Request) (llm.Result, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	c.log.Info("llm.validate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"prompt_len", len(req.Prompt),
		"documents", len(req.Documents),
		"schema_keys", len(req.SchemaKeys),
	)

	user := req.Prompt
	if len(req.Documents) > 0 {
		user += "\n\n" + strings.Join(req.Documents, "\n\n")
	}

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "user", "content": user},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, httpErr := c.post(ctx, endpoint, body)
	if httpErr != nil {
		c.log.Error("llm.validate.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Result{}, httpErr
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage llm.TokenUsage `json:"usage"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.validate.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Result{}, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.validate.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Result{}, fmt.Errorf("no choices in openai response")
	}

	decoded := llm.Decode(cc.Choices[0].Message.Content)
	if decoded.Err != nil {
		c.log.Error("llm.validate.unusable_response",
			"req_id", rid, "error", decoded.Err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Result{Raw: decoded.Raw, Usage: cc.Usage}, decoded.Err
	}

	if len(req.SchemaKeys) > 0 {
		// Validate the recovered report, not the raw text: after a fence
		// strip, Raw still carries the backticks.
		reportJSON, err := json.Marshal(decoded.Report)
		if err == nil {
			schema := llm.BuildValidationReportSchema(req.SchemaKeys)
			err = llm.ValidateJSONAgainstSchema(schema, reportJSON)
		}
		if err != nil {
			c.log.Error("llm.validate.schema_validation_failed",
				"req_id", rid, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.Result{Raw: decoded.Raw, Usage: cc.Usage},
				fmt.Errorf("schema validation failed: %w", err)
		}
	}

	c.log.Info("llm.validate.ok",
		"req_id", rid,
		"report_keys", len(decoded.Report),
		"prompt_tokens", cc.Usage.PromptTokens,
		"completion_tokens", cc.Usage.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.Result{Report: decoded.Report, Raw: decoded.Raw, Usage: cc.Usage}, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, buf.String())
	}

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return buf.Bytes(), nil
}
