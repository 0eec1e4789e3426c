// Package llm wraps a single structured request/response round trip against
// a chat model that is instructed to emit one JSON object.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ModelCallError reports a transport or backend failure (auth, timeout,
// quota) from the underlying chat model.
type ModelCallError struct {
	Message string
	Err     error
}

func (e *ModelCallError) Error() string {
	return fmt.Sprintf("model call failed: %s", e.Message)
}

func (e *ModelCallError) Unwrap() error { return e.Err }

// ParseError reports that the model responded but the response was not a
// valid JSON object. Raw carries the full response text so call sites can
// build a fallback payload from it.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response as JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Caller issues structured calls against a chat model. It is stateless and
// safe for reuse across agents and workflows.
type Caller struct {
	model model.BaseChatModel
}

// NewCaller creates a caller on top of any eino chat model.
func NewCaller(m model.BaseChatModel) *Caller {
	return &Caller{model: m}
}

// Exchange sends one system+user round trip and returns the raw response
// text. Transport failures surface as *ModelCallError.
func (c *Caller) Exchange(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}

	resp, err := c.model.Generate(ctx, messages,
		model.WithTemperature(temperature),
		model.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", &ModelCallError{Message: err.Error(), Err: err}
	}
	return resp.Content, nil
}

// Call sends one system+user exchange and parses the reply as a JSON object.
// Transport failures surface as *ModelCallError; malformed JSON surfaces as
// *ParseError. The caller decides per use-site whether to propagate or to
// degrade to a fallback payload.
func (c *Caller) Call(ctx context.Context, system, user string, temperature float32, maxTokens int) (map[string]interface{}, error) {
	raw, err := c.Exchange(ctx, system, user, temperature, maxTokens)
	if err != nil {
		return nil, err
	}

	parsed, err := ParseJSONObject(raw)
	if err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return parsed, nil
}

// CallOrRaw behaves like Call but degrades malformed JSON into a minimal
// fallback object carrying the raw text and a generic recommendation.
// Transport failures still surface as *ModelCallError.
func (c *Caller) CallOrRaw(ctx context.Context, system, user string, temperature float32, maxTokens int) (map[string]interface{}, error) {
	parsed, err := c.Call(ctx, system, user, temperature, maxTokens)
	if err == nil {
		return parsed, nil
	}
	if perr, ok := err.(*ParseError); ok {
		return RawFallback(perr.Raw), nil
	}
	return nil, err
}

// RawFallback wraps unparseable model output into the minimal findings shape
// every consumer understands.
func RawFallback(raw string) map[string]interface{} {
	return map[string]interface{}{
		"raw_analysis":    raw,
		"recommendations": []interface{}{"Review raw analysis for insights"},
	}
}

// ParseJSONObject extracts the first JSON object from the model output,
// tolerating markdown code fences around it.
func ParseJSONObject(content string) (map[string]interface{}, error) {
	text := strings.TrimSpace(content)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}
