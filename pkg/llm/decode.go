package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// CompleteInto requests a structured reply named name and decodes it into T.
// A reply that is not valid JSON for T yields a *CapabilityError wrapping
// ErrMalformedOutput.
func CompleteInto[T any](ctx context.Context, c Completer, req Request, name string) (T, error) {
	var out T
	req.Output = &OutputSchema{Name: name, Shape: new(T)}

	resp, err := c.Complete(ctx, req)
	if err != nil {
		return out, err
	}

	if err := DecodeJSON(resp.Content, &out); err != nil {
		return out, &CapabilityError{Op: "decode", Err: fmt.Errorf("%w: %s: %v", ErrMalformedOutput, name, err)}
	}
	return out, nil
}

// DecodeJSON unmarshals a model reply, tolerating a surrounding
// markdown code fence.
func DecodeJSON(content string, v any) error {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return json.Unmarshal([]byte(content), v)
}
