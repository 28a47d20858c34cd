package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// jsonRetryInstruction is appended to the system prompt when the first
// response fails to parse.
const jsonRetryInstruction = "\n\nCRITICAL: Your previous response was not valid JSON. Return ONLY valid JSON, no markdown fences, no explanation."

// GenerateStructured asks the generator for a JSON response and decodes it
// into T. Markdown code fences are stripped before parsing. On a parse
// failure the call is retried exactly once with a corrective instruction
// appended to the system prompt; a second parse failure, or any transport
// failure, is returned to the caller.
func GenerateStructured[T any](ctx context.Context, g Generator, systemPrompt, userMessage string) (T, error) {
	var result T

	text, err := g.Generate(ctx, systemPrompt, userMessage)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(stripFences(text)), &result); err == nil {
		return result, nil
	} else {
		slog.Warn("structured response did not parse, retrying with corrective prompt", "err", err)
	}

	text, err = g.Generate(ctx, systemPrompt+jsonRetryInstruction, userMessage)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(stripFences(text)), &result); err != nil {
		return result, fmt.Errorf("parsing structured response after retry: %w", err)
	}
	return result, nil
}

// stripFences removes markdown code fences the model sometimes wraps
// around JSON output.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
