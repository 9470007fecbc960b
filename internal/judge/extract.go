package judge

import (
	"errors"
	"strings"
)

// ErrNoJSONObject reports that the model output contained no JSON object.
var ErrNoJSONObject = errors.New("no JSON object in model output")

// ExtractJSON pulls the first complete JSON object out of model output.
// Models wrap payloads in markdown fences or surround them with prose, so
// fences are stripped first and then the text is scanned for a balanced
// object, honoring string literals and escapes.
func ExtractJSON(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrNoJSONObject
	}
	text = stripCodeFence(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSONObject
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := text[3:]
	if newline := strings.IndexByte(body, '\n'); newline >= 0 {
		// Drop the language tag on the opening fence line.
		body = body[newline+1:]
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
