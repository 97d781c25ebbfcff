package ollama

import (
	"encoding/json"
	"errors"
	"strings"
)

type rawPayload struct {
	Questions  []rawQuestion `json:"questions"`
	PaperType  string        `json:"paperType"`
	GradeLevel string        `json:"gradeLevel"`
}

// decodePayload parses the model output, tolerating markdown fences, prose
// around the JSON, and responses cut off mid-array by an output-token limit.
func decodePayload(raw string) (rawPayload, error) {
	s := stripCodeFence(raw)

	start := strings.Index(s, "{")
	if start < 0 {
		return rawPayload{}, errors.New("no JSON object in response")
	}
	s = s[start:]

	var payload rawPayload
	if end := strings.LastIndex(s, "}"); end > 0 {
		if err := json.Unmarshal([]byte(s[:end+1]), &payload); err == nil {
			return payload, nil
		}
	}

	repaired, ok := repairTruncated(s)
	if !ok {
		return rawPayload{}, errors.New("response is not valid JSON and could not be repaired")
	}
	if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
		return rawPayload{}, err
	}
	return payload, nil
}

// stripCodeFence removes a surrounding ```json fence. A missing closing
// fence, common in truncated responses, is tolerated.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// repairTruncated recovers complete question objects from a response cut off
// mid-array. It scans the "questions" array tracking string and nesting
// state, finds the last position where a question object closed cleanly,
// discards everything after it, and closes the array and object.
func repairTruncated(s string) (string, bool) {
	keyIdx := strings.Index(s, `"questions"`)
	if keyIdx < 0 {
		return "", false
	}
	arrStart := strings.Index(s[keyIdx:], "[")
	if arrStart < 0 {
		return "", false
	}
	arrStart += keyIdx

	depth := 1 // inside the questions array
	inString := false
	escaped := false
	lastComplete := -1

	for i := arrStart + 1; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 1 && c == '}' {
				lastComplete = i
			}
		}
	}

	if lastComplete < 0 {
		return "", false
	}
	return s[:lastComplete+1] + "]}", true
}
