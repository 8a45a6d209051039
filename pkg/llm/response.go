package llm

import (
	"encoding/json"
	"strings"
)

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

// parseGeneratedText extracts the text field from a model response body.
func parseGeneratedText(content string) (string, error) {
	content = cleanJSONResponse(content)

	var parsed struct {
		Text  string `json:"text"`
		Error string `json:"error"`
	}

	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return "", &Error{
			Code:    "parse_error",
			Message: "failed to parse model response as JSON",
			Err:     err,
		}
	}

	if parsed.Error != "" {
		return "", &Error{
			Code:    "generation_refused",
			Message: parsed.Error,
		}
	}

	if strings.TrimSpace(parsed.Text) == "" {
		return "", &Error{
			Code:    "empty_response",
			Message: "model response contained no text",
		}
	}

	return parsed.Text, nil
}
