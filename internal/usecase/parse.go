// Package usecase implements the multi-stage resume ranking pipeline.
package usecase

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls a JSON object out of raw oracle text. The text may be
// wrapped in prose or triple-backtick fences (optionally labeled "json"), or
// be entirely non-JSON. It tries a direct parse, then the substring between
// the first '{' and the last '}', and finally gives up with an empty map.
//
// The function is pure: no logging, no I/O, never panics, always returns a
// non-nil map.
func ExtractJSON(raw string) map[string]any {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.Trim(text, "`")
		if len(text) >= 4 && strings.EqualFold(text[:4], "json") {
			text = text[4:]
		}
		text = strings.TrimSpace(text)
	}

	if m := tryUnmarshalObject(text); m != nil {
		return m
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		if m := tryUnmarshalObject(text[start : end+1]); m != nil {
			return m
		}
	}
	return map[string]any{}
}

func tryUnmarshalObject(s string) map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	if m == nil {
		return map[string]any{}
	}
	return m
}
