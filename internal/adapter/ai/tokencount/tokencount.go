// Package tokencount estimates prompt sizes using tiktoken encodings.
//
// It backs the Stage-2 summary budget: the re-ranking call sends one prompt
// covering the whole surviving batch, so its size must be bounded up front.
package tokencount

import (
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Counter provides thread-safe token counting for a model family.
type Counter struct {
	model string

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewCounter creates a counter for the given model id. Unknown models fall
// back to the cl100k_base encoding, which approximates most modern models.
func NewCounter(model string) *Counter {
	return &Counter{model: model}
}

// Count returns the token count of text, or a bytes/4 estimate when no
// encoding could be loaded.
func (c *Counter) Count(text string) int {
	c.once.Do(func() {
		enc, err := tiktoken.EncodingForModel(normalizeModelName(c.model))
		if err != nil {
			enc, err = tiktoken.GetEncoding("cl100k_base")
			if err != nil {
				return
			}
		}
		c.enc = enc
	})
	if c.enc == nil {
		return len(text) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}

// normalizeModelName maps provider-prefixed model ids to tiktoken names.
func normalizeModelName(model string) string {
	model = strings.ToLower(model)
	if i := strings.LastIndex(model, "/"); i != -1 {
		model = model[i+1:]
	}
	model = strings.TrimSuffix(model, ":free")
	switch {
	case strings.Contains(model, "gpt-4"):
		return "gpt-4"
	case strings.Contains(model, "gpt-3.5"):
		return "gpt-3.5-turbo"
	default:
		// Most current models tokenize close enough to GPT-4 for budgeting.
		return "gpt-4"
	}
}
