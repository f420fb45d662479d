// Package summarize turns a room's transcript history into a short summary
// through a configurable LLM provider.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/openhuddle/huddle/internal/domain"
)

// maxInputChars clamps the concatenated transcript text for large rooms.
const maxInputChars = 12000

const defaultSystemPrompt = "You are a helpful assistant. Summarize the conversation into clear bullets " +
	"with key decisions, action items, and topics. Keep it concise."

// Provider produces a concise summary of the given text.
type Provider interface {
	Name() string
	Summarize(ctx context.Context, text string) (string, error)
}

// ConcatTranscripts renders transcript rows, oldest first, as "client: text"
// lines clamped to the provider input budget. Rows are expected newest first,
// as storage returns them.
func ConcatTranscripts(rows []domain.Transcript) string {
	parts := make([]string, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		who := r.ClientID
		if who == "" {
			who = "user"
		}
		txt := strings.TrimSpace(r.Text)
		if txt == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", who, txt))
	}
	text := strings.Join(parts, "\n")
	if len(text) > maxInputChars {
		text = text[len(text)-maxInputChars:]
	}
	return text
}
