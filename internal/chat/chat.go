package chat

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

const MaxLength = 30

var (
	ErrEmpty   = errors.New("empty chat message")
	ErrTooLong = fmt.Errorf("chat message longer than %d characters", MaxLength)
)

// Censor is the profanity filter applied to every relayed line.
type Censor interface {
	Censor(text string) string
}

type CensorFunc func(text string) string

func (f CensorFunc) Censor(text string) string { return f(text) }

// Format validates text and returns the line to broadcast to both players.
func Format(censor Censor, username, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmpty
	}
	if n := utf8.RuneCountInString(text); n > MaxLength {
		return "", fmt.Errorf("%w (%d)", ErrTooLong, n)
	}
	if censor != nil {
		text = censor.Censor(text)
	}
	return username + ": " + text, nil
}

// WordList masks blocked words with asterisks, ignoring case. It is safe
// for concurrent use; sessions share one.
type WordList struct {
	blocked map[string]struct{}
}

func NewWordList(words []string) *WordList {
	fold := cases.Fold()
	w := &WordList{blocked: make(map[string]struct{}, len(words))}
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word != "" {
			w.blocked[fold.String(word)] = struct{}{}
		}
	}
	return w
}

func (w *WordList) Censor(text string) string {
	fields := strings.FieldsFunc(text, isSeparator)
	if len(fields) == 0 {
		return text
	}

	fold := cases.Fold()
	var b strings.Builder
	rest := text
	for _, f := range fields {
		i := strings.Index(rest, f)
		b.WriteString(rest[:i])
		if _, bad := w.blocked[fold.String(f)]; bad {
			b.WriteString(strings.Repeat("*", utf8.RuneCountInString(f)))
		} else {
			b.WriteString(f)
		}
		rest = rest[i+len(f):]
	}
	b.WriteString(rest)
	return b.String()
}

func isSeparator(r rune) bool {
	return !(r == '\'' || r == '-' || isWordRune(r))
}

func isWordRune(r rune) bool {
	return r == '_' || ('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r >= utf8.RuneSelf
}
