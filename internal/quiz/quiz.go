// Package quiz turns free-form generated text into validated four-choice
// quiz records and renders them for delivery.
package quiz

import "time"

// Option letters, in option order.
const Letters = "ABCD"

// Record is one validated multiple-choice question. Once persisted, only
// UsageCount, LastUsedAt and IsActive may change.
type Record struct {
	ID            int64
	Topic         string
	KnowledgeArea string
	Question      string
	Options       [4]string // indexed by letter: A=0 .. D=3
	CorrectAnswer string    // "A".."D"
	Explanation   string    // optional
	Provider      string
	UsageCount    int64
	LastUsedAt    *time.Time
	IsActive      bool
	CreatedAt     time.Time
}

// Option returns the option text for a letter ("A".."D", case-insensitive).
func (r *Record) Option(letter string) string {
	if len(letter) != 1 {
		return ""
	}
	c := letter[0]
	if c >= 'a' && c <= 'd' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > 'D' {
		return ""
	}
	return r.Options[c-'A']
}
