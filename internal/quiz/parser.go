package quiz

import (
	"fmt"
	"regexp"
	"strings"
)

// ParseError reports generated text that does not form a complete quiz.
// The candidate record is discarded; nothing derived from it is persisted.
type ParseError struct {
	Missing []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("quiz parse failed: missing %s", strings.Join(e.Missing, ", "))
}

type section int

const (
	sectionNone section = iota
	sectionQuestion
	sectionOptions
	sectionAnswer
	sectionExplanation
)

// Section labels the parser recognizes. Generation backends are prompted in
// Korean, but backends occasionally answer with English headings, so both
// alias sets are accepted.
var sectionTokens = []struct {
	sec    section
	tokens []string
}{
	{sectionQuestion, []string{"문제", "question"}},
	{sectionOptions, []string{"선택지", "options", "choices"}},
	{sectionAnswer, []string{"정답", "answer"}},
	{sectionExplanation, []string{"해설", "explanation"}},
}

var (
	optionLineRe = regexp.MustCompile(`^([A-Da-d])[).]\s*(.*)$`)
	standaloneRe = regexp.MustCompile(`(?i)\b([A-D])\b`)
)

// Parse scans raw generated text line by line, tracking a current-section
// cursor that switches whenever a line carries a section marker. If a marker
// reappears (same section or out of order), the last marker wins: the cursor
// switches and the re-opened section starts accumulating from scratch. That
// keeps malformed backend output deterministic instead of order-dependent.
//
// The returned record has no ID and no timestamps; those are assigned on save.
func Parse(raw string) (*Record, error) {
	var (
		cur         section
		question    []string
		explanation []string
		options     [4]string
		answer      string
	)

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if sec, rest, ok := matchMarker(trimmed); ok {
			cur = sec
			switch sec {
			case sectionQuestion:
				question = question[:0]
				if tail := stripDecoration(rest); tail != "" {
					question = append(question, tail)
				}
			case sectionExplanation:
				explanation = explanation[:0]
				if tail := stripDecoration(rest); tail != "" {
					explanation = append(explanation, tail)
				}
			case sectionAnswer:
				// The answer often sits on the marker line itself ("정답: A").
				answer = firstLetter(rest)
			}
			continue
		}

		switch cur {
		case sectionQuestion:
			question = append(question, trimmed)
		case sectionOptions:
			if m := optionLineRe.FindStringSubmatch(trimmed); m != nil {
				idx := letterIndex(m[1])
				options[idx] = strings.TrimSpace(m[2])
			}
			// Anything not shaped like an option is ignored.
		case sectionAnswer:
			if answer == "" {
				answer = firstLetter(trimmed)
			}
		case sectionExplanation:
			explanation = append(explanation, trimmed)
		}
	}

	rec := &Record{
		Question:      strings.Join(question, " "),
		Options:       options,
		CorrectAnswer: answer,
		Explanation:   strings.Join(explanation, " "),
	}

	var missing []string
	if rec.Question == "" {
		missing = append(missing, "question")
	}
	for i, opt := range rec.Options {
		if opt == "" {
			missing = append(missing, "option "+string(Letters[i]))
		}
	}
	if rec.CorrectAnswer == "" {
		missing = append(missing, "answer")
	}
	if len(missing) > 0 {
		return nil, &ParseError{Missing: missing}
	}
	return rec, nil
}

// matchMarker reports whether a line is a section marker and returns the
// remainder of the line after the label. Markers are matched on the
// canonical label only; decorative formatting around it ("**문제:**",
// "…정답…", "## Answer") is irrelevant. A label counts only when everything
// before it on the line is decoration and the character right after it is
// decoration, whitespace, or end of line, so a label embedded mid-sentence
// does not flip the cursor.
func matchMarker(line string) (section, string, bool) {
	lower := strings.ToLower(line)
	for _, st := range sectionTokens {
		for _, tok := range st.tokens {
			idx := strings.Index(lower, tok)
			if idx < 0 {
				continue
			}
			if !allDecoration(line[:idx]) {
				continue
			}
			rest := line[idx+len(tok):]
			if rest != "" && !boundaryRune(firstRune(rest)) {
				continue
			}
			return st.sec, rest, true
		}
	}
	return sectionNone, "", false
}

func allDecoration(s string) bool {
	for _, r := range s {
		if !boundaryRune(r) {
			return false
		}
	}
	return true
}

func boundaryRune(r rune) bool {
	switch r {
	case '*', '#', '…', '.', ':', '：', '-', '[', ']', '<', '>', '(', ')', ' ', '\t':
		return true
	}
	return false
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// stripDecoration trims marker decoration off text that shares the line
// with the label ("문제: 다음 중 ..." keeps "다음 중 ...").
func stripDecoration(s string) string {
	return strings.TrimSpace(strings.TrimLeftFunc(s, boundaryRune))
}

func firstLetter(line string) string {
	if m := standaloneRe.FindStringSubmatch(line); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

func letterIndex(letter string) int {
	c := letter[0]
	if c >= 'a' && c <= 'd' {
		c -= 'a' - 'A'
	}
	return int(c - 'A')
}
