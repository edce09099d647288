package quiz

import (
	"errors"
	"strings"
	"testing"
)

const wellFormed = `**문제:**
다음 중 양력 발생의 주된 원리는 무엇입니까?

**선택지:**
A) 베르누이 정리
B) 파스칼의 원리
C) 아르키메데스의 원리
D) 훅의 법칙

**정답:** A

**해설:**
날개 윗면의 유속이 빨라져 압력이 낮아지는 것이 양력의 핵심이다.`

func TestParseWellFormed(t *testing.T) {
	t.Parallel()

	rec, err := Parse(wellFormed)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if want := "다음 중 양력 발생의 주된 원리는 무엇입니까?"; rec.Question != want {
		t.Errorf("Question = %q, want %q", rec.Question, want)
	}
	if rec.Options[0] != "베르누이 정리" || rec.Options[3] != "훅의 법칙" {
		t.Errorf("Options = %v", rec.Options)
	}
	if rec.CorrectAnswer != "A" {
		t.Errorf("CorrectAnswer = %q, want A", rec.CorrectAnswer)
	}
	if !strings.Contains(rec.Explanation, "양력의 핵심") {
		t.Errorf("Explanation = %q", rec.Explanation)
	}
}

func TestParseDecoratedMarkers(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"### Question",
		"What does VOR stand for?",
		"## Options:",
		"a. VHF Omnidirectional Range",
		"b) Visual Orbit Radar",
		"c. Vertical Obstacle Report",
		"d) Variable Oscillation Relay",
		"…정답… B",
		"Explanation: Standard navigation acronym.",
	}, "\n")

	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rec.Question != "What does VOR stand for?" {
		t.Errorf("Question = %q", rec.Question)
	}
	if rec.Options[1] != "Visual Orbit Radar" {
		t.Errorf("Options[1] = %q", rec.Options[1])
	}
	if rec.CorrectAnswer != "B" {
		t.Errorf("CorrectAnswer = %q, want B", rec.CorrectAnswer)
	}
	if rec.Explanation != "Standard navigation acronym." {
		t.Errorf("Explanation = %q", rec.Explanation)
	}
}

func TestParseAnswerOnFollowingLine(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"문제: 표준 대기에서 해수면 기압은?",
		"선택지:",
		"A) 1013.25 hPa",
		"B) 1000.00 hPa",
		"C) 29.92 hPa",
		"D) 760 hPa",
		"정답:",
		"C",
		"해설: 단위에 주의한다.",
	}, "\n")

	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rec.CorrectAnswer != "C" {
		t.Errorf("CorrectAnswer = %q, want C", rec.CorrectAnswer)
	}
	if rec.Question != "표준 대기에서 해수면 기압은?" {
		t.Errorf("Question = %q", rec.Question)
	}
}

// A repeated marker reopens its section and the previous accumulation is
// discarded: the last marker wins.
func TestParseLastMarkerWins(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"문제:",
		"버려질 첫 번째 문제",
		"문제:",
		"실제 문제는 이것이다",
		"선택지:",
		"A) 하나",
		"B) 둘",
		"C) 셋",
		"D) 넷",
		"정답: D",
		"해설: 해설.",
	}, "\n")

	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rec.Question != "실제 문제는 이것이다" {
		t.Errorf("Question = %q, want the re-opened section only", rec.Question)
	}
}

func TestParseMissingSections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		missing string
	}{
		{
			name: "missing option D",
			raw: strings.Join([]string{
				"문제: 질문",
				"선택지:",
				"A) 하나",
				"B) 둘",
				"C) 셋",
				"정답: A",
				"해설: 해설",
			}, "\n"),
			missing: "option D",
		},
		{
			name: "missing answer",
			raw: strings.Join([]string{
				"문제: 질문",
				"선택지:",
				"A) 하나",
				"B) 둘",
				"C) 셋",
				"D) 넷",
				"해설: 해설",
			}, "\n"),
			missing: "answer",
		},
		{
			name:    "free text without markers",
			raw:     "항공역학은 재미있다. 양력과 항력을 공부하자.",
			missing: "question",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.raw)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse() error = %v, want *ParseError", err)
			}
			found := false
			for _, m := range perr.Missing {
				if m == tt.missing {
					found = true
				}
			}
			if !found {
				t.Errorf("Missing = %v, want to contain %q", perr.Missing, tt.missing)
			}
		})
	}
}

// A label inside running text must not flip the section cursor.
func TestParseLabelMidSentence(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"문제:",
		"이 question 이라는 단어가 포함된 문장은 문제의 일부다.",
		"선택지:",
		"A) 하나",
		"B) 둘",
		"C) 셋",
		"D) 넷",
		"정답: B",
	}, "\n")

	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !strings.Contains(rec.Question, "question") {
		t.Errorf("Question = %q, mid-sentence label should stay in the question", rec.Question)
	}
}

func TestParseExplanationOptional(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"문제: 질문",
		"선택지:",
		"A) 하나",
		"B) 둘",
		"C) 셋",
		"D) 넷",
		"정답: A",
	}, "\n")

	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rec.Explanation != "" {
		t.Errorf("Explanation = %q, want empty", rec.Explanation)
	}
}
