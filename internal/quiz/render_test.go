package quiz

import (
	"strings"
	"testing"
)

func renderSample() *Record {
	return &Record{
		Topic:         "기초 항법",
		KnowledgeArea: "VOR",
		Question:      "A < B 인 경우는?",
		Options:       [4]string{"하나", "둘", "셋", "넷"},
		CorrectAnswer: "B",
		Explanation:   "해설 본문",
	}
}

func TestRenderBroadcastHeaders(t *testing.T) {
	t.Parallel()

	got := RenderBroadcast("morning", renderSample())
	if !strings.Contains(got, "오늘의 항공지식") {
		t.Errorf("missing morning header: %q", got)
	}
	if !strings.Contains(got, "B) 둘") {
		t.Errorf("missing option line: %q", got)
	}
	// User-facing text must be HTML-escaped.
	if !strings.Contains(got, "A &lt; B") {
		t.Errorf("question not escaped: %q", got)
	}

	fallback := RenderBroadcast("adhoc", renderSample())
	if !strings.Contains(fallback, "✈️ 항공지식") {
		t.Errorf("missing fallback header: %q", fallback)
	}
}

func TestRenderQuizIncludesAreaAndExplanation(t *testing.T) {
	t.Parallel()

	got := RenderQuiz(renderSample())
	for _, want := range []string{"맞춤형 퀴즈", "VOR", "해설 본문", "<b>정답</b>: B) 둘"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderQuiz() missing %q in %q", want, got)
		}
	}

	rec := renderSample()
	rec.Explanation = ""
	if strings.Contains(RenderQuiz(rec), "해설") {
		t.Error("explanation block rendered for empty explanation")
	}
}

func TestRecordOption(t *testing.T) {
	t.Parallel()

	rec := renderSample()
	tests := []struct {
		letter string
		want   string
	}{
		{"A", "하나"},
		{"B", "둘"},
		{"d", "넷"},
		{"E", ""},
		{"", ""},
		{"AB", ""},
	}
	for _, tt := range tests {
		if got := rec.Option(tt.letter); got != tt.want {
			t.Errorf("Option(%q) = %q, want %q", tt.letter, got, tt.want)
		}
	}
}
