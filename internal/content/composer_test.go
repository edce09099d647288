package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/minssan9/aviation-bot/internal/provider"
	"github.com/minssan9/aviation-bot/internal/quiz"
	"github.com/minssan9/aviation-bot/internal/topic"
	logx "github.com/minssan9/aviation-bot/pkg/logx"
)

const generatedQuiz = `문제: 순항 중 엔진이 정지하면 가장 먼저 할 일은?
선택지:
A) Best Glide Speed 설정
B) 즉시 착륙 지점 선언
C) 관제 기관 호출
D) 연료 차단
정답: A
해설: 활공 거리를 확보하는 것이 최우선이다.`

type stubProvider struct {
	name string
	text string
	err  error
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return s.text, s.err
}
func (s *stubProvider) Probe(ctx context.Context) bool { return s.err == nil }

func newTestComposer(p provider.Provider) *Composer {
	orc := provider.NewOrchestrator([]provider.Provider{p}, quiz.Prompt, provider.Options{}, logx.Nop())
	return NewComposer(orc, nil, topic.NewCalendar(), logx.Nop())
}

func TestQuizStampsMetadata(t *testing.T) {
	t.Parallel()

	c := newTestComposer(&stubProvider{name: "gemini", text: generatedQuiz})
	rec, err := c.Quiz(context.Background(), "응급상황 및 안전", "Engine Failure")
	if err != nil {
		t.Fatalf("Quiz() error = %v", err)
	}
	if rec.Topic != "응급상황 및 안전" || rec.KnowledgeArea != "Engine Failure" {
		t.Errorf("metadata = %q/%q", rec.Topic, rec.KnowledgeArea)
	}
	if rec.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", rec.Provider)
	}
	if rec.CorrectAnswer != "A" {
		t.Errorf("CorrectAnswer = %q", rec.CorrectAnswer)
	}
}

func TestQuizRejectsMalformedText(t *testing.T) {
	t.Parallel()

	c := newTestComposer(&stubProvider{name: "gemini", text: "이것은 퀴즈가 아니다"})
	_, err := c.Quiz(context.Background(), "항법", "VOR")
	var perr *quiz.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Quiz() error = %v, want *quiz.ParseError", err)
	}
}

func TestQuizPropagatesExhaustion(t *testing.T) {
	t.Parallel()

	c := newTestComposer(&stubProvider{name: "gemini", err: errors.New("quota")})
	_, err := c.Quiz(context.Background(), "항법", "VOR")
	if !errors.Is(err, provider.ErrAllExhausted) {
		t.Fatalf("Quiz() error = %v, want ErrAllExhausted", err)
	}
}

func TestSlotMessageRendersSlotHeader(t *testing.T) {
	t.Parallel()

	c := newTestComposer(&stubProvider{name: "gemini", text: generatedQuiz})
	got, err := c.SlotMessage(context.Background(), "morning", "")
	if err != nil {
		t.Fatalf("SlotMessage() error = %v", err)
	}
	if !strings.Contains(got, "오늘의 항공지식") {
		t.Errorf("missing morning header: %q", got)
	}
}

func TestSlotMessageTopicOverride(t *testing.T) {
	t.Parallel()

	c := newTestComposer(&stubProvider{name: "gemini", text: generatedQuiz})
	got, err := c.SlotMessage(context.Background(), "evening", "야간 비행")
	if err != nil {
		t.Fatalf("SlotMessage() error = %v", err)
	}
	if !strings.Contains(got, "야간 비행") {
		t.Errorf("override topic not rendered: %q", got)
	}
}

func TestAdHocQuizUserTopic(t *testing.T) {
	t.Parallel()

	c := newTestComposer(&stubProvider{name: "gemini", text: generatedQuiz})
	got, err := c.AdHocQuiz(context.Background(), "제트 엔진")
	if err != nil {
		t.Fatalf("AdHocQuiz() error = %v", err)
	}
	if !strings.Contains(got, "제트 엔진") {
		t.Errorf("user topic not rendered: %q", got)
	}
	if !strings.Contains(got, "맞춤형 퀴즈") {
		t.Errorf("missing ad-hoc header: %q", got)
	}
}

func TestAdHocQuizDefaultsToCalendar(t *testing.T) {
	t.Parallel()

	c := newTestComposer(&stubProvider{name: "gemini", text: generatedQuiz})
	got, err := c.AdHocQuiz(context.Background(), "")
	if err != nil {
		t.Fatalf("AdHocQuiz() error = %v", err)
	}
	if got == "" {
		t.Fatal("empty message")
	}
}
