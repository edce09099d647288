package quiz

import (
	"fmt"
	"strings"

	"github.com/minssan9/aviation-bot/pkg/tgui"
)

var slotHeaders = map[string]string{
	"morning":   "🌅 오늘의 항공지식",
	"afternoon": "☀️ 오후 항공지식",
	"evening":   "🌙 저녁 항공지식",
}

// RenderBroadcast renders a slot broadcast message in Telegram HTML.
// Unknown slot names fall back to a neutral header so ad-hoc slots still work.
func RenderBroadcast(slotName string, rec *Record) string {
	header, ok := slotHeaders[slotName]
	if !ok {
		header = "✈️ 항공지식"
	}
	var b strings.Builder
	b.WriteString(tgui.B(header).String())
	b.WriteString("\n\n")
	b.WriteString("📚 " + tgui.B("주제").String() + ": " + tgui.Esc(rec.Topic).String())
	b.WriteString("\n\n")
	b.WriteString(renderBody(rec).String())
	return b.String()
}

// RenderQuiz renders an ad-hoc quiz (the /quiz command) in Telegram HTML.
func RenderQuiz(rec *Record) string {
	var b strings.Builder
	b.WriteString(tgui.B("🧠 맞춤형 퀴즈").String())
	b.WriteString("\n\n")
	b.WriteString("📚 " + tgui.B("주제").String() + ": " + tgui.Esc(rec.Topic).String())
	b.WriteString("\n")
	b.WriteString("🎯 " + tgui.B("영역").String() + ": " + tgui.Esc(rec.KnowledgeArea).String())
	b.WriteString("\n\n")
	b.WriteString(renderBody(rec).String())
	return b.String()
}

func renderBody(rec *Record) tgui.H {
	var b strings.Builder
	b.WriteString(tgui.B("문제").String())
	b.WriteString("\n")
	b.WriteString(tgui.Esc(rec.Question).String())
	b.WriteString("\n\n")
	for i, opt := range rec.Options {
		fmt.Fprintf(&b, "%c) %s\n", Letters[i], tgui.Esc(opt))
	}
	b.WriteString("\n")
	b.WriteString(tgui.B("정답").String())
	b.WriteString(": ")
	b.WriteString(tgui.Esc(rec.CorrectAnswer).String())
	if opt := rec.Option(rec.CorrectAnswer); opt != "" {
		b.WriteString(") ")
		b.WriteString(tgui.Esc(opt).String())
	}
	if rec.Explanation != "" {
		b.WriteString("\n\n")
		b.WriteString(tgui.B("해설").String())
		b.WriteString("\n")
		b.WriteString(tgui.Esc(rec.Explanation).String())
	}
	return tgui.Raw(b.String())
}
