package telegram

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/minssan9/aviation-bot/internal/provider"
	"github.com/minssan9/aviation-bot/internal/services/broadcast"
	"github.com/minssan9/aviation-bot/internal/store"
	logx "github.com/minssan9/aviation-bot/pkg/logx"
)

// Subscriptions is the roster surface the command handlers need.
type Subscriptions interface {
	Subscribe(ctx context.Context, chatID int64) error
	Unsubscribe(ctx context.Context, chatID int64) (bool, error)
	IsSubscribed(ctx context.Context, chatID int64) (bool, error)
	SubscriberCount(ctx context.Context) (int64, error)
}

// Content produces rendered quiz messages on demand.
type Content interface {
	SlotMessage(ctx context.Context, slotName, topicOverride string) (string, error)
	AdHocQuiz(ctx context.Context, topicName string) (string, error)
	ProbeAll(ctx context.Context) map[string]bool
}

// Broadcaster exposes slot introspection for /status.
type Broadcaster interface {
	SlotNames() []string
	Status() []broadcast.SlotStatus
}

// QuizStats is the read-only statistics surface for /status.
type QuizStats interface {
	QuizStats(ctx context.Context) (*store.Stats, error)
}

type CommandDeps struct {
	Subs    Subscriptions
	Content Content
	Casts   Broadcaster
	Stats   QuizStats
}

const (
	replyTimeout = 10 * time.Second
	quizTimeout  = 3 * time.Minute
)

var htmlReply = &tele.SendOptions{ParseMode: tele.ModeHTML, DisableWebPagePreview: true}

// AttachCommands registers the user-facing handlers. Must run before Start.
func (a *Adapter) AttachCommands(d CommandDeps) {
	a.bot.Handle("/start", func(c tele.Context) error { return a.handleStart(c, d) })
	a.bot.Handle("/stop", func(c tele.Context) error { return a.handleStop(c, d) })
	a.bot.Handle("/status", func(c tele.Context) error { return a.handleStatus(c, d) })
	a.bot.Handle("/now", func(c tele.Context) error { return a.handleNow(c, d) })
	a.bot.Handle("/quiz", func(c tele.Context) error { return a.handleQuiz(c, d) })
	a.bot.Handle("/help", func(c tele.Context) error { return c.Send(helpText, htmlReply) })
}

func (a *Adapter) handleStart(c tele.Context, d CommandDeps) error {
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	chatID := c.Chat().ID
	if err := d.Subs.Subscribe(ctx, chatID); err != nil {
		a.log.Error("subscribe failed", logx.Int64("chat_id", chatID), logx.Err(err))
		return c.Send(msgInternalError, htmlReply)
	}
	a.log.Info("subscriber joined", logx.Int64("chat_id", chatID))
	return c.Send(welcomeText, htmlReply)
}

func (a *Adapter) handleStop(c tele.Context, d CommandDeps) error {
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	chatID := c.Chat().ID
	removed, err := d.Subs.Unsubscribe(ctx, chatID)
	if err != nil {
		a.log.Error("unsubscribe failed", logx.Int64("chat_id", chatID), logx.Err(err))
		return c.Send(msgInternalError, htmlReply)
	}
	if !removed {
		return c.Send(msgNotSubscribed, htmlReply)
	}
	a.log.Info("subscriber left", logx.Int64("chat_id", chatID))
	return c.Send(goodbyeText, htmlReply)
}

func (a *Adapter) handleStatus(c tele.Context, d CommandDeps) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	chatID := c.Chat().ID
	subscribed, err := d.Subs.IsSubscribed(ctx, chatID)
	if err != nil {
		a.log.Error("status lookup failed", logx.Int64("chat_id", chatID), logx.Err(err))
		return c.Send(msgInternalError, htmlReply)
	}
	count, _ := d.Subs.SubscriberCount(ctx)

	var b strings.Builder
	b.WriteString("<b>📊 상태</b>\n\n")
	if subscribed {
		b.WriteString("구독: ✅ 구독 중\n")
	} else {
		b.WriteString("구독: ❌ 미구독 (/start 로 시작)\n")
	}
	fmt.Fprintf(&b, "전체 구독자: %d명\n", count)

	if d.Stats != nil {
		if st, err := d.Stats.QuizStats(ctx); err == nil {
			fmt.Fprintf(&b, "저장된 문제: %d개 (활성 %d개)\n", st.TotalAll, st.TotalActive)
		}
	}

	if d.Casts != nil {
		b.WriteString("\n<b>발송 일정</b>\n")
		for _, sl := range d.Casts.Status() {
			state := "대기"
			if sl.Running {
				state = "발송 중"
			}
			fmt.Fprintf(&b, "• %s - %s", sl.Name, state)
			if !sl.NextAt.IsZero() {
				fmt.Fprintf(&b, ", 다음 %s", sl.NextAt.Format("01/02 15:04"))
			}
			b.WriteString("\n")
		}
	}

	if d.Content != nil {
		avail := d.Content.ProbeAll(ctx)
		names := make([]string, 0, len(avail))
		for n := range avail {
			names = append(names, n)
		}
		sort.Strings(names)
		b.WriteString("\n<b>생성 백엔드</b>\n")
		for _, n := range names {
			mark := "❌"
			if avail[n] {
				mark = "✅"
			}
			fmt.Fprintf(&b, "• %s %s\n", n, mark)
		}
	}
	return c.Send(b.String(), htmlReply)
}

// handleNow composes the message the caller would get at the nearest slot
// and sends it to that chat only.
func (a *Adapter) handleNow(c tele.Context, d CommandDeps) error {
	ctx, cancel := context.WithTimeout(context.Background(), quizTimeout)
	defer cancel()

	slot := pickSlot(d.Casts.SlotNames(), time.Now())
	text, err := d.Content.SlotMessage(ctx, slot, "")
	if err != nil {
		return a.sendComposeError(c, err)
	}
	return c.Send(text, htmlReply)
}

func (a *Adapter) handleQuiz(c tele.Context, d CommandDeps) error {
	ctx, cancel := context.WithTimeout(context.Background(), quizTimeout)
	defer cancel()

	topic := strings.TrimSpace(c.Message().Payload)
	text, err := d.Content.AdHocQuiz(ctx, topic)
	if err != nil {
		return a.sendComposeError(c, err)
	}
	return c.Send(text, htmlReply)
}

func (a *Adapter) sendComposeError(c tele.Context, err error) error {
	a.log.Error("on-demand quiz failed", logx.Int64("chat_id", c.Chat().ID), logx.Err(err))
	if errors.Is(err, provider.ErrAllExhausted) || errors.Is(err, provider.ErrNoProviders) {
		return c.Send(msgProvidersDown, htmlReply)
	}
	return c.Send(msgInternalError, htmlReply)
}

// pickSlot maps the current hour onto the conventional slot names when the
// config uses them, otherwise falls back to the first configured slot.
func pickSlot(names []string, now time.Time) string {
	if len(names) == 0 {
		return ""
	}
	want := "evening"
	switch h := now.Hour(); {
	case h < 12:
		want = "morning"
	case h < 19:
		want = "afternoon"
	}
	for _, n := range names {
		if n == want {
			return n
		}
	}
	return names[0]
}
