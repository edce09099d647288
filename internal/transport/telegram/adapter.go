// Package telegram backs the delivery interface with a telebot long-poll
// bot and hosts the user-facing command handlers.
package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/minssan9/aviation-bot/internal/transport"
	logx "github.com/minssan9/aviation-bot/pkg/logx"
)

type Config struct {
	Token       string
	PollTimeout time.Duration
}

type Adapter struct {
	cfg Config
	log logx.Logger
	bot *tele.Bot

	runMu   sync.Mutex
	running bool
	runWG   sync.WaitGroup
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	return &Adapter{cfg: cfg, log: log, bot: b}, nil
}

// Start begins long polling. Handlers must be attached before Start.
func (a *Adapter) Start(ctx context.Context) {
	a.runMu.Lock()
	if a.running {
		a.runMu.Unlock()
		return
	}
	a.running = true
	a.runWG.Add(1)
	a.runMu.Unlock()

	go func() {
		defer a.runWG.Done()
		a.log.Info("polling started")
		a.bot.Start()
	}()
}

// Stop ends polling. It never blocks shutdown on a pending long-poll for
// longer than a short grace window.
func (a *Adapter) Stop(ctx context.Context) error {
	a.runMu.Lock()
	wasRunning := a.running
	a.running = false
	a.runMu.Unlock()
	if !wasRunning {
		return nil
	}

	go a.bot.Stop()

	done := make(chan struct{})
	go func() {
		a.runWG.Wait()
		close(done)
	}()

	grace := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if rem := time.Until(dl); rem > 0 && rem < grace {
			grace = rem
		}
	}
	t := time.NewTimer(grace)
	defer t.Stop()

	select {
	case <-done:
		a.log.Info("polling stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		a.log.Warn("telegram stop grace elapsed; continuing shutdown")
		return nil
	}
}

// Send implements transport.Deliverer. Errors come back classified so the
// fan-out can tell a dead chat from a flaky network.
func (a *Adapter) Send(ctx context.Context, chatID int64, text string, opt *transport.SendOptions) error {
	if err := ctx.Err(); err != nil {
		return &transport.DeliveryError{Kind: transport.FailureTransient, Err: err}
	}
	if opt == nil {
		opt = &transport.SendOptions{ParseMode: "HTML", DisablePreview: true}
	}
	sendOpt := &tele.SendOptions{
		ParseMode:             opt.ParseMode,
		DisableWebPagePreview: opt.DisablePreview,
	}
	_, err := a.bot.Send(&tele.Chat{ID: chatID}, text, sendOpt)
	if err != nil {
		return classify(err)
	}
	return nil
}

// classify wraps telebot errors in a DeliveryError. Anything not known to
// mean "this chat is gone for good" counts as transient.
func classify(err error) error {
	switch {
	case errors.Is(err, tele.ErrBlockedByUser),
		errors.Is(err, tele.ErrUserIsDeactivated),
		errors.Is(err, tele.ErrChatNotFound),
		errors.Is(err, tele.ErrNotStartedByUser),
		errors.Is(err, tele.ErrKickedFromGroup),
		errors.Is(err, tele.ErrKickedFromSuperGroup):
		return &transport.DeliveryError{Kind: transport.FailurePermanent, Err: err}
	}
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return &transport.DeliveryError{Kind: transport.FailureTransient, Err: err}
	}
	return &transport.DeliveryError{Kind: transport.FailureTransient, Err: err}
}
