// Package app assembles the bot: config, logging, storage, providers,
// composer, broadcast scheduler and the Telegram surface.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/minssan9/aviation-bot/internal/config"
	"github.com/minssan9/aviation-bot/internal/content"
	"github.com/minssan9/aviation-bot/internal/eventbus"
	"github.com/minssan9/aviation-bot/internal/provider"
	"github.com/minssan9/aviation-bot/internal/quiz"
	"github.com/minssan9/aviation-bot/internal/services/broadcast"
	"github.com/minssan9/aviation-bot/internal/store"
	"github.com/minssan9/aviation-bot/internal/topic"
	"github.com/minssan9/aviation-bot/internal/transport/telegram"
	logx "github.com/minssan9/aviation-bot/pkg/logx"
)

// defaultTimezone applies to slots that omit one. The service is aimed at
// Korean-speaking students, so the original KST schedule is the default.
const defaultTimezone = "Asia/Seoul"

type App struct {
	cfgm *config.Manager
	logs *logx.Service
	log  logx.Logger
	bus  eventbus.Bus

	store    *store.Store
	orc      *provider.Orchestrator
	composer *content.Composer
	adapter  *telegram.Adapter
	caster   *broadcast.Service

	reloadWG    sync.WaitGroup
	watchCancel context.CancelFunc
}

func New(ctx context.Context, cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logs, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		File:    fileLogConfig(cfg.Logging.File),
	})
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	st, err := store.Open(store.Config{
		Path:        cfg.Storage.Path,
		BusyTimeout: mustDuration(cfg.Storage.BusyTimeout, 5*time.Second),
	}, log.With(logx.String("comp", "store")))
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	provs, err := provider.Build(ctx, cfg.Providers, log.With(logx.String("comp", "provider")))
	if err != nil {
		st.Close()
		logs.Close()
		return nil, fmt.Errorf("build providers: %w", err)
	}
	orc := provider.NewOrchestrator(provs, quiz.Prompt, provider.Options{}, log.With(logx.String("comp", "orchestrator")))

	composer := content.NewComposer(orc, st, topic.NewCalendar(), log.With(logx.String("comp", "content")))

	pollTimeout, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		st.Close()
		logs.Close()
		return nil, err
	}
	ad, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		st.Close()
		logs.Close()
		return nil, err
	}

	bus := eventbus.New()

	slots, err := buildSlots(cfg.Broadcast.Slots)
	if err != nil {
		st.Close()
		logs.Close()
		return nil, err
	}
	caster := broadcast.New(broadcast.Config{
		Slots:           slots,
		Workers:         cfg.Broadcast.Workers,
		RatePerSec:      cfg.Broadcast.RatePerSec,
		SendTimeout:     mustDuration(cfg.Broadcast.SendTimeout, 10*time.Second),
		GenerateTimeout: mustDuration(cfg.Broadcast.GenerateTimeout, 2*time.Minute),
	}, composer, st, ad, bus, log.With(logx.String("comp", "broadcast")))

	ad.AttachCommands(telegram.CommandDeps{
		Subs:    st,
		Content: composer,
		Casts:   caster,
		Stats:   st,
	})

	return &App{
		cfgm:     cfgm,
		logs:     logs,
		log:      log,
		bus:      bus,
		store:    st,
		orc:      orc,
		composer: composer,
		adapter:  ad,
		caster:   caster,
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	if err := a.caster.Start(ctx); err != nil {
		return err
	}
	a.adapter.Start(ctx)

	wctx, cancel := context.WithCancel(ctx)
	a.watchCancel = cancel
	a.reloadWG.Add(1)
	go func() {
		defer a.reloadWG.Done()
		if err := a.cfgm.Watch(wctx); err != nil {
			a.log.Warn("config watch unavailable", logx.Err(err))
		}
	}()
	ch := a.cfgm.Subscribe(4)
	a.reloadWG.Add(1)
	go func() {
		defer a.reloadWG.Done()
		for {
			select {
			case <-wctx.Done():
				return
			case cfg, ok := <-ch:
				if !ok {
					return
				}
				a.applyReload(cfg)
			}
		}
	}()

	events, unsub := a.bus.Subscribe(16)
	a.reloadWG.Add(1)
	go func() {
		defer a.reloadWG.Done()
		defer unsub()
		for {
			select {
			case <-wctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				a.logEvent(ev)
			}
		}
	}()

	a.log.Info("started",
		logx.Int("providers", len(a.orc.Providers())),
		logx.Int("slots", len(a.caster.SlotNames())))
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	if a.watchCancel != nil {
		a.watchCancel()
	}
	a.reloadWG.Wait()

	a.caster.Stop(ctx)
	if err := a.adapter.Stop(ctx); err != nil {
		a.log.Warn("telegram stop", logx.Err(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("store close", logx.Err(err))
	}
	a.log.Info("stopped")
	return a.logs.Close()
}

// applyReload pushes hot-reloadable settings into running services.
// Token, providers, storage path and slot definitions need a restart.
func (a *App) applyReload(cfg *config.Config) {
	a.logs.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		File:    fileLogConfig(cfg.Logging.File),
	})
	a.caster.Apply(cfg.Broadcast)
	a.bus.Publish(eventbus.Event{Type: eventbus.TypeConfigReloaded})
	a.log.Info("config reloaded")
}

// logEvent mirrors broadcast lifecycle events into the app log so a single
// log stream tells the whole story of a run.
func (a *App) logEvent(ev eventbus.Event) {
	switch ev.Type {
	case eventbus.TypeBroadcastFinished:
		rep, ok := ev.Data.(broadcast.RunReport)
		if !ok {
			return
		}
		log := a.log.With(
			logx.String("slot", rep.Slot),
			logx.String("trigger", rep.Trigger),
			logx.Int("total", rep.Total),
			logx.Int("delivered", rep.Delivered),
			logx.Int("failed", rep.Failed),
			logx.Int("unsubscribed", rep.Unsubscribed),
			logx.Duration("took", rep.Duration),
		)
		if rep.Err != "" {
			log.Warn("broadcast finished with error", logx.String("error", rep.Err))
			return
		}
		log.Info("broadcast finished")
	case eventbus.TypeBroadcastDropped:
		a.log.Warn("broadcast trigger dropped", logx.Any("detail", ev.Data))
	case eventbus.TypeSubscriberRemoved:
		a.log.Info("subscriber removed after permanent delivery failure", logx.Any("chat", ev.Data))
	}
}

func buildSlots(cfgs []config.SlotConfig) ([]broadcast.Slot, error) {
	out := make([]broadcast.Slot, 0, len(cfgs))
	for _, sc := range cfgs {
		tz := sc.Timezone
		if tz == "" {
			tz = defaultTimezone
		}
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("slot %q: %w", sc.Name, err)
		}
		out = append(out, broadcast.Slot{
			Name:     sc.Name,
			At:       sc.At,
			Location: loc,
			Topic:    sc.Topic,
		})
	}
	return out, nil
}

func fileLogConfig(fc *config.FileLogConfig) logx.FileConfig {
	if fc == nil {
		return logx.FileConfig{}
	}
	return logx.FileConfig{Enabled: fc.Enabled, Path: fc.Path}
}

// mustDuration is for fields Validate has already vetted.
func mustDuration(raw string, def time.Duration) time.Duration {
	d, err := config.ParseDurationOrDefault("", raw, def)
	if err != nil {
		return def
	}
	return d
}
