package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/minssan9/aviation-bot/internal/config"
	"github.com/minssan9/aviation-bot/internal/eventbus"
	"github.com/minssan9/aviation-bot/internal/transport"
	logx "github.com/minssan9/aviation-bot/pkg/logx"
)

func New(cfg Config, compose Composer, subs Subscribers, send transport.Deliverer, bus eventbus.Bus, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 10
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 2 * time.Minute
	}
	s := &Service{
		cfg:     cfg,
		compose: compose,
		subs:    subs,
		send:    send,
		bus:     bus,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		slots:   map[string]*slotState{},
		crons:   map[string]*cron.Cron{},
	}
	for _, sl := range cfg.Slots {
		if sl.Location == nil {
			sl.Location = time.UTC
		}
		s.slots[sl.Name] = &slotState{slot: sl}
		s.order = append(s.order, sl.Name)
	}
	return s
}

// Start registers one cron entry per slot, each on a cron instance pinned
// to the slot's location. Entries do nothing but call TriggerNow, so the
// run path stays triggerable without a clock.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return nil
	}
	s.stopCh = make(chan struct{})

	for _, name := range s.order {
		st := s.slots[name]
		spec, err := cronSpec(st.slot.At)
		if err != nil {
			return fmt.Errorf("slot %q: %w", name, err)
		}
		c := s.crons[st.slot.Location.String()]
		if c == nil {
			c = cron.New(cron.WithLocation(st.slot.Location))
			s.crons[st.slot.Location.String()] = c
		}
		slotName := name
		id, err := c.AddFunc(spec, func() {
			if err := s.TriggerNow(slotName, "cron"); err != nil {
				s.log.Debug("scheduled trigger skipped",
					logx.String("slot", slotName), logx.Err(err))
			}
		})
		if err != nil {
			return fmt.Errorf("slot %q: register cron: %w", name, err)
		}
		st.entryID = id
		st.c = c
		s.log.Info("slot scheduled",
			logx.String("slot", name),
			logx.String("at", st.slot.At),
			logx.String("tz", st.slot.Location.String()))
	}
	for _, c := range s.crons {
		c.Start()
	}
	return nil
}

// Stop halts the schedulers and waits for any in-flight run to finish its
// dispatches. Per-recipient timeouts bound how long that can take.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.stopCh = nil
	crons := s.crons
	s.crons = map[string]*cron.Cron{}
	s.mu.Unlock()

	for _, c := range crons {
		<-c.Stop().Done()
	}

	done := make(chan struct{})
	go func() {
		s.runWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info("broadcast stopped")
	case <-ctx.Done():
		s.log.Warn("broadcast stop timed out with runs in flight")
	}
}

// Apply swaps in reloaded delivery settings. Slot definitions are fixed
// for the process lifetime; only pool and pacing knobs are live.
func (s *Service) Apply(cfg config.BroadcastConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.Workers > 0 {
		s.cfg.Workers = cfg.Workers
	}
	if cfg.RatePerSec > 0 {
		s.cfg.RatePerSec = cfg.RatePerSec
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	}
	if d, err := config.ParseDurationField("broadcast.send_timeout", cfg.SendTimeout); err == nil && d > 0 {
		s.cfg.SendTimeout = d
	}
	if d, err := config.ParseDurationField("broadcast.generate_timeout", cfg.GenerateTimeout); err == nil && d > 0 {
		s.cfg.GenerateTimeout = d
	}
}

// TriggerNow runs the named slot once. A trigger that lands while the
// slot is Running is dropped and counted, never queued.
func (s *Service) TriggerNow(slotName, trigger string) error {
	s.mu.Lock()
	st := s.slots[slotName]
	if st == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slotName)
	}
	if s.stopCh == nil {
		s.mu.Unlock()
		return fmt.Errorf("broadcast: not started")
	}
	// Reserved while holding mu; Stop nils stopCh under the same lock
	// before waiting, so it can never miss a run that passed the check.
	s.runWG.Add(1)
	s.mu.Unlock()

	st.mu.Lock()
	if st.running {
		st.dropped++
		st.mu.Unlock()
		s.runWG.Done()
		s.log.Warn("overlapping trigger dropped",
			logx.String("slot", slotName), logx.String("trigger", trigger))
		s.publish(eventbus.TypeBroadcastDropped, map[string]string{"slot": slotName, "trigger": trigger})
		return ErrSlotBusy
	}
	st.running = true
	st.runs++
	st.mu.Unlock()

	go func() {
		defer s.runWG.Done()
		rep := s.run(st, trigger)
		st.mu.Lock()
		st.last = &rep
		st.running = false
		st.mu.Unlock()
	}()
	return nil
}

// SlotNames returns the configured slots in order.
func (s *Service) SlotNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Status snapshots every slot.
func (s *Service) Status() []SlotStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SlotStatus, 0, len(s.order))
	for _, name := range s.order {
		st := s.slots[name]
		st.mu.Lock()
		v := SlotStatus{
			Name:    name,
			Running: st.running,
			Runs:    st.runs,
			Dropped: st.dropped,
			Last:    st.last,
		}
		st.mu.Unlock()
		if st.c != nil {
			if e := st.c.Entry(st.entryID); e.ID != 0 {
				v.NextAt = e.Next
			}
		}
		out = append(out, v)
	}
	return out
}

func (s *Service) publish(typ string, data any) {
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{Type: typ, Data: data})
	}
}

// cronSpec turns "HH:MM" into a daily five-field cron expression.
func cronSpec(at string) (string, error) {
	hh, mm, err := config.ParseHHMM(at)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d * * *", mm, hh), nil
}
