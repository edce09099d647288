package broadcast

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/minssan9/aviation-bot/internal/eventbus"
	"github.com/minssan9/aviation-bot/internal/transport"
	logx "github.com/minssan9/aviation-bot/pkg/logx"
)

// run executes one slot occurrence: compose, snapshot, fan out.
// It deliberately ignores Stop(); an accepted run finishes its dispatches,
// bounded by the per-recipient send timeout.
func (s *Service) run(st *slotState, trigger string) (rep RunReport) {
	s.mu.Lock()
	workers := s.cfg.Workers
	sendTimeout := s.cfg.SendTimeout
	genTimeout := s.cfg.GenerateTimeout
	lim := s.limiter
	s.mu.Unlock()

	rep = RunReport{Slot: st.slot.Name, Trigger: trigger, StartedAt: time.Now()}
	defer func() {
		rep.Duration = time.Since(rep.StartedAt)
		s.publish(eventbus.TypeBroadcastFinished, rep)
	}()

	s.log.Info("broadcast run started",
		logx.String("slot", st.slot.Name), logx.String("trigger", trigger))
	s.publish(eventbus.TypeBroadcastStarted, map[string]string{"slot": st.slot.Name, "trigger": trigger})

	genCtx, cancel := context.WithTimeout(context.Background(), genTimeout)
	text, err := s.compose.SlotMessage(genCtx, st.slot.Name, st.slot.Topic)
	cancel()
	if err != nil {
		// No content means nothing to send; the run is abandoned whole.
		rep.Err = err.Error()
		s.log.Error("broadcast run abandoned, no content",
			logx.String("slot", st.slot.Name), logx.Err(err))
		return rep
	}

	snapCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	targets, err := s.subs.Snapshot(snapCtx)
	cancel()
	if err != nil {
		rep.Err = err.Error()
		s.log.Error("broadcast run abandoned, subscriber snapshot failed",
			logx.String("slot", st.slot.Name), logx.Err(err))
		return rep
	}
	rep.Total = len(targets)
	if len(targets) == 0 {
		s.log.Info("broadcast run finished, no subscribers", logx.String("slot", st.slot.Name))
		return rep
	}

	var delivered, failed, removed atomic.Int64
	queue := make(chan int64, len(targets))
	for _, id := range targets {
		queue <- id
	}
	close(queue)

	if workers > len(targets) {
		workers = len(targets)
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		idx := i
		go func() {
			defer wg.Done()
			for chatID := range queue {
				func() {
					// One recipient must never take down the run.
					defer func() {
						if r := recover(); r != nil {
							failed.Add(1)
							s.log.Error("panic in broadcast worker",
								logx.Int("worker", idx),
								logx.Int64("chat_id", chatID),
								logx.Any("panic", r),
								logx.String("stack", string(debug.Stack())))
						}
					}()
					switch s.sendOne(lim, sendTimeout, st.slot.Name, chatID, text) {
					case outcomeDelivered:
						delivered.Add(1)
					case outcomeRemoved:
						failed.Add(1)
						removed.Add(1)
					default:
						failed.Add(1)
					}
				}()
			}
		}()
	}
	wg.Wait()

	rep.Delivered = int(delivered.Load())
	rep.Failed = int(failed.Load())
	rep.Unsubscribed = int(removed.Load())

	fields := []logx.Field{
		logx.String("slot", st.slot.Name),
		logx.Int("total", rep.Total),
		logx.Int("delivered", rep.Delivered),
		logx.Int("failed", rep.Failed),
		logx.Int("unsubscribed", rep.Unsubscribed),
		logx.Duration("dur", time.Since(rep.StartedAt)),
	}
	if rep.Failed > 0 {
		s.log.Warn("broadcast run finished with failures", fields...)
	} else {
		s.log.Info("broadcast run finished", fields...)
	}
	return rep
}

type outcome int

const (
	outcomeDelivered outcome = iota
	outcomeFailed
	outcomeRemoved
)

func (s *Service) sendOne(lim limiter, sendTimeout time.Duration, slot string, chatID int64, text string) outcome {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if lim != nil {
		if err := lim.Wait(ctx); err != nil {
			s.log.Warn("send skipped, rate wait expired",
				logx.String("slot", slot), logx.Int64("chat_id", chatID), logx.Err(err))
			return outcomeFailed
		}
	}

	err := s.send.Send(ctx, chatID, text, &transport.SendOptions{ParseMode: "HTML", DisablePreview: true})
	if err == nil {
		return outcomeDelivered
	}

	if transport.Classify(err) == transport.FailurePermanent {
		s.log.Info("recipient unreachable, unsubscribing",
			logx.String("slot", slot), logx.Int64("chat_id", chatID), logx.Err(err))
		rmCtx, rmCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer rmCancel()
		if _, uerr := s.subs.Unsubscribe(rmCtx, chatID); uerr != nil {
			s.log.Error("auto-unsubscribe failed",
				logx.Int64("chat_id", chatID), logx.Err(uerr))
			return outcomeFailed
		}
		s.publish(eventbus.TypeSubscriberRemoved, chatID)
		return outcomeRemoved
	}

	s.log.Warn("send failed",
		logx.String("slot", slot), logx.Int64("chat_id", chatID), logx.Err(err))
	return outcomeFailed
}

// limiter is the subset of *rate.Limiter the send path needs.
type limiter interface {
	Wait(ctx context.Context) error
}
