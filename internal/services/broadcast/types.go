package broadcast

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/minssan9/aviation-bot/internal/eventbus"
	"github.com/minssan9/aviation-bot/internal/transport"
	logx "github.com/minssan9/aviation-bot/pkg/logx"
)

// ErrUnknownSlot is returned by TriggerNow for a slot name that was never
// configured.
var ErrUnknownSlot = errors.New("broadcast: unknown slot")

// ErrSlotBusy is returned when a trigger arrives while the same slot is
// already mid-run. The trigger is dropped, never queued.
var ErrSlotBusy = errors.New("broadcast: slot already running")

type Config struct {
	Slots           []Slot
	Workers         int
	RatePerSec      int
	SendTimeout     time.Duration
	GenerateTimeout time.Duration
}

// Slot is one recurring delivery window.
type Slot struct {
	Name     string
	At       string // "HH:MM" wall clock in Location
	Location *time.Location
	Topic    string // optional override of the daily selection
}

// Composer produces the rendered message body for a slot.
type Composer interface {
	SlotMessage(ctx context.Context, slotName, topicOverride string) (string, error)
}

// Subscribers is the roster the fan-out reads and prunes.
type Subscribers interface {
	Snapshot(ctx context.Context) ([]int64, error)
	Unsubscribe(ctx context.Context, chatID int64) (bool, error)
}

// RunReport is the aggregate outcome of a single slot run.
type RunReport struct {
	Slot         string
	Trigger      string // "cron" or "manual"
	Total        int
	Delivered    int
	Failed       int
	Unsubscribed int
	StartedAt    time.Time
	Duration     time.Duration
	Err          string // non-empty when the run was abandoned before fan-out
}

// SlotStatus is the introspection view of one slot.
type SlotStatus struct {
	Name    string
	Running bool
	Runs    uint64
	Dropped uint64
	NextAt  time.Time
	Last    *RunReport
}

// slotState holds the Idle/Running flag for one slot. The mutex guards
// flips only; runs themselves happen outside it.
type slotState struct {
	slot Slot

	mu      sync.Mutex
	running bool
	runs    uint64
	dropped uint64
	last    *RunReport

	entryID cron.EntryID
	c       *cron.Cron // the cron instance this slot is registered on
}

type Service struct {
	mu  sync.Mutex
	cfg Config

	compose Composer
	subs    Subscribers
	send    transport.Deliverer
	bus     eventbus.Bus
	log     logx.Logger

	limiter *rate.Limiter
	slots   map[string]*slotState
	order   []string // configured slot order, for Status

	// one cron per distinct location so each slot fires on its own wall clock
	crons map[string]*cron.Cron

	stopCh chan struct{}
	runWG  sync.WaitGroup
}
