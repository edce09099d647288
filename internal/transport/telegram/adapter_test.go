package telegram

import (
	"errors"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/minssan9/aviation-bot/internal/transport"
)

func TestClassifyTelebotErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want transport.FailureKind
	}{
		{"blocked", tele.ErrBlockedByUser, transport.FailurePermanent},
		{"deactivated", tele.ErrUserIsDeactivated, transport.FailurePermanent},
		{"chat not found", tele.ErrChatNotFound, transport.FailurePermanent},
		{"not started", tele.ErrNotStartedByUser, transport.FailurePermanent},
		{"flood", tele.FloodError{RetryAfter: 30}, transport.FailureTransient},
		{"unknown", errors.New("connection reset"), transport.FailureTransient},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := classify(tt.err)
			var de *transport.DeliveryError
			if !errors.As(got, &de) {
				t.Fatalf("classify() = %T, want *transport.DeliveryError", got)
			}
			if de.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", de.Kind, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("classified error does not unwrap to the original")
			}
		})
	}
}

func TestPickSlot(t *testing.T) {
	t.Parallel()

	names := []string{"morning", "afternoon", "evening"}
	tests := []struct {
		hour int
		want string
	}{
		{8, "morning"},
		{13, "afternoon"},
		{21, "evening"},
	}
	for _, tt := range tests {
		now := time.Date(2026, 3, 2, tt.hour, 0, 0, 0, time.UTC)
		if got := pickSlot(names, now); got != tt.want {
			t.Errorf("pickSlot(%02d:00) = %q, want %q", tt.hour, got, tt.want)
		}
	}

	// Unconventional slot names fall back to the first configured slot.
	if got := pickSlot([]string{"noon"}, time.Now()); got != "noon" {
		t.Errorf("pickSlot(custom) = %q, want noon", got)
	}
	if got := pickSlot(nil, time.Now()); got != "" {
		t.Errorf("pickSlot(none) = %q, want empty", got)
	}
}
