package telegram

import (
	"strings"
	"testing"

	"github.com/minssan9/aviation-bot/internal/topic"
)

// The welcome copy advertises the curriculum; it must list what the topic
// calendar actually serves.
func TestWelcomeCopyMatchesCurriculum(t *testing.T) {
	t.Parallel()

	for _, unit := range topic.Units() {
		if !strings.Contains(welcomeText, unit) {
			t.Errorf("welcome copy is missing curriculum unit %q", unit)
		}
	}

	// The calendar keys by day of month, not weekday.
	for _, weekday := range []string{"월요일", "화요일", "수요일", "목요일", "금요일", "토요일", "일요일"} {
		if strings.Contains(welcomeText, weekday) {
			t.Errorf("welcome copy promises a weekday plan (%q) the calendar does not implement", weekday)
		}
	}
}
