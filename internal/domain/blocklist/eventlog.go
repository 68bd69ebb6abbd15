package blocklist

import (
	"sync"
	"time"

	"github.com/GriffinCanCode/navguard/internal/shared/id"
	"github.com/GriffinCanCode/navguard/internal/shared/types"
)

// DefaultEventLogSize is the number of block events kept for audit
const DefaultEventLogSize = 500

// BlockEvent records one positive block match
type BlockEvent struct {
	ID             id.EventID `json:"id"`
	Timestamp      time.Time  `json:"timestamp"`
	URL            string     `json:"url"`
	Domain         string     `json:"domain"`
	MatchType      MatchType  `json:"match_type"`
	MatchedPattern string     `json:"matched_pattern"`
	Mode           types.Mode `json:"mode,omitempty"`
}

// EventLog is a fixed-capacity FIFO of block events. When full, the oldest
// event is overwritten.
type EventLog struct {
	mu    sync.Mutex
	buf   []BlockEvent // Protected by mu
	next  int          // Protected by mu
	full  bool         // Protected by mu
	total uint64       // Protected by mu
}

// NewEventLog creates an event log holding up to size events
func NewEventLog(size int) *EventLog {
	if size <= 0 {
		size = DefaultEventLogSize
	}
	return &EventLog{buf: make([]BlockEvent, size)}
}

// Append adds an event, evicting the oldest when full
func (l *EventLog) Append(e BlockEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.buf[l.next] = e
	l.next = (l.next + 1) % len(l.buf)
	if l.next == 0 {
		l.full = true
	}
	l.total++
}

// Events returns events oldest first. limit <= 0 returns all of them;
// otherwise only the newest limit events are returned.
func (l *EventLog) Events(limit int) []BlockEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.next
	start := 0
	if l.full {
		n = len(l.buf)
		start = l.next
	}

	out := make([]BlockEvent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, l.buf[(start+i)%len(l.buf)])
	}
	if limit > 0 && limit < len(out) {
		out = out[len(out)-limit:]
	}
	return out
}

// Len returns the number of retained events
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.full {
		return len(l.buf)
	}
	return l.next
}

// Total returns the number of events ever appended
func (l *EventLog) Total() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Clear drops all retained events
func (l *EventLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	clear(l.buf)
	l.next = 0
	l.full = false
}
