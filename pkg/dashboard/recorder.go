package dashboard

import (
	"sync"
	"time"
)

// PollRecord describes one completed poll.
type PollRecord struct {
	At   time.Time     `json:"at"`
	Took time.Duration `json:"took"`
	// Failed lists the devices whose fetch failed during the poll.
	Failed []string `json:"failed,omitempty"`
}

// PollLog keeps the most recent poll records in arrival order.
type PollLog struct {
	mu       sync.Mutex
	size     int
	interval time.Duration
	records  []PollRecord
	now      func() time.Time
}

// NewPollLog returns a log holding up to size records of polls expected
// every interval.
func NewPollLog(size int, interval time.Duration) *PollLog {
	return &PollLog{
		size:     max(size, 1),
		interval: interval,
		now:      time.Now,
	}
}

// Add appends rec, evicting the oldest record when full.
func (l *PollLog) Add(rec PollRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec.At = rec.At.Round(0)
	if len(l.records) == l.size {
		copy(l.records, l.records[1:])
		l.records = l.records[:l.size-1]
	}
	l.records = append(l.records, rec)
}

func (l *PollLog) SetInterval(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.interval = d
}

// Records returns a copy of all records, oldest first.
func (l *PollLog) Records() []PollRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]PollRecord(nil), l.records...)
}

// Last returns the newest record, if any.
func (l *PollLog) Last() (PollRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.records) == 0 {
		return PollRecord{}, false
	}
	return l.records[len(l.records)-1], true
}

// Streak counts the polls within window that ran back to back up to now.
// Two polls are back to back when they are less than one interval plus a
// second apart. A log whose newest poll is older than that gap has no
// streak.
func (l *PollLog) Streak(window time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	gap := l.interval + time.Second
	next := now
	n := 0
	for i := len(l.records) - 1; i >= 0; i-- {
		at := l.records[i].At
		if now.Sub(at) > window || next.Sub(at) >= gap {
			break
		}
		next = at
		n++
	}
	return n
}
