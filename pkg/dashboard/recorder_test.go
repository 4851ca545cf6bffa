package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollLogStreak(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ago := func(secs ...float64) []PollRecord {
		var out []PollRecord
		for _, s := range secs {
			out = append(out, PollRecord{At: now.Add(-time.Duration(s * float64(time.Second)))})
		}
		return out
	}

	tests := []struct {
		name    string
		records []PollRecord
		window  time.Duration
		want    int
	}{
		{
			name:    "gap breaks the streak",
			records: ago(16.01, 4.01, 2.01),
			window:  20 * time.Second,
			want:    2,
		},
		{
			name:    "window limits the streak",
			records: ago(14.01, 12.01, 8.01, 6.01, 4.01, 2.01),
			window:  10 * time.Second,
			want:    4,
		},
		{
			name:    "stale log",
			records: ago(12.01, 10.01, 8.01),
			window:  20 * time.Second,
			want:    0,
		},
		{
			name:   "empty log",
			window: time.Minute,
			want:   0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewPollLog(10, 2*time.Second)
			l.now = func() time.Time { return now }
			for _, rec := range tt.records {
				l.Add(rec)
			}
			assert.Equal(t, tt.want, l.Streak(tt.window))
		})
	}
}

func TestPollLogEvictsOldest(t *testing.T) {
	l := NewPollLog(3, 2*time.Second)
	base := time.Now()
	for i := 0; i < 5; i++ {
		l.Add(PollRecord{At: base.Add(time.Duration(i) * time.Second), Took: time.Duration(i) * time.Millisecond})
	}

	records := l.Records()
	require.Len(t, records, 3)
	assert.Equal(t, 2*time.Millisecond, records[0].Took)

	last, ok := l.Last()
	require.True(t, ok)
	assert.True(t, last.At.Equal(base.Add(4*time.Second)))
	assert.Equal(t, 4*time.Millisecond, last.Took)
}

func TestPollLogEmpty(t *testing.T) {
	l := NewPollLog(0, time.Second)
	_, ok := l.Last()
	assert.False(t, ok)

	l.Add(PollRecord{At: time.Now(), Failed: []string{"senec"}})
	l.Add(PollRecord{At: time.Now()})
	assert.Len(t, l.Records(), 1)
}
