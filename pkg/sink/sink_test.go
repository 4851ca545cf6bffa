package sink

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublish(t *testing.T) {
	w := &recordingWriter{}
	k := newKafkaWithWriter("solarwallbox.snapshots", w)
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	k.now = func() time.Time { return ts }

	require.NoError(t, PublishJSON(context.Background(), k, "excess", map[string]float64{"excessPower": 1500}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "excess", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"excessPower": 1500}`, string(w.msgs[0].Value))
	assert.Equal(t, ts, w.msgs[0].Time)

	w.err = errors.New("broker down")
	assert.Error(t, k.Publish(context.Background(), "excess", nil))

	require.NoError(t, k.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaValidation(t *testing.T) {
	_, err := NewKafka(nil, "topic")
	assert.Error(t, err)
	_, err = NewKafka([]string{"localhost:9092"}, "")
	assert.Error(t, err)
}

type failingSink struct{ calls int }

func (f *failingSink) Publish(context.Context, string, []byte) error {
	f.calls++
	return errors.New("nope")
}

func (f *failingSink) Close() error { return nil }

func TestMulti(t *testing.T) {
	w := &recordingWriter{}
	bad := &failingSink{}
	m := Multi{bad, newKafkaWithWriter("t", w)}

	err := m.Publish(context.Background(), "dashboard", []byte(`{}`))
	assert.Error(t, err)
	assert.Equal(t, 1, bad.calls)
	assert.Len(t, w.msgs, 1, "a failing sink must not stop the others")

	assert.NoError(t, m.Close())
}

func TestParseCommandTopic(t *testing.T) {
	tests := []struct {
		topic   string
		want    command
		wantErr bool
	}{
		{topic: "sw/wallbox/2/set/allow_charging", want: command{device: 2, setting: "allow_charging"}},
		{topic: "sw/wallbox/0/set/max_ampere", want: command{device: 0, setting: "max_ampere"}},
		{topic: "sw/dashboard/set/forceCharging", want: command{dashboard: true, setting: "forceCharging"}},
		{topic: "sw/wallbox/-1/set/max_ampere", wantErr: true},
		{topic: "sw/wallbox/x/set/max_ampere", wantErr: true},
		{topic: "other/dashboard/set/forceCharging", wantErr: true},
		{topic: "sw/dashboard", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got, err := parseCommandTopic("sw", tt.topic)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type recordingCommands struct {
	wallbox []string
	modes   map[string]bool
}

func (r *recordingCommands) SetWallbox(_ context.Context, device int, setting, value string) error {
	r.wallbox = append(r.wallbox, setting+"="+value)
	return nil
}

func (r *recordingCommands) SetChargingMode(_ context.Context, mode string, enabled bool) error {
	r.modes[mode] = enabled
	return nil
}

func TestMQTTHandle(t *testing.T) {
	cmds := &recordingCommands{modes: map[string]bool{}}
	m := &MQTT{ctx: context.Background(), prefix: "sw", cmds: cmds}

	m.handle("sw/wallbox/1/set/max_ampere", "16")
	m.handle("sw/dashboard/set/automaticCharging", "1")
	m.handle("sw/dashboard/set/forceCharging", "maybe")
	m.handle("sw/unknown", "1")

	assert.Equal(t, []string{"max_ampere=16"}, cmds.wallbox)
	assert.Equal(t, map[string]bool{"automaticCharging": true}, cmds.modes)
}
