package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()
	assert.Equal(t, 1, h.Subscribers())

	h.Publish(ChargingModeChanged, ChargingModeChangedEvent{Mode: "forceCharging", Enabled: true, Ts: 1})

	ev := <-ch
	assert.Equal(t, ChargingModeChanged, ev.Name)
	payload, err := DecodeAs[ChargingModeChangedEvent](ev)
	require.NoError(t, err)
	assert.Equal(t, "forceCharging", payload.Mode)
	assert.True(t, payload.Enabled)

	h.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)
	assert.Zero(t, h.Subscribers())

	// Unsubscribing twice is harmless.
	h.Unsubscribe(ch)
}

func TestPublishDropsForSlowSubscribers(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	for i := 0; i < cap(ch)+5; i++ {
		h.Publish(DashboardSnapshot, map[string]int{"i": i})
	}
	assert.Len(t, ch, cap(ch))
	assert.EqualValues(t, 5, h.Dropped())
}

func TestSubscribeFiltersByName(t *testing.T) {
	h := NewEventHub()
	all := h.Subscribe()
	defer h.Unsubscribe(all)
	modes := h.Subscribe(ChargingModeChanged, "")
	defer h.Unsubscribe(modes)

	h.Publish(DashboardSnapshot, map[string]int{"i": 1})
	h.Publish(ChargingModeChanged, ChargingModeChangedEvent{Mode: "automaticCharging"})

	assert.Len(t, all, 2)
	require.Len(t, modes, 1)
	assert.Equal(t, ChargingModeChanged, (<-modes).Name)
	assert.Zero(t, h.Dropped())
}

func TestNilHub(t *testing.T) {
	var h *EventHub
	assert.NotPanics(t, func() { h.Publish(DashboardSnapshot, nil) })
}

func TestDecodeAsEmpty(t *testing.T) {
	v, err := DecodeAs[WallboxChangedEvent](Event{Name: WallboxChanged})
	require.NoError(t, err)
	assert.Equal(t, WallboxChangedEvent{}, v)
}
