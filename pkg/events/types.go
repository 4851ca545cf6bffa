package events

import "encoding/json"

// Event name constants
const (
	DashboardSnapshot   = "dashboard.snapshot"
	WallboxChanged      = "wallbox.changed"
	ChargingModeChanged = "charging_mode.changed"
)

// Event is a generic SSE event from the server.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// WallboxChangedEvent is published after a wallbox setting was changed,
// either by a user or by automatic charging.
type WallboxChangedEvent struct {
	Device  int    `json:"device"`
	Name    string `json:"name"`
	Setting string `json:"setting"`
	Value   string `json:"value"`
	Reason  string `json:"reason,omitempty"`
	Ts      int64  `json:"ts"`
}

// ChargingModeChangedEvent is published when an automatic charging flag
// is toggled.
type ChargingModeChangedEvent struct {
	Mode    string `json:"mode"`
	Enabled bool   `json:"enabled"`
	Ts      int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// If Data is empty, it returns the zero value of T with a nil error.
//
//	payload, err := events.DecodeAs[events.WallboxChangedEvent](ev)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
