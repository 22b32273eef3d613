package publisher

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		routeID string
		busID   string
		want    string
	}{
		{"plain", "hafla.bus", "hafla-tunis-ghazala", "bus-1", "hafla.bus.hafla-tunis-ghazala.bus-1"},
		{"no prefix", "", "r1", "b1", "r1.b1"},
		{"trims prefix dots", ".hafla.", "r1", "b1", "hafla.r1.b1"},
		{"sanitizes tokens", "hafla", "route 7/a", "bus.*>", "hafla.route_7_a.bus___"},
		{"empty ids", "hafla", " ", "", "hafla._._"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Subject(tc.prefix, tc.routeID, tc.busID))
		})
	}
}

func TestPositionMessage_JSONFields(t *testing.T) {
	msg := PositionMessage{
		BusID:      "bus-1",
		RouteID:    "r",
		RunID:      "run",
		Timestamp:  time.Date(2025, 11, 25, 7, 45, 0, 0, time.UTC),
		Lat:        36.8,
		Lon:        10.18,
		Bearing:    12.5,
		Progress:   42,
		Delayed:    true,
		State:      "delayed",
		EtaMinutes: 11,
	}
	b, err := json.Marshal(msg)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "bus-1", m["busId"])
	assert.Equal(t, "delayed", m["state"])
	assert.Equal(t, 11.0, m["etaMinutes"])
	assert.Equal(t, true, m["delayed"])
	_, hasNext := m["nextStop"]
	assert.False(t, hasNext, "empty next stop is omitted")
}
