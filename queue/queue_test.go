package queue

import (
	"testing"
	"time"

	"github.com/nazwana/latensi/timestamps"
	"github.com/stretchr/testify/assert"
)

func TestRowsRoundTripThroughThePayload(t *testing.T) {
	row := timestamps.Row{
		Capture: time.Date(2024, 10, 3, 10, 0, 1, 500000000, time.UTC),
		Device:  "2024-10-03 10:00:01",
		Fields:  []string{"28.4", "65.0", "1009.2", "640"},
	}

	b, err := encodeRow(row)
	assert.NoError(t, err)

	decoded, err := decodeRow(string(b))
	assert.NoError(t, err)
	assert.True(t, row.Capture.Equal(decoded.Capture), "capture timestamps should match")
	assert.Equal(t, row.Device, decoded.Device)
	assert.Equal(t, row.Fields, decoded.Fields)
}

func TestDecodeRowRejectsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"NotJSON", "capture=now"},
		{"BadCapture", `{"capture": "just now", "device": "2024-10-03 10:00:01"}`},
		{"Empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeRow(tt.payload)
			assert.Error(t, err)
		})
	}
}
