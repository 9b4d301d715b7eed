package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderShiftNotes(t *testing.T) {
	data, err := RenderShiftNotes(ShiftNotesDocument{
		ClientName: "Frank Doyle",
		CarerName:  "Grace Okafor",
		ShiftStart: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		ShiftEnd:   time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Notes:      "Medication given at 10:00. Short walk after lunch.",
	})

	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderIncident(t *testing.T) {
	data, err := RenderIncident(IncidentDocument{
		ClientName:   "Frank Doyle",
		CarerName:    "Grace Okafor",
		ShiftStart:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		DisplayIndex: 2,
		Text:         "Minor fall in the kitchen, no injury. GP informed.",
	})

	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}
