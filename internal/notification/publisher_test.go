package notification

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunkmate/bunkmate-backend/internal/alert"
)

func TestNewMessage_FlattensEvent(t *testing.T) {
	ev := alert.Event{
		Kind:              alert.KindDanger,
		SubjectID:         "s1",
		SubjectName:       "Physics",
		Percentage:        60,
		MinimumAttendance: 75,
	}

	raw, err := json.Marshal(NewMessage(ev))
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "danger", got["kind"])
	assert.Equal(t, "Physics", got["subject_name"])
	assert.Equal(t, "Danger zone!", got["title"])
	assert.Equal(t, "You are BELOW the minimum attendance in Physics (60%/75%).", got["message"])
}
