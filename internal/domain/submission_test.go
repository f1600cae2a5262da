package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubmission_StampsClockTime(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2025, time.March, 3, 9, 30, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() { SetClock(nil) })

	fields, err := ParseSubmission([]byte(`{"name":"Ramesh","land_size":2}`))
	require.NoError(t, err)

	s := NewSubmission(7, fields)

	assert.Equal(t, 7, s.ID)
	assert.Equal(t, fakeClock.Now(), s.Timestamp)
	assert.JSONEq(t, `"Ramesh"`, string(s.Fields["name"]))
}

func TestSubmission_MarshalJSON(t *testing.T) {
	s := Submission{
		ID:        3,
		Timestamp: time.Date(2025, time.March, 3, 9, 30, 0, 0, time.UTC),
		Fields: map[string]json.RawMessage{
			"name":  json.RawMessage(`"Sita"`),
			"crops": json.RawMessage(`["wheat","rice"]`),
			"id":    json.RawMessage(`"caller-id"`),
		},
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"name": "Sita",
		"crops": ["wheat", "rice"],
		"timestamp": "2025-03-03T09:30:00Z",
		"id": 3
	}`, string(data))
}

func TestSubmission_JSONRoundTrip(t *testing.T) {
	in := Submission{
		ID:        12,
		Timestamp: time.Date(2025, time.March, 3, 9, 30, 0, 123456000, time.UTC),
		Fields:    map[string]json.RawMessage{"village": json.RawMessage(`"Kharkhoda"`)},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Submission
	require.NoError(t, json.Unmarshal(data, &out))

	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSubmission_RejectsNonObjects(t *testing.T) {
	for _, body := range []string{``, `   `, `null`, `[1,2]`, `"text"`, `42`, `{"unterminated":`} {
		_, err := ParseSubmission([]byte(body))
		assert.Error(t, err, "body %q", body)
	}
}

func TestParseSubmission_EmptyObject(t *testing.T) {
	fields, err := ParseSubmission([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, fields)
}
