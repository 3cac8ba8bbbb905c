package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campanile/bellsystem-server/internal/clock"
)

func TestParseNormalizesTimesAscending(t *testing.T) {
	s, err := Parse([]byte(`{"monday":["08:00","07:30"]}`))
	require.NoError(t, err)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"monday":["07:30","08:00"]}`, string(out))
}

func TestParseRoundTrip(t *testing.T) {
	in := `{"sunday":["10:00"],"monday":["07:30","08:00","12:15"],"friday":["15:45"]}`
	s, err := Parse([]byte(in))
	require.NoError(t, err)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))

	// serializing and re-parsing is a fixed point
	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestParseEmptyObject(t *testing.T) {
	s, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, s)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}

func TestParseKeepsEmptyDayDistinct(t *testing.T) {
	s, err := Parse([]byte(`{"tuesday":[]}`))
	require.NoError(t, err)
	times, ok := s[clock.Tuesday]
	assert.True(t, ok, "an explicitly empty day is present, just silent")
	assert.Empty(t, times)
}

func TestParseKeepsDuplicates(t *testing.T) {
	s, err := Parse([]byte(`{"monday":["07:30","07:30"]}`))
	require.NoError(t, err)
	assert.Len(t, s[clock.Monday], 2)
}

func TestParseRejectsMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":        `ding dong`,
		"null":            `null`,
		"not an object":   `["07:30"]`,
		"unknown day":     `{"blursday":["07:30"]}`,
		"capitalized day": `{"Monday":["07:30"]}`,
		"non-array value": `{"monday":"07:30"}`,
		"object value":    `{"monday":{"at":"07:30"}}`,
		"hour too large":  `{"monday":["24:00"]}`,
		"minute too big":  `{"monday":["07:60"]}`,
		"unpadded hour":   `{"monday":["7:30"]}`,
		"with seconds":    `{"monday":["07:30:00"]}`,
		"numeric time":    `{"monday":[730]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
