package eeprom

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "image.eeprom"), MinSize)
	require.NoError(t, err)
	return s
}

func TestOpenRejectsUndersizedImage(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "image.eeprom"), MinSize-1)
	require.Error(t, err)
}

func TestErasedImageYieldsDefaults(t *testing.T) {
	s := newStore(t)

	assert.Equal(t, DefaultRingDuration, s.LoadRingDuration())
	assert.Equal(t, DefaultDeviceName, s.LoadDeviceName())
	assert.Equal(t, DefaultUniqueURL, s.LoadUniqueURL())
	assert.Equal(t, "", s.LoadRingSchedule())
	assert.Equal(t, "", s.LoadSalt())
	assert.Equal(t, "", s.LoadPasswordHash())
	assert.False(t, s.LoadInitialized())
}

func TestErasedIntReadsAsMinusOne(t *testing.T) {
	s := newStore(t)
	v, err := s.LoadInt(0)
	require.NoError(t, err)
	assert.Equal(t, -1, v)
}

func TestStringRoundTrip(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.SaveDeviceName("chapel"))
	assert.Equal(t, "chapel", s.LoadDeviceName())

	// empty string is a stored value, not an erased slot
	require.NoError(t, s.SaveDeviceName(""))
	assert.Equal(t, "", s.LoadDeviceName())
}

func TestLoadStringStopsAtMaxLen(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.SaveString(100, "abcdefgh"))
	v, err := s.LoadString(100, 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", v)
}

func TestRingDurationClamping(t *testing.T) {
	s := newStore(t)
	for _, bad := range []int{0, -3, 11, 100} {
		require.NoError(t, s.SaveRingDuration(bad))
		assert.Equal(t, DefaultRingDuration, s.LoadRingDuration(), "duration %d should default", bad)
	}
	require.NoError(t, s.SaveRingDuration(7))
	assert.Equal(t, 7, s.LoadRingDuration())
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.eeprom")
	s, err := Open(path, MinSize)
	require.NoError(t, err)
	require.NoError(t, s.SaveDeviceName("tower"))
	require.NoError(t, s.SaveRingDuration(5))
	require.NoError(t, s.SaveInitialized(true))
	require.NoError(t, s.SaveRingSchedule(`{"monday":["07:30"]}`))

	reopened, err := Open(path, MinSize)
	require.NoError(t, err)
	assert.Equal(t, "tower", reopened.LoadDeviceName())
	assert.Equal(t, 5, reopened.LoadRingDuration())
	assert.True(t, reopened.LoadInitialized())
	assert.Equal(t, `{"monday":["07:30"]}`, reopened.LoadRingSchedule())
}

func TestSlotsDoNotOverlap(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.SaveRingDuration(9))
	require.NoError(t, s.SaveDeviceName("tower"))
	require.NoError(t, s.SaveUniqueURL("belfry"))
	require.NoError(t, s.SavePasswordHash("hash"))
	require.NoError(t, s.SaveSalt("salt"))
	require.NoError(t, s.SaveInitialized(true))
	require.NoError(t, s.SaveRingSchedule(`{}`))

	assert.Equal(t, 9, s.LoadRingDuration())
	assert.Equal(t, "tower", s.LoadDeviceName())
	assert.Equal(t, "belfry", s.LoadUniqueURL())
	assert.Equal(t, "hash", s.LoadPasswordHash())
	assert.Equal(t, "salt", s.LoadSalt())
	assert.True(t, s.LoadInitialized())
	assert.Equal(t, `{}`, s.LoadRingSchedule())
}

func TestOversizedScheduleRejected(t *testing.T) {
	s := newStore(t)
	big := make([]byte, widthSchedule)
	for i := range big {
		big[i] = 'x'
	}
	err := s.SaveRingSchedule(string(big))
	require.Error(t, err)
	// slot untouched
	assert.Equal(t, "", s.LoadRingSchedule())
}
