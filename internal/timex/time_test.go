package timex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseISO(t *testing.T) {
	want := time.Date(2025, 3, 4, 10, 11, 12, 345678000, time.UTC)

	got, err := ParseISO("2025-03-04T10:11:12.345678")
	require.NoError(t, err)
	require.True(t, want.Equal(got))

	got, err = ParseISO("2025-03-04T12:11:12.345678+02:00")
	require.NoError(t, err)
	require.True(t, want.Equal(got))

	got, err = ParseISO("2025-03-04T10:11:12")
	require.NoError(t, err)
	require.True(t, want.Truncate(time.Second).Equal(got))

	got, err = ParseISO("")
	require.NoError(t, err)
	require.True(t, got.IsZero())

	_, err = ParseISO("yesterday")
	require.Error(t, err)
}

func TestFromEpochSeconds(t *testing.T) {
	got := FromEpochSeconds(1700000000.5)
	require.Equal(t, int64(1700000000), got.Unix())
	require.Equal(t, 500*time.Millisecond, time.Duration(got.Nanosecond()))
	require.Equal(t, time.UTC, got.Location())
}
