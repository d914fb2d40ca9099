package desk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDateForAPI(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{name: "utc", in: time.Date(2014, 2, 27, 18, 30, 5, 0, time.UTC), want: "2014-02-27T18:30:05Z"},
		{name: "offset converted to utc", in: time.Date(2014, 2, 27, 19, 30, 5, 0, berlin), want: "2014-02-27T18:30:05Z"},
		{name: "sub-second dropped", in: time.Date(2014, 2, 27, 18, 30, 5, 999, time.UTC), want: "2014-02-27T18:30:05Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDateForAPI(tt.in))
		})
	}
}

func TestParseAPIDate(t *testing.T) {
	got, err := ParseAPIDate("2014-02-27T18:30:05Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2014, 2, 27, 18, 30, 5, 0, time.UTC)))

	got, err = ParseAPIDate("2014-02-27T19:30:05+01:00")
	require.NoError(t, err)
	assert.Equal(t, "2014-02-27T18:30:05Z", FormatDateForAPI(got))

	got, err = ParseAPIDate("2014-02-27T18:30:05")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(time.Date(2014, 2, 27, 18, 30, 5, 0, time.UTC)))

	_, err = ParseAPIDate("27/02/2014")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid desk date "27/02/2014"`)
}
