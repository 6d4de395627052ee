package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2025-01-01", want: want},
		{in: "2025-01-01T00:00:00Z", want: want},
		{in: "2025-01-01T07:00:00+07:00", want: want},
		{in: "2025-01-01T00:00:00", want: want},
		{in: "2025-01-01 00:00:00", want: want},
		{in: "1735689600000", want: want},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "tomorrow", "2025-13-01", "01/02/2025"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidTime, in)
	}
}

func TestFormat(t *testing.T) {
	ts := time.Date(2025, 1, 1, 7, 0, 0, 0, time.FixedZone("ICT", 7*3600))
	assert.Equal(t, "2025-01-01T00:00:00Z", Format(ts))
}
