package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	want := time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC)

	cases := map[string]string{
		"day first":           "15-08-2025",
		"iso date":            "2025-08-15",
		"instant utc":         "2025-08-15T18:30:00Z",
		"instant with offset": "2025-08-15T23:30:00+05:30",
		"millis with offset":  "2025-08-15T00:00:00.000+00:00",
		"local datetime":      "2025-08-15T09:00",
		"padded":              "  15-08-2025 ",
	}

	for name, raw := range cases {
		raw := raw
		t.Run(name, func(t *testing.T) {
			got, err := Normalize(raw)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "tomorrow", "32-01-2025", "2025/08/15", "15-13-2025"} {
		_, err := Normalize(raw)
		assert.ErrorIs(t, err, ErrInvalidDate, raw)
	}
}

func TestFormat(t *testing.T) {
	d, err := Normalize("15-08-2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-08-15", Format(d))
	assert.Equal(t, "", Format(time.Time{}))
}
