package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJulianDate_KnownEpochs(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want float64
	}{
		{"unix_epoch", time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), 2440587.5},
		{"j2000_midnight", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 2451544.5},
		{"j2000_noon", time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC), 2451545.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, JulianDate(tt.t), 1e-6)
		})
	}
}

func TestParseDateToJD(t *testing.T) {
	jd, err := ParseDateToJD("2000-01-01")
	require.NoError(t, err)
	assert.InDelta(t, 2451544.5, jd, 1e-6)

	jd, err = ParseDateToJD("2000-01-01 12:00:00")
	require.NoError(t, err)
	assert.InDelta(t, 2451545.0, jd, 1e-6)
}

func TestParseDateToJD_Malformed(t *testing.T) {
	for _, input := range []string{"", "not-a-date", "2020-13-40", "01/02/2020"} {
		_, err := ParseDateToJD(input)
		assert.ErrorIs(t, err, ErrDateParse, "input %q", input)
	}
}
