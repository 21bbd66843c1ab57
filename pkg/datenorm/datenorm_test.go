package datenorm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FrenchDates(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"26 février 1781", "26/02/1781"},
		{"26 FÉVRIER 1781", "26/02/1781"},
		{"1er janvier 1900", "01/01/1900"},
		{"2 août 1980", "02/08/1980"},
		{"2 aout 1980", "02/08/1980"},
		{"14 juillet 1789", "14/07/1789"},
		{"  3\t\tdécembre   1901 ", "03/12/1901"},
		{"7 sept. 1925", "07/09/1925"},
		{"26 February 1781", "26/02/1781"},
		{"26/02/1781", "26/02/1781"},
		{"6/2/1781", "06/02/1781"},
		{"26.02.1781", "26/02/1781"},
		{"1781-02-26", "26/02/1781"},
		{"Paris, 12 mai 1850", "12/05/1850"},
		{"le 30 novembre 1910 à Lyon", "30/11/1910"},
		{"March 15, 1980", "15/03/1980"},
		{"mars 15, 1980", "15/03/1980"},
		{"1781-02-26T00:00:00Z", "26/02/1781"},
		{"1980-03-15 00:00:00", "15/03/1980"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input, Passthrough))
			assert.Equal(t, tt.want, Normalize(tt.input, Sentinel))
		})
	}
}

func TestNormalize_FailurePolicies(t *testing.T) {
	assert.Equal(t, Invalid, Normalize("not a date", Sentinel))
	assert.Equal(t, "not a date", Normalize("not a date", Passthrough))

	// Passthrough returns the cleaned original, not the translated string.
	assert.Equal(t, "sans date connue", Normalize("  sans   date\tconnue ", Passthrough))

	assert.Equal(t, Invalid, Normalize("", Sentinel))
	assert.Equal(t, "", Normalize("", Passthrough))

	// 31 February does not exist.
	assert.Equal(t, Invalid, Normalize("31 février 1781", Sentinel))
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, d := range []string{"26/02/1781", "01/01/1900", "31/12/1999", "09/11/1989"} {
		once := Normalize(d, Passthrough)
		assert.Equal(t, d, once)
		assert.Equal(t, once, Normalize(once, Passthrough))
	}
}

func TestNormalize_PartialDates(t *testing.T) {
	keep := New()
	assert.Equal(t, "janvier 1900", keep.Normalize("janvier 1900", Passthrough))
	assert.Equal(t, Invalid, keep.Normalize("janvier 1900", Sentinel))
	assert.Equal(t, "1900", keep.Normalize("1900", Passthrough))

	first := New(WithPartialDates(PartialFirstDay))
	assert.Equal(t, "01/01/1900", first.Normalize("janvier 1900", Sentinel))
	assert.Equal(t, "01/03/1900", first.Normalize("mars 1900", Sentinel))
	assert.Equal(t, "01/01/1900", first.Normalize("1900", Sentinel))
	assert.Equal(t, "01/01/1910", first.Normalize("vers 1910", Sentinel))
}

func TestParse_Precision(t *testing.T) {
	n := New()
	tests := []struct {
		input string
		want  time.Time
		prec  Precision
	}{
		{"26 février 1781", time.Date(1781, 2, 26, 0, 0, 0, 0, time.UTC), PrecisionDay},
		{"février 1781", time.Date(1781, 2, 1, 0, 0, 0, 0, time.UTC), PrecisionMonth},
		{"1781", time.Date(1781, 1, 1, 0, 0, 0, 0, time.UTC), PrecisionYear},
		{"March 15, 1980", time.Date(1980, 3, 15, 0, 0, 0, 0, time.UTC), PrecisionDay},
		{"1781-02-26T00:00:00Z", time.Date(1781, 2, 26, 0, 0, 0, 0, time.UTC), PrecisionDay},
	}
	for _, tt := range tests {
		got, prec, err := n.Parse(tt.input)
		require.NoError(t, err, tt.input)
		assert.True(t, tt.want.Equal(got), "Parse(%q) = %v, want %v", tt.input, got, tt.want)
		assert.Equal(t, tt.prec, prec, tt.input)
	}

	_, _, err := n.Parse("inconnu")
	assert.True(t, errors.Is(err, ErrUnparsed))
}

func TestNormalizer_Cache(t *testing.T) {
	n := New(WithCache(time.Minute))
	for i := 0; i < 3; i++ {
		assert.Equal(t, "26/02/1781", n.Normalize("26 février 1781", Sentinel))
		assert.Equal(t, Invalid, n.Normalize("illisible", Sentinel))
	}
	assert.Equal(t, 2, n.cache.ItemCount())
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", Passthrough, false},
		{"passthrough", Passthrough, false},
		{"Sentinel", Sentinel, false},
		{"strict", Sentinel, false},
		{"loose", Passthrough, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
