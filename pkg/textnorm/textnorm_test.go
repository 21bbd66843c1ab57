package textnorm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldAccents(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Février", "fevrier"},
		{"AOÛT", "aout"},
		{"décembre", "decembre"},
		{"FRANÇOIS", "francois"},
		{"", ""},
		{"mars", "mars"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FoldAccents(tt.input), "FoldAccents(%q)", tt.input)
	}
}

func TestCollapse(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"  26\t\tfévrier   1781 ", "26 février 1781"},
		{"Peintre\n\n  et graveur\n", "Peintre et graveur"},
		{"1 janvier 1900", "1 janvier 1900"},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Collapse(tt.input), "Collapse(%q)", tt.input)
	}
}

func TestNewlines(t *testing.T) {
	assert.Equal(t, "a\nb\nc", Newlines("a\r\nb\rc"))
	assert.Equal(t, "titre", Newlines("\ufefftitre"))

	// e + combining acute accent composes to é.
	assert.Equal(t, "activit\u00e9", Newlines("activite\u0301"))
}

func TestDecode_UTF8(t *testing.T) {
	got, err := Decode(strings.NewReader("Mis à jour le 3 mars 2020\r\n"), "")
	require.NoError(t, err)
	assert.Equal(t, "Mis à jour le 3 mars 2020\n", got)
}

func TestDecode_Windows1252(t *testing.T) {
	// "Sujets d'étude" with é encoded as 0xE9.
	raw := []byte("Sujets d'\xe9tude")
	got, err := Decode(bytes.NewReader(raw), "windows-1252")
	require.NoError(t, err)
	assert.Equal(t, "Sujets d'étude", got)
}

func TestDecode_UnknownEncoding(t *testing.T) {
	_, err := Decode(strings.NewReader("x"), "klingon-8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported encoding")
}
