package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
		ok   bool
	}{
		{"nil", nil, "", false},
		{"int", 1320000, "1320000", true},
		{"float truncates", 1234.56, "1234", true},
		{"json number", json.Number("181472"), "181472", true},
		{"non-numeric non-string", []string{"x"}, "", false},
		{"empty string", "", "", false},
		{"whitespace only", "   ", "", false},
		{"included lowercase", "included", "Included", true},
		{"included uppercase", "INCLUDED", "Included", true},
		{"percentage verbatim", "5%", "5%", true},
		{"percentage trimmed", "  1%  ", "1%", true},
		{"inside outside verbatim", "Inside $10,000 / Outside $10,000", "Inside $10,000 / Outside $10,000", true},
		{"currency strip", "$1,320,000", "1320000", true},
		{"plain digits", "1320000", "1320000", true},
		{"decimal point removed", "1,234.56", "123456", true},
		{"no digits left", "N/A", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Value(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("$1,320,000", "1320000"))
	assert.True(t, Equal("$1,320,000", 1320000))
	assert.True(t, Equal("Included", "INCLUDED"))
	assert.True(t, Equal(nil, ""))
	assert.True(t, Equal(nil, nil))

	assert.False(t, Equal("$1,320,000", "1,000,000"))
	assert.False(t, Equal("1000000", nil))
	assert.False(t, Equal("5%", "5"))
}
