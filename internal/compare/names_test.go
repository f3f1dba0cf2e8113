package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNameVariation(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"ocr g-vs-h", "DGR GOLDING LLC", "DGR HOLDING LLC", true},
		{"zero vs o", "COMPANY 0F AMERICA", "COMPANY OF AMERICA", true},
		{"one vs i", "F1RST NATIONAL BANK", "FIRST NATIONAL BANK", true},
		{"suffix ignored", "ABC HOLDINGS LLC", "ABC HOLDINGS INC", true},
		{"two char slip", "MAINSTREET PROPERTIES", "MA1NSTREET PROPERT1ES", true},
		{"different entities", "ABC BANK", "XYZ CREDIT UNION", false},
		{"short names strict", "AB LLC", "AC LLC", false},
		{"case insensitive", "abc holdings llc", "ABC HOLDINGS LLC", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNameVariation(tt.a, tt.b))
		})
	}
}
