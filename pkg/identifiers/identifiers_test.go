package identifiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseISBN13(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int64
		ok       bool
	}{
		{"plain", "9780316769488", 9780316769488, true},
		{"hyphens", "978-0-00-712774-0", 9780007127740, true},
		{"spaces", "978 0 316 76948 8", 9780316769488, true},
		{"prefixed", "ISBN: 9780316769488", 9780316769488, true},
		{"bad checksum", "9780316769489", 0, false},
		{"isbn10", "0316769487", 0, false},
		{"garbage", "not an isbn", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := ParseISBN13(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestValidateISBN10(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"0316769487", true},
		{"080442957X", true},
		{"0451524934", true},   // 1984 by George Orwell
		{"0316769488", false},  // bad checksum
		{"123456789", false},   // too short
		{"12345678901", false}, // too long
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateISBN10(tt.value))
		})
	}
}

func TestValidateISBN13(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"9780316769488", true},
		{"9780804429573", true},
		{"9780316769489", false},  // bad checksum
		{"978031676948", false},   // too short
		{"97803167694888", false}, // too long
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateISBN13(tt.value))
		})
	}
}

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		value    string
		expected string
	}{
		{"978-0-316-76948-8", "9780316769488"},
		{"0-316-76948-7", "0316769487"},
		{"978 0 316 76948 8", "9780316769488"},
		{"ISBN: 9780316769488", "9780316769488"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeISBN(tt.value))
		})
	}
}
