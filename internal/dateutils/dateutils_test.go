package dateutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeISO(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"already ISO", "2024-01-15", "2024-01-15", false},
		{"US slashes", "01/15/2024", "2024-01-15", false},
		{"US no leading zeros", "1/5/2024", "2024-01-05", false},
		{"slashed ISO", "2024/01/15", "2024-01-15", false},
		{"compact", "20240115", "2024-01-15", false},
		{"surrounding whitespace", "  01/15/2024 ", "2024-01-15", false},
		{"empty", "", "", true},
		{"garbage", "not a date", "", true},
		{"european style unsupported", "15.01.2024", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeISO(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "01/15/2024", Clean("  01/15/2024\t"))
	assert.Equal(t, "Jan 15 2024", Clean("Jan   15  2024"))
}
