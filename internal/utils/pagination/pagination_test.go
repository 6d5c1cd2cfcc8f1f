package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimit(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		def, max  int
		want      int
	}{
		{"zero uses default", 0, 20, 100, 20},
		{"negative uses default", -5, 20, 100, 20},
		{"within range", 42, 20, 100, 42},
		{"clamped to max", 500, 20, 100, 100},
		{"unset bounds fall back", 0, 0, 0, DefaultPageSize},
		{"unset max falls back", 1000, 10, 0, MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Limit(tt.requested, tt.def, tt.max))
		})
	}
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 15, ParseLimit("15"))
	assert.Equal(t, 0, ParseLimit(""))
	assert.Equal(t, 0, ParseLimit("ten"))
	assert.Equal(t, 0, ParseLimit("-3"))
}
