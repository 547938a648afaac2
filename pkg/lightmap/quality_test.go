package lightmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityTextureSize(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"low", 256},
		{"medium", 512},
		{"high", 1024},
		{"HIGH", 1024},
		{" low ", 256},
		{"ultra", 512},
		{"", 512},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q := ParseQuality(tt.in)
			assert.Equal(t, tt.want, q.TextureSize())
			assert.Equal(t, tt.want/2, q.GridSize())
			assert.True(t, q.Valid())
		})
	}
}

func TestUnknownQualityFallsBack(t *testing.T) {
	q := Quality("ultra")
	assert.False(t, q.Valid())
	assert.Equal(t, 512, q.TextureSize())
	assert.Equal(t, 256, q.GridSize())
}
