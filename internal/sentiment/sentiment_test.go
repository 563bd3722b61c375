package sentiment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  Label
	}{
		{0.15, Bullish},
		{-0.2, Bearish},
		{0.0, Neutral},
		{0.1, Neutral},
		{-0.1, Neutral},
		{0.1000001, Bullish},
		{-0.1000001, Bearish},
		{1, Bullish},
		{-1, Bearish},
		{math.NaN(), Neutral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %v", tt.score)
	}
}

func TestLabelStrings(t *testing.T) {
	assert.Equal(t, "Bullish", Bullish.String())
	assert.Equal(t, "Bearish", Bearish.String())
	assert.Equal(t, "Neutral", Neutral.String())
	assert.Equal(t, "🚀", Bullish.Emoji())
	assert.Equal(t, "📉", Bearish.Emoji())
}

func TestSigned(t *testing.T) {
	tests := []struct {
		score    float64
		decimals int
		want     string
	}{
		{0.2, 2, "+0.20"},
		{-0.1, 2, "-0.10"},
		{0, 2, "0.00"},
		{0.8, 3, "+0.800"},
		{-0.0001, 2, "0.00"},
		{0.0001, 2, "0.00"},
		{-0.25, 3, "-0.250"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Signed(tt.score, tt.decimals), "score %v", tt.score)
	}
}

func TestFixed(t *testing.T) {
	assert.Equal(t, "0.200", Fixed(0.2, 3))
	assert.Equal(t, "-0.100", Fixed(-0.1, 3))
}
