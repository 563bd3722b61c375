// Package sentiment classifies and formats sentiment scores.
//
// The thresholds live here and nowhere else: the chart tooltip, the news
// feed, the stats strip and the CLI all call Classify.
package sentiment

import (
	"math"
	"strconv"
)

// Threshold is the magnitude a score must exceed to leave Neutral.
const Threshold = 0.1

// Label is the three-way classification of a score.
type Label int

const (
	Neutral Label = iota
	Bullish
	Bearish
)

// Classify maps a score in [-1, 1] to a Label.
// Comparisons are strict: exactly 0.1 and -0.1 are Neutral. NaN is Neutral.
func Classify(score float64) Label {
	switch {
	case score > Threshold:
		return Bullish
	case score < -Threshold:
		return Bearish
	default:
		return Neutral
	}
}

func (l Label) String() string {
	switch l {
	case Bullish:
		return "Bullish"
	case Bearish:
		return "Bearish"
	default:
		return "Neutral"
	}
}

// Emoji returns the glyph shown next to the label.
func (l Label) Emoji() string {
	switch l {
	case Bullish:
		return "🚀"
	case Bearish:
		return "📉"
	default:
		return "⚖️"
	}
}

// Signed formats a score with a fixed number of decimals and a leading "+"
// for positive values.
func Signed(score float64, decimals int) string {
	if math.IsNaN(score) {
		return "NaN"
	}
	s := strconv.FormatFloat(score, 'f', decimals, 64)
	// -0.00 reads as bearish in a list of scores; print it as 0.00.
	if s[0] == '-' && isZero(s[1:]) {
		s = s[1:]
	}
	if score > 0 && !isZero(s) {
		return "+" + s
	}
	return s
}

// Fixed formats a score with a fixed number of decimals and no sign prefix.
func Fixed(score float64, decimals int) string {
	return strconv.FormatFloat(score, 'f', decimals, 64)
}

func isZero(s string) bool {
	for _, r := range s {
		if r != '0' && r != '.' {
			return false
		}
	}
	return true
}
