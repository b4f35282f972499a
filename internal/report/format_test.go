package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"millions", 12_500_000, "$12.50M"},
		{"exactly one million", 1_000_000, "$1.00M"},
		{"thousands", 340_000, "$340K"},
		{"exactly one thousand", 1_000, "$1K"},
		{"small", 87, "$87"},
		{"zero", 0, "$0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.value))
		})
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  string
	}{
		{"six figures", 104250, "$104,250"},
		{"four figures", 3999, "$3,999"},
		{"three figures with cents", 195.5, "$195.50"},
		{"just above one", 1.25, "$1.25"},
		{"sub dollar", 0.1234, "$0.1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice(tt.price))
		})
	}
}

func TestPnLEmoji(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{75, "🚀🚀🚀"},
		{50, "🚀🚀🚀"},
		{25, "🚀🚀"},
		{12, "🚀"},
		{7, "📈"},
		{0.5, "✅"},
		{0, "➖"},
		{-2, "📉"},
		{-7, "⚠️"},
		{-15, "🔻"},
		{-20, "💀"},
		{-60, "💀"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PnLEmoji(tt.pct), "pct=%v", tt.pct)
	}
}
