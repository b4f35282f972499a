package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/domain/model"
)

func sampleState() []model.WhalePositions {
	return []model.WhalePositions{
		{
			Whale: model.Whale{Address: "0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b", Name: "Big <Fish>"},
			Positions: []model.Position{
				{Coin: "BTC", Side: model.SideLong, Size: 10, NotionalUSD: 1_000_000, EntryPrice: 95_000, MarkPrice: 100_000, PnLUSD: 50_000, PnLPct: 5.26},
				{Coin: "ETH", Side: model.SideShort, Size: 50, NotionalUSD: 200_000, EntryPrice: 4_200, MarkPrice: 4_000, PnLUSD: 10_000, PnLPct: 4.76},
			},
			TotalNotionalUSD: 1_200_000,
		},
		{
			Whale: model.Whale{Address: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", Name: "Sleeper"},
		},
	}
}

func TestRender_FullReport(t *testing.T) {
	out := Render(sampleState(), time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC))

	assert.Contains(t, out, "🐋 WHALE POSITIONS REPORT 🐋")
	assert.Contains(t, out, "Generated: 2026-08-27 12:00:00 UTC")

	assert.Contains(t, out, "https://www.coinglass.com/hyperliquid/0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b")
	assert.Contains(t, out, "Big &lt;Fish&gt;", "whale names must be HTML escaped")
	assert.Contains(t, out, "Address: 0x1a2b...9a0b")
	assert.Contains(t, out, "Total Value: $1.20M")

	assert.Contains(t, out, "<b>BTC LONG</b>")
	assert.Contains(t, out, "<b>ETH SHORT</b>")
	assert.Contains(t, out, "Entry: $95,000")
	assert.Contains(t, out, "Mark: $100,000")
	assert.Contains(t, out, "P&L: <b>+$50K</b> (<b>+5.26%</b>)")

	// The whale with no open positions is body-silent but counted below.
	assert.NotContains(t, out, "Sleeper")
	assert.Contains(t, out, "📈 SUMMARY")
	assert.Contains(t, out, "Active Whales: 1/2")
	assert.Contains(t, out, "Total Positions: 2")
	assert.Contains(t, out, "Total Value: $1.20M")
}

func TestRender_NegativePnLSigns(t *testing.T) {
	state := []model.WhalePositions{{
		Whale: model.Whale{Address: "0xcccccccccccccccccccccccccccccccccccccccc", Name: "Rekt"},
		Positions: []model.Position{
			{Coin: "SOL", Side: model.SideLong, NotionalUSD: 50_000, EntryPrice: 250, MarkPrice: 200, PnLUSD: -13_000, PnLPct: -20},
		},
		TotalNotionalUSD: 50_000,
	}}

	out := Render(state, time.Now())
	assert.Contains(t, out, "P&L: <b>-$13K</b> (<b>-20.00%</b>)")
	assert.Contains(t, out, "💀")
}

func TestRender_PnLSignsFollowDollarValue(t *testing.T) {
	// Funding payments can leave dollar PnL positive while the price moved
	// against the position; the rendered line keeps one sign throughout.
	state := []model.WhalePositions{{
		Whale: model.Whale{Address: "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee", Name: "Funded"},
		Positions: []model.Position{
			{Coin: "BTC", Side: model.SideShort, NotionalUSD: 400_000, EntryPrice: 100_000, MarkPrice: 101_000, PnLUSD: 5_000, PnLPct: -1},
		},
		TotalNotionalUSD: 400_000,
	}}

	out := Render(state, time.Now())
	assert.Contains(t, out, "P&L: <b>+$5K</b> (<b>+1.00%</b>)")
	assert.NotContains(t, out, "-1.00%")
}

func TestRender_NoPositions(t *testing.T) {
	state := []model.WhalePositions{
		{Whale: model.Whale{Address: "0xdddddddddddddddddddddddddddddddddddddddd", Name: "Flat"}},
	}
	out := Render(state, time.Now())
	assert.Contains(t, out, "No active BTC/ETH/SOL positions found")
	assert.NotContains(t, out, "SUMMARY")
}

func TestStartup(t *testing.T) {
	out := Startup(3)
	assert.Contains(t, out, "Whale Position Info Bot Started!")
	assert.Contains(t, out, "Tracking <b>3</b> whale(s)")
	assert.Contains(t, out, "BTC, ETH, SOL")
	assert.Contains(t, out, "Type <b>go</b>")
}

func TestSplit_ShortMessagePassesThrough(t *testing.T) {
	parts := Split("hello", MaxMessageLen)
	require.Len(t, parts, 1)
	assert.Equal(t, "hello", parts[0])
}

func TestSplit_CutsOnBlankLines(t *testing.T) {
	blockA := strings.Repeat("a", 60)
	blockB := strings.Repeat("b", 60)
	blockC := strings.Repeat("c", 60)
	msg := blockA + "\n\n" + blockB + "\n\n" + blockC

	parts := Split(msg, 130)
	require.Len(t, parts, 2)
	assert.Equal(t, blockA+"\n\n"+blockB, parts[0])
	assert.Equal(t, blockC, parts[1])

	for _, p := range parts {
		assert.LessOrEqual(t, len(p), 130)
	}
}

func TestSplit_LongReportStaysUnderLimit(t *testing.T) {
	var whales []model.WhalePositions
	for i := 0; i < 30; i++ {
		whales = append(whales, sampleState()[0])
	}
	out := Render(whales, time.Now())
	require.Greater(t, len(out), MaxMessageLen, "fixture must actually exceed one message")

	parts := Split(out, MaxMessageLen)
	require.Greater(t, len(parts), 1)
	for i, p := range parts {
		assert.LessOrEqual(t, len(p), MaxMessageLen, "part %d over budget", i)
		assert.NotEmpty(t, p)
	}
	assert.Equal(t, strings.ReplaceAll(out, "\n\n", ""), strings.ReplaceAll(strings.Join(parts, ""), "\n\n", ""),
		"no content may be lost in the split")
}
