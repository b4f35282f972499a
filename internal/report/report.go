// Package report renders whale position state as Telegram-ready HTML.
package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/domain/model"
)

const (
	// MaxMessageLen is the split budget per Telegram message. Telegram's hard
	// limit is 4096; staying under 4000 leaves headroom for HTML entities.
	MaxMessageLen = 4000

	coinglassURLPrefix = "https://www.coinglass.com/hyperliquid/"
	rulerWidth         = 40
)

// Render builds the full HTML positions report. Whales without open
// whitelisted positions are omitted from the body but counted in the summary.
func Render(all []model.WhalePositions, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("<b>🐋 WHALE POSITIONS REPORT 🐋</b>\n")
	fmt.Fprintf(&b, "<code>Generated: %s</code>\n", generatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "<code>%s</code>\n\n", strings.Repeat("=", rulerWidth))

	activeWhales := 0
	totalPositions := 0
	totalValue := 0.0

	for _, wp := range all {
		if len(wp.Positions) == 0 {
			continue
		}
		activeWhales++
		totalValue += wp.TotalNotionalUSD

		fmt.Fprintf(&b, "<b>📊 <a href='%s%s'>%s</a></b>\n",
			coinglassURLPrefix, wp.Whale.Address, html.EscapeString(wp.Whale.Name))
		fmt.Fprintf(&b, "<code>Address: %s</code>\n", wp.Whale.ShortAddress())
		fmt.Fprintf(&b, "<code>Total Value: %s</code>\n", FormatValue(wp.TotalNotionalUSD))
		fmt.Fprintf(&b, "<code>%s</code>\n", strings.Repeat("-", rulerWidth))

		for _, pos := range wp.Positions {
			totalPositions++

			fmt.Fprintf(&b, "<b>%s %s</b> %s\n", pos.Coin, pos.Side, PnLEmoji(pos.PnLPct))
			fmt.Fprintf(&b, "  Size: %s\n", FormatValue(pos.NotionalUSD))
			fmt.Fprintf(&b, "  Entry: %s\n", FormatPrice(pos.EntryPrice))
			fmt.Fprintf(&b, "  Mark: %s\n", FormatPrice(pos.MarkPrice))

			// Both signs follow the dollar PnL, so funding-skewed positions
			// never render a mixed "+$X (-Y%)" line.
			sign := "+"
			if pos.PnLUSD < 0 {
				sign = "-"
			}
			fmt.Fprintf(&b, "  P&L: <b>%s%s</b> (<b>%s%.2f%%</b>)\n\n",
				sign, FormatValue(abs(pos.PnLUSD)), sign, abs(pos.PnLPct))
		}

		b.WriteString("\n")
	}

	if activeWhales == 0 {
		b.WriteString("<i>No active BTC/ETH/SOL positions found</i>\n")
		return b.String()
	}

	fmt.Fprintf(&b, "<code>%s</code>\n", strings.Repeat("=", rulerWidth))
	b.WriteString("<b>📈 SUMMARY</b>\n")
	fmt.Fprintf(&b, "Active Whales: %d/%d\n", activeWhales, len(all))
	fmt.Fprintf(&b, "Total Positions: %d\n", totalPositions)
	fmt.Fprintf(&b, "Total Value: %s\n", FormatValue(totalValue))

	return b.String()
}

// Startup builds the announcement sent when the bot comes online.
func Startup(whaleCount int) string {
	return fmt.Sprintf(
		"🤖 <b>Whale Position Info Bot Started!</b>\n\n"+
			"Tracking <b>%d</b> whale(s)\n"+
			"Tokens: <b>%s only</b>\n\n"+
			"Type <b>go</b> to get current positions",
		whaleCount, strings.Join(model.TrackedCoins(), ", "))
}

// Split breaks a report into chunks of at most limit characters, cutting only
// at blank-line boundaries so whale blocks stay intact.
func Split(message string, limit int) []string {
	if len(message) <= limit {
		return []string{message}
	}

	parts := strings.Split(message, "\n\n")
	var messages []string
	var current strings.Builder

	for _, part := range parts {
		if current.Len()+len(part)+2 < limit {
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(part)
			continue
		}
		if current.Len() > 0 {
			messages = append(messages, current.String())
			current.Reset()
		}
		current.WriteString(part)
	}

	if current.Len() > 0 {
		messages = append(messages, current.String())
	}

	return messages
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
