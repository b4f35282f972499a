package report

import (
	"fmt"
	"strings"
)

// FormatValue renders a USD notional in the compact form used throughout
// reports and alerts: $1.25M, $340K, $87.
func FormatValue(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("$%.2fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.0fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

// FormatPrice renders a price with precision appropriate to its magnitude.
func FormatPrice(p float64) string {
	switch {
	case p >= 1000:
		return "$" + groupThousands(fmt.Sprintf("%.0f", p))
	case p >= 1:
		return "$" + groupThousands(fmt.Sprintf("%.2f", p))
	default:
		return fmt.Sprintf("$%.4f", p)
	}
}

// PnLEmoji maps a profit percentage to the tiered emoji scale.
func PnLEmoji(pnlPct float64) string {
	switch {
	case pnlPct >= 50:
		return "🚀🚀🚀"
	case pnlPct >= 20:
		return "🚀🚀"
	case pnlPct >= 10:
		return "🚀"
	case pnlPct >= 5:
		return "📈"
	case pnlPct > 0:
		return "✅"
	case pnlPct == 0:
		return "➖"
	case pnlPct > -5:
		return "📉"
	case pnlPct > -10:
		return "⚠️"
	case pnlPct > -20:
		return "🔻"
	default:
		return "💀"
	}
}

// groupThousands inserts comma separators into the integer part of a
// formatted decimal string.
func groupThousands(s string) string {
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	n := len(intPart)
	if n <= 3 {
		return intPart + fracPart
	}

	var b strings.Builder
	b.Grow(n + n/3)
	lead := n % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + fracPart
}
