package model

// Side is the direction of a perpetual position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// SideFromSize derives the position side from a signed size.
func SideFromSize(signedSize float64) Side {
	if signedSize < 0 {
		return SideShort
	}
	return SideLong
}

// trackedCoins is the strict whitelist: everything else is dropped before it
// reaches reports, snapshots, or alerts.
var trackedCoins = map[string]struct{}{
	"BTC": {},
	"ETH": {},
	"SOL": {},
}

// TrackedCoins returns the whitelist in display order.
func TrackedCoins() []string {
	return []string{"BTC", "ETH", "SOL"}
}

// IsTracked reports whether coin is on the whitelist.
func IsTracked(coin string) bool {
	_, ok := trackedCoins[coin]
	return ok
}

// Position is one open perpetual position of a whale.
type Position struct {
	Coin             string
	Side             Side
	Size             float64 // absolute contract size
	NotionalUSD      float64 // abs(size * mark price)
	EntryPrice       float64
	MarkPrice        float64
	PnLUSD           float64
	PnLPct           float64
	Leverage         float64
	LiquidationPrice float64
}

// WhalePositions is the current state of one whale: positions sorted by
// notional value, largest first.
type WhalePositions struct {
	Whale            Whale
	Positions        []Position
	TotalNotionalUSD float64
}

// PnLPct computes the signed profit percentage for a position. Long positions
// profit when mark rises above entry, shorts when it falls below. Returns 0
// when the entry price is unknown.
func PnLPct(side Side, entry, mark float64) float64 {
	if entry <= 0 {
		return 0
	}
	if side == SideShort {
		return (entry - mark) / entry * 100
	}
	return (mark - entry) / entry * 100
}
