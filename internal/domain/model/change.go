package model

// ChangeKind categorizes how a tracked position moved between two polls.
type ChangeKind string

const (
	ChangeOpened    ChangeKind = "OPENED"
	ChangeClosed    ChangeKind = "CLOSED"
	ChangeFlipped   ChangeKind = "FLIPPED"
	ChangeIncreased ChangeKind = "INCREASED"
	ChangeReduced   ChangeKind = "REDUCED"
)

// PositionChange describes a material move in one (whale, coin) position.
// Prev is nil for ChangeOpened, Curr is nil for ChangeClosed.
type PositionChange struct {
	Kind             ChangeKind
	Whale            Whale
	Coin             string
	Prev             *Position
	Curr             *Position
	DeltaNotionalUSD float64
}
