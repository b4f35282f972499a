package model

import "fmt"

// Whale is a tracked Hyperliquid account.
type Whale struct {
	Address string
	Name    string
}

// ShortAddress returns the abbreviated form used in reports and logs,
// e.g. "0x1a2b...9f8e".
func (w Whale) ShortAddress() string {
	if len(w.Address) <= 10 {
		return w.Address
	}
	return fmt.Sprintf("%s...%s", w.Address[:6], w.Address[len(w.Address)-4:])
}
