package hyperliquid

import (
	"fmt"
	"strconv"
)

// infoRequest is the request envelope for the info endpoint. The endpoint is
// a single POST URL dispatching on the "type" field.
type infoRequest struct {
	Type string `json:"type"`
	User string `json:"user,omitempty"`
}

const (
	infoTypeAllMids            = "allMids"
	infoTypeClearinghouseState = "clearinghouseState"
)

// APIError is a non-2xx response from the info endpoint.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hyperliquid: http status %d: %s", e.Status, e.Body)
}

// Leverage describes the leverage configuration of a position.
type Leverage struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// RawPosition is a single perp position as returned by clearinghouseState.
// Decimal quantities arrive as strings; liquidationPx may be null.
type RawPosition struct {
	Coin           string   `json:"coin"`
	Szi            string   `json:"szi"`
	EntryPx        string   `json:"entryPx"`
	MarkPx         string   `json:"markPx"`
	PositionValue  string   `json:"positionValue"`
	UnrealizedPnl  string   `json:"unrealizedPnl"`
	ReturnOnEquity string   `json:"returnOnEquity"`
	LiquidationPx  *string  `json:"liquidationPx"`
	Leverage       Leverage `json:"leverage"`
}

// AssetPosition wraps a position with its margin mode.
type AssetPosition struct {
	Type     string      `json:"type"`
	Position RawPosition `json:"position"`
}

// MarginSummary is the account-level margin state.
type MarginSummary struct {
	AccountValue string `json:"accountValue"`
	TotalNtlPos  string `json:"totalNtlPos"`
	TotalRawUsd  string `json:"totalRawUsd"`
}

// ClearinghouseState is the full perp account state for one user.
type ClearinghouseState struct {
	AssetPositions []AssetPosition `json:"assetPositions"`
	MarginSummary  MarginSummary   `json:"marginSummary"`
	Time           int64           `json:"time"`
}

// ParseDecimal converts a string-encoded decimal to float64, returning 0 for
// empty or malformed values. The info endpoint is consistent enough that a
// soft failure here is preferable to dropping a whole whale report.
func ParseDecimal(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
