package model

import (
	"time"

	"github.com/google/uuid"
)

// PositionSnapshot is one persisted observation of a whale position.
type PositionSnapshot struct {
	ID           uuid.UUID
	WhaleAddress string
	WhaleName    string
	Coin         string
	Side         Side
	Size         float64
	NotionalUSD  float64
	EntryPrice   float64
	MarkPrice    float64
	PnLUSD       float64
	TakenAt      time.Time
	CreatedAt    time.Time
}

// AlertLogEntry records a dispatched alert for auditing.
type AlertLogEntry struct {
	ID           uuid.UUID
	AlertType    string
	WhaleAddress string
	Coin         string
	Title        string
	Message      string
	SentAt       time.Time
}
