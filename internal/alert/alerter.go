// Package alert dispatches position-change and health notifications to the
// configured channels.
package alert

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"sync"
	"time"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/domain/model"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/metrics"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/report"
)

// ErrSuppressed is returned by Multi.Send when the alert fell inside its
// cooldown window and was not delivered to any channel.
var ErrSuppressed = errors.New("alert suppressed by cooldown")

// Type identifies what an alert is about.
type Type string

const (
	TypePositionOpened    Type = "POSITION_OPENED"
	TypePositionClosed    Type = "POSITION_CLOSED"
	TypePositionFlipped   Type = "POSITION_FLIPPED"
	TypePositionIncreased Type = "POSITION_INCREASED"
	TypePositionReduced   Type = "POSITION_REDUCED"
	TypePollerUnhealthy   Type = "POLLER_UNHEALTHY"
	TypePollerRecovered   Type = "POLLER_RECOVERED"
)

// Alert is one notification. Message carries Telegram-safe HTML; channels
// that need plain payloads use the structured fields instead.
type Alert struct {
	Type    Type
	Whale   model.Whale
	Coin    string
	Message string
	At      time.Time
}

// CooldownKey identifies the dedup bucket for an alert. Health alerts have no
// whale or coin and collapse to the type alone.
func (a Alert) CooldownKey() string {
	return fmt.Sprintf("%s:%s:%s", a.Type, a.Whale.Address, a.Coin)
}

// Alerter delivers alerts over one channel.
type Alerter interface {
	Name() string
	Send(ctx context.Context, a Alert) error
}

var changeKindTypes = map[model.ChangeKind]Type{
	model.ChangeOpened:    TypePositionOpened,
	model.ChangeClosed:    TypePositionClosed,
	model.ChangeFlipped:   TypePositionFlipped,
	model.ChangeIncreased: TypePositionIncreased,
	model.ChangeReduced:   TypePositionReduced,
}

// FromChange renders a position change as an alert.
func FromChange(c model.PositionChange, at time.Time) Alert {
	return Alert{
		Type:    changeKindTypes[c.Kind],
		Whale:   c.Whale,
		Coin:    c.Coin,
		Message: changeMessage(c),
		At:      at,
	}
}

func changeMessage(c model.PositionChange) string {
	name := html.EscapeString(c.Whale.Name)

	switch c.Kind {
	case model.ChangeOpened:
		return fmt.Sprintf("🟢 <b>%s</b> opened a %s %s position worth %s",
			name, c.Coin, c.Curr.Side, report.FormatValue(c.Curr.NotionalUSD))
	case model.ChangeClosed:
		return fmt.Sprintf("🔴 <b>%s</b> closed their %s %s position (%s)",
			name, c.Coin, c.Prev.Side, report.FormatValue(c.Prev.NotionalUSD))
	case model.ChangeFlipped:
		return fmt.Sprintf("🔄 <b>%s</b> flipped %s from %s to %s, now %s",
			name, c.Coin, c.Prev.Side, c.Curr.Side, report.FormatValue(c.Curr.NotionalUSD))
	case model.ChangeIncreased:
		return fmt.Sprintf("⬆️ <b>%s</b> increased their %s %s by %s to %s",
			name, c.Coin, c.Curr.Side, report.FormatValue(c.DeltaNotionalUSD), report.FormatValue(c.Curr.NotionalUSD))
	case model.ChangeReduced:
		return fmt.Sprintf("⬇️ <b>%s</b> reduced their %s %s by %s to %s",
			name, c.Coin, c.Curr.Side, report.FormatValue(-c.DeltaNotionalUSD), report.FormatValue(c.Curr.NotionalUSD))
	default:
		return fmt.Sprintf("<b>%s</b> %s position changed (%s)", name, c.Coin, c.Kind)
	}
}

// Unhealthy builds the alert fired when polling keeps failing.
func Unhealthy(consecutiveFailures int, at time.Time) Alert {
	return Alert{
		Type:    TypePollerUnhealthy,
		Message: fmt.Sprintf("⚠️ <b>Tracker unhealthy</b>: %d consecutive poll failures", consecutiveFailures),
		At:      at,
	}
}

// Recovered builds the alert fired when polling succeeds again after being
// unhealthy.
func Recovered(at time.Time) Alert {
	return Alert{
		Type:    TypePollerRecovered,
		Message: "✅ <b>Tracker recovered</b>: polling is healthy again",
		At:      at,
	}
}

// Multi fans an alert out to every channel, suppressing repeats of the same
// cooldown key inside the cooldown window. Channel failures are logged and do
// not block the remaining channels.
type Multi struct {
	channels []Alerter
	cooldown time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
	nowFn    func() time.Time
}

func NewMulti(logger *slog.Logger, cooldown time.Duration, channels ...Alerter) *Multi {
	return &Multi{
		channels: channels,
		cooldown: cooldown,
		logger:   logger.With("component", "alert"),
		lastSent: make(map[string]time.Time),
		nowFn:    time.Now,
	}
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Send(ctx context.Context, a Alert) error {
	if !m.admit(a) {
		metrics.AlertsCooldownSkipped.Inc()
		m.logger.Debug("alert suppressed by cooldown", "key", a.CooldownKey())
		return ErrSuppressed
	}

	var lastErr error
	for _, ch := range m.channels {
		if err := ch.Send(ctx, a); err != nil {
			lastErr = err
			m.logger.Error("alert channel send failed",
				"channel", ch.Name(),
				"alert_type", a.Type,
				"error", err,
			)
			continue
		}
		metrics.AlertsSentTotal.WithLabelValues(ch.Name(), string(a.Type)).Inc()
	}
	return lastErr
}

// admit records the send time and reports whether the alert is outside its
// cooldown window.
func (m *Multi) admit(a Alert) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := a.CooldownKey()
	now := m.nowFn()
	if last, ok := m.lastSent[key]; ok && now.Sub(last) < m.cooldown {
		return false
	}
	m.lastSent[key] = now
	return true
}

// Noop discards every alert. Used when no channel is configured.
type Noop struct{}

func (Noop) Name() string                            { return "noop" }
func (Noop) Send(ctx context.Context, a Alert) error { return nil }
