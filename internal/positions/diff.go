package positions

import (
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/domain/model"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/metrics"
)

// DiffConfig sets the materiality thresholds for change detection.
type DiffConfig struct {
	// MinNotionalUSD is the floor below which changes are ignored as dust.
	MinNotionalUSD float64
	// MinChangePct is the minimum relative notional move, in percent, for a
	// size change on an existing position to count.
	MinChangePct float64
}

// Diff compares two consecutive whale snapshots and returns the material
// position changes, ordered by whale then by absolute notional delta.
func Diff(prev, curr []model.WhalePositions, cfg DiffConfig) []model.PositionChange {
	prevByWhale := indexByWhale(prev)

	var changes []model.PositionChange
	seen := make(map[string]map[string]bool, len(curr))

	for _, wp := range curr {
		prevPositions := prevByWhale[wp.Whale.Address]
		seenCoins := make(map[string]bool, len(wp.Positions))
		seen[wp.Whale.Address] = seenCoins

		for i := range wp.Positions {
			pos := &wp.Positions[i]
			seenCoins[pos.Coin] = true

			prevPos, had := prevPositions[pos.Coin]
			if !had {
				if pos.NotionalUSD >= cfg.MinNotionalUSD {
					changes = append(changes, change(model.ChangeOpened, wp.Whale, pos.Coin, nil, pos, pos.NotionalUSD))
				}
				continue
			}

			if prevPos.Side != pos.Side {
				if pos.NotionalUSD >= cfg.MinNotionalUSD || prevPos.NotionalUSD >= cfg.MinNotionalUSD {
					changes = append(changes, change(model.ChangeFlipped, wp.Whale, pos.Coin, prevPos, pos, pos.NotionalUSD-prevPos.NotionalUSD))
				}
				continue
			}

			delta := pos.NotionalUSD - prevPos.NotionalUSD
			if !materialResize(delta, pos.NotionalUSD, cfg) {
				continue
			}
			kind := model.ChangeIncreased
			if delta < 0 {
				kind = model.ChangeReduced
			}
			changes = append(changes, change(kind, wp.Whale, pos.Coin, prevPos, pos, delta))
		}
	}

	// Positions present before but absent now are closes.
	for _, wp := range prev {
		seenCoins := seen[wp.Whale.Address]
		if seenCoins == nil {
			// The whale was dropped from the current snapshot (fetch failure);
			// silence, not a close.
			continue
		}
		for i := range wp.Positions {
			pos := &wp.Positions[i]
			if seenCoins[pos.Coin] {
				continue
			}
			if pos.NotionalUSD >= cfg.MinNotionalUSD {
				changes = append(changes, change(model.ChangeClosed, wp.Whale, pos.Coin, pos, nil, -pos.NotionalUSD))
			}
		}
	}

	for _, c := range changes {
		metrics.PositionChangesTotal.WithLabelValues(string(c.Kind)).Inc()
	}
	return changes
}

// materialResize reports whether a notional delta on an existing position
// clears both the absolute floor and the relative threshold. The relative
// threshold is taken against the current notional.
func materialResize(delta, currNotional float64, cfg DiffConfig) bool {
	mag := delta
	if mag < 0 {
		mag = -mag
	}
	if mag < cfg.MinNotionalUSD {
		return false
	}
	if cfg.MinChangePct > 0 && currNotional > 0 {
		return mag >= currNotional*cfg.MinChangePct/100
	}
	return true
}

func change(kind model.ChangeKind, whale model.Whale, coin string, prev, curr *model.Position, delta float64) model.PositionChange {
	return model.PositionChange{
		Kind:             kind,
		Whale:            whale,
		Coin:             coin,
		Prev:             prev,
		Curr:             curr,
		DeltaNotionalUSD: delta,
	}
}

func indexByWhale(all []model.WhalePositions) map[string]map[string]*model.Position {
	out := make(map[string]map[string]*model.Position, len(all))
	for _, wp := range all {
		byCoin := make(map[string]*model.Position, len(wp.Positions))
		for i := range wp.Positions {
			byCoin[wp.Positions[i].Coin] = &wp.Positions[i]
		}
		out[wp.Whale.Address] = byCoin
	}
	return out
}
