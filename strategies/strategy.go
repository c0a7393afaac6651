// Package strategies contains Strategy collaborator implementations. A
// strategy only reads the feed's currently visible history and emits
// signals; sizing, execution and accounting happen elsewhere.
package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/backsim/backtest"
)

// ByName builds a strategy from its CLI/config name.
func ByName(name string, fast, slow int) (backtest.Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return Noop{}, nil

	case "open-once", "buy-and-hold":
		return NewOpenOnce(), nil

	case "ma-cross", "macross":
		return NewMACross(fast, slow), nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, open-once, ma-cross)", name)
	}
}
