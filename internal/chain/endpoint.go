package chain

import (
	"errors"
	"math/rand"
)

// ErrNoAlternate reports that a swap was requested but the network has no
// other endpoint to switch to. Callers keep the active endpoint and treat
// this as advisory.
var ErrNoAlternate = errors.New("no alternate rpc endpoint")

// Selector tracks the active RPC endpoint for one network. The random source
// is injected so endpoint choice is reproducible under a fixed seed.
type Selector struct {
	network Network
	rng     *rand.Rand
	active  string
}

func NewSelector(network Network, rng *rand.Rand) (*Selector, error) {
	if len(network.RPCs) == 0 {
		return nil, errors.New("network has no rpc endpoints")
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	s := &Selector{network: network, rng: rng}
	s.active = network.RPCs[rng.Intn(len(network.RPCs))]
	return s, nil
}

func (s *Selector) Active() string {
	return s.active
}

func (s *Selector) Network() Network {
	return s.network
}

// Swap replaces the active endpoint with a different one chosen uniformly
// from the remaining set. The endpoint list itself is never modified.
func (s *Selector) Swap() (string, error) {
	if len(s.network.RPCs) == 1 {
		return s.active, ErrNoAlternate
	}
	rest := make([]string, 0, len(s.network.RPCs)-1)
	for _, rpc := range s.network.RPCs {
		if rpc != s.active {
			rest = append(rest, rpc)
		}
	}
	if len(rest) == 0 {
		return s.active, ErrNoAlternate
	}
	s.active = rest[s.rng.Intn(len(rest))]
	return s.active, nil
}
