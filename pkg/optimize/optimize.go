// Package optimize runs the IL-level pass manager (spec.md §4.7): a small
// set of required passes that confirm invariants the IL generator already
// established, plus optional peephole simplifications enabled above O0.
// Passes implement (module) -> changed; the manager runs every registered
// pass in registration order, repeating full sweeps until one sweep makes
// no change anywhere (a global fixed point, not a per-pass one).
//
// Grounded loosely on the teacher's pkg/mir.optimiser.go for the general
// idea of a term-level rewrite over a typed IR driven by an optimisation
// level, adapted here into an explicit ordered pass list with fixed-point
// iteration and per-pass statistics, since corset's optimiser is a single
// fixed sequence of rewrites rather than a registration-based manager.
package optimize

import "github.com/blend65/blend65c/pkg/il"

// Level mirrors the optimization_level config values (spec.md §9.2).
// Only O0 and a subset of O1 are implemented; O2 and above run as O0.
type Level int

const (
	O0 Level = iota
	O1
	O2
	O3
	Os
	Oz
)

// Pass is one optimizer transformation over an IL module.
type Pass interface {
	Name() string
	Run(mod *il.Module) bool
}

// Stats reports how many times a pass actually changed the module across
// a Manager.Run call.
type Stats struct {
	Pass    string
	Applied int
}

// Manager runs an ordered list of passes to a global fixed point.
type Manager struct {
	passes []Pass
}

// maxRounds bounds fixed-point iteration; a well-behaved pass set
// converges in a handful of rounds, and a runaway pass is a compiler bug
// rather than something to loop on forever.
const maxRounds = 64

// New builds the pass manager for level: every level runs the required
// passes, O1 additionally runs the optional peephole passes, and every
// higher level runs as O0.
func New(level Level) *Manager {
	passes := []Pass{intrinsicLoweringInvariant{}}
	if level == O1 {
		passes = append(passes, constantBranchFold{})
	}
	return &Manager{passes: passes}
}

// Run applies every pass in registration order, repeating full sweeps
// until a sweep changes nothing.
func (m *Manager) Run(mod *il.Module) []Stats {
	counts := make([]int, len(m.passes))

	for round := 0; round < maxRounds; round++ {
		changedThisRound := false
		for i, p := range m.passes {
			if p.Run(mod) {
				counts[i]++
				changedThisRound = true
			}
		}
		if !changedThisRound {
			break
		}
	}

	stats := make([]Stats, len(m.passes))
	for i, p := range m.passes {
		stats[i] = Stats{Pass: p.Name(), Applied: counts[i]}
	}
	return stats
}
