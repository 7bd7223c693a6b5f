package engine

import (
	"math/rand"
	"time"
)

// Random is the source of dice, card draws and bot decisions
type Random interface {
	// Intn returns a value in [0, n)
	Intn(n int) int
	// Float64 returns a value in [0.0, 1.0)
	Float64() float64
}

// Clock returns the current time
type Clock func() time.Time

type defaultRandom struct{}

// The package-level math/rand functions are safe for concurrent use.
func (defaultRandom) Intn(n int) int   { return rand.Intn(n) }
func (defaultRandom) Float64() float64 { return rand.Float64() }

// DefaultRandom returns a goroutine-safe random source
func DefaultRandom() Random {
	return defaultRandom{}
}

func rollDie(r Random) int {
	return r.Intn(6) + 1
}
