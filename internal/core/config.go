package core

import "time"

// RuntimeConfig contains configuration passed to games at initialization.
// Games use this to adapt to screen size and for deterministic simulation.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // RNG seed for deterministic animation
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// TickDuration returns the simulated time covered by one tick.
func (c RuntimeConfig) TickDuration() time.Duration {
	rate := c.TickRate
	if rate <= 0 {
		rate = 60
	}
	return time.Second / time.Duration(rate)
}

// Ticks converts a duration to a whole number of ticks, rounding up so that a
// non-zero delay never collapses to zero ticks.
func (c RuntimeConfig) Ticks(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	step := c.TickDuration()
	return int((d + step - 1) / step)
}

// GameState is returned by Game.State() to communicate progress to the platform.
type GameState struct {
	Answered int  // Questions answered so far
	Total    int  // Questions in the questionnaire
	Complete bool // Whether the questionnaire has been completed
	Paused   bool // Whether the game is paused
	Pending  bool // A selection is waiting for its commit
}

// StepResult is returned by Game.Step() after each simulation tick.
type StepResult struct {
	State GameState
}
