// Package config provides YAML-based configuration loading for the survey
// game and its questionnaire, with environment overrides.
package config

import (
	"fmt"
	"time"
)

// SurveyConfig contains all tunables for the survey game.
type SurveyConfig struct {
	Capture    CaptureConfig    `yaml:"capture"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Player     PlayerConfig     `yaml:"player"`
	Blocks     BlocksConfig     `yaml:"blocks"`
	Goombas    GoombasConfig    `yaml:"goombas"`
	Zone       ZoneConfig       `yaml:"zone"`
	Submission SubmissionConfig `yaml:"submission"`
}

// CaptureConfig defines answer capture timing.
type CaptureConfig struct {
	DebounceMS    int `yaml:"debounce_ms"`     // Minimum gap between accepted triggers
	CommitDelayMS int `yaml:"commit_delay_ms"` // Feedback shown before a selection is committed
	PromptDelayMS int `yaml:"prompt_delay_ms"` // Time in the prompt zone before the text prompt opens
}

// Validate checks that the timings are usable. A selection must stay on screen
// at least as long as the debounce window so a later mark is never dropped
// while its block still shows feedback.
func (c CaptureConfig) Validate() error {
	if c.DebounceMS < 0 || c.CommitDelayMS < 0 || c.PromptDelayMS < 0 {
		return fmt.Errorf("capture: durations must not be negative")
	}
	if c.CommitDelayMS < c.DebounceMS {
		return fmt.Errorf("capture: commit_delay_ms (%d) must not be shorter than debounce_ms (%d)",
			c.CommitDelayMS, c.DebounceMS)
	}
	return nil
}

// Debounce returns the debounce window.
func (c CaptureConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// CommitDelay returns the delay between marking and committing a selection.
func (c CaptureConfig) CommitDelay() time.Duration {
	return time.Duration(c.CommitDelayMS) * time.Millisecond
}

// PromptDelay returns how long the avatar must stand in the zone.
func (c CaptureConfig) PromptDelay() time.Duration {
	return time.Duration(c.PromptDelayMS) * time.Millisecond
}

// PhysicsConfig defines avatar physics, in cells and ticks.
type PhysicsConfig struct {
	Gravity      float64 `yaml:"gravity"`
	JumpImpulse  float64 `yaml:"jump_impulse"`
	MaxFallSpeed float64 `yaml:"max_fall_speed"`
	RunSpeed     float64 `yaml:"run_speed"`
	RunHoldTicks int     `yaml:"run_hold_ticks"` // Ticks a direction key keeps the avatar moving
}

// PlayerConfig defines the avatar hitbox.
type PlayerConfig struct {
	X            int `yaml:"x"`
	Width        int `yaml:"width"`
	Height       int `yaml:"height"`
	GroundOffset int `yaml:"ground_offset"`
}

// BlocksConfig defines the layout of answer blocks.
type BlocksConfig struct {
	Width int `yaml:"width"`
	Gap   int `yaml:"gap"`
	Above int `yaml:"above"` // Rows between the ground and the block bottoms
}

// GoombasConfig defines ground patrols.
type GoombasConfig struct {
	Count int     `yaml:"count"`
	Speed float64 `yaml:"speed"`
}

// ZoneConfig defines the text prompt zone as fractions of the screen width.
type ZoneConfig struct {
	Left  float64 `yaml:"left"`
	Right float64 `yaml:"right"`
}

// SubmissionConfig defines where completed answers are sent.
type SubmissionConfig struct {
	Endpoint     string `yaml:"endpoint"` // Empty keeps responses local
	TimeoutMS    int    `yaml:"timeout_ms"`
	SingleSubmit bool   `yaml:"single_submit"`
}

// Timeout returns the HTTP timeout for a submission.
func (c SubmissionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// QuestionFile is the on-disk questionnaire format.
type QuestionFile struct {
	Questions []QuestionEntry `yaml:"questions"`
}

// QuestionEntry is one questionnaire entry. Scale questions give either
// scale (answers 1..scale) or explicit min/max.
type QuestionEntry struct {
	Section string `yaml:"section"`
	Text    string `yaml:"text"`
	Type    string `yaml:"type"` // "scale" or "text"
	Scale   int    `yaml:"scale,omitempty"`
	Min     *int   `yaml:"min,omitempty"`
	Max     *int   `yaml:"max,omitempty"`
}
