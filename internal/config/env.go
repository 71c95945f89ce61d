package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides lists the environment variables that override survey.yaml.
// Unset variables leave the loaded value untouched.
type envOverrides struct {
	Endpoint      string `env:"QUEST_ENDPOINT"`
	SingleSubmit  bool   `env:"QUEST_SINGLE_SUBMIT"`
	DebounceMS    int    `env:"QUEST_DEBOUNCE_MS"`
	CommitDelayMS int    `env:"QUEST_COMMIT_DELAY_MS"`
	TimeoutMS     int    `env:"QUEST_SUBMIT_TIMEOUT_MS"`
}

// ApplyEnv overlays QUEST_* environment variables onto cfg.
func ApplyEnv(cfg *SurveyConfig) error {
	o := envOverrides{
		Endpoint:      cfg.Submission.Endpoint,
		SingleSubmit:  cfg.Submission.SingleSubmit,
		DebounceMS:    cfg.Capture.DebounceMS,
		CommitDelayMS: cfg.Capture.CommitDelayMS,
		TimeoutMS:     cfg.Submission.TimeoutMS,
	}
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.TimeoutMS < 0 {
		return fmt.Errorf("parse env: durations must not be negative")
	}
	capture := cfg.Capture
	capture.DebounceMS = o.DebounceMS
	capture.CommitDelayMS = o.CommitDelayMS
	if err := capture.Validate(); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	cfg.Submission.Endpoint = o.Endpoint
	cfg.Submission.SingleSubmit = o.SingleSubmit
	cfg.Submission.TimeoutMS = o.TimeoutMS
	cfg.Capture = capture
	return nil
}
