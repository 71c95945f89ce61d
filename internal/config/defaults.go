package config

import (
	_ "embed"
)

//go:embed defaults/survey.yaml
var defaultSurveyYAML []byte

//go:embed defaults/questions.yaml
var defaultQuestionsYAML []byte

// DefaultSurveyConfig returns the default survey game configuration.
func DefaultSurveyConfig() SurveyConfig {
	return SurveyConfig{
		Capture: CaptureConfig{
			DebounceMS:    350,
			CommitDelayMS: 380,
			PromptDelayMS: 200,
		},
		Physics: PhysicsConfig{
			Gravity:      0.12,
			JumpImpulse:  -1.6,
			MaxFallSpeed: 1.5,
			RunSpeed:     0.6,
			RunHoldTicks: 6,
		},
		Player: PlayerConfig{
			X:            4,
			Width:        3,
			Height:       2,
			GroundOffset: 2,
		},
		Blocks: BlocksConfig{
			Width: 5,
			Gap:   2,
			Above: 5,
		},
		Goombas: GoombasConfig{
			Count: 2,
			Speed: 0.15,
		},
		Zone: ZoneConfig{
			Left:  0.32,
			Right: 0.68,
		},
		Submission: SubmissionConfig{
			TimeoutMS: 5000,
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a config file name.
func GetDefaultYAML(name string) []byte {
	switch name {
	case "survey":
		return defaultSurveyYAML
	case "questions":
		return defaultQuestionsYAML
	default:
		return nil
	}
}
