package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/quest/internal/survey"
)

// LoadSurvey loads the survey game configuration.
// Search order: customPath -> ~/.quest/configs/survey.yaml -> ./configs/survey.yaml -> embedded default
func LoadSurvey(customPath string) (SurveyConfig, error) {
	cfg := DefaultSurveyConfig()
	if err := load("survey.yaml", customPath, defaultSurveyYAML, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Capture.Validate(); err != nil {
		return DefaultSurveyConfig(), err
	}
	return cfg, nil
}

// LoadQuestions loads and validates the questionnaire.
// Search order: customPath -> ~/.quest/configs/questions.yaml -> ./configs/questions.yaml -> embedded default
func LoadQuestions(customPath string) (survey.QuestionList, error) {
	var file QuestionFile
	if err := load("questions.yaml", customPath, defaultQuestionsYAML, &file); err != nil {
		return nil, err
	}
	return file.QuestionList()
}

// ParseQuestions decodes a questionnaire from YAML.
func ParseQuestions(data []byte) (survey.QuestionList, error) {
	var file QuestionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse questions: %w", err)
	}
	return file.QuestionList()
}

// QuestionList converts the file entries into a validated questionnaire.
func (f QuestionFile) QuestionList() (survey.QuestionList, error) {
	list := make(survey.QuestionList, 0, len(f.Questions))
	for i, e := range f.Questions {
		q, err := e.question()
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		list = append(list, q)
	}
	if err := list.Validate(); err != nil {
		return nil, err
	}
	return list, nil
}

func (e QuestionEntry) question() (survey.Question, error) {
	switch strings.ToLower(strings.TrimSpace(e.Type)) {
	case "text":
		return survey.OpenText(e.Section, e.Text), nil
	case "scale", "":
		lo, hi := 1, e.Scale
		if e.Scale == 0 {
			hi = 5
		}
		if e.Min != nil {
			lo = *e.Min
		}
		if e.Max != nil {
			hi = *e.Max
		}
		return survey.Scale(e.Section, e.Text, lo, hi), nil
	default:
		return survey.Question{}, fmt.Errorf("unknown question type %q", e.Type)
	}
}

// load decodes the first config source found into dst. A missing or broken
// user or local file falls through to the next source; a custom path must
// exist and parse.
func load(filename, customPath string, embedded []byte, dst any) error {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(expandHome(customPath))
		if err != nil {
			return fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(filename); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, dst); err == nil {
				return nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", filename)); err == nil {
		if err := yaml.Unmarshal(data, dst); err == nil {
			return nil
		}
	}

	// Use embedded default YAML; the caller's hardcoded defaults stay in
	// place if it cannot be decoded.
	yaml.Unmarshal(embedded, dst) //nolint:errcheck
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".quest", "configs", filename)
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
