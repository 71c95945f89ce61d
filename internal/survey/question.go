// Package survey implements question progression and answer capture for a
// questionnaire driven by game events.
//
// A Session owns the position in the questionnaire and the recorded answers.
// The presentation layer feeds it trigger events (a struck block, a submitted
// text prompt) and reads back the active question; it never mutates answers
// directly. Sessions are not safe for concurrent use: one session belongs to
// one respondent and is driven from a single event loop.
package survey

import (
	"fmt"
	"strings"
)

// Kind tags how a question is answered.
type Kind int

const (
	// KindScale questions take an integer in an inclusive range.
	KindScale Kind = iota
	// KindText questions take free-form text.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindScale:
		return "scale"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Question is an immutable questionnaire entry.
type Question struct {
	Section string // Display grouping, not used by logic
	Text    string
	Kind    Kind
	Min     int // Scale bounds, inclusive; zero for text questions
	Max     int
}

// Scale builds a scale question answered with a value in [lo, hi].
func Scale(section, text string, lo, hi int) Question {
	return Question{Section: section, Text: text, Kind: KindScale, Min: lo, Max: hi}
}

// OpenText builds a free-text question.
func OpenText(section, text string) Question {
	return Question{Section: section, Text: text, Kind: KindText}
}

// InRange reports whether v is an acceptable answer for a scale question.
func (q Question) InRange(v int) bool {
	return q.Kind == KindScale && v >= q.Min && v <= q.Max
}

// Span returns the number of selectable scale values.
func (q Question) Span() int {
	if q.Kind != KindScale {
		return 0
	}
	return q.Max - q.Min + 1
}

// QuestionList is the ordered questionnaire, fixed for the life of a session.
type QuestionList []Question

// Validate checks that the list is non-empty and every question is well formed.
func (l QuestionList) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("survey: questionnaire is empty")
	}
	for i, q := range l {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("survey: question %d has no text", i+1)
		}
		switch q.Kind {
		case KindScale:
			if q.Min > q.Max {
				return fmt.Errorf("survey: question %d has scale %d..%d", i+1, q.Min, q.Max)
			}
		case KindText:
		default:
			return fmt.Errorf("survey: question %d has unknown kind %d", i+1, q.Kind)
		}
	}
	return nil
}
