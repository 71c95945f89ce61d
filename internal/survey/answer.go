package survey

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Answer is a recorded response: an integer for scale questions, a string
// for text questions.
type Answer struct {
	Kind  Kind
	Scale int
	Text  string
}

// ScaleAnswer wraps an integer answer.
func ScaleAnswer(v int) Answer {
	return Answer{Kind: KindScale, Scale: v}
}

// TextAnswer wraps a text answer.
func TextAnswer(s string) Answer {
	return Answer{Kind: KindText, Text: s}
}

// Value returns the answer as int or string.
func (a Answer) Value() any {
	if a.Kind == KindScale {
		return a.Scale
	}
	return a.Text
}

func (a Answer) String() string {
	if a.Kind == KindScale {
		return strconv.Itoa(a.Scale)
	}
	return a.Text
}

// MarshalJSON encodes the answer as a bare number or string.
func (a Answer) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Value())
}

// UnmarshalJSON accepts a bare number or string.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return fmt.Errorf("survey: scale answer must be a whole number, got %s", data)
		}
		*a = ScaleAnswer(int(t))
	case string:
		*a = TextAnswer(t)
	default:
		return fmt.Errorf("survey: answer must be a number or string, got %s", data)
	}
	return nil
}
