package survey

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAnswer reports a value the active question cannot take.
	ErrInvalidAnswer = errors.New("survey: invalid answer")

	// ErrInvalidState reports an operation the session cannot perform in its
	// current state: the questionnaire is complete, or text capture was not
	// opened (or is open) when the operation requires otherwise.
	ErrInvalidState = errors.New("survey: invalid state")
)

// KindError is returned when an operation targets the wrong kind of question,
// such as a scale value while a text question is active. It matches both
// ErrInvalidState and ErrInvalidAnswer.
type KindError struct {
	Index int
	Want  Kind
	Got   Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("survey: question %d is a %s question, not %s", e.Index+1, e.Got, e.Want)
}

// Is lets errors.Is match the kind error against either sentinel.
func (e *KindError) Is(target error) bool {
	return target == ErrInvalidState || target == ErrInvalidAnswer
}
