package survey

import "fmt"

// Sequencer tracks the position in a questionnaire.
type Sequencer struct {
	questions QuestionList
	index     int
}

// NewSequencer positions a sequencer on the first question.
func NewSequencer(questions QuestionList) *Sequencer {
	return &Sequencer{questions: questions}
}

// Current returns the active question, or false when complete.
func (s *Sequencer) Current() (Question, bool) {
	if s.IsComplete() {
		return Question{}, false
	}
	return s.questions[s.index], true
}

// IsComplete reports whether every question has been passed.
func (s *Sequencer) IsComplete() bool {
	return s.index >= len(s.questions)
}

// Advance moves to the next question.
func (s *Sequencer) Advance() error {
	if s.IsComplete() {
		return fmt.Errorf("%w: advance past the last question", ErrInvalidState)
	}
	s.index++
	return nil
}

// Index returns the position of the active question, len when complete.
func (s *Sequencer) Index() int {
	return s.index
}

// Len returns the number of questions.
func (s *Sequencer) Len() int {
	return len(s.questions)
}

// Questions returns the questionnaire.
func (s *Sequencer) Questions() QuestionList {
	return s.questions
}

func (s *Sequencer) retreat() {
	if s.index > 0 {
		s.index--
	}
}

func (s *Sequencer) rewind() {
	s.index = 0
}
