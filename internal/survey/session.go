package survey

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDebounce is the minimum time between two accepted trigger events.
const DefaultDebounce = 350 * time.Millisecond

// Result is handed to the completion handler once the last answer is pushed.
// Answers[i] answers Questions[i].
type Result struct {
	Questions   QuestionList
	Answers     []Answer
	CompletedAt time.Time
}

// Ticket is issued by MarkSelected and redeemed by CommitAnswer. A ticket is
// only good for the question that was active when it was issued.
type Ticket struct {
	Index int // Question the selection was made for
	Value int

	rev    uint64
	issued bool
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now as the session's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithDebounce sets the debounce window. Zero disables debouncing.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		s.debounce = d
	}
}

// WithCompletion registers the handler called when the questionnaire is
// completed. It runs synchronously inside the call that recorded the last
// answer, once per run.
func WithCompletion(fn func(Result)) Option {
	return func(s *Session) {
		s.onComplete = fn
	}
}

// Session is the state of one respondent's attempt at a questionnaire.
type Session struct {
	seq           *Sequencer
	answers       []Answer
	awaitingInput bool

	lastAcceptedAt time.Time
	hasAccepted    bool
	lastMarkedAt   time.Time
	hasMarked      bool
	marked         map[int]bool // Scale values already selected for the active question

	// rev changes whenever the active question changes; outstanding tickets
	// from an older revision are void.
	rev       uint64
	completed bool

	debounce   time.Duration
	now        func() time.Time
	onComplete func(Result)
}

// NewSession starts an attempt at the first question of questions.
func NewSession(questions QuestionList, opts ...Option) (*Session, error) {
	if err := questions.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		seq:      NewSequencer(questions),
		marked:   make(map[int]bool),
		debounce: DefaultDebounce,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Current returns the active question, or false when complete.
func (s *Session) Current() (Question, bool) {
	return s.seq.Current()
}

// IsComplete reports whether the questionnaire has been completed.
func (s *Session) IsComplete() bool {
	return s.seq.IsComplete()
}

// Index returns the position of the active question.
func (s *Session) Index() int {
	return s.seq.Index()
}

// Len returns the number of questions.
func (s *Session) Len() int {
	return s.seq.Len()
}

// Questions returns the questionnaire.
func (s *Session) Questions() QuestionList {
	return s.seq.Questions()
}

// Answers returns a copy of the answers recorded so far.
func (s *Session) Answers() []Answer {
	out := make([]Answer, len(s.answers))
	copy(out, s.answers)
	return out
}

// AwaitingInput reports whether a text prompt is open.
func (s *Session) AwaitingInput() bool {
	return s.awaitingInput
}

// Marked reports whether value was already selected for the active question.
func (s *Session) Marked(value int) bool {
	return s.marked[value]
}

// SubmitScaleAnswer records value for the active scale question and moves on.
// An invalid value is reported even inside the debounce window; a valid call
// inside the window of the previous accepted answer is dropped without error.
func (s *Session) SubmitScaleAnswer(value int) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.checkScale(value); err != nil {
		return err
	}
	if s.debounced(s.lastAcceptedAt, s.hasAccepted) {
		return nil
	}
	s.accept(ScaleAnswer(value))
	return nil
}

// MarkSelected is the immediate half of the two-phase scale capture: the
// caller shows feedback for value right away and, when ok is true, redeems
// the ticket with CommitAnswer after its presentation delay.
//
// ok is false when value was already selected for this question, or when the
// previous selection is still inside the debounce window; either way the
// caller must not schedule a commit.
func (s *Session) MarkSelected(value int) (t Ticket, ok bool, err error) {
	if err := s.checkOpen(); err != nil {
		return Ticket{}, false, err
	}
	if err := s.checkScale(value); err != nil {
		return Ticket{}, false, err
	}
	if s.marked[value] {
		return Ticket{}, false, nil
	}
	if s.debounced(s.lastMarkedAt, s.hasMarked) {
		return Ticket{}, false, nil
	}
	s.marked[value] = true
	s.lastMarkedAt = s.now()
	s.hasMarked = true

	return Ticket{Index: s.seq.Index(), Value: value, rev: s.rev, issued: true}, true, nil
}

// CommitAnswer records the selection carried by t. A ticket whose question has
// since been answered, undone or reset is ignored, so at most one commit
// succeeds per question.
func (s *Session) CommitAnswer(t Ticket) error {
	if !t.issued || t.rev != s.rev {
		return nil
	}
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.checkScale(t.Value); err != nil {
		return err
	}
	s.accept(ScaleAnswer(t.Value))
	return nil
}

// BeginTextCapture opens the text prompt for the active question. Calling it
// while the prompt is already open does nothing.
func (s *Session) BeginTextCapture() error {
	q, ok := s.seq.Current()
	if !ok {
		return fmt.Errorf("%w: questionnaire is complete", ErrInvalidState)
	}
	if s.awaitingInput {
		return nil
	}
	if q.Kind != KindText {
		return &KindError{Index: s.seq.Index(), Want: KindText, Got: q.Kind}
	}
	s.awaitingInput = true
	return nil
}

// SubmitTextAnswer records the trimmed text and closes the prompt. Blank text
// is refused silently and the prompt stays open.
func (s *Session) SubmitTextAnswer(text string) error {
	q, ok := s.seq.Current()
	if !ok {
		return fmt.Errorf("%w: questionnaire is complete", ErrInvalidState)
	}
	if q.Kind != KindText {
		return &KindError{Index: s.seq.Index(), Want: KindText, Got: q.Kind}
	}
	if !s.awaitingInput {
		return fmt.Errorf("%w: text capture is not open", ErrInvalidState)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	s.awaitingInput = false
	s.accept(TextAnswer(text))
	return nil
}

// CancelTextCapture closes the prompt without recording anything.
func (s *Session) CancelTextCapture() {
	s.awaitingInput = false
}

// GoBack undoes the previous answer when it was a scale answer. Text answers
// cannot be undone. Any open prompt is closed. It reports whether the session
// moved back.
func (s *Session) GoBack() bool {
	if s.seq.IsComplete() || s.seq.Index() == 0 {
		return false
	}
	prev := s.seq.Questions()[s.seq.Index()-1]
	if prev.Kind != KindScale {
		return false
	}

	s.answers = s.answers[:len(s.answers)-1]
	s.seq.retreat()
	s.awaitingInput = false
	s.hasAccepted = false
	s.hasMarked = false
	s.nextQuestion()
	return true
}

// Reset starts the attempt over from the first question.
func (s *Session) Reset() {
	s.seq.rewind()
	s.answers = nil
	s.awaitingInput = false
	s.hasAccepted = false
	s.hasMarked = false
	s.completed = false
	s.nextQuestion()
}

func (s *Session) checkOpen() error {
	if s.seq.IsComplete() {
		return fmt.Errorf("%w: questionnaire is complete", ErrInvalidState)
	}
	if s.awaitingInput {
		return fmt.Errorf("%w: text capture is open", ErrInvalidState)
	}
	return nil
}

func (s *Session) checkScale(value int) error {
	q, _ := s.seq.Current()
	if q.Kind != KindScale {
		return &KindError{Index: s.seq.Index(), Want: KindScale, Got: q.Kind}
	}
	if !q.InRange(value) {
		return fmt.Errorf("%w: %d is outside %d..%d", ErrInvalidAnswer, value, q.Min, q.Max)
	}
	return nil
}

func (s *Session) debounced(last time.Time, seen bool) bool {
	return seen && s.debounce > 0 && s.now().Sub(last) < s.debounce
}

// accept appends the answer and advances in one step.
func (s *Session) accept(a Answer) {
	s.answers = append(s.answers, a)
	s.lastAcceptedAt = s.now()
	s.hasAccepted = true
	//nolint:errcheck // checkOpen ran first, the sequencer is not complete
	s.seq.Advance()
	s.nextQuestion()

	if s.seq.IsComplete() && !s.completed {
		s.completed = true
		if s.onComplete != nil {
			s.onComplete(Result{
				Questions:   s.seq.Questions(),
				Answers:     s.Answers(),
				CompletedAt: s.lastAcceptedAt,
			})
		}
	}
}

// nextQuestion re-arms capture for whatever question is now active.
func (s *Session) nextQuestion() {
	s.rev++
	clear(s.marked)
}
