package survey

import (
	"errors"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSession(t *testing.T, questions QuestionList, opts ...Option) (*Session, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	s, err := NewSession(questions, opts...)
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	return s, clock
}

func assertProgress(t *testing.T, s *Session, index, answers int) {
	t.Helper()
	if s.Index() != index {
		t.Errorf("Index() = %d, expected %d", s.Index(), index)
	}
	if got := len(s.Answers()); got != answers {
		t.Errorf("len(Answers()) = %d, expected %d", got, answers)
	}
}

func TestNewSessionValidates(t *testing.T) {
	tests := []struct {
		name      string
		questions QuestionList
	}{
		{"empty", nil},
		{"inverted scale", QuestionList{Scale("s", "q", 5, 1)}},
		{"blank text", QuestionList{OpenText("s", "  ")}},
		{"unknown kind", QuestionList{{Text: "q", Kind: Kind(7)}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSession(tc.questions); err == nil {
				t.Error("NewSession() should reject the questionnaire")
			}
		})
	}
}

func TestEndToEndScaleThenText(t *testing.T) {
	var results []Result
	s, _ := newTestSession(t,
		QuestionList{Scale("A", "rate", 1, 5), OpenText("A", "why")},
		WithCompletion(func(r Result) { results = append(results, r) }),
	)

	if err := s.SubmitScaleAnswer(3); err != nil {
		t.Fatalf("SubmitScaleAnswer(3) failed: %v", err)
	}
	assertProgress(t, s, 1, 1)

	if err := s.BeginTextCapture(); err != nil {
		t.Fatalf("BeginTextCapture() failed: %v", err)
	}
	if !s.AwaitingInput() {
		t.Fatal("AwaitingInput() should be true after BeginTextCapture")
	}

	if err := s.SubmitTextAnswer("  good  "); err != nil {
		t.Fatalf("SubmitTextAnswer() failed: %v", err)
	}
	assertProgress(t, s, 2, 2)
	if !s.IsComplete() {
		t.Error("IsComplete() should be true")
	}
	if s.AwaitingInput() {
		t.Error("AwaitingInput() should be false after submission")
	}

	answers := s.Answers()
	if answers[0] != ScaleAnswer(3) || answers[1] != TextAnswer("good") {
		t.Errorf("Answers() = %v, expected [3 good]", answers)
	}

	if len(results) != 1 {
		t.Fatalf("completion fired %d times, expected 1", len(results))
	}
	if len(results[0].Answers) != 2 || results[0].Answers[1].Text != "good" {
		t.Errorf("completion result answers = %v", results[0].Answers)
	}
}

func TestCompletesAfterOneAnswerPerQuestion(t *testing.T) {
	questions := QuestionList{
		Scale("A", "q1", 1, 5),
		OpenText("A", "q2"),
		Scale("B", "q3", 0, 10),
		OpenText("B", "q4"),
		Scale("B", "q5", -2, 2),
	}
	s, clock := newTestSession(t, questions)

	for i, q := range questions {
		clock.Advance(time.Second)
		if q.Kind == KindScale {
			if err := s.SubmitScaleAnswer(q.Max); err != nil {
				t.Fatalf("question %d: %v", i, err)
			}
			continue
		}
		if err := s.BeginTextCapture(); err != nil {
			t.Fatalf("question %d: %v", i, err)
		}
		if err := s.SubmitTextAnswer("answer"); err != nil {
			t.Fatalf("question %d: %v", i, err)
		}
	}

	if !s.IsComplete() {
		t.Fatal("IsComplete() should be true")
	}
	answers := s.Answers()
	if len(answers) != len(questions) {
		t.Fatalf("len(Answers()) = %d, expected %d", len(answers), len(questions))
	}
	for i, a := range answers {
		if a.Kind != questions[i].Kind {
			t.Errorf("answer %d kind = %s, expected %s", i, a.Kind, questions[i].Kind)
		}
	}
	if _, ok := s.Current(); ok {
		t.Error("Current() should report no question when complete")
	}
}

func TestScaleDebounce(t *testing.T) {
	s, clock := newTestSession(t,
		QuestionList{Scale("A", "q1", 1, 5), Scale("A", "q2", 1, 5), Scale("A", "q3", 1, 5)},
		WithDebounce(350*time.Millisecond),
	)

	if err := s.SubmitScaleAnswer(4); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	clock.Advance(100 * time.Millisecond)
	if err := s.SubmitScaleAnswer(2); err != nil {
		t.Fatalf("debounced submit should not error: %v", err)
	}
	if err := s.SubmitScaleAnswer(4); err != nil {
		t.Fatalf("debounced submit should not error: %v", err)
	}
	assertProgress(t, s, 1, 1)

	clock.Advance(300 * time.Millisecond)
	if err := s.SubmitScaleAnswer(2); err != nil {
		t.Fatalf("submit after window failed: %v", err)
	}
	assertProgress(t, s, 2, 2)
	if got := s.Answers()[1]; got != ScaleAnswer(2) {
		t.Errorf("second answer = %v, expected 2", got)
	}
}

func TestInvalidScaleReportedInsideDebounce(t *testing.T) {
	t.Run("out of range", func(t *testing.T) {
		s, clock := newTestSession(t,
			QuestionList{Scale("A", "q1", 1, 5), Scale("A", "q2", 1, 5)},
			WithDebounce(350*time.Millisecond),
		)
		if err := s.SubmitScaleAnswer(3); err != nil {
			t.Fatal(err)
		}
		clock.Advance(10 * time.Millisecond)
		if err := s.SubmitScaleAnswer(99); !errors.Is(err, ErrInvalidAnswer) {
			t.Errorf("SubmitScaleAnswer(99) error = %v, expected ErrInvalidAnswer", err)
		}
		assertProgress(t, s, 1, 1)
	})

	t.Run("scale on text question", func(t *testing.T) {
		s, clock := newTestSession(t,
			QuestionList{Scale("A", "q1", 1, 5), OpenText("A", "q2")},
			WithDebounce(350*time.Millisecond),
		)
		if err := s.SubmitScaleAnswer(3); err != nil {
			t.Fatal(err)
		}
		clock.Advance(10 * time.Millisecond)
		err := s.SubmitScaleAnswer(3)
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("SubmitScaleAnswer(3) error = %v, expected ErrInvalidState", err)
		}
		var kindErr *KindError
		if !errors.As(err, &kindErr) || kindErr.Want != KindScale {
			t.Errorf("error = %v, expected *KindError wanting scale", err)
		}
		assertProgress(t, s, 1, 1)
	})
}

func TestScaleRangeEnforced(t *testing.T) {
	s, _ := newTestSession(t, QuestionList{Scale("A", "q", 1, 5)})

	for _, v := range []int{0, 6, -1} {
		err := s.SubmitScaleAnswer(v)
		if !errors.Is(err, ErrInvalidAnswer) {
			t.Errorf("SubmitScaleAnswer(%d) error = %v, expected ErrInvalidAnswer", v, err)
		}
		if _, _, err := s.MarkSelected(v); !errors.Is(err, ErrInvalidAnswer) {
			t.Errorf("MarkSelected(%d) error = %v, expected ErrInvalidAnswer", v, err)
		}
	}
	assertProgress(t, s, 0, 0)

	for _, v := range []int{1, 5} {
		if err := s.checkScale(v); err != nil {
			t.Errorf("bound %d should be accepted: %v", v, err)
		}
	}
}

func TestKindMismatch(t *testing.T) {
	t.Run("text on scale question", func(t *testing.T) {
		s, _ := newTestSession(t, QuestionList{Scale("A", "q", 1, 5)})

		err := s.SubmitTextAnswer("hello")
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("error = %v, expected ErrInvalidState", err)
		}
		var kindErr *KindError
		if !errors.As(err, &kindErr) || kindErr.Want != KindText {
			t.Errorf("error = %v, expected *KindError wanting text", err)
		}
		if err := s.BeginTextCapture(); !errors.Is(err, ErrInvalidState) {
			t.Errorf("BeginTextCapture() error = %v, expected ErrInvalidState", err)
		}
		assertProgress(t, s, 0, 0)
		if s.AwaitingInput() {
			t.Error("AwaitingInput() should stay false")
		}
	})

	t.Run("scale on text question", func(t *testing.T) {
		s, _ := newTestSession(t, QuestionList{OpenText("A", "q")})

		err := s.SubmitScaleAnswer(3)
		if !errors.Is(err, ErrInvalidState) || !errors.Is(err, ErrInvalidAnswer) {
			t.Errorf("error = %v, expected kind error matching both sentinels", err)
		}
		assertProgress(t, s, 0, 0)
	})
}

func TestTextCaptureExclusivity(t *testing.T) {
	s, _ := newTestSession(t, QuestionList{OpenText("A", "q"), Scale("A", "q2", 1, 5)})

	if err := s.SubmitTextAnswer("early"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("submit without capture error = %v, expected ErrInvalidState", err)
	}

	if err := s.BeginTextCapture(); err != nil {
		t.Fatalf("BeginTextCapture() failed: %v", err)
	}
	if err := s.BeginTextCapture(); err != nil {
		t.Errorf("re-entrant BeginTextCapture() should be a no-op, got %v", err)
	}
	if err := s.SubmitScaleAnswer(3); !errors.Is(err, ErrInvalidState) {
		t.Errorf("scale submit while prompt open error = %v, expected ErrInvalidState", err)
	}

	s.CancelTextCapture()
	if s.AwaitingInput() {
		t.Error("CancelTextCapture() should close the prompt")
	}
	assertProgress(t, s, 0, 0)
}

func TestEmptyTextKeepsPromptOpen(t *testing.T) {
	s, _ := newTestSession(t, QuestionList{OpenText("A", "q")})

	if err := s.BeginTextCapture(); err != nil {
		t.Fatalf("BeginTextCapture() failed: %v", err)
	}
	for _, text := range []string{"", "   ", "\t\n"} {
		if err := s.SubmitTextAnswer(text); err != nil {
			t.Errorf("SubmitTextAnswer(%q) should not error: %v", text, err)
		}
	}
	if !s.AwaitingInput() {
		t.Error("prompt should remain open after blank submissions")
	}
	assertProgress(t, s, 0, 0)
}

func TestGoBack(t *testing.T) {
	s, _ := newTestSession(t,
		QuestionList{Scale("A", "q1", 1, 5), Scale("A", "q2", 1, 5), OpenText("A", "q3")},
	)

	if s.GoBack() {
		t.Error("GoBack() on the first question should be a no-op")
	}

	if err := s.SubmitScaleAnswer(4); err != nil {
		t.Fatalf("SubmitScaleAnswer(4) failed: %v", err)
	}
	if !s.GoBack() {
		t.Fatal("GoBack() after a scale answer should succeed")
	}
	assertProgress(t, s, 0, 0)

	// Answering again right away is not swallowed by the debounce window.
	if err := s.SubmitScaleAnswer(2); err != nil {
		t.Fatalf("SubmitScaleAnswer(2) failed: %v", err)
	}
	assertProgress(t, s, 1, 1)
	if got := s.Answers()[0]; got != ScaleAnswer(2) {
		t.Errorf("answer = %v, expected 2", got)
	}
}

func TestGoBackClosesPrompt(t *testing.T) {
	s, _ := newTestSession(t, QuestionList{Scale("A", "q1", 1, 5), OpenText("A", "q2")})

	if err := s.SubmitScaleAnswer(5); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginTextCapture(); err != nil {
		t.Fatal(err)
	}
	if !s.GoBack() {
		t.Fatal("GoBack() should succeed")
	}
	if s.AwaitingInput() {
		t.Error("GoBack() should close the prompt")
	}
	assertProgress(t, s, 0, 0)
}

func TestGoBackRefusedAfterText(t *testing.T) {
	s, _ := newTestSession(t, QuestionList{OpenText("A", "q1"), Scale("A", "q2", 1, 5)})

	if err := s.BeginTextCapture(); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitTextAnswer("first"); err != nil {
		t.Fatal(err)
	}

	if s.GoBack() {
		t.Error("GoBack() after a text answer should be a no-op")
	}
	assertProgress(t, s, 1, 1)
	if got := s.Answers()[0]; got != TextAnswer("first") {
		t.Errorf("answer = %v, expected first", got)
	}
}

func TestTerminalRejectsMutation(t *testing.T) {
	s, _ := newTestSession(t, QuestionList{Scale("A", "q", 1, 5)})
	if err := s.SubmitScaleAnswer(1); err != nil {
		t.Fatal(err)
	}

	if err := s.SubmitScaleAnswer(1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("SubmitScaleAnswer() after completion error = %v", err)
	}
	if err := s.SubmitTextAnswer("x"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("SubmitTextAnswer() after completion error = %v", err)
	}
	if err := s.BeginTextCapture(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("BeginTextCapture() after completion error = %v", err)
	}
	if _, _, err := s.MarkSelected(1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("MarkSelected() after completion error = %v", err)
	}
	if s.GoBack() {
		t.Error("GoBack() after completion should be a no-op")
	}
	assertProgress(t, s, 1, 1)
}

func TestCompletionFiresOncePerRun(t *testing.T) {
	calls := 0
	s, clock := newTestSession(t,
		QuestionList{Scale("A", "q", 1, 5)},
		WithCompletion(func(Result) { calls++ }),
	)

	if err := s.SubmitScaleAnswer(2); err != nil {
		t.Fatal(err)
	}
	//nolint:errcheck // rejected on purpose
	s.SubmitScaleAnswer(3)
	if calls != 1 {
		t.Fatalf("completion fired %d times, expected 1", calls)
	}

	s.Reset()
	assertProgress(t, s, 0, 0)
	if s.IsComplete() || s.AwaitingInput() {
		t.Fatal("Reset() should restore the initial state")
	}
	if calls != 1 {
		t.Fatalf("Reset() should not fire completion, calls = %d", calls)
	}

	clock.Advance(time.Second)
	if err := s.SubmitScaleAnswer(4); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("second run should fire completion once more, calls = %d", calls)
	}
}

func TestSequencerAdvancePastEnd(t *testing.T) {
	seq := NewSequencer(QuestionList{OpenText("A", "q")})

	if err := seq.Advance(); err != nil {
		t.Fatalf("Advance() failed: %v", err)
	}
	if !seq.IsComplete() {
		t.Fatal("IsComplete() should be true")
	}
	if err := seq.Advance(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Advance() on complete sequencer error = %v, expected ErrInvalidState", err)
	}
	if seq.Index() != 1 {
		t.Errorf("Index() = %d, expected 1", seq.Index())
	}
}
