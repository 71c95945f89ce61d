package survey

import (
	"testing"
	"time"
)

func TestTwoPhaseCommit(t *testing.T) {
	s, clock := newTestSession(t, QuestionList{Scale("A", "q1", 1, 5), Scale("A", "q2", 1, 5)})

	ticket, ok, err := s.MarkSelected(4)
	if err != nil || !ok {
		t.Fatalf("MarkSelected(4) = ok %v, err %v", ok, err)
	}
	if ticket.Index != 0 || ticket.Value != 4 {
		t.Errorf("ticket = %+v, expected question 0 value 4", ticket)
	}
	if !s.Marked(4) {
		t.Error("Marked(4) should be true")
	}
	// Marking alone records nothing.
	assertProgress(t, s, 0, 0)

	clock.Advance(380 * time.Millisecond)
	if err := s.CommitAnswer(ticket); err != nil {
		t.Fatalf("CommitAnswer() failed: %v", err)
	}
	assertProgress(t, s, 1, 1)
	if s.Marked(4) {
		t.Error("marks should be cleared for the next question")
	}
}

func TestMarkSelectedIdempotentPerValue(t *testing.T) {
	s, clock := newTestSession(t, QuestionList{Scale("A", "q", 1, 5)})

	if _, ok, _ := s.MarkSelected(3); !ok {
		t.Fatal("first MarkSelected(3) should schedule a commit")
	}
	clock.Advance(time.Second)
	if _, ok, err := s.MarkSelected(3); ok || err != nil {
		t.Errorf("repeated MarkSelected(3) = ok %v, err %v; expected no commit", ok, err)
	}
}

func TestMarkSelectedDebounce(t *testing.T) {
	s, clock := newTestSession(t, QuestionList{Scale("A", "q", 1, 5)}, WithDebounce(350*time.Millisecond))

	first, ok, _ := s.MarkSelected(1)
	if !ok {
		t.Fatal("first mark should schedule a commit")
	}

	clock.Advance(100 * time.Millisecond)
	_, ok, err := s.MarkSelected(2)
	if ok || err != nil {
		t.Errorf("mark inside window = ok %v, err %v; expected visual-only", ok, err)
	}
	if s.Marked(2) {
		t.Error("debounced value should stay selectable")
	}

	if err := s.CommitAnswer(first); err != nil {
		t.Fatal(err)
	}
	if got := s.Answers()[0]; got != ScaleAnswer(1) {
		t.Errorf("answer = %v, expected the first selection", got)
	}
}

func TestDebouncedMarkSelectableLater(t *testing.T) {
	s, clock := newTestSession(t,
		QuestionList{Scale("A", "q1", 1, 5), Scale("A", "q2", 1, 5)},
		WithDebounce(350*time.Millisecond),
	)

	first, ok, _ := s.MarkSelected(3)
	if !ok {
		t.Fatal("first mark should schedule a commit")
	}
	clock.Advance(100 * time.Millisecond)
	if err := s.CommitAnswer(first); err != nil {
		t.Fatal(err)
	}

	clock.Advance(100 * time.Millisecond)
	if _, ok, err := s.MarkSelected(4); ok || err != nil {
		t.Fatalf("mark inside window = ok %v, err %v; expected no commit", ok, err)
	}

	clock.Advance(5 * time.Second)
	second, ok, err := s.MarkSelected(4)
	if !ok || err != nil {
		t.Fatalf("MarkSelected(4) after window = ok %v, err %v; expected a ticket", ok, err)
	}
	if err := s.CommitAnswer(second); err != nil {
		t.Fatal(err)
	}
	if got := s.Answers(); len(got) != 2 || got[1] != ScaleAnswer(4) {
		t.Errorf("Answers() = %v, expected [3 4]", got)
	}
}

func TestOnlyOneCommitPerQuestion(t *testing.T) {
	s, clock := newTestSession(t,
		QuestionList{Scale("A", "q1", 1, 5), Scale("A", "q2", 1, 5)},
		WithDebounce(0),
	)

	a, okA, _ := s.MarkSelected(5)
	clock.Advance(10 * time.Millisecond)
	b, okB, _ := s.MarkSelected(1)
	if !okA || !okB {
		t.Fatal("both marks should be issued with debouncing disabled")
	}

	if err := s.CommitAnswer(a); err != nil {
		t.Fatal(err)
	}
	if err := s.CommitAnswer(b); err != nil {
		t.Errorf("stale commit should be ignored without error, got %v", err)
	}
	assertProgress(t, s, 1, 1)
	if got := s.Answers()[0]; got != ScaleAnswer(5) {
		t.Errorf("answer = %v, expected 5", got)
	}
}

func TestTicketVoidAfterGoBackAndReset(t *testing.T) {
	s, clock := newTestSession(t, QuestionList{Scale("A", "q1", 1, 5), Scale("A", "q2", 1, 5)})

	if err := s.SubmitScaleAnswer(2); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Second)
	pending, ok, _ := s.MarkSelected(3)
	if !ok {
		t.Fatal("mark should be issued")
	}
	s.GoBack()

	if err := s.CommitAnswer(pending); err != nil {
		t.Fatal(err)
	}
	assertProgress(t, s, 0, 0)

	pending, ok, _ = s.MarkSelected(4)
	if !ok {
		t.Fatal("mark after GoBack should be issued")
	}
	s.Reset()
	if err := s.CommitAnswer(pending); err != nil {
		t.Fatal(err)
	}
	assertProgress(t, s, 0, 0)
}

func TestZeroTicketIgnored(t *testing.T) {
	s, _ := newTestSession(t, QuestionList{Scale("A", "q", 0, 5)})

	if err := s.CommitAnswer(Ticket{}); err != nil {
		t.Fatal(err)
	}
	assertProgress(t, s, 0, 0)
}

func TestSimultaneousTriggersAcrossQuestions(t *testing.T) {
	// Two trigger sources fire in the same frame with different values: the
	// first wins, the second cannot answer the next question inside the window.
	s, clock := newTestSession(t,
		QuestionList{Scale("A", "q1", 1, 5), Scale("A", "q2", 1, 5)},
		WithDebounce(350*time.Millisecond),
	)

	if err := s.SubmitScaleAnswer(5); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitScaleAnswer(1); err != nil {
		t.Fatal(err)
	}
	assertProgress(t, s, 1, 1)

	clock.Advance(400 * time.Millisecond)
	if err := s.SubmitScaleAnswer(1); err != nil {
		t.Fatal(err)
	}
	assertProgress(t, s, 2, 2)
}
