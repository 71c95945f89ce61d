package submission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/quest/internal/survey"
)

// memBacklog is an in-memory Backlog and CompletionLog.
type memBacklog struct {
	saved     map[string]Status
	order     []Payload
	attempts  map[string]int
	completed map[string]bool
	saveErr   error
}

func newMemBacklog() *memBacklog {
	return &memBacklog{
		saved:     make(map[string]Status),
		attempts:  make(map[string]int),
		completed: make(map[string]bool),
	}
}

func (m *memBacklog) SaveResponse(_ context.Context, p Payload, status Status) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[p.ID] = status
	m.order = append(m.order, p)
	return nil
}

func (m *memBacklog) PendingResponses(context.Context) ([]Payload, error) {
	var out []Payload
	for _, p := range m.order {
		if m.saved[p.ID] == StatusPending {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memBacklog) MarkSent(_ context.Context, id string) error {
	m.saved[id] = StatusSent
	return nil
}

func (m *memBacklog) MarkAttempt(_ context.Context, id string) error {
	m.attempts[id]++
	return nil
}

func (m *memBacklog) MarkCompleted(_ context.Context, respondent string) error {
	m.completed[respondent] = true
	return nil
}

func (m *memBacklog) HasCompleted(_ context.Context, respondent string) (bool, error) {
	return m.completed[respondent], nil
}

// submitFunc adapts a function to Submitter.
type submitFunc func(context.Context, Payload) error

func (f submitFunc) Submit(ctx context.Context, p Payload) error { return f(ctx, p) }

func testResult() survey.Result {
	return survey.Result{
		Questions: survey.QuestionList{
			survey.Scale("Leadership", "Rate the vision", 1, 5),
			survey.OpenText("General", "What is going well?"),
		},
		Answers:     []survey.Answer{survey.ScaleAnswer(3), survey.TextAnswer("good")},
		CompletedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func testPayload() Payload {
	return NewPayload(testResult(), Source{
		Respondent: "alice",
		Variant:    "quest",
		Client:     "quest (linux; xterm-256color)",
		ScreenW:    80,
		ScreenH:    24,
	})
}

func TestPayloadJSON(t *testing.T) {
	p := testPayload()
	if p.ID == "" {
		t.Fatal("payload should get an ID")
	}
	if other := testPayload(); other.ID == p.ID {
		t.Error("payload IDs should be unique")
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded["respondent"]; ok {
		t.Error("respondent must not be sent")
	}
	if !strings.Contains(string(data), `"answers":[3,"good"]`) {
		t.Errorf("answers not encoded as bare values: %s", data)
	}
	if decoded["timestamp"] != "2025-03-01T10:00:00Z" {
		t.Errorf("timestamp = %v", decoded["timestamp"])
	}
	meta := decoded["metadata"].(map[string]any)
	if meta["ua"] != "quest (linux; xterm-256color)" {
		t.Errorf("metadata.ua = %v", meta["ua"])
	}
	if screen := meta["screen"].(map[string]any); screen["w"] != float64(80) || screen["h"] != float64(24) {
		t.Errorf("metadata.screen = %v", screen)
	}
	questions := decoded["questions"].([]any)
	if len(questions) != 2 || questions[1].(map[string]any)["type"] != "text" {
		t.Errorf("questions = %v", questions)
	}
}

func TestHTTPSubmitter(t *testing.T) {
	var got Payload
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	p := testPayload()
	if err := NewHTTPSubmitter(srv.URL, time.Second).Submit(context.Background(), p); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}
	if got.ID != p.ID || len(got.Answers) != 2 || got.Answers[1] != survey.TextAnswer("good") {
		t.Errorf("server received %+v", got)
	}
}

func TestHTTPSubmitterRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewHTTPSubmitter(srv.URL, time.Second).Submit(context.Background(), testPayload())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Submit() error = %v, expected *StatusError", err)
	}
	if statusErr.Code != http.StatusServiceUnavailable || statusErr.Body != "quota exceeded" {
		t.Errorf("StatusError = %+v", statusErr)
	}
}

func TestDispatchSent(t *testing.T) {
	backlog := newMemBacklog()
	d := NewDispatcher(
		WithSubmitter(submitFunc(func(context.Context, Payload) error { return nil })),
		WithBacklog(backlog),
		WithCompletionLog(backlog),
	)

	p := testPayload()
	outcome, err := d.Dispatch(context.Background(), p)
	if err != nil || outcome != OutcomeSent {
		t.Fatalf("Dispatch() = %s, %v", outcome, err)
	}
	if backlog.saved[p.ID] != StatusSent {
		t.Errorf("stored status = %q, expected sent", backlog.saved[p.ID])
	}
	if !d.AlreadyCompleted(context.Background(), "alice") {
		t.Error("respondent should be marked completed")
	}
}

func TestDispatchFallsBackToBacklog(t *testing.T) {
	backlog := newMemBacklog()
	d := NewDispatcher(
		WithSubmitter(submitFunc(func(context.Context, Payload) error { return errors.New("connection refused") })),
		WithBacklog(backlog),
	)

	p := testPayload()
	outcome, err := d.Dispatch(context.Background(), p)
	if err != nil || outcome != OutcomeStoredLocally {
		t.Fatalf("Dispatch() = %s, %v", outcome, err)
	}
	if backlog.saved[p.ID] != StatusPending {
		t.Errorf("stored status = %q, expected pending", backlog.saved[p.ID])
	}
	if d.AlreadyCompleted(context.Background(), "alice") {
		t.Error("AlreadyCompleted() should be false without a completion log")
	}
}

func TestDispatchWithoutEndpoint(t *testing.T) {
	backlog := newMemBacklog()
	d := NewDispatcher(WithBacklog(backlog))

	outcome, err := d.Dispatch(context.Background(), testPayload())
	if err != nil || outcome != OutcomeStoredLocally {
		t.Fatalf("Dispatch() = %s, %v", outcome, err)
	}
	if d.HasEndpoint() {
		t.Error("HasEndpoint() should be false")
	}
}

func TestDispatchFailed(t *testing.T) {
	sendErr := errors.New("timeout")
	saveErr := errors.New("disk full")
	backlog := newMemBacklog()
	backlog.saveErr = saveErr
	d := NewDispatcher(
		WithSubmitter(submitFunc(func(context.Context, Payload) error { return sendErr })),
		WithBacklog(backlog),
		WithCompletionLog(backlog),
	)

	outcome, err := d.Dispatch(context.Background(), testPayload())
	if outcome != OutcomeFailed {
		t.Fatalf("outcome = %s, expected failed", outcome)
	}
	if !errors.Is(err, sendErr) || !errors.Is(err, saveErr) {
		t.Errorf("error = %v, expected both causes", err)
	}
	if backlog.completed["alice"] {
		t.Error("failed dispatch should not mark the respondent completed")
	}

	outcome, err = NewDispatcher().Dispatch(context.Background(), testPayload())
	if outcome != OutcomeFailed || !errors.Is(err, ErrNoEndpoint) {
		t.Errorf("Dispatch() with nowhere to go = %s, %v", outcome, err)
	}
}

func TestFlush(t *testing.T) {
	backlog := newMemBacklog()
	var failing bool
	submitter := submitFunc(func(_ context.Context, p Payload) error {
		if failing && p.Variant == "quest_click" {
			return errors.New("bad gateway")
		}
		return nil
	})

	a, b := testPayload(), testPayload()
	b.Variant = "quest_click"
	backlog.SaveResponse(context.Background(), a, StatusPending) //nolint:errcheck
	backlog.SaveResponse(context.Background(), b, StatusPending) //nolint:errcheck

	failing = true
	d := NewDispatcher(WithSubmitter(submitter), WithBacklog(backlog))
	report, err := d.Flush(context.Background())
	if err != nil {
		t.Fatalf("Flush() failed: %v", err)
	}
	if report.Sent != 1 || report.Failed != 1 {
		t.Errorf("report = %+v, expected 1 sent 1 failed", report)
	}
	if backlog.saved[a.ID] != StatusSent || backlog.saved[b.ID] != StatusPending {
		t.Errorf("statuses = %v", backlog.saved)
	}
	if backlog.attempts[b.ID] != 1 {
		t.Errorf("attempts = %d, expected 1", backlog.attempts[b.ID])
	}

	failing = false
	report, err = d.Flush(context.Background())
	if err != nil || report.Sent != 1 || report.Failed != 0 {
		t.Errorf("second Flush() = %+v, %v", report, err)
	}
}

func TestFlushWithoutEndpoint(t *testing.T) {
	d := NewDispatcher(WithBacklog(newMemBacklog()))
	if _, err := d.Flush(context.Background()); !errors.Is(err, ErrNoEndpoint) {
		t.Errorf("Flush() error = %v, expected ErrNoEndpoint", err)
	}
}
