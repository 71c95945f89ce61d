// Package submission delivers completed questionnaires to a collection
// endpoint, keeping a local backlog of anything that could not be sent.
package submission

import (
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/quest/internal/survey"
)

// Payload is the body posted for one completed questionnaire.
// Answers[i] answers Questions[i].
type Payload struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Variant   string          `json:"variant,omitempty"`
	Questions []QuestionRef   `json:"questions"`
	Answers   []survey.Answer `json:"answers"`
	Metadata  Metadata        `json:"metadata"`

	// Respondent identifies who answered for single-submit bookkeeping. It is
	// never sent to the endpoint.
	Respondent string `json:"-"`
}

// QuestionRef names the question an answer belongs to.
type QuestionRef struct {
	Section string `json:"section,omitempty"`
	Text    string `json:"text"`
	Type    string `json:"type"`
}

// Metadata describes the client that produced the answers.
type Metadata struct {
	Client     string `json:"ua"`
	Screen     Screen `json:"screen"`
	ClientTime string `json:"clientTime"`
}

// Screen is the terminal size in cells.
type Screen struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Source describes where a result came from.
type Source struct {
	Respondent string
	Variant    string
	Client     string
	ScreenW    int
	ScreenH    int
}

// NewPayload builds the payload for a completed questionnaire.
func NewPayload(r survey.Result, src Source) Payload {
	refs := make([]QuestionRef, len(r.Questions))
	for i, q := range r.Questions {
		refs[i] = QuestionRef{Section: q.Section, Text: q.Text, Type: q.Kind.String()}
	}
	completed := r.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}

	return Payload{
		ID:         uuid.NewString(),
		Timestamp:  completed.UTC(),
		Variant:    src.Variant,
		Questions:  refs,
		Answers:    r.Answers,
		Respondent: src.Respondent,
		Metadata: Metadata{
			Client:     src.Client,
			Screen:     Screen{W: src.ScreenW, H: src.ScreenH},
			ClientTime: time.Now().Format(time.RFC3339),
		},
	}
}
