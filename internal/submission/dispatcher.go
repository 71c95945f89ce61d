package submission

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// ErrNoEndpoint is returned by Flush when no submitter is configured.
var ErrNoEndpoint = errors.New("submission: no endpoint configured")

// Status is the delivery state of a stored payload.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
)

// Outcome is the result of dispatching one payload.
type Outcome int

const (
	// OutcomeSent means the endpoint accepted the payload.
	OutcomeSent Outcome = iota
	// OutcomeStoredLocally means the payload waits in the local backlog.
	OutcomeStoredLocally
	// OutcomeFailed means the payload could be neither sent nor stored.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeStoredLocally:
		return "stored locally"
	default:
		return "failed"
	}
}

// Backlog stores payloads locally.
type Backlog interface {
	SaveResponse(ctx context.Context, p Payload, status Status) error
	PendingResponses(ctx context.Context) ([]Payload, error)
	MarkSent(ctx context.Context, id string) error
	MarkAttempt(ctx context.Context, id string) error
}

// CompletionLog remembers respondents who completed the survey.
type CompletionLog interface {
	MarkCompleted(ctx context.Context, respondent string) error
	HasCompleted(ctx context.Context, respondent string) (bool, error)
}

// Dispatcher sends completed questionnaires, falling back to the backlog.
type Dispatcher struct {
	submitter   Submitter
	backlog     Backlog
	completions CompletionLog
	logger      *log.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithSubmitter sets the endpoint client. Without one every payload goes to
// the backlog.
func WithSubmitter(s Submitter) DispatcherOption {
	return func(d *Dispatcher) {
		d.submitter = s
	}
}

// WithBacklog sets local storage for payloads.
func WithBacklog(b Backlog) DispatcherOption {
	return func(d *Dispatcher) {
		d.backlog = b
	}
}

// WithCompletionLog enables single-submit bookkeeping.
func WithCompletionLog(c CompletionLog) DispatcherOption {
	return func(d *Dispatcher) {
		d.completions = c
	}
}

// WithLogger sets the logger; the default discards output.
func WithLogger(l *log.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.New(io.Discard)
	}
	return d
}

// HasEndpoint reports whether payloads can be sent anywhere but the backlog.
func (d *Dispatcher) HasEndpoint() bool {
	return d.submitter != nil
}

// Dispatch delivers p. Sent payloads are also kept in the backlog as sent so
// they can be exported later. The error is non-nil only for OutcomeFailed.
func (d *Dispatcher) Dispatch(ctx context.Context, p Payload) (Outcome, error) {
	outcome, err := d.deliver(ctx, p)
	if outcome != OutcomeFailed {
		d.markCompleted(ctx, p.Respondent)
	}
	return outcome, err
}

func (d *Dispatcher) deliver(ctx context.Context, p Payload) (Outcome, error) {
	var sendErr error
	if d.submitter != nil {
		sendErr = d.submitter.Submit(ctx, p)
		if sendErr == nil {
			d.logger.Info("response sent", "id", p.ID, "variant", p.Variant)
			if d.backlog != nil {
				if err := d.backlog.SaveResponse(ctx, p, StatusSent); err != nil {
					d.logger.Warn("could not record sent response", "id", p.ID, "error", err)
				}
			}
			return OutcomeSent, nil
		}
		d.logger.Warn("submission failed", "id", p.ID, "error", sendErr)
	}

	if d.backlog == nil {
		if sendErr == nil {
			sendErr = ErrNoEndpoint
		}
		return OutcomeFailed, fmt.Errorf("submission: response %s not stored: %w", p.ID, sendErr)
	}
	if err := d.backlog.SaveResponse(ctx, p, StatusPending); err != nil {
		d.logger.Error("could not store response", "id", p.ID, "error", err)
		return OutcomeFailed, errors.Join(sendErr, err)
	}
	d.logger.Info("response stored locally", "id", p.ID)
	return OutcomeStoredLocally, nil
}

func (d *Dispatcher) markCompleted(ctx context.Context, respondent string) {
	if d.completions == nil || respondent == "" {
		return
	}
	if err := d.completions.MarkCompleted(ctx, respondent); err != nil {
		d.logger.Warn("could not record completion", "respondent", respondent, "error", err)
	}
}

// AlreadyCompleted reports whether respondent has completed the survey
// before. It is false when single-submit bookkeeping is disabled.
func (d *Dispatcher) AlreadyCompleted(ctx context.Context, respondent string) bool {
	if d.completions == nil || respondent == "" {
		return false
	}
	done, err := d.completions.HasCompleted(ctx, respondent)
	if err != nil {
		d.logger.Warn("could not check completion", "respondent", respondent, "error", err)
		return false
	}
	return done
}

// FlushReport summarises a backlog retry.
type FlushReport struct {
	Sent   int
	Failed int
}

// Flush retries every pending payload in the backlog.
func (d *Dispatcher) Flush(ctx context.Context) (FlushReport, error) {
	var report FlushReport
	if d.submitter == nil {
		return report, ErrNoEndpoint
	}
	if d.backlog == nil {
		return report, nil
	}

	pending, err := d.backlog.PendingResponses(ctx)
	if err != nil {
		return report, fmt.Errorf("submission: list pending: %w", err)
	}

	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := d.submitter.Submit(ctx, p); err != nil {
			report.Failed++
			d.logger.Warn("retry failed", "id", p.ID, "error", err)
			if err := d.backlog.MarkAttempt(ctx, p.ID); err != nil {
				return report, fmt.Errorf("submission: record attempt: %w", err)
			}
			continue
		}
		if err := d.backlog.MarkSent(ctx, p.ID); err != nil {
			return report, fmt.Errorf("submission: mark sent: %w", err)
		}
		report.Sent++
	}

	d.logger.Info("backlog flushed", "sent", report.Sent, "failed", report.Failed)
	return report, nil
}
