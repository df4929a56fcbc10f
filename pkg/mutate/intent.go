package mutate

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyContent rejects a submission whose trimmed content is empty.
	ErrEmptyContent = errors.New("mutate: content is empty")
	// ErrPending rejects a submission while one of the same kind is in flight.
	ErrPending = errors.New("mutate: a mutation of this kind is already pending")
	// ErrNoIdentity rejects a submission when no account is connected.
	ErrNoIdentity = errors.New("mutate: no active identity")
	// ErrDiscarded marks the outcome of a mutation whose identity changed
	// while it was in flight. Callers should ignore it.
	ErrDiscarded = errors.New("mutate: identity changed, outcome discarded")
)

// Kind is the mutation type.
type Kind int

const (
	KindCreate Kind = iota
	KindUpdate
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Status is the lifecycle state of an intent.
type Status int

const (
	StatusPending Status = iota
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is an end state.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Intent is a user-initiated mutation. It is kept until acknowledged.
type Intent struct {
	ID       string
	Kind     Kind
	TargetID string
	Content  string
	Status   Status
	Err      error
	Digest   string
}

// MutationError wraps a failed submission.
type MutationError struct {
	Kind     Kind
	TargetID string
	Err      error
}

func (e *MutationError) Error() string {
	if e.TargetID != "" {
		return fmt.Sprintf("mutate: %s %s failed: %v", e.Kind, e.TargetID, e.Err)
	}
	return fmt.Sprintf("mutate: %s failed: %v", e.Kind, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// Outcome is the tagged result of Create or Update. Reason is set when
// Status is StatusFailed.
type Outcome struct {
	Status Status
	Reason string
	Err    error
	Intent Intent
}

// Succeeded reports whether the mutation executed.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusSucceeded
}

// Rejected reports whether the request was refused before submission.
func (o Outcome) Rejected() bool {
	return errors.Is(o.Err, ErrEmptyContent) || errors.Is(o.Err, ErrPending) || errors.Is(o.Err, ErrNoIdentity)
}

// Discarded reports whether the outcome belongs to a previous identity.
func (o Outcome) Discarded() bool {
	return errors.Is(o.Err, ErrDiscarded)
}

func failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Reason: err.Error(), Err: err}
}
