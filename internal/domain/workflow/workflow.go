// Package workflow models destructive admin flows as an explicit state
// machine: idle -> confirming -> in_progress -> succeeded|failed -> idle. The
// mutating call may only be issued on the confirming->in_progress transition,
// an in-flight guard rejects duplicate submission, and a terminal state is
// always observable before reset.
package workflow

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State names one node of the operation state machine.
type State string

const (
	StateIdle       State = "idle"
	StateConfirming State = "confirming"
	StateInProgress State = "in_progress"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

var (
	ErrNotConfirming = errors.New("operation is not awaiting confirmation")
	ErrNotInProgress = errors.New("operation is not in progress")
	ErrNotTerminal   = errors.New("operation has not finished")
)

// Operation tracks one destructive flow instance.
type Operation struct {
	ID   string
	Kind string

	mu         sync.Mutex
	state      State
	counts     map[string]int64
	failure    string
	startedAt  time.Time
	finishedAt time.Time
}

// Snapshot is an immutable view of an operation, safe to serialize.
type Snapshot struct {
	ID         string           `json:"id"`
	Kind       string           `json:"kind"`
	State      State            `json:"state"`
	Counts     map[string]int64 `json:"counts,omitempty"`
	Failure    string           `json:"failure,omitempty"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

// Start moves the operation from confirming to in_progress. Any other source
// state is rejected, which is the duplicate-submission guard.
func (o *Operation) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateConfirming {
		return ErrNotConfirming
	}
	o.state = StateInProgress
	o.startedAt = time.Now().UTC()
	return nil
}

// Succeed records per-category counts and moves to succeeded.
func (o *Operation) Succeed(counts map[string]int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateInProgress {
		return ErrNotInProgress
	}
	o.state = StateSucceeded
	o.counts = counts
	o.finishedAt = time.Now().UTC()
	return nil
}

// Fail records the failure message (and any counts completed before the
// failure) and moves to failed.
func (o *Operation) Fail(message string, partial map[string]int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateInProgress {
		return ErrNotInProgress
	}
	o.state = StateFailed
	o.failure = message
	o.counts = partial
	o.finishedAt = time.Now().UTC()
	return nil
}

// Reset returns a terminal operation to idle. The result screen must have
// been observable, so resetting a non-terminal operation is an error.
func (o *Operation) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateSucceeded && o.state != StateFailed {
		return ErrNotTerminal
	}
	o.state = StateIdle
	return nil
}

// Snapshot returns the current view of the operation.
func (o *Operation) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{
		ID:    o.ID,
		Kind:  o.Kind,
		State: o.state,
	}
	if o.counts != nil {
		snap.Counts = make(map[string]int64, len(o.counts))
		for k, v := range o.counts {
			snap.Counts[k] = v
		}
	}
	snap.Failure = o.failure
	if !o.startedAt.IsZero() {
		t := o.startedAt
		snap.StartedAt = &t
	}
	if !o.finishedAt.IsZero() {
		t := o.finishedAt
		snap.FinishedAt = &t
	}
	return snap
}

// State returns the current state.
func (o *Operation) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Registry tracks operations by ID so results stay retrievable after the
// mutating call returns.
type Registry struct {
	mu  sync.Mutex
	ops map[string]*Operation
}

// NewRegistry constructs an empty operation registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]*Operation)}
}

// Begin creates a new operation in the confirming state.
func (r *Registry) Begin(kind string) *Operation {
	op := &Operation{
		ID:    uuid.NewString(),
		Kind:  kind,
		state: StateConfirming,
	}
	r.mu.Lock()
	r.ops[op.ID] = op
	r.mu.Unlock()
	return op
}

// Get returns the operation with the given ID.
func (r *Registry) Get(id string) (*Operation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[id]
	return op, ok
}
