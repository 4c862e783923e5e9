// Package history keeps the linear list of applied edits and a pointer to the
// step currently shown.
package history

import "archedit/internal/domain"

// Step is one applied edit. Index 0 is always the original upload with an
// empty instruction.
type Step struct {
	Image       domain.BlobRef `json:"image"`
	Instruction string         `json:"instruction"`
}

// Ledger is a truncate-then-append history. Pointer is -1 exactly when the
// ledger is empty.
type Ledger struct {
	steps   []Step
	pointer int
}

func NewLedger() *Ledger {
	return &Ledger{pointer: -1}
}

// Append drops every step after the pointer, appends step and moves the
// pointer onto it.
func (l *Ledger) Append(step Step) {
	if l.pointer < 0 {
		l.steps = l.steps[:0]
	} else {
		l.steps = l.steps[:l.pointer+1]
	}
	l.steps = append(l.steps, step)
	l.pointer = len(l.steps) - 1
}

// Select moves the pointer to i. Out-of-range indices leave the ledger
// unchanged and report false.
func (l *Ledger) Select(i int) (Step, bool) {
	if i < 0 || i >= len(l.steps) {
		return Step{}, false
	}
	l.pointer = i
	return l.steps[i], true
}

// Reset empties the ledger.
func (l *Ledger) Reset() {
	l.steps = nil
	l.pointer = -1
}

// Current returns the step under the pointer.
func (l *Ledger) Current() (Step, bool) {
	if l.pointer < 0 {
		return Step{}, false
	}
	return l.steps[l.pointer], true
}

// At returns step i without moving the pointer.
func (l *Ledger) At(i int) (Step, bool) {
	if i < 0 || i >= len(l.steps) {
		return Step{}, false
	}
	return l.steps[i], true
}

func (l *Ledger) Len() int { return len(l.steps) }

func (l *Ledger) Pointer() int { return l.pointer }

// Steps returns a copy of the ledger in chronological order.
func (l *Ledger) Steps() []Step {
	out := make([]Step, len(l.steps))
	copy(out, l.steps)
	return out
}
