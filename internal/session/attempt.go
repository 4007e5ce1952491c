// Package session tracks a single recall attempt: its state machine, timer
// baseline, penalties and assistance flags.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/tuimemo/internal/engine"
	"github.com/verte-zerg/tuimemo/internal/model"
)

// PenaltyPerReveal is added to the elapsed time each time the reference is shown.
const PenaltyPerReveal = 60 * time.Second

// ErrNotTyping is returned for actions that need an attempt in progress.
var ErrNotTyping = errors.New("attempt is not in progress")

// State is the phase of an attempt.
type State int

const (
	// Idle means nothing has been typed yet.
	Idle State = iota
	// Typing means the timer is running.
	Typing
	// Completed means the input matched and the time is frozen.
	Completed
	// Abandoned means the attempt was left without completing.
	Abandoned
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Typing:
		return "typing"
	case Completed:
		return "completed"
	case Abandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Attempt is the timing state of one attempt. Methods return an updated copy.
// StartedAt is the timer baseline; each reveal moves it PenaltyPerReveal
// earlier, so elapsed time already includes every penalty.
type Attempt struct {
	State            State
	StartedAt        time.Time
	EndedAt          time.Time
	PenaltySeconds   int
	ReferenceExposed bool
	GhostTextUsed    bool
}

// NewAttempt returns an idle attempt with no penalty.
func NewAttempt() Attempt {
	return Attempt{State: Idle}
}

// Start moves an idle attempt into Typing and starts the timer at now.
// Other states are returned unchanged.
func (a Attempt) Start(now time.Time) Attempt {
	if a.State != Idle {
		return a
	}
	a.State = Typing
	a.StartedAt = now
	return a
}

// Reveal applies the reference-exposure penalty.
func (a Attempt) Reveal() (Attempt, error) {
	if a.State != Typing {
		return a, ErrNotTyping
	}
	a.PenaltySeconds += int(PenaltyPerReveal / time.Second)
	a.StartedAt = a.StartedAt.Add(-PenaltyPerReveal)
	a.ReferenceExposed = true
	return a, nil
}

// MarkGhostTextUsed records that a hint was displayed.
func (a Attempt) MarkGhostTextUsed() Attempt {
	if a.State == Idle || a.State == Typing {
		a.GhostTextUsed = true
	}
	return a
}

// Complete freezes the timer and builds the record to persist.
func (a Attempt) Complete(now time.Time, easyMode bool) (Attempt, model.TimingRecord, error) {
	if a.State != Typing {
		return a, model.TimingRecord{}, ErrNotTyping
	}
	a.State = Completed
	a.EndedAt = now
	rec := model.TimingRecord{
		Time:             engine.CompletionTime(a.StartedAt, now),
		Date:             now.UnixMilli(),
		EasyMode:         easyMode,
		ReferenceExposed: a.ReferenceExposed,
		GhostTextUsed:    a.GhostTextUsed,
	}
	return a, rec, nil
}

// Abandon drops an unfinished attempt. Completed attempts stay completed.
func (a Attempt) Abandon() Attempt {
	if a.State == Completed {
		return a
	}
	a.State = Abandoned
	return a
}

// Elapsed returns the whole seconds shown on the timer, penalties included.
func (a Attempt) Elapsed(now time.Time) int {
	switch a.State {
	case Typing:
		return engine.CompletionTime(a.StartedAt, now)
	case Completed:
		return engine.CompletionTime(a.StartedAt, a.EndedAt)
	default:
		return 0
	}
}
