package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/tuimemo/internal/engine"
	"github.com/verte-zerg/tuimemo/internal/model"
)

// DefaultGhostDelay is the pause after the last keystroke before a hint shows.
const DefaultGhostDelay = 1500 * time.Millisecond

// BestTimeSaver persists completion times for a reference text.
type BestTimeSaver interface {
	SavePersonalBestTime(ctx context.Context, reference string, rec model.TimingRecord) ([]model.TimingRecord, error)
}

// GhostHint is delivered by the idle timer. Input is the text the hint was
// computed for.
type GhostHint struct {
	Input string
	Text  string
}

// Options configures a Controller.
type Options struct {
	Reference  string
	EasyMode   bool
	GhostDelay time.Duration
	Clock      Clock
	Saver      BestTimeSaver
	Logger     *zap.Logger
	// OnGhost runs on the timer goroutine; it must hand the hint to the
	// owner of the Controller rather than call back into it.
	OnGhost func(GhostHint)
}

// Update is the result of an input change.
type Update struct {
	Input    string
	Trace    []engine.CharResult
	Mistake  bool
	Complete bool
	// Record and Best are set when the change completed the attempt. Best is
	// nil if the record could not be saved.
	Record *model.TimingRecord
	Best   []model.TimingRecord
}

// Controller drives one reference text through repeated attempts. It is not
// safe for concurrent use; only the ghost timer runs on its own goroutine and
// it never touches Controller state.
type Controller struct {
	reference string
	easyMode  bool
	clock     Clock
	saver     BestTimeSaver
	logger    *zap.Logger
	onGhost   func(GhostHint)
	ghost     *Debouncer

	input   string
	attempt Attempt
}

// NewController returns a controller with an idle attempt.
func NewController(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.GhostDelay <= 0 {
		opts.GhostDelay = DefaultGhostDelay
	}
	return &Controller{
		reference: engine.NormalizeText(opts.Reference),
		easyMode:  opts.EasyMode,
		clock:     opts.Clock,
		saver:     opts.Saver,
		logger:    opts.Logger,
		onGhost:   opts.OnGhost,
		ghost:     NewDebouncer(opts.Clock, opts.GhostDelay),
		attempt:   NewAttempt(),
	}
}

// Reference returns the normalized reference text.
func (c *Controller) Reference() string { return c.reference }

// Input returns the current input.
func (c *Controller) Input() string { return c.input }

// EasyMode reports whether relaxed matching is on.
func (c *Controller) EasyMode() bool { return c.easyMode }

// Attempt returns the current attempt state.
func (c *Controller) Attempt() Attempt { return c.attempt }

// SetEasyMode switches matching mode. It only applies before typing starts.
func (c *Controller) SetEasyMode(easy bool) bool {
	if c.attempt.State == Typing {
		return false
	}
	c.easyMode = easy
	return true
}

// Begin resets input, timer, penalty and flags for a fresh attempt.
func (c *Controller) Begin() {
	c.ghost.Stop()
	if c.attempt.State == Typing {
		c.logger.Debug("attempt abandoned", zap.Int("input_len", len([]rune(c.input))))
	}
	c.input = ""
	c.attempt = NewAttempt()
}

// Abandon ends an unfinished attempt without saving anything.
func (c *Controller) Abandon() {
	c.ghost.Stop()
	c.attempt = c.attempt.Abandon()
}

// Close cancels the idle timer.
func (c *Controller) Close() {
	c.ghost.Stop()
}

// SetInput evaluates a new input string. In easy mode the correct prefix is
// rewritten to the reference text first.
func (c *Controller) SetInput(ctx context.Context, input string) Update {
	if c.attempt.State == Completed || c.attempt.State == Abandoned {
		return c.snapshot()
	}
	if c.easyMode {
		input = engine.Autocorrect(input, c.reference)
	}
	c.input = input
	if input != "" {
		c.attempt = c.attempt.Start(c.clock.Now())
	}

	upd := c.snapshot()
	if upd.Complete && c.attempt.State == Typing {
		c.finish(ctx, &upd)
		return upd
	}
	c.armGhost()
	return upd
}

// Revert truncates the input to its longest exactly matching prefix.
func (c *Controller) Revert(ctx context.Context) Update {
	return c.SetInput(ctx, engine.TruncateToCorrect(c.input, c.reference))
}

// Reveal exposes the reference and applies the time penalty.
func (c *Controller) Reveal() error {
	attempt, err := c.attempt.Reveal()
	if err != nil {
		return err
	}
	c.attempt = attempt
	c.logger.Info("reference revealed", zap.Int("penalty_seconds", c.attempt.PenaltySeconds))
	return nil
}

// ApplyGhost accepts a hint from the idle timer and returns the text to show.
// Hints computed for an older input, or arriving after the attempt ended,
// are discarded.
func (c *Controller) ApplyGhost(h GhostHint) string {
	if h.Text == "" || h.Input != c.input || c.attempt.State != Typing {
		return ""
	}
	c.attempt = c.attempt.MarkGhostTextUsed()
	return h.Text
}

// Accuracy scores the current input.
func (c *Controller) Accuracy() float64 {
	return engine.Accuracy(c.reference, c.input, c.easyMode)
}

// Elapsed returns the timer value in seconds.
func (c *Controller) Elapsed() int {
	return c.attempt.Elapsed(c.clock.Now())
}

func (c *Controller) snapshot() Update {
	trace := engine.Classify(c.input, c.reference, c.easyMode)
	return Update{
		Input:    c.input,
		Trace:    trace,
		Mistake:  engine.HasMistake(trace),
		Complete: engine.IsComplete(c.input, c.reference, c.easyMode),
	}
}

func (c *Controller) finish(ctx context.Context, upd *Update) {
	c.ghost.Stop()
	attempt, rec, err := c.attempt.Complete(c.clock.Now(), c.easyMode)
	if err != nil {
		return
	}
	c.attempt = attempt
	upd.Record = &rec
	c.logger.Info("attempt completed",
		zap.Int("time_seconds", rec.Time),
		zap.Int("penalty_seconds", attempt.PenaltySeconds),
		zap.Bool("easy_mode", rec.EasyMode),
		zap.Bool("reference_exposed", rec.ReferenceExposed),
		zap.Bool("ghost_text_used", rec.GhostTextUsed),
	)
	if c.saver == nil {
		return
	}
	best, err := c.saver.SavePersonalBestTime(ctx, c.reference, rec)
	if err != nil {
		c.logger.Error("failed to save personal best", zap.Error(err))
		return
	}
	upd.Best = best
}

func (c *Controller) armGhost() {
	if c.onGhost == nil || c.input == "" {
		c.ghost.Stop()
		return
	}
	reference, input, easy := c.reference, c.input, c.easyMode
	notify := c.onGhost
	c.ghost.Trigger(func() {
		if text := engine.GhostText(reference, input, easy); text != "" {
			notify(GhostHint{Input: input, Text: text})
		}
	})
}
