// Package workout runs the workout logging flow: free text goes to the
// interpreter, the first candidate becomes a log entry, the store persists
// it and the stored record joins the in-memory log.
package workout

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fitflow/internal/errs"
	"fitflow/internal/model"
)

// Status is the submission state.
type Status int

const (
	Idle Status = iota
	Submitting
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

const (
	// DefaultSuccessDisplay is how long Succeeded is held before
	// reverting to Idle.
	DefaultSuccessDisplay = 3 * time.Second

	msgEmptyText     = "Please enter an exercise name"
	msgNoCandidates  = "No exercise data found. Please try a different exercise description."
	msgInterpretFail = "Failed to analyze exercise. Please try again."
	msgStoreFail     = "Failed to save workout. Please try again."
	msgHydrationFail = "Failed to load workouts. Please try again later."
)

var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// Interpreter turns a free-text description into exercise candidates.
type Interpreter interface {
	Interpret(ctx context.Context, text string) ([]model.Candidate, error)
}

// Store persists log entries.
type Store interface {
	List(ctx context.Context) ([]model.PersistedLogEntry, error)
	Append(ctx context.Context, entry model.LogEntry) (model.PersistedLogEntry, error)
}

// Submission is the raw form input.
type Submission struct {
	Text     string
	Duration string
	Notes    string
}

// Snapshot is a point-in-time copy of the pipeline state.
type Snapshot struct {
	Status       Status
	Message      string
	Entries      []model.PersistedLogEntry
	Hydrating    bool
	HydrationErr error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the source of the entry date.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithSuccessDisplay sets how long Succeeded is held.
func WithSuccessDisplay(d time.Duration) Option {
	return func(p *Pipeline) { p.successDisplay = d }
}

// WithOnChange registers a hook called after every state change. It runs
// without the pipeline lock held.
func WithOnChange(fn func(Snapshot)) Option {
	return func(p *Pipeline) { p.onChange = fn }
}

// Pipeline owns the in-memory workout log and the submission state.
type Pipeline struct {
	interpreter    Interpreter
	store          Store
	logger         *slog.Logger
	now            func() time.Time
	successDisplay time.Duration
	onChange       func(Snapshot)

	mu           sync.Mutex
	status       Status
	message      string
	entries      []model.PersistedLogEntry
	hydrating    bool
	hydrationErr error
	generation   uint64
	revert       *time.Timer
}

func New(interpreter Interpreter, store Store, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		interpreter:    interpreter,
		store:          store,
		logger:         logger.With("component", "workout"),
		now:            time.Now,
		successDisplay: DefaultSuccessDisplay,
		entries:        []model.PersistedLogEntry{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Hydrate loads the persisted log once. Failure is kept as a persistent
// hydration error.
func (p *Pipeline) Hydrate(ctx context.Context) error {
	p.mu.Lock()
	p.hydrating = true
	p.mu.Unlock()
	p.notify()

	entries, err := p.store.List(ctx)

	p.mu.Lock()
	p.hydrating = false
	if err != nil {
		p.hydrationErr = errs.Wrap(err, errs.CodeHydration, msgHydrationFail)
		err = p.hydrationErr
	} else {
		p.hydrationErr = nil
		if entries == nil {
			entries = []model.PersistedLogEntry{}
		}
		p.entries = entries
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Error("hydration failed", "error", err)
	} else {
		p.logger.Info("workouts hydrated", "count", len(entries))
	}
	p.notify()
	return err
}

// Submit runs one submission through interpret, map and store. Only one
// submission runs at a time.
func (p *Pipeline) Submit(ctx context.Context, sub Submission) (model.PersistedLogEntry, error) {
	p.mu.Lock()
	if p.status == Submitting {
		p.mu.Unlock()
		return model.PersistedLogEntry{}, ErrSubmissionInFlight
	}
	p.generation++
	if p.revert != nil {
		p.revert.Stop()
		p.revert = nil
	}
	p.status = Submitting
	p.message = ""
	p.mu.Unlock()
	p.notify()

	logger := p.logger.With("attempt", uuid.NewString())

	text := strings.TrimSpace(sub.Text)
	if text == "" {
		return p.fail(logger, errs.New(errs.CodeValidation, msgEmptyText))
	}

	logger.Info("interpreting workout", "text", text)
	candidates, err := p.interpreter.Interpret(ctx, text)
	if err != nil {
		return p.fail(logger, errs.Wrap(err, errs.CodeService, msgInterpretFail))
	}
	if len(candidates) == 0 {
		return p.fail(logger, errs.New(errs.CodeUpstreamEmpty, msgNoCandidates))
	}

	entry := p.buildEntry(text, sub, candidates[0])

	persisted, err := p.store.Append(ctx, entry)
	if err != nil {
		return p.fail(logger, errs.Wrap(err, errs.CodeService, msgStoreFail))
	}

	p.mu.Lock()
	p.entries = append(p.entries, persisted)
	p.status = Succeeded
	gen := p.generation
	p.revert = time.AfterFunc(p.successDisplay, func() { p.revertToIdle(gen) })
	p.mu.Unlock()

	logger.Info("workout logged", "exercise", persisted.Exercise, "duration", persisted.Duration, "calories", persisted.Calories)
	p.notify()
	return persisted, nil
}

func (p *Pipeline) buildEntry(text string, sub Submission, c model.Candidate) model.LogEntry {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = text
	}

	duration := int(math.Round(c.DurationMin))
	if d := leadingInt(sub.Duration); d > 0 {
		duration = d
	}

	return model.LogEntry{
		Date:     p.now().Format("2006-01-02"),
		Exercise: name,
		Duration: duration,
		Calories: c.Calories,
		Notes:    strings.TrimSpace(sub.Notes),
	}
}

// leadingInt parses the digits at the start of s, so "30 min" gives 30.
// It returns 0 when s does not start with a digit.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func (p *Pipeline) fail(logger *slog.Logger, err *errs.Error) (model.PersistedLogEntry, error) {
	p.mu.Lock()
	p.status = Failed
	p.message = err.Message
	p.mu.Unlock()

	if err.Code == errs.CodeValidation {
		logger.Debug("submission rejected", "error", err)
	} else {
		logger.Error("submission failed", "code", err.Code, "error", err)
	}
	p.notify()
	return model.PersistedLogEntry{}, err
}

func (p *Pipeline) revertToIdle(gen uint64) {
	p.mu.Lock()
	if p.generation != gen || p.status != Succeeded {
		p.mu.Unlock()
		return
	}
	p.status = Idle
	p.revert = nil
	p.mu.Unlock()
	p.notify()
}

// Snapshot returns a copy of the current state.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Pipeline) snapshotLocked() Snapshot {
	return Snapshot{
		Status:       p.status,
		Message:      p.message,
		Entries:      slices.Clone(p.entries),
		Hydrating:    p.hydrating,
		HydrationErr: p.hydrationErr,
	}
}

// Status returns the submission state.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// SuccessDisplay is how long Succeeded is held before reverting to Idle.
func (p *Pipeline) SuccessDisplay() time.Duration {
	return p.successDisplay
}

// Entries returns a copy of the in-memory log.
func (p *Pipeline) Entries() []model.PersistedLogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.entries)
}

// Close stops a pending revert timer.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.revert != nil {
		p.revert.Stop()
		p.revert = nil
	}
}

func (p *Pipeline) notify() {
	if p.onChange == nil {
		return
	}
	p.onChange(p.Snapshot())
}
