package workout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fitflow/internal/errs"
	"fitflow/internal/logging"
	"fitflow/internal/model"
)

type stubInterpreter struct {
	candidates []model.Candidate
	err        error
	calls      int
	block      chan struct{}
}

func (s *stubInterpreter) Interpret(_ context.Context, _ string) ([]model.Candidate, error) {
	s.calls++
	if s.block != nil {
		<-s.block
	}
	return s.candidates, s.err
}

// echoStore assigns sequential IDs and returns what it was given.
type echoStore struct {
	mu       sync.Mutex
	listed   []model.PersistedLogEntry
	listErr  error
	appended []model.LogEntry
	err      error
	nextID   int64
}

func (s *echoStore) List(context.Context) ([]model.PersistedLogEntry, error) {
	return s.listed, s.listErr
}

func (s *echoStore) Append(_ context.Context, e model.LogEntry) (model.PersistedLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appended = append(s.appended, e)
	if s.err != nil {
		return model.PersistedLogEntry{}, s.err
	}
	s.nextID++
	return model.PersistedLogEntry{
		ID:       s.nextID,
		Date:     e.Date,
		Exercise: e.Exercise,
		Duration: e.Duration,
		Calories: e.Calories,
		Notes:    e.Notes,
	}, nil
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 15, 18, 30, 0, 0, time.UTC)
}

func newTestPipeline(interp Interpreter, store Store, opts ...Option) *Pipeline {
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	p := New(interp, store, logging.Discard(), opts...)
	return p
}

func TestSubmit_Success(t *testing.T) {
	interp := &stubInterpreter{candidates: []model.Candidate{{Name: "running", DurationMin: 30, Calories: 300}}}
	store := &echoStore{}
	p := newTestPipeline(interp, store)
	defer p.Close()

	got, err := p.Submit(context.Background(), Submission{Text: "ran 3 miles"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if got.Exercise != "running" || got.Calories != 300 || got.Duration != 30 || got.Date != "2026-10-15" {
		t.Errorf("unexpected entry %+v", got)
	}
	snap := p.Snapshot()
	if snap.Status != Succeeded {
		t.Errorf("expected Succeeded, got %v", snap.Status)
	}
	if len(snap.Entries) != 1 || snap.Entries[0] != got {
		t.Errorf("log should end with the persisted record, got %+v", snap.Entries)
	}
}

func TestSubmit_NoCandidates(t *testing.T) {
	interp := &stubInterpreter{candidates: []model.Candidate{}}
	store := &echoStore{}
	p := newTestPipeline(interp, store)

	_, err := p.Submit(context.Background(), Submission{Text: "asdfgh"})
	if !errors.Is(err, errs.ErrUpstreamEmpty) {
		t.Fatalf("expected upstream empty error, got %v", err)
	}
	snap := p.Snapshot()
	if snap.Status != Failed || snap.Message != "No exercise data found. Please try a different exercise description." {
		t.Errorf("unexpected state %v %q", snap.Status, snap.Message)
	}
	if len(store.appended) != 0 {
		t.Error("store must not be called without candidates")
	}
	if len(snap.Entries) != 0 {
		t.Error("log must be unchanged")
	}
}

func TestSubmit_StoreFailureLeavesLog(t *testing.T) {
	interp := &stubInterpreter{candidates: []model.Candidate{{Name: "cycling", DurationMin: 20, Calories: 150}}}
	store := &echoStore{listed: []model.PersistedLogEntry{{ID: 2, Exercise: "yoga"}}}
	p := newTestPipeline(interp, store)
	if err := p.Hydrate(context.Background()); err != nil {
		t.Fatal(err)
	}

	store.err = errors.New("sheet unavailable")
	_, err := p.Submit(context.Background(), Submission{Text: "biked 20 minutes"})
	if !errors.Is(err, errs.ErrService) {
		t.Fatalf("expected service failure, got %v", err)
	}
	snap := p.Snapshot()
	if snap.Status != Failed {
		t.Errorf("expected Failed, got %v", snap.Status)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].Exercise != "yoga" {
		t.Errorf("log changed on failure: %+v", snap.Entries)
	}
}

func TestSubmit_InterpreterFailure(t *testing.T) {
	interp := &stubInterpreter{err: errors.New("timeout")}
	store := &echoStore{}
	p := newTestPipeline(interp, store)

	_, err := p.Submit(context.Background(), Submission{Text: "swam"})
	if errs.GetCode(err) != errs.CodeService {
		t.Fatalf("expected service failure, got %v", err)
	}
	if len(store.appended) != 0 {
		t.Error("store must not be called after interpreter failure")
	}
}

func TestSubmit_ValidationMakesNoCalls(t *testing.T) {
	interp := &stubInterpreter{}
	store := &echoStore{}
	p := newTestPipeline(interp, store)

	_, err := p.Submit(context.Background(), Submission{Text: "   "})
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if interp.calls != 0 || len(store.appended) != 0 {
		t.Errorf("no calls expected, interpreter=%d store=%d", interp.calls, len(store.appended))
	}
	if snap := p.Snapshot(); snap.Status != Failed || snap.Message != "Please enter an exercise name" {
		t.Errorf("unexpected state %v %q", snap.Status, snap.Message)
	}
}

func TestSubmit_EntryMapping(t *testing.T) {
	tests := []struct {
		name      string
		sub       Submission
		candidate model.Candidate
		wantName  string
		wantDur   int
		wantNotes string
	}{
		{
			name:      "user duration wins",
			sub:       Submission{Text: "ran", Duration: "45", Notes: " hills "},
			candidate: model.Candidate{Name: "running", DurationMin: 30, Calories: 300},
			wantName:  "running",
			wantDur:   45,
			wantNotes: "hills",
		},
		{
			name:      "invalid duration falls back to estimate",
			sub:       Submission{Text: "ran", Duration: "soon"},
			candidate: model.Candidate{Name: "running", DurationMin: 29.6, Calories: 300},
			wantName:  "running",
			wantDur:   30,
		},
		{
			name:      "leading number of a duration with units",
			sub:       Submission{Text: "ran", Duration: " 30 min"},
			candidate: model.Candidate{Name: "running", DurationMin: 12},
			wantName:  "running",
			wantDur:   30,
		},
		{
			name:      "negative duration falls back",
			sub:       Submission{Text: "ran", Duration: "-20"},
			candidate: model.Candidate{Name: "running", DurationMin: 12},
			wantName:  "running",
			wantDur:   12,
		},
		{
			name:      "non-positive duration falls back",
			sub:       Submission{Text: "ran", Duration: "0"},
			candidate: model.Candidate{Name: "running", DurationMin: 12},
			wantName:  "running",
			wantDur:   12,
		},
		{
			name:      "missing name uses raw text",
			sub:       Submission{Text: "  weird stretch  "},
			candidate: model.Candidate{DurationMin: 10, Calories: 20},
			wantName:  "weird stretch",
			wantDur:   10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &echoStore{}
			p := newTestPipeline(&stubInterpreter{candidates: []model.Candidate{tt.candidate}}, store)
			defer p.Close()

			if _, err := p.Submit(context.Background(), tt.sub); err != nil {
				t.Fatalf("submit: %v", err)
			}
			got := store.appended[0]
			if got.Exercise != tt.wantName || got.Duration != tt.wantDur || got.Notes != tt.wantNotes {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestSubmit_FirstCandidateOnly(t *testing.T) {
	interp := &stubInterpreter{candidates: []model.Candidate{
		{Name: "running", DurationMin: 30, Calories: 300},
		{Name: "swimming", DurationMin: 20, Calories: 200},
	}}
	store := &echoStore{}
	p := newTestPipeline(interp, store)
	defer p.Close()

	if _, err := p.Submit(context.Background(), Submission{Text: "ran then swam"}); err != nil {
		t.Fatal(err)
	}
	if len(store.appended) != 1 || store.appended[0].Exercise != "running" {
		t.Errorf("expected only the first candidate, got %+v", store.appended)
	}
}

func TestSubmit_RevertsToIdle(t *testing.T) {
	changes := make(chan Status, 16)
	interp := &stubInterpreter{candidates: []model.Candidate{{Name: "running", DurationMin: 30, Calories: 300}}}
	p := newTestPipeline(interp, &echoStore{},
		WithSuccessDisplay(20*time.Millisecond),
		WithOnChange(func(s Snapshot) { changes <- s.Status }),
	)

	if _, err := p.Submit(context.Background(), Submission{Text: "ran 3 miles"}); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	var seen []Status
	for {
		select {
		case s := <-changes:
			seen = append(seen, s)
			if s == Idle {
				want := []Status{Submitting, Succeeded, Idle}
				if len(seen) != len(want) {
					t.Fatalf("unexpected transitions %v", seen)
				}
				for i := range want {
					if seen[i] != want[i] {
						t.Fatalf("unexpected transitions %v", seen)
					}
				}
				return
			}
		case <-deadline:
			t.Fatalf("did not revert to Idle, transitions %v", seen)
		}
	}
}

func TestSubmit_RejectsWhileInFlight(t *testing.T) {
	interp := &stubInterpreter{
		candidates: []model.Candidate{{Name: "rowing", DurationMin: 10, Calories: 90}},
		block:      make(chan struct{}),
	}
	store := &echoStore{}
	started := make(chan struct{}, 4)
	p := newTestPipeline(interp, store, WithOnChange(func(s Snapshot) {
		if s.Status == Submitting {
			started <- struct{}{}
		}
	}))
	defer p.Close()

	done := make(chan error, 1)
	go func() {
		_, err := p.Submit(context.Background(), Submission{Text: "rowed"})
		done <- err
	}()
	<-started

	if _, err := p.Submit(context.Background(), Submission{Text: "rowed again"}); !errors.Is(err, ErrSubmissionInFlight) {
		t.Errorf("expected ErrSubmissionInFlight, got %v", err)
	}
	if p.Status() != Submitting {
		t.Errorf("rejected submission must not change state, got %v", p.Status())
	}

	close(interp.block)
	if err := <-done; err != nil {
		t.Fatalf("first submission: %v", err)
	}
	if len(store.appended) != 1 {
		t.Errorf("expected one append, got %d", len(store.appended))
	}
}

func TestHydrate(t *testing.T) {
	store := &echoStore{listed: []model.PersistedLogEntry{
		{ID: 2, Date: "2026-10-14", Exercise: "running"},
		{ID: 3, Date: "2026-10-15", Exercise: "yoga"},
	}}
	p := newTestPipeline(&stubInterpreter{}, store)

	if err := p.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	snap := p.Snapshot()
	if len(snap.Entries) != 2 || snap.Hydrating || snap.HydrationErr != nil {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestHydrate_Failure(t *testing.T) {
	store := &echoStore{listErr: errors.New("403")}
	p := newTestPipeline(&stubInterpreter{}, store)

	err := p.Hydrate(context.Background())
	if !errors.Is(err, errs.ErrHydration) {
		t.Fatalf("expected hydration failure, got %v", err)
	}
	snap := p.Snapshot()
	if errs.UserMessage(snap.HydrationErr) != "Failed to load workouts. Please try again later." {
		t.Errorf("unexpected message %q", errs.UserMessage(snap.HydrationErr))
	}
	if snap.Entries == nil || len(snap.Entries) != 0 {
		t.Errorf("entries should stay empty, got %#v", snap.Entries)
	}
}
