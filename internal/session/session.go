// =============================================================================
// Graduation Audit - Session
// =============================================================================
//
// A Session owns the state of one audit from upload to preview:
//
//   upload ──Process──> processing ──ok──> preview
//      ^                    │                 │
//      └──────failure───────┘                 │
//      └───────────────Reset──────────────────┘
//
// The pipeline packages stay stateless; the session is the only place where
// step, progress and results are stored. All methods are safe for
// concurrent use, so a presentation layer may poll Progress while Process
// runs.
//
// =============================================================================

package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/logger"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/payload"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/reconcile"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/roster"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/transcript"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
)

// Step is the screen-level stage of a session.
type Step string

const (
	StepUpload     Step = "upload"
	StepProcessing Step = "processing"
	StepPreview    Step = "preview"
)

// ErrWrongStep is returned when an action is not allowed in the current step.
var ErrWrongStep = errors.New("action not allowed in current step")

// Progress is a snapshot of the archive pass.
type Progress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}

// Percent returns the rounded completion percentage, 0 when Total is 0.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(p.Processed) / float64(p.Total) * 100))
}

// RosterLoader produces the roster index of a run.
type RosterLoader func() (*roster.Index, error)

// =============================================================================
// SESSION
// =============================================================================

// Session holds the state of one audit.
type Session struct {
	mu       sync.RWMutex
	step     Step
	index    *roster.Index
	records  []types.StudentRecord
	progress Progress

	engineOpts []reconcile.Option
	observer   func(Progress)
	logger     logger.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithEngineOptions passes options to the reconciliation engine of every run.
func WithEngineOptions(opts ...reconcile.Option) Option {
	return func(s *Session) { s.engineOpts = append(s.engineOpts, opts...) }
}

// WithObserver registers a function called after every progress update.
func WithObserver(fn func(Progress)) Option {
	return func(s *Session) { s.observer = fn }
}

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a session in the upload step.
func New(opts ...Option) *Session {
	s := &Session{step: StepUpload, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process loads the roster and reconciles it with archive.
//
// PARAMETERS:
//   - ctx: Cancels the run.
//   - loadRoster: Produces the roster index.
//   - archive: The transcript container.
//
// RETURNS:
//   - The reconciled records. The session moves to the preview step.
//   - An error if the roster cannot be loaded or the run is cancelled. The
//     session then returns to the upload step with no results.
func (s *Session) Process(ctx context.Context, loadRoster RosterLoader, archive transcript.Archive) ([]types.StudentRecord, error) {
	s.mu.Lock()
	if s.step != StepUpload {
		step := s.step
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: process in %s", ErrWrongStep, step)
	}
	s.step = StepProcessing
	s.progress = Progress{}
	s.mu.Unlock()

	records, index, err := s.run(ctx, loadRoster, archive)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Error("Processing failed: %v", err)
		s.step = StepUpload
		s.index = nil
		s.records = nil
		return nil, err
	}

	s.index = index
	s.records = records
	s.step = StepPreview
	s.logger.Info("Processing finished with %d records", len(records))
	return copyRecords(records), nil
}

func (s *Session) run(ctx context.Context, loadRoster RosterLoader, archive transcript.Archive) ([]types.StudentRecord, *roster.Index, error) {
	index, err := loadRoster()
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("Loaded roster with %d students", index.Len())

	opts := append([]reconcile.Option{}, s.engineOpts...)
	opts = append(opts, reconcile.WithProgress(s.updateProgress))

	records, err := reconcile.Run(ctx, index, archive, opts...)
	if err != nil {
		return nil, nil, err
	}
	return records, index, nil
}

func (s *Session) updateProgress(processed, total int) {
	p := Progress{Processed: processed, Total: total}

	s.mu.Lock()
	s.progress = p
	s.mu.Unlock()

	if s.observer != nil {
		s.observer(p)
	}
}

// Reset returns the session to the upload step and drops all results.
// It is refused while a run is in progress.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step == StepProcessing {
		return fmt.Errorf("%w: reset in %s", ErrWrongStep, s.step)
	}
	s.step = StepUpload
	s.index = nil
	s.records = nil
	s.progress = Progress{}
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Step returns the current step.
func (s *Session) Step() Step {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step
}

// Progress returns the latest progress snapshot.
func (s *Session) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// Roster returns the roster index of the last successful run.
func (s *Session) Roster() *roster.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Records returns a copy of the reconciled records.
func (s *Session) Records() []types.StudentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRecords(s.records)
}

// Stats tallies the reconciled records by status.
func (s *Session) Stats() reconcile.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reconcile.Summarize(s.records)
}

// Search returns the records matching term (see reconcile.Filter).
func (s *Session) Search(term string) []types.StudentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reconcile.Filter(s.records, term)
}

// Payload returns the anonymized payload of the reconciled records.
func (s *Session) Payload() []payload.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return payload.ToAnonymized(s.records)
}

// Mapping returns the re-identification table of the reconciled records.
func (s *Session) Mapping() map[string]payload.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return payload.ToMappingTable(s.records)
}

func copyRecords(records []types.StudentRecord) []types.StudentRecord {
	if records == nil {
		return nil
	}
	out := make([]types.StudentRecord, len(records))
	copy(out, records)
	return out
}
