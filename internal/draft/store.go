package draft

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/cv-builder/internal/types"
	"github.com/rs/zerolog"
)

// Status is the auto-save indicator state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSaving  Status = "saving"
	StatusSaved   Status = "saved"
	StatusFailed  Status = "failed"
)

// Defaults for Options.
const (
	DefaultKey         = "resume-draft"
	DefaultQuietPeriod = 2 * time.Second
	DefaultSavingDelay = time.Second
	DefaultTimeout     = 10 * time.Second
)

// Options configures a Store.
type Options struct {
	Key         string
	QuietPeriod time.Duration
	SavingDelay time.Duration
	// Timeout bounds each KV call made from a timer.
	Timeout time.Duration
	Logger  zerolog.Logger
	// OnStatus is called outside the store lock on every status change.
	OnStatus func(Status, error)
}

// Store persists one draft snapshot under a fixed key and debounces
// scheduled writes.
type Store struct {
	kv       KV
	key      string
	quiet    time.Duration
	delay    time.Duration
	timeout  time.Duration
	log      zerolog.Logger
	onStatus func(Status, error)

	// writeMu orders commits; it is always taken before mu.
	writeMu sync.Mutex

	mu      sync.Mutex
	gen     uint64
	pending *types.ResumeDraft
	timer   *time.Timer
	status  Status
	closed  bool
}

// NewStore wraps kv. Zero durations in opts fall back to the defaults;
// use a negative value to disable a phase.
func NewStore(kv KV, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.QuietPeriod == 0 {
		opts.QuietPeriod = DefaultQuietPeriod
	}
	if opts.SavingDelay == 0 {
		opts.SavingDelay = DefaultSavingDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Store{
		kv:       kv,
		key:      opts.Key,
		quiet:    max(opts.QuietPeriod, 0),
		delay:    max(opts.SavingDelay, 0),
		timeout:  opts.Timeout,
		log:      opts.Logger,
		onStatus: opts.OnStatus,
		status:   StatusIdle,
	}
}

// Key returns the key the snapshot is stored under.
func (s *Store) Key() string { return s.key }

// Status returns the current auto-save status.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Pending reports whether a scheduled snapshot has not been written yet.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Save writes d immediately, discarding any scheduled snapshot.
func (s *Store) Save(ctx context.Context, d types.ResumeDraft) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.cancelLocked()
	s.mu.Unlock()

	return s.write(ctx, d)
}

// Load returns the stored snapshot. A snapshot that fails to decode is
// reported as absent and logged.
func (s *Store) Load(ctx context.Context) (types.ResumeDraft, bool, error) {
	data, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return types.ResumeDraft{}, false, fmt.Errorf("failed to read draft %q: %w", s.key, err)
	}
	if !found {
		return types.ResumeDraft{}, false, nil
	}

	d, err := Decode(data)
	if err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("ignoring unreadable draft")
		return types.ResumeDraft{}, false, nil
	}
	return d, true, nil
}

// Clear drops any scheduled snapshot and removes the stored one.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.cancelLocked()
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("failed to clear draft %q: %w", s.key, err)
	}
	s.setStatus(StatusIdle, nil)
	return nil
}

// Schedule queues d for writing once the quiet period passes without
// another call. A newer call replaces the queued snapshot.
func (s *Store) Schedule(d types.ResumeDraft) {
	snap := d.Clone()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	g := s.gen
	s.pending = &snap
	// Pending is recorded before the quiet timer is armed so it cannot
	// land after the "saving" that timer sets.
	s.status = StatusPending
	cb := s.onStatus
	s.stopTimerLocked()
	s.timer = time.AfterFunc(s.quiet, func() { s.quietElapsed(g) })
	s.mu.Unlock()

	if cb != nil {
		cb(StatusPending, nil)
	}
}

// Flush writes the scheduled snapshot now, if there is one.
func (s *Store) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return nil
	}
	snap := *s.pending
	s.cancelLocked()
	s.mu.Unlock()

	return s.write(ctx, snap)
}

// Close flushes and stops accepting scheduled snapshots.
func (s *Store) Close(ctx context.Context) error {
	err := s.Flush(ctx)
	s.mu.Lock()
	s.closed = true
	s.cancelLocked()
	s.mu.Unlock()
	return err
}

func (s *Store) quietElapsed(g uint64) {
	s.mu.Lock()
	if g != s.gen || s.pending == nil {
		s.mu.Unlock()
		return
	}
	// Status is set before the commit timer is armed so a fast commit
	// cannot be overwritten by a late "saving".
	s.status = StatusSaving
	cb := s.onStatus
	s.timer = time.AfterFunc(s.delay, func() { s.commit(g) })
	s.mu.Unlock()

	if cb != nil {
		cb(StatusSaving, nil)
	}
}

func (s *Store) commit(g uint64) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if g != s.gen || s.pending == nil {
		s.mu.Unlock()
		return
	}
	snap := *s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_ = s.write(ctx, snap)
}

// write must be called with writeMu held.
func (s *Store) write(ctx context.Context, d types.ResumeDraft) error {
	data, err := Encode(d)
	if err == nil {
		err = s.kv.Put(ctx, s.key, data)
	}
	if err != nil {
		err = fmt.Errorf("failed to save draft %q: %w", s.key, err)
		s.log.Error().Err(err).Msg("draft auto-save failed")
		s.setStatus(StatusFailed, err)
		return err
	}
	s.log.Debug().Str("key", s.key).Int("bytes", len(data)).Msg("draft saved")
	s.setStatus(StatusSaved, nil)
	return nil
}

func (s *Store) cancelLocked() {
	s.gen++
	s.pending = nil
	s.stopTimerLocked()
}

func (s *Store) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Store) setStatus(st Status, err error) {
	s.mu.Lock()
	s.status = st
	cb := s.onStatus
	s.mu.Unlock()
	if cb != nil {
		cb(st, err)
	}
}
