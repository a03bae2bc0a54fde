// Package session keeps batch results in memory so the web UI can fetch
// downloads after the conversion request returns. Nothing is persisted.
package session

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/On-Jun9/HeicPipe/internal/log"
	"github.com/On-Jun9/HeicPipe/internal/policy"
	"github.com/On-Jun9/HeicPipe/pkg/types"
)

// DefaultSweep is the cron spec used to drop expired sessions.
const DefaultSweep = "@every 1m"

var (
	ErrNotFound = errors.New("session not found")
	ErrNoOutput = errors.New("file has no output")
	ErrBadIndex = errors.New("file index out of range")
)

type Session struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt time.Time          `json:"expires_at"`
	Result    *types.BatchResult `json:"result"`
	// Names holds a unique download name per outcome, "" for skipped files.
	Names []string `json:"names"`
}

func newSession(result *types.BatchResult, now time.Time, ttl time.Duration) *Session {
	names := policy.NewNameSet()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Result:    result,
		Names:     make([]string, len(result.Outcomes)),
	}
	for i, o := range result.Outcomes {
		if o.HasOutput() {
			s.Names[i] = names.Claim(o.OutputName)
		}
	}
	return s
}

// Output returns the outcome at index and its download name.
func (s *Session) Output(index int) (types.FileOutcome, string, error) {
	if index < 0 || index >= len(s.Result.Outcomes) {
		return types.FileOutcome{}, "", ErrBadIndex
	}
	o := s.Result.Outcomes[index]
	if !o.HasOutput() {
		return o, "", ErrNoOutput
	}
	return o, s.Names[index], nil
}

// WriteArchive writes every output as a zip entry, in input order.
func (s *Session) WriteArchive(w io.Writer) error {
	zw := zip.NewWriter(w)
	for i, o := range s.Result.Outcomes {
		if !o.HasOutput() {
			continue
		}
		// JPEG payloads do not compress further.
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:     s.Names[i],
			Method:   zip.Store,
			Modified: s.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("archive %s: %w", s.Names[i], err)
		}
		if _, err := f.Write(o.OutputBytes); err != nil {
			return fmt.Errorf("archive %s: %w", s.Names[i], err)
		}
	}
	return zw.Close()
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *log.Logger
	cron     *cron.Cron
}

func NewStore(ttl time.Duration, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
	}
}

// SetClock replaces the time source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Put(result *types.BatchResult) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := newSession(result, s.now(), s.ttl)
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns a live session. Expired sessions are reported as not found
// even before the sweeper removes them.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || !s.now().Before(sess.ExpiresAt) {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info(fmt.Sprintf("Expired %d session(s)", removed))
	}
	return removed
}

// Start schedules Sweep with a cron spec such as "@every 1m".
func (s *Store) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.Sweep() }); err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the sweeper and waits for a running sweep to finish.
func (s *Store) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
