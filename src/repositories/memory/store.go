// Package memory is an in-process implementation of repositories.Store.
// Transactions hold a store-wide lock and work on a copy of the data that
// replaces the live copy only when the transaction function succeeds.
package memory

import (
	"context"
	"sync"
	"time"

	"inventory/src/models"
	"inventory/src/repositories"
)

type state struct {
	assets      map[int]models.Asset
	categories  map[int]models.AssetCategory
	assignments map[int]models.Assignment
	events      map[int]models.LifecycleEvent
	audit       map[int]models.AuditEntry
	incidents   map[int]models.Incident
	seq         map[string]int
}

func newState() *state {
	return &state{
		assets:      map[int]models.Asset{},
		categories:  map[int]models.AssetCategory{},
		assignments: map[int]models.Assignment{},
		events:      map[int]models.LifecycleEvent{},
		audit:       map[int]models.AuditEntry{},
		incidents:   map[int]models.Incident{},
		seq:         map[string]int{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies every table. Stored values are never mutated in place, so
// copying the maps is enough.
func (s *state) clone() *state {
	return &state{
		assets:      cloneMap(s.assets),
		categories:  cloneMap(s.categories),
		assignments: cloneMap(s.assignments),
		events:      cloneMap(s.events),
		audit:       cloneMap(s.audit),
		incidents:   cloneMap(s.incidents),
		seq:         cloneMap(s.seq),
	}
}

func (s *state) next(table string) int {
	s.seq[table]++
	return s.seq[table]
}

type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

// WithClock replaces the clock used for server-side timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Repos() repositories.Repositories {
	return s.repos(scope{store: s})
}

func (s *Store) RunInTx(ctx context.Context, fn func(r repositories.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(s.repos(scope{store: s, tx: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) repos(sc scope) repositories.Repositories {
	return repositories.Repositories{
		Assets:      &assetRepo{sc},
		Categories:  &categoryRepo{sc},
		Assignments: &assignmentRepo{sc},
		Events:      &eventRepo{sc},
		Audit:       &auditRepo{sc},
		Incidents:   &incidentRepo{sc},
	}
}

// scope runs repository calls either against a transaction's working copy or,
// when tx is nil, against the live data under the store lock.
type scope struct {
	store *Store
	tx    *state
}

func (sc scope) do(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sc.tx != nil {
		return fn(sc.tx)
	}
	sc.store.mu.Lock()
	defer sc.store.mu.Unlock()
	return fn(sc.store.st)
}

func (sc scope) now() time.Time {
	return sc.store.now()
}

var _ repositories.Store = (*Store)(nil)
