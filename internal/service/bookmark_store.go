package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/locvowork/performpulse/internal/domain"
	"github.com/locvowork/performpulse/internal/logger"
	"github.com/locvowork/performpulse/internal/metrics"
)

// DefaultBookmarkKey is the blob name holding the serialized bookmark list.
const DefaultBookmarkKey = "performpulse-bookmarks"

// BookmarkStore holds snapshots of bookmarked employees keyed by id and writes
// the whole set back to its BlobStore after every mutation.
type BookmarkStore struct {
	blobs domain.BlobStore
	key   string

	mu      sync.RWMutex
	loaded  bool
	order   []int
	records map[int]domain.Employee
	// changes made before Load, replayed over the persisted set
	earlyChanges bool
	earlyRemoved map[int]struct{}

	loadOnce  sync.Once
	persistMu sync.Mutex
}

func NewBookmarkStore(blobs domain.BlobStore, key string) *BookmarkStore {
	if key == "" {
		key = DefaultBookmarkKey
	}
	return &BookmarkStore{
		blobs:        blobs,
		key:          key,
		records:      make(map[int]domain.Employee),
		earlyRemoved: make(map[int]struct{}),
	}
}

// Load reads the persisted set. Only the first call does any work. An absent,
// unreadable or corrupt blob leaves the store empty; the failure is logged.
// Adds and removes made before Load are applied over the persisted set, which
// is then written back once.
func (s *BookmarkStore) Load(ctx context.Context) {
	s.loadOnce.Do(func() {
		records := s.readPersisted(ctx)

		s.mu.Lock()
		for _, e := range records {
			if _, ok := s.records[e.ID]; ok {
				continue
			}
			if _, ok := s.earlyRemoved[e.ID]; ok {
				continue
			}
			s.records[e.ID] = e
			s.order = append(s.order, e.ID)
		}
		s.loaded = true
		merged := s.earlyChanges
		s.earlyChanges = false
		s.earlyRemoved = nil
		logger.InfoLog(ctx, "Loaded %d bookmarks", len(s.order))
		s.mu.Unlock()

		if merged {
			s.persist(ctx)
		}
	})
}

func (s *BookmarkStore) readPersisted(ctx context.Context) []domain.Employee {
	data, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, domain.ErrBlobNotFound) {
		return nil
	}
	if err != nil {
		metrics.IncBookmarkPersistFailure()
		logger.WarnLog(ctx, "Reading bookmarks failed, starting empty: %v", err)
		return nil
	}

	var records []domain.Employee
	if err := json.Unmarshal(data, &records); err != nil {
		metrics.IncBookmarkPersistFailure()
		logger.WarnLog(ctx, "Stored bookmarks are corrupt, starting empty: %v", err)
		return nil
	}
	return records
}

// Add stores a snapshot of e. It reports false when e was already bookmarked.
func (s *BookmarkStore) Add(ctx context.Context, e domain.Employee) bool {
	s.mu.Lock()
	if _, ok := s.records[e.ID]; ok {
		s.mu.Unlock()
		return false
	}
	s.records[e.ID] = e
	s.order = append(s.order, e.ID)
	if !s.loaded {
		s.earlyChanges = true
		delete(s.earlyRemoved, e.ID)
	}
	s.mu.Unlock()

	s.persist(ctx)
	return true
}

// Remove drops the bookmark for id. It reports false when there was none in
// memory. Before Load the removal is also remembered so the persisted copy is
// dropped when it is loaded.
func (s *BookmarkStore) Remove(ctx context.Context, id int) bool {
	s.mu.Lock()
	if !s.loaded {
		s.earlyChanges = true
		s.earlyRemoved[id] = struct{}{}
	}
	if _, ok := s.records[id]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.records, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.persist(ctx)
	return true
}

func (s *BookmarkStore) IsBookmarked(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok
}

// List returns the bookmarked snapshots. Callers must not rely on the order.
func (s *BookmarkStore) List() []domain.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

func (s *BookmarkStore) listLocked() []domain.Employee {
	out := make([]domain.Employee, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

func (s *BookmarkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Search fuzzy-matches query against name, email and department of every
// bookmark. A blank query returns the full list.
func (s *BookmarkStore) Search(query string) []domain.Employee {
	query = strings.TrimSpace(query)
	all := s.List()
	if query == "" {
		return all
	}

	out := make([]domain.Employee, 0, len(all))
	for _, e := range all {
		targets := []string{e.FullName(), e.Email, e.Company.Department}
		for _, t := range targets {
			if fuzzy.MatchNormalizedFold(query, t) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// persist writes the current set. Nothing is written before Load completes, so
// an early mutation cannot clobber the stored set. Failures are logged and
// absorbed; memory stays authoritative.
func (s *BookmarkStore) persist(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	if !s.loaded {
		s.mu.RUnlock()
		return
	}
	data, err := json.Marshal(s.listLocked())
	s.mu.RUnlock()
	if err != nil {
		metrics.IncBookmarkPersistFailure()
		logger.ErrorLog(ctx, "Encoding bookmarks failed", err)
		return
	}

	if err := s.blobs.Set(ctx, s.key, data); err != nil {
		metrics.IncBookmarkPersistFailure()
		logger.ErrorLog(ctx, "Persisting bookmarks failed", err)
	}
}
