package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/locvowork/performpulse/internal/domain"
	"github.com/locvowork/performpulse/internal/logger"
)

type browseSession struct {
	controller *PaginationController
	lastSeen   time.Time
}

// BrowseSessions keeps one PaginationController per client session.
type BrowseSessions struct {
	directory domain.Directory
	pageSize  int
	debounce  time.Duration
	ttl       time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*browseSession
}

func NewBrowseSessions(directory domain.Directory, pageSize int, debounce, ttl time.Duration) *BrowseSessions {
	return &BrowseSessions{
		directory: directory,
		pageSize:  pageSize,
		debounce:  debounce,
		ttl:       ttl,
		now:       time.Now,
		sessions:  make(map[string]*browseSession),
	}
}

// Create opens a session and fetches its first page. The session is kept even
// when that fetch fails so the client can retry with SetQuery.
func (bs *BrowseSessions) Create(ctx context.Context, q BrowseQuery) (string, *PaginationController, error) {
	ctrl := NewPaginationController(bs.directory, bs.pageSize, bs.debounce)
	id := uuid.NewString()

	bs.mu.Lock()
	bs.evictLocked()
	bs.sessions[id] = &browseSession{controller: ctrl, lastSeen: bs.now()}
	bs.mu.Unlock()

	logger.DebugLog(ctx, "Opened browse session %s", id)
	return id, ctrl, ctrl.SetQuery(ctx, q)
}

// Get returns the session controller and refreshes its idle timer.
func (bs *BrowseSessions) Get(id string) (*PaginationController, bool) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.evictLocked()

	s, ok := bs.sessions[id]
	if !ok {
		return nil, false
	}
	s.lastSeen = bs.now()
	return s.controller, true
}

// Delete closes a session. It reports false for an unknown id.
func (bs *BrowseSessions) Delete(id string) bool {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	s, ok := bs.sessions[id]
	if !ok {
		return false
	}
	s.controller.Close()
	delete(bs.sessions, id)
	return true
}

func (bs *BrowseSessions) Len() int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return len(bs.sessions)
}

func (bs *BrowseSessions) evictLocked() {
	if bs.ttl <= 0 {
		return
	}
	cutoff := bs.now().Add(-bs.ttl)
	for id, s := range bs.sessions {
		if s.lastSeen.Before(cutoff) {
			s.controller.Close()
			delete(bs.sessions, id)
		}
	}
}
