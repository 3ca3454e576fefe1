package store

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemStore is a mutex-guarded in-memory Store, used by tests and as a
// fallback when no redis URL is configured. Expiry is checked lazily on
// read against an injectable clock.
type MemStore struct {
	mu sync.Mutex

	strikes   map[string]entry
	dedup     map[string]time.Time // expiry instants
	strict    map[int64]bool
	whitelist map[int64]map[int64]struct{}
	blacklist map[int64]map[int64]struct{}

	// Now returns the current time; tests override it to simulate TTL
	// windows elapsing.
	Now func() time.Time
}

type entry struct {
	count     int
	expiresAt time.Time
}

// NewMemStore returns an empty in-memory store using the wall clock.
func NewMemStore() *MemStore {
	return &MemStore{
		strikes:   make(map[string]entry),
		dedup:     make(map[string]time.Time),
		strict:    make(map[int64]bool),
		whitelist: make(map[int64]map[int64]struct{}),
		blacklist: make(map[int64]map[int64]struct{}),
		Now:       time.Now,
	}
}

func (s *MemStore) GetStrikes(_ context.Context, chatID, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strikeKey(chatID, userID)
	e, ok := s.strikes[key]
	if !ok {
		return 0, nil
	}
	if s.Now().After(e.expiresAt) {
		delete(s.strikes, key)
		return 0, nil
	}
	return e.count, nil
}

func (s *MemStore) IncrementStrikes(_ context.Context, chatID, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strikeKey(chatID, userID)
	now := s.Now()

	e, ok := s.strikes[key]
	if !ok || now.After(e.expiresAt) {
		e = entry{}
	}
	e.count++
	e.expiresAt = now.Add(StrikeTTL) // every increment resets the window
	s.strikes[key] = e

	return e.count, nil
}

func (s *MemStore) ResetStrikes(_ context.Context, chatID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.strikes, strikeKey(chatID, userID))
	return nil
}

func (s *MemStore) IsDuplicate(_ context.Context, chatID int64, msg string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dedupKey(chatID, hashContent(msg))
	expiry, ok := s.dedup[key]
	if !ok {
		return false, nil
	}
	if s.Now().After(expiry) {
		delete(s.dedup, key)
		return false, nil
	}
	return true, nil
}

func (s *MemStore) MarkProcessed(_ context.Context, chatID int64, msg string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dedupKey(chatID, hashContent(msg))
	now := s.Now()

	if expiry, ok := s.dedup[key]; ok && now.Before(expiry) {
		return false, nil
	}
	s.dedup[key] = now.Add(DedupTTL)
	return true, nil
}

func (s *MemStore) IsStrictMode(_ context.Context, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.strict[chatID], nil
}

func (s *MemStore) ToggleStrictMode(_ context.Context, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.strict[chatID] = !s.strict[chatID]
	return s.strict[chatID], nil
}

func (s *MemStore) IsWhitelisted(_ context.Context, chatID, userID int64) (bool, error) {
	return s.isMember(s.whitelist, chatID, userID), nil
}

func (s *MemStore) AddWhitelist(_ context.Context, chatID, userID int64) error {
	s.addMember(s.whitelist, chatID, userID)
	return nil
}

func (s *MemStore) RemoveWhitelist(_ context.Context, chatID, userID int64) error {
	s.removeMember(s.whitelist, chatID, userID)
	return nil
}

func (s *MemStore) ListWhitelist(_ context.Context, chatID int64) ([]int64, error) {
	return s.listMembers(s.whitelist, chatID), nil
}

func (s *MemStore) IsBlacklisted(_ context.Context, chatID, userID int64) (bool, error) {
	return s.isMember(s.blacklist, chatID, userID), nil
}

func (s *MemStore) AddBlacklist(_ context.Context, chatID, userID int64) error {
	s.addMember(s.blacklist, chatID, userID)
	return nil
}

func (s *MemStore) RemoveBlacklist(_ context.Context, chatID, userID int64) error {
	s.removeMember(s.blacklist, chatID, userID)
	return nil
}

func (s *MemStore) ListBlacklist(_ context.Context, chatID int64) ([]int64, error) {
	return s.listMembers(s.blacklist, chatID), nil
}

func (s *MemStore) isMember(sets map[int64]map[int64]struct{}, chatID, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := sets[chatID][userID]
	return ok
}

func (s *MemStore) addMember(sets map[int64]map[int64]struct{}, chatID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sets[chatID] == nil {
		sets[chatID] = make(map[int64]struct{})
	}
	sets[chatID][userID] = struct{}{}
}

func (s *MemStore) removeMember(sets map[int64]map[int64]struct{}, chatID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(sets[chatID], userID)
}

func (s *MemStore) listMembers(sets map[int64]map[int64]struct{}, chatID int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(sets[chatID]))
	for id := range sets[chatID] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *MemStore) Healthy(context.Context) error { return nil }

func (s *MemStore) Close() error { return nil }
