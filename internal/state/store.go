// Package state keeps per-chat conversation state for the lifetime of the process.
package state

import (
	"sync"

	"ledgerbot/internal/domain"
)

type slot struct {
	mu    sync.Mutex
	state *domain.ChatState
}

// Store maps chat ids to their conversation state. Events for one chat are
// serialized through Acquire; different chats proceed independently.
type Store struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{slots: make(map[int64]*slot)}
}

func (s *Store) slot(chatID int64) *slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[chatID]
	if !ok {
		sl = &slot{state: domain.NewChatState(chatID)}
		s.slots[chatID] = sl
	}
	return sl
}

// Acquire locks the chat's slot and returns its state, creating it on first use.
// The caller owns the state until it calls release.
func (s *Store) Acquire(chatID int64) (st *domain.ChatState, release func()) {
	sl := s.slot(chatID)
	sl.mu.Lock()
	var once sync.Once
	return sl.state, func() { once.Do(sl.mu.Unlock) }
}

// Peek returns a copy of the chat's state without taking ownership of it.
func (s *Store) Peek(chatID int64) (domain.ChatState, bool) {
	s.mu.Lock()
	sl, ok := s.slots[chatID]
	s.mu.Unlock()
	if !ok {
		return domain.ChatState{}, false
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return *sl.state, true
}

// Len returns the number of chats seen so far.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
