// Package memstore is the authoritative in-memory reference implementation
// of store.Store: five interlinked indexes under one reader-writer lock.
package memstore

import (
	"context"
	"sync"

	"github.com/blockchaincommons/go-depo/internal/store"
	"github.com/blockchaincommons/go-depo/pkg/depocrypto"
)

// Store is an in-memory, single-process store.Store implementation. All
// reads take a shared lock; every mutation, including the composed
// operations (TOFU creation happens one level up in store.EnsureUserForKey,
// but the public-key swap, recovery update and account removal below each
// need every participating index to move together) takes the exclusive
// lock for the full operation.
type Store struct {
	mu sync.RWMutex

	byID       map[store.UserID]store.User
	byPubKey   map[depocrypto.PublicKey]store.UserID
	byRecovery map[string]store.UserID
	records    map[store.Receipt]store.Record
	receiptsOf map[store.UserID]map[store.Receipt]struct{}

	settings store.Settings
}

// New builds an empty Store with the given settings, which in this
// implementation are fixed at construction time: the in-memory variant
// treats settings as compile-time-ish constants rather than a persisted
// row.
func New(settings store.Settings) *Store {
	return &Store{
		byID:       make(map[store.UserID]store.User),
		byPubKey:   make(map[depocrypto.PublicKey]store.UserID),
		byRecovery: make(map[string]store.UserID),
		records:    make(map[store.Receipt]store.Record),
		receiptsOf: make(map[store.UserID]map[store.Receipt]struct{}),
		settings:   settings,
	}
}

func (s *Store) Settings(ctx context.Context) (store.Settings, error) {
	return s.settings, nil
}

func (s *Store) LookupUserByPublicKey(ctx context.Context, pk depocrypto.PublicKey) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPubKey[pk]
	if !ok {
		return nil, nil
	}

	u := s.byID[id]

	return &u, nil
}

func (s *Store) LookupUserByID(ctx context.Context, id store.UserID) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, nil
	}

	return &u, nil
}

func (s *Store) LookupUserByRecovery(ctx context.Context, recovery string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byRecovery[recovery]
	if !ok {
		return nil, nil
	}

	u := s.byID[id]

	return &u, nil
}

func (s *Store) InsertUser(ctx context.Context, u store.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[u.ID] = u
	s.byPubKey[u.PublicKey] = u.ID

	if u.Recovery != nil {
		s.byRecovery[*u.Recovery] = u.ID
	}

	if _, ok := s.receiptsOf[u.ID]; !ok {
		s.receiptsOf[u.ID] = make(map[store.Receipt]struct{})
	}

	return nil
}

func (s *Store) InsertRecord(ctx context.Context, r store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[r.Receipt]; ok {
		return nil // idempotent: identical receipt already stored.
	}

	s.records[r.Receipt] = r

	if s.receiptsOf[r.UserID] == nil {
		s.receiptsOf[r.UserID] = make(map[store.Receipt]struct{})
	}

	s.receiptsOf[r.UserID][r.Receipt] = struct{}{}

	return nil
}

func (s *Store) ReceiptsOf(ctx context.Context, id store.UserID) (map[store.Receipt]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[store.Receipt]struct{}, len(s.receiptsOf[id]))
	for r := range s.receiptsOf[id] {
		out[r] = struct{}{}
	}

	return out, nil
}

func (s *Store) RecordByReceipt(ctx context.Context, receipt store.Receipt) (*store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[receipt]
	if !ok {
		return nil, nil
	}

	return &r, nil
}

func (s *Store) DeleteRecord(ctx context.Context, receipt store.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[receipt]
	if !ok {
		return nil // idempotent
	}

	delete(s.records, receipt)
	delete(s.receiptsOf[r.UserID], receipt)

	return nil
}

func (s *Store) SetUserPublicKey(ctx context.Context, oldPK, newPK depocrypto.PublicKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byPubKey[oldPK]
	if !ok {
		return nil
	}

	u := s.byID[id]
	u.PublicKey = newPK
	s.byID[id] = u

	delete(s.byPubKey, oldPK)
	s.byPubKey[newPK] = id

	return nil
}

func (s *Store) SetUserRecovery(ctx context.Context, id store.UserID, recovery *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil
	}

	if u.Recovery != nil && recovery != nil && *u.Recovery == *recovery {
		return nil // idempotent: same value already set.
	}

	if u.Recovery != nil {
		delete(s.byRecovery, *u.Recovery)
	}

	u.Recovery = recovery
	s.byID[id] = u

	if recovery != nil {
		s.byRecovery[*recovery] = id
	}

	return nil
}

func (s *Store) RemoveUser(ctx context.Context, id store.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil // idempotent
	}

	delete(s.byID, id)
	delete(s.byPubKey, u.PublicKey)

	if u.Recovery != nil {
		delete(s.byRecovery, *u.Recovery)
	}

	for r := range s.receiptsOf[id] {
		delete(s.records, r)
	}

	delete(s.receiptsOf, id)

	return nil
}

var _ store.Store = (*Store)(nil)
