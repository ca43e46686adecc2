package sessionrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-session-server/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	records map[string]sessions.Record // principal ID to record
	lock    sync.Mutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		records: make(map[string]sessions.Record),
	}
}

func (sr *FakeSessionRepo) Get(_ context.Context, principalID string) (*sessions.Record, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	r, ok := sr.records[principalID]
	if !ok {
		return nil, sessions.ErrNotFound
	}
	return &r, nil
}

func (sr *FakeSessionRepo) Put(_ context.Context, record *sessions.Record) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.records[record.PrincipalID] = *record
	return nil
}

func (sr *FakeSessionRepo) Swap(_ context.Context, principalID, expectedHash string, next *sessions.Record) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	current, ok := sr.records[principalID]
	if !ok {
		return sessions.ErrNotFound
	}
	if current.TokenHash != expectedHash {
		return sessions.ErrStale
	}
	sr.records[principalID] = *next
	return nil
}

func (sr *FakeSessionRepo) Delete(_ context.Context, principalID, expectedHash string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	current, ok := sr.records[principalID]
	if !ok {
		return sessions.ErrNotFound
	}
	if current.TokenHash != expectedHash {
		return sessions.ErrStale
	}
	delete(sr.records, principalID)
	return nil
}

// Len returns the number of live records
func (sr *FakeSessionRepo) Len() int {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	return len(sr.records)
}
