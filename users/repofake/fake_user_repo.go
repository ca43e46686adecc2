package fakeuserrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-session-server/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[string]*users.User
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
	nowFunc  func() time.Time
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		emailIds: make(map[string]string),
		nowFunc:  time.Now,
	}
}

func (ur *FakeUserRepo) FindByEmail(_ context.Context, email string, includePasswordHash bool) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[email]
	if !ok {
		return nil, users.ErrNotFound
	}
	return project(ur.users[id], includePasswordHash), nil
}

func (ur *FakeUserRepo) FindByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return project(u, false), nil
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.emailIds[user.Email]; ok {
		return nil, users.ErrEmailExists
	}

	stored := user.Clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	now := ur.nowFunc()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	ur.users[stored.ID] = stored
	ur.emailIds[stored.Email] = stored.ID
	return project(stored, false), nil
}

// Update overwrites profile fields and roles; the password hash is left untouched.
func (ur *FakeUserRepo) Update(_ context.Context, user *users.User) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	existing, ok := ur.users[user.ID]
	if !ok {
		return nil, users.ErrNotFound
	}
	if user.Email != existing.Email {
		if _, taken := ur.emailIds[user.Email]; taken {
			return nil, users.ErrEmailExists
		}
		delete(ur.emailIds, existing.Email)
		ur.emailIds[user.Email] = existing.ID
	}

	updated := user.Clone()
	updated.PasswordHash = existing.PasswordHash
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = ur.nowFunc()
	ur.users[updated.ID] = updated
	return project(updated, false), nil
}

// project returns a copy, stripping the password hash unless asked for
func project(u *users.User, includePasswordHash bool) *users.User {
	c := u.Clone()
	if !includePasswordHash {
		c.PasswordHash = ""
	}
	return c
}
