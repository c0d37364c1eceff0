package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"bcard/internal/model"
	"bcard/internal/repository"
)

// memoryUserRepo is a goroutine-safe UserRepository with the same
// compare-and-swap semantics as the SQL implementation
type memoryUserRepo struct {
	mu          sync.Mutex
	users       map[string]model.User
	suspensions int // login-state writes that imposed a new suspension
	swaps       int
	findErr     error
	// beforeSwap, if set, edits the stored row once ahead of the next
	// compare-and-swap, standing in for a concurrent writer
	beforeSwap func(u *model.User)
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]model.User{}}
}

func (m *memoryUserRepo) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == model.NormalizeEmail(user.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.Email == model.NormalizeEmail(email) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memoryUserRepo) FindAll(ctx context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func loginStatesEqual(a, b model.LoginState) bool {
	if a.FailedAttempts != b.FailedAttempts {
		return false
	}
	if a.SuspendedUntil == nil || b.SuspendedUntil == nil {
		return a.SuspendedUntil == nil && b.SuspendedUntil == nil
	}
	return a.SuspendedUntil.Equal(*b.SuspendedUntil)
}

func (m *memoryUserRepo) CompareAndSwapLoginState(ctx context.Context, id, expectedRole string, expected, next model.LoginState) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if ok && m.beforeSwap != nil {
		m.beforeSwap(&u)
		m.users[id] = u
		m.beforeSwap = nil
	}
	if !ok || u.Role != expectedRole || !loginStatesEqual(u.LoginState(), expected) {
		return false, nil
	}
	if next.SuspendedUntil != nil && (expected.SuspendedUntil == nil || !next.SuspendedUntil.Equal(*expected.SuspendedUntil)) {
		m.suspensions++
	}
	u.FailedAttempts = next.FailedAttempts
	u.SuspendedUntil = next.SuspendedUntil
	m.users[id] = u
	m.swaps++
	return true, nil
}

func (m *memoryUserRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	email := model.NormalizeEmail(user.Email)
	for id, other := range m.users {
		if id != user.ID && other.Email == email {
			return repository.ErrDuplicateEmail
		}
	}
	u.Email = email
	u.PasswordHash = user.PasswordHash
	u.Name = user.Name
	u.Phone = user.Phone
	u.Address = user.Address
	u.Image = user.Image
	u.Gender = user.Gender
	u.UpdatedAt = user.UpdatedAt
	m.users[user.ID] = u
	return nil
}

func (m *memoryUserRepo) UpdateRole(ctx context.Context, id, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	m.users[id] = u
	return nil
}

func (m *memoryUserRepo) UpdateSuspension(ctx context.Context, id string, until *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.SuspendedUntil = until
	if until != nil {
		u.FailedAttempts = 0
	}
	m.users[id] = u
	return nil
}

func (m *memoryUserRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryUserRepo) get(id string) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}
