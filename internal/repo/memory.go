package repo

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/identity-service/internal/domain"
)

// Memory is an in-process UserStore with the same semantics as Mongo.
// Used by tests and broker-less local runs.
type Memory struct {
	mu    sync.Mutex
	users map[string]*domain.User // key: hex id
}

func NewMemory() *Memory {
	return &Memory{users: make(map[string]*domain.User)}
}

func clone(u *domain.User) *domain.User {
	cp := *u
	return &cp
}

func (m *Memory) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (m *Memory) FindByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return clone(u), nil
	}
	return nil, nil
}

func (m *Memory) FindByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ExternalID != "" && u.ExternalID == externalID {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (m *Memory) Create(ctx context.Context, u *domain.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.users {
		if ex.Email == u.Email {
			return "", ErrDuplicateEmail
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	m.users[u.ID.Hex()] = clone(u)
	return u.ID.Hex(), nil
}

func (m *Memory) Update(ctx context.Context, id string, upd UserUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	if upd.ExternalID != nil {
		u.ExternalID = *upd.ExternalID
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.AuthType != nil {
		u.AuthType = *upd.AuthType
	}
	if upd.SessionToken != nil {
		u.SessionToken = *upd.SessionToken
	}
	if upd.IsLoggedIn != nil {
		u.IsLoggedIn = *upd.IsLoggedIn
	}
	return nil
}
