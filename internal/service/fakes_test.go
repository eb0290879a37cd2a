package service

import (
	"context"
	"sync"

	"github.com/kingtan/api-users/internal/model"
	"github.com/kingtan/api-users/internal/repository"
)

// memStore is an in-memory stand-in for the repositories, honoring the same
// sentinel error contract and uniqueness rules as the MySQL implementation.
type memStore struct {
	mu          sync.Mutex
	users       map[int64]*model.User
	roles       map[string]model.Role
	tokens      map[string]*model.PasswordResetToken
	nextUserID  int64
	nextTokenID int64
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[int64]*model.User),
		roles: map[string]model.Role{
			"ROLE_USER":  {ID: 1, Name: "ROLE_USER"},
			"ROLE_ADMIN": {ID: 2, Name: "ROLE_ADMIN"},
		},
		tokens: make(map[string]*model.PasswordResetToken),
	}
}

func (m *memStore) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	m.nextUserID++
	user.ID = m.nextUserID
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memStore) List(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, nil
}

func (m *memStore) Update(_ context.Context, user *model.User, replaceRoles bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	for id, u := range m.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	existing.Username = user.Username
	existing.Email = user.Email
	if replaceRoles {
		existing.Roles = append([]model.Role(nil), user.Roles...)
	}
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (m *memStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (m *memStore) GetByName(_ context.Context, name string) (*model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.roles[name]
	if !ok {
		return nil, repository.ErrRoleNotFound
	}
	return &role, nil
}

func (m *memStore) CreateToken(ctx context.Context, token *model.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTokenID++
	token.ID = m.nextTokenID
	clone := *token
	m.tokens[token.Token] = &clone
	return nil
}

func (m *memStore) GetByToken(_ context.Context, token string) (*model.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.tokens[token]
	if !ok {
		return nil, repository.ErrResetTokenNotFound
	}
	clone := *row
	return &clone, nil
}

func (m *memStore) Consume(_ context.Context, tokenID, userID int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, row := range m.tokens {
		if row.ID == tokenID {
			user, ok := m.users[userID]
			if !ok {
				return repository.ErrUserNotFound
			}
			user.PasswordHash = passwordHash
			delete(m.tokens, key)
			return nil
		}
	}
	return repository.ErrResetTokenNotFound
}

// tokenStore adapts memStore to the ResetTokenStore interface, whose Create
// would otherwise collide with UserStore's.
type tokenStore struct{ *memStore }

func (t tokenStore) Create(ctx context.Context, token *model.PasswordResetToken) error {
	return t.memStore.CreateToken(ctx, token)
}

// fakeMailer records sent mail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}
