package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/kingtan/api-users/internal/crypto"
	"github.com/kingtan/api-users/internal/model"
	"github.com/kingtan/api-users/internal/repository"
)

// DefaultRole is assigned to every newly registered user.
const DefaultRole = "ROLE_USER"

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrEmailInvalid     = errors.New("email is invalid")
	ErrUsernameTaken    = errors.New("username is already taken")
	ErrEmailTaken       = errors.New("email is already in use")
	ErrRoleNotFound     = errors.New("role not found")
)

// UserService implements registration and CRUD over user records.
type UserService struct {
	users UserStore
	roles RoleStore
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, roles RoleStore) *UserService {
	return &UserService{users: users, roles: roles}
}

// Register creates a new enabled user with the default role. Uniqueness is
// checked up front for clean errors; the store's unique indexes remain the
// final guard against concurrent registrations.
func (s *UserService) Register(ctx context.Context, req model.SignupRequest) (model.UserDTO, error) {
	if err := validateCredentials(req.Username, req.Email); err != nil {
		return model.UserDTO{}, err
	}
	if req.Password == "" {
		return model.UserDTO{}, ErrPasswordRequired
	}

	if taken, err := s.users.ExistsByUsername(ctx, req.Username); err != nil {
		return model.UserDTO{}, err
	} else if taken {
		return model.UserDTO{}, ErrUsernameTaken
	}
	if taken, err := s.users.ExistsByEmail(ctx, req.Email); err != nil {
		return model.UserDTO{}, err
	} else if taken {
		return model.UserDTO{}, ErrEmailTaken
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.UserDTO{}, err
	}

	role, err := s.roles.GetByName(ctx, DefaultRole)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return model.UserDTO{}, fmt.Errorf("%w: %s", ErrRoleNotFound, DefaultRole)
		}
		return model.UserDTO{}, err
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Enabled:      true,
		Roles:        []model.Role{*role},
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.UserDTO{}, mapDuplicate(err)
	}

	return model.NewUserDTO(user), nil
}

// GetByUsername returns the named user.
func (s *UserService) GetByUsername(ctx context.Context, username string) (model.UserDTO, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserDTO{}, ErrUserNotFound
		}
		return model.UserDTO{}, err
	}
	return model.NewUserDTO(user), nil
}

// GetByID returns the user with the given ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (model.UserDTO, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserDTO{}, ErrUserNotFound
		}
		return model.UserDTO{}, err
	}
	return model.NewUserDTO(user), nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]model.UserDTO, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]model.UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, model.NewUserDTO(&users[i]))
	}
	return dtos, nil
}

// Update changes username and email, and replaces the full role set when the
// request carries one. A nil role slice leaves roles untouched.
func (s *UserService) Update(ctx context.Context, id int64, dto model.UserDTO) (model.UserDTO, error) {
	if err := validateCredentials(dto.Username, dto.Email); err != nil {
		return model.UserDTO{}, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserDTO{}, ErrUserNotFound
		}
		return model.UserDTO{}, err
	}

	user.Username = dto.Username
	user.Email = dto.Email

	replaceRoles := dto.Roles != nil
	if replaceRoles {
		roles := make([]model.Role, 0, len(dto.Roles))
		for _, name := range dto.Roles {
			role, err := s.roles.GetByName(ctx, name)
			if err != nil {
				if errors.Is(err, repository.ErrRoleNotFound) {
					return model.UserDTO{}, fmt.Errorf("%w: %s", ErrRoleNotFound, name)
				}
				return model.UserDTO{}, err
			}
			roles = append(roles, *role)
		}
		user.Roles = roles
	}

	if err := s.users.Update(ctx, user, replaceRoles); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserDTO{}, ErrUserNotFound
		}
		return model.UserDTO{}, mapDuplicate(err)
	}

	return model.NewUserDTO(user), nil
}

// Delete removes the user with the given ID.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func validateCredentials(username, email string) error {
	if strings.TrimSpace(username) == "" {
		return ErrUsernameRequired
	}
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrEmailInvalid
	}
	return nil
}

func mapDuplicate(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		return ErrUsernameTaken
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrEmailTaken
	default:
		return err
	}
}
