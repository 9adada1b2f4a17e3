package service

import (
	"context"
	"errors"
	"time"

	"user-service/internal/domain"
	"user-service/internal/repository"
)

// UserService exposes CRUD operations over users as UserDTO projections.
// Lookups report a missing user through the boolean result, never through
// the error; errors are storage failures.
type UserService interface {
	GetAllUsers(ctx context.Context) ([]domain.UserDTO, error)
	GetUserByID(ctx context.Context, id int64) (domain.UserDTO, bool, error)
	GetUserByUsername(ctx context.Context, username string) (domain.UserDTO, bool, error)
	CreateUser(ctx context.Context, dto domain.UserDTO) (domain.UserDTO, error)
	UpdateUser(ctx context.Context, id int64, dto domain.UserDTO) (domain.UserDTO, bool, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
}

type userService struct {
	users repository.UserRepository
	now   func() time.Time
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *userService) GetAllUsers(ctx context.Context) ([]domain.UserDTO, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]domain.UserDTO, len(users))
	for i := range users {
		dtos[i] = toDTO(&users[i])
	}
	return dtos, nil
}

func (s *userService) GetUserByID(ctx context.Context, id int64) (domain.UserDTO, bool, error) {
	return s.lookup(s.users.FindByID(ctx, id))
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (domain.UserDTO, bool, error) {
	return s.lookup(s.users.FindByUsername(ctx, username))
}

func (s *userService) CreateUser(ctx context.Context, dto domain.UserDTO) (domain.UserDTO, error) {
	now := s.now()
	user := &domain.User{
		Username:  dto.Username,
		Email:     dto.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.users.Insert(ctx, user); err != nil {
		return domain.UserDTO{}, err
	}
	return toDTO(user), nil
}

func (s *userService) UpdateUser(ctx context.Context, id int64, dto domain.UserDTO) (domain.UserDTO, bool, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.UserDTO{}, false, nil
		}
		return domain.UserDTO{}, false, err
	}

	user.Username = dto.Username
	user.Email = dto.Email
	user.UpdatedAt = s.now()

	affected, err := s.users.Update(ctx, user)
	if err != nil {
		return domain.UserDTO{}, false, err
	}
	// row vanished between the read and the write
	if affected == 0 {
		return domain.UserDTO{}, false, nil
	}
	return toDTO(user), true, nil
}

func (s *userService) DeleteUser(ctx context.Context, id int64) (bool, error) {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}

	affected, err := s.users.DeleteByID(ctx, id)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *userService) lookup(user *domain.User, err error) (domain.UserDTO, bool, error) {
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.UserDTO{}, false, nil
		}
		return domain.UserDTO{}, false, err
	}
	return toDTO(user), true, nil
}

func toDTO(user *domain.User) domain.UserDTO {
	id := user.ID
	return domain.UserDTO{
		ID:       &id,
		Username: user.Username,
		Email:    user.Email,
	}
}
