package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"user-service/internal/domain"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestService(repo *MockUserRepository) *userService {
	svc := NewUserService(repo).(*userService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func storedUser() *domain.User {
	created := fixedNow.Add(-24 * time.Hour)
	return &domain.User{
		ID:        1,
		Username:  "testuser",
		Email:     "test@example.com",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestUserService_GetAllUsers(t *testing.T) {
	t.Run("projects every user in repository order", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)

		second := storedUser()
		second.ID = 2
		second.Username = "other"
		repo.On("FindAll", mock.Anything).Return([]domain.User{*second, *storedUser()}, nil).Once()

		users, err := svc.GetAllUsers(context.Background())

		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, int64(2), *users[0].ID)
		assert.Equal(t, "other", users[0].Username)
		assert.Equal(t, int64(1), *users[1].ID)
		repo.AssertExpectations(t)
	})

	t.Run("empty store yields empty slice", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		repo.On("FindAll", mock.Anything).Return([]domain.User{}, nil).Once()

		users, err := svc.GetAllUsers(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		dbErr := errors.New("database error")
		repo.On("FindAll", mock.Anything).Return(nil, dbErr).Once()

		users, err := svc.GetAllUsers(context.Background())

		assert.Nil(t, users)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestUserService_GetUserByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		repo.On("FindByID", mock.Anything, int64(1)).Return(storedUser(), nil).Once()

		user, found, err := svc.GetUserByID(context.Background(), 1)

		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, int64(1), *user.ID)
		assert.Equal(t, "testuser", user.Username)
		assert.Equal(t, "test@example.com", user.Email)
		repo.AssertExpectations(t)
	})

	t.Run("missing user is not an error", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		repo.On("FindByID", mock.Anything, int64(999)).Return(nil, domain.ErrUserNotFound).Once()

		user, found, err := svc.GetUserByID(context.Background(), 999)

		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, user.ID)
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		dbErr := errors.New("timeout")
		repo.On("FindByID", mock.Anything, int64(1)).Return(nil, dbErr).Once()

		_, found, err := svc.GetUserByID(context.Background(), 1)

		assert.False(t, found)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestUserService_GetUserByUsername(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		repo.On("FindByUsername", mock.Anything, "testuser").Return(storedUser(), nil).Once()

		user, found, err := svc.GetUserByUsername(context.Background(), "testuser")

		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, int64(1), *user.ID)
	})

	t.Run("missing user is not an error", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		repo.On("FindByUsername", mock.Anything, "nonexistent").Return(nil, domain.ErrUserNotFound).Once()

		_, found, err := svc.GetUserByUsername(context.Background(), "nonexistent")

		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestUserService_CreateUser(t *testing.T) {
	t.Run("inserts with fresh timestamps and ignores the supplied id", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)

		supplied := int64(42)
		repo.On("Insert", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.ID == 0 &&
				u.Username == "newuser" &&
				u.Email == "newuser@example.com" &&
				u.CreatedAt.Equal(fixedNow) &&
				u.UpdatedAt.Equal(fixedNow)
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 7
		}).Return(int64(1), nil).Once()

		user, err := svc.CreateUser(context.Background(), domain.UserDTO{
			ID:       &supplied,
			Username: "newuser",
			Email:    "newuser@example.com",
		})

		require.NoError(t, err)
		require.NotNil(t, user.ID)
		assert.Equal(t, int64(7), *user.ID)
		assert.Equal(t, "newuser", user.Username)
		assert.Equal(t, "newuser@example.com", user.Email)
		repo.AssertExpectations(t)
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		dbErr := errors.Join(domain.ErrUsernameTaken, errors.New("constraint"))
		repo.On("Insert", mock.Anything, mock.Anything).Return(int64(0), dbErr).Once()

		user, err := svc.CreateUser(context.Background(), domain.UserDTO{Username: "dup", Email: "d@x.com"})

		assert.ErrorIs(t, err, domain.ErrUsernameTaken)
		assert.Nil(t, user.ID)
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	t.Run("overwrites username and email and refreshes updatedAt", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		existing := storedUser()
		createdAt := existing.CreatedAt

		repo.On("FindByID", mock.Anything, int64(1)).Return(existing, nil).Once()
		repo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.ID == 1 &&
				u.Username == "u2" &&
				u.Email == "e2" &&
				u.CreatedAt.Equal(createdAt) &&
				u.UpdatedAt.Equal(fixedNow)
		})).Return(int64(1), nil).Once()

		user, found, err := svc.UpdateUser(context.Background(), 1, domain.UserDTO{Username: "u2", Email: "e2"})

		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, int64(1), *user.ID)
		assert.Equal(t, "u2", user.Username)
		assert.Equal(t, "e2", user.Email)
		repo.AssertExpectations(t)
	})

	t.Run("unknown id performs no write", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		repo.On("FindByID", mock.Anything, int64(999)).Return(nil, domain.ErrUserNotFound).Once()

		_, found, err := svc.UpdateUser(context.Background(), 999, domain.UserDTO{Username: "u2", Email: "e2"})

		require.NoError(t, err)
		assert.False(t, found)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("row deleted between read and write", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		repo.On("FindByID", mock.Anything, int64(1)).Return(storedUser(), nil).Once()
		repo.On("Update", mock.Anything, mock.Anything).Return(int64(0), nil).Once()

		_, found, err := svc.UpdateUser(context.Background(), 1, domain.UserDTO{Username: "u2", Email: "e2"})

		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("write failure propagates", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		dbErr := errors.New("database error")
		repo.On("FindByID", mock.Anything, int64(1)).Return(storedUser(), nil).Once()
		repo.On("Update", mock.Anything, mock.Anything).Return(int64(0), dbErr).Once()

		_, found, err := svc.UpdateUser(context.Background(), 1, domain.UserDTO{Username: "u2", Email: "e2"})

		assert.False(t, found)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Run("existing user is deleted", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		repo.On("FindByID", mock.Anything, int64(1)).Return(storedUser(), nil).Once()
		repo.On("DeleteByID", mock.Anything, int64(1)).Return(int64(1), nil).Once()

		deleted, err := svc.DeleteUser(context.Background(), 1)

		require.NoError(t, err)
		assert.True(t, deleted)
		repo.AssertExpectations(t)
	})

	t.Run("unknown id issues no delete", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		repo.On("FindByID", mock.Anything, int64(999)).Return(nil, domain.ErrUserNotFound).Once()

		deleted, err := svc.DeleteUser(context.Background(), 999)

		require.NoError(t, err)
		assert.False(t, deleted)
		repo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
	})

	t.Run("concurrent delete reports false", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		repo.On("FindByID", mock.Anything, int64(1)).Return(storedUser(), nil).Once()
		repo.On("DeleteByID", mock.Anything, int64(1)).Return(int64(0), nil).Once()

		deleted, err := svc.DeleteUser(context.Background(), 1)

		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("lookup failure propagates", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestService(repo)
		dbErr := errors.New("connection refused")
		repo.On("FindByID", mock.Anything, int64(1)).Return(nil, dbErr).Once()

		deleted, err := svc.DeleteUser(context.Background(), 1)

		assert.False(t, deleted)
		assert.ErrorIs(t, err, dbErr)
	})
}
