package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/listen-stream/music-svc/internal/access"
	"github.com/listen-stream/music-svc/internal/domain"
)

func TestUserService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	hasher := testHasher()
	svc := NewUserService(mockRepo, hasher, testLogger())

	mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrUserNotFound)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "alice",
		Email:    "  Alice@Example.com ",
		Password: "hunter2hunter2",
		Gender:   domain.GenderFemale,
		Month:    "04",
		Date:     "12",
		Year:     "1996",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.IsAdmin)
	assert.Empty(t, user.Playlists)
	assert.Empty(t, user.LikedSongs)

	// 明文密码不会被保存
	assert.NotEqual(t, "hunter2hunter2", user.Password)
	ok, err := hasher.Verify("hunter2hunter2", user.Password)
	require.NoError(t, err)
	assert.True(t, ok)

	mockRepo.AssertExpectations(t)
}

func TestUserService_RegisterDuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo, testHasher(), testLogger())

	mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{ID: "user-alice"}, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
		Gender:   domain.GenderFemale,
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_RegisterRaceLostOnUniqueIndex(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo, testHasher(), testLogger())

	mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrUserNotFound)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrEmailTaken)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
		Gender:   domain.GenderMale,
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserService_RegisterInvalidGender(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo, testHasher(), testLogger())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
		Gender:   "robot",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidGender)
	mockRepo.AssertExpectations(t)
}

func TestUserService_CreateAdmin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo, testHasher(), testLogger())

	mockRepo.On("GetByEmail", mock.Anything, "root@example.com").Return(nil, domain.ErrUserNotFound)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.IsAdmin
	})).Return(nil)

	user, err := svc.CreateAdmin(context.Background(), RegisterInput{
		Name:     "root",
		Email:    "root@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	mockRepo.AssertExpectations(t)
}

func TestUserService_List(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo, testHasher(), testLogger())

	users := []*domain.User{{ID: "user-alice"}, {ID: "user-bob"}}
	mockRepo.On("List", mock.Anything).Return(users, nil)

	got, err := svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.List(context.Background(), alice)
	assert.ErrorIs(t, err, access.ErrForbidden)
	mockRepo.AssertNumberOfCalls(t, "List", 1)
}

func TestUserService_Get(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo, testHasher(), testLogger())

	mockRepo.On("GetByID", mock.Anything, "user-bob").Return(&domain.User{ID: "user-bob", Name: "bob"}, nil)
	mockRepo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrUserNotFound)

	user, err := svc.Get(context.Background(), alice, "user-bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Name)

	_, err = svc.Get(context.Background(), alice, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("self update", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo, testHasher(), testLogger())

		mockRepo.On("GetByID", mock.Anything, "user-alice").
			Return(&domain.User{ID: "user-alice", Name: "alice", Gender: domain.GenderFemale, Year: "1996"}, nil)
		mockRepo.On("UpdateProfile", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := svc.UpdateProfile(context.Background(), alice, "user-alice", domain.Profile{Name: "Alice B"})
		require.NoError(t, err)
		assert.Equal(t, "Alice B", user.Name)
		assert.Equal(t, "1996", user.Year)
		mockRepo.AssertExpectations(t)
	})

	t.Run("another user is allowed", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo, testHasher(), testLogger())

		mockRepo.On("GetByID", mock.Anything, "user-alice").Return(&domain.User{ID: "user-alice", Name: "alice"}, nil)
		mockRepo.On("UpdateProfile", mock.Anything, mock.Anything).Return(nil)

		user, err := svc.UpdateProfile(context.Background(), bob, "user-alice", domain.Profile{Name: "renamed"})
		require.NoError(t, err)
		assert.Equal(t, "renamed", user.Name)
	})

	t.Run("missing user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo, testHasher(), testLogger())

		mockRepo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrUserNotFound)

		_, err := svc.UpdateProfile(context.Background(), alice, "missing", domain.Profile{Name: "x"})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		mockRepo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
	})
}

func TestUserService_Delete(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo, testHasher(), testLogger())

	mockRepo.On("Delete", mock.Anything, "user-bob").Return(nil)

	err := svc.Delete(context.Background(), alice, "user-bob")
	assert.ErrorIs(t, err, access.ErrForbidden)

	err = svc.Delete(context.Background(), admin, "user-bob")
	assert.NoError(t, err)
	mockRepo.AssertNumberOfCalls(t, "Delete", 1)
}
