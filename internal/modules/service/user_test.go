package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/pkg/randname"
	"github.com/emonotate/emonotate/internal/pkg/utils/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestUserService(r *MockUserRepo) UserService {
	return NewUserService(r, "pepper", NewSentinelEmail("emonotate", "gmail.com"), zap.NewNop())
}

func TestUserService_CreateGuestUser(t *testing.T) {
	ctx := context.Background()
	guest := &model.Group{ID: 1, Name: model.GroupGuest}

	t.Run("persists a guest with placeholder email", func(t *testing.T) {
		r := &MockUserRepo{}
		r.On("Create", ctx, mock.AnythingOfType("*model.EmailUser")).Run(func(args mock.Arguments) {
			args.Get(1).(*model.EmailUser).ID = 7
		}).Return(nil).Once()
		r.On("GetGroupByName", ctx, model.GroupGuest).Return(guest, nil)
		r.On("AddGroup", ctx, mock.Anything, guest).Return(nil)

		u, err := newTestUserService(r).CreateGuestUser(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, uint(7), u.ID)
		assert.True(t, randname.IsValid(u.Username, randname.UsernameLen))
		assert.Equal(t, "emonotate+"+u.Username+"@gmail.com", u.Email)
		assert.False(t, secrets.IsUsable(u.PasswordHash))
		assert.True(t, u.IsActive)
		assert.Equal(t, []string{model.GroupGuest}, u.GroupNames())
		r.AssertExpectations(t)
	})

	t.Run("retries on username conflict", func(t *testing.T) {
		r := &MockUserRepo{}
		var tried []string
		r.On("Create", ctx, mock.AnythingOfType("*model.EmailUser")).Run(func(args mock.Arguments) {
			tried = append(tried, args.Get(1).(*model.EmailUser).Username)
		}).Return(gorm.ErrDuplicatedKey).Twice()
		r.On("Create", ctx, mock.AnythingOfType("*model.EmailUser")).Return(nil).Once()
		r.On("GetGroupByName", ctx, model.GroupGuest).Return(guest, nil)
		r.On("AddGroup", ctx, mock.Anything, guest).Return(nil)

		u, err := newTestUserService(r).CreateGuestUser(ctx, false)
		require.NoError(t, err)
		assert.Len(t, tried, 2)
		// the placeholder email follows the final username
		assert.Equal(t, "emonotate+"+u.Username+"@gmail.com", u.Email)
		r.AssertNumberOfCalls(t, "Create", 3)
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		r := &MockUserRepo{}
		r.On("Create", ctx, mock.Anything).Return(gorm.ErrDuplicatedKey)

		_, err := newTestUserService(r).CreateGuestUser(ctx, false)
		assert.ErrorIs(t, err, ErrNameSpaceExhausted)
		r.AssertNumberOfCalls(t, "Create", maxNameAttempts)
	})

	t.Run("test mode does not persist", func(t *testing.T) {
		r := &MockUserRepo{}
		r.On("ExistsUsername", ctx, mock.Anything).Return(false, nil)

		u, err := newTestUserService(r).CreateGuestUser(ctx, true)
		require.NoError(t, err)
		assert.Zero(t, u.ID)
		assert.Equal(t, []string{model.GroupGuest}, u.GroupNames())
		r.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUserService_CreateUniqueUser(t *testing.T) {
	ctx := context.Background()
	general := &model.Group{ID: 2, Name: model.GroupGeneral}

	t.Run("supplied username is used", func(t *testing.T) {
		r := &MockUserRepo{}
		r.On("Create", ctx, mock.MatchedBy(func(u *model.EmailUser) bool { return u.Username == "alice" })).Return(nil)
		r.On("GetGroupByName", ctx, model.GroupGeneral).Return(general, nil)
		r.On("AddGroup", ctx, mock.Anything, general).Return(nil)

		u, err := newTestUserService(r).CreateUniqueUser(ctx, "alice@example.com", false, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
		assert.Equal(t, "alice@example.com", u.Email)
	})

	t.Run("colliding supplied username falls back to random", func(t *testing.T) {
		r := &MockUserRepo{}
		r.On("Create", ctx, mock.MatchedBy(func(u *model.EmailUser) bool { return u.Username == "alice" })).Return(gorm.ErrDuplicatedKey)
		r.On("Create", ctx, mock.MatchedBy(func(u *model.EmailUser) bool { return u.Username != "alice" })).Return(nil)
		r.On("GetGroupByName", ctx, model.GroupGeneral).Return(general, nil)
		r.On("AddGroup", ctx, mock.Anything, general).Return(nil)

		u, err := newTestUserService(r).CreateUniqueUser(ctx, "", false, "alice")
		require.NoError(t, err)
		assert.NotEqual(t, "alice", u.Username)
		assert.True(t, randname.IsValid(u.Username, randname.UsernameLen))
	})

	t.Run("test mode checks availability only", func(t *testing.T) {
		r := &MockUserRepo{}
		r.On("ExistsUsername", ctx, "alice").Return(true, nil).Once()
		r.On("ExistsUsername", ctx, mock.Anything).Return(false, nil)

		u, err := newTestUserService(r).CreateUniqueUser(ctx, "", true, "alice")
		require.NoError(t, err)
		assert.NotEqual(t, "alice", u.Username)
		r.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("group lookup failure is swallowed", func(t *testing.T) {
		r := &MockUserRepo{}
		r.On("Create", ctx, mock.Anything).Return(nil)
		r.On("GetGroupByName", ctx, model.GroupGeneral).Return(nil, gorm.ErrRecordNotFound)

		u, err := newTestUserService(r).CreateUniqueUser(ctx, "bob@example.com", false, "")
		require.NoError(t, err)
		assert.Empty(t, u.Groups)
		r.AssertNotCalled(t, "AddGroup", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("repository error is returned", func(t *testing.T) {
		r := &MockUserRepo{}
		r.On("Create", ctx, mock.Anything).Return(errors.New("database error"))

		_, err := newTestUserService(r).CreateUniqueUser(ctx, "", false, "")
		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrNameSpaceExhausted))
	})
}

func TestUserService_NamedUsers(t *testing.T) {
	ctx := context.Background()
	researchers := &model.Group{ID: 3, Name: model.GroupResearchers}

	t.Run("researcher gets hashed password and group", func(t *testing.T) {
		r := &MockUserRepo{}
		r.On("Create", ctx, mock.Anything).Return(nil)
		r.On("GetGroupByName", ctx, model.GroupResearchers).Return(researchers, nil)
		r.On("AddGroup", ctx, mock.Anything, researchers).Return(nil)

		u, err := newTestUserService(r).CreateResearcher(ctx, CreateUserInput{Username: "prof", Email: "prof@example.com", Password: "s3cret"})
		require.NoError(t, err)
		ok, err := secrets.CheckPassword("s3cret", "pepper", u.PasswordHash)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, u.HasPerm(model.PermAddRequest))
	})

	t.Run("taken explicit username is an error", func(t *testing.T) {
		r := &MockUserRepo{}
		r.On("Create", ctx, mock.Anything).Return(gorm.ErrDuplicatedKey)

		_, err := newTestUserService(r).CreateResearcher(ctx, CreateUserInput{Username: "prof"})
		assert.ErrorIs(t, err, ErrUsernameTaken)
		r.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("superuser has no group", func(t *testing.T) {
		r := &MockUserRepo{}
		r.On("Create", ctx, mock.Anything).Return(nil)

		u, err := newTestUserService(r).CreateSuperuser(ctx, CreateUserInput{Username: "root", Password: "pw"})
		require.NoError(t, err)
		assert.True(t, u.IsSuperuser)
		assert.True(t, u.IsStaff)
		assert.Empty(t, u.Groups)
		r.AssertNotCalled(t, "GetGroupByName", mock.Anything, mock.Anything)
	})
}

func TestUserService_ChangeEmail(t *testing.T) {
	ctx := context.Background()
	self := &model.EmailUser{ID: 1, IsActive: true}
	other := &model.EmailUser{ID: 2, IsActive: true}
	staff := &model.EmailUser{ID: 3, IsActive: true, IsStaff: true}

	t.Run("self", func(t *testing.T) {
		r := &MockUserRepo{}
		r.On("UpdateEmail", ctx, uint(1), "new@example.com").Return(nil)
		r.On("GetByID", ctx, uint(1)).Return(&model.EmailUser{ID: 1, Email: "new@example.com"}, nil)

		u, err := newTestUserService(r).ChangeEmail(ctx, self, 1, "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", u.Email)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		r := &MockUserRepo{}
		_, err := newTestUserService(r).ChangeEmail(ctx, other, 1, "x@example.com")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("staff on missing user", func(t *testing.T) {
		r := &MockUserRepo{}
		r.On("UpdateEmail", ctx, uint(9), "x@example.com").Return(gorm.ErrRecordNotFound)
		_, err := newTestUserService(r).ChangeEmail(ctx, staff, 9, "x@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestSentinelEmail(t *testing.T) {
	s := NewSentinelEmail("emonotate", "gmail.com")

	assert.Equal(t, "emonotate+abc123@gmail.com", s.For("abc123"))
	assert.True(t, s.IsInvalidEmail(s.For("abc123")))
	assert.True(t, s.IsInvalidEmail(""))
	assert.True(t, s.IsInvalidEmail("  "))
	assert.False(t, s.IsInvalidEmail("someone@gmail.com"))
	assert.False(t, s.IsInvalidEmail("emonotate+x@gmail.com.evil"))
	assert.False(t, s.IsInvalidEmail(strings.ToUpper("x@example.com")))

	var zero SentinelEmail
	zero.User, zero.Host = "emonotate", "gmail.com"
	assert.True(t, zero.IsInvalidEmail("emonotate+x@gmail.com"))
}
