package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/repo"
	"github.com/emonotate/emonotate/internal/pkg/paging"
	"github.com/emonotate/emonotate/internal/pkg/randname"
	"github.com/emonotate/emonotate/internal/pkg/utils/secrets"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxNameAttempts bounds how many generated names are tried before giving up.
const maxNameAttempts = 16

type UserService interface {
	CreateGuestUser(ctx context.Context, isTest bool) (*model.EmailUser, error)
	CreateUniqueUser(ctx context.Context, email string, isTest bool, username string) (*model.EmailUser, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*model.EmailUser, error)
	CreateResearcher(ctx context.Context, in CreateUserInput) (*model.EmailUser, error)
	CreateSuperuser(ctx context.Context, in CreateUserInput) (*model.EmailUser, error)

	GetByID(ctx context.Context, id uint) (*model.EmailUser, error)
	List(ctx context.Context, in ListUsersInput) (*ListUsersOutput, error)
	ChangeEmail(ctx context.Context, actor *model.EmailUser, id uint, email string) (*model.EmailUser, error)
	IsInvalidEmail(email string) bool
}

type CreateUserInput struct {
	Username string
	Email    string
	Password string
	IsStaff  bool
}

type userService struct {
	r        repo.UserRepo
	pepper   string
	sentinel SentinelEmail
	log      *zap.Logger
}

func NewUserService(r repo.UserRepo, pepper string, sentinel SentinelEmail, log *zap.Logger) UserService {
	return &userService{r: r, pepper: pepper, sentinel: sentinel, log: log}
}

func (s *userService) IsInvalidEmail(email string) bool {
	return s.sentinel.IsInvalidEmail(email)
}

// CreateGuestUser provisions a lazily signed-up account in the Guest group.
func (s *userService) CreateGuestUser(ctx context.Context, isTest bool) (*model.EmailUser, error) {
	u := &model.EmailUser{
		PasswordHash: secrets.UnusablePassword(),
		IsActive:     true,
	}
	withSentinel := func(u *model.EmailUser) { u.Email = s.sentinel.For(u.Username) }
	if err := s.persist(ctx, u, "", false, isTest, withSentinel); err != nil {
		return nil, err
	}
	return s.attachGroup(ctx, u, model.GroupGuest, isTest), nil
}

// CreateUniqueUser provisions a General account. A supplied username is
// tried first; on collision random names are used instead.
func (s *userService) CreateUniqueUser(ctx context.Context, email string, isTest bool, username string) (*model.EmailUser, error) {
	u := &model.EmailUser{
		Email:        email,
		PasswordHash: secrets.UnusablePassword(),
		IsActive:     true,
	}
	if err := s.persist(ctx, u, username, true, isTest, nil); err != nil {
		return nil, err
	}
	return s.attachGroup(ctx, u, model.GroupGeneral, isTest), nil
}

func (s *userService) CreateUser(ctx context.Context, in CreateUserInput) (*model.EmailUser, error) {
	u, err := s.newNamedUser(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.attachGroup(ctx, u, model.GroupGuest, false), nil
}

func (s *userService) CreateResearcher(ctx context.Context, in CreateUserInput) (*model.EmailUser, error) {
	u, err := s.newNamedUser(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.attachGroup(ctx, u, model.GroupResearchers, false), nil
}

// CreateSuperuser creates a staff superuser; superusers hold every permission without a group.
func (s *userService) CreateSuperuser(ctx context.Context, in CreateUserInput) (*model.EmailUser, error) {
	in.IsStaff = true
	return s.newNamedUserWith(ctx, in, func(u *model.EmailUser) { u.IsSuperuser = true })
}

func (s *userService) newNamedUser(ctx context.Context, in CreateUserInput) (*model.EmailUser, error) {
	return s.newNamedUserWith(ctx, in, nil)
}

func (s *userService) newNamedUserWith(ctx context.Context, in CreateUserInput, mutate func(*model.EmailUser)) (*model.EmailUser, error) {
	hash := secrets.UnusablePassword()
	if in.Password != "" {
		h, err := secrets.HashPassword(in.Password, s.pepper)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}
	u := &model.EmailUser{
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      in.IsStaff,
	}
	if mutate != nil {
		mutate(u)
	}
	if err := s.persist(ctx, u, in.Username, false, false, nil); err != nil {
		return nil, err
	}
	return u, nil
}

// persist inserts u under a unique username. An explicit username is used
// as is; with fallback, or when none is given, random names are retried on
// unique-index conflicts up to maxNameAttempts times.
func (s *userService) persist(ctx context.Context, u *model.EmailUser, username string, fallback, isTest bool, prepare func(*model.EmailUser)) error {
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		if attempt == 0 && username != "" {
			u.Username = username
		} else {
			u.Username = randname.Generate(randname.UsernameLen)
		}
		if prepare != nil {
			prepare(u)
		}

		var err error
		if isTest {
			var taken bool
			taken, err = s.r.ExistsUsername(ctx, u.Username)
			if err == nil && taken {
				err = gorm.ErrDuplicatedKey
			}
		} else {
			u.ID = 0
			err = s.r.Create(ctx, u)
		}
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create user: %w", err)
		}
		if attempt == 0 && username != "" && !fallback {
			return ErrUsernameTaken
		}
	}
	return ErrNameSpaceExhausted
}

// attachGroup adds u to the named group. Lookup or insert failures are
// logged and the user is returned without the group.
func (s *userService) attachGroup(ctx context.Context, u *model.EmailUser, name string, isTest bool) *model.EmailUser {
	if isTest {
		u.Groups = append(u.Groups, model.Group{Name: name})
		return u
	}
	g, err := s.r.GetGroupByName(ctx, name)
	if err != nil {
		s.log.Warn("group lookup failed, user created without group",
			zap.String("group", name), zap.Uint("user_id", u.ID), zap.Error(err))
		return u
	}
	if err := s.r.AddGroup(ctx, u, g); err != nil {
		s.log.Warn("attach group failed",
			zap.String("group", name), zap.Uint("user_id", u.ID), zap.Error(err))
		return u
	}
	u.Groups = append(u.Groups, *g)
	return u
}

func (s *userService) GetByID(ctx context.Context, id uint) (*model.EmailUser, error) {
	u, err := s.r.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

type ListUsersInput struct {
	Limit  int    `json:"limit"` // 0 means no limit (return all)
	Cursor string `json:"cursor"`
}

type ListUsersOutput struct {
	Items      []*model.EmailUser `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
	HasMore    bool               `json:"has_more"`
}

func (s *userService) List(ctx context.Context, in ListUsersInput) (*ListUsersOutput, error) {
	if in.Limit == 0 {
		users, err := s.r.List(ctx, time.Time{}, 0, 0)
		if err != nil {
			return nil, err
		}
		return &ListUsersOutput{Items: users}, nil
	}

	var afterT time.Time
	var afterID uint
	var err error
	if in.Cursor != "" {
		afterT, afterID, err = paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, err
		}
	}

	// Query limit+1 is used to determine has_more
	users, err := s.r.List(ctx, afterT, afterID, in.Limit+1)
	if err != nil {
		return nil, err
	}

	out := &ListUsersOutput{Items: users}
	if len(users) > in.Limit {
		out.HasMore = true
		out.Items = users[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.DateJoined, last.ID)
	}
	return out, nil
}

// ChangeEmail lets a user replace their own address; staff may change anyone's.
func (s *userService) ChangeEmail(ctx context.Context, actor *model.EmailUser, id uint, email string) (*model.EmailUser, error) {
	if actor == nil || (actor.ID != id && !actor.IsStaff) {
		return nil, ErrForbidden
	}
	if err := s.r.UpdateEmail(ctx, id, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}
