package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emonotate/emonotate/internal/infra/cache"
	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/repo"
	"github.com/emonotate/emonotate/internal/pkg/utils/secrets"
	"github.com/emonotate/emonotate/internal/pkg/utils/tokens"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionStore keeps login sessions keyed by the HMAC of the cookie token.
type SessionStore interface {
	Put(ctx context.Context, key string, userID uint) error
	Get(ctx context.Context, key string) (uint, error)
	Delete(ctx context.Context, key string) error
	TTL() time.Duration
}

type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*LoginOutput, error)
	Authenticate(ctx context.Context, username, password string) (*model.EmailUser, error)
	ResolveSession(ctx context.Context, token string) (*model.EmailUser, error)
	EndSession(ctx context.Context, token string) error
	AttachPassport(ctx context.Context, userID uint, requestIDs []uint) (int64, error)
}

type LoginInput struct {
	Username     string
	Password     string
	SessionToken string
	Guest        bool
	Passport     []uint
}

type LoginOutput struct {
	// User is nil when nobody could be resolved and guest mode was not asked for.
	User         *model.EmailUser
	SessionToken string
	SessionTTL   time.Duration
	NeedsEmail   bool
}

type authService struct {
	users    repo.UserRepo
	requests repo.RequestRepo
	userSvc  UserService
	sessions SessionStore
	pepper   string
	log      *zap.Logger
}

func NewAuthService(users repo.UserRepo, requests repo.RequestRepo, userSvc UserService, sessions SessionStore, pepper string, log *zap.Logger) AuthService {
	return &authService{
		users:    users,
		requests: requests,
		userSvc:  userSvc,
		sessions: sessions,
		pepper:   pepper,
		log:      log,
	}
}

// Login resolves the caller in order: posted credentials, an existing
// session, then lazy guest signup.
func (s *authService) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	var user *model.EmailUser

	if in.Username != "" && in.Password != "" {
		u, err := s.Authenticate(ctx, in.Username, in.Password)
		if err != nil && !errors.Is(err, ErrInvalidCredentials) {
			return nil, err
		}
		user = u
	}

	if user == nil && in.SessionToken != "" {
		u, err := s.ResolveSession(ctx, in.SessionToken)
		if err != nil && !errors.Is(err, cache.ErrSessionNotFound) {
			return nil, err
		}
		user = u
	}

	if user == nil && in.Guest {
		u, err := s.userSvc.CreateGuestUser(ctx, false)
		if err != nil {
			return nil, fmt.Errorf("create guest user: %w", err)
		}
		user = u
	}

	if user == nil {
		return &LoginOutput{}, nil
	}

	// a failed passport still logs the user in; participation can be added later
	if len(in.Passport) > 0 {
		if _, err := s.AttachPassport(ctx, user.ID, in.Passport); err != nil {
			s.log.Warn("attach passport",
				zap.Uint("user_id", user.ID),
				zap.Uints("request_ids", in.Passport),
				zap.Error(err))
		}
	}

	token, err := tokens.NewSessionToken()
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Put(ctx, tokens.HMAC256Hex(s.pepper, token), user.ID); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.log.Warn("update last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	return &LoginOutput{
		User:         user,
		SessionToken: token,
		SessionTTL:   s.sessions.TTL(),
		NeedsEmail:   s.userSvc.IsInvalidEmail(user.Email),
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (*model.EmailUser, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	ok, err := secrets.CheckPassword(password, s.pepper, u.PasswordHash)
	if err != nil {
		s.log.Warn("password check failed", zap.Uint("user_id", u.ID), zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if !ok || !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ResolveSession returns cache.ErrSessionNotFound for unknown, expired or orphaned tokens.
func (s *authService) ResolveSession(ctx context.Context, token string) (*model.EmailUser, error) {
	key := tokens.HMAC256Hex(s.pepper, token)
	id, err := s.sessions.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = s.sessions.Delete(ctx, key)
		return nil, cache.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, cache.ErrSessionNotFound
	}
	return u, nil
}

func (s *authService) EndSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, tokens.HMAC256Hex(s.pepper, token))
}

// AttachPassport makes userID a participant of every existing request in
// requestIDs. Unknown ids are ignored.
func (s *authService) AttachPassport(ctx context.Context, userID uint, requestIDs []uint) (int64, error) {
	ids, err := s.requests.ExistingIDs(ctx, requestIDs)
	if err != nil {
		return 0, err
	}
	var added int64
	for _, id := range ids {
		n, err := s.requests.AddParticipants(ctx, id, []uint{userID})
		if err != nil {
			return added, fmt.Errorf("attach passport request %d: %w", id, err)
		}
		added += n
	}
	return added, nil
}
