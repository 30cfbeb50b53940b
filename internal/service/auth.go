package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shopapi/internal/events"
	"github.com/Skotchmaster/shopapi/internal/hash"
	"github.com/Skotchmaster/shopapi/internal/logging"
	"github.com/Skotchmaster/shopapi/internal/models"
	"github.com/Skotchmaster/shopapi/internal/repo"
	"github.com/Skotchmaster/shopapi/internal/tokens"
	"github.com/Skotchmaster/shopapi/internal/transport"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Secret []byte
	TTL    time.Duration
}

func NewAuthService(r *repo.GormRepo, p events.Publisher, secret []byte, ttl time.Duration) *AuthService {
	if p == nil {
		p = events.Noop{}
	}
	return &AuthService{Repo: r, Events: p, Secret: secret, TTL: ttl}
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	if err := transport.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user, err := s.createUser(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.UserRegistered, user.ID, user.Username)
	return user, nil
}

// SeedUser creates the user unless the username is already taken. It reports
// whether a row was created.
func (s *AuthService) SeedUser(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, fmt.Errorf("%w: seed user needs username and password", ErrValidation)
	}
	if _, err := s.createUser(ctx, username, password); err != nil {
		if errors.Is(err, ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *AuthService) createUser(ctx context.Context, username, password string) (*models.User, error) {
	hashed, err := hash.HashPassword(password)
	if err != nil {
		if errors.Is(err, hash.ErrEmptyPassword) || errors.Is(err, hash.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: hashed}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("%w: username %q is taken", ErrConflict, username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks the credentials and opens a new session. Unknown usernames and
// wrong passwords are reported the same way.
func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*tokens.Issued, error) {
	if err := transport.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.Repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	issued, err := tokens.NewSessionToken(s.Secret, user.ID, s.TTL)
	if err != nil {
		return nil, err
	}

	sess := &models.Session{
		ID:        issued.ID,
		UserID:    user.ID,
		TokenHash: tokens.Sha256Hex(issued.Token),
		ExpiresAt: issued.ExpiresAt.Unix(),
	}
	if err := s.Repo.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.publish(ctx, events.UserLoggedIn, user.ID, user.Username)
	return issued, nil
}

// Authenticate resolves a session token to its live session row.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: no session", ErrUnauthorized)
	}

	claims, err := tokens.ParseSessionToken(token, s.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	sess, err := s.Repo.FindSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session not found", ErrUnauthorized)
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	switch {
	case sess.Revoked:
		return nil, fmt.Errorf("%w: session revoked", ErrUnauthorized)
	case sess.ExpiresAt <= time.Now().Unix():
		return nil, fmt.Errorf("%w: session expired", ErrUnauthorized)
	case sess.UserID != userID || sess.TokenHash != tokens.Sha256Hex(token):
		return nil, fmt.Errorf("%w: session mismatch", ErrUnauthorized)
	}
	return sess, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	sess, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.Repo.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user gone", ErrUnauthorized)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	sess, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}

	if err := s.Repo.RevokeSession(ctx, sess.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: session already closed", ErrUnauthorized)
		}
		return fmt.Errorf("revoke session: %w", err)
	}

	s.publish(ctx, events.UserLoggedOut, sess.UserID, "")
	return nil
}

// PurgeSessions deletes revoked and expired session rows.
func (s *AuthService) PurgeSessions(ctx context.Context) (int64, error) {
	n, err := s.Repo.PurgeSessions(ctx, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}

func (s *AuthService) publish(ctx context.Context, typ string, userID uint, username string) {
	ev := events.UserEvent{Type: typ, UserID: userID, Username: username, At: time.Now().UTC()}
	key := strconv.FormatUint(uint64(userID), 10)
	if err := s.Events.Publish(ctx, events.TopicUser, key, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "type", typ, "error", err)
	}
}
