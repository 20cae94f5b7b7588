package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/session"

	"golang.org/x/crypto/bcrypt"
)

const (
	msgUsernameTaken  = "That username has already been taken. Create a new one"
	msgEmailTaken     = "This email address is already in use. Please use a different email."
	msgUnknownUser    = "User does not exist"
	msgBadCredentials = "Username and password didn't match"
)

type AuthOptions struct {
	SessionTTL        time.Duration
	// RevealUnknownUser reports "User does not exist" for unknown usernames
	// instead of the generic credentials message.
	RevealUnknownUser bool
	HashCost          int
}

// AuthService registers users, checks credentials and manages sessions.
type AuthService struct {
	users    UserStore
	sessions session.Store
	opts     AuthOptions
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(users UserStore, sessions session.Store, opts AuthOptions) *AuthService {
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 14 * 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		opts:     opts,
		now:      time.Now,
	}
}

// Register validates the form, checks uniqueness and creates the user.
// Field problems come back as FieldErrors; err is reserved for store failures.
func (s *AuthService) Register(ctx context.Context, form SignupForm) (*domain.User, FieldErrors, error) {
	if errs := ValidateSignup(&form); len(errs) > 0 {
		return nil, errs, nil
	}

	taken, err := s.users.UsernameExists(ctx, form.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, FieldErrors{{Field: "username", Message: msgUsernameTaken}}, nil
	}
	taken, err = s.users.EmailExists(ctx, form.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, FieldErrors{{Field: "email", Message: msgEmailTaken}}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password1), s.opts.HashCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		Username: form.Username,
		Email:    strings.ToLower(form.Email),
		Password: string(hash),
	}
	// unique indexes still catch a concurrent registration
	switch err := s.users.Create(ctx, u); {
	case errors.Is(err, domain.ErrUsernameTaken):
		return nil, FieldErrors{{Field: "username", Message: msgUsernameTaken}}, nil
	case errors.Is(err, domain.ErrEmailTaken):
		return nil, FieldErrors{{Field: "email", Message: msgEmailTaken}}, nil
	case err != nil:
		return nil, nil, err
	}
	return u, nil, nil
}

// Authenticate returns domain.ErrUnknownUser or domain.ErrInvalidCredentials
// on failure. Unknown usernames still pay for one bcrypt comparison.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, domain.ErrUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	u.LastLogin = &now
	return u, nil
}

// LoginMessage is the user-facing text for an Authenticate failure.
func (s *AuthService) LoginMessage(err error) string {
	if errors.Is(err, domain.ErrUnknownUser) && s.opts.RevealUnknownUser {
		return msgUnknownUser
	}
	return msgBadCredentials
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.opts.HashCost)
	})
	return s.dummyHash
}

// StartSession stores a new session for u.
func (s *AuthService) StartSession(ctx context.Context, u *domain.User) (*session.Session, error) {
	sess, err := session.New(u.ID, s.opts.SessionTTL)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

func (s *AuthService) EndSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// Resolve loads the session and its user. A missing session, a user id
// mismatch or a deleted user all yield session.ErrNoSession.
func (s *AuthService) Resolve(ctx context.Context, sessionID string, userID int64) (*domain.User, *session.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if sess.UserID != userID {
		return nil, nil, session.ErrNoSession
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, nil, session.ErrNoSession
	}
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}
