// Package accounts handles registration, sign-in and profile settings.
package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

type Service struct {
	users  domain.UserRepository
	tokens *Tokens
	logger observability.Logger
	now    func() time.Time
}

func NewService(users domain.UserRepository, tokens *Tokens, logger observability.Logger) *Service {
	return &Service{users: users, tokens: tokens, logger: logger, now: time.Now}
}

// Register creates a learner account. An e-mail that is already registered
// fails with ErrConflict and leaves the existing account untouched.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	if err := domain.ValidateStruct(in, "name, email and a password of at least 6 characters are required"); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, errors.Wrapf(domain.ErrConflict, "e-mail %q already registered", in.Email)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, errors.Wrap(err, "lookup user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	now := s.now()
	u := domain.User{
		ID:            uuid.NewString(),
		Email:         in.Email,
		Name:          in.Name,
		PasswordHash:  string(hash),
		Role:          domain.RoleUser,
		Notifications: domain.DefaultNotificationPrefs(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	observability.LoggerFrom(ctx, s.logger).WithField("user_id", u.ID).Info("user registered")
	return &u, nil
}

// Login checks the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errors.Wrap(domain.ErrUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, errors.Wrap(err, "lookup user")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, errors.Wrap(domain.ErrUnauthorized, "invalid credentials")
	}
	token, exp, err := s.tokens.Issue(*u)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: exp, User: *u}, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetUser(ctx, userID)
}

// UpdateSettings persists the editable part of the profile.
func (s *Service) UpdateSettings(ctx context.Context, userID string, in domain.Settings) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs := in.Notifications
	switch {
	case u.Role != domain.RoleAdmin:
		prefs.Admin = nil
	case prefs.Admin == nil:
		prefs.Admin = u.Notifications.Admin
	}
	u.Name = in.Name
	u.Phone = in.Phone
	u.Notifications = prefs
	u.UpdatedAt = s.now()
	if err := s.users.SaveUser(ctx, *u); err != nil {
		return nil, errors.Wrap(err, "save settings")
	}
	return u, nil
}

// ChangePassword replaces the password after checking the current one. A
// wrong current password is reported on the currentPassword field.
func (s *Service) ChangePassword(ctx context.Context, userID string, in domain.PasswordChange) error {
	if err := in.Validate(); err != nil {
		return err
	}
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Current)) != nil {
		return &domain.ValidationError{
			Message: "current password is incorrect",
			Fields:  map[string]string{"currentPassword": "is incorrect"},
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.New), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = s.now()
	if err := s.users.SaveUser(ctx, *u); err != nil {
		return errors.Wrap(err, "save password")
	}
	observability.LoggerFrom(ctx, s.logger).WithField("user_id", u.ID).Info("password changed")
	return nil
}
