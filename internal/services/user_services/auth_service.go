// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/repository/user"
)

type AuthService struct {
	userRepo     user.UserRepository
	verification *VerificationService
	tokens       TokenIssuer
	adminEmail   string
	logger       Logger
	now          Clock
}

func NewAuthService(userRepo user.UserRepository, verification *VerificationService, tokens TokenIssuer, adminEmail string, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		verification: verification,
		tokens:       tokens,
		adminEmail:   domain.NormalizeEmail(adminEmail),
		logger:       logger,
		now:          time.Now,
	}
}

// Register creates the user and its profile in one transaction, then sends
// the first email code. A failed send does not undo the registration.
func (s *AuthService) Register(ctx context.Context, params domain.RegistrationParams) (*domain.User, *domain.Profile, error) {
	rawPhone := params.Phone
	p := params.Normalize()

	verr := p.Validate(rawPhone)
	if err := s.checkTaken(ctx, p, verr); err != nil {
		return nil, nil, err
	}
	if verr.HasErrors() {
		s.logger.Warn("registration validation failed",
			"username", mask(p.Username),
			"error", verr.Error())
		return nil, nil, verr
	}

	u := &domain.User{
		Username:  p.Username,
		Email:     p.Email,
		Phone:     p.Phone,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		UserType:  p.UserType,
		Role:      domain.RoleUser,
		Active:    true,
	}
	if s.adminEmail != "" && p.Email == s.adminEmail {
		u.Role = domain.RoleAdmin
	}
	if err := u.HashPassword(p.Password); err != nil {
		s.logger.Error("password hashing failed", "error", err, "username", mask(p.Username))
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile, err := s.userRepo.CreateWithProfile(ctx, u, domain.NewProfileForUser)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return nil, nil, ve
		}
		if errors.Is(err, user.ErrDuplicateUser) {
			s.logger.Error("registration lost a uniqueness race", "username", mask(p.Username))
			return nil, nil, errors.New("registration failed, please try again")
		}
		s.logger.Error("user creation failed", "error", err, "username", mask(p.Username))
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered successfully",
		"user_id", u.ID,
		"username", mask(u.Username),
		"user_type", u.UserType,
		"role", u.Role)

	if _, err := s.verification.RequestCode(ctx, u, domain.ContactEmail); err != nil {
		s.logger.Warn("initial email code not sent", "user_id", u.ID, "error", err)
	}
	return u, profile, nil
}

func (s *AuthService) checkTaken(ctx context.Context, p domain.RegistrationParams, verr *domain.ValidationError) error {
	checks := []struct {
		field string
		value string
		exist func(context.Context, string) (bool, error)
	}{
		{"username", p.Username, s.userRepo.ExistsByUsername},
		{"email", p.Email, s.userRepo.ExistsByEmail},
		{"phone", p.Phone, s.userRepo.ExistsByPhone},
	}
	for _, c := range checks {
		if c.value == "" || len(verr.Fields[c.field]) > 0 {
			continue
		}
		taken, err := c.exist(ctx, c.value)
		if err != nil {
			s.logger.Error("uniqueness check failed", "field", c.field, "error", err)
			return fmt.Errorf("failed to check %s: %w", c.field, err)
		}
		if taken {
			verr.Add(c.field, "has already been taken")
		}
	}
	return nil
}

// Authenticate resolves login (username or email) and checks the password.
// Unknown users and wrong passwords produce the same error.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		s.logger.Warn("login attempt with empty credentials",
			"has_login", login != "",
			"has_password", password != "")
		return nil, domain.ErrInvalidCredentials
	}

	u, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("login failed - user not found", "login", mask(login))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := u.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password", "user_id", u.ID)
		return nil, domain.ErrInvalidCredentials
	}
	if !u.CanAuthenticate() {
		s.logger.Warn("login attempt on disabled account", "user_id", u.ID, "banned", u.Banned)
		return nil, domain.ErrAccountDisabled
	}

	verified, err := s.verification.IsVerified(ctx, u, domain.ContactEmail)
	if err != nil {
		return nil, err
	}
	if !verified {
		s.logger.Warn("login attempt by unverified user", "user_id", u.ID)
		return nil, domain.ErrEmailNotVerified
	}

	now := s.now()
	if err := s.userRepo.MarkSignedIn(ctx, u.ID, now); err != nil {
		s.logger.Warn("failed to record sign in", "user_id", u.ID, "error", err)
	} else {
		u.LastSignInAt = &now
	}
	return u, nil
}

// Login authenticates and issues a session token.
func (s *AuthService) Login(ctx context.Context, login, password string) (*domain.User, string, error) {
	u, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.GenerateJWT(u.ID)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", u.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	s.logger.Info("login successful", "user_id", u.ID, "username", mask(u.Username), "role", u.Role)
	return u, token, nil
}

// ResendEmailCode sends a new email code to the account's current address.
func (s *AuthService) ResendEmailCode(ctx context.Context, userID uint) (*domain.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.verification.RequestCode(ctx, u, domain.ContactEmail); err != nil {
		return nil, err
	}
	return u, nil
}

// VerifyEmail checks an email code submitted without a session and, on
// success, signs the user in.
func (s *AuthService) VerifyEmail(ctx context.Context, userID uint, code string) (*domain.User, string, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if err := s.verification.VerifyUserChannel(ctx, u, domain.ContactEmail, code); err != nil {
		return nil, "", err
	}

	now := s.now()
	if err := s.userRepo.MarkSignedIn(ctx, u.ID, now); err == nil {
		u.LastSignInAt = &now
	}
	token, err := s.tokens.GenerateJWT(u.ID)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", u.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	s.logger.Info("email verified", "user_id", u.ID)
	return u, token, nil
}

// Me loads the user behind a session.
func (s *AuthService) Me(ctx context.Context, userID uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}
