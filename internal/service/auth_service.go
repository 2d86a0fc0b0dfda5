package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/agriclinic/agri-clinic-hub/internal/domain"
	"github.com/agriclinic/agri-clinic-hub/internal/metrics"
	"github.com/agriclinic/agri-clinic-hub/internal/notify"
	"github.com/agriclinic/agri-clinic-hub/internal/repo/postgres"
	"github.com/agriclinic/agri-clinic-hub/pkg/auth"
	"github.com/agriclinic/agri-clinic-hub/pkg/config"
	"github.com/agriclinic/agri-clinic-hub/pkg/events"
	"github.com/agriclinic/agri-clinic-hub/pkg/logger"
)

type AuthService interface {
	Signup(ctx context.Context, req *domain.SignupRequest) (*domain.LoginResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, secret, newPassword string) error
}

type authService struct {
	userRepo  postgres.UserRepository
	mailer    notify.Mailer
	publisher events.Publisher
	metrics   metrics.Collector
	config    *config.Config
	now       func() time.Time
}

func NewAuthService(
	userRepo postgres.UserRepository,
	mailer notify.Mailer,
	publisher events.Publisher,
	collector metrics.Collector,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		mailer:    mailer,
		publisher: publisher,
		metrics:   collector,
		config:    cfg,
		now:       time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Admins are usable immediately; farmers and officers start unverified
	// and officers stay locked out of login until an admin verifies them.
	isVerified := req.Role == domain.RoleAdmin

	user, err := s.userRepo.Create(ctx, req, passwordHash, isVerified)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSignup(user.Role)

	if err := s.publisher.Publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		RegisteredAt: user.CreatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish user registered event", "error", err, "user_id", user.ID)
	}

	// Signup hands back a session immediately. An unverified officer still
	// gets a token; the login gate is what keeps them out until an admin
	// verifies the account.
	token, err := auth.NewAccessToken(user.ID, user.Role, s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &domain.LoginResponse{
		Token: token,
		User:  user.ToUserInfo(),
	}, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		s.metrics.RecordLogin(false)
		return nil, domain.ErrInvalidCredentials
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		s.metrics.RecordLogin(false)
		return nil, domain.ErrInvalidCredentials
	}

	// Password already checked, so the caller learns their account is the
	// blocker rather than getting a generic credentials error.
	if user.Role == domain.RoleOfficer && !user.IsVerified {
		s.metrics.RecordLogin(false)
		return nil, domain.ErrPendingVerification
	}

	token, err := auth.NewAccessToken(user.ID, user.Role, s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	s.metrics.RecordLogin(true)

	return &domain.LoginResponse{
		Token: token,
		User:  user.ToUserInfo(),
	}, nil
}

// ForgotPassword issues a single-use reset secret and mails a link
// carrying it. Only the SHA-256 digest of the secret is stored, so a
// database leak does not hand out working reset links.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return domain.Validationf("email is required")
	}

	user, err := s.userRepo.FindByEmailExact(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("%w: user with this email", domain.ErrNotFound)
	}

	secret, digest, err := newResetSecret()
	if err != nil {
		return fmt.Errorf("failed to generate reset secret: %w", err)
	}

	expiresAt := s.now().Add(s.config.Auth.ResetTokenTTL)
	if err := s.userRepo.SetResetToken(ctx, user.ID, digest, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/%s", strings.TrimRight(s.config.Auth.ResetBaseURL, "/"), secret)
	if err := s.mailer.SendPasswordResetEmail(user.Email, user.Name, resetURL); err != nil {
		logger.ErrorContext(ctx, "Failed to send password reset email", "error", err, "user_id", user.ID)
		s.metrics.RecordNotificationFailure("password_reset_email")
		return fmt.Errorf("%w: password reset email", domain.ErrDelivery)
	}

	return nil
}

// ResetPassword trades a valid, unexpired secret for a new password. The
// repository consumes the digest atomically, so a secret works at most
// once regardless of concurrent attempts.
func (s *authService) ResetPassword(ctx context.Context, secret, newPassword string) error {
	newPassword = strings.TrimSpace(newPassword)
	if secret == "" {
		return domain.Validationf("token is required")
	}
	if newPassword == "" {
		return domain.Validationf("password is required")
	}
	if len(newPassword) < 6 {
		return domain.Validationf("password must be at least 6 characters")
	}

	passwordHash, err := argon2id.CreateHash(newPassword, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.userRepo.ConsumePasswordReset(ctx, digestOf(secret), passwordHash)
	if err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	if userID == 0 {
		return domain.ErrInvalidResetToken
	}

	logger.InfoContext(ctx, "Password reset completed", "user_id", userID)
	return nil
}

// newResetSecret returns the secret that goes into the email link and the
// digest that goes into the database.
func newResetSecret() (secret, digest string, err error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	secret = hex.EncodeToString(buf)
	return secret, digestOf(secret), nil
}

func digestOf(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
