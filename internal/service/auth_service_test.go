package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/agriclinic/agri-clinic-hub/internal/domain"
	"github.com/agriclinic/agri-clinic-hub/internal/metrics"
	"github.com/agriclinic/agri-clinic-hub/internal/notify"
	"github.com/agriclinic/agri-clinic-hub/internal/service"
	"github.com/agriclinic/agri-clinic-hub/pkg/config"
)

// ---------- Mocks ----------

type mockUserRepo struct {
	users     map[int64]*domain.User
	nextID    int64
	resetHash string
	resetUser int64
	resetExp  time.Time
	consumed  bool
	createErr error
	findErr   error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*domain.User), nextID: 1}
}

func (m *mockUserRepo) addUser(u *domain.User) *domain.User {
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepo) Create(_ context.Context, req *domain.SignupRequest, passwordHash string, isVerified bool) (*domain.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, u := range m.users {
		if u.Email == req.Email {
			return nil, domain.ErrEmailExists
		}
	}
	now := time.Now()
	return m.addUser(&domain.User{
		Role:         req.Role,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Phone:        req.Phone,
		IsVerified:   isVerified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}), nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmailExact(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) List(_ context.Context, _, _ int) ([]domain.User, error) {
	var out []domain.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) ListVerifiedOfficers(_ context.Context, _, _ int) ([]domain.User, error) {
	var out []domain.User
	for _, u := range m.users {
		if u.Role == domain.RoleOfficer && u.IsVerified {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) MarkVerified(_ context.Context, userID int64) error {
	u, ok := m.users[userID]
	if !ok {
		return errors.New("no rows")
	}
	u.IsVerified = true
	return nil
}

func (m *mockUserRepo) SetResetToken(_ context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	m.resetUser = userID
	m.resetHash = tokenHash
	m.resetExp = expiresAt
	return nil
}

func (m *mockUserRepo) ConsumePasswordReset(_ context.Context, tokenHash, newPasswordHash string) (int64, error) {
	if m.consumed || tokenHash != m.resetHash || m.resetHash == "" || time.Now().After(m.resetExp) {
		return 0, nil
	}
	m.consumed = true
	if u, ok := m.users[m.resetUser]; ok {
		u.PasswordHash = newPasswordHash
	}
	return m.resetUser, nil
}

type mockMailer struct {
	lastTo  string
	lastURL string
	sendErr error
	calls   int
}

func (m *mockMailer) SendPasswordResetEmail(toEmail, toName, resetURL string) error {
	m.calls++
	m.lastTo = toEmail
	m.lastURL = resetURL
	return m.sendErr
}

type mockSMS struct {
	lastPhone   string
	lastDetails notify.BookingDetails
	sendErr     error
	calls       int
}

func (m *mockSMS) SendBookingApproval(phone string, details notify.BookingDetails) error {
	m.calls++
	m.lastPhone = phone
	m.lastDetails = details
	return m.sendErr
}

type mockPublisher struct {
	subjects []string
	payloads []interface{}
	err      error
}

func (m *mockPublisher) Publish(_ context.Context, subject string, data interface{}) error {
	m.subjects = append(m.subjects, subject)
	m.payloads = append(m.payloads, data)
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret",
			AccessTokenTTL: 30 * 24 * time.Hour,
			ResetTokenTTL:  30 * time.Minute,
			ResetBaseURL:   "http://localhost:5173/reset-password",
		},
	}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return h
}

// ---------- Signup ----------

func TestSignupFarmerStartsUnverified(t *testing.T) {
	repo := newMockUserRepo()
	svc := service.NewAuthService(repo, &mockMailer{}, &mockPublisher{}, metrics.Noop{}, testConfig())

	resp, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Name: "Asha", Email: "  Asha@Farm.com ", Phone: "0700111222",
		Password: " secret1 ", Role: domain.RoleFarmer,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if resp.Token == "" {
		t.Error("signup should hand back a session token")
	}
	if resp.User.IsVerified {
		t.Error("farmer should start unverified")
	}
	if resp.User.Email != "asha@farm.com" {
		t.Errorf("email not normalized: %q", resp.User.Email)
	}

	// Stored hash must match the trimmed password.
	stored := repo.users[resp.User.ID]
	ok, err := argon2id.ComparePasswordAndHash("secret1", stored.PasswordHash)
	if err != nil || !ok {
		t.Errorf("trimmed password does not match stored hash (ok=%v, err=%v)", ok, err)
	}
}

func TestSignupAdminIsVerifiedImmediately(t *testing.T) {
	repo := newMockUserRepo()
	svc := service.NewAuthService(repo, &mockMailer{}, &mockPublisher{}, metrics.Noop{}, testConfig())

	resp, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Name: "Root", Email: "root@clinic.com", Phone: "0700000000",
		Password: "secret1", Role: domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if !resp.User.IsVerified {
		t.Error("admin should be verified on signup")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc := service.NewAuthService(repo, &mockMailer{}, &mockPublisher{}, metrics.Noop{}, testConfig())

	req := func() *domain.SignupRequest {
		return &domain.SignupRequest{
			Name: "Asha", Email: "asha@farm.com", Phone: "0700111222",
			Password: "secret1", Role: domain.RoleFarmer,
		}
	}
	if _, err := svc.Signup(context.Background(), req()); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, err := svc.Signup(context.Background(), req())
	if !errors.Is(err, domain.ErrEmailExists) {
		t.Errorf("want ErrEmailExists, got %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	svc := service.NewAuthService(newMockUserRepo(), &mockMailer{}, &mockPublisher{}, metrics.Noop{}, testConfig())

	_, err := svc.Signup(context.Background(), &domain.SignupRequest{
		Name: "Asha", Email: "asha@farm.com", Phone: "0700111222",
		Password: "short", Role: domain.RoleFarmer,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("want ErrValidation for short password, got %v", err)
	}
}

// ---------- Login ----------

func TestLoginSuccess(t *testing.T) {
	repo := newMockUserRepo()
	repo.addUser(&domain.User{
		Role: domain.RoleFarmer, Email: "asha@farm.com",
		PasswordHash: mustHash(t, "secret1"), Name: "Asha", IsVerified: false,
	})
	svc := service.NewAuthService(repo, &mockMailer{}, &mockPublisher{}, metrics.Noop{}, testConfig())

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: " ASHA@farm.com ", Password: " secret1 ",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.User.Email != "asha@farm.com" {
		t.Errorf("unexpected user in response: %q", resp.User.Email)
	}
}

func TestLoginUnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	repo := newMockUserRepo()
	repo.addUser(&domain.User{
		Role: domain.RoleFarmer, Email: "asha@farm.com",
		PasswordHash: mustHash(t, "secret1"), Name: "Asha",
	})
	svc := service.NewAuthService(repo, &mockMailer{}, &mockPublisher{}, metrics.Noop{}, testConfig())

	_, errUnknown := svc.Login(context.Background(), &domain.LoginRequest{Email: "nobody@farm.com", Password: "secret1"})
	_, errWrongPw := svc.Login(context.Background(), &domain.LoginRequest{Email: "asha@farm.com", Password: "wrong-password"})

	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Errorf("unknown email: want ErrInvalidCredentials, got %v", errUnknown)
	}
	if !errors.Is(errWrongPw, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password: want ErrInvalidCredentials, got %v", errWrongPw)
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Error("unknown email and wrong password must be indistinguishable")
	}
}

func TestLoginUnverifiedOfficer(t *testing.T) {
	repo := newMockUserRepo()
	repo.addUser(&domain.User{
		Role: domain.RoleOfficer, Email: "omar@clinic.com",
		PasswordHash: mustHash(t, "secret1"), Name: "Omar", IsVerified: false,
	})
	svc := service.NewAuthService(repo, &mockMailer{}, &mockPublisher{}, metrics.Noop{}, testConfig())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "omar@clinic.com", Password: "secret1"})
	if !errors.Is(err, domain.ErrPendingVerification) {
		t.Errorf("want ErrPendingVerification, got %v", err)
	}

	// Wrong password still reports bad credentials, not pending verification.
	_, err = svc.Login(context.Background(), &domain.LoginRequest{Email: "omar@clinic.com", Password: "nope-nope"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("want ErrInvalidCredentials for wrong password, got %v", err)
	}
}

func TestLoginUnverifiedFarmerIsAllowed(t *testing.T) {
	repo := newMockUserRepo()
	repo.addUser(&domain.User{
		Role: domain.RoleFarmer, Email: "asha@farm.com",
		PasswordHash: mustHash(t, "secret1"), Name: "Asha", IsVerified: false,
	})
	svc := service.NewAuthService(repo, &mockMailer{}, &mockPublisher{}, metrics.Noop{}, testConfig())

	if _, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "asha@farm.com", Password: "secret1"}); err != nil {
		t.Errorf("unverified farmer should log in, got %v", err)
	}
}

// ---------- Password reset ----------

func TestForgotPasswordStoresDigestNotSecret(t *testing.T) {
	repo := newMockUserRepo()
	repo.addUser(&domain.User{
		Role: domain.RoleFarmer, Email: "asha@farm.com",
		PasswordHash: mustHash(t, "secret1"), Name: "Asha",
	})
	mailer := &mockMailer{}
	svc := service.NewAuthService(repo, mailer, &mockPublisher{}, metrics.Noop{}, testConfig())

	if err := svc.ForgotPassword(context.Background(), "asha@farm.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if mailer.calls != 1 {
		t.Fatalf("expected one email, got %d", mailer.calls)
	}

	parts := strings.Split(mailer.lastURL, "/")
	secret := parts[len(parts)-1]
	if len(secret) != 40 {
		t.Errorf("secret should be 40 hex chars, got %d", len(secret))
	}
	if repo.resetHash == secret {
		t.Error("raw secret must not be stored")
	}
	if len(repo.resetHash) != 64 {
		t.Errorf("stored digest should be 64 hex chars, got %d", len(repo.resetHash))
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc := service.NewAuthService(newMockUserRepo(), &mockMailer{}, &mockPublisher{}, metrics.Noop{}, testConfig())

	err := svc.ForgotPassword(context.Background(), "nobody@farm.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestResetPasswordRoundTrip(t *testing.T) {
	repo := newMockUserRepo()
	user := repo.addUser(&domain.User{
		Role: domain.RoleFarmer, Email: "asha@farm.com",
		PasswordHash: mustHash(t, "old-secret"), Name: "Asha",
	})
	mailer := &mockMailer{}
	svc := service.NewAuthService(repo, mailer, &mockPublisher{}, metrics.Noop{}, testConfig())

	if err := svc.ForgotPassword(context.Background(), "asha@farm.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	parts := strings.Split(mailer.lastURL, "/")
	secret := parts[len(parts)-1]

	if err := svc.ResetPassword(context.Background(), secret, "new-secret"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	ok, err := argon2id.ComparePasswordAndHash("new-secret", repo.users[user.ID].PasswordHash)
	if err != nil || !ok {
		t.Errorf("new password not stored (ok=%v, err=%v)", ok, err)
	}

	// Second use of the same secret must fail.
	err = svc.ResetPassword(context.Background(), secret, "another-one")
	if !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Errorf("want ErrInvalidResetToken on reuse, got %v", err)
	}
}

func TestResetPasswordExpiredSecret(t *testing.T) {
	repo := newMockUserRepo()
	repo.addUser(&domain.User{
		Role: domain.RoleFarmer, Email: "asha@farm.com",
		PasswordHash: mustHash(t, "old-secret"), Name: "Asha",
	})
	mailer := &mockMailer{}
	svc := service.NewAuthService(repo, mailer, &mockPublisher{}, metrics.Noop{}, testConfig())

	if err := svc.ForgotPassword(context.Background(), "asha@farm.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	parts := strings.Split(mailer.lastURL, "/")
	secret := parts[len(parts)-1]

	// The stored digest still matches but the window has closed.
	repo.resetExp = time.Now().Add(-time.Minute)

	err := svc.ResetPassword(context.Background(), secret, "new-secret")
	if !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Errorf("want ErrInvalidResetToken after expiry, got %v", err)
	}
}

func TestResetPasswordBadSecret(t *testing.T) {
	svc := service.NewAuthService(newMockUserRepo(), &mockMailer{}, &mockPublisher{}, metrics.Noop{}, testConfig())

	err := svc.ResetPassword(context.Background(), "not-a-real-secret", "new-secret")
	if !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Errorf("want ErrInvalidResetToken, got %v", err)
	}

	err = svc.ResetPassword(context.Background(), "whatever", "short")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("want ErrValidation for short password, got %v", err)
	}
}
