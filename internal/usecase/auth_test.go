package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/2003abdulhadi/clypsy-website/internal/core/domain"
	"github.com/2003abdulhadi/clypsy-website/internal/infra/security"
	"github.com/2003abdulhadi/clypsy-website/internal/repository"
)

type stubUserRepo struct {
	users     map[string]domain.User
	created   []domain.User
	lookupErr error
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.users[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	r.users[user.Email] = user
	r.created = append(r.created, user)
	return nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	if user, ok := r.users[email]; ok {
		copied := user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func newTestService(t *testing.T, repo *stubUserRepo) *AuthService {
	t.Helper()

	access, err := security.NewTokenIssuer("access-secret", 15*time.Minute, "clypsy")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	refresh, err := security.NewTokenIssuer("refresh-secret", 168*time.Hour, "clypsy")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	svc, err := NewAuthService(
		repo,
		security.NewPasswordHasher(bcrypt.MinCost),
		security.DefaultPasswordValidator(),
		access,
		refresh,
		nil,
		zaptest.NewLogger(t),
	)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc
}

func TestSignUpSuccess(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo)

	user, err := svc.SignUp(context.Background(), "a@b.co", "Abcdef1!")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	if user.ID == "" {
		t.Fatal("expected non-empty user id")
	}
	if user.PasswordHash != "" {
		t.Fatal("returned user must not carry the password hash")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one created user, got %d", len(repo.created))
	}

	stored := repo.created[0]
	if stored.PasswordHash == "Abcdef1!" {
		t.Fatal("plaintext password must never be persisted")
	}
	ok, err := security.NewPasswordHasher(bcrypt.MinCost).Compare("Abcdef1!", stored.PasswordHash)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if !ok {
		t.Fatal("stored hash does not match the signup password")
	}
}

func TestSignUpInvalidEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo)

	_, err := svc.SignUp(context.Background(), "bad-email", "Abcdef1!")

	var vErr *security.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *security.ValidationError, got %v", err)
	}
	if vErr.Message != "Invalid email." {
		t.Fatalf("unexpected message: %q", vErr.Message)
	}
	if len(repo.created) != 0 {
		t.Fatal("no user should be created for an invalid email")
	}
}

func TestSignUpEmailTaken(t *testing.T) {
	repo := newStubUserRepo()
	repo.users["a@b.co"] = domain.User{ID: "user-1", Email: "a@b.co"}
	svc := newTestService(t, repo)

	// The availability check runs before password validation, so a taken
	// email wins even when the password is also bad.
	if _, err := svc.SignUp(context.Background(), "a@b.co", "short"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignUpLookupFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.lookupErr = errors.New("connection refused")
	svc := newTestService(t, repo)

	if _, err := svc.SignUp(context.Background(), "a@b.co", "Abcdef1!"); !errors.Is(err, ErrEmailLookup) {
		t.Fatalf("expected ErrEmailLookup, got %v", err)
	}
}

func TestSignUpWeakPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo)

	_, err := svc.SignUp(context.Background(), "a@b.co", "short1!")

	var vErr *security.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *security.ValidationError, got %v", err)
	}
	if vErr.Code != "password_min_length" {
		t.Fatalf("unexpected code: %s", vErr.Code)
	}
	if len(repo.created) != 0 {
		t.Fatal("no user should be created for a weak password")
	}
}

func TestSignUpDuplicateOnInsert(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = repository.ErrDuplicateEmail
	svc := newTestService(t, repo)

	if _, err := svc.SignUp(context.Background(), "a@b.co", "Abcdef1!"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignInSuccess(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo)

	if _, err := svc.SignUp(context.Background(), "a@b.co", "Abcdef1!"); err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	user, pair, err := svc.SignIn(context.Background(), "a@b.co", "Abcdef1!")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	if user.PasswordHash != "" {
		t.Fatal("returned user must not carry the password hash")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected non-empty token pair")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	access, err := security.NewTokenIssuer("access-secret", 15*time.Minute, "clypsy")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	claims, err := access.Verify(pair.AccessToken)
	if err != nil {
		t.Fatalf("Verify access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("access token uid = %s, want %s", claims.UserID, user.ID)
	}
	if claims.TokenVersion != 0 {
		t.Fatalf("access token version = %d, want 0", claims.TokenVersion)
	}

	refresh, err := security.NewTokenIssuer("refresh-secret", 168*time.Hour, "clypsy")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	refreshClaims, err := refresh.Verify(pair.RefreshToken)
	if err != nil {
		t.Fatalf("Verify refresh token: %v", err)
	}
	if refreshClaims.UserID != claims.UserID || refreshClaims.TokenVersion != claims.TokenVersion {
		t.Fatal("identity claims must be identical across the token pair")
	}

	// Access secret must not verify the refresh token.
	if _, err := access.Verify(pair.RefreshToken); !errors.Is(err, security.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestSignInIndistinguishableFailures(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo)

	if _, err := svc.SignUp(context.Background(), "a@b.co", "Abcdef1!"); err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	_, _, unknownErr := svc.SignIn(context.Background(), "nobody@b.co", "Abcdef1!")
	_, _, wrongErr := svc.SignIn(context.Background(), "a@b.co", "Wrong1!aa")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatal("both failure modes must be indistinguishable")
	}
}

func TestSignInPresenceChecksOnly(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo)

	_, _, err := svc.SignIn(context.Background(), "", "Abcdef1!")
	var vErr *security.ValidationError
	if !errors.As(err, &vErr) || vErr.Message != "Email is required." {
		t.Fatalf("expected email required error, got %v", err)
	}

	_, _, err = svc.SignIn(context.Background(), "a@b.co", "")
	if !errors.As(err, &vErr) || vErr.Message != "Password is required." {
		t.Fatalf("expected password required error, got %v", err)
	}

	// Shape and strength rules do not apply at sign-in.
	if _, _, err := svc.SignIn(context.Background(), "bad-email", "short"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
