package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/2003abdulhadi/clypsy-website/internal/core/domain"
	"github.com/2003abdulhadi/clypsy-website/internal/core/port"
	"github.com/2003abdulhadi/clypsy-website/internal/infra/logger"
	"github.com/2003abdulhadi/clypsy-website/internal/infra/security"
	"github.com/2003abdulhadi/clypsy-website/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the email or password is incorrect.
	// Callers must not reveal which factor failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken indicates an account already exists for the email.
	ErrEmailTaken = errors.New("email already in use")
	// ErrEmailLookup indicates the store failed while checking email availability.
	ErrEmailLookup = errors.New("email lookup failed")
)

// TokenPair holds the access and refresh tokens issued for one sign-in.
// Both embed identical claims; only the signing secret and expiry differ.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService coordinates signup and sign-in flows.
type AuthService struct {
	users             port.UserRepository
	hasher            *security.PasswordHasher
	passwordValidator *security.PasswordValidator
	accessIssuer      *security.TokenIssuer
	refreshIssuer     *security.TokenIssuer
	events            port.EventPublisher
	logger            *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	users port.UserRepository,
	hasher *security.PasswordHasher,
	passwordValidator *security.PasswordValidator,
	accessIssuer *security.TokenIssuer,
	refreshIssuer *security.TokenIssuer,
	events port.EventPublisher,
	log *zap.Logger,
) (*AuthService, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if hasher == nil {
		hasher = security.NewPasswordHasher(security.DefaultBcryptCost)
	}
	if passwordValidator == nil {
		passwordValidator = security.DefaultPasswordValidator()
	}
	if accessIssuer == nil || refreshIssuer == nil {
		return nil, fmt.Errorf("access and refresh token issuers are required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:             users,
		hasher:            hasher,
		passwordValidator: passwordValidator,
		accessIssuer:      accessIssuer,
		refreshIssuer:     refreshIssuer,
		events:            events,
		logger:            log,
	}, nil
}

// SignUp validates the credentials, checks email availability, and creates
// the user with a hashed password. Ordering matters: the availability check
// runs before hashing, and hashing before creation. The returned user never
// carries the password hash.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (domain.User, error) {
	if err := security.ValidateEmail(email); err != nil {
		return domain.User{}, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, fmt.Errorf("%w: %v", ErrEmailLookup, err)
	}

	if err := s.passwordValidator.Validate(password); err != nil {
		return domain.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		TokenVersion: 0,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent signup can win the race between the availability
		// check and the insert; the unique constraint decides.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.publishRegistered(ctx, user)

	user.PasswordHash = ""
	return user, nil
}

// SignIn verifies the credentials and issues an access and refresh token
// pair. Missing account and wrong password both surface as
// ErrInvalidCredentials so callers cannot enumerate registered emails.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (domain.User, TokenPair, error) {
	if err := security.ValidateEmailPresent(email); err != nil {
		return domain.User{}, TokenPair{}, err
	}
	if err := security.ValidatePasswordPresent(password); err != nil {
		return domain.User{}, TokenPair{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return domain.User{}, TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Compare(password, user.PasswordHash)
	if err != nil {
		return domain.User{}, TokenPair{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return domain.User{}, TokenPair{}, ErrInvalidCredentials
	}

	accessToken, err := s.accessIssuer.Issue(user.ID, user.TokenVersion)
	if err != nil {
		return domain.User{}, TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.refreshIssuer.Issue(user.ID, user.TokenVersion)
	if err != nil {
		return domain.User{}, TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	s.publishSignedIn(ctx, *user)

	sanitized := *user
	sanitized.PasswordHash = ""

	return sanitized, TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Event publishing is fire-and-forget; a broker outage never fails the
// request that triggered the event.
func (s *AuthService) publishRegistered(ctx context.Context, user domain.User) {
	if s.events == nil {
		return
	}

	event := domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Email:        user.Email,
		RegisteredAt: user.CreatedAt,
	}
	if err := s.events.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Warn("publish user registered event failed",
			zap.String("user_id", user.ID),
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.Error(err),
		)
	}
}

func (s *AuthService) publishSignedIn(ctx context.Context, user domain.User) {
	if s.events == nil {
		return
	}

	event := domain.UserSignedInEvent{
		EventID:    uuid.NewString(),
		UserID:     user.ID,
		SignedInAt: time.Now().UTC(),
	}
	if err := s.events.PublishUserSignedIn(ctx, event); err != nil {
		s.logger.Warn("publish user signed in event failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}
