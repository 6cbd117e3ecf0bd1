package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"auth_service/internal/cache"
	"auth_service/internal/events"
	"auth_service/internal/model"
	"auth_service/internal/repository"
	"auth_service/internal/utils"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this email or phone number already exists")
	ErrRoleAlreadyExists  = errors.New("role with this name already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden: insufficient permissions")
	ErrInvalidRoleName    = errors.New("role name must not be blank")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

const maxPasswordBytes = 72

// AuthService provides registration, login, token lifecycle and role management
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, *utils.TokenPair, error)
	Authenticate(ctx context.Context, token, tokenType string) (*model.User, error)
	IssueTokens(ctx context.Context, user *model.User) (*utils.TokenPair, error)
	ListUsers(ctx context.Context) ([]model.UserProfile, error)
	AddRole(ctx context.Context, name string) (*model.Role, error)
	GetRole(ctx context.Context, name string) (*model.Role, error)
}

// Options carries the optional collaborators of the auth service
type Options struct {
	// InitialAdminEmail gets the admin role attached at registration
	InitialAdminEmail string
	Cache             cache.ProfileCache
	Publisher         events.Publisher
}

type authService struct {
	userRepo          repository.UserRepository
	roleRepo          repository.RoleRepository
	jwtUtil           *utils.JWTUtil
	logger            *slog.Logger
	cache             cache.ProfileCache
	publisher         events.Publisher
	initialAdminEmail string

	dummyHashOnce sync.Once
	dummyHash     string
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, jwtUtil *utils.JWTUtil, logger *slog.Logger, opts Options) AuthService {
	s := &authService{
		userRepo:          userRepo,
		roleRepo:          roleRepo,
		jwtUtil:           jwtUtil,
		logger:            logger.With("component", "auth_service"),
		cache:             opts.Cache,
		publisher:         opts.Publisher,
		initialAdminEmail: normalizeEmail(opts.InitialAdminEmail),
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	if s.publisher == nil {
		s.publisher = events.Noop{}
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account. Both pre-checks are advisory; the
// unique constraints in the store decide races.
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	email := normalizeEmail(req.Email)
	phone := strings.TrimSpace(req.PhoneNumber)

	// binding counts runes, bcrypt counts bytes
	if len(req.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	existing, err = s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing phone number: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PhoneNumber:  phone,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hashedPassword,
	}

	roles := []string{model.RoleUser}
	if s.initialAdminEmail != "" && email == s.initialAdminEmail {
		roles = append(roles, model.RoleAdmin)
		s.logger.Info("registering initial admin", "email", email)
	}

	if err := s.userRepo.Create(ctx, user, roles...); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}
	for _, name := range roles {
		user.Roles = append(user.Roles, model.Role{Name: name})
	}

	s.publish(ctx, events.Event{Type: events.TypeUserRegistered, UserID: user.ID, Email: user.Email})
	return user, nil
}

// Login checks credentials and issues a token pair. Unknown email and wrong
// password return the same error and take comparable time.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, *utils.TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, nil, fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		utils.CheckPasswordHash(password, s.fakeHash())
		return nil, nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.jwtUtil.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.publish(ctx, events.Event{Type: events.TypeUserLoggedIn, UserID: user.ID, Email: user.Email})
	return user, pair, nil
}

// Authenticate validates a token of the given type and resolves its user.
// Every failure is reported as ErrUnauthorized.
func (s *authService) Authenticate(ctx context.Context, token, tokenType string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	claims, err := s.jwtUtil.ValidateToken(token, tokenType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	if user, ok := s.cache.Get(ctx, claims.UserID); ok {
		return user, nil
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d no longer exists", ErrUnauthorized, claims.UserID)
	}

	s.cache.Set(ctx, user)
	return user, nil
}

// IssueTokens mints a fresh pair for an already authenticated user. Used by
// refresh; the presented refresh token stays valid until it expires.
func (s *authService) IssueTokens(_ context.Context, user *model.User) (*utils.TokenPair, error) {
	pair, err := s.jwtUtil.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return pair, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]model.UserProfile, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	profiles := make([]model.UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	return profiles, nil
}

// AddRole creates a role record. It does not attach the role to any user.
func (s *authService) AddRole(ctx context.Context, name string) (*model.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidRoleName
	}

	existing, err := s.roleRepo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing role: %w", err)
	}
	if existing != nil {
		return nil, ErrRoleAlreadyExists
	}

	role := &model.Role{Name: name}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, ErrRoleAlreadyExists
		}
		return nil, fmt.Errorf("failed to create role in repository: %w", err)
	}

	s.publish(ctx, events.Event{Type: events.TypeRoleCreated, Role: role.Name})
	return role, nil
}

// GetRole returns the named role, or nil if it does not exist
func (s *authService) GetRole(ctx context.Context, name string) (*model.Role, error) {
	role, err := s.roleRepo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("failed to find role: %w", err)
	}
	return role, nil
}

func (s *authService) publish(ctx context.Context, event events.Event) {
	event.OccurredAt = time.Now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "type", event.Type, "error", err)
	}
}

// fakeHash is compared against when the email is unknown
func (s *authService) fakeHash() string {
	s.dummyHashOnce.Do(func() {
		h, err := utils.HashPassword("not-a-real-password")
		if err != nil {
			s.logger.Error("failed to build dummy hash", "error", err)
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
