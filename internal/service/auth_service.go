package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"reservaja/internal/apperror"
	"reservaja/internal/auth"
	"reservaja/internal/db"
	"reservaja/internal/entities"
	"reservaja/internal/repository"
)

const tokenType = "Bearer"

// TokenIssuer signs identity tokens for authenticated users.
type TokenIssuer interface {
	Issue(subject string, now time.Time) (string, error)
}

// AuthService handles login and registration, and resolves token subjects
// into principals for the authentication middleware.
type AuthService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	now    func() time.Time
	logger *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		now:    time.Now,
		logger: resolveLogger(logger),
	}
}

// Login checks the credentials and issues a token for the user's email.
func (s *AuthService) Login(ctx context.Context, req entities.LoginRequest) (*entities.AuthResponse, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email, s.now())
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{Token: token, TokenType: tokenType}, nil
}

// Register creates a user. The ADMIN role may only be requested by an
// administrator; actor is nil for anonymous callers.
func (s *AuthService) Register(ctx context.Context, actor *auth.Principal, req entities.RegisterRequest) (*db.User, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	role := auth.RoleUser
	if req.Role != "" {
		parsed, err := auth.ParseRole(req.Role)
		if err != nil {
			return nil, apperror.Validation([]string{"role: must be USER or ADMIN"})
		}
		role = parsed
	}
	if role == auth.RoleAdmin && (actor == nil || !actor.IsAdmin()) {
		return nil, ErrAdminRoleRequired
	}

	return s.createUser(ctx, req.Name, req.Email, req.Password, req.Phone, role)
}

// CreateAdmin creates an administrator without an acting principal. It is
// used by operator tooling only.
func (s *AuthService) CreateAdmin(ctx context.Context, name, email, password string) (*db.User, error) {
	req := entities.RegisterRequest{Name: name, Email: email, Password: password}
	if errs := req.Validate(); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}
	return s.createUser(ctx, name, email, password, "", auth.RoleAdmin)
}

func (s *AuthService) createUser(ctx context.Context, name, email, password, phone string, role auth.Role) (*db.User, error) {
	email = normalizeEmail(email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &db.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         string(role),
		Phone:        phone,
		CreatedAt:    s.now().UTC().Truncate(time.Second),
	}
	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Resolve maps a verified token subject to a principal.
func (s *AuthService) Resolve(ctx context.Context, subject string) (auth.Principal, error) {
	user, err := s.users.FindByEmail(ctx, subject)
	if err != nil {
		return auth.Principal{}, err
	}
	if user == nil {
		s.logger.DebugContext(ctx, "token subject has no user", "subject", subject)
		return auth.Principal{}, auth.ErrPrincipalNotFound
	}
	role, err := auth.ParseRole(user.Role)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("user %d: %w", user.ID, err)
	}
	return auth.Principal{UserID: user.ID, Subject: user.Email, Role: role}, nil
}

// Me returns the user behind the principal.
func (s *AuthService) Me(ctx context.Context, principal auth.Principal) (*entities.UserResponse, error) {
	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return toUserResponse(user), nil
}

func toUserResponse(u *db.User) *entities.UserResponse {
	return &entities.UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Phone: u.Phone,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
