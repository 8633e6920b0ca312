package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	identitydomain "github.com/OmarHalima/workforce-console/internal/identity/domain"
	"github.com/OmarHalima/workforce-console/internal/security"
	"github.com/OmarHalima/workforce-console/internal/server/httpctx"
	sessiondomain "github.com/OmarHalima/workforce-console/internal/session/domain"
	userdomain "github.com/OmarHalima/workforce-console/internal/user/domain"
)

// Sentinel errors for auth service; handler maps them to HTTP status codes.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidRefreshToken    = errors.New("invalid or expired refresh token")
	ErrRefreshTokenReuse      = errors.New("refresh token reuse detected; all sessions revoked")
)

// AuthResult holds the outcome of Register (user id only), Login, or Refresh.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
	Role         userdomain.Role
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	SetStatus(ctx context.Context, id string, status userdomain.UserStatus) error
}

// IdentityRepo is the minimal identity repository needed by the auth service.
type IdentityRepo interface {
	GetByUserAndProvider(ctx context.Context, userID string, provider identitydomain.IdentityProvider) (*identitydomain.Identity, error)
	Create(ctx context.Context, i *identitydomain.Identity) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, id string) error
	RevokeAllByUser(ctx context.Context, userID string) error
	UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}

// AuthService implements password register, login, refresh, and logout.
// New registrations start as employees; an admin promotes them afterwards.
type AuthService struct {
	userRepo     UserRepo
	identityRepo IdentityRepo
	sessionRepo  SessionRepo
	hasher       *security.Hasher
	tokens       *security.TokenProvider
	refreshTTL   time.Duration
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(
	userRepo UserRepo,
	identityRepo IdentityRepo,
	sessionRepo SessionRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	refreshTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		identityRepo: identityRepo,
		sessionRepo:  sessionRepo,
		hasher:       hasher,
		tokens:       tokens,
		refreshTTL:   refreshTTL,
	}
}

// Register creates a user and local identity with the given email and password.
// When the email belongs to an admin-created pending account with no
// credentials yet, the identity attaches to that account and activates it.
// Returns AuthResult with UserID only; the caller must Login to get tokens.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.activateInvited(ctx, existing, password)
	}
	userID := uuid.New().String()
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:        userID,
		Email:     email,
		Name:      strings.TrimSpace(name),
		Role:      userdomain.RoleEmployee,
		Status:    userdomain.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	identity := &identitydomain.Identity{
		ID:           uuid.New().String(),
		UserID:       userID,
		Provider:     identitydomain.IdentityProviderLocal,
		ProviderID:   email,
		PasswordHash: hashed,
		CreatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.identityRepo.Create(ctx, identity); err != nil {
		return nil, err
	}
	return &AuthResult{UserID: userID, Role: user.Role}, nil
}

// activateInvited attaches a local identity to an admin-created user that has
// none yet and marks the account active. Any other existing account means the
// email is taken.
func (s *AuthService) activateInvited(ctx context.Context, user *userdomain.User, password string) (*AuthResult, error) {
	ident, err := s.identityRepo.GetByUserAndProvider(ctx, user.ID, identitydomain.IdentityProviderLocal)
	if err != nil {
		return nil, err
	}
	if ident != nil || user.Status != userdomain.UserStatusPending {
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	err = s.identityRepo.Create(ctx, &identitydomain.Identity{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		Provider:     identitydomain.IdentityProviderLocal,
		ProviderID:   user.Email,
		PasswordHash: hashed,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetStatus(ctx, user.ID, userdomain.UserStatusActive); err != nil {
		return nil, err
	}
	return &AuthResult{UserID: user.ID, Role: user.Role}, nil
}

// Login authenticates with email/password, creates a session, and returns tokens.
// ip is recorded on the session for audit; empty is allowed.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.UserStatusActive {
		return nil, ErrInvalidCredentials
	}
	ident, err := s.identityRepo.GetByUserAndProvider(ctx, user.ID, identitydomain.IdentityProviderLocal)
	if err != nil {
		return nil, err
	}
	if ident == nil || ident.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(ident.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	sessionID := uuid.New().String()
	now := time.Now().UTC()
	refreshToken, jti, _, err := s.tokens.IssueRefresh(sessionID, user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	accessToken, _, accessExp, err := s.tokens.IssueAccess(sessionID, user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	sess := &sessiondomain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		ExpiresAt:        now.Add(s.refreshTTL),
		IPAddress:        ip,
		RefreshJti:       jti,
		RefreshTokenHash: security.HashRefreshToken(refreshToken),
		CreatedAt:        now,
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
		UserID:       user.ID,
		Role:         user.Role,
	}, nil
}

// Refresh validates the refresh token, rotates it, and returns new tokens.
// Presenting a stale jti revokes every session of the user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	sessionID, jti, userID, role, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if sess == nil || !sess.Active(now) {
		return nil, ErrInvalidRefreshToken
	}
	if sess.RefreshJti != jti {
		_ = s.sessionRepo.RevokeAllByUser(ctx, userID)
		return nil, ErrRefreshTokenReuse
	}
	if sess.RefreshTokenHash != "" && !security.RefreshTokenHashEqual(refreshToken, sess.RefreshTokenHash) {
		return nil, ErrInvalidRefreshToken
	}
	_ = s.sessionRepo.UpdateLastSeen(ctx, sessionID, now)
	newRefresh, newJti, _, err := s.tokens.IssueRefresh(sessionID, userID, role)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.UpdateRefreshToken(ctx, sessionID, newJti, security.HashRefreshToken(newRefresh)); err != nil {
		return nil, err
	}
	accessToken, _, accessExp, err := s.tokens.IssueAccess(sessionID, userID, role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    accessExp,
		UserID:       userID,
		Role:         userdomain.Role(role),
	}, nil
}

// Logout revokes the session identified by the refresh token or, when the
// token is empty, the session the auth middleware put in context. No-op when
// neither identifies a session.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		sessionID, _, _, _, err := s.tokens.ValidateRefresh(refreshToken)
		if err != nil {
			return nil
		}
		return s.sessionRepo.Revoke(ctx, sessionID)
	}
	sessionID, ok := httpctx.GetSessionID(ctx)
	if !ok {
		return nil
	}
	return s.sessionRepo.Revoke(ctx, sessionID)
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters")
	}
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		case r < '0' || (r > '9' && r < 'A') || (r > 'Z' && r < 'a') || r > 'z':
			hasSymbol = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return errors.New("password must contain at least one number")
	}
	if !hasSymbol {
		return errors.New("password must contain at least one symbol")
	}
	return nil
}
