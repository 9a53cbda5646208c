package identity

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"loantrack/internal/domain/apperr"
	"loantrack/internal/domain/identity"
	"loantrack/pkg/id"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 8
	// bcrypt only reads the first 72 bytes
	maxPasswordBytes = 72
)

// Service owns accounts, credentials and bearer tokens.
type Service struct {
	users    identity.Repository
	tokens   *Tokens
	log      *zap.Logger
	hashCost int
}

func NewService(users identity.Repository, tokens *Tokens, log *zap.Logger) *Service {
	return &Service{users: users, tokens: tokens, log: log, hashCost: bcrypt.DefaultCost}
}

// Register creates a USER account and signs the caller in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	u, err := s.createUser(ctx, identity.RoleUser, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.UserID))
	return s.issue(u)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, identity.ErrUserNotFound):
		return nil, apperr.Authentication("invalid email or password")
	case err != nil:
		return nil, apperr.Store("load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, apperr.Authentication("invalid email or password")
	}
	return s.issue(u)
}

// Resolve verifies a bearer token and re-reads the account, so deletions
// and role changes apply to tokens already issued. Stored roles are
// matched case-insensitively.
func (s *Service) Resolve(ctx context.Context, token string) (identity.Subject, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return identity.Subject{}, apperr.Authentication("invalid or expired token")
	}
	u, err := s.users.GetByUserID(ctx, claims.Subject)
	switch {
	case errors.Is(err, identity.ErrUserNotFound):
		return identity.Subject{}, apperr.Authentication("account no longer exists")
	case err != nil:
		return identity.Subject{}, apperr.Store("load user", err)
	}
	role, ok := identity.ParseRole(string(u.Role))
	if !ok {
		s.log.Warn("account has unknown role", zap.String("user_id", u.UserID), zap.String("role", string(u.Role)))
		return identity.Subject{}, apperr.Authentication("account has no usable role")
	}
	return identity.Subject{ID: u.UserID, Role: role}, nil
}

// CreateStaff lets an admin add verifiers and other admins.
func (s *Service) CreateStaff(ctx context.Context, actor identity.Subject, role identity.Role, in RegisterInput) (*UserDTO, error) {
	if actor.Role != identity.RoleAdmin {
		return nil, apperr.Authorization("only admins can create staff accounts")
	}
	if !role.Staff() {
		return nil, apperr.Validation("role", "must be VERIFIER or ADMIN")
	}
	u, err := s.createUser(ctx, role, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("staff account created",
		zap.String("user_id", u.UserID),
		zap.String("role", string(role)),
		zap.String("created_by", actor.ID),
	)
	dto := toUserDTO(u)
	return &dto, nil
}

func (s *Service) ListUsers(ctx context.Context, actor identity.Subject) ([]UserDTO, error) {
	if actor.Role != identity.RoleAdmin {
		return nil, apperr.Authorization("only admins can list users")
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Store("list users", err)
	}
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, toUserDTO(&users[i]))
	}
	return out, nil
}

func (s *Service) DeleteUser(ctx context.Context, actor identity.Subject, userID string) error {
	if actor.Role != identity.RoleAdmin {
		return apperr.Authorization("only admins can delete users")
	}
	if userID == actor.ID {
		return apperr.Validation("user_id", "admins cannot delete their own account")
	}
	err := s.users.SoftDelete(ctx, userID, actor.ID)
	switch {
	case errors.Is(err, identity.ErrUserNotFound):
		return apperr.NotFound("user not found")
	case err != nil:
		return apperr.Store("delete user", err)
	}
	s.log.Info("user deleted", zap.String("user_id", userID), zap.String("deleted_by", actor.ID))
	return nil
}

// Lookup resolves display identities, including deleted accounts.
func (s *Service) Lookup(ctx context.Context, userIDs []string) (map[string]identity.Profile, error) {
	users, err := s.users.FindByUserIDs(ctx, dedupe(userIDs))
	if err != nil {
		return nil, err
	}
	out := make(map[string]identity.Profile, len(users))
	for i := range users {
		out[users[i].UserID] = users[i].Profile()
	}
	return out, nil
}

// EnsureAdmin seeds the first admin account. It is a no-op once any admin exists.
func (s *Service) EnsureAdmin(ctx context.Context, in RegisterInput) (bool, error) {
	n, err := s.users.CountByRole(ctx, identity.RoleAdmin)
	if err != nil {
		return false, apperr.Store("count admins", err)
	}
	if n > 0 {
		return false, nil
	}
	u, err := s.createUser(ctx, identity.RoleAdmin, in)
	if err != nil {
		return false, err
	}
	s.log.Info("seeded admin account", zap.String("user_id", u.UserID), zap.String("email", u.Email))
	return true, nil
}

func (s *Service) createUser(ctx context.Context, role identity.Role, in RegisterInput) (*identity.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		return nil, apperr.Validation("name", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, apperr.Validation("email", "must be a valid email address")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Validation("password", "must be at least 8 characters")
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, apperr.Validation("password", "must be at most 72 bytes")
	}

	switch _, err := s.users.GetByEmail(ctx, email); {
	case err == nil:
		return nil, apperr.Conflict("email already registered")
	case !errors.Is(err, identity.ErrUserNotFound):
		return nil, apperr.Store("check email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, apperr.Store("hash password", err)
	}
	u := &identity.User{
		UserID:       id.NewID32(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	switch err := s.users.Create(ctx, u); {
	case errors.Is(err, identity.ErrEmailTaken):
		return nil, apperr.Conflict("email already registered")
	case err != nil:
		return nil, apperr.Store("create user", err)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return u, nil
}

func (s *Service) issue(u *identity.User) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(u.UserID, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: toUserDTO(u)}, nil
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
