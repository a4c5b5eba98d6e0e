package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-api/internal/core/domain"
	"github.com/99minutos/catalog-api/internal/core/ports"
)

const compensationTimeout = 10 * time.Second

var inputValidator = validator.New()

// AuthService orchestrates registration, login and administrative user and
// role management over the credential store, role registry and token issuer.
type AuthService struct {
	credentials *CredentialStore
	roles       *RoleRegistry
	tokens      ports.TokenIssuer
	log         zerolog.Logger

	lockout     ports.LockoutStore
	audit       ports.AuditRecorder
	compensator ports.Compensator
	now         func() time.Time
}

func NewAuthService(credentials *CredentialStore, roles *RoleRegistry, tokens ports.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{
		credentials: credentials,
		roles:       roles,
		tokens:      tokens,
		log:         log,
		now:         time.Now,
	}
}

// WithLockout enables brute-force lockout on login.
func (s *AuthService) WithLockout(store ports.LockoutStore) *AuthService {
	s.lockout = store
	return s
}

// WithAudit records auth events. Failures to record are logged, not returned.
func (s *AuthService) WithAudit(recorder ports.AuditRecorder) *AuthService {
	s.audit = recorder
	return s
}

// WithCompensator hands failed registration rollbacks to a retry worker.
func (s *AuthService) WithCompensator(c ports.Compensator) *AuthService {
	s.compensator = c
	return s
}

// WithClock overrides the time source used for token issuance.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Register creates an identity and, when a role is supplied, makes sure the
// role exists and assigns it. A role that already exists, including one
// created concurrently, counts as success here. If the role step fails the
// identity is deleted again so registration is all-or-nothing.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(in.Email)
	fields := map[string]string{}
	if err := inputValidator.Var(email, "required,email"); err != nil {
		fields["email"] = "must be a valid email"
	}
	if in.Password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(domain.ErrValidation, fields)
	}

	user, err := s.credentials.Create(ctx, email, in.Password, nil)
	if err != nil {
		return nil, translateStoreError(s.log, "register.create", err)
	}

	if role := strings.TrimSpace(in.Role); role != "" {
		if err := s.grantRegistrationRole(ctx, user, role); err != nil {
			s.rollbackRegistration(ctx, user.ID, err)
			return nil, translateStoreError(s.log, "register.role", err)
		}
	}

	s.record(ctx, domain.AuditRegister, user.ID, strings.Join(user.Roles, ","))
	s.log.Info().Str("user_id", user.ID).Strs("roles", user.Roles).Msg("user registered")
	return user, nil
}

func (s *AuthService) grantRegistrationRole(ctx context.Context, user *domain.User, name string) error {
	exists, err := s.roles.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		if _, err := s.roles.Create(ctx, name); err != nil && !errors.Is(err, domain.ErrRoleAlreadyExists) {
			return err
		}
	}

	role, err := s.roles.Find(ctx, name)
	if err != nil {
		return err
	}
	return s.credentials.AssignRole(ctx, user, role.Name)
}

// rollbackRegistration deletes a half-registered identity. It runs detached
// from ctx so a disconnected client does not leave the identity behind.
func (s *AuthService) rollbackRegistration(ctx context.Context, userID string, cause error) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if _, err := s.credentials.Delete(cctx, userID); err != nil {
		s.log.Error().Err(err).AnErr("cause", cause).Str("user_id", userID).Msg("registration rollback failed")
		if s.compensator != nil {
			s.compensator.EnqueueDeletion(userID)
		}
		return
	}
	s.log.Warn().Err(cause).Str("user_id", userID).Msg("registration rolled back")
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password produce the same error after the same amount of hashing work.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.AuthResult, error) {
	key := domain.NormalizeEmail(in.Email)
	if key == "" || in.Password == "" {
		s.credentials.VerifyPassword(nil, in.Password)
		return nil, domain.ErrInvalidCredentials
	}

	if s.lockout != nil {
		locked, err := s.lockout.Locked(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Msg("lockout check failed, continuing")
		} else if locked {
			s.record(ctx, domain.AuditLoginFailure, key, "locked")
			return nil, domain.ErrAccountLocked
		}
	}

	user, err := s.credentials.FindByEmail(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, translateStoreError(s.log, "login.find", err)
	}

	if !s.credentials.VerifyPassword(user, in.Password) {
		s.recordLoginFailure(ctx, key)
		return nil, domain.ErrInvalidCredentials
	}

	if s.lockout != nil {
		if err := s.lockout.Clear(ctx, key); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear lockout state")
		}
	}

	roles := append([]string{}, user.Roles...)
	token, err := s.tokens.Issue(user, roles, s.now())
	if err != nil {
		return nil, translateStoreError(s.log, "login.issue", err)
	}

	s.record(ctx, domain.AuditLoginSuccess, user.ID, "")
	return &domain.AuthResult{
		Token:         token,
		UserID:        user.ID,
		Email:         user.Email,
		RequestedRole: strings.TrimSpace(in.Role),
		Roles:         roles,
	}, nil
}

func (s *AuthService) recordLoginFailure(ctx context.Context, key string) {
	s.record(ctx, domain.AuditLoginFailure, key, "")
	if s.lockout == nil {
		return
	}
	locked, err := s.lockout.RecordFailure(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
		return
	}
	if locked {
		s.log.Warn().Str("email", key).Msg("login locked after repeated failures")
	}
}

// CreateRole is the administrative path: unlike registration, an existing
// role is reported as a conflict.
func (s *AuthService) CreateRole(ctx context.Context, name string) (*domain.Role, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrInvalidRoleName
	}

	exists, err := s.roles.Exists(ctx, name)
	if err != nil {
		return nil, translateStoreError(s.log, "role.exists", err)
	}
	if exists {
		return nil, domain.ErrRoleAlreadyExists
	}

	role, err := s.roles.Create(ctx, name)
	if err != nil {
		return nil, translateStoreError(s.log, "role.create", err)
	}

	s.record(ctx, domain.AuditRoleCreated, role.Name, "")
	return role, nil
}

func (s *AuthService) ListRoles(ctx context.Context) ([]*domain.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, translateStoreError(s.log, "role.list", err)
	}
	return roles, nil
}

func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrUserNotFound
	}

	deleted, err := s.credentials.Delete(ctx, id)
	if err != nil {
		return translateStoreError(s.log, "user.delete", err)
	}
	if !deleted {
		return domain.ErrUserNotFound
	}

	s.record(ctx, domain.AuditUserDeleted, id, "")
	return nil
}

// AssignRole grants an existing role to an existing user. Tokens issued
// before the change keep their old roles until the user logs in again.
func (s *AuthService) AssignRole(ctx context.Context, userID, roleName string) (*domain.User, error) {
	role, err := s.roles.Find(ctx, roleName)
	if err != nil {
		return nil, translateStoreError(s.log, "user.assign.role", err)
	}

	user, err := s.credentials.FindByID(ctx, userID)
	if err != nil {
		return nil, translateStoreError(s.log, "user.assign.find", err)
	}

	if err := s.credentials.AssignRole(ctx, user, role.Name); err != nil {
		return nil, translateStoreError(s.log, "user.assign", err)
	}

	s.record(ctx, domain.AuditRoleAssigned, user.ID, role.Name)
	return user, nil
}

func (s *AuthService) RevokeRole(ctx context.Context, userID, roleName string) (*domain.User, error) {
	if strings.TrimSpace(roleName) == "" {
		return nil, domain.ErrInvalidRoleName
	}

	user, err := s.credentials.FindByID(ctx, userID)
	if err != nil {
		return nil, translateStoreError(s.log, "user.revoke.find", err)
	}

	if err := s.credentials.RevokeRole(ctx, user, strings.TrimSpace(roleName)); err != nil {
		return nil, translateStoreError(s.log, "user.revoke", err)
	}

	s.record(ctx, domain.AuditRoleRevoked, user.ID, roleName)
	return user, nil
}

func (s *AuthService) record(ctx context.Context, action domain.AuditAction, subject, detail string) {
	if s.audit == nil {
		return
	}
	event := &domain.AuditEvent{
		Action:    action,
		Subject:   subject,
		Detail:    detail,
		Timestamp: s.now().UTC(),
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("action", string(action)).Msg("failed to record audit event")
	}
}
