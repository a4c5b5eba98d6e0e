package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/catalog-api/internal/core/domain"
	"github.com/99minutos/catalog-api/internal/core/ports"
)

// CredentialStore owns identities: it hashes passwords on the way in and
// verifies them on login. Persistence is delegated to a UserRepository.
type CredentialStore struct {
	repo   ports.UserRepository
	policy domain.PasswordPolicy
	cost   int

	// dummyHash is compared against when no identity matched, so an unknown
	// email costs the same bcrypt round as a wrong password.
	dummyHash []byte
}

func NewCredentialStore(repo ports.UserRepository, policy domain.PasswordPolicy, cost int) (*CredentialStore, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}

	return &CredentialStore{repo: repo, policy: policy, cost: cost, dummyHash: dummy}, nil
}

// FindByEmail looks an identity up case-insensitively.
func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
}

func (s *CredentialStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Create checks the password policy, hashes the password and persists a new
// identity holding roles.
func (s *CredentialStore) Create(ctx context.Context, email, password string, roles []string) (*domain.User, error) {
	if err := s.policy.Check(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.NewValidationError(domain.ErrWeakCredential, map[string]string{
				"password": "must be at most 72 bytes",
			})
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:              uuid.NewString(),
		Email:           strings.TrimSpace(email),
		NormalizedEmail: domain.NormalizeEmail(email),
		PasswordHash:    string(hash),
		Roles:           append([]string{}, roles...),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	return s.repo.Create(ctx, user)
}

// VerifyPassword compares plaintext with the stored hash in constant time.
// A nil user always fails, after spending the same work as a real check.
func (s *CredentialStore) VerifyPassword(user *domain.User, plaintext string) bool {
	hash := s.dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	err := bcrypt.CompareHashAndPassword(hash, []byte(plaintext))
	return user != nil && err == nil
}

// Delete reports false when no identity has the given id.
func (s *CredentialStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AssignRole adds role to user, both in storage and on the passed value.
func (s *CredentialStore) AssignRole(ctx context.Context, user *domain.User, role string) error {
	if user.HasRole(role) {
		return nil
	}
	if err := s.repo.AddRole(ctx, user.ID, role); err != nil {
		return err
	}
	user.Roles = append(user.Roles, role)
	return nil
}

// RevokeRole removes role from user, both in storage and on the passed value.
func (s *CredentialStore) RevokeRole(ctx context.Context, user *domain.User, role string) error {
	stored := ""
	for _, r := range user.Roles {
		if strings.EqualFold(r, role) {
			stored = r
			break
		}
	}
	if stored == "" {
		return nil
	}
	if err := s.repo.RemoveRole(ctx, user.ID, stored); err != nil {
		return err
	}
	kept := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		if r != stored {
			kept = append(kept, r)
		}
	}
	user.Roles = kept
	return nil
}
