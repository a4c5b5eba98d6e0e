package ports

import (
	"context"
	"time"

	"github.com/99minutos/catalog-api/internal/core/domain"
)

// TokenIssuer signs claims for a verified identity.
type TokenIssuer interface {
	Issue(user *domain.User, roles []string, now time.Time) (domain.Token, error)
}

// TokenValidator verifies an inbound token and extracts its claims.
type TokenValidator interface {
	Validate(token string, now time.Time) (*domain.Claims, error)
}

// LockoutStore counts failed logins per key.
type LockoutStore interface {
	Locked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) (locked bool, err error)
	Clear(ctx context.Context, key string) error
}

// AuditRecorder appends auth events to the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, event *domain.AuditEvent) error
}

// Compensator retries the deletion of an identity whose registration could
// not be completed.
type Compensator interface {
	EnqueueDeletion(userID string)
}
