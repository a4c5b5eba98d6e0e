package mongo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/99minutos/catalog-api/internal/core/domain"
)

func TestClassify(t *testing.T) {
	if classify("op", nil) != nil {
		t.Fatalf("nil must stay nil")
	}

	err := classify("find user", fmt.Errorf("wrapped: %w", context.DeadlineExceeded))
	if !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}

	cause := errors.New("boom")
	err = classify("find user", cause)
	if errors.Is(err, domain.ErrTransient) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestOpTimeout(t *testing.T) {
	if opTimeout(0) != defaultTimeout {
		t.Fatalf("expected default timeout")
	}
	if opTimeout(time.Second) != time.Second {
		t.Fatalf("expected explicit timeout")
	}
}

func TestMongoUser_ToDomain(t *testing.T) {
	mu := mongoUser{ID: "u1", Email: "A@x.com", NormalizedEmail: "a@x.com", CreatedAt: 1700000000}
	u := mu.toDomain()
	if u.Roles == nil {
		t.Fatalf("roles must be an empty slice, not nil")
	}
	if !u.CreatedAt.Equal(time.Unix(1700000000, 0)) || !u.UpdatedAt.IsZero() {
		t.Fatalf("unexpected timestamps: %v %v", u.CreatedAt, u.UpdatedAt)
	}
}
