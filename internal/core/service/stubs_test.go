package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/99minutos/catalog-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories. Guarded by a mutex so tests can exercise
// concurrent registration the way the unique indexes would.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]string

	findErr    error
	addRoleErr error
	deleteErr  error
	deletes    int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]string{}, u.Roles...)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.NormalizedEmail]; exists {
		return nil, domain.ErrDuplicateEmail
	}
	r.byID[user.ID] = cloneUser(user)
	r.byEmail[user.NormalizedEmail] = user.ID
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, normalizedEmail string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	id, ok := r.byEmail[normalizedEmail]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.deleteErr != nil {
		return r.deleteErr
	}
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byEmail, u.NormalizedEmail)
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) AddRole(_ context.Context, id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addRoleErr != nil {
		return r.addRoleErr
	}
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Roles = append(u.Roles, role)
	return nil
}

func (r *stubUserRepo) RemoveRole(_ context.Context, id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	kept := u.Roles[:0]
	for _, existing := range u.Roles {
		if existing != role {
			kept = append(kept, existing)
		}
	}
	u.Roles = kept
	return nil
}

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type stubRoleRepo struct {
	mu        sync.Mutex
	roles     map[string]*domain.Role
	createErr error
	existsErr error
}

func newStubRoleRepo(names ...string) *stubRoleRepo {
	r := &stubRoleRepo{roles: make(map[string]*domain.Role)}
	for _, n := range names {
		r.roles[domain.NormalizeRoleName(n)] = &domain.Role{Name: n, NormalizedName: domain.NormalizeRoleName(n)}
	}
	return r
}

func (r *stubRoleRepo) Exists(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, ok := r.roles[key]
	return ok, nil
}

func (r *stubRoleRepo) FindByName(_ context.Context, key string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[key]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	clone := *role
	return &clone, nil
}

func (r *stubRoleRepo) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.roles[role.NormalizedName]; ok {
		return nil, domain.ErrRoleAlreadyExists
	}
	clone := *role
	r.roles[role.NormalizedName] = &clone
	return role, nil
}

func (r *stubRoleRepo) List(_ context.Context) ([]*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		clone := *role
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubRoleRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.roles)
}

type stubLockout struct {
	mu        sync.Mutex
	threshold int
	failures  map[string]int
}

func newStubLockout(threshold int) *stubLockout {
	return &stubLockout{threshold: threshold, failures: make(map[string]int)}
}

func (l *stubLockout) Locked(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failures[key] >= l.threshold, nil
}

func (l *stubLockout) RecordFailure(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[key]++
	return l.failures[key] >= l.threshold, nil
}

func (l *stubLockout) Clear(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, key)
	return nil
}

type stubAudit struct {
	mu     sync.Mutex
	events []domain.AuditAction
	stamps []time.Time
}

func (a *stubAudit) Record(_ context.Context, e *domain.AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e.Action)
	a.stamps = append(a.stamps, e.Timestamp)
	return nil
}

func (a *stubAudit) has(action domain.AuditAction) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.events {
		if e == action {
			return true
		}
	}
	return false
}

type stubCompensator struct {
	mu      sync.Mutex
	pending []string
}

func (c *stubCompensator) EnqueueDeletion(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, userID)
}

type stubProductRepo struct {
	products map[string]*domain.Product
	err      error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) List(_ context.Context) ([]*domain.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].ID, out[j].ID) < 0 })
	return out, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) Insert(_ context.Context, p *domain.Product) error {
	if r.err != nil {
		return r.err
	}
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
