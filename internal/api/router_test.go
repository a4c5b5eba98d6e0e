package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-api/internal/api/handler"
	"github.com/99minutos/catalog-api/internal/core/domain"
	"github.com/99minutos/catalog-api/internal/core/ports"
	"github.com/99minutos/catalog-api/internal/core/service"
)

type fakeAuthService struct {
	deleted []string
}

func (f *fakeAuthService) Register(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
	return &domain.User{ID: "user-new", Email: in.Email, Roles: []string{domain.RoleUser}}, nil
}

func (f *fakeAuthService) Login(context.Context, ports.LoginInput) (*domain.AuthResult, error) {
	return nil, domain.ErrInvalidCredentials
}

func (f *fakeAuthService) CreateRole(_ context.Context, name string) (*domain.Role, error) {
	return &domain.Role{Name: name}, nil
}

func (f *fakeAuthService) ListRoles(context.Context) ([]*domain.Role, error) {
	return []*domain.Role{{Name: domain.RoleAdmin}, {Name: domain.RoleUser}}, nil
}

func (f *fakeAuthService) DeleteUser(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAuthService) AssignRole(_ context.Context, userID, role string) (*domain.User, error) {
	return &domain.User{ID: userID, Roles: []string{role}}, nil
}

func (f *fakeAuthService) RevokeRole(_ context.Context, userID, _ string) (*domain.User, error) {
	return &domain.User{ID: userID}, nil
}

type fakeProductService struct{}

func (fakeProductService) ListAll(context.Context) ([]*domain.Product, error) {
	return []*domain.Product{{ID: "p1", Name: "Widget", Price: 1}}, nil
}

func (fakeProductService) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if id != "p1" {
		return nil, domain.ErrProductNotFound
	}
	return &domain.Product{ID: "p1", Name: "Widget", Price: 1}, nil
}

func (fakeProductService) Insert(_ context.Context, in ports.ProductInput) (*domain.Product, error) {
	return &domain.Product{ID: "p2", Name: in.Name, Price: in.Price}, nil
}

func (fakeProductService) Update(_ context.Context, id string, in ports.ProductInput) (*domain.Product, error) {
	return &domain.Product{ID: id, Name: in.Name, Price: in.Price}, nil
}

func (fakeProductService) Delete(context.Context, string) error { return nil }

type routerFixture struct {
	e      *echo.Echo
	tokens *service.TokenService
	auth   *fakeAuthService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	tokens, err := service.NewTokenService(service.TokenConfig{
		SigningKey: []byte("router-test-signing-key-0123456789abcdef"),
		Issuer:     "catalog-api",
		Audience:   "catalog-clients",
		TTL:        time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	auth := &fakeAuthService{}
	e := NewRouter(Deps{
		Logger:    zerolog.Nop(),
		Tokens:    tokens,
		Auth:      handler.NewAuthHandler(auth),
		Products:  handler.NewProductHandler(fakeProductService{}),
		Readiness: map[string]handler.Check{"mongodb": func(context.Context) error { return nil }},
		Metrics:   prometheus.NewRegistry(),
	})
	return &routerFixture{e: e, tokens: tokens, auth: auth}
}

func (f *routerFixture) token(t *testing.T, roles ...string) string {
	t.Helper()
	tok, err := f.tokens.Issue(&domain.User{ID: "user-1", Email: "alice@example.com"}, roles, time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok.Value
}

func (f *routerFixture) do(method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_AccessMatrix(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.token(t, domain.RoleAdmin)
	user := f.token(t, domain.RoleUser)
	guest := f.token(t, "Guest")

	tests := []struct {
		name   string
		method string
		target string
		token  string
		body   string
		code   int
	}{
		{"list without token", http.MethodGet, "/api/product", "", "", http.StatusUnauthorized},
		{"list as user", http.MethodGet, "/api/product", user, "", http.StatusOK},
		{"list as admin", http.MethodGet, "/api/product", admin, "", http.StatusOK},
		{"list as guest", http.MethodGet, "/api/product", guest, "", http.StatusForbidden},
		{"get missing", http.MethodGet, "/api/product/nope", user, "", http.StatusNotFound},
		{"create as user", http.MethodPost, "/api/product", user, `{"name":"Gadget","price":2}`, http.StatusCreated},
		{"create invalid", http.MethodPost, "/api/product", user, `{"name":"Gadget"}`, http.StatusBadRequest},
		{"update as user", http.MethodPut, "/api/product/p1", user, `{"name":"Gadget","price":2}`, http.StatusForbidden},
		{"update as admin", http.MethodPut, "/api/product/p1", admin, `{"name":"Gadget","price":2}`, http.StatusOK},
		{"delete as user", http.MethodDelete, "/api/product/p1", user, "", http.StatusForbidden},
		{"delete as admin", http.MethodDelete, "/api/product/p1", admin, "", http.StatusNoContent},
		{"register anonymous", http.MethodPost, "/api/users/register", "", `{"email":"bob@example.com","password":"S3cret!pw"}`, http.StatusOK},
		{"login bad credentials", http.MethodPost, "/api/users/login", "", `{"email":"bob@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"roles as user", http.MethodGet, "/api/users/roles", user, "", http.StatusForbidden},
		{"roles as admin", http.MethodGet, "/api/users/roles", admin, "", http.StatusOK},
		{"create role via query", http.MethodPost, "/api/users/roles?roleName=Auditor", admin, "", http.StatusOK},
		{"me as guest", http.MethodGet, "/api/users/me", guest, "", http.StatusOK},
		{"me without token", http.MethodGet, "/api/users/me", "", "", http.StatusUnauthorized},
		{"liveness", http.MethodGet, "/health", "", "", http.StatusOK},
		{"readiness", http.MethodGet, "/health/ready", "", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.method, tt.target, tt.token, tt.body)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_UnauthorizedCarriesChallenge(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodGet, "/api/product", "not-a-jwt", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get(echo.HeaderWWWAuthenticate), "Bearer") {
		t.Fatalf("missing challenge header: %q", rec.Header().Get(echo.HeaderWWWAuthenticate))
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
		t.Fatalf("expected error envelope, got %q", rec.Body.String())
	}
}

func TestRouter_AdminDeletesUser(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodDelete, "/api/users/user-9", f.token(t, "admin"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(f.auth.deleted) != 1 || f.auth.deleted[0] != "user-9" {
		t.Fatalf("unexpected deletions: %v", f.auth.deleted)
	}
}
