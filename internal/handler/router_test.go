package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/handler"
	"github.com/stewardapp/steward-go/internal/infra/cache"
	"github.com/stewardapp/steward-go/internal/infra/client"
	"github.com/stewardapp/steward-go/internal/infra/observability"
	"github.com/stewardapp/steward-go/internal/port"
	"github.com/stewardapp/steward-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// stubStore overrides only the LedgerStore methods the routes under test
// reach; everything else panics via the nil embedded interface.
type stubStore struct {
	port.LedgerStore
	churches     []domain.Church
	funds        []domain.Fund
	transactions []domain.Transaction
	pledges      []domain.Pledge
	listErr      error
}

func (s *stubStore) ListChurches(_ context.Context) ([]domain.Church, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.churches, nil
}

func (s *stubStore) ListFunds(_ context.Context, churchID string, _ bool) ([]domain.Fund, error) {
	var out []domain.Fund
	for _, f := range s.funds {
		if f.ChurchID == churchID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *stubStore) ListTransactions(_ context.Context, churchID string, _ domain.TransactionFilter) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, tx := range s.transactions {
		if tx.ChurchID == churchID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *stubStore) ListPledges(_ context.Context, churchID string) ([]domain.Pledge, error) {
	return s.pledges, nil
}

func (s *stubStore) GetDonor(_ context.Context, _, donorID string) (*domain.Donor, error) {
	return nil, &domain.ErrNotFound{Resource: "donor", ID: donorID}
}

// stubAuthStore holds users in memory, keyed by email.
type stubAuthStore struct {
	users map[string]*domain.User
}

func (s *stubAuthStore) GetUserByID(_ context.Context, userID string) (*domain.User, error) {
	for _, u := range s.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
}

func (s *stubAuthStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: email}
}

func (s *stubAuthStore) CreateChurchWithAdmin(_ context.Context, _ *domain.RegisterRequest, _ string) (*domain.RegisterResponse, error) {
	return &domain.RegisterResponse{ChurchID: "ch-new", UserID: "u-new"}, nil
}

func (s *stubAuthStore) UpdateUser(_ context.Context, _ string, _ map[string]any) error {
	return nil
}

func (s *stubAuthStore) StoreRefreshToken(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}

func (s *stubAuthStore) GetRefreshToken(_ context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	return nil, &domain.ErrNotFound{Resource: "refresh_token", ID: tokenHash}
}

func (s *stubAuthStore) RevokeRefreshToken(_ context.Context, _ string) error { return nil }

func (s *stubAuthStore) RevokeAllRefreshTokens(_ context.Context, _ string) error { return nil }

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(hash)
}

func newTestRouter(t *testing.T, store *stubStore, authStore *stubAuthStore) (http.Handler, *service.AuthService) {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	c := cache.New[[]domain.FundOverview](time.Minute)
	t.Cleanup(c.Close)

	authSvc := service.NewAuthService(authStore, "test-secret", 15*time.Minute, time.Hour, logger)
	router := handler.NewRouter(handler.Services{
		Overview:   service.NewOverviewService(store, c, metrics, logger, 2),
		Ledger:     service.NewLedgerService(store, c, metrics, logger),
		Balance:    service.NewBalanceService(store, logger),
		Reports:    service.NewReportService(store, logger),
		Categorize: service.NewCategorizeService(store, client.DisabledCategorizer{}, metrics, logger),
		Auth:       authSvc,
		Store:      store,
	}, metrics, logger)
	return router, authSvc
}

func loginToken(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()
	body := strings.NewReader(`{"email":"` + email + `","password":"` + password + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.AccessToken
}

func testAuthStore(t *testing.T) *stubAuthStore {
	hash := hashPassword(t, "correct horse battery")
	return &stubAuthStore{users: map[string]*domain.User{
		"admin@example.org": {
			ID: "u1", ChurchID: "ch1", Email: "admin@example.org",
			Role: domain.RoleAdmin, PasswordHash: hash,
		},
		"viewer@example.org": {
			ID: "u2", ChurchID: "ch1", Email: "viewer@example.org",
			Role: domain.RoleViewer, PasswordHash: hash,
		},
	}}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, &stubStore{}, testAuthStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var status domain.HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.Status != "healthy" {
		t.Errorf("expected healthy, got %q", status.Status)
	}
}

func TestHealthz_StoreDown(t *testing.T) {
	router, _ := newTestRouter(t, &stubStore{listErr: context.DeadlineExceeded}, testAuthStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t, &stubStore{}, testAuthStore(t))

	for _, path := range []string{
		"/v1/churches/ch1/overview",
		"/v1/churches/ch1/funds",
		"/v1/churches/ch1/transactions",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401 without token, got %d", path, rec.Code)
		}
	}
}

func TestChurchScopeEnforced(t *testing.T) {
	router, _ := newTestRouter(t, &stubStore{}, testAuthStore(t))
	token := loginToken(t, router, "admin@example.org", "correct horse battery")

	req := httptest.NewRequest(http.MethodGet, "/v1/churches/other-church/overview", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign church, got %d", rec.Code)
	}
}

func TestOverviewEndpoint(t *testing.T) {
	store := &stubStore{
		funds: []domain.Fund{
			{ID: "f1", ChurchID: "ch1", Name: "General", Type: "general", Balance: 100, IsActive: true},
		},
		transactions: []domain.Transaction{
			{ID: "tx1", ChurchID: "ch1", FundID: "f1", Type: "income", Amount: 100, Date: "2024-01-01"},
		},
	}
	router, _ := newTestRouter(t, store, testAuthStore(t))
	token := loginToken(t, router, "admin@example.org", "correct horse battery")

	req := httptest.NewRequest(http.MethodGet, "/v1/churches/ch1/overview", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var overviews []domain.FundOverview
	if err := json.Unmarshal(rec.Body.Bytes(), &overviews); err != nil {
		t.Fatal(err)
	}
	if len(overviews) != 1 || overviews[0].OpeningBalance != 0 {
		t.Errorf("unexpected overview payload: %s", rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	router, _ := newTestRouter(t, &stubStore{}, testAuthStore(t))
	token := loginToken(t, router, "viewer@example.org", "correct horse battery")

	req := httptest.NewRequest(http.MethodPost, "/v1/churches/ch1/funds",
		strings.NewReader(`{"name":"New fund","type":"general"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("viewer must not create funds, expected 403, got %d", rec.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	router, _ := newTestRouter(t, &stubStore{}, testAuthStore(t))

	body := strings.NewReader(`{"email":"admin@example.org","password":"wrong"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", body))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}
}
