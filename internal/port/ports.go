// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/stewardapp/steward-go/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// Categorizer suggests a fund and transaction type for uncategorized
// entries. Implemented by the Gemini-backed client.
type Categorizer interface {
	Suggest(ctx context.Context, funds []domain.Fund, items []domain.CategorizeItem) ([]domain.CategorySuggestion, error)
}

// LedgerStore defines all data operations for church bookkeeping.
// Implemented by the Supabase adapter (or any other persistence layer).
type LedgerStore interface {
	// Churches
	GetChurch(ctx context.Context, churchID string) (*domain.Church, error)
	ListChurches(ctx context.Context) ([]domain.Church, error)

	// Funds
	ListFunds(ctx context.Context, churchID string, activeOnly bool) ([]domain.Fund, error)
	GetFund(ctx context.Context, churchID, fundID string) (*domain.Fund, error)
	CreateFund(ctx context.Context, fund *domain.Fund) (*domain.Fund, error)
	UpdateFund(ctx context.Context, fundID string, updates map[string]any) error
	// UpdateFundBalance performs a read-modify-write of the cached balance.
	// Last write wins; the platform serializes writes per row.
	UpdateFundBalance(ctx context.Context, fundID string, delta float64) (*domain.Fund, error)

	// Transactions (always returned ordered by date ascending)
	ListTransactions(ctx context.Context, churchID string, filter domain.TransactionFilter) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, churchID, transactionID string) (*domain.Transaction, error)
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, churchID, transactionID string) error

	// Donors
	ListDonors(ctx context.Context, churchID string, activeOnly bool) ([]domain.Donor, error)
	GetDonor(ctx context.Context, churchID, donorID string) (*domain.Donor, error)
	CreateDonor(ctx context.Context, donor *domain.Donor) (*domain.Donor, error)
	UpdateDonor(ctx context.Context, donorID string, updates map[string]any) error

	// Pledges
	ListPledges(ctx context.Context, churchID string) ([]domain.Pledge, error)
	GetPledge(ctx context.Context, churchID, pledgeID string) (*domain.Pledge, error)
	CreatePledge(ctx context.Context, pledge *domain.Pledge) (*domain.Pledge, error)
	UpdatePledgeStatus(ctx context.Context, pledgeID, status string) error
}

// AuthStore defines all data operations for the authentication system.
type AuthStore interface {
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateChurchWithAdmin(ctx context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.RegisterResponse, error)
	UpdateUser(ctx context.Context, userID string, updates map[string]any) error

	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}
