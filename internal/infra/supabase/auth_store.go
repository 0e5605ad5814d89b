package supabase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/stewardapp/steward-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Users & refresh tokens (implements port.AuthStore)
// ============================================================

// supabaseUser maps Supabase table columns to our domain.
type supabaseUser struct {
	ID             string     `json:"id"`
	ChurchID       string     `json:"church_id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Role           string     `json:"role"`
	PasswordHash   string     `json:"password_hash"`
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (r supabaseUser) toDomain() domain.User {
	return domain.User{
		ID:             r.ID,
		ChurchID:       r.ChurchID,
		Email:          r.Email,
		Name:           r.Name,
		Role:           r.Role,
		PasswordHash:   r.PasswordHash,
		FailedAttempts: r.FailedAttempts,
		LockedUntil:    r.LockedUntil,
		CreatedAt:      r.CreatedAt,
	}
}

// GetUserByID fetches a user by id.
func (c *Client) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByID")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	path := fmt.Sprintf("users?id=eq.%s&limit=1", url.QueryEscape(userID))
	body, err := c.getWithResilience(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/users", Err: err}
	}

	row, ok, err := decodeSingle[supabaseUser](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}

	user := row.toDomain()
	return &user, nil
}

// GetUserByEmail fetches a user by email.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByEmail")
	defer span.End()

	path := fmt.Sprintf("users?email=eq.%s&limit=1", url.QueryEscape(email))
	body, err := c.getWithResilience(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/users", Err: err}
	}

	row, ok, err := decodeSingle[supabaseUser](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: email}
	}

	user := row.toDomain()
	return &user, nil
}

// CreateChurchWithAdmin creates a church and its first admin user.
// PostgREST has no transactions across tables; if the user insert fails we
// roll back the church row by hand.
func (c *Client) CreateChurchWithAdmin(ctx context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.RegisterResponse, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateChurchWithAdmin")
	defer span.End()

	churchID := uuid.NewString()
	userID := uuid.NewString()

	currency := req.Currency
	if currency == "" {
		currency = "GBP"
	}

	if _, err := c.doPost(ctx, "churches", map[string]any{
		"id":       churchID,
		"name":     req.ChurchName,
		"currency": currency,
	}); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/churches", Err: err}
	}

	if _, err := c.doPost(ctx, "users", map[string]any{
		"id":            userID,
		"church_id":     churchID,
		"email":         req.Email,
		"name":          req.Name,
		"role":          domain.RoleAdmin,
		"password_hash": passwordHash,
	}); err != nil {
		if delErr := c.doDelete(ctx, fmt.Sprintf("churches?id=eq.%s", churchID)); delErr != nil {
			c.logger.Error("supabase: failed to roll back church after user insert failure")
		}
		return nil, &domain.ErrExternalService{Service: "supabase/users", Err: err}
	}

	return &domain.RegisterResponse{ChurchID: churchID, UserID: userID}, nil
}

// UpdateUser patches the given columns on a user.
func (c *Client) UpdateUser(ctx context.Context, userID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	path := fmt.Sprintf("users?id=eq.%s", url.QueryEscape(userID))
	if err := c.doPatch(ctx, path, updates); err != nil {
		return &domain.ErrExternalService{Service: "supabase/users", Err: err}
	}
	return nil
}

// supabaseRefreshToken maps Supabase table columns.
type supabaseRefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// StoreRefreshToken persists a hashed refresh token.
func (c *Client) StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Supabase.StoreRefreshToken")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	_, err := c.doPost(ctx, "refresh_tokens", map[string]any{
		"id":         uuid.NewString(),
		"user_id":    userID,
		"token_hash": tokenHash,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
		"revoked":    false,
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/refresh_tokens", Err: err}
	}
	return nil
}

// GetRefreshToken looks up a refresh token by its hash.
func (c *Client) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetRefreshToken")
	defer span.End()

	path := fmt.Sprintf("refresh_tokens?token_hash=eq.%s&limit=1", url.QueryEscape(tokenHash))
	body, err := c.getWithResilience(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/refresh_tokens", Err: err}
	}

	row, ok, err := decodeSingle[supabaseRefreshToken](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode refresh token: %w", err)
	}
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "refresh_token", ID: "hash"}
	}

	return &domain.AuthRefreshToken{
		ID:        row.ID,
		UserID:    row.UserID,
		TokenHash: row.TokenHash,
		ExpiresAt: row.ExpiresAt,
		Revoked:   row.Revoked,
	}, nil
}

// RevokeRefreshToken marks a single refresh token as revoked.
func (c *Client) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeRefreshToken")
	defer span.End()

	path := fmt.Sprintf("refresh_tokens?token_hash=eq.%s", url.QueryEscape(tokenHash))
	if err := c.doPatch(ctx, path, map[string]any{"revoked": true}); err != nil {
		return &domain.ErrExternalService{Service: "supabase/refresh_tokens", Err: err}
	}
	return nil
}

// RevokeAllRefreshTokens revokes every refresh token a user holds (logout).
func (c *Client) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeAllRefreshTokens")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	path := fmt.Sprintf("refresh_tokens?user_id=eq.%s", url.QueryEscape(userID))
	if err := c.doPatch(ctx, path, map[string]any{"revoked": true}); err != nil {
		return &domain.ErrExternalService{Service: "supabase/refresh_tokens", Err: err}
	}
	return nil
}
