package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	domain "github.com/example/task-manager/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface other modules use to access auth
// functionality.
type AuthPort interface {
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, userID string) error
}

// AuthAdapter implements AuthPort over the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// ValidateToken validates an access token and returns claims.
// Token failures are surfaced as the auth package's sentinel errors so
// callers can match them with errors.Is even across the container boundary.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"validate-token",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("validate-token request failed: %w", err)
	}

	if !resp.Valid {
		return nil, tokenErrorFromMessage(resp.Error)
	}

	return &domain.Claims{
		UserID: resp.UserID,
		Email:  resp.Email,
	}, nil
}

// GetUser retrieves a user by ID.
func (a *AuthAdapter) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	req := GetUserRequest{UserID: userID}
	var resp UserResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-user",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("get-user request failed: %w", err)
	}

	return userFromResponse(resp), nil
}

// UpdateProfile updates the user's email, full name, or active flag.
func (a *AuthAdapter) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*domain.User, error) {
	var resp UserResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"update-profile",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("update-profile request failed: %w", err)
	}

	return userFromResponse(resp), nil
}

// ChangePassword changes the user's password after verifying the current one.
func (a *AuthAdapter) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	var resp ChangePasswordResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"change-password",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("change-password request failed: %w", err)
	}

	return nil
}

// DeleteAccount removes the user's account.
func (a *AuthAdapter) DeleteAccount(ctx context.Context, userID string) error {
	req := DeleteAccountRequest{UserID: userID}
	var resp DeleteAccountResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"delete-account",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("delete-account request failed: %w", err)
	}

	return nil
}

// tokenErrorFromMessage maps a serialized validation failure back onto the
// matching sentinel error.
func tokenErrorFromMessage(msg string) error {
	switch {
	case strings.Contains(msg, ErrExpiredToken.Error()):
		return ErrExpiredToken
	case strings.Contains(msg, ErrWrongTokenType.Error()):
		return ErrWrongTokenType
	default:
		return ErrInvalidToken
	}
}

func userFromResponse(resp UserResponse) *domain.User {
	return &domain.User{
		ID:        resp.ID,
		Email:     resp.Email,
		FullName:  resp.FullName,
		IsActive:  resp.IsActive,
		CreatedAt: resp.CreatedAt,
		UpdatedAt: resp.UpdatedAt,
	}
}
