package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	domain "github.com/example/task-manager/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AuthModule provides authentication and account services.
type AuthModule struct {
	db      *gorm.DB
	service *AuthService
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(dbPath string) *AuthModule {
	return &AuthModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start opens the database, migrates the user schema, and wires the service.
func (m *AuthModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	repo := NewUserRepository(db)
	hasher := NewPasswordHasher()
	jwtManager := NewJWTManager(loadJWTConfig())

	m.service = NewAuthService(repo, hasher, jwtManager)

	log.Printf("[auth] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	services := map[string]func() error{
		"register": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "register", json.Unmarshal, json.Marshal, m.handleRegister)
		},
		"login": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "login", json.Unmarshal, json.Marshal, m.handleLogin)
		},
		"refresh-token": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "refresh-token", json.Unmarshal, json.Marshal, m.handleRefresh)
		},
		"validate-token": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken)
		},
		"get-user": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser)
		},
		"update-profile": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "update-profile", json.Unmarshal, json.Marshal, m.handleUpdateProfile)
		},
		"change-password": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "change-password", json.Unmarshal, json.Marshal, m.handleChangePassword)
		},
		"delete-account": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "delete-account", json.Unmarshal, json.Marshal, m.handleDeleteAccount)
		},
	}

	for name, register := range services {
		if err := register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
	}

	log.Printf("[auth] Registered services: register, login, refresh-token, validate-token, get-user, update-profile, change-password, delete-account")
	return nil
}

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	user, err := m.service.Register(ctx, req.Email, req.FullName, req.Password)
	if err != nil {
		return RegisterResponse{}, err
	}

	return RegisterResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	tokens, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}

	return LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		TokenType:    tokens.TokenType,
	}, nil
}

func (m *AuthModule) handleRefresh(ctx context.Context, req RefreshRequest, _ *mono.Msg) (RefreshResponse, error) {
	tokens, err := m.service.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		return RefreshResponse{}, err
	}

	return RefreshResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		TokenType:    tokens.TokenType,
	}, nil
}

func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		// Return a response, not an error, so callers can distinguish
		// validation failures from transport failures.
		return ValidateTokenResponse{
			Valid: false,
			Error: err.Error(),
		}, nil
	}

	return ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (UserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (m *AuthModule) handleUpdateProfile(ctx context.Context, req UpdateProfileRequest, _ *mono.Msg) (UserResponse, error) {
	user, err := m.service.UpdateProfile(ctx, req.UserID, req.Email, req.FullName, req.IsActive)
	if err != nil {
		return UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (m *AuthModule) handleChangePassword(ctx context.Context, req ChangePasswordRequest, _ *mono.Msg) (ChangePasswordResponse, error) {
	if err := m.service.ChangePassword(ctx, req.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return ChangePasswordResponse{}, err
	}
	return ChangePasswordResponse{Changed: true}, nil
}

func (m *AuthModule) handleDeleteAccount(ctx context.Context, req DeleteAccountRequest, _ *mono.Msg) (DeleteAccountResponse, error) {
	if err := m.service.DeleteAccount(ctx, req.UserID); err != nil {
		return DeleteAccountResponse{}, err
	}
	return DeleteAccountResponse{Deleted: true}, nil
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// loadJWTConfig loads JWT configuration from environment variables.
func loadJWTConfig() JWTConfig {
	config := DefaultJWTConfig()

	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		config.SecretKey = secret
	}
	if issuer := os.Getenv("JWT_ISSUER"); issuer != "" {
		config.Issuer = issuer
	}
	if ttl := os.Getenv("JWT_ACCESS_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.AccessTokenDuration = d
		} else {
			log.Printf("[auth] Warning: invalid JWT_ACCESS_TTL %q, using default", ttl)
		}
	}

	return config
}
