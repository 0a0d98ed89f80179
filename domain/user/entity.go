package user

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID           string    `gorm:"primaryKey;type:text" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;type:text" json:"email"`
	FullName     string    `gorm:"not null;type:text" json:"full_name"`
	PasswordHash string    `gorm:"not null;type:text" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// TokenPair represents access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Claims represents the identity extracted from a validated token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
