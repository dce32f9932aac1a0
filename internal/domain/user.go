package domain

import (
	"context"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterInput is the registration form. Email is normalised before validation.
type RegisterInput struct {
	Username string `json:"username" validate:"required,max=150,valid_username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserRepository interface {
	// CreateWithProfile inserts the user and its empty profile atomically and sets user.ID.
	CreateWithProfile(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// TokenService issues and verifies signed access and refresh tokens.
type TokenService interface {
	IssuePair(userID int64) (*TokenPair, error)
	IssueAccess(userID int64) (string, error)
	VerifyAccess(token string) (int64, error)
	VerifyRefresh(token string) (int64, error)
}

type AuthUsecase interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	Login(ctx context.Context, in LoginInput) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	GetCurrentUser(ctx context.Context, id int64) (*User, error)
}
