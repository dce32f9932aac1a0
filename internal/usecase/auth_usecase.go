package usecase

import (
	"context"
	"errors"
	"strings"

	"fursa-backend/internal/domain"
	"fursa-backend/pkg/apperror"
	"fursa-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid credentials"

// Compared against when the email is unknown so both failure paths cost a bcrypt round.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("fursa-dummy-password"), bcrypt.DefaultCost)

type authUsecase struct {
	userRepo domain.UserRepository
	tokens   domain.TokenService
	validate *validator.Validate
}

func NewAuthUsecase(userRepo domain.UserRepository, tokens domain.TokenService, validate *validator.Validate) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo, tokens: tokens, validate: validate}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *authUsecase) Register(ctx context.Context, in domain.RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	if err := u.validate.Struct(in); err != nil {
		return nil, apperror.Validation("Validation failed", validation.FieldErrors(err))
	}

	exists, err := u.userRepo.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.FieldError("email", "Email already exists.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	// The unique constraints still decide races between concurrent registrations
	if err := u.userRepo.CreateWithProfile(ctx, user); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

// Login never says which part of the credentials was wrong.
func (u *authUsecase) Login(ctx context.Context, in domain.LoginInput) (*domain.TokenPair, error) {
	in.Email = normalizeEmail(in.Email)
	if err := u.validate.Struct(in); err != nil {
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	user, err := u.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
			return nil, apperror.Unauthorized(invalidCredentials)
		}
		return nil, apperror.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	pair, err := u.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return pair, nil
}

func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", apperror.Unauthorized("Refresh token is required")
	}

	userID, err := u.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", apperror.Unauthorized("Token is invalid or expired")
	}

	if _, err := u.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", apperror.Unauthorized("User not found")
		}
		return "", apperror.Internal(err)
	}

	access, err := u.tokens.IssueAccess(userID)
	if err != nil {
		return "", apperror.Internal(err)
	}
	return access, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}
