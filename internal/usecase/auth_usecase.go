package usecase

import (
	"context"
	"time"

	"flatnest/internal/domain/entity"
	"flatnest/internal/domain/repository"
	"flatnest/pkg/errors"
	"flatnest/pkg/logger"
)

type AuthUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth AuthClient
}

func NewAuthUseCase(userRepo repository.UserRepository, firebaseAuth AuthClient) *AuthUseCase {
	return &AuthUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	BirthDate time.Time
}

type AuthResult struct {
	User  *entity.User
	Token string
}

// Register creates the account with the identity provider and the matching
// profile document. New accounts are never admins; the flag is flipped by
// hand in the console.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	displayName := input.FirstName + " " + input.LastName

	uid, err := uc.firebaseAuth.CreateUser(ctx, input.Email, input.Password, displayName)
	if err != nil {
		return nil, errors.BadRequest("Failed to create account", err)
	}

	user := &entity.User{
		ID:        uid,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		BirthDate: input.BirthDate,
		IsAdmin:   false,
		CreatedAt: time.Now(),
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		// Keep auth and profile in sync when the second write fails.
		if delErr := uc.firebaseAuth.DeleteUser(ctx, uid); delErr != nil {
			logger.Error("Failed to roll back auth user %s: %v", uid, delErr)
		}
		return nil, errors.Internal("Failed to create user record", err)
	}

	token, err := uc.firebaseAuth.GenerateToken(ctx, uid)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}

	return &AuthResult{
		User:  user,
		Token: token,
	}, nil
}

// DeleteAccount removes the profile document first and the auth account
// second, so a half-failed delete leaves a user who can still sign in and
// retry rather than an orphaned profile.
func (uc *AuthUseCase) DeleteAccount(ctx context.Context, uid string) error {
	if uid == "" {
		return errors.Unauthorized("Not authenticated", nil)
	}

	if err := uc.userRepo.Delete(ctx, uid); err != nil {
		return err
	}

	if err := uc.firebaseAuth.DeleteUser(ctx, uid); err != nil {
		return errors.Internal("Failed to delete account", err)
	}

	logger.Info("Deleted account %s", uid)

	return nil
}
