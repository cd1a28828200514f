package usecase

import (
	"context"
	"time"

	"flatnest/internal/domain/entity"
	"flatnest/internal/domain/repository"
	"flatnest/pkg/errors"
)

type UserUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth AuthClient
}

func NewUserUseCase(userRepo repository.UserRepository, firebaseAuth AuthClient) *UserUseCase {
	return &UserUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
	}
}

func (uc *UserUseCase) GetProfile(ctx context.Context, uid string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}

	return user, nil
}

// GetPublicProfile is what other users see, e.g. a chat counterpart or a
// flat owner. Email, birth date and the admin flag stay private.
func (uc *UserUseCase) GetPublicProfile(ctx context.Context, uid string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}

	return user.PublicProfile(), nil
}

type UpdateProfileInput struct {
	FirstName string
	LastName  string
	BirthDate time.Time
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	if !input.BirthDate.IsZero() {
		user.BirthDate = input.BirthDate
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (uc *UserUseCase) ChangePassword(ctx context.Context, uid, newPassword string) error {
	if len(newPassword) < 6 {
		return errors.BadRequest("Password must be at least 6 characters", nil)
	}

	if err := uc.firebaseAuth.UpdateUserPassword(ctx, uid, newPassword); err != nil {
		return errors.Internal("Failed to update password", err)
	}

	return nil
}

// ListUsers returns every profile. Admin only, enforced by the router.
func (uc *UserUseCase) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return uc.userRepo.List(ctx)
}

// SetAdmin grants or revokes the admin flag on another account.
func (uc *UserUseCase) SetAdmin(ctx context.Context, uid string, isAdmin bool) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}

	user.IsAdmin = isAdmin
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
