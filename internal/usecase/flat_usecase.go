package usecase

import (
	"context"

	"flatnest/internal/domain/entity"
	"flatnest/internal/domain/repository"
	"flatnest/pkg/errors"
)

type FlatUseCase struct {
	flatRepo repository.FlatRepository
	userRepo repository.UserRepository
}

func NewFlatUseCase(flatRepo repository.FlatRepository, userRepo repository.UserRepository) *FlatUseCase {
	return &FlatUseCase{
		flatRepo: flatRepo,
		userRepo: userRepo,
	}
}

func (uc *FlatUseCase) Create(ctx context.Context, ownerUID string, flat *entity.Flat) (*entity.Flat, error) {
	if ownerUID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	flat.ID = ""
	flat.OwnerUID = ownerUID
	if err := uc.flatRepo.Create(ctx, flat); err != nil {
		return nil, err
	}

	return flat, nil
}

func (uc *FlatUseCase) GetByID(ctx context.Context, id string) (*entity.Flat, error) {
	return uc.flatRepo.GetByID(ctx, id)
}

// Update replaces the listing's fields. Owner only; the owner itself can
// never be reassigned.
func (uc *FlatUseCase) Update(ctx context.Context, callerUID, flatID string, updated *entity.Flat) (*entity.Flat, error) {
	flat, err := uc.flatRepo.GetByID(ctx, flatID)
	if err != nil {
		return nil, err
	}
	if flat.OwnerUID != callerUID {
		return nil, errors.Forbidden("Only the owner can update this flat", nil)
	}

	updated.ID = flat.ID
	updated.OwnerUID = flat.OwnerUID
	updated.CreatedAt = flat.CreatedAt
	if err := uc.flatRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a listing. Allowed for the owner and for admins.
func (uc *FlatUseCase) Delete(ctx context.Context, callerUID, flatID string) error {
	flat, err := uc.flatRepo.GetByID(ctx, flatID)
	if err != nil {
		return err
	}

	if flat.OwnerUID != callerUID {
		caller, err := uc.userRepo.GetByID(ctx, callerUID)
		if err != nil || !caller.IsAdmin {
			return errors.Forbidden("Only the owner can delete this flat", nil)
		}
	}

	return uc.flatRepo.Delete(ctx, flatID)
}

func (uc *FlatUseCase) List(ctx context.Context, filter repository.FlatFilter) ([]*entity.Flat, error) {
	return uc.flatRepo.List(ctx, filter)
}

func (uc *FlatUseCase) ListByOwner(ctx context.Context, ownerUID string) ([]*entity.Flat, error) {
	return uc.flatRepo.ListByOwner(ctx, ownerUID)
}
