package usecase

import (
	"context"

	"flatnest/internal/domain/entity"
	"flatnest/internal/domain/repository"
	"flatnest/pkg/errors"
)

type FavoriteUseCase struct {
	favoriteRepo repository.FavoriteRepository
	flatRepo     repository.FlatRepository
}

func NewFavoriteUseCase(favoriteRepo repository.FavoriteRepository, flatRepo repository.FlatRepository) *FavoriteUseCase {
	return &FavoriteUseCase{
		favoriteRepo: favoriteRepo,
		flatRepo:     flatRepo,
	}
}

func (uc *FavoriteUseCase) Add(ctx context.Context, uid, flatID string) error {
	if uid == "" {
		return errors.Unauthorized("Not authenticated", nil)
	}

	// Refuse to favorite listings that do not exist.
	if _, err := uc.flatRepo.GetByID(ctx, flatID); err != nil {
		return err
	}

	return uc.favoriteRepo.Add(ctx, uid, flatID)
}

func (uc *FavoriteUseCase) Remove(ctx context.Context, uid, flatID string) error {
	if uid == "" {
		return errors.Unauthorized("Not authenticated", nil)
	}

	return uc.favoriteRepo.Remove(ctx, uid, flatID)
}

func (uc *FavoriteUseCase) IsFavorite(ctx context.Context, uid, flatID string) (bool, error) {
	return uc.favoriteRepo.Exists(ctx, uid, flatID)
}

// ListFlats resolves the user's favorites into full listings, skipping
// entries whose flat has been deleted since it was favorited.
func (uc *FavoriteUseCase) ListFlats(ctx context.Context, uid string) ([]*entity.Flat, error) {
	favorites, err := uc.favoriteRepo.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	flats := make([]*entity.Flat, 0, len(favorites))
	for _, fav := range favorites {
		flat, err := uc.flatRepo.GetByID(ctx, fav.FlatID)
		if err != nil {
			if errors.Is(err, "NOT_FOUND") {
				continue
			}
			return nil, err
		}
		flats = append(flats, flat)
	}

	return flats, nil
}
