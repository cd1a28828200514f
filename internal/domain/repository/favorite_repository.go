package repository

import (
	"context"

	"flatnest/internal/domain/entity"
)

type FavoriteRepository interface {
	Add(ctx context.Context, uid, flatID string) error
	Remove(ctx context.Context, uid, flatID string) error
	Exists(ctx context.Context, uid, flatID string) (bool, error)
	ListByUser(ctx context.Context, uid string) ([]*entity.Favorite, error)
}
