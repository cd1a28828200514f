package repository

import (
	"context"

	"flatnest/internal/domain/entity"
)

// FlatFilter narrows the listing query. Zero values mean "no constraint".
type FlatFilter struct {
	City         string
	MaxRentPrice float64
	MinAreaSize  float64
}

type FlatRepository interface {
	Create(ctx context.Context, flat *entity.Flat) error
	GetByID(ctx context.Context, id string) (*entity.Flat, error)
	Update(ctx context.Context, flat *entity.Flat) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter FlatFilter) ([]*entity.Flat, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]*entity.Flat, error)
}
