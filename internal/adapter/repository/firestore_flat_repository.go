package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"flatnest/internal/domain/entity"
	"flatnest/internal/domain/repository"
	"flatnest/pkg/errors"
)

type firestoreFlatRepository struct {
	client *firestore.Client
}

func NewFirestoreFlatRepository(client *firestore.Client) repository.FlatRepository {
	return &firestoreFlatRepository{
		client: client,
	}
}

func (r *firestoreFlatRepository) flats() *firestore.CollectionRef {
	return r.client.Collection("flats")
}

func (r *firestoreFlatRepository) Create(ctx context.Context, flat *entity.Flat) error {
	if flat.ID == "" {
		flat.ID = uuid.New().String()
	}

	if _, err := r.flats().Doc(flat.ID).Set(ctx, flat); err != nil {
		return errors.Internal("Failed to create flat", err)
	}

	return nil
}

func (r *firestoreFlatRepository) GetByID(ctx context.Context, id string) (*entity.Flat, error) {
	doc, err := r.flats().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Flat", nil)
		}
		return nil, errors.Internal("Failed to get flat", err)
	}

	var flat entity.Flat
	if err := doc.DataTo(&flat); err != nil {
		return nil, errors.Internal("Failed to parse flat data", err)
	}
	flat.ID = doc.Ref.ID

	return &flat, nil
}

func (r *firestoreFlatRepository) Update(ctx context.Context, flat *entity.Flat) error {
	if _, err := r.flats().Doc(flat.ID).Set(ctx, flat); err != nil {
		return errors.Internal("Failed to update flat", err)
	}

	return nil
}

func (r *firestoreFlatRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.flats().Doc(id).Delete(ctx); err != nil {
		return errors.Internal("Failed to delete flat", err)
	}

	return nil
}

func (r *firestoreFlatRepository) List(ctx context.Context, filter repository.FlatFilter) ([]*entity.Flat, error) {
	query := r.flats().Query
	if filter.City != "" {
		query = query.Where("city", "==", filter.City)
	}
	if filter.MaxRentPrice > 0 {
		query = query.Where("rentPrice", "<=", filter.MaxRentPrice)
	}
	if filter.MinAreaSize > 0 {
		query = query.Where("areaSize", ">=", filter.MinAreaSize)
	}

	return r.collect(ctx, query)
}

func (r *firestoreFlatRepository) ListByOwner(ctx context.Context, ownerUID string) ([]*entity.Flat, error) {
	return r.collect(ctx, r.flats().Where("ownerUID", "==", ownerUID))
}

func (r *firestoreFlatRepository) collect(ctx context.Context, query firestore.Query) ([]*entity.Flat, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var flats []*entity.Flat
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list flats", err)
		}

		var flat entity.Flat
		if err := doc.DataTo(&flat); err != nil {
			continue
		}
		flat.ID = doc.Ref.ID
		flats = append(flats, &flat)
	}

	return flats, nil
}
