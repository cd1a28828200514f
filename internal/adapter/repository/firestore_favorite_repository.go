package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"flatnest/internal/domain/entity"
	"flatnest/internal/domain/repository"
	"flatnest/pkg/errors"
)

type firestoreFavoriteRepository struct {
	client *firestore.Client
}

func NewFirestoreFavoriteRepository(client *firestore.Client) repository.FavoriteRepository {
	return &firestoreFavoriteRepository{
		client: client,
	}
}

func (r *firestoreFavoriteRepository) favorites(uid string) *firestore.CollectionRef {
	return r.client.Collection("users").Doc(uid).Collection("favorites")
}

func (r *firestoreFavoriteRepository) Add(ctx context.Context, uid, flatID string) error {
	_, err := r.favorites(uid).Doc(flatID).Set(ctx, map[string]interface{}{
		"addedAt": firestore.ServerTimestamp,
	})
	if err != nil {
		return errors.Internal("Failed to add favorite", err)
	}

	return nil
}

func (r *firestoreFavoriteRepository) Remove(ctx context.Context, uid, flatID string) error {
	if _, err := r.favorites(uid).Doc(flatID).Delete(ctx); err != nil {
		return errors.Internal("Failed to remove favorite", err)
	}

	return nil
}

func (r *firestoreFavoriteRepository) Exists(ctx context.Context, uid, flatID string) (bool, error) {
	_, err := r.favorites(uid).Doc(flatID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, errors.Internal("Failed to check favorite", err)
	}

	return true, nil
}

func (r *firestoreFavoriteRepository) ListByUser(ctx context.Context, uid string) ([]*entity.Favorite, error) {
	iter := r.favorites(uid).Documents(ctx)
	defer iter.Stop()

	var favorites []*entity.Favorite
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list favorites", err)
		}

		var fav entity.Favorite
		if err := doc.DataTo(&fav); err != nil {
			continue
		}
		fav.FlatID = doc.Ref.ID
		favorites = append(favorites, &fav)
	}

	return favorites, nil
}
