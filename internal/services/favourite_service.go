package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/joshua-takyi/estately/internal/cache"
	"github.com/joshua-takyi/estately/internal/models"
)

const (
	NoticeFavoriteAdded   = "Added to favorites"
	NoticeFavoriteRemoved = "Removed from favorites"
	NoticeFavoriteError   = "Error updating favorites"
)

type FavouriteService struct {
	favouritesRepo models.FavoriteRepo
	properties     models.PropertyRepo
	cache          *cache.Coordinator
	logger         *slog.Logger
}

func NewFavouriteService(favouritesRepo models.FavoriteRepo, properties models.PropertyRepo, c *cache.Coordinator, logger *slog.Logger) *FavouriteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FavouriteService{
		favouritesRepo: favouritesRepo,
		properties:     properties,
		cache:          c,
		logger:         logger,
	}
}

// ListFavorites returns the user's favourites with their listings attached.
// A nil userId disables the query.
func (fs *FavouriteService) ListFavorites(ctx context.Context, userId uuid.UUID) ([]models.FavoriteWithProperty, error) {
	key := cache.NewKey(KeyFavorites, map[string]string{"user_id": userId.String()})
	return cache.FetchIf(ctx, fs.cache, userId != uuid.Nil, key, func(ctx context.Context) ([]models.FavoriteWithProperty, error) {
		favorites, err := fs.favouritesRepo.ListFavorites(ctx, userId)
		if err != nil {
			return nil, fmt.Errorf("failed to list favourites: %w", err)
		}
		if len(favorites) == 0 {
			return []models.FavoriteWithProperty{}, nil
		}

		ids := make([]uuid.UUID, 0, len(favorites))
		for _, f := range favorites {
			ids = append(ids, f.PropertyId)
		}
		properties, err := fs.properties.ListPropertiesByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load favourite properties: %w", err)
		}
		return joinFavorites(favorites, properties), nil
	})
}

// joinFavorites attaches each favourite's listing through an id index.
// Favourites whose listing is gone keep a nil Property.
func joinFavorites(favorites []models.Favorite, properties []models.PropertyWithImages) []models.FavoriteWithProperty {
	byId := make(map[uuid.UUID]*models.PropertyWithImages, len(properties))
	for i := range properties {
		byId[properties[i].Id] = &properties[i]
	}

	res := make([]models.FavoriteWithProperty, 0, len(favorites))
	for _, f := range favorites {
		res = append(res, models.FavoriteWithProperty{
			Favorite: f,
			Property: byId[f.PropertyId],
		})
	}
	return res
}

// ListFavoriteIds returns only the favourited property ids. A nil userId
// disables the query.
func (fs *FavouriteService) ListFavoriteIds(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error) {
	key := cache.NewKey(KeyFavoriteIds, map[string]string{"user_id": userId.String()})
	return cache.FetchIf(ctx, fs.cache, userId != uuid.Nil, key, func(ctx context.Context) ([]uuid.UUID, error) {
		ids, err := fs.favouritesRepo.ListFavoritePropertyIDs(ctx, userId)
		if err != nil {
			return nil, fmt.Errorf("failed to list favourite ids: %w", err)
		}
		return ids, nil
	})
}

// ToggleFavorite removes the favourite when isFavorite is true and adds it
// otherwise. It returns the notice describing what happened.
func (fs *FavouriteService) ToggleFavorite(ctx context.Context, userId, propertyId uuid.UUID, isFavorite bool) (string, error) {
	if userId == uuid.Nil {
		return "", fmt.Errorf("invalid user ID")
	}
	if propertyId == uuid.Nil {
		return "", ErrInvalidID
	}

	m := mutation{
		name:        "toggle-favorite",
		invalidates: []string{KeyFavorites, KeyFavoriteIds},
		success:     NoticeFavoriteAdded,
		failure:     NoticeFavoriteError,
	}
	if isFavorite {
		m.success = NoticeFavoriteRemoved
	}

	_, err := runMutation(ctx, fs.cache, fs.logger, m, func(ctx context.Context) (struct{}, error) {
		if isFavorite {
			return struct{}{}, fs.favouritesRepo.RemoveFavorite(ctx, userId, propertyId)
		}
		_, err := fs.favouritesRepo.AddFavorite(ctx, userId, propertyId)
		return struct{}{}, err
	})
	if err != nil {
		return "", err
	}
	return m.success, nil
}
