package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (su *SupabaseRepo) ListFavorites(ctx context.Context, userId uuid.UUID) ([]Favorite, error) {
	client, err := su.client(ctx)
	if err != nil {
		return nil, err
	}

	raw, _, err := client.From(FavoritesTable).
		Select("*", "", false).
		Eq("user_id", userId.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get favourites: %v", err)
	}

	favorites := []Favorite{}
	if err := json.Unmarshal(raw, &favorites); err != nil {
		return nil, fmt.Errorf("failed to unmarshal favourites: %v", err)
	}
	return favorites, nil
}

func (su *SupabaseRepo) ListFavoritePropertyIDs(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error) {
	client, err := su.client(ctx)
	if err != nil {
		return nil, err
	}

	raw, _, err := client.From(FavoritesTable).
		Select("property_id", "", false).
		Eq("user_id", userId.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get favourite ids: %v", err)
	}

	var rows []struct {
		PropertyId uuid.UUID `json:"property_id"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal favourite ids: %v", err)
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PropertyId)
	}
	return ids, nil
}

// AddFavorite inserts the (user, property) pair unless it is already present.
func (su *SupabaseRepo) AddFavorite(ctx context.Context, userId, propertyId uuid.UUID) (*Favorite, error) {
	client, err := su.client(ctx)
	if err != nil {
		return nil, err
	}

	raw, _, err := client.From(FavoritesTable).
		Select("*", "", false).
		Eq("user_id", userId.String()).
		Eq("property_id", propertyId.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to check favourite: %v", err)
	}
	var existing []Favorite
	if err := json.Unmarshal(raw, &existing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal favourite: %v", err)
	}
	if len(existing) > 0 {
		return &existing[0], nil
	}

	favorite := Favorite{
		Id:         uuid.New(),
		UserId:     userId,
		PropertyId: propertyId,
		CreatedAt:  time.Now().UTC(),
	}
	raw, _, err = client.From(FavoritesTable).
		Insert(favorite, false, "", "", "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to add favourite: %v", err)
	}

	var created []Favorite
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal favourite: %v", err)
	}
	if len(created) == 0 {
		return &favorite, nil
	}
	return &created[0], nil
}

func (su *SupabaseRepo) RemoveFavorite(ctx context.Context, userId, propertyId uuid.UUID) error {
	client, err := su.client(ctx)
	if err != nil {
		return err
	}

	_, _, err = client.From(FavoritesTable).
		Delete("", "").
		Eq("user_id", userId.String()).
		Eq("property_id", propertyId.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to remove favourite: %v", err)
	}
	return nil
}
