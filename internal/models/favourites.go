package models

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	FavouriteDbName  = "estately"
	FavouriteColName = "favourites"
)

type Favorite struct {
	Id         uuid.UUID `json:"id"`
	UserId     uuid.UUID `json:"user_id"`
	PropertyId uuid.UUID `json:"property_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// FavoriteWithProperty pairs a favourite with its listing. Property is nil
// when the listing no longer exists.
type FavoriteWithProperty struct {
	Favorite
	Property *PropertyWithImages `json:"properties"`
}

// FavouriteItem is one entry of a user's favourites document, keyed by
// property id so a listing can only be saved once.
type FavouriteItem struct {
	ID         string    `bson:"id" json:"id"`
	PropertyID string    `bson:"property_id" json:"property_id"`
	AddedAt    time.Time `bson:"added_at" json:"added_at"`
}

type FavouriteDocument struct {
	UserID    string                   `bson:"user_id" json:"user_id"`
	Items     map[string]FavouriteItem `bson:"items" json:"items"`
	CreatedAt time.Time                `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time                `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Favorites flattens the document into rows ordered by the time they were added.
func (d *FavouriteDocument) Favorites() ([]Favorite, error) {
	userId, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in favourites document: %v", err)
	}
	favorites := make([]Favorite, 0, len(d.Items))
	for _, item := range d.Items {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid favourite id %q: %v", item.ID, err)
		}
		propertyId, err := uuid.Parse(item.PropertyID)
		if err != nil {
			return nil, fmt.Errorf("invalid property id %q: %v", item.PropertyID, err)
		}
		favorites = append(favorites, Favorite{
			Id:         id,
			UserId:     userId,
			PropertyId: propertyId,
			CreatedAt:  item.AddedAt,
		})
	}
	sort.Slice(favorites, func(i, j int) bool {
		return favorites[i].CreatedAt.Before(favorites[j].CreatedAt)
	})
	return favorites, nil
}

func (mdb *MongodbRepo) findFavourites(ctx context.Context, userId uuid.UUID) (*FavouriteDocument, error) {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var doc FavouriteDocument
	err = col.FindOne(ctx, bson.M{"user_id": userId.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding favourites: %v", err)
	}
	return &doc, nil
}

func (mdb *MongodbRepo) ListFavorites(ctx context.Context, userId uuid.UUID) ([]Favorite, error) {
	doc, err := mdb.findFavourites(ctx, userId)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return []Favorite{}, nil
	}
	return doc.Favorites()
}

func (mdb *MongodbRepo) ListFavoritePropertyIDs(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error) {
	favorites, err := mdb.ListFavorites(ctx, userId)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.PropertyId)
	}
	return ids, nil
}

func (mdb *MongodbRepo) AddFavorite(ctx context.Context, userId, propertyId uuid.UUID) (*Favorite, error) {
	existing, err := mdb.findFavourites(ctx, userId)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if item, ok := existing.Items[propertyId.String()]; ok {
			return favouriteFromItem(userId, item)
		}
	}

	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	now := time.Now().UTC()
	filter := bson.M{"user_id": userId.String()}

	update := bson.M{
		"$set": bson.M{
			"updated_at": now,
			fmt.Sprintf("items.%s", propertyId.String()): FavouriteItem{
				ID:         uuid.NewString(),
				PropertyID: propertyId.String(),
				AddedAt:    now,
			},
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc FavouriteDocument
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("error upserting favourite: %v", err)
	}

	item, ok := doc.Items[propertyId.String()]
	if !ok {
		return nil, fmt.Errorf("favourite for property %s missing after upsert", propertyId)
	}
	return favouriteFromItem(userId, item)
}

func favouriteFromItem(userId uuid.UUID, item FavouriteItem) (*Favorite, error) {
	id, err := uuid.Parse(item.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid favourite id %q: %v", item.ID, err)
	}
	propertyId, err := uuid.Parse(item.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("invalid property id %q: %v", item.PropertyID, err)
	}
	return &Favorite{Id: id, UserId: userId, PropertyId: propertyId, CreatedAt: item.AddedAt}, nil
}

func (mdb *MongodbRepo) RemoveFromFavourites(ctx context.Context, userId uuid.UUID, itemId string) error {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"user_id": userId.String()}
	update := bson.M{
		"$unset": bson.M{
			fmt.Sprintf("items.%s", itemId): "",
		},
		"$set": bson.M{
			"updated_at": time.Now().UTC(),
		},
	}

	_, err = col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error removing favourite: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) RemoveFavorite(ctx context.Context, userId, propertyId uuid.UUID) error {
	return mdb.RemoveFromFavourites(ctx, userId, propertyId.String())
}
