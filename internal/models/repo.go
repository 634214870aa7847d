package models

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

var Validate = validator.New()

// ErrNotFound is returned by writes that matched no row.
var ErrNotFound = errors.New("record not found")

var (
	ErrAccountExists = errors.New("this email is already registered, please sign in instead")
	ErrInvalidSignUp = errors.New("invalid sign-up details")
)

const (
	PropertiesTable     = "properties"
	PropertyImagesTable = "property_images"
	FavoritesTable      = "favorites"
	ProfilesTable       = "user_profiles"
	RolesTable          = "user_roles"
	PropertyImageBucket = "property-images"
)

type PropertyRepo interface {
	ListProperties(ctx context.Context, filters PropertyFilters) ([]PropertyWithImages, error)
	ListPropertiesByIDs(ctx context.Context, ids []uuid.UUID) ([]PropertyWithImages, error)
	// GetProperty returns nil, nil when no row matches.
	GetProperty(ctx context.Context, id uuid.UUID) (*PropertyWithImages, error)
	CreateProperty(ctx context.Context, property *Property) (*Property, error)
	UpdateProperty(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Property, error)
	DeleteProperty(ctx context.Context, id uuid.UUID) error
}

type ImageRepo interface {
	AddPropertyImage(ctx context.Context, image *PropertyImage) (*PropertyImage, error)
	DeletePropertyImage(ctx context.Context, id uuid.UUID) error
	// ClearPrimaryImage unflags every primary image of a listing.
	ClearPrimaryImage(ctx context.Context, propertyId uuid.UUID) error
}

type FavoriteRepo interface {
	ListFavorites(ctx context.Context, userId uuid.UUID) ([]Favorite, error)
	ListFavoritePropertyIDs(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error)
	AddFavorite(ctx context.Context, userId, propertyId uuid.UUID) (*Favorite, error)
	RemoveFavorite(ctx context.Context, userId, propertyId uuid.UUID) error
}

type ProfileRepo interface {
	ListProfiles(ctx context.Context) ([]UserProfile, error)
	// GetProfile returns nil, nil when the user has no profile row.
	GetProfile(ctx context.Context, userId uuid.UUID) (*UserProfile, error)
	DeleteProfile(ctx context.Context, userId uuid.UUID) error
}

type RoleRepo interface {
	ListRoles(ctx context.Context) ([]UserRole, error)
	// GetRole returns nil, nil when the user has no role row.
	GetRole(ctx context.Context, userId uuid.UUID) (*UserRole, error)
	UpdateRole(ctx context.Context, userId uuid.UUID, role Role) error
}

type ObjectStore interface {
	Upload(ctx context.Context, path, contentType string, data io.Reader) error
	PublicURL(path string) (string, error)
}

type AuthRepo interface {
	CreateUser(ctx context.Context, req *SignUpRequest) (interface{}, error)
	AuthenticateUser(ctx context.Context, email, password string) (interface{}, error)
	RefreshToken(ctx context.Context, refreshToken string) (interface{}, error)
}

type SupabaseRepo struct {
	supabaseClient *supabase.Client
	url            string
	key            string
	bucket         string
}

func SupabaseNewRepo(supabaseClient *supabase.Client, url, key, bucket string) *SupabaseRepo {
	if bucket == "" {
		bucket = PropertyImageBucket
	}
	return &SupabaseRepo{
		supabaseClient: supabaseClient,
		url:            url,
		key:            key,
		bucket:         bucket,
	}
}

// GetAuthenticatedClient returns a Supabase client with the given access token
func (su *SupabaseRepo) GetAuthenticatedClient(accessToken string) (*supabase.Client, error) {
	if su.url == "" || su.key == "" {
		return su.supabaseClient, nil
	}

	options := &supabase.ClientOptions{
		Headers: map[string]string{
			"Authorization": "Bearer " + accessToken,
		},
	}

	return supabase.NewClient(su.url, su.key, options)
}

type accessTokenKey struct{}

// WithAccessToken attaches the caller's token so gateway calls run under the
// caller's row-level security policies.
func WithAccessToken(ctx context.Context, accessToken string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, accessToken)
}

func AccessTokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}

func (su *SupabaseRepo) client(ctx context.Context) (*supabase.Client, error) {
	accessToken := AccessTokenFrom(ctx)
	if accessToken == "" {
		return su.supabaseClient, nil
	}
	authClient, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated client: %v", err)
	}
	return authClient, nil
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	if dbName == "" {
		dbName = FavouriteDbName
	}
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

func (mdb *MongodbRepo) GetCollection(ctx context.Context, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialised")
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(colName), nil
}

var (
	_ PropertyRepo = (*SupabaseRepo)(nil)
	_ ImageRepo    = (*SupabaseRepo)(nil)
	_ FavoriteRepo = (*SupabaseRepo)(nil)
	_ ProfileRepo  = (*SupabaseRepo)(nil)
	_ RoleRepo     = (*SupabaseRepo)(nil)
	_ ObjectStore  = (*SupabaseRepo)(nil)
	_ AuthRepo     = (*SupabaseRepo)(nil)
	_ FavoriteRepo = (*MongodbRepo)(nil)
)
