package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/estately/internal/cache"
	"github.com/joshua-takyi/estately/internal/models"
)

const (
	NoticePropertyCreated     = "Property created successfully"
	NoticePropertyCreateError = "Error creating property"
	NoticePropertyUpdated     = "Property updated successfully"
	NoticePropertyUpdateError = "Error updating property"
	NoticePropertyDeleted     = "Property deleted successfully"
	NoticePropertyDeleteError = "Error deleting property"
	NoticeImageAddError       = "Error adding image"
	NoticeImageDeleted        = "Image deleted"
	NoticeImageDeleteError    = "Error deleting image"
)

// ImageFile is one uploaded file waiting to be stored.
type ImageFile struct {
	Name        string
	ContentType string
	Data        io.Reader
}

type PropertyService struct {
	properties models.PropertyRepo
	images     models.ImageRepo
	profiles   models.ProfileRepo
	objects    models.ObjectStore
	cache      *cache.Coordinator
	logger     *slog.Logger
}

func NewPropertyService(properties models.PropertyRepo, images models.ImageRepo, profiles models.ProfileRepo, objects models.ObjectStore, c *cache.Coordinator, logger *slog.Logger) *PropertyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PropertyService{
		properties: properties,
		images:     images,
		profiles:   profiles,
		objects:    objects,
		cache:      c,
		logger:     logger,
	}
}

func (ps *PropertyService) ListProperties(ctx context.Context, filters models.PropertyFilters) ([]models.PropertyWithImages, error) {
	key := cache.NewKey(KeyProperties, filters.Params())
	return cache.Fetch(ctx, ps.cache, key, func(ctx context.Context) ([]models.PropertyWithImages, error) {
		res, err := ps.properties.ListProperties(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list properties: %w", err)
		}
		return res, nil
	})
}

// GetProperty returns nil, nil when the listing does not exist.
func (ps *PropertyService) GetProperty(ctx context.Context, id uuid.UUID) (*models.PropertyWithImages, error) {
	if id == uuid.Nil {
		return nil, ErrInvalidID
	}
	key := cache.NewKey(KeyProperty, map[string]string{"id": id.String()})
	return cache.Fetch(ctx, ps.cache, key, func(ctx context.Context) (*models.PropertyWithImages, error) {
		property, err := ps.properties.GetProperty(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get property: %w", err)
		}
		if property == nil {
			return nil, nil
		}

		profile, err := ps.profiles.GetProfile(ctx, property.SellerId)
		if err != nil {
			ps.logger.Warn("seller profile lookup failed", "property_id", id, "seller_id", property.SellerId, "error", err)
		} else {
			property.SellerProfile = profile
		}
		return property, nil
	})
}

// ListMyProperties lists every listing owned by userId regardless of status.
// A nil userId disables the query.
func (ps *PropertyService) ListMyProperties(ctx context.Context, userId uuid.UUID) ([]models.PropertyWithImages, error) {
	key := cache.NewKey(KeyMyProperties, map[string]string{"user_id": userId.String()})
	return cache.FetchIf(ctx, ps.cache, userId != uuid.Nil, key, func(ctx context.Context) ([]models.PropertyWithImages, error) {
		res, err := ps.properties.ListProperties(ctx, models.PropertyFilters{SellerId: userId})
		if err != nil {
			return nil, fmt.Errorf("failed to list seller properties: %w", err)
		}
		return res, nil
	})
}

// ListAllPropertiesAdmin lists every listing. Callers gate it on the admin role.
func (ps *PropertyService) ListAllPropertiesAdmin(ctx context.Context) ([]models.PropertyWithImages, error) {
	key := cache.NewKey(KeyAllPropertiesAdmin, nil)
	return cache.Fetch(ctx, ps.cache, key, func(ctx context.Context) ([]models.PropertyWithImages, error) {
		res, err := ps.properties.ListProperties(ctx, models.PropertyFilters{})
		if err != nil {
			return nil, fmt.Errorf("failed to list all properties: %w", err)
		}
		return res, nil
	})
}

// CreateProperty lists a new active property owned by sellerId.
func (ps *PropertyService) CreateProperty(ctx context.Context, sellerId uuid.UUID, input *models.PropertyInput) (*models.Property, error) {
	if sellerId == uuid.Nil {
		return nil, &ValidationError{Err: fmt.Errorf("seller id is required")}
	}
	if err := models.Validate.Struct(input); err != nil {
		return nil, &ValidationError{Err: err}
	}

	m := mutation{
		name:        "create-property",
		invalidates: []string{KeyProperties, KeyMyProperties, KeyAllPropertiesAdmin},
		success:     NoticePropertyCreated,
		failure:     NoticePropertyCreateError,
	}
	return runMutation(ctx, ps.cache, ps.logger, m, func(ctx context.Context) (*models.Property, error) {
		return ps.properties.CreateProperty(ctx, input.ToProperty(sellerId))
	})
}

func (ps *PropertyService) UpdateProperty(ctx context.Context, id uuid.UUID, update *models.PropertyUpdate) (*models.Property, error) {
	if id == uuid.Nil {
		return nil, ErrInvalidID
	}
	if err := models.Validate.Struct(update); err != nil {
		return nil, &ValidationError{Err: err}
	}
	fields := update.Fields()
	if len(fields) == 0 {
		return nil, &ValidationError{Err: fmt.Errorf("no fields to update")}
	}

	m := mutation{
		name:        "update-property",
		invalidates: listingViews,
		success:     NoticePropertyUpdated,
		failure:     NoticePropertyUpdateError,
	}
	return runMutation(ctx, ps.cache, ps.logger, m, func(ctx context.Context) (*models.Property, error) {
		return ps.properties.UpdateProperty(ctx, id, fields)
	})
}

func (ps *PropertyService) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrInvalidID
	}
	m := mutation{
		name:        "delete-property",
		invalidates: append(append([]string{}, listingViews...), KeyFavoriteIds),
		success:     NoticePropertyDeleted,
		failure:     NoticePropertyDeleteError,
	}
	_, err := runMutation(ctx, ps.cache, ps.logger, m, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, ps.properties.DeleteProperty(ctx, id)
	})
	return err
}

// AddPropertyImage records an uploaded image. A primary image demotes the
// listing's current primary first.
func (ps *PropertyService) AddPropertyImage(ctx context.Context, propertyId uuid.UUID, imageURL string, isPrimary bool, displayOrder int) (*models.PropertyImage, error) {
	if propertyId == uuid.Nil {
		return nil, ErrInvalidID
	}
	if err := models.Validate.Var(imageURL, "required,url"); err != nil {
		return nil, &ValidationError{Err: fmt.Errorf("invalid image url: %w", err)}
	}
	if displayOrder < 0 {
		return nil, &ValidationError{Err: fmt.Errorf("display order must not be negative")}
	}

	m := mutation{
		name:        "add-property-image",
		invalidates: listingViews,
		failure:     NoticeImageAddError,
	}
	return runMutation(ctx, ps.cache, ps.logger, m, func(ctx context.Context) (*models.PropertyImage, error) {
		if isPrimary {
			if err := ps.images.ClearPrimaryImage(ctx, propertyId); err != nil {
				return nil, err
			}
		}
		return ps.images.AddPropertyImage(ctx, &models.PropertyImage{
			Id:           uuid.New(),
			PropertyId:   propertyId,
			ImageURL:     imageURL,
			IsPrimary:    isPrimary,
			DisplayOrder: displayOrder,
			CreatedAt:    time.Now().UTC(),
		})
	})
}

func (ps *PropertyService) DeletePropertyImage(ctx context.Context, imageId uuid.UUID) error {
	if imageId == uuid.Nil {
		return ErrInvalidID
	}
	m := mutation{
		name:        "delete-property-image",
		invalidates: listingViews,
		success:     NoticeImageDeleted,
		failure:     NoticeImageDeleteError,
	}
	_, err := runMutation(ctx, ps.cache, ps.logger, m, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, ps.images.DeletePropertyImage(ctx, imageId)
	})
	return err
}

// UploadPropertyImages stores files one after another and records each as an
// image of the listing. existing are the listing's current images: new
// positions continue after the highest display order, and the first recorded
// image becomes primary when none of existing is. Files that fail to upload or
// record are logged and skipped. The recorded images are returned.
func (ps *PropertyService) UploadPropertyImages(ctx context.Context, propertyId uuid.UUID, existing []models.PropertyImage, files []ImageFile) []models.PropertyImage {
	next, hasPrimary := models.NextImageSlot(existing)
	added := make([]models.PropertyImage, 0, len(files))
	for i, file := range files {
		position := next + i
		objectPath := imagePath(propertyId, time.Now(), position, file.Name)

		if err := ps.objects.Upload(ctx, objectPath, file.ContentType, file.Data); err != nil {
			ps.logger.Error("image upload failed", "property_id", propertyId, "file", file.Name, "error", err)
			continue
		}
		url, err := ps.objects.PublicURL(objectPath)
		if err != nil {
			ps.logger.Error("image url lookup failed", "property_id", propertyId, "path", objectPath, "error", err)
			continue
		}

		image, err := ps.AddPropertyImage(ctx, propertyId, url, !hasPrimary, position)
		if err != nil {
			ps.logger.Error("image record failed", "property_id", propertyId, "path", objectPath, "error", err)
			continue
		}
		hasPrimary = hasPrimary || image.IsPrimary
		added = append(added, *image)
	}
	return added
}

// imagePath names an object <propertyId>/<unixMillis>_<position>.<ext>.
func imagePath(propertyId uuid.UUID, at time.Time, index int, name string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s/%d_%d.%s", propertyId, at.UnixMilli(), index, ext)
}
