package models

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

// propertySelect embeds the listing's images in every property read.
const propertySelect = "*, property_images(*)"

var newestFirst = &postgrest.OrderOpts{Ascending: false}

func decodeProperties(data []byte) ([]PropertyWithImages, error) {
	var properties []PropertyWithImages
	if err := json.Unmarshal(data, &properties); err != nil {
		return nil, fmt.Errorf("failed to unmarshal properties: %v", err)
	}
	for i := range properties {
		SortImages(properties[i].Images)
	}
	if properties == nil {
		properties = []PropertyWithImages{}
	}
	return properties, nil
}

// SortImages orders images by display_order.
func SortImages(images []PropertyImage) {
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].DisplayOrder < images[j].DisplayOrder
	})
}

func (su *SupabaseRepo) ListProperties(ctx context.Context, filters PropertyFilters) ([]PropertyWithImages, error) {
	client, err := su.client(ctx)
	if err != nil {
		return nil, err
	}

	query := client.From(PropertiesTable).Select(propertySelect, "", false)

	if search := searchTerm(filters.Search); search != "" {
		query = query.Or(fmt.Sprintf("title.ilike.%%%s%%,city.ilike.%%%s%%,address.ilike.%%%s%%", search, search, search), "")
	}
	if filters.PropertyType != "" {
		query = query.Eq("property_type", string(filters.PropertyType))
	}
	if filters.MinPrice > 0 {
		query = query.Gte("price", strconv.FormatFloat(filters.MinPrice, 'f', -1, 64))
	}
	if filters.MaxPrice > 0 {
		query = query.Lte("price", strconv.FormatFloat(filters.MaxPrice, 'f', -1, 64))
	}
	if filters.Bedrooms > 0 {
		query = query.Gte("bedrooms", strconv.Itoa(filters.Bedrooms))
	}
	if filters.Bathrooms > 0 {
		query = query.Gte("bathrooms", strconv.Itoa(filters.Bathrooms))
	}
	if filters.City != "" {
		query = query.Ilike("city", "%"+filters.City+"%")
	}
	if filters.Status != "" {
		query = query.Eq("status", string(filters.Status))
	}
	if filters.SellerId != uuid.Nil {
		query = query.Eq("seller_id", filters.SellerId.String())
	}

	data, _, err := query.Order("created_at", newestFirst).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get properties: %v", err)
	}

	return decodeProperties(data)
}

func (su *SupabaseRepo) ListPropertiesByIDs(ctx context.Context, ids []uuid.UUID) ([]PropertyWithImages, error) {
	if len(ids) == 0 {
		return []PropertyWithImages{}, nil
	}
	client, err := su.client(ctx)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.String())
	}

	data, _, err := client.From(PropertiesTable).
		Select(propertySelect, "", false).
		In("id", values).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get properties by id: %v", err)
	}

	return decodeProperties(data)
}

func (su *SupabaseRepo) GetProperty(ctx context.Context, id uuid.UUID) (*PropertyWithImages, error) {
	client, err := su.client(ctx)
	if err != nil {
		return nil, err
	}

	data, status, err := client.From(PropertiesTable).
		Select(propertySelect, "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%v", status, string(data), err)
		}
		return nil, fmt.Errorf("failed to get property by ID: %v", err)
	}

	// PostgREST returns an array even for single results
	properties, err := decodeProperties(data)
	if err != nil {
		return nil, err
	}
	if len(properties) == 0 {
		return nil, nil
	}
	return &properties[0], nil
}

func (su *SupabaseRepo) CreateProperty(ctx context.Context, property *Property) (*Property, error) {
	client, err := su.client(ctx)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(PropertiesTable).
		Insert(property, false, "", "", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to create property: %v", err)
	}

	var created []Property
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal created property: %v", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("no property data returned after insert")
	}
	return &created[0], nil
}

func (su *SupabaseRepo) UpdateProperty(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Property, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	client, err := su.client(ctx)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(PropertiesTable).
		Update(fields, "", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update property: %v", err)
	}

	var updated []Property
	if err := json.Unmarshal(data, &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated property: %v", err)
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("update property %s: %w", id, ErrNotFound)
	}
	return &updated[0], nil
}

func (su *SupabaseRepo) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	client, err := su.client(ctx)
	if err != nil {
		return err
	}

	// Image rows are removed by the foreign key cascade.
	if _, _, err := client.From(PropertiesTable).Delete("", "").Eq("id", id.String()).Execute(); err != nil {
		return fmt.Errorf("failed to delete property: %v", err)
	}
	return nil
}

func (su *SupabaseRepo) AddPropertyImage(ctx context.Context, image *PropertyImage) (*PropertyImage, error) {
	client, err := su.client(ctx)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(PropertyImagesTable).
		Insert(image, false, "", "", "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to add property image: %v", err)
	}

	var created []PropertyImage
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal property image: %v", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("no image data returned after insert")
	}
	return &created[0], nil
}

func (su *SupabaseRepo) DeletePropertyImage(ctx context.Context, id uuid.UUID) error {
	client, err := su.client(ctx)
	if err != nil {
		return err
	}

	if _, _, err := client.From(PropertyImagesTable).Delete("", "").Eq("id", id.String()).Execute(); err != nil {
		return fmt.Errorf("failed to delete property image: %v", err)
	}
	return nil
}

func (su *SupabaseRepo) ClearPrimaryImage(ctx context.Context, propertyId uuid.UUID) error {
	client, err := su.client(ctx)
	if err != nil {
		return err
	}

	_, _, err = client.From(PropertyImagesTable).
		Update(map[string]interface{}{"is_primary": false}, "minimal", "").
		Eq("property_id", propertyId.String()).
		Eq("is_primary", "true").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to clear primary image: %v", err)
	}
	return nil
}
