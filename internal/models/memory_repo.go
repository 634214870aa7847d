package models

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-process gateway with the same filter semantics as
// SupabaseRepo. It backs local runs without a Supabase project and the test
// suites.
type MemoryRepo struct {
	mu         sync.RWMutex
	seq        int64
	properties map[uuid.UUID]*memoryProperty
	images     map[uuid.UUID]PropertyImage
	favorites  []Favorite
	profiles   []UserProfile
	roles      []UserRole
	objects    map[string][]byte
	baseURL    string
}

type memoryProperty struct {
	Property
	seq int64
}

func NewMemoryRepo(baseURL string) *MemoryRepo {
	if baseURL == "" {
		baseURL = "memory://" + PropertyImageBucket
	}
	return &MemoryRepo{
		properties: make(map[uuid.UUID]*memoryProperty),
		images:     make(map[uuid.UUID]PropertyImage),
		objects:    make(map[string][]byte),
		baseURL:    baseURL,
	}
}

func (m *MemoryRepo) withImages(p *Property) PropertyWithImages {
	images := []PropertyImage{}
	for _, img := range m.images {
		if img.PropertyId == p.Id {
			images = append(images, img)
		}
	}
	SortImages(images)
	return PropertyWithImages{Property: *p, Images: images}
}

// sorted returns the stored listings newest first.
func (m *MemoryRepo) sorted() []*memoryProperty {
	rows := make([]*memoryProperty, 0, len(m.properties))
	for _, p := range m.properties {
		rows = append(rows, p)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	return rows
}

func (m *MemoryRepo) ListProperties(ctx context.Context, filters PropertyFilters) ([]PropertyWithImages, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []PropertyWithImages{}
	for _, p := range m.sorted() {
		if filters.Matches(&p.Property) {
			result = append(result, m.withImages(&p.Property))
		}
	}
	return result, nil
}

func (m *MemoryRepo) ListPropertiesByIDs(ctx context.Context, ids []uuid.UUID) ([]PropertyWithImages, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []PropertyWithImages{}
	for _, id := range ids {
		if p, ok := m.properties[id]; ok {
			result = append(result, m.withImages(&p.Property))
		}
	}
	return result, nil
}

func (m *MemoryRepo) GetProperty(ctx context.Context, id uuid.UUID) (*PropertyWithImages, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.properties[id]
	if !ok {
		return nil, nil
	}
	result := m.withImages(&p.Property)
	return &result, nil
}

func (m *MemoryRepo) CreateProperty(ctx context.Context, property *Property) (*Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if property.Id == uuid.Nil {
		property.Id = uuid.New()
	}
	if _, exists := m.properties[property.Id]; exists {
		return nil, fmt.Errorf("failed to create property: duplicate id %s", property.Id)
	}
	if property.CreatedAt.IsZero() {
		property.CreatedAt = time.Now().UTC()
		property.UpdatedAt = property.CreatedAt
	}
	m.seq++
	m.properties[property.Id] = &memoryProperty{Property: *property, seq: m.seq}
	created := *property
	return &created, nil
}

func (m *MemoryRepo) UpdateProperty(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Property, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.properties[id]
	if !ok {
		return nil, fmt.Errorf("update property %s: %w", id, ErrNotFound)
	}
	if err := applyFields(&p.Property, fields); err != nil {
		return nil, err
	}
	updated := p.Property
	return &updated, nil
}

func (m *MemoryRepo) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.properties, id)
	for imageId, img := range m.images {
		if img.PropertyId == id {
			delete(m.images, imageId)
		}
	}
	kept := m.favorites[:0]
	for _, f := range m.favorites {
		if f.PropertyId != id {
			kept = append(kept, f)
		}
	}
	m.favorites = kept
	return nil
}

func (m *MemoryRepo) AddPropertyImage(ctx context.Context, image *PropertyImage) (*PropertyImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.properties[image.PropertyId]; !ok {
		return nil, fmt.Errorf("failed to add property image: property %s does not exist", image.PropertyId)
	}
	if image.Id == uuid.Nil {
		image.Id = uuid.New()
	}
	if image.CreatedAt.IsZero() {
		image.CreatedAt = time.Now().UTC()
	}
	m.images[image.Id] = *image
	created := *image
	return &created, nil
}

func (m *MemoryRepo) DeletePropertyImage(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.images, id)
	return nil
}

func (m *MemoryRepo) ClearPrimaryImage(ctx context.Context, propertyId uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, img := range m.images {
		if img.PropertyId == propertyId && img.IsPrimary {
			img.IsPrimary = false
			m.images[id] = img
		}
	}
	return nil
}

func (m *MemoryRepo) ListFavorites(ctx context.Context, userId uuid.UUID) ([]Favorite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []Favorite{}
	for _, f := range m.favorites {
		if f.UserId == userId {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *MemoryRepo) ListFavoritePropertyIDs(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error) {
	favorites, err := m.ListFavorites(ctx, userId)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.PropertyId)
	}
	return ids, nil
}

func (m *MemoryRepo) AddFavorite(ctx context.Context, userId, propertyId uuid.UUID) (*Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, f := range m.favorites {
		if f.UserId == userId && f.PropertyId == propertyId {
			existing := f
			return &existing, nil
		}
	}
	favorite := Favorite{
		Id:         uuid.New(),
		UserId:     userId,
		PropertyId: propertyId,
		CreatedAt:  time.Now().UTC(),
	}
	m.favorites = append(m.favorites, favorite)
	return &favorite, nil
}

func (m *MemoryRepo) RemoveFavorite(ctx context.Context, userId, propertyId uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.favorites[:0]
	for _, f := range m.favorites {
		if f.UserId != userId || f.PropertyId != propertyId {
			kept = append(kept, f)
		}
	}
	m.favorites = kept
	return nil
}

// AddProfile stores a profile and its role, standing in for the sign-up
// trigger of the hosted backend.
func (m *MemoryRepo) AddProfile(profile UserProfile, role Role) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if profile.Id == uuid.Nil {
		profile.Id = uuid.New()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
		profile.UpdatedAt = now
	}
	m.profiles = append(m.profiles, profile)
	m.roles = append(m.roles, UserRole{
		Id:        uuid.New(),
		UserId:    profile.UserId,
		Role:      role,
		CreatedAt: now,
	})
}

func (m *MemoryRepo) ListProfiles(ctx context.Context) ([]UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// newest first; among equal timestamps the later insert comes first
	profiles := make([]UserProfile, 0, len(m.profiles))
	for i := len(m.profiles) - 1; i >= 0; i-- {
		profiles = append(profiles, m.profiles[i])
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.After(profiles[j].CreatedAt)
	})
	return profiles, nil
}

func (m *MemoryRepo) GetProfile(ctx context.Context, userId uuid.UUID) (*UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.profiles {
		if p.UserId == userId {
			profile := p
			return &profile, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepo) DeleteProfile(ctx context.Context, userId uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	profiles := m.profiles[:0]
	for _, p := range m.profiles {
		if p.UserId != userId {
			profiles = append(profiles, p)
		}
	}
	m.profiles = profiles

	roles := m.roles[:0]
	for _, r := range m.roles {
		if r.UserId != userId {
			roles = append(roles, r)
		}
	}
	m.roles = roles
	return nil
}

func (m *MemoryRepo) ListRoles(ctx context.Context) ([]UserRole, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	roles := make([]UserRole, len(m.roles))
	copy(roles, m.roles)
	return roles, nil
}

func (m *MemoryRepo) GetRole(ctx context.Context, userId uuid.UUID) (*UserRole, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.roles {
		if r.UserId == userId {
			role := r
			return &role, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepo) UpdateRole(ctx context.Context, userId uuid.UUID, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.roles {
		if m.roles[i].UserId == userId {
			m.roles[i].Role = role
		}
	}
	return nil
}

func (m *MemoryRepo) Upload(ctx context.Context, filePath, contentType string, data io.Reader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return fmt.Errorf("failed to read upload %s: %v", filePath, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objects[filePath]; exists {
		return fmt.Errorf("failed to upload %s: object already exists", filePath)
	}
	m.objects[filePath] = buf.Bytes()
	return nil
}

func (m *MemoryRepo) PublicURL(filePath string) (string, error) {
	return m.baseURL + "/" + filePath, nil
}

// applyFields copies a PostgREST-style update map onto p.
func applyFields(p *Property, fields map[string]interface{}) error {
	update := PropertyUpdate{}
	for column, value := range fields {
		var ok bool
		switch column {
		case "title":
			update.Title, ok = stringPtr(value)
		case "description":
			update.Description, ok = stringPtr(value)
		case "price":
			update.Price, ok = floatPtr(value)
		case "property_type":
			var t PropertyType
			t, ok = value.(PropertyType)
			update.PropertyType = &t
		case "status":
			var s PropertyStatus
			s, ok = value.(PropertyStatus)
			update.Status = &s
		case "bedrooms":
			update.Bedrooms, ok = intPtr(value)
		case "bathrooms":
			update.Bathrooms, ok = intPtr(value)
		case "area_sqft":
			update.AreaSqft, ok = floatPtr(value)
		case "address":
			update.Address, ok = stringPtr(value)
		case "city":
			update.City, ok = stringPtr(value)
		case "state":
			update.State, ok = stringPtr(value)
		case "country":
			update.Country, ok = stringPtr(value)
		case "zip_code":
			update.ZipCode, ok = stringPtr(value)
		case "contact_number":
			update.ContactNumber, ok = stringPtr(value)
		case "latitude":
			update.Latitude, ok = floatPtr(value)
		case "longitude":
			update.Longitude, ok = floatPtr(value)
		case "updated_at":
			ok = true
		default:
			return fmt.Errorf("unknown column %q", column)
		}
		if !ok {
			return fmt.Errorf("invalid value %v for column %q", value, column)
		}
	}
	update.Apply(p)
	return nil
}

func stringPtr(v interface{}) (*string, bool) {
	s, ok := v.(string)
	return &s, ok
}

func floatPtr(v interface{}) (*float64, bool) {
	f, ok := v.(float64)
	return &f, ok
}

func intPtr(v interface{}) (*int, bool) {
	i, ok := v.(int)
	return &i, ok
}

var (
	_ PropertyRepo = (*MemoryRepo)(nil)
	_ ImageRepo    = (*MemoryRepo)(nil)
	_ FavoriteRepo = (*MemoryRepo)(nil)
	_ ProfileRepo  = (*MemoryRepo)(nil)
	_ RoleRepo     = (*MemoryRepo)(nil)
	_ ObjectStore  = (*MemoryRepo)(nil)
)
